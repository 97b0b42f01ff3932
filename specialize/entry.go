/*
 *	Copyright 2026 The Speckernel Authors.
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package specialize

import (
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/google/uuid"
)

// Kernel is the opaque compiled object produced by the compiler callback.
// This module never constructs one and never inspects its internals --
// it only calls CallRaw with the assembled raw-pointer argument list, per
// spec.md §6's opaque kernel surface.
type Kernel interface {
	CallRaw(args []unsafe.Pointer)
}

// ShapeFrom identifies one runtime shape parameter the kernel expects,
// as a (argument index, dimension index) pair into the call's argument
// tuple. Order matters: it is the order the kernel expects the extents.
type ShapeFrom struct {
	ArgIndex int
	DimIndex int
}

// ShapeCheck is an invocation-time obligation that
// args[A].Size(B) == args[C].Size(D), resolved live per SPEC_FULL.md §4.4
// (spec.md §9 left its semantics an open question).
type ShapeCheck struct {
	A, B, C, D int
}

// CompiledEntry holds one compiled kernel plus the metadata needed to
// assemble a single invocation's raw argument list, per spec.md §3/§4.4.
// It is built once by a SpecializationCache miss, configured synchronously
// by the compiler callback through an EntryProxy, and is immutable and
// safe for concurrent use by any number of callers once configured.
type CompiledEntry struct {
	id ID

	nargs       int // size of the argument tuple this entry was built for
	kernel      Kernel
	shapeFrom   []ShapeFrom
	shapeChecks []ShapeCheck
	optionsFrom int
	returnIndex int
	configured  bool
	pins        []any // retention pins for foreign objects co-owned by kernel
}

// ID uniquely identifies a CompiledEntry, for log correlation and test
// assertions that two calls reused the same entry. It carries no lookup
// semantics -- those are purely key-based, see cache.go.
type ID = uuid.UUID

// newCompiledEntry allocates an empty entry for a tuple of the given
// arity. Only SpecializationCache should call this (on a miss).
func newCompiledEntry(nargs int) *CompiledEntry {
	return &CompiledEntry{
		id:          uuid.New(),
		nargs:       nargs,
		optionsFrom: 0,
		returnIndex: nargs - 1, // default: last argument, see SPEC_FULL.md §4.4
	}
}

// ID returns this entry's identity.
func (e *CompiledEntry) ID() ID { return e.id }

// EntryProxy is the narrow mutation surface handed to the compiler
// callback, per spec.md §4.4/§6. It exists only so the callback cannot
// reach anything on CompiledEntry beyond the five configuration setters;
// the cache freezes the entry (by simply no longer exposing a proxy for
// it) once LookupOrCompile inserts it into the map.
type EntryProxy struct {
	entry *CompiledEntry
}

// SetCode records the compiled kernel. pins, if given, are foreign
// objects (e.g. a code-generator handle) the kernel co-owns; the entry
// retains references to them for as long as it lives.
func (p EntryProxy) SetCode(kernel Kernel, pins ...any) {
	p.entry.kernel = kernel
	p.entry.pins = append(p.entry.pins, pins...)
	p.entry.configured = true
}

// SetShapeFrom records the kernel's runtime shape parameters, in the
// order the kernel expects them. len(indices) must not exceed the
// owning cache's MAX_DIMS.
func (p EntryProxy) SetShapeFrom(indices []ShapeFrom) {
	p.entry.shapeFrom = indices
}

// SetOptionsFrom records which input argument's dtype/device/layout are
// canonical for the output. Stored for the compiler callback's own use;
// never consulted by Invoke, per spec.md §9.
func (p EntryProxy) SetOptionsFrom(argIndex int) {
	p.entry.optionsFrom = argIndex
}

// SetReturnIndex records which argument of the call's tuple Invoke should
// return. Defaults to the last argument, which is correct for the common
// ternary (a, b, out) case without the callback having to set it --
// closing the gap flagged in spec.md §9 around the original's hard-coded
// return of args[2].
func (p EntryProxy) SetReturnIndex(argIndex int) {
	p.entry.returnIndex = argIndex
}

// AddShapeCheck appends a shape-equality obligation, checked at the start
// of every Invoke before the kernel is called.
func (p EntryProxy) AddShapeCheck(check ShapeCheck) {
	p.entry.shapeChecks = append(p.entry.shapeChecks, check)
}

// Invoke assembles the raw call-argument list and calls the kernel, per
// spec.md §4.4 and §6: [data_ptr(arg_0), ..., data_ptr(arg_{N-1}),
// &shape_0, ..., &shape_{K-1}]. It returns the argument designated by
// SetReturnIndex (or its default).
//
// Invoke panics with ErrUnconfiguredEntry (via exceptions.Throw) if the
// entry has no kernel; Dispatcher.Call is the single recovery boundary that turns
// that into ErrInternalInvariant.
func (e *CompiledEntry) Invoke(args []Argument) (Argument, error) {
	if !e.configured || e.kernel == nil {
		exceptions.Throw(ErrUnconfiguredEntry)
	}

	for _, check := range e.shapeChecks {
		if Size(args[check.A], check.B) != Size(args[check.C], check.D) {
			return nil, ErrShapeCheckFailed
		}
	}

	callArgs := make([]unsafe.Pointer, 0, len(args)+len(e.shapeFrom))
	for _, arg := range args {
		callArgs = append(callArgs, arg.DataPtr())
	}

	shapeBuf := make([]int64, len(e.shapeFrom))
	for i, pair := range e.shapeFrom {
		shapeBuf[i] = Size(args[pair.ArgIndex], pair.DimIndex)
		callArgs = append(callArgs, unsafe.Pointer(&shapeBuf[i]))
	}

	e.kernel.CallRaw(callArgs)
	return args[e.returnIndex], nil
}
