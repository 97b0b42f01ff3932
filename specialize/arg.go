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

	"github.com/gomlx/speckernel/dtype"
)

// Argument is the subset of a multi-dimensional array's metadata that
// the cache needs: its static shape and storage properties, plus the two
// aliasing predicates used to partition a call's argument tuple.
//
// This mirrors the array-runtime surface spec.md §3 assumes exists
// out-of-band (sizes, strides, dtype, device, layout, gradient flag, data
// pointer, aliasing predicates) -- this module never allocates, reads, or
// writes the underlying storage, it only inspects this metadata.
type Argument interface {
	// Sizes returns the extent of each dimension, outermost first.
	Sizes() []int64
	// Strides returns the per-dimension element stride, same length as Sizes.
	Strides() []int64
	// DType is the element type of the storage.
	DType() dtype.DType
	// Device is where the storage resides.
	Device() dtype.Device
	// Layout is the storage's memory layout family.
	Layout() dtype.Layout
	// RequiresGrad reports whether this argument participates in autograd.
	RequiresGrad() bool
	// DataPtr is the raw address of the argument's storage, passed to the
	// opaque kernel at invocation time. It is never dereferenced by this
	// module.
	DataPtr() unsafe.Pointer

	// IsAliasOf reports whether this argument shares any storage with other.
	IsAliasOf(other Argument) bool
	// IsSetTo reports whether this argument is a strict alias of other:
	// identical storage, sizes, strides, and offset.
	IsSetTo(other Argument) bool
}

// Size returns the extent of the given dimension. It exists so
// CompiledEntry.Invoke can read a single dimension's extent by index
// without the caller re-deriving it from Sizes().
func Size(a Argument, dim int) int64 {
	return a.Sizes()[dim]
}

// NDim returns the number of dimensions (rank) of the argument.
func NDim(a Argument) int {
	return len(a.Sizes())
}
