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

// Package testarg provides a minimal reference implementation of
// specialize.Argument, used by the specialize package's tests and by the
// cmd/speckernel-demo example. The array runtime is explicitly out of
// scope for this module (spec.md §1) -- this is deliberately the
// simplest thing that can stand in for one, grounded on the
// shape+flat-backing-storage pattern of types/tensors/local.go, not a
// faithful tensor implementation.
package testarg

import (
	"slices"
	"unsafe"

	"github.com/gomlx/speckernel/dtype"
	"github.com/gomlx/speckernel/specialize"
)

var _ specialize.Argument = (*Arg)(nil)

// storage is the backing allocation an Arg points into. Two Args alias
// each other iff they share a *storage value.
type storage struct {
	data []byte
}

// Arg is a reference Argument: plain slices for sizes/strides, a pointer
// to shared storage for aliasing, and fixed dtype/device/layout/grad
// metadata.
type Arg struct {
	sizes        []int64
	strides      []int64
	dt           dtype.DType
	device       dtype.Device
	layout       dtype.Layout
	requiresGrad bool
	offset       int64
	store        *storage
}

// New allocates a fresh, unaliased Arg with its own backing storage.
// strides are in elements, sizes in elements; the backing storage is
// sized generously (not used for anything but identity and DataPtr, this
// package performs no actual reads/writes).
func New(dt dtype.DType, sizes, strides []int64) *Arg {
	return &Arg{
		sizes:   slices.Clone(sizes),
		strides: slices.Clone(strides),
		dt:      dt,
		device:  dtype.CPU,
		layout:  dtype.Strided,
		store:   &storage{data: make([]byte, 64)},
	}
}

// ViewOf returns a new Arg that aliases arg's storage (optionally with
// different sizes/strides/offset), modeling a reshape/transpose/slice.
func ViewOf(arg *Arg, sizes, strides []int64, offset int64) *Arg {
	return &Arg{
		sizes:        slices.Clone(sizes),
		strides:      slices.Clone(strides),
		dt:           arg.dt,
		device:       arg.device,
		layout:       arg.layout,
		requiresGrad: arg.requiresGrad,
		offset:       offset,
		store:        arg.store,
	}
}

// WithDType, WithDevice, WithLayout, WithRequiresGrad return a shallow
// copy of arg with one field overridden, to build test fixtures tersely.
func (a *Arg) WithDType(dt dtype.DType) *Arg {
	b := *a
	b.dt = dt
	return &b
}

func (a *Arg) WithDevice(d dtype.Device) *Arg {
	b := *a
	b.device = d
	return &b
}

func (a *Arg) WithLayout(l dtype.Layout) *Arg {
	b := *a
	b.layout = l
	return &b
}

func (a *Arg) WithRequiresGrad(v bool) *Arg {
	b := *a
	b.requiresGrad = v
	return &b
}

func (a *Arg) Sizes() []int64       { return a.sizes }
func (a *Arg) Strides() []int64     { return a.strides }
func (a *Arg) DType() dtype.DType   { return a.dt }
func (a *Arg) Device() dtype.Device { return a.device }
func (a *Arg) Layout() dtype.Layout { return a.layout }
func (a *Arg) RequiresGrad() bool   { return a.requiresGrad }

func (a *Arg) DataPtr() unsafe.Pointer {
	if len(a.store.data) == 0 {
		return nil
	}
	return unsafe.Pointer(&a.store.data[a.offset])
}

// IsAliasOf reports whether a and other share the same backing storage,
// regardless of shape/stride/offset. Non-*Arg implementations of
// specialize.Argument are never aliases of an *Arg.
func (a *Arg) IsAliasOf(other specialize.Argument) bool {
	o, ok := other.(*Arg)
	if !ok {
		return false
	}
	return a.store == o.store
}

// IsSetTo reports whether a and other are strict aliases: identical
// storage, sizes, strides, and offset.
func (a *Arg) IsSetTo(other specialize.Argument) bool {
	o, ok := other.(*Arg)
	if !ok {
		return false
	}
	return a.store == o.store &&
		a.offset == o.offset &&
		slices.Equal(a.sizes, o.sizes) &&
		slices.Equal(a.strides, o.strides)
}
