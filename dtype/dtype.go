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

// Package dtype defines the small enumerations shared by argument
// descriptors and specialization keys: the element type (DType), the
// device an argument's storage lives on (Device), and its memory layout
// (Layout).
//
// These are deliberately independent of any specific tensor runtime or
// accelerator backend (unlike, say, an XLA-derived dtype enum): this
// module only needs enough distinct values to exercise the positional
// bit-packing of a SpecializationKey's flags field, not a faithful
// mapping to any particular device API.
package dtype

import "fmt"

// DType enumerates the element type of an argument's storage.
type DType int8

const (
	Invalid DType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float16
	BFloat16
	Float32
	Float64
	Complex64
	Complex128

	// NumDTypes is the number of DType values, Invalid included, used to size the
	// flags packing radix for the dtype sub-field. Keep it last.
	NumDTypes
)

var dtypeNames = [...]string{
	"Invalid", "Bool", "Int8", "Int16", "Int32", "Int64",
	"Uint8", "Uint16", "Uint32", "Uint64",
	"Float16", "BFloat16", "Float32", "Float64",
	"Complex64", "Complex128",
}

func (d DType) String() string {
	if d < 0 || int(d) >= len(dtypeNames) {
		return fmt.Sprintf("DType(%d)", int(d))
	}
	return dtypeNames[d]
}

// Device enumerates where an argument's storage physically resides.
type Device int8

const (
	CPU Device = iota
	GPU

	// NumDevices is the number of valid Device values.
	NumDevices
)

var deviceNames = [...]string{"CPU", "GPU"}

func (d Device) String() string {
	if d < 0 || int(d) >= len(deviceNames) {
		return fmt.Sprintf("Device(%d)", int(d))
	}
	return deviceNames[d]
}

// Layout enumerates the memory layout family of an argument's storage.
type Layout int8

const (
	Strided Layout = iota
	Sparse

	// NumLayouts is the number of valid Layout values.
	NumLayouts
)

var layoutNames = [...]string{"Strided", "Sparse"}

func (l Layout) String() string {
	if l < 0 || int(l) >= len(layoutNames) {
		return fmt.Sprintf("Layout(%d)", int(l))
	}
	return layoutNames[l]
}
