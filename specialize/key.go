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
	"bytes"
	"fmt"

	"github.com/gomlx/speckernel/dtype"
)

// Per-dimension flag bits. The low three bits (0-2) describe the
// dimension's size category, the high five bits (3-7) its stride
// category. They are disjoint so exactly one size bit and one stride bit
// are set per populated dimension -- see SpecializationKey.dimFlags.
const (
	sizeMissing byte = 1 << 0 // dimension does not exist (trailing pad)
	sizeOne     byte = 1 << 1 // extent == 1
	sizeOther   byte = 1 << 2 // extent > 1

	strideZero                 byte = 1 << 3 // stride == 0 (broadcast)
	strideOne                  byte = 1 << 4 // stride == 1 (innermost packed)
	strideContiguous           byte = 1 << 5 // stride == stride[dim+1]*size[dim+1]
	strideTransposedContiguous byte = 1 << 6 // stride == stride[dim-1]*size[dim-1]
	strideAsArg                byte = 1 << 7 // none of the above
)

// SpecializationKey is a packed, comparable-by-byte-image record of the
// static shape/stride/type/device properties of a single argument that
// are relevant to picking a compiled kernel. It is parameterized (at
// construction, not at the type level -- see DESIGN.md for why) by
// maxDims, the dimensionality bucket of the owning cache.
//
// Two keys with the same maxDims compare equal iff their flags,
// aliasGroup, and dimFlags are all byte-for-byte identical.
type SpecializationKey struct {
	flags      uint16
	aliasGroup int8
	dimFlags   []byte // length == maxDims; padded slots are sizeMissing|strideZero
}

// packFlags packs isOut, requiresGrad, dtype, layout, device into a
// single uint16, positionally (digit-by-digit in the respective radixes),
// least-significant field first. This mirrors pack_flags in the original
// TensorExpr authoring.cpp: S0*is_out + S1*requires_grad + S2*dtype +
// S3*layout + S4*device, with each Sn the product of the previous field's
// radix.
func packFlags(isOut, requiresGrad bool, dt dtype.DType, layout dtype.Layout, device dtype.Device) uint16 {
	const (
		s0 = 1
		s1 = s0 * 2
		s2 = s1 * 2
		s3 = s2 * uint16(dtype.NumDTypes)
		s4 = s3 * uint16(dtype.NumLayouts)
	)
	var flags uint16
	if isOut {
		flags += s0
	}
	if requiresGrad {
		flags += s1
	}
	flags += s2 * uint16(dt)
	flags += s3 * uint16(layout)
	flags += s4 * uint16(device)
	return flags
}

// isOutBit recovers the is_out flag from a packed flags value -- it is
// the least-significant bit by construction.
func isOutBit(flags uint16) bool {
	return flags&1 != 0
}

// classifyDim applies the ordered stride-classification rule of spec.md
// §3 to dimension dim of the un-padded sizes/strides slices. The first
// matching rule wins: zero, then one, then forward-contiguous, then
// transposed-contiguous, then runtime ("as arg").
//
// Note the documented asymmetry preserved from the original source: the
// forward-contiguous rule looks at dim+1, so it can never match the
// trailing dimension -- a densely packed row-major array's last
// dimension is classified strideOne (because its stride is 1), not
// strideContiguous. This is intentional, see SPEC_FULL.md §4.1.
func classifyDim(sizes, strides []int64, dim int) byte {
	stride := strides[dim]
	size := sizes[dim]

	sizeBit := sizeOther
	if size == 1 {
		sizeBit = sizeOne
	}

	switch {
	case stride == 0:
		return sizeBit | strideZero
	case stride == 1:
		return sizeBit | strideOne
	case dim+1 < len(sizes) && stride == strides[dim+1]*sizes[dim+1]:
		return sizeBit | strideContiguous
	case dim > 0 && stride == strides[dim-1]*sizes[dim-1]:
		return sizeBit | strideTransposedContiguous
	default:
		return sizeBit | strideAsArg
	}
}

// NewSpecializationKey constructs the packed key for a single argument.
// aliasGroup and isOut come from the enclosing KeyBuilder computation;
// maxDims is the owning cache's dimensionality bucket and must be >= the
// argument's rank (the Dispatcher is responsible for routing to a bucket
// large enough -- see dispatcher.go).
func NewSpecializationKey(arg Argument, aliasGroup int8, isOut bool, maxDims int) SpecializationKey {
	sizes, strides := arg.Sizes(), arg.Strides()
	ndim := len(sizes)

	key := SpecializationKey{
		flags:      packFlags(isOut, arg.RequiresGrad(), arg.DType(), arg.Layout(), arg.Device()),
		aliasGroup: aliasGroup,
		dimFlags:   make([]byte, maxDims),
	}
	for dim := 0; dim < ndim; dim++ {
		key.dimFlags[dim] = classifyDim(sizes, strides, dim)
	}
	for dim := ndim; dim < maxDims; dim++ {
		key.dimFlags[dim] = sizeMissing | strideZero
	}
	return key
}

// bytes returns the packed byte image of the key: flags (2 bytes, little
// endian), aliasGroup (1 byte), then dimFlags. Two keys with identical
// byte images are, by spec.md §3's invariant, the same specialization.
func (k SpecializationKey) bytes() []byte {
	buf := make([]byte, 0, 3+len(k.dimFlags))
	buf = append(buf, byte(k.flags), byte(k.flags>>8))
	buf = append(buf, byte(k.aliasGroup))
	buf = append(buf, k.dimFlags...)
	return buf
}

// Equal reports whether the two keys have an identical packed byte image.
func (k SpecializationKey) Equal(other SpecializationKey) bool {
	return bytes.Equal(k.bytes(), other.bytes())
}

// Compare returns -1, 0, or 1 as k is less than, equal to, or greater
// than other, lexicographically over the packed byte image. This gives a
// total order usable as a fallback sort key for diagnostics; the cache
// itself does not require ordering (see cache.go).
func (k SpecializationKey) Compare(other SpecializationKey) int {
	return bytes.Compare(k.bytes(), other.bytes())
}

// ArgDescription is the human/consumer-readable view of a
// SpecializationKey handed to the compiler callback, per spec.md §4.1's
// To-description and §6's compiler-callback input record.
type ArgDescription struct {
	AliasGroup   int8
	NDim         int
	DType        dtype.DType
	Device       dtype.Device
	Layout       dtype.Layout
	RequiresGrad bool
	Out          bool
	Shape        []string // "one" | "other", one per populated dim
	Stride       []string // "zero" | "one" | "contiguous" | "transposed_contiguous" | "as_arg"
}

var shapeTagNames = map[byte]string{
	sizeOne:   "one",
	sizeOther: "other",
}

var strideTagNames = map[byte]string{
	strideZero:                 "zero",
	strideOne:                  "one",
	strideContiguous:           "contiguous",
	strideTransposedContiguous: "transposed_contiguous",
	strideAsArg:                "as_arg",
}

// ToDescription produces the compiler-callback-facing view of the key.
// example is the argument this key was built from (or one observed to be
// key-equal to it); its DType/Device/Layout/RequiresGrad are taken
// directly rather than unpacked from the flags field, and its rank
// determines how many populated (non-padding) dims are reported.
func (k SpecializationKey) ToDescription(example Argument) ArgDescription {
	ndim := NDim(example)
	desc := ArgDescription{
		AliasGroup:   k.aliasGroup,
		NDim:         ndim,
		DType:        example.DType(),
		Device:       example.Device(),
		Layout:       example.Layout(),
		RequiresGrad: example.RequiresGrad(),
		Out:          isOutBit(k.flags),
		Shape:        make([]string, 0, ndim),
		Stride:       make([]string, 0, ndim),
	}
	for dim := 0; dim < ndim; dim++ {
		flag := k.dimFlags[dim]
		for bit, name := range shapeTagNames {
			if flag&bit != 0 {
				desc.Shape = append(desc.Shape, name)
				break
			}
		}
		for _, bit := range []byte{strideZero, strideOne, strideContiguous, strideTransposedContiguous, strideAsArg} {
			if flag&bit != 0 {
				desc.Stride = append(desc.Stride, strideTagNames[bit])
				break
			}
		}
	}
	return desc
}

func (d ArgDescription) String() string {
	return fmt.Sprintf("ArgDescription{alias_group=%d, ndim=%d, dtype=%s, device=%s, layout=%s, requires_grad=%v, out=%v, shape=%v, stride=%v}",
		d.AliasGroup, d.NDim, d.DType, d.Device, d.Layout, d.RequiresGrad, d.Out, d.Shape, d.Stride)
}
