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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gomlx/speckernel/dtype"
	"github.com/gomlx/speckernel/internal/testarg"
)

func toArgs(args ...*testarg.Arg) []Argument {
	out := make([]Argument, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

// Scenario 1 of spec.md §8: contiguous vector add.
func TestKey_ContiguousVectorAdd(t *testing.T) {
	a := testarg.New(dtype.Float32, []int64{1000}, []int64{1})
	b := testarg.New(dtype.Float32, []int64{1000}, []int64{1})
	out := testarg.New(dtype.Float32, []int64{1000}, []int64{1})

	keys := ComputeKey(toArgs(a, b, out), true, 2)
	require.Len(t, keys, 3)

	for i, k := range keys[:2] {
		require.EqualValues(t, 0, k.aliasGroup, "arg %d", i)
		desc := k.ToDescription(toArgs(a, b, out)[i])
		require.Equal(t, []string{"other"}, desc.Shape)
		require.Equal(t, []string{"one"}, desc.Stride)
		require.False(t, desc.Out)
	}
	outDesc := keys[2].ToDescription(out)
	require.True(t, outDesc.Out)

	// Same shapes again must produce byte-identical keys (key determinism).
	keys2 := ComputeKey(toArgs(a, b, out), true, 2)
	for i := range keys {
		require.True(t, keys[i].Equal(keys2[i]))
	}
}

// Scenario 2 of spec.md §8: broadcast.
func TestKey_Broadcast(t *testing.T) {
	a := testarg.New(dtype.Float32, []int64{4, 1}, []int64{1, 0})
	b := testarg.New(dtype.Float32, []int64{1, 8}, []int64{0, 1})
	out := testarg.New(dtype.Float32, []int64{4, 8}, []int64{8, 1})

	keys := ComputeKey(toArgs(a, b, out), true, 2)

	descA := keys[0].ToDescription(a)
	require.Equal(t, []string{"other", "one"}, descA.Shape)
	require.Equal(t, []string{"one", "zero"}, descA.Stride)

	descB := keys[1].ToDescription(b)
	require.Equal(t, []string{"one", "other"}, descB.Shape)
	require.Equal(t, []string{"zero", "one"}, descB.Stride)

	descOut := keys[2].ToDescription(out)
	require.Equal(t, []string{"other", "other"}, descOut.Shape)
	require.Equal(t, []string{"contiguous", "one"}, descOut.Stride)
}

// The trailing-dimension asymmetry documented in spec.md §9: a densely
// packed row-major array's last dim is STRIDE_ONE, not STRIDE_CONTIGUOUS,
// because the forward-contiguous rule only ever looks at dim+1.
func TestKey_TrailingDimIsStrideOneNotContiguous(t *testing.T) {
	a := testarg.New(dtype.Float32, []int64{4, 8}, []int64{8, 1})
	key := NewSpecializationKey(a, 0, false, 2)
	desc := key.ToDescription(a)
	require.Equal(t, []string{"contiguous", "one"}, desc.Stride)
}

// Padding equivalence: for a fixed MAX_DIMS bucket, arguments with
// identical populated dims produce identical keys regardless of what
// happens beyond ndim.
func TestKey_PaddingEquivalence(t *testing.T) {
	a := testarg.New(dtype.Float32, []int64{10}, []int64{1})
	b := testarg.New(dtype.Float32, []int64{10}, []int64{1})

	keyA := NewSpecializationKey(a, 0, false, 8)
	keyB := NewSpecializationKey(b, 0, false, 8)
	require.True(t, keyA.Equal(keyB))

	desc := keyA.ToDescription(a)
	require.Len(t, desc.Shape, 1, "padding beyond ndim must not appear in the description")
}

// Key injectivity w.r.t. tags: differing in dtype, layout, device,
// requires_grad, or is_out must produce unequal keys.
func TestKey_Injectivity(t *testing.T) {
	base := testarg.New(dtype.Float32, []int64{4}, []int64{1})
	baseKey := NewSpecializationKey(base, 0, false, 2)

	variants := []*testarg.Arg{
		base.WithDType(dtype.Float64),
		base.WithDevice(dtype.GPU),
		base.WithLayout(dtype.Sparse),
		base.WithRequiresGrad(true),
	}
	for _, v := range variants {
		k := NewSpecializationKey(v, 0, false, 2)
		require.False(t, k.Equal(baseKey))
	}

	outKey := NewSpecializationKey(base, 0, true, 2)
	require.False(t, outKey.Equal(baseKey))

	aliasKey := NewSpecializationKey(base, 1, false, 2)
	require.False(t, aliasKey.Equal(baseKey))
}

func TestKey_Compare(t *testing.T) {
	a := NewSpecializationKey(testarg.New(dtype.Float32, []int64{4}, []int64{1}), 0, false, 2)
	b := NewSpecializationKey(testarg.New(dtype.Float32, []int64{4}, []int64{1}), 0, false, 2)
	require.Equal(t, 0, a.Compare(b))

	c := NewSpecializationKey(testarg.New(dtype.Float64, []int64{4}, []int64{1}), 0, false, 2)
	require.NotEqual(t, 0, a.Compare(c))
}
