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
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/gomlx/speckernel/dtype"
	"github.com/gomlx/speckernel/internal/testarg"
)

// recordingKernel captures exactly the pointer list it was called with,
// for assertions on the argument-assembly order spec.md §6 specifies:
// [data_ptr(arg_0), ..., data_ptr(arg_{N-1}), &shape_0, ..., &shape_{K-1}].
type recordingKernel struct {
	lastArgs []unsafe.Pointer
}

func (k *recordingKernel) CallRaw(args []unsafe.Pointer) {
	k.lastArgs = args
}

func TestEntry_InvokeAssemblesPointersAndShapes(t *testing.T) {
	a := testarg.New(dtype.Float32, []int64{4, 8}, []int64{8, 1})
	b := testarg.New(dtype.Float32, []int64{4, 8}, []int64{8, 1})
	out := testarg.New(dtype.Float32, []int64{4, 8}, []int64{8, 1})
	args := toArgs(a, b, out)

	entry := newCompiledEntry(3)
	kernel := &recordingKernel{}
	proxy := EntryProxy{entry}
	proxy.SetCode(kernel)
	proxy.SetShapeFrom([]ShapeFrom{{ArgIndex: 0, DimIndex: 0}, {ArgIndex: 0, DimIndex: 1}})

	result, err := entry.Invoke(args)
	require.NoError(t, err)
	require.Same(t, out, result) // default return index is the last argument

	require.Len(t, kernel.lastArgs, 5) // 3 data ptrs + 2 shape ptrs
	require.Equal(t, a.DataPtr(), kernel.lastArgs[0])
	require.Equal(t, b.DataPtr(), kernel.lastArgs[1])
	require.Equal(t, out.DataPtr(), kernel.lastArgs[2])
	require.EqualValues(t, 4, *(*int64)(kernel.lastArgs[3]))
	require.EqualValues(t, 8, *(*int64)(kernel.lastArgs[4]))
}

func TestEntry_ReturnIndexDefaultsToLastArgument(t *testing.T) {
	a := testarg.New(dtype.Float32, []int64{4}, []int64{1})
	entry := newCompiledEntry(1)
	EntryProxy{entry}.SetCode(&recordingKernel{})

	result, err := entry.Invoke(toArgs(a))
	require.NoError(t, err)
	require.Same(t, a, result)
}

func TestEntry_ReturnIndexOverride(t *testing.T) {
	a := testarg.New(dtype.Float32, []int64{4}, []int64{1})
	b := testarg.New(dtype.Float32, []int64{4}, []int64{1})
	entry := newCompiledEntry(2)
	proxy := EntryProxy{entry}
	proxy.SetCode(&recordingKernel{})
	proxy.SetReturnIndex(0)

	result, err := entry.Invoke(toArgs(a, b))
	require.NoError(t, err)
	require.Same(t, a, result)
}

func TestEntry_ShapeCheckFailureSkipsKernelCall(t *testing.T) {
	a := testarg.New(dtype.Float32, []int64{4}, []int64{1})
	b := testarg.New(dtype.Float32, []int64{8}, []int64{1})
	entry := newCompiledEntry(2)
	kernel := &recordingKernel{}
	proxy := EntryProxy{entry}
	proxy.SetCode(kernel)
	proxy.AddShapeCheck(ShapeCheck{A: 0, B: 0, C: 1, D: 0})

	_, err := entry.Invoke(toArgs(a, b))
	require.ErrorIs(t, err, ErrShapeCheckFailed)
	require.Nil(t, kernel.lastArgs, "kernel must not be called when a shape check fails")
}

func TestEntry_ShapeCheckPasses(t *testing.T) {
	a := testarg.New(dtype.Float32, []int64{4}, []int64{1})
	b := testarg.New(dtype.Float32, []int64{4}, []int64{1})
	entry := newCompiledEntry(2)
	kernel := &recordingKernel{}
	proxy := EntryProxy{entry}
	proxy.SetCode(kernel)
	proxy.AddShapeCheck(ShapeCheck{A: 0, B: 0, C: 1, D: 0})

	_, err := entry.Invoke(toArgs(a, b))
	require.NoError(t, err)
	require.NotNil(t, kernel.lastArgs)
}
