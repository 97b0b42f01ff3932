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
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/speckernel/dtype"
	"github.com/gomlx/speckernel/internal/testarg"
)

type fakeKernel struct {
	mu    sync.Mutex
	calls int
}

func (k *fakeKernel) CallRaw(args []unsafe.Pointer) {
	k.mu.Lock()
	k.calls++
	k.mu.Unlock()
}

// At-most-one-compile: under any number of concurrent LookupOrCompile
// calls with keys that coincide, the compiler callback runs exactly once
// per distinct key.
func TestCache_AtMostOneCompilePerKey(t *testing.T) {
	var compileCount atomic.Int32
	compile := func(descs []ArgDescription, proxy EntryProxy) error {
		compileCount.Add(1)
		proxy.SetCode(&fakeKernel{})
		return nil
	}
	cache := NewSpecializationCache(1, 2, compile)

	a := testarg.New(dtype.Float32, []int64{4}, []int64{1})
	keys := ComputeKey(toArgs(a), false, 2)

	const n = 64
	var wg sync.WaitGroup
	entries := make([]*CompiledEntry, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry, err := cache.LookupOrCompile(keys, toArgs(a))
			require.NoError(t, err)
			entries[i] = entry
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, compileCount.Load())
	for i := 1; i < n; i++ {
		require.Same(t, entries[0], entries[i])
	}
	require.Equal(t, 1, cache.Len())
}

func TestCache_DistinctKeysCompileIndependently(t *testing.T) {
	var compileCount atomic.Int32
	compile := func(descs []ArgDescription, proxy EntryProxy) error {
		compileCount.Add(1)
		proxy.SetCode(&fakeKernel{})
		return nil
	}
	cache := NewSpecializationCache(1, 2, compile)

	a := testarg.New(dtype.Float32, []int64{4}, []int64{1})
	b := testarg.New(dtype.Float64, []int64{4}, []int64{1})

	_, err := cache.LookupOrCompile(ComputeKey(toArgs(a), false, 2), toArgs(a))
	require.NoError(t, err)
	_, err = cache.LookupOrCompile(ComputeKey(toArgs(b), false, 2), toArgs(b))
	require.NoError(t, err)

	require.EqualValues(t, 2, compileCount.Load())
	require.Equal(t, 2, cache.Len())
}

// A failed compile leaves the cache in the same state as before the
// call, so a subsequent call with the same key retries compilation.
func TestCache_FailedCompileDoesNotInsertAndRetries(t *testing.T) {
	var attempt atomic.Int32
	boom := errors.New("boom")
	compile := func(descs []ArgDescription, proxy EntryProxy) error {
		if attempt.Add(1) == 1 {
			return boom
		}
		proxy.SetCode(&fakeKernel{})
		return nil
	}
	cache := NewSpecializationCache(1, 2, compile)
	a := testarg.New(dtype.Float32, []int64{4}, []int64{1})
	keys := ComputeKey(toArgs(a), false, 2)

	_, err := cache.LookupOrCompile(keys, toArgs(a))
	require.Error(t, err)
	require.Equal(t, 0, cache.Len())

	entry, err := cache.LookupOrCompile(keys, toArgs(a))
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, 1, cache.Len())
}

// A callback that returns without configuring the entry is
// ErrUnconfiguredEntry, and does not get cached.
func TestCache_UnconfiguredEntryIsAnError(t *testing.T) {
	compile := func(descs []ArgDescription, proxy EntryProxy) error {
		return nil // forgets to call SetCode
	}
	cache := NewSpecializationCache(1, 2, compile)
	a := testarg.New(dtype.Float32, []int64{4}, []int64{1})
	keys := ComputeKey(toArgs(a), false, 2)

	_, err := cache.LookupOrCompile(keys, toArgs(a))
	require.ErrorIs(t, err, ErrUnconfiguredEntry)
	require.Equal(t, 0, cache.Len())
}
