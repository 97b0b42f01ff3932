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
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// CompilerFunc is the out-of-band compiler callback, supplied once at
// construction. It must configure proxy (at minimum call SetCode) before
// returning; any error it returns propagates to the caller of Call and
// the miss is not cached, per spec.md §4.3/§7.
type CompilerFunc func(descs []ArgDescription, proxy EntryProxy) error

// SpecializationCache maps a key tuple to a compiled entry, for a fixed
// argument arity and dimensionality bucket. It synchronizes first-time
// compilation, per spec.md §4.3/§5: the single mutex guards both the map
// and the compiler-callback invocation, so exactly one goroutine ever
// compiles a given key. Lookups of already-compiled keys take the same
// mutex, so they wait while another goroutine is compiling in this cache.
//
// There is no eviction -- the cache grows monotonically for the lifetime
// of its owner, per spec.md §1's non-goals.
type SpecializationCache struct {
	nargs   int
	maxDims int
	compile CompilerFunc

	mu      sync.Mutex
	entries map[string]*CompiledEntry
}

// NewSpecializationCache constructs a cache for tuples of exactly nargs
// arguments, each classified against maxDims dimensions.
func NewSpecializationCache(nargs, maxDims int, compile CompilerFunc) *SpecializationCache {
	return &SpecializationCache{
		nargs:   nargs,
		maxDims: maxDims,
		compile: compile,
		entries: make(map[string]*CompiledEntry),
	}
}

// tupleKey renders a key tuple's packed byte images into a single
// comparable, hashable Go map key -- the idiomatic substitute for the
// source's sorted-map-of-byte-arrays, since every key tuple this method
// is ever called with for a given cache instance has the same maxDims,
// and therefore the same per-argument byte-image length, the
// concatenation is unambiguous.
func tupleKey(keys []SpecializationKey) string {
	var sb strings.Builder
	for _, k := range keys {
		sb.Write(k.bytes())
	}
	return sb.String()
}

// LookupOrCompile returns the cached entry for key, compiling it via the
// compiler callback on a miss. example is the argument tuple the key was
// derived from, used only to build the human-readable descriptions
// handed to the callback (spec.md §4.1's To-description) -- its data is
// never read.
//
// The entire lookup, including a miss's compiler-callback invocation,
// runs under the cache's mutex: spec.md §4.3 calls this out as
// deliberate, since compiler callbacks typically mutate shared
// intermediate state (code generators, symbol tables) that is not
// reentrancy-safe. Once dropped, the lock is never needed again for that
// entry -- CompiledEntry is immutable after configuration.
func (c *SpecializationCache) LookupOrCompile(keys []SpecializationKey, example []Argument) (*CompiledEntry, error) {
	mapKey := tupleKey(keys)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[mapKey]; ok {
		return entry, nil
	}

	entry := newCompiledEntry(c.nargs)
	descs := make([]ArgDescription, len(keys))
	for i, k := range keys {
		descs[i] = k.ToDescription(example[i])
	}

	start := time.Now()
	if err := c.compile(descs, EntryProxy{entry}); err != nil {
		return nil, errors.Wrap(err, "specialize: compiler callback failed")
	}
	if !entry.configured {
		return nil, ErrUnconfiguredEntry
	}

	c.entries[mapKey] = entry
	if klog.V(1).Enabled() {
		klog.V(1).Infof("specialize: compiled entry %s for %d-arg/%d-dim cache in %s", entry.ID(), c.nargs, c.maxDims, time.Since(start))
	}
	return entry, nil
}

// Len returns the number of distinct keys compiled so far, for tests and
// diagnostics.
func (c *SpecializationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
