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
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// minArity and maxArity bound the supported argument counts, per
// spec.md §4.5.
const (
	minArity = 1
	maxArity = 4
)

// dimBuckets are the supported MAX_DIMS values, in ascending order.
// A call routes to the smallest bucket that is >= its maximum argument
// rank.
var dimBuckets = [3]int{2, 4, 8}

// Dispatcher owns one SpecializationCache per (arity, dim bucket) cell
// and fans out each call to the right one, per spec.md §4.5. The table
// is the idiomatic Go substitute for the source's compile-time
// NARGS/MAX_DIMS template parameters (design (b) of spec.md §9): Go has
// no const-generic array lengths, so each cell is a dynamically-typed
// cache closed over its own (nargs, maxDims) pair, and argument tuples
// flow through as ordinary slices rather than fixed-size arrays.
type Dispatcher struct {
	// table[arity-1][bucketIndex]
	table [maxArity][len(dimBuckets)]*SpecializationCache
}

// NewDispatcher constructs a Dispatcher whose 4x3 = 12 caches all share
// the same compiler callback. The table is built eagerly and is
// immutable thereafter; concurrent calls to Call never contend on
// anything but the individual cache's mutex, per spec.md §5.
func NewDispatcher(compile CompilerFunc) *Dispatcher {
	d := &Dispatcher{}
	for arity := minArity; arity <= maxArity; arity++ {
		for bi, maxDims := range dimBuckets {
			d.table[arity-1][bi] = NewSpecializationCache(arity, maxDims, compile)
		}
	}
	return d
}

// Call normalizes positional and keyword arguments into a fixed-length
// tuple, selects the (arity, dim bucket) cache, and routes the call to
// it, per spec.md §4.5.
//
// kwargs must have zero entries, or exactly one entry keyed "out";
// anything else is ErrBadKeyword. num_args + num_kwargs must be in 1..4;
// anything else is ErrUnsupportedArity. Any argument with more than 8
// dimensions is ErrUnsupportedDimensionality. All three are ordinary
// caller-input errors, returned rather than panicking, per spec.md §7.
//
// Call itself is also the recovery boundary for ErrInternalInvariant:
// invariant violations raised (via exceptions.Throw) anywhere below it
// are caught here and turned into a distinguishable, non-fatal error.
func (d *Dispatcher) Call(args []Argument, kwargs map[string]Argument) (result Argument, err error) {
	defer exceptions.Catch(func(e error) {
		err = errors.Wrap(ErrInternalInvariant, e.Error())
	})

	full, hasOut, err := normalizeArgs(args, kwargs)
	if err != nil {
		return nil, err
	}

	nargs := len(full)
	if nargs < minArity || nargs > maxArity {
		return nil, errors.Wrapf(ErrUnsupportedArity, "got %d", nargs)
	}

	maxNDim := 0
	for _, a := range full {
		if n := NDim(a); n > maxNDim {
			maxNDim = n
		}
	}
	bucketIndex, err := selectDimBucket(maxNDim)
	if err != nil {
		return nil, err
	}

	cache := d.table[nargs-1][bucketIndex]
	keys := ComputeKey(full, hasOut, cache.maxDims)

	entry, err := cache.LookupOrCompile(keys, full)
	if err != nil {
		return nil, err
	}
	return entry.Invoke(full)
}

// normalizeArgs applies spec.md §4.5 steps 1-2: determine has_out from
// kwargs, then build the length-N tuple where the last element is the
// out tensor when present, otherwise the last positional argument.
func normalizeArgs(args []Argument, kwargs map[string]Argument) (full []Argument, hasOut bool, err error) {
	switch len(kwargs) {
	case 0:
		return args, false, nil
	case 1:
		out, ok := kwargs["out"]
		if !ok {
			return nil, false, errors.Wrap(ErrBadKeyword, "unknown keyword")
		}
		full = make([]Argument, len(args)+1)
		copy(full, args)
		full[len(args)] = out
		return full, true, nil
	default:
		return nil, false, errors.Wrapf(ErrBadKeyword, "got %d keywords", len(kwargs))
	}
}

// selectDimBucket returns the index into dimBuckets of the smallest
// bucket >= maxNDim, per spec.md §4.5 step 3.
func selectDimBucket(maxNDim int) (int, error) {
	for i, d := range dimBuckets {
		if d >= maxNDim {
			return i, nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedDimensionality, "got %d dims", maxNDim)
}
