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

import "github.com/pkg/errors"

// Error kinds surfaced to callers of Dispatcher.Call, per spec.md §7.
// They are plain sentinel errors, matched with errors.Is; call sites wrap
// them with github.com/pkg/errors.Wrapf for context, following the style
// of graph/graph.go's finalizedGraphError and backends/fused_ops.go's
// ErrNotImplemented.
var (
	// ErrUnsupportedArity is returned when num_args + num_kwargs falls
	// outside 1..4.
	ErrUnsupportedArity = errors.New("specialize: unsupported number of arguments, expected 1 to 4")

	// ErrUnsupportedDimensionality is returned when an argument's rank
	// exceeds the largest MAX_DIMS bucket (8).
	ErrUnsupportedDimensionality = errors.New("specialize: argument has more than 8 dimensions")

	// ErrBadKeyword is returned for more than one keyword argument, or a
	// keyword other than "out".
	ErrBadKeyword = errors.New(`specialize: at most one keyword argument is supported, and it must be named "out"`)

	// ErrUnconfiguredEntry is returned when the compiler callback returns
	// without calling SetCode on the proxy.
	ErrUnconfiguredEntry = errors.New("specialize: compiler callback returned without configuring a kernel")

	// ErrShapeCheckFailed is returned by CompiledEntry.Invoke when an
	// add_shape_check obligation (spec.md §3, resolved in SPEC_FULL.md §4.4)
	// does not hold at invocation time.
	ErrShapeCheckFailed = errors.New("specialize: shape check failed at invocation")

	// ErrInternalInvariant marks a condition the design asserts can never
	// happen (e.g. invoking a cached entry that has no kernel). Such a
	// condition is raised internally via exceptions.Throw and converted to
	// this sentinel at the Dispatcher.Call boundary, so it is distinguishable
	// from ordinary caller-input errors without being fatal to the process.
	ErrInternalInvariant = errors.New("specialize: internal invariant violated")
)
