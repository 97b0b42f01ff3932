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

// Package specialize implements a shape-specialized compilation cache
// and dispatcher: it sits between a polymorphic call site and a family
// of specialized compiled kernels, deriving a compact specialization key
// from an argument tuple's static shape/stride/dtype/device/layout
// properties, and looking up (or synthesizing once, via an externally
// supplied compiler callback) the kernel for that key.
//
// The five layers are SpecializationKey (this file's sibling key.go),
// KeyBuilder (keybuilder.go), SpecializationCache (cache.go),
// CompiledEntry (entry.go), and Dispatcher (dispatcher.go) -- see
// SPEC_FULL.md for the full design.
//
// The compiler callback and the kernel it produces are opaque to this
// package; so is the array runtime backing Argument. This package never
// allocates, reads, or writes argument storage, and never evicts a
// compiled entry -- the cache grows monotonically for the lifetime of
// its owning Dispatcher.
package specialize
