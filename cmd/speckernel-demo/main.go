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

// Command speckernel-demo wires a toy "compiler" -- one that just prints
// the specialization it was asked for and records a no-op kernel -- into
// a Dispatcher, then calls it twice with the same shapes to show the
// second call hits the cache.
package main

import (
	"flag"
	"fmt"
	"unsafe"

	"k8s.io/klog/v2"

	"github.com/gomlx/speckernel/dtype"
	"github.com/gomlx/speckernel/internal/testarg"
	"github.com/gomlx/speckernel/specialize"
)

// noopKernel stands in for a real compiled kernel: the opaque kernel
// itself is out of scope for this module (spec.md §1).
type noopKernel struct {
	name string
}

func (k *noopKernel) CallRaw(args []unsafe.Pointer) {
	klog.V(1).Infof("speckernel-demo: %s.call_raw with %d raw args", k.name, len(args))
}

// compile is the out-of-band compiler callback: given the description of
// a specialization, it decides how to fill in the CompiledEntry. A real
// implementation would generate and JIT a kernel here.
func compile(descs []specialize.ArgDescription, proxy specialize.EntryProxy) error {
	for i, d := range descs {
		fmt.Printf("  arg[%d]: %s\n", i, d)
	}
	proxy.SetCode(&noopKernel{name: "vector_add"})
	proxy.SetShapeFrom([]specialize.ShapeFrom{{ArgIndex: 0, DimIndex: 0}})
	return nil
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	dispatcher := specialize.NewDispatcher(compile)

	a := testarg.New(dtype.Float32, []int64{1000}, []int64{1})
	b := testarg.New(dtype.Float32, []int64{1000}, []int64{1})
	out := testarg.New(dtype.Float32, []int64{1000}, []int64{1})

	fmt.Println("first call (compiles):")
	if _, err := dispatcher.Call([]specialize.Argument{a, b, out}, nil); err != nil {
		klog.Fatalf("call failed: %+v", err)
	}

	fmt.Println("second call (cached):")
	if _, err := dispatcher.Call([]specialize.Argument{a, b, out}, nil); err != nil {
		klog.Fatalf("call failed: %+v", err)
	}
}
