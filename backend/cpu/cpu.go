// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go host backend.
//
// Importing the package registers the backend under "cpu", so "cpu:0"
// resolves through any backend context. Kernels run synchronously and split
// large loops across goroutines.
//
// Example:
//
//	import (
//	    "github.com/born-ml/ndarray/array"
//	    "github.com/born-ml/ndarray/backend/cpu"
//	)
//
//	func main() {
//	    host := cpu.New(cpu.WithDevices(2))
//	    x, _ := array.Ones(array.Shape{2, 3}, array.Float32, host.MustDevice(1))
//	}
package cpu

import (
	internalcpu "github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

// Name is the registered backend name.
const Name = internalcpu.Name

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Device is one host execution target.
type Device = internalcpu.Device

// Option configures a Backend.
type Option = internalcpu.Option

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend with one device unless WithDevices says otherwise.
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}

// WithDevices sets the number of host devices.
func WithDevices(n int) Option {
	return internalcpu.WithDevices(n)
}

// WithThreads limits host kernels to n worker goroutines; n <= 1 runs them
// sequentially.
func WithThreads(n int) Option {
	cfg := parallel.DefaultConfig()
	cfg.NumWorkers = max(n, 1)
	cfg.Enabled = n > 1
	return internalcpu.WithParallel(cfg)
}
