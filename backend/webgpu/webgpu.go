//go:build windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend.
//
// The backend registers itself under "webgpu" and implements Fill, Copy, Add
// and Mul on contiguous float32 arrays. Other operations report a device
// error; move the arrays to a cpu device for them.
//
// Example:
//
//	if webgpu.IsAvailable() {
//	    gpu, _ := webgpu.New()
//	    defer gpu.Release()
//	    dev, _ := gpu.Device(0)
//	    x, _ := array.Ones(array.Shape{1024}, array.Float32, dev)
//	}
package webgpu

import (
	internalwebgpu "github.com/born-ml/ndarray/internal/backend/webgpu"
	"github.com/born-ml/ndarray/internal/tensor"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new WebGPU backend.
// Call Release() when done to free GPU resources.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable checks if a WebGPU adapter and device can be created.
func IsAvailable() bool {
	b, err := internalwebgpu.New()
	if err != nil {
		return false
	}
	b.Release()
	return true
}
