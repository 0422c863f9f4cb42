// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package array provides strided n-dimensional arrays that live on a device
// and take part in any number of independent gradient graphs.
//
// # Overview
//
// An *Array is a handle to an array body: a strided view of a reference
// counted device buffer plus one graph node per gradient graph. Views share
// the buffer; Copy allocates a new one. Operations run the kernel of the
// executing device's backend and fail with a device error when an operand
// lives elsewhere or the backend lacks the kernel.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/ndarray/array"
//	    "github.com/born-ml/ndarray/autodiff"
//	)
//
//	func main() {
//	    x, _ := array.FromSlice([]float32{1, 2, 3}, nil, nil)
//	    x.RequireGrad()
//	    y, _ := array.Mul(x, x)
//	    s, _ := array.Sum(y)
//	    _ = s.Backward()
//	    g, _ := x.GetGrad(autodiff.DefaultGraphID) // [2 4 6]
//	}
//
// # Devices
//
// A nil device argument selects the default device, read from
// NDARRAY_DEVICE ("cpu:0" when unset). Host parallelism follows
// NDARRAY_THREADS.
//
// # Errors
//
// Errors wrap one of ErrDimension, ErrDtype, ErrDevice, ErrGraph or
// ErrResource; test for them with errors.Is. Validation failures of one call
// are reported together.
package array
