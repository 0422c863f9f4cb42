// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package array

import (
	"github.com/born-ml/ndarray/internal/array"
	"github.com/born-ml/ndarray/internal/backend"
	_ "github.com/born-ml/ndarray/internal/backend/cpu" // Registers "cpu".
	"github.com/born-ml/ndarray/internal/tensor"
)

// Array is a handle to a strided device array.
type Array = array.Array

// Shape lists the size of each axis.
type Shape = tensor.Shape

// Strides lists the byte step of each axis.
type Strides = tensor.Strides

// DataType identifies an element type.
type DataType = tensor.DataType

// DType lists the Go element types arrays convert from and to.
type DType = tensor.DType

// Scalar is a single numeric value.
type Scalar = tensor.Scalar

// Device is an execution target.
type Device = tensor.Device

// CopyKind selects between copying and aliasing in AsConstant.
type CopyKind = array.CopyKind

// Element types.
const (
	Bool    = tensor.Bool
	Int8    = tensor.Int8
	Int16   = tensor.Int16
	Int32   = tensor.Int32
	Int64   = tensor.Int64
	Uint8   = tensor.Uint8
	Float16 = tensor.Float16
	Float32 = tensor.Float32
	Float64 = tensor.Float64
)

// Copy kinds.
const (
	CopyKindCopy = array.CopyKindCopy
	CopyKindView = array.CopyKindView
)

// MaxNdim is the maximum rank.
const MaxNdim = tensor.MaxNdim

// Error kinds.
var (
	ErrDimension = tensor.ErrDimension
	ErrDtype     = tensor.ErrDtype
	ErrDevice    = tensor.ErrDevice
	ErrGraph     = tensor.ErrGraph
	ErrResource  = tensor.ErrResource
)

// GetDevice resolves a device name such as "cpu:0" in the default context.
func GetDevice(name string) (Device, error) {
	return backend.Default().Device(name)
}

// DefaultDevice returns the device used when none is given.
func DefaultDevice() (Device, error) {
	return backend.Default().DefaultDevice()
}

// SetDefaultDevice changes the device used when none is given.
func SetDefaultDevice(dev Device) {
	backend.Default().SetDefaultDevice(dev)
}

// Aliased reports whether a and b may share memory.
func Aliased(a, b *Array) bool {
	return array.Aliased(a, b)
}
