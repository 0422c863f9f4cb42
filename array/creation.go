// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package array

import (
	"github.com/born-ml/ndarray/internal/array"
	"github.com/born-ml/ndarray/internal/tensor"
)

// Empty allocates an array with unspecified contents.
func Empty(shape Shape, dtype DataType, dev Device) (*Array, error) {
	return array.Empty(shape, dtype, dev)
}

// Full allocates an array filled with value.
func Full(shape Shape, value any, dtype DataType, dev Device) (*Array, error) {
	return array.Full(shape, value, dtype, dev)
}

// Zeros allocates an array of zeros.
func Zeros(shape Shape, dtype DataType, dev Device) (*Array, error) {
	return array.Zeros(shape, dtype, dev)
}

// Ones allocates an array of ones.
func Ones(shape Shape, dtype DataType, dev Device) (*Array, error) {
	return array.Ones(shape, dtype, dev)
}

// EmptyLike allocates an array shaped like other. A nil dev keeps other's device.
func EmptyLike(other *Array, dev Device) (*Array, error) {
	return array.EmptyLike(other, dev)
}

// FullLike allocates an array shaped like other filled with value.
func FullLike(other *Array, value any, dev Device) (*Array, error) {
	return array.FullLike(other, value, dev)
}

// ZerosLike allocates zeros shaped like other.
func ZerosLike(other *Array, dev Device) (*Array, error) {
	return array.ZerosLike(other, dev)
}

// OnesLike allocates ones shaped like other.
func OnesLike(other *Array, dev Device) (*Array, error) {
	return array.OnesLike(other, dev)
}

// FromBuffer wraps host memory without copying. The caller must keep data
// alive and unchanged while the array uses it.
func FromBuffer(shape Shape, dtype DataType, data []byte, dev Device) (*Array, error) {
	return array.FromBuffer(shape, dtype, data, dev)
}

// FromSlice copies data into a new array. A nil shape makes it 1-D.
func FromSlice[T DType](data []T, shape Shape, dev Device) (*Array, error) {
	return array.FromSlice(data, shape, dev)
}

// ToSlice copies the elements of a, in row-major order, into a new slice.
// T must match the dtype of a.
func ToSlice[T DType](a *Array) ([]T, error) {
	return array.ToSlice[T](a)
}

// Arange returns values from start up to stop, exclusive, by step.
func Arange(start, stop, step float64, dtype DataType, dev Device) (*Array, error) {
	return array.Arange(start, stop, step, dtype, dev)
}

// Identity returns the n x n identity matrix.
func Identity(n int, dtype DataType, dev Device) (*Array, error) {
	return array.Identity(n, dtype, dev)
}

// Eye returns an n x n matrix with ones on the k-th diagonal.
func Eye(n, k int, dtype DataType, dev Device) (*Array, error) {
	return array.Eye(n, k, dtype, dev)
}

// Linspace returns num evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, num int, dtype DataType, dev Device) (*Array, error) {
	return array.Linspace(start, stop, num, dtype, dev)
}

// Diagflat returns a square matrix with the 1-D v on the k-th diagonal.
func Diagflat(v *Array, k int) (*Array, error) {
	return array.Diagflat(v, k)
}

// FromRaw wraps an existing strided view.
func FromRaw(raw *tensor.RawTensor) *Array {
	return array.FromRaw(raw)
}
