// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package array

import "github.com/born-ml/ndarray/internal/array"

// Add returns a + b.
func Add(a, b *Array) (*Array, error) { return array.Add(a, b) }

// Mul returns a * b.
func Mul(a, b *Array) (*Array, error) { return array.Mul(a, b) }

// Divide returns a / b.
func Divide(a, b *Array) (*Array, error) { return array.Divide(a, b) }

// Sum adds a over axes; no axes reduces every axis.
func Sum(a *Array, axes ...int) (*Array, error) { return array.Sum(a, axes...) }

// AMax takes the maximum of a over axes; no axes reduces every axis.
func AMax(a *Array, axes ...int) (*Array, error) { return array.AMax(a, axes...) }

// Exp returns e^x.
func Exp(x *Array) (*Array, error) { return array.Exp(x) }

// Log returns ln(x).
func Log(x *Array) (*Array, error) { return array.Log(x) }

// Sqrt returns the square root of x.
func Sqrt(x *Array) (*Array, error) { return array.Sqrt(x) }

// Tanh returns tanh(x).
func Tanh(x *Array) (*Array, error) { return array.Tanh(x) }

// Square returns x*x.
func Square(x *Array) (*Array, error) { return array.Square(x) }

// Relu returns max(x, 0).
func Relu(x *Array) (*Array, error) { return array.Relu(x) }

// Maximum returns the element-wise maximum of a and b.
func Maximum(a, b *Array) (*Array, error) { return array.Maximum(a, b) }

// IsNan reports which elements of x are NaN.
func IsNan(x *Array) (*Array, error) { return array.IsNan(x) }

// IsInf reports which elements of x are infinite.
func IsInf(x *Array) (*Array, error) { return array.IsInf(x) }
