// Package kernels declares the catalog of named numeric operations every
// backend may implement, the per-backend implementation Table, and the
// validating dispatch functions arrays call.
//
// Each operation has a fixed signature. Backends register one function per
// operation they support when they are constructed; dispatch resolves the
// operation by name against the executing device's backend.
package kernels

import (
	"reflect"

	"github.com/born-ml/ndarray/internal/tensor"
)

// Operation names.
const (
	OpFill              = "Fill"
	OpCopy              = "Copy"
	OpAsType            = "AsType"
	OpAdd               = "Add"
	OpMul               = "Mul"
	OpDivide            = "Divide"
	OpSum               = "Sum"
	OpAMax              = "AMax"
	OpExp               = "Exp"
	OpLog               = "Log"
	OpTanh              = "Tanh"
	OpSqrt              = "Sqrt"
	OpSquare            = "Square"
	OpIsNan             = "IsNan"
	OpIsInf             = "IsInf"
	OpArange            = "Arange"
	OpIdentity          = "Identity"
	OpEye               = "Eye"
	OpDiagflat          = "Diagflat"
	OpLinspace          = "Linspace"
	OpIfLessElseASSA    = "IfLessElseASSA"
	OpIfGreaterElseASSA = "IfGreaterElseASSA"
	OpIfGreaterElseAAAA = "IfGreaterElseAAAA"
)

// FillFunc writes value into every element of out.
type FillFunc func(out *tensor.RawTensor, value tensor.Scalar) error

// UnaryFunc computes out from x element-wise. Copy, AsType and the
// element-wise math operations share this signature.
type UnaryFunc func(x, out *tensor.RawTensor) error

// BinaryFunc computes out from a and b element-wise.
type BinaryFunc func(a, b, out *tensor.RawTensor) error

// ReduceFunc reduces a over the sorted axes into out.
type ReduceFunc func(a *tensor.RawTensor, axes []int, out *tensor.RawTensor) error

// ArangeFunc writes start, start+step, ... into the 1-D out.
type ArangeFunc func(start, step tensor.Scalar, out *tensor.RawTensor) error

// IdentityFunc writes the identity matrix into the square out.
type IdentityFunc func(out *tensor.RawTensor) error

// EyeFunc writes ones on the k-th diagonal of the square out and zeros elsewhere.
type EyeFunc func(k int, out *tensor.RawTensor) error

// DiagflatFunc writes the 1-D v on the k-th diagonal of out.
type DiagflatFunc func(v *tensor.RawTensor, k int, out *tensor.RawTensor) error

// LinspaceFunc writes evenly spaced values from start to stop inclusive into the 1-D out.
type LinspaceFunc func(start, stop float64, out *tensor.RawTensor) error

// IfElseASSAFunc computes out = cmp(x1, x2) ? pos : neg with a scalar x2 and pos.
type IfElseASSAFunc func(x1 *tensor.RawTensor, x2, pos tensor.Scalar, neg, out *tensor.RawTensor) error

// IfElseAAAAFunc computes out = cmp(x1, x2) ? pos : neg with array operands.
type IfElseAAAAFunc func(x1, x2, pos, neg, out *tensor.RawTensor) error

// catalog maps every operation to the function type implementations must have.
var catalog = map[string]reflect.Type{
	OpFill:              reflect.TypeFor[FillFunc](),
	OpCopy:              reflect.TypeFor[UnaryFunc](),
	OpAsType:            reflect.TypeFor[UnaryFunc](),
	OpAdd:               reflect.TypeFor[BinaryFunc](),
	OpMul:               reflect.TypeFor[BinaryFunc](),
	OpDivide:            reflect.TypeFor[BinaryFunc](),
	OpSum:               reflect.TypeFor[ReduceFunc](),
	OpAMax:              reflect.TypeFor[ReduceFunc](),
	OpExp:               reflect.TypeFor[UnaryFunc](),
	OpLog:               reflect.TypeFor[UnaryFunc](),
	OpTanh:              reflect.TypeFor[UnaryFunc](),
	OpSqrt:              reflect.TypeFor[UnaryFunc](),
	OpSquare:            reflect.TypeFor[UnaryFunc](),
	OpIsNan:             reflect.TypeFor[UnaryFunc](),
	OpIsInf:             reflect.TypeFor[UnaryFunc](),
	OpArange:            reflect.TypeFor[ArangeFunc](),
	OpIdentity:          reflect.TypeFor[IdentityFunc](),
	OpEye:               reflect.TypeFor[EyeFunc](),
	OpDiagflat:          reflect.TypeFor[DiagflatFunc](),
	OpLinspace:          reflect.TypeFor[LinspaceFunc](),
	OpIfLessElseASSA:    reflect.TypeFor[IfElseASSAFunc](),
	OpIfGreaterElseASSA: reflect.TypeFor[IfElseASSAFunc](),
	OpIfGreaterElseAAAA: reflect.TypeFor[IfElseAAAAFunc](),
}

// Signature returns the function type of the named operation.
func Signature(name string) (reflect.Type, bool) {
	t, ok := catalog[name]
	return t, ok
}
