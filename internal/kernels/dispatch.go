package kernels

import (
	"go.uber.org/multierr"

	"github.com/born-ml/ndarray/internal/tensor"
)

// Every function below validates its operands before resolving and calling
// the kernel, so a failing call leaves out untouched. The executing device is
// the device of out.

// Fill writes value into every element of out.
func Fill(out *tensor.RawTensor, value tensor.Scalar) error {
	if err := checkDevices(OpFill, out.Device(), out); err != nil {
		return err
	}
	fn, err := resolve[FillFunc](out.Device(), OpFill)
	if err != nil {
		return err
	}
	return fn(out, value)
}

// Copy copies the elements of a into out.
// Both must match in shape and dtype and reside on the same device.
func Copy(a, out *tensor.RawTensor) error {
	err := multierr.Combine(
		checkDevices(OpCopy, out.Device(), a, out),
		checkSameShape(OpCopy, out.Shape(), a),
		checkSameDtype(OpCopy, out.DType(), a),
	)
	if err != nil {
		return err
	}
	return unary(OpCopy, a, out)
}

// AsType converts the elements of a to the dtype of out.
func AsType(a, out *tensor.RawTensor) error {
	err := multierr.Combine(
		checkDevices(OpAsType, out.Device(), a, out),
		checkSameShape(OpAsType, out.Shape(), a),
	)
	if err != nil {
		return err
	}
	return unary(OpAsType, a, out)
}

// Add computes out = a + b.
func Add(a, b, out *tensor.RawTensor) error {
	return binary(OpAdd, a, b, out)
}

// Mul computes out = a * b.
func Mul(a, b, out *tensor.RawTensor) error {
	return binary(OpMul, a, b, out)
}

// Divide computes out = a / b.
func Divide(a, b, out *tensor.RawTensor) error {
	return binary(OpDivide, a, b, out)
}

func binary(op string, a, b, out *tensor.RawTensor) error {
	err := multierr.Combine(
		checkDevices(op, out.Device(), a, b, out),
		checkSameShape(op, out.Shape(), a, b),
		checkSameDtype(op, out.DType(), a, b),
	)
	if err != nil {
		return err
	}
	fn, err := resolve[BinaryFunc](out.Device(), op)
	if err != nil {
		return err
	}
	return fn(a, b, out)
}

func unary(op string, x, out *tensor.RawTensor) error {
	fn, err := resolve[UnaryFunc](out.Device(), op)
	if err != nil {
		return err
	}
	return fn(x, out)
}

// Sum adds the elements of a over axes into out.
func Sum(a *tensor.RawTensor, axes []int, out *tensor.RawTensor) error {
	return reduce(OpSum, a, axes, out)
}

// AMax takes the maximum of a over axes into out.
// Reduced axes must not be empty.
func AMax(a *tensor.RawTensor, axes []int, out *tensor.RawTensor) error {
	sorted, err := NormalizeAxes(OpAMax, axes, a.Ndim())
	if err != nil {
		return err
	}
	for _, ax := range sorted {
		if a.Shape()[ax] == 0 {
			return tensor.DimensionErrorf("%s: zero-size axis %d has no maximum", OpAMax, ax)
		}
	}
	return reduce(OpAMax, a, sorted, out)
}

func reduce(op string, a *tensor.RawTensor, axes []int, out *tensor.RawTensor) error {
	sorted, err := NormalizeAxes(op, axes, a.Ndim())
	if err != nil {
		return err
	}
	err = multierr.Combine(
		checkDevices(op, out.Device(), a, out),
		checkSameShape(op, ReducedShape(a.Shape(), sorted), out),
		checkSameDtype(op, out.DType(), a),
	)
	if err != nil {
		return err
	}
	fn, err := resolve[ReduceFunc](out.Device(), op)
	if err != nil {
		return err
	}
	return fn(a, sorted, out)
}

// Exp computes out = e^x.
func Exp(x, out *tensor.RawTensor) error { return floatUnary(OpExp, x, out) }

// Log computes out = ln(x).
func Log(x, out *tensor.RawTensor) error { return floatUnary(OpLog, x, out) }

// Tanh computes out = tanh(x).
func Tanh(x, out *tensor.RawTensor) error { return floatUnary(OpTanh, x, out) }

// Sqrt computes out = sqrt(x).
func Sqrt(x, out *tensor.RawTensor) error { return floatUnary(OpSqrt, x, out) }

// Square computes out = x * x.
func Square(x, out *tensor.RawTensor) error {
	err := multierr.Combine(
		checkDevices(OpSquare, out.Device(), x, out),
		checkSameShape(OpSquare, out.Shape(), x),
		checkSameDtype(OpSquare, out.DType(), x),
	)
	if err != nil {
		return err
	}
	return unary(OpSquare, x, out)
}

func floatUnary(op string, x, out *tensor.RawTensor) error {
	err := multierr.Combine(
		checkDevices(op, out.Device(), x, out),
		checkSameShape(op, out.Shape(), x),
		checkSameDtype(op, out.DType(), x),
		checkFloat(op, out),
	)
	if err != nil {
		return err
	}
	return unary(op, x, out)
}

// IsNan writes whether each element of x is NaN into the bool out.
func IsNan(x, out *tensor.RawTensor) error { return predicate(OpIsNan, x, out) }

// IsInf writes whether each element of x is infinite into the bool out.
func IsInf(x, out *tensor.RawTensor) error { return predicate(OpIsInf, x, out) }

func predicate(op string, x, out *tensor.RawTensor) error {
	err := multierr.Combine(
		checkDevices(op, out.Device(), x, out),
		checkSameShape(op, out.Shape(), x),
		checkSameDtype(op, tensor.Bool, out),
	)
	if err != nil {
		return err
	}
	return unary(op, x, out)
}

// Arange writes start, start+step, ... into the 1-D out.
func Arange(start, step tensor.Scalar, out *tensor.RawTensor) error {
	if err := checkDevices(OpArange, out.Device(), out); err != nil {
		return err
	}
	if out.Ndim() != 1 {
		return tensor.DimensionErrorf("%s: output must be 1-D, got shape %v", OpArange, out.Shape())
	}
	fn, err := resolve[ArangeFunc](out.Device(), OpArange)
	if err != nil {
		return err
	}
	return fn(start, step, out)
}

// Identity writes the identity matrix into out, which must be square and 2-D.
func Identity(out *tensor.RawTensor) error {
	if err := multierr.Combine(checkDevices(OpIdentity, out.Device(), out), checkSquare(OpIdentity, out)); err != nil {
		return err
	}
	fn, err := resolve[IdentityFunc](out.Device(), OpIdentity)
	if err != nil {
		return err
	}
	return fn(out)
}

// Eye writes ones on the k-th diagonal of out and zeros elsewhere.
// out must be square and 2-D; k > 0 selects a diagonal above the main one.
func Eye(k int, out *tensor.RawTensor) error {
	if err := multierr.Combine(checkDevices(OpEye, out.Device(), out), checkSquare(OpEye, out)); err != nil {
		return err
	}
	fn, err := resolve[EyeFunc](out.Device(), OpEye)
	if err != nil {
		return err
	}
	return fn(k, out)
}

// Diagflat writes the 1-D v on the k-th diagonal of the square out, which
// must have len(v)+|k| rows.
func Diagflat(v *tensor.RawTensor, k int, out *tensor.RawTensor) error {
	err := multierr.Combine(
		checkDevices(OpDiagflat, out.Device(), v, out),
		checkSquare(OpDiagflat, out),
		checkSameDtype(OpDiagflat, out.DType(), v),
	)
	if err != nil {
		return err
	}
	if v.Ndim() != 1 {
		return tensor.DimensionErrorf("%s: input must be 1-D, got shape %v", OpDiagflat, v.Shape())
	}
	abs := k
	if abs < 0 {
		abs = -abs
	}
	if n := v.Shape()[0] + abs; out.Shape()[0] != n {
		return tensor.DimensionErrorf("%s: output must be %dx%d, got %v", OpDiagflat, n, n, out.Shape())
	}
	fn, err := resolve[DiagflatFunc](out.Device(), OpDiagflat)
	if err != nil {
		return err
	}
	return fn(v, k, out)
}

// Linspace writes evenly spaced values from start to stop inclusive into out,
// which must be 1-D with at least one element.
func Linspace(start, stop float64, out *tensor.RawTensor) error {
	if err := checkDevices(OpLinspace, out.Device(), out); err != nil {
		return err
	}
	if out.Ndim() != 1 || out.Shape()[0] < 1 {
		return tensor.DimensionErrorf("%s: output must be 1-D with at least one element, got shape %v", OpLinspace, out.Shape())
	}
	fn, err := resolve[LinspaceFunc](out.Device(), OpLinspace)
	if err != nil {
		return err
	}
	return fn(start, stop, out)
}

// IfLessElseASSA computes out = x1 < x2 ? pos : neg.
func IfLessElseASSA(x1 *tensor.RawTensor, x2, pos tensor.Scalar, neg, out *tensor.RawTensor) error {
	return ifElseASSA(OpIfLessElseASSA, x1, x2, pos, neg, out)
}

// IfGreaterElseASSA computes out = x1 > x2 ? pos : neg.
func IfGreaterElseASSA(x1 *tensor.RawTensor, x2, pos tensor.Scalar, neg, out *tensor.RawTensor) error {
	return ifElseASSA(OpIfGreaterElseASSA, x1, x2, pos, neg, out)
}

func ifElseASSA(op string, x1 *tensor.RawTensor, x2, pos tensor.Scalar, neg, out *tensor.RawTensor) error {
	err := multierr.Combine(
		checkDevices(op, out.Device(), x1, neg, out),
		checkSameShape(op, out.Shape(), x1, neg),
		checkSameDtype(op, out.DType(), neg),
	)
	if err != nil {
		return err
	}
	fn, err := resolve[IfElseASSAFunc](out.Device(), op)
	if err != nil {
		return err
	}
	return fn(x1, x2, pos, neg, out)
}

// IfGreaterElseAAAA computes out = x1 > x2 ? pos : neg.
func IfGreaterElseAAAA(x1, x2, pos, neg, out *tensor.RawTensor) error {
	op := OpIfGreaterElseAAAA
	err := multierr.Combine(
		checkDevices(op, out.Device(), x1, x2, pos, neg, out),
		checkSameShape(op, out.Shape(), x1, x2, pos, neg),
		checkSameDtype(op, x1.DType(), x2),
		checkSameDtype(op, out.DType(), pos, neg),
	)
	if err != nil {
		return err
	}
	fn, err := resolve[IfElseAAAAFunc](out.Device(), op)
	if err != nil {
		return err
	}
	return fn(x1, x2, pos, neg, out)
}
