package cpu

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

// add computes out = a + c.
func (b *CPUBackend) add(a, c, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpAdd, a, c, out); err != nil {
		return err
	}
	if packed(a, c, out) {
		switch out.DType() {
		case tensor.Float64:
			floats.AddTo(out.AsFloat64(), a.AsFloat64(), c.AsFloat64())
			return nil
		case tensor.Float32:
			x, y, dst := a.AsFloat32(), c.AsFloat32(), out.AsFloat32()
			parallel.For(len(dst), func(i int) { dst[i] = x[i] + y[i] }, b.parallel)
			return nil
		}
	}
	return b.binaryScalar(a, c, out, func(x, y tensor.Scalar) tensor.Scalar {
		switch x.Kind() {
		case tensor.KindFloat:
			return tensor.FloatScalar(x.Float64() + y.Float64())
		case tensor.KindBool:
			return tensor.BoolScalar(x.Bool() || y.Bool())
		default:
			return tensor.IntScalar(x.Int64() + y.Int64())
		}
	})
}

// mul computes out = a * c.
func (b *CPUBackend) mul(a, c, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpMul, a, c, out); err != nil {
		return err
	}
	if packed(a, c, out) {
		switch out.DType() {
		case tensor.Float64:
			floats.MulTo(out.AsFloat64(), a.AsFloat64(), c.AsFloat64())
			return nil
		case tensor.Float32:
			x, y, dst := a.AsFloat32(), c.AsFloat32(), out.AsFloat32()
			parallel.For(len(dst), func(i int) { dst[i] = x[i] * y[i] }, b.parallel)
			return nil
		}
	}
	return b.binaryScalar(a, c, out, func(x, y tensor.Scalar) tensor.Scalar {
		switch x.Kind() {
		case tensor.KindFloat:
			return tensor.FloatScalar(x.Float64() * y.Float64())
		case tensor.KindBool:
			return tensor.BoolScalar(x.Bool() && y.Bool())
		default:
			return tensor.IntScalar(x.Int64() * y.Int64())
		}
	})
}

// divide computes out = a / c. Integer division truncates and yields 0 for a
// zero divisor.
func (b *CPUBackend) divide(a, c, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpDivide, a, c, out); err != nil {
		return err
	}
	if out.DType() == tensor.Bool {
		return tensor.DtypeErrorf("%s: not defined for %s", kernels.OpDivide, out.DType())
	}
	if packed(a, c, out) {
		switch out.DType() {
		case tensor.Float64:
			floats.DivTo(out.AsFloat64(), a.AsFloat64(), c.AsFloat64())
			return nil
		case tensor.Float32:
			x, y, dst := a.AsFloat32(), c.AsFloat32(), out.AsFloat32()
			parallel.For(len(dst), func(i int) { dst[i] = x[i] / y[i] }, b.parallel)
			return nil
		}
	}
	return b.binaryScalar(a, c, out, func(x, y tensor.Scalar) tensor.Scalar {
		if x.Kind() == tensor.KindFloat {
			return tensor.FloatScalar(x.Float64() / y.Float64())
		}
		if y.Int64() == 0 {
			return tensor.IntScalar(0)
		}
		return tensor.IntScalar(x.Int64() / y.Int64())
	})
}

// packed reports whether every operand is contiguous and non-empty.
func packed(operands ...*tensor.RawTensor) bool {
	for _, x := range operands {
		if !x.IsContiguous() || x.NumElements() == 0 {
			return false
		}
	}
	return true
}
