package cpu

import (
	"math"

	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

// exp computes element-wise exponential: exp(x).
func (b *CPUBackend) exp(x, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpExp, x, out); err != nil {
		return err
	}
	return b.floatUnary(x, out, math.Exp)
}

// log computes element-wise natural logarithm: ln(x).
func (b *CPUBackend) log(x, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpLog, x, out); err != nil {
		return err
	}
	return b.floatUnary(x, out, math.Log)
}

func (b *CPUBackend) tanh(x, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpTanh, x, out); err != nil {
		return err
	}
	return b.floatUnary(x, out, math.Tanh)
}

func (b *CPUBackend) sqrt(x, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpSqrt, x, out); err != nil {
		return err
	}
	return b.floatUnary(x, out, math.Sqrt)
}

// square computes x*x for every dtype; for bool it is the identity.
func (b *CPUBackend) square(x, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpSquare, x, out); err != nil {
		return err
	}
	if x.DType().IsFloat() {
		return b.floatUnary(x, out, func(v float64) float64 { return v * v })
	}
	return b.unaryScalar(x, out, func(v tensor.Scalar) tensor.Scalar {
		if v.Kind() == tensor.KindBool {
			return v
		}
		return tensor.IntScalar(v.Int64() * v.Int64())
	})
}

func (b *CPUBackend) isNan(x, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpIsNan, x, out); err != nil {
		return err
	}
	return b.unaryScalar(x, out, func(v tensor.Scalar) tensor.Scalar {
		return tensor.BoolScalar(v.Kind() == tensor.KindFloat && math.IsNaN(v.Float64()))
	})
}

func (b *CPUBackend) isInf(x, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpIsInf, x, out); err != nil {
		return err
	}
	return b.unaryScalar(x, out, func(v tensor.Scalar) tensor.Scalar {
		return tensor.BoolScalar(v.Kind() == tensor.KindFloat && math.IsInf(v.Float64(), 0))
	})
}
