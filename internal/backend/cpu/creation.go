package cpu

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

// arange writes start + i*step into element i of the 1-D out.
func (b *CPUBackend) arange(start, step tensor.Scalar, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpArange, out); err != nil {
		return err
	}
	dst := out.Buffer().Bytes()
	dt := out.DType()
	for i := 0; i < out.NumElements(); i++ {
		var v tensor.Scalar
		if dt.IsFloat() || start.Kind() == tensor.KindFloat || step.Kind() == tensor.KindFloat {
			v = tensor.FloatScalar(start.Float64() + float64(i)*step.Float64())
		} else {
			v = tensor.IntScalar(start.Int64() + int64(i)*step.Int64())
		}
		tensor.PutElement(dst[out.ByteOffsetAt(i):], dt, v)
	}
	return nil
}

func (b *CPUBackend) identity(out *tensor.RawTensor) error {
	return b.eye(0, out)
}

// eye writes ones on the k-th diagonal of the square out and zeros elsewhere.
func (b *CPUBackend) eye(k int, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpEye, out); err != nil {
		return err
	}
	if err := b.fill(out, tensor.IntScalar(0)); err != nil {
		return err
	}
	n := out.Shape()[0]
	dst := out.Buffer().Bytes()
	one := tensor.IntScalar(1)
	for i := 0; i < n; i++ {
		j := i + k
		if j < 0 || j >= n {
			continue
		}
		off, err := out.ByteOffset(i, j)
		if err != nil {
			return err
		}
		tensor.PutElement(dst[off:], out.DType(), one)
	}
	return nil
}

// diagflat writes v on the k-th diagonal of out and zeros elsewhere.
func (b *CPUBackend) diagflat(v *tensor.RawTensor, k int, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpDiagflat, v, out); err != nil {
		return err
	}
	if err := b.fill(out, tensor.IntScalar(0)); err != nil {
		return err
	}
	src, dst := v.Buffer().Bytes(), out.Buffer().Bytes()
	for i := 0; i < v.NumElements(); i++ {
		row, col := i, i+k
		if k < 0 {
			row, col = i-k, i
		}
		off, err := out.ByteOffset(row, col)
		if err != nil {
			return err
		}
		tensor.PutElement(dst[off:], out.DType(), tensor.Element(src[v.ByteOffsetAt(i):], v.DType()))
	}
	return nil
}

// linspace writes n evenly spaced values from start to stop inclusive.
// A single element receives start.
func (b *CPUBackend) linspace(start, stop float64, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpLinspace, out); err != nil {
		return err
	}
	n := out.NumElements()
	values := make([]float64, n)
	if n == 1 {
		values[0] = start
	} else {
		floats.Span(values, start, stop)
	}
	dst := out.Buffer().Bytes()
	for i, x := range values {
		tensor.PutElement(dst[out.ByteOffsetAt(i):], out.DType(), tensor.FloatScalar(x))
	}
	return nil
}
