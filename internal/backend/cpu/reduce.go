package cpu

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

// sum adds the elements of a over the sorted axes into out.
func (b *CPUBackend) sum(a *tensor.RawTensor, axes []int, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpSum, a, out); err != nil {
		return err
	}
	if a.DType() == tensor.Float64 && len(axes) == a.Ndim() && a.IsContiguous() && a.NumElements() > 0 {
		tensor.PutElement(out.HostBytes(), tensor.Float64, tensor.FloatScalar(floats.Sum(a.AsFloat64())))
		return nil
	}
	return b.reduce(a, axes, out, reducer{
		initFloat: 0,
		initInt:   0,
		onFloat:   func(acc, v float64) float64 { return acc + v },
		onInt:     func(acc, v int64) int64 { return acc + v },
		onBool:    func(acc, v bool) bool { return acc || v },
	})
}

// amax takes the maximum of a over the sorted axes into out.
// NaN propagates like in math.Max.
func (b *CPUBackend) amax(a *tensor.RawTensor, axes []int, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpAMax, a, out); err != nil {
		return err
	}
	return b.reduce(a, axes, out, reducer{
		initFloat: math.Inf(-1),
		initInt:   math.MinInt64,
		onFloat:   math.Max,
		onInt:     func(acc, v int64) int64 { return max(acc, v) },
		onBool:    func(acc, v bool) bool { return acc || v },
	})
}

type reducer struct {
	initFloat float64
	initInt   int64
	onFloat   func(acc, v float64) float64
	onInt     func(acc, v int64) int64
	onBool    func(acc, v bool) bool
}

// reduce folds every element of a into the out element obtained by dropping
// the reduced axes from its index.
func (b *CPUBackend) reduce(a *tensor.RawTensor, axes []int, out *tensor.RawTensor, r reducer) error {
	shape := a.Shape()
	ndim := shape.Ndim()
	reduced := make([]bool, ndim)
	for _, ax := range axes {
		reduced[ax] = true
	}

	// Element stride of each kept input axis within the row-major output.
	outStep := make([]int, ndim)
	step := 1
	for i := ndim - 1; i >= 0; i-- {
		if !reduced[i] {
			outStep[i] = step
			step *= shape[i]
		}
	}

	m := out.NumElements()
	kind := a.DType().Kind()
	accF := make([]float64, m)
	accI := make([]int64, m)
	accB := make([]bool, m)
	for k := 0; k < m; k++ {
		accF[k] = r.initFloat
		accI[k] = r.initInt
	}

	src := a.Buffer().Bytes()
	dt := a.DType()
	tensor.Walk(shape, a.Strides(), a.Offset(), func(linear, off int) {
		k := 0
		rem := linear
		for i := ndim - 1; i >= 0; i-- {
			idx := rem % shape[i]
			rem /= shape[i]
			k += idx * outStep[i]
		}
		v := tensor.Element(src[off:], dt)
		switch kind {
		case tensor.KindFloat:
			accF[k] = r.onFloat(accF[k], v.Float64())
		case tensor.KindBool:
			accB[k] = r.onBool(accB[k], v.Bool())
		default:
			accI[k] = r.onInt(accI[k], v.Int64())
		}
	})

	dst := out.Buffer().Bytes()
	ot := out.DType()
	for k := 0; k < m; k++ {
		var v tensor.Scalar
		switch kind {
		case tensor.KindFloat:
			v = tensor.FloatScalar(accF[k])
		case tensor.KindBool:
			v = tensor.BoolScalar(accB[k])
		default:
			v = tensor.IntScalar(accI[k])
		}
		tensor.PutElement(dst[out.ByteOffsetAt(k):], ot, v)
	}
	return nil
}
