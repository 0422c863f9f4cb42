package cpu

import (
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

// mapElements calls f for every element position with the byte offsets of
// each operand, splitting the loop across workers. All operands are host
// views of identical shape.
func (b *CPUBackend) mapElements(operands []*tensor.RawTensor, f func(offs []int)) error {
	n := operands[0].NumElements()
	if n == 0 {
		return nil
	}
	contiguous := true
	for _, x := range operands {
		contiguous = contiguous && x.IsContiguous()
	}

	var offsets [][]int
	if !contiguous {
		offsets = make([][]int, len(operands))
		for i, x := range operands {
			offsets[i] = x.ByteOffsets()
		}
	}

	return parallel.Range(n, b.parallel, func(start, end int) error {
		offs := make([]int, len(operands))
		for i := start; i < end; i++ {
			for j, x := range operands {
				if contiguous {
					offs[j] = x.Offset() + i*x.DType().Size()
				} else {
					offs[j] = offsets[j][i]
				}
			}
			f(offs)
		}
		return nil
	})
}

// unaryScalar maps x into out element by element through f.
func (b *CPUBackend) unaryScalar(x, out *tensor.RawTensor, f func(v tensor.Scalar) tensor.Scalar) error {
	src, dst := x.Buffer().Bytes(), out.Buffer().Bytes()
	xt, ot := x.DType(), out.DType()
	return b.mapElements([]*tensor.RawTensor{x, out}, func(offs []int) {
		tensor.PutElement(dst[offs[1]:], ot, f(tensor.Element(src[offs[0]:], xt)))
	})
}

// binaryScalar maps a and b into out element by element through f.
func (b *CPUBackend) binaryScalar(a, c, out *tensor.RawTensor, f func(x, y tensor.Scalar) tensor.Scalar) error {
	ab, cb, ob := a.Buffer().Bytes(), c.Buffer().Bytes(), out.Buffer().Bytes()
	at, ct, ot := a.DType(), c.DType(), out.DType()
	return b.mapElements([]*tensor.RawTensor{a, c, out}, func(offs []int) {
		tensor.PutElement(ob[offs[2]:], ot, f(tensor.Element(ab[offs[0]:], at), tensor.Element(cb[offs[1]:], ct)))
	})
}

// floatUnary applies f in float64 to x into out.
func (b *CPUBackend) floatUnary(x, out *tensor.RawTensor, f func(float64) float64) error {
	if x.DType() == tensor.Float32 && out.DType() == tensor.Float32 && x.IsContiguous() && out.IsContiguous() {
		src, dst := x.AsFloat32(), out.AsFloat32()
		parallel.For(len(dst), func(i int) { dst[i] = float32(f(float64(src[i]))) }, b.parallel)
		return nil
	}
	return b.unaryScalar(x, out, func(v tensor.Scalar) tensor.Scalar {
		return tensor.FloatScalar(f(v.Float64()))
	})
}
