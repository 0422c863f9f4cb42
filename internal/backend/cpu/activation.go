package cpu

import (
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

// ifLessElseASSA computes out = x1 < x2 ? pos : neg.
func (b *CPUBackend) ifLessElseASSA(x1 *tensor.RawTensor, x2, pos tensor.Scalar, neg, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpIfLessElseASSA, x1, neg, out); err != nil {
		return err
	}
	return b.selectASSA(x1, neg, out, pos, func(v tensor.Scalar) bool { return v.Float64() < x2.Float64() })
}

// ifGreaterElseASSA computes out = x1 > x2 ? pos : neg.
func (b *CPUBackend) ifGreaterElseASSA(x1 *tensor.RawTensor, x2, pos tensor.Scalar, neg, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpIfGreaterElseASSA, x1, neg, out); err != nil {
		return err
	}
	return b.selectASSA(x1, neg, out, pos, func(v tensor.Scalar) bool { return v.Float64() > x2.Float64() })
}

func (b *CPUBackend) selectASSA(x1, neg, out *tensor.RawTensor, pos tensor.Scalar, cond func(tensor.Scalar) bool) error {
	xb, nb, ob := x1.Buffer().Bytes(), neg.Buffer().Bytes(), out.Buffer().Bytes()
	xt, nt, ot := x1.DType(), neg.DType(), out.DType()
	return b.mapElements([]*tensor.RawTensor{x1, neg, out}, func(offs []int) {
		v := tensor.Element(nb[offs[1]:], nt)
		if cond(tensor.Element(xb[offs[0]:], xt)) {
			v = pos
		}
		tensor.PutElement(ob[offs[2]:], ot, v)
	})
}

// ifGreaterElseAAAA computes out = x1 > x2 ? pos : neg with array operands.
func (b *CPUBackend) ifGreaterElseAAAA(x1, x2, pos, neg, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpIfGreaterElseAAAA, x1, x2, pos, neg, out); err != nil {
		return err
	}
	operands := []*tensor.RawTensor{x1, x2, pos, neg, out}
	bufs := make([][]byte, len(operands))
	for i, x := range operands {
		bufs[i] = x.Buffer().Bytes()
	}
	return b.mapElements(operands, func(offs []int) {
		l := tensor.Element(bufs[0][offs[0]:], x1.DType())
		r := tensor.Element(bufs[1][offs[1]:], x2.DType())
		v := tensor.Element(bufs[3][offs[3]:], neg.DType())
		if l.Float64() > r.Float64() {
			v = tensor.Element(bufs[2][offs[2]:], pos.DType())
		}
		tensor.PutElement(bufs[4][offs[4]:], out.DType(), v)
	})
}
