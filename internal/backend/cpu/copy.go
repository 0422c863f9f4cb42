package cpu

import (
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

// copy copies a into out honoring both layouts.
func (b *CPUBackend) copy(a, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpCopy, a, out); err != nil {
		return err
	}
	if a.IsContiguous() && out.IsContiguous() {
		n := a.ByteSize()
		copy(out.HostBytes()[:n], a.HostBytes()[:n])
		return nil
	}
	size := a.DType().Size()
	src, dst := a.Buffer().Bytes(), out.Buffer().Bytes()
	return b.mapElements([]*tensor.RawTensor{a, out}, func(offs []int) {
		copy(dst[offs[1]:offs[1]+size], src[offs[0]:offs[0]+size])
	})
}

// asType converts a into the dtype of out.
func (b *CPUBackend) asType(a, out *tensor.RawTensor) error {
	if err := b.checkOperands(kernels.OpAsType, a, out); err != nil {
		return err
	}
	if a.DType() == out.DType() {
		return b.copy(a, out)
	}
	return b.unaryScalar(a, out, func(v tensor.Scalar) tensor.Scalar { return v })
}

// fill writes value into every element of out.
func (b *CPUBackend) fill(out *tensor.RawTensor, value tensor.Scalar) error {
	if err := b.checkOperands(kernels.OpFill, out); err != nil {
		return err
	}
	size := out.DType().Size()
	elem := make([]byte, size)
	tensor.PutElement(elem, out.DType(), value)
	dst := out.Buffer().Bytes()
	return b.mapElements([]*tensor.RawTensor{out}, func(offs []int) {
		copy(dst[offs[0]:offs[0]+size], elem)
	})
}
