//go:build windows

package webgpu

import (
	"math"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

// operand resolves a contiguous view on this backend to its device buffer.
func (b *Backend) operand(op string, x *tensor.RawTensor, needFloat32 bool) (*gpuBuffer, error) {
	h, err := b.dev.handle(x.Buffer())
	if err != nil {
		return nil, err
	}
	if !x.IsContiguous() {
		return nil, tensor.DimensionErrorf("%s: %s supports contiguous arrays only", Name, op)
	}
	if needFloat32 && x.DType() != tensor.Float32 {
		return nil, tensor.DtypeErrorf("%s: %s supports float32 only, got %s", Name, op, x.DType())
	}
	return h, nil
}

// wordOffset converts a byte offset of a 4-byte aligned view to words.
func wordOffset(x *tensor.RawTensor) uint32 {
	//nolint:gosec // offsets of valid views are non-negative and below the buffer size
	return uint32(x.Offset() / 4)
}

func numElements(x *tensor.RawTensor) uint32 {
	//nolint:gosec // element counts of device buffers fit in uint32
	return uint32(x.NumElements())
}

func (b *Backend) fill(out *tensor.RawTensor, value tensor.Scalar) error {
	h, err := b.operand(kernels.OpFill, out, true)
	if err != nil {
		return err
	}
	bits := math.Float32bits(float32(value.Float64()))
	n := numElements(out)
	b.run(fillShaderName, fillShader, n, []*wgpu.Buffer{h.buf}, []uint64{h.size}, params(n, wordOffset(out), bits))
	return nil
}

func (b *Backend) copy(x, out *tensor.RawTensor) error {
	src, err := b.operand(kernels.OpCopy, x, false)
	if err != nil {
		return err
	}
	dst, err := b.operand(kernels.OpCopy, out, false)
	if err != nil {
		return err
	}
	if err := checkCopy(out.Offset(), x.Offset(), x.ByteSize()); err != nil {
		return err
	}
	b.copyBuffers(src.buf, x.Offset(), dst.buf, out.Offset(), x.ByteSize())
	return nil
}

func (b *Backend) add(x, y, out *tensor.RawTensor) error {
	return b.binary(kernels.OpAdd, addShaderName, addShader, x, y, out)
}

func (b *Backend) mul(x, y, out *tensor.RawTensor) error {
	return b.binary(kernels.OpMul, mulShaderName, mulShader, x, y, out)
}

func (b *Backend) divide(x, y, out *tensor.RawTensor) error {
	return b.binary(kernels.OpDivide, divShaderName, divShader, x, y, out)
}

// binary runs an element-wise shader. A buffer may not be bound for reading
// and writing in one dispatch, so an output sharing an input's buffer is
// computed into scratch memory and copied back.
func (b *Backend) binary(op, name, code string, x, y, out *tensor.RawTensor) error {
	xh, err := b.operand(op, x, true)
	if err != nil {
		return err
	}
	yh, err := b.operand(op, y, true)
	if err != nil {
		return err
	}
	oh, err := b.operand(op, out, true)
	if err != nil {
		return err
	}
	n := numElements(out)
	if oh != xh && oh != yh {
		b.run(name, code, n, []*wgpu.Buffer{xh.buf, yh.buf, oh.buf}, []uint64{xh.size, yh.size, oh.size},
			params(n, wordOffset(x), wordOffset(y), wordOffset(out)))
		return nil
	}
	scratch, err := b.dev.Allocate(out.ByteSize())
	if err != nil {
		return err
	}
	defer scratch.Release()
	sh := scratch.Handle().(*gpuBuffer)
	b.run(name, code, n, []*wgpu.Buffer{xh.buf, yh.buf, sh.buf}, []uint64{xh.size, yh.size, sh.size},
		params(n, wordOffset(x), wordOffset(y), 0))
	b.copyBuffers(sh.buf, 0, oh.buf, out.Offset(), out.ByteSize())
	return nil
}
