package tensor

// Walk calls fn for every element of a view in row-major order with the
// element's linear position and its byte offset in the buffer.
func Walk(shape Shape, strides Strides, offset int, fn func(linear, byteOffset int)) {
	n := shape.NumElements()
	if n == 0 {
		return
	}
	ndim := shape.Ndim()
	if ndim == 0 {
		fn(0, offset)
		return
	}
	dims := strides.dims
	index := make([]int, ndim)
	off := offset
	for linear := 0; linear < n; linear++ {
		fn(linear, off)
		for axis := ndim - 1; axis >= 0; axis-- {
			index[axis]++
			off += dims[axis]
			if index[axis] < shape[axis] {
				break
			}
			off -= index[axis] * dims[axis]
			index[axis] = 0
		}
	}
}

// ByteOffsets returns the byte offset of every element of r in row-major order.
func (r *RawTensor) ByteOffsets() []int {
	offsets := make([]int, r.NumElements())
	Walk(r.shape, r.strides, r.offset, func(linear, off int) {
		offsets[linear] = off
	})
	return offsets
}

// ByteOffsetAt returns the buffer byte offset of the element at a row-major
// linear position.
func (r *RawTensor) ByteOffsetAt(linear int) int {
	off := r.offset
	for axis := r.Ndim() - 1; axis >= 0; axis-- {
		dim := r.shape[axis]
		off += (linear % dim) * r.strides.dims[axis]
		linear /= dim
	}
	return off
}
