package tensor

import "fmt"

// Strides is an immutable per-axis step description, in bytes, that maps a
// multi-index to a byte offset.
type Strides struct {
	dims []int
}

// NewStrides creates strides from explicit per-axis steps.
func NewStrides(dims ...int) (Strides, error) {
	if len(dims) > MaxNdim {
		return Strides{}, DimensionErrorf("too many dimensions: %d > %d", len(dims), MaxNdim)
	}
	return Strides{dims: append([]int(nil), dims...)}, nil
}

// ContiguousStrides returns row-major strides for shape: the last axis steps by
// elemSize and every other axis by the byte size of the axes after it.
func ContiguousStrides(shape Shape, elemSize int) (Strides, error) {
	if err := shape.Validate(); err != nil {
		return Strides{}, err
	}
	dims := make([]int, len(shape))
	step := elemSize
	for i := len(shape) - 1; i >= 0; i-- {
		dims[i] = step
		step *= shape[i]
	}
	return Strides{dims: dims}, nil
}

// Ndim returns the rank.
func (s Strides) Ndim() int {
	return len(s.dims)
}

// At returns the step of axis i.
func (s Strides) At(i int) (int, error) {
	if i < 0 || i >= len(s.dims) {
		return 0, DimensionErrorf("stride index %d out of bounds for rank %d", i, len(s.dims))
	}
	return s.dims[i], nil
}

// Dims returns a copy of the per-axis steps.
func (s Strides) Dims() []int {
	return append([]int(nil), s.dims...)
}

// Equal reports whether both strides have the same rank and steps.
func (s Strides) Equal(other Strides) bool {
	if len(s.dims) != len(other.dims) {
		return false
	}
	for i := range s.dims {
		if s.dims[i] != other.dims[i] {
			return false
		}
	}
	return true
}

// Offset returns the byte offset of index relative to the start of the view.
func (s Strides) Offset(index []int) (int, error) {
	if len(index) != len(s.dims) {
		return 0, DimensionErrorf("index rank %d does not match strides rank %d", len(index), len(s.dims))
	}
	off := 0
	for i, idx := range index {
		off += idx * s.dims[i]
	}
	return off, nil
}

// Span returns the lowest and highest byte offsets (relative to the view start)
// reachable through shape. For an empty shape both are zero and ok is false.
func (s Strides) Span(shape Shape) (low, high int, ok bool) {
	if len(shape) != len(s.dims) {
		return 0, 0, false
	}
	for i, dim := range shape {
		if dim == 0 {
			return 0, 0, false
		}
		d := (dim - 1) * s.dims[i]
		if d < 0 {
			low += d
		} else {
			high += d
		}
	}
	return low, high, true
}

// IsContiguous reports whether s equals the row-major strides of shape.
func (s Strides) IsContiguous(shape Shape, elemSize int) bool {
	if len(shape) != len(s.dims) {
		return false
	}
	step := elemSize
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] != 1 && s.dims[i] != step {
			return false
		}
		step *= shape[i]
	}
	return true
}

// String formats the strides as (s0, s1, ...).
func (s Strides) String() string {
	return fmt.Sprint(Shape(s.dims))
}
