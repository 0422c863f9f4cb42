package tensor

import "fmt"

// MaxNdim is the maximum rank of an array.
const MaxNdim = 10

// Shape represents the dimensions of an array.
// A zero-length Shape describes a scalar with one element.
type Shape []int

// Ndim returns the rank.
func (s Shape) Ndim() int {
	return len(s)
}

// NumElements returns the total number of elements.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the rank is within MaxNdim and no dimension is negative.
// Zero-sized dimensions are allowed.
func (s Shape) Validate() error {
	if len(s) > MaxNdim {
		return DimensionErrorf("too many dimensions: %d > %d", len(s), MaxNdim)
	}
	for i, dim := range s {
		if dim < 0 {
			return DimensionErrorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape as (d0, d1, ...).
func (s Shape) String() string {
	out := "("
	for i, dim := range s {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprint(dim)
	}
	if len(s) == 1 {
		out += ","
	}
	return out + ")"
}

// CheckEqualShapes returns a DimensionError unless a and b are equal.
func CheckEqualShapes(a, b Shape) error {
	if !a.Equal(b) {
		return DimensionErrorf("shape mismatch: %v vs %v", a, b)
	}
	return nil
}
