package array

import (
	"github.com/x448/float16"

	"github.com/born-ml/ndarray/internal/tensor"
)

// HostBytes returns a's elements packed in row-major order, reading them back
// from the device when needed.
func (a *Array) HostBytes() ([]byte, error) {
	src := a
	if !a.IsContiguous() {
		c, err := a.copyConst()
		if err != nil {
			return nil, err
		}
		defer c.Release()
		src = c
	}
	if err := src.Device().Synchronize(); err != nil {
		return nil, err
	}
	size := src.TotalBytes()
	out := make([]byte, size)
	if host := src.Buffer().Bytes(); host != nil {
		copy(out, host[src.Offset():src.Offset()+size])
		return out, nil
	}
	dst := tensor.NewBuffer(nil, size, out, nil, nil)
	if err := src.Device().MemoryCopyTo(dst, 0, src.Buffer(), src.Offset(), size); err != nil {
		return nil, err
	}
	return out, nil
}

// ToSlice returns a copy of a's elements in row-major order.
// T must match a's dtype.
func ToSlice[T tensor.DType](a *Array) ([]T, error) {
	if dt := tensor.DataTypeOf[T](); dt != a.DType() {
		return nil, tensor.DtypeErrorf("cannot read %s array as %s", a.DType(), dt)
	}
	data, err := a.HostBytes()
	if err != nil {
		return nil, err
	}
	size := a.ElementBytes()
	out := make([]T, a.NumElements())
	for i := range out {
		out[i] = convert[T](tensor.Element(data[i*size:], a.DType()))
	}
	return out, nil
}

// Float64s returns a's elements converted to float64.
func (a *Array) Float64s() ([]float64, error) {
	data, err := a.HostBytes()
	if err != nil {
		return nil, err
	}
	size := a.ElementBytes()
	out := make([]float64, a.NumElements())
	for i := range out {
		out[i] = tensor.Element(data[i*size:], a.DType()).Float64()
	}
	return out, nil
}

// At returns the element at index.
func (a *Array) At(index ...int) (tensor.Scalar, error) {
	off, err := a.Raw().ByteOffset(index...)
	if err != nil {
		return tensor.Scalar{}, err
	}
	if err := a.Device().Synchronize(); err != nil {
		return tensor.Scalar{}, err
	}
	size := a.ElementBytes()
	if host := a.Buffer().Bytes(); host != nil {
		return tensor.Element(host[off:off+size], a.DType()), nil
	}
	tmp := make([]byte, size)
	dst := tensor.NewBuffer(nil, size, tmp, nil, nil)
	if err := a.Device().MemoryCopyTo(dst, 0, a.Buffer(), off, size); err != nil {
		return tensor.Scalar{}, err
	}
	return tensor.Element(tmp, a.DType()), nil
}

func convert[T tensor.DType](s tensor.Scalar) T {
	var zero T
	switch any(zero).(type) {
	case bool:
		return any(s.Bool()).(T)
	case int8:
		return any(int8(s.Int64())).(T)
	case int16:
		return any(int16(s.Int64())).(T)
	case int32:
		return any(int32(s.Int64())).(T)
	case int64:
		return any(s.Int64()).(T)
	case uint8:
		return any(uint8(s.Int64())).(T)
	case float32:
		return any(float32(s.Float64())).(T)
	case float64:
		return any(s.Float64()).(T)
	default:
		return any(float16.Fromfloat32(float32(s.Float64()))).(T)
	}
}
