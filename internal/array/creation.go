package array

import (
	"github.com/born-ml/ndarray/internal/backend"
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

// resolveDevice returns dev, or the default device of the default context.
func resolveDevice(dev tensor.Device) (tensor.Device, error) {
	if dev != nil {
		return dev, nil
	}
	return backend.Default().DefaultDevice()
}

// Empty allocates a contiguous array with unspecified contents.
// A nil device selects the default device.
func Empty(shape tensor.Shape, dtype tensor.DataType, dev tensor.Device) (*Array, error) {
	dev, err := resolveDevice(dev)
	if err != nil {
		return nil, err
	}
	raw, err := tensor.AllocRaw(shape, dtype, dev)
	if err != nil {
		return nil, err
	}
	return wrap(raw), nil
}

// Full allocates an array with every element set to value.
func Full(shape tensor.Shape, value any, dtype tensor.DataType, dev tensor.Device) (*Array, error) {
	v, err := tensor.ToScalar(value)
	if err != nil {
		return nil, err
	}
	a, err := Empty(shape, dtype, dev)
	if err != nil {
		return nil, err
	}
	if err := kernels.Fill(a.Raw(), v); err != nil {
		a.Release()
		return nil, err
	}
	return a, nil
}

// Zeros allocates an array of zeros.
func Zeros(shape tensor.Shape, dtype tensor.DataType, dev tensor.Device) (*Array, error) {
	return Full(shape, 0, dtype, dev)
}

// Ones allocates an array of ones.
func Ones(shape tensor.Shape, dtype tensor.DataType, dev tensor.Device) (*Array, error) {
	return Full(shape, 1, dtype, dev)
}

// EmptyLike allocates an array with other's shape and dtype.
// A nil device selects the default device, not other's.
func EmptyLike(other *Array, dev tensor.Device) (*Array, error) {
	return Empty(other.Shape(), other.DType(), dev)
}

// FullLike allocates an array with other's shape and dtype filled with value.
func FullLike(other *Array, value any, dev tensor.Device) (*Array, error) {
	return Full(other.Shape(), value, other.DType(), dev)
}

// ZerosLike allocates zeros with other's shape and dtype.
func ZerosLike(other *Array, dev tensor.Device) (*Array, error) {
	return FullLike(other, 0, dev)
}

// OnesLike allocates ones with other's shape and dtype.
func OnesLike(other *Array, dev tensor.Device) (*Array, error) {
	return FullLike(other, 1, dev)
}

// FromBuffer wraps packed little-endian element data without copying when the
// device can address host memory. The caller keeps ownership of data and must
// not modify it while the array is alive.
func FromBuffer(shape tensor.Shape, dtype tensor.DataType, data []byte, dev tensor.Device) (*Array, error) {
	dev, err := resolveDevice(dev)
	if err != nil {
		return nil, err
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if need := shape.NumElements() * dtype.Size(); len(data) < need {
		return nil, tensor.DimensionErrorf("buffer of %d bytes is too small for %v %s (%d bytes)",
			len(data), shape, dtype, need)
	}
	strides, err := tensor.ContiguousStrides(shape, dtype.Size())
	if err != nil {
		return nil, err
	}
	buf, err := dev.FromHostMemory(data)
	if err != nil {
		return nil, err
	}
	raw, err := tensor.NewRawTensor(shape, strides, dtype, dev, buf, 0)
	if err != nil {
		buf.Release()
		return nil, err
	}
	return wrap(raw), nil
}

// FromSlice copies data into a new array of the given shape.
// A nil shape means a 1-D array of len(data) elements.
func FromSlice[T tensor.DType](data []T, shape tensor.Shape, dev tensor.Device) (*Array, error) {
	if shape == nil {
		shape = tensor.Shape{len(data)}
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, tensor.DimensionErrorf("%d values do not fill shape %v", len(data), shape)
	}
	dt := tensor.DataTypeOf[T]()
	size := dt.Size()
	packed := make([]byte, len(data)*size)
	for i, v := range data {
		tensor.PutElement(packed[i*size:], dt, tensor.ScalarOf(v))
	}
	return FromBuffer(shape, dt, packed, dev)
}

// Arange returns the 1-D array start, start+step, ... below stop.
func Arange(start, stop, step float64, dtype tensor.DataType, dev tensor.Device) (*Array, error) {
	if step == 0 {
		return nil, tensor.DimensionErrorf("arange step must not be zero")
	}
	n := 0
	if span := (stop - start) / step; span > 0 {
		n = int(span)
		if float64(n) < span {
			n++
		}
	}
	out, err := Empty(tensor.Shape{n}, dtype, dev)
	if err != nil {
		return nil, err
	}
	startS, stepS := tensor.FloatScalar(start), tensor.FloatScalar(step)
	if dtype.Kind() != tensor.KindFloat {
		startS, stepS = tensor.IntScalar(int64(start)), tensor.IntScalar(int64(step))
	}
	if err := kernels.Arange(startS, stepS, out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int, dtype tensor.DataType, dev tensor.Device) (*Array, error) {
	out, err := Empty(tensor.Shape{n, n}, dtype, dev)
	if err != nil {
		return nil, err
	}
	if err := kernels.Identity(out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Eye returns an n×n matrix with ones on the k-th diagonal and zeros elsewhere.
// Positive k selects a diagonal above the main one.
func Eye(n, k int, dtype tensor.DataType, dev tensor.Device) (*Array, error) {
	out, err := Empty(tensor.Shape{n, n}, dtype, dev)
	if err != nil {
		return nil, err
	}
	if err := kernels.Eye(k, out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Linspace returns num evenly spaced values over [start, stop].
func Linspace(start, stop float64, num int, dtype tensor.DataType, dev tensor.Device) (*Array, error) {
	out, err := Empty(tensor.Shape{num}, dtype, dev)
	if err != nil {
		return nil, err
	}
	if err := kernels.Linspace(start, stop, out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Diagflat returns a square matrix with the elements of the 1-D array v on the
// k-th diagonal.
func Diagflat(v *Array, k int) (*Array, error) {
	if v.Ndim() != 1 {
		return nil, tensor.DimensionErrorf("diagflat expects a 1-D array, got %v", v.Shape())
	}
	n := v.Shape()[0] + abs(k)
	out, err := Empty(tensor.Shape{n, n}, v.DType(), v.Device())
	if err != nil {
		return nil, err
	}
	if err := kernels.Diagflat(v.Raw(), k, out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
