package tensor

import (
	"fmt"
	"unsafe"
)

// RawTensor is a strided view of a Buffer: the layout half of an array body,
// without autograd state. Kernels operate on RawTensors.
//
// A RawTensor does not own a reference on its buffer; the array holding it does.
type RawTensor struct {
	buffer  *Buffer
	shape   Shape
	strides Strides
	dtype   DataType
	device  Device
	offset  int
}

// NewRawTensor validates and builds a view.
// The rank of shape and strides must match and every reachable byte must lie
// inside the buffer.
func NewRawTensor(shape Shape, strides Strides, dtype DataType, device Device, buffer *Buffer, offset int) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.Ndim() != strides.Ndim() {
		return nil, DimensionErrorf("shape rank %d does not match strides rank %d", shape.Ndim(), strides.Ndim())
	}
	if !dtype.Valid() {
		return nil, DtypeErrorf("invalid data type %d", int(dtype))
	}
	if buffer != nil && buffer.Device() != nil && device != nil && !SameDevice(buffer.Device(), device) {
		return nil, DeviceErrorf("buffer lives on %s, not %s", buffer.Device().Name(), device.Name())
	}
	if low, high, ok := strides.Span(shape); ok {
		size := 0
		if buffer != nil {
			size = buffer.Size()
		}
		if offset+low < 0 || offset+high+dtype.Size() > size {
			return nil, DimensionErrorf("view [%d, %d) exceeds buffer of %d bytes",
				offset+low, offset+high+dtype.Size(), size)
		}
	}
	return &RawTensor{
		buffer:  buffer,
		shape:   shape.Clone(),
		strides: strides,
		dtype:   dtype,
		device:  device,
		offset:  offset,
	}, nil
}

// AllocRaw allocates a contiguous view on device.
func AllocRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	strides, err := ContiguousStrides(shape, dtype.Size())
	if err != nil {
		return nil, err
	}
	buf, err := device.Allocate(shape.NumElements() * dtype.Size())
	if err != nil {
		return nil, err
	}
	return NewRawTensor(shape, strides, dtype, device, buf, 0)
}

// Shape returns the view's shape. The layout accessors accept a nil view so
// validation can report it instead of panicking.
func (r *RawTensor) Shape() Shape {
	if r == nil {
		return nil
	}
	return r.shape
}

// Strides returns the view's byte strides.
func (r *RawTensor) Strides() Strides {
	return r.strides
}

// DType returns the element type.
func (r *RawTensor) DType() DataType {
	if r == nil {
		return Bool
	}
	return r.dtype
}

// Device returns the device holding the buffer.
func (r *RawTensor) Device() Device {
	if r == nil {
		return nil
	}
	return r.device
}

// Buffer returns the underlying buffer.
func (r *RawTensor) Buffer() *Buffer {
	return r.buffer
}

// Offset returns the byte offset of element (0, ..., 0) in the buffer.
func (r *RawTensor) Offset() int {
	return r.offset
}

// Ndim returns the rank.
func (r *RawTensor) Ndim() int {
	return r.Shape().Ndim()
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the number of bytes the elements occupy when packed.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// IsContiguous reports whether the view is row-major and packed.
func (r *RawTensor) IsContiguous() bool {
	return r.strides.IsContiguous(r.shape, r.dtype.Size())
}

// ByteOffset returns the buffer byte offset of the element at index.
func (r *RawTensor) ByteOffset(index ...int) (int, error) {
	if len(index) != r.Ndim() {
		return 0, DimensionErrorf("expected %d indices, got %d", r.Ndim(), len(index))
	}
	for i, idx := range index {
		if idx < 0 || idx >= r.shape[i] {
			return 0, DimensionErrorf("index %d out of bounds for axis %d with size %d", idx, i, r.shape[i])
		}
	}
	off, err := r.strides.Offset(index)
	if err != nil {
		return 0, err
	}
	return r.offset + off, nil
}

// WithLayout returns a view of the same buffer with a different layout.
func (r *RawTensor) WithLayout(shape Shape, strides Strides, offset int) (*RawTensor, error) {
	return NewRawTensor(shape, strides, r.dtype, r.device, r.buffer, offset)
}

// HostBytes returns the host memory starting at the view offset.
// It panics when the buffer is not host addressable.
func (r *RawTensor) HostBytes() []byte {
	host := r.buffer.Bytes()
	if host == nil {
		panic(fmt.Sprintf("buffer on %s is not host addressable", r.device.Name()))
	}
	return host[r.offset:]
}

// String returns a short description of the view.
func (r *RawTensor) String() string {
	name := "<nil>"
	if r.device != nil {
		name = r.device.Name()
	}
	return fmt.Sprintf("RawTensor[%s]%v strides=%v offset=%d on %s", r.dtype, r.shape, r.strides, r.offset, name)
}

func (r *RawTensor) packed(dt DataType) []byte {
	if r.dtype != dt {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, dt))
	}
	if !r.IsContiguous() {
		panic("typed access requires a contiguous view")
	}
	return r.HostBytes()[:r.ByteSize()]
}

// AsFloat32 interprets a contiguous host view as []float32.
// Panics if the dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	data := r.packed(Float32)
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by packed()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat64 interprets a contiguous host view as []float64.
// Panics if the dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	data := r.packed(Float64)
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by packed()
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt32 interprets a contiguous host view as []int32.
// Panics if the dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	data := r.packed(Int32)
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by packed()
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt64 interprets a contiguous host view as []int64.
// Panics if the dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	data := r.packed(Int64)
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by packed()
	return unsafe.Slice((*int64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsBool interprets a contiguous host view as []bool.
// Panics if the dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	data := r.packed(Bool)
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by packed()
	return unsafe.Slice((*bool)(unsafe.Pointer(&data[0])), r.NumElements())
}
