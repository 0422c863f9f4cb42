// Package mock provides a naive in-process backend for tests.
//
// Its devices hold host memory but form a backend of their own, so arrays on a
// mock device and a cpu device cannot be combined without a transfer. Only
// Fill, Copy and Add are implemented; every other kernel is missing on purpose.
package mock

import (
	"fmt"
	"sync"

	"k8s.io/klog/v2"

	"github.com/born-ml/ndarray/internal/backend"
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

// Name is the backend name used in device names ("mock:0").
const Name = "mock"

// Verify that MockBackend implements tensor.Backend.
var _ tensor.Backend = (*MockBackend)(nil)

var registerOnce sync.Once

// Register makes the mock backend available to backend contexts under Name.
// It is not registered by default; calling it more than once is harmless.
func Register() {
	registerOnce.Do(func() {
		backend.Register(Name, func(*backend.Context) (tensor.Backend, error) {
			return New(1), nil
		})
	})
}

// MockBackend is a naive backend with a partial kernel table.
type MockBackend struct {
	devices []*Device
	table   *kernels.Table
}

// New creates a mock backend with n devices.
func New(n int) *MockBackend {
	m := &MockBackend{devices: make([]*Device, max(n, 1))}
	for i := range m.devices {
		m.devices[i] = &Device{backend: m, index: i}
	}
	t := kernels.NewTable(Name)
	kernels.MustRegister(t, kernels.OpFill, kernels.FillFunc(m.fill))
	kernels.MustRegister(t, kernels.OpCopy, kernels.UnaryFunc(m.copy))
	kernels.MustRegister(t, kernels.OpAdd, kernels.BinaryFunc(m.add))
	m.table = t
	return m
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return Name
}

// DeviceCount returns the number of devices.
func (m *MockBackend) DeviceCount() int {
	return len(m.devices)
}

// Device returns the device with the given index.
func (m *MockBackend) Device(index int) (tensor.Device, error) {
	if index < 0 || index >= len(m.devices) {
		return nil, tensor.DeviceErrorf("%s backend has %d device(s), no index %d", Name, len(m.devices), index)
	}
	return m.devices[index], nil
}

// SupportsTransfer reports false: transfers are driven by the other backend.
func (m *MockBackend) SupportsTransfer(_, _ tensor.Device) bool {
	return false
}

// Kernel returns the implementation of the named operation.
func (m *MockBackend) Kernel(name string) (any, bool) {
	return m.table.Lookup(name)
}

// Kernels returns the kernel table.
func (m *MockBackend) Kernels() *kernels.Table {
	return m.table
}

// Device is a mock execution target holding host memory.
type Device struct {
	backend *MockBackend
	index   int
}

// Backend returns the owning backend.
func (d *Device) Backend() tensor.Backend { return d.backend }

// Index returns the device index.
func (d *Device) Index() int { return d.index }

// Name returns "mock:<index>".
func (d *Device) Name() string { return fmt.Sprintf("%s:%d", Name, d.index) }

// Allocate returns a zeroed host buffer.
func (d *Device) Allocate(size int) (*tensor.Buffer, error) {
	if size < 0 {
		return nil, tensor.ResourceErrorf("%s: invalid allocation size %d", d.Name(), size)
	}
	return tensor.NewHostBuffer(d, size), nil
}

// MemoryCopyFrom copies from any host-addressable buffer into dst.
func (d *Device) MemoryCopyFrom(dst *tensor.Buffer, dstOffset int, src *tensor.Buffer, srcOffset int, size int) error {
	return hostCopy(dst, dstOffset, src, srcOffset, size)
}

// MemoryCopyTo copies src into any host-addressable buffer.
func (d *Device) MemoryCopyTo(dst *tensor.Buffer, dstOffset int, src *tensor.Buffer, srcOffset int, size int) error {
	return hostCopy(dst, dstOffset, src, srcOffset, size)
}

// TransferDataFrom copies size bytes of buf into a new buffer on d.
func (d *Device) TransferDataFrom(src tensor.Device, buf *tensor.Buffer, offset, size int) (*tensor.Buffer, error) {
	out, err := d.Allocate(size)
	if err != nil {
		return nil, err
	}
	if err := hostCopy(out, 0, buf, offset, size); err != nil {
		out.Release()
		return nil, err
	}
	klog.V(2).Infof("transfer %d bytes %s -> %s", size, src.Name(), d.Name())
	return out, nil
}

// TransferDataTo copies size bytes of buf into a new buffer on dst.
func (d *Device) TransferDataTo(dst tensor.Device, buf *tensor.Buffer, offset, size int) (*tensor.Buffer, error) {
	return dst.TransferDataFrom(d, buf, offset, size)
}

// FromHostMemory wraps data without copying.
func (d *Device) FromHostMemory(data []byte) (*tensor.Buffer, error) {
	return tensor.NewBuffer(d, len(data), data, nil, nil), nil
}

// Synchronize returns immediately.
func (d *Device) Synchronize() error { return nil }

func hostCopy(dst *tensor.Buffer, dstOffset int, src *tensor.Buffer, srcOffset int, size int) error {
	db, sb := dst.Bytes(), src.Bytes()
	if db == nil || sb == nil {
		return tensor.DeviceErrorf("%s: buffers must be host addressable", Name)
	}
	if dstOffset < 0 || srcOffset < 0 || dstOffset+size > len(db) || srcOffset+size > len(sb) {
		return tensor.DimensionErrorf("%s: copy of %d bytes out of range", Name, size)
	}
	copy(db[dstOffset:dstOffset+size], sb[srcOffset:srcOffset+size])
	return nil
}

// Kernels compute element by element through tensor.Scalar.

func (m *MockBackend) fill(out *tensor.RawTensor, value tensor.Scalar) error {
	host := out.Buffer().Bytes()
	for _, off := range out.ByteOffsets() {
		tensor.PutElement(host[off:], out.DType(), value)
	}
	return nil
}

func (m *MockBackend) copy(x, out *tensor.RawTensor) error {
	src, dst := x.Buffer().Bytes(), out.Buffer().Bytes()
	xo, oo := x.ByteOffsets(), out.ByteOffsets()
	for i := range oo {
		tensor.PutElement(dst[oo[i]:], out.DType(), tensor.Element(src[xo[i]:], x.DType()))
	}
	return nil
}

func (m *MockBackend) add(a, b, out *tensor.RawTensor) error {
	ab, bb, ob := a.Buffer().Bytes(), b.Buffer().Bytes(), out.Buffer().Bytes()
	ao, bo, oo := a.ByteOffsets(), b.ByteOffsets(), out.ByteOffsets()
	for i := range oo {
		x, y := tensor.Element(ab[ao[i]:], a.DType()), tensor.Element(bb[bo[i]:], b.DType())
		var v tensor.Scalar
		switch a.DType().Kind() {
		case tensor.KindFloat:
			v = tensor.FloatScalar(x.Float64() + y.Float64())
		case tensor.KindBool:
			v = tensor.BoolScalar(x.Bool() || y.Bool())
		default:
			v = tensor.IntScalar(x.Int64() + y.Int64())
		}
		tensor.PutElement(ob[oo[i]:], out.DType(), v)
	}
	return nil
}
