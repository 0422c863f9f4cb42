package cpu

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/born-ml/ndarray/internal/tensor"
)

// Device is one host execution target.
type Device struct {
	backend *CPUBackend
	index   int
}

// Backend returns the owning backend.
func (d *Device) Backend() tensor.Backend {
	return d.backend
}

// Index returns the device index.
func (d *Device) Index() int {
	return d.index
}

// Name returns "cpu:<index>".
func (d *Device) Name() string {
	return fmt.Sprintf("%s:%d", Name, d.index)
}

// String implements fmt.Stringer.
func (d *Device) String() string {
	return d.Name()
}

// Allocate returns a zeroed host buffer.
func (d *Device) Allocate(size int) (buf *tensor.Buffer, err error) {
	if size < 0 {
		return nil, tensor.ResourceErrorf("%s: invalid allocation size %d", d.Name(), size)
	}
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = tensor.ResourceErrorf("%s: failed to allocate %d bytes: %v", d.Name(), size, r)
		}
	}()
	klog.V(2).Infof("%s: allocate %d bytes", d.Name(), size)
	return tensor.NewHostBuffer(d, size), nil
}

// MemoryCopyFrom copies size bytes of src into dst, which lives on d.
func (d *Device) MemoryCopyFrom(dst *tensor.Buffer, dstOffset int, src *tensor.Buffer, srcOffset int, size int) error {
	if err := d.checkOwned(dst); err != nil {
		return err
	}
	if src.Bytes() == nil {
		if src.Device() == nil || src.Device().Backend() == tensor.Backend(d.backend) {
			return tensor.DeviceErrorf("%s: source buffer has no host memory", d.Name())
		}
		return src.Device().MemoryCopyTo(dst, dstOffset, src, srcOffset, size)
	}
	return copyBytes(dst.Bytes(), dstOffset, src.Bytes(), srcOffset, size)
}

// MemoryCopyTo copies size bytes of src, which lives on d, into dst.
func (d *Device) MemoryCopyTo(dst *tensor.Buffer, dstOffset int, src *tensor.Buffer, srcOffset int, size int) error {
	if err := d.checkOwned(src); err != nil {
		return err
	}
	if dst.Bytes() == nil {
		if dst.Device() == nil || dst.Device().Backend() == tensor.Backend(d.backend) {
			return tensor.DeviceErrorf("%s: destination buffer has no host memory", d.Name())
		}
		return dst.Device().MemoryCopyFrom(dst, dstOffset, src, srcOffset, size)
	}
	return copyBytes(dst.Bytes(), dstOffset, src.Bytes(), srcOffset, size)
}

// TransferDataFrom copies size bytes of buf, owned by src, into a new buffer on d.
func (d *Device) TransferDataFrom(src tensor.Device, buf *tensor.Buffer, offset, size int) (*tensor.Buffer, error) {
	dst, err := d.Allocate(size)
	if err != nil {
		return nil, err
	}
	if err := d.MemoryCopyFrom(dst, 0, buf, offset, size); err != nil {
		dst.Release()
		return nil, err
	}
	klog.V(2).Infof("transfer %d bytes %s -> %s", size, src.Name(), d.Name())
	return dst, nil
}

// TransferDataTo copies size bytes of buf, owned by d, into a new buffer on dst.
func (d *Device) TransferDataTo(dst tensor.Device, buf *tensor.Buffer, offset, size int) (*tensor.Buffer, error) {
	if dst.Backend() != tensor.Backend(d.backend) {
		return dst.TransferDataFrom(d, buf, offset, size)
	}
	out, err := dst.Allocate(size)
	if err != nil {
		return nil, err
	}
	if err := d.MemoryCopyTo(out, 0, buf, offset, size); err != nil {
		out.Release()
		return nil, err
	}
	klog.V(2).Infof("transfer %d bytes %s -> %s", size, d.Name(), dst.Name())
	return out, nil
}

// FromHostMemory wraps data without copying. The caller keeps ownership and
// must not let it be reused while arrays alias it.
func (d *Device) FromHostMemory(data []byte) (*tensor.Buffer, error) {
	return tensor.NewBuffer(d, len(data), data, nil, nil), nil
}

// Synchronize returns immediately: cpu kernels complete before returning.
func (d *Device) Synchronize() error {
	return nil
}

func (d *Device) checkOwned(buf *tensor.Buffer) error {
	if buf == nil || !tensor.SameDevice(buf.Device(), d) {
		return tensor.DeviceErrorf("%s: buffer does not belong to this device", d.Name())
	}
	return nil
}

func copyBytes(dst []byte, dstOffset int, src []byte, srcOffset int, size int) error {
	if size < 0 || dstOffset < 0 || srcOffset < 0 || dstOffset+size > len(dst) || srcOffset+size > len(src) {
		return tensor.DimensionErrorf("copy of %d bytes out of range (dst %d+%d of %d, src %d+%d of %d)",
			size, dstOffset, size, len(dst), srcOffset, size, len(src))
	}
	copy(dst[dstOffset:dstOffset+size], src[srcOffset:srcOffset+size])
	return nil
}
