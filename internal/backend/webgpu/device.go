//go:build windows

package webgpu

import (
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"
	"k8s.io/klog/v2"

	"github.com/born-ml/ndarray/internal/tensor"
)

// gpuBuffer is the handle stored in tensor.Buffer for device memory.
type gpuBuffer struct {
	buf  *wgpu.Buffer
	size uint64 // allocated size, at least the requested one
}

// Device is the WebGPU execution target.
type Device struct {
	backend *Backend
}

// Backend returns the owning backend.
func (d *Device) Backend() tensor.Backend { return d.backend }

// Index returns 0.
func (d *Device) Index() int { return 0 }

// Name returns "webgpu:0".
func (d *Device) Name() string { return fmt.Sprintf("%s:%d", Name, 0) }

// Allocate returns a zeroed device buffer. Sizes are rounded up to whole
// 4-byte words.
func (d *Device) Allocate(size int) (*tensor.Buffer, error) {
	if size < 0 {
		return nil, tensor.ResourceErrorf("%s: invalid allocation size %d", d.Name(), size)
	}
	b := d.backend
	words := uint64(max(size, 1)+3) / 4
	buf, got, recycled := b.pool.Acquire(words * 4)
	if recycled {
		// Recycled buffers hold stale data.
		b.clear(buf, got)
	}
	klog.V(2).Infof("%s: allocate %d bytes", d.Name(), size)
	h := &gpuBuffer{buf: buf, size: got}
	return tensor.NewBuffer(d, size, nil, h, func() { b.pool.Release(h.buf, h.size) }), nil
}

// MemoryCopyFrom copies size bytes of src into dst, which lives on d. src may
// be host memory or another buffer of d.
func (d *Device) MemoryCopyFrom(dst *tensor.Buffer, dstOffset int, src *tensor.Buffer, srcOffset int, size int) error {
	dh, err := d.handle(dst)
	if err != nil {
		return err
	}
	if err := checkCopy(dstOffset, srcOffset, size); err != nil {
		return err
	}
	if host := src.Bytes(); host != nil {
		if srcOffset+size > len(host) {
			return tensor.DimensionErrorf("%s: copy of %d bytes at %d exceeds source of %d bytes", d.Name(), size, srcOffset, len(host))
		}
		staging := d.backend.createBuffer(host[srcOffset:srcOffset+size], wgpu.BufferUsageCopySrc)
		defer staging.Release()
		d.backend.copyBuffers(staging, 0, dh.buf, dstOffset, size)
		return nil
	}
	sh, err := d.handle(src)
	if err != nil {
		return err
	}
	d.backend.copyBuffers(sh.buf, srcOffset, dh.buf, dstOffset, size)
	return nil
}

// MemoryCopyTo copies size bytes of src, which lives on d, into dst. dst may
// be host memory or another buffer of d.
func (d *Device) MemoryCopyTo(dst *tensor.Buffer, dstOffset int, src *tensor.Buffer, srcOffset int, size int) error {
	sh, err := d.handle(src)
	if err != nil {
		return err
	}
	if err := checkCopy(dstOffset, srcOffset, size); err != nil {
		return err
	}
	if host := dst.Bytes(); host != nil {
		if dstOffset+size > len(host) {
			return tensor.DimensionErrorf("%s: copy of %d bytes at %d exceeds destination of %d bytes", d.Name(), size, dstOffset, len(host))
		}
		data, err := d.backend.readBuffer(sh.buf, srcOffset, size)
		if err != nil {
			return err
		}
		copy(host[dstOffset:], data)
		return nil
	}
	dh, err := d.handle(dst)
	if err != nil {
		return err
	}
	d.backend.copyBuffers(sh.buf, srcOffset, dh.buf, dstOffset, size)
	return nil
}

// TransferDataFrom copies size bytes of the host-addressable buf into a new
// device buffer.
func (d *Device) TransferDataFrom(src tensor.Device, buf *tensor.Buffer, offset, size int) (*tensor.Buffer, error) {
	out, err := d.Allocate(size)
	if err != nil {
		return nil, err
	}
	if err := d.MemoryCopyFrom(out, 0, buf, offset, size); err != nil {
		out.Release()
		return nil, err
	}
	klog.V(2).Infof("transfer %d bytes %s -> %s", size, src.Name(), d.Name())
	return out, nil
}

// TransferDataTo moves size bytes of buf, owned by d, onto dst.
func (d *Device) TransferDataTo(dst tensor.Device, buf *tensor.Buffer, offset, size int) (*tensor.Buffer, error) {
	if dst.Backend() != tensor.Backend(d.backend) {
		return dst.TransferDataFrom(d, buf, offset, size)
	}
	return d.TransferDataFrom(d, buf, offset, size)
}

// FromHostMemory uploads data into a new device buffer. The device cannot
// address host memory, so the data is always copied.
func (d *Device) FromHostMemory(data []byte) (*tensor.Buffer, error) {
	out, err := d.Allocate(len(data))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return out, nil
	}
	host := tensor.NewBuffer(nil, len(data), data, nil, nil)
	if err := d.MemoryCopyFrom(out, 0, host, 0, len(data)); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Synchronize blocks until every command submitted to the queue has finished.
func (d *Device) Synchronize() error {
	return d.backend.wait()
}

func (d *Device) handle(buf *tensor.Buffer) (*gpuBuffer, error) {
	if buf == nil || !tensor.SameDevice(buf.Device(), d) {
		return nil, tensor.DeviceErrorf("%s: buffer does not belong to this device", d.Name())
	}
	h, ok := buf.Handle().(*gpuBuffer)
	if !ok || h == nil || h.buf == nil {
		return nil, tensor.DeviceErrorf("%s: buffer has no device memory", d.Name())
	}
	return h, nil
}

// checkCopy enforces WebGPU's 4-byte alignment of copy offsets and sizes.
func checkCopy(dstOffset, srcOffset, size int) error {
	if size < 0 || dstOffset < 0 || srcOffset < 0 {
		return tensor.DimensionErrorf("%s: negative copy range", Name)
	}
	if size%4 != 0 || dstOffset%4 != 0 || srcOffset%4 != 0 {
		return tensor.DimensionErrorf("%s: copy offsets and size must be multiples of 4 (dst %d, src %d, size %d)",
			Name, dstOffset, srcOffset, size)
	}
	return nil
}
