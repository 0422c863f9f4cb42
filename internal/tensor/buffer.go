package tensor

import (
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// Buffer is a reference-counted allocation on one device.
//
// Several array bodies may hold the same Buffer (views, sub-arrays, same-device
// transfers). No copy-on-write is performed: writes through one holder are
// visible through all of them. The free hook runs when the last reference is
// released.
type Buffer struct {
	device Device
	size   int
	host   []byte // nil when the memory is not host addressable
	handle any    // backend specific handle, e.g. a GPU buffer
	refs   atomic.Int32
	once   sync.Once
	free   func()
}

// NewBuffer wraps memory owned by device with a reference count of one.
// host may be nil for device-only memory; free may be nil for memory the
// garbage collector or the caller owns.
func NewBuffer(device Device, size int, host []byte, handle any, free func()) *Buffer {
	b := &Buffer{
		device: device,
		size:   size,
		host:   host,
		handle: handle,
		free:   free,
	}
	b.refs.Store(1)
	return b
}

// NewHostBuffer allocates zeroed host memory for device.
func NewHostBuffer(device Device, size int) *Buffer {
	return NewBuffer(device, size, make([]byte, size), nil, nil)
}

// Device returns the device owning the memory.
func (b *Buffer) Device() Device {
	return b.device
}

// Size returns the allocation size in bytes.
func (b *Buffer) Size() int {
	return b.size
}

// Bytes returns the host-addressable memory, or nil for device-only buffers.
func (b *Buffer) Bytes() []byte {
	return b.host
}

// Handle returns the backend specific handle.
func (b *Buffer) Handle() any {
	return b.handle
}

// Retain adds a reference and returns b.
func (b *Buffer) Retain() *Buffer {
	b.refs.Add(1)
	return b
}

// Release drops a reference and frees the memory when it was the last one.
func (b *Buffer) Release() {
	n := b.refs.Add(-1)
	if n < 0 {
		klog.Warningf("buffer of %d bytes released more times than retained", b.size)
		return
	}
	if n != 0 {
		return
	}
	b.once.Do(func() {
		if b.free != nil {
			b.free()
		}
		b.host = nil
	})
}

// RefCount returns the current number of references.
func (b *Buffer) RefCount() int {
	return int(b.refs.Load())
}
