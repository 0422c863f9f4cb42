package tensor

import (
	"strconv"
	"strings"
)

// Device is one execution target of a backend, e.g. "cpu:0".
//
// Arrays on different devices cannot be combined by a kernel without an
// explicit transfer.
type Device interface {
	// Backend returns the backend owning the device.
	Backend() Backend
	// Index returns the device index within its backend.
	Index() int
	// Name returns "<backend>:<index>".
	Name() string

	// Allocate returns a zeroed buffer of size bytes.
	Allocate(size int) (*Buffer, error)
	// MemoryCopyFrom copies size bytes from src (possibly on another device) into dst on this device.
	MemoryCopyFrom(dst *Buffer, dstOffset int, src *Buffer, srcOffset int, size int) error
	// MemoryCopyTo copies size bytes from src on this device into dst (possibly on another device).
	MemoryCopyTo(dst *Buffer, dstOffset int, src *Buffer, srcOffset int, size int) error
	// TransferDataFrom moves size bytes starting at offset of buf, owned by src, onto this device.
	// The result may alias buf when both devices can address the same memory.
	TransferDataFrom(src Device, buf *Buffer, offset, size int) (*Buffer, error)
	// TransferDataTo moves size bytes starting at offset of buf, owned by this device, onto dst.
	TransferDataTo(dst Device, buf *Buffer, offset, size int) (*Buffer, error)
	// FromHostMemory wraps caller owned host memory without copying when possible.
	FromHostMemory(data []byte) (*Buffer, error)
	// Synchronize blocks until all work issued on the device has completed.
	Synchronize() error
}

// Backend is a family of devices sharing one kernel implementation table.
type Backend interface {
	// Name returns the backend name used in device names.
	Name() string
	// DeviceCount returns the number of available devices.
	DeviceCount() int
	// Device returns the device with the given index.
	Device(index int) (Device, error)
	// SupportsTransfer reports whether data can move directly between src and dst.
	SupportsTransfer(src, dst Device) bool
	// Kernel returns the implementation registered for the named operation.
	Kernel(name string) (any, bool)
}

// ParseDeviceName splits "backend:index" into its parts.
// A name without an index refers to device 0.
func ParseDeviceName(name string) (backend string, index int, err error) {
	backend, idx, found := strings.Cut(name, ":")
	if backend == "" {
		return "", 0, DeviceErrorf("invalid device name %q", name)
	}
	if !found {
		return backend, 0, nil
	}
	index, err = strconv.Atoi(idx)
	if err != nil || index < 0 {
		return "", 0, DeviceErrorf("invalid device index in %q", name)
	}
	return backend, index, nil
}

// SameDevice reports whether a and b denote the same device.
func SameDevice(a, b Device) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a == b || (a.Backend() == b.Backend() && a.Index() == b.Index())
}
