//go:build windows

// Package webgpu implements a GPU backend on WebGPU through go-webgpu
// (zero-CGO bindings to wgpu-native).
//
// Buffers live in GPU memory and are not host addressable. Kernels are
// submitted to the device queue and run asynchronously; Synchronize waits for
// them. Fill, Copy, Add and Mul are implemented for contiguous float32 data.
package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"k8s.io/klog/v2"

	"github.com/born-ml/ndarray/internal/backend"
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

// Name is the backend name used in device names ("webgpu:0").
const Name = "webgpu"

func init() {
	backend.Register(Name, func(*backend.Context) (tensor.Backend, error) {
		return New()
	})
}

// Verify that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Backend owns one WebGPU adapter and exposes it as device 0.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	pool  *BufferPool
	dev   *Device
	table *kernels.Table
}

// New creates the backend. It fails with a device error when WebGPU or the
// native library is not available.
func New() (b *Backend, err error) {
	// wgpu-native panics when its shared library cannot be loaded.
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = tensor.DeviceErrorf("%s: native library not available: %v", Name, r)
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, tensor.DeviceErrorf("%s: failed to create instance: %v", Name, err)
	}
	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		instance.Release()
		return nil, tensor.DeviceErrorf("%s: failed to request adapter: %v", Name, err)
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, tensor.DeviceErrorf("%s: failed to request device: %v", Name, err)
	}
	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, tensor.DeviceErrorf("%s: failed to get queue", Name)
	}

	b = &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		pool:      NewBufferPool(device),
	}
	b.dev = &Device{backend: b}
	b.table = b.registerKernels()
	klog.V(1).Infof("%s: device ready", Name)
	return b, nil
}

// Release releases every WebGPU object held by the backend. Arrays still on
// the device must not be used afterwards.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pool != nil {
		b.pool.Clear()
		b.pool = nil
	}
	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil
	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return Name
}

// DeviceCount returns 1: one adapter per backend.
func (b *Backend) DeviceCount() int {
	return 1
}

// Device returns device 0.
func (b *Backend) Device(index int) (tensor.Device, error) {
	if index != 0 {
		return nil, tensor.DeviceErrorf("%s backend has 1 device, no index %d", Name, index)
	}
	return b.dev, nil
}

// SupportsTransfer reports whether one side of the transfer is this backend.
// The other side must hold host-addressable memory.
func (b *Backend) SupportsTransfer(src, dst tensor.Device) bool {
	return src != nil && dst != nil && (src.Backend() == tensor.Backend(b) || dst.Backend() == tensor.Backend(b))
}

// Kernel returns the implementation of the named operation.
func (b *Backend) Kernel(name string) (any, bool) {
	return b.table.Lookup(name)
}

// Kernels returns the kernel table.
func (b *Backend) Kernels() *kernels.Table {
	return b.table
}

func (b *Backend) registerKernels() *kernels.Table {
	t := kernels.NewTable(Name)
	kernels.MustRegister(t, kernels.OpFill, kernels.FillFunc(b.fill))
	kernels.MustRegister(t, kernels.OpCopy, kernels.UnaryFunc(b.copy))
	kernels.MustRegister(t, kernels.OpAdd, kernels.BinaryFunc(b.add))
	kernels.MustRegister(t, kernels.OpMul, kernels.BinaryFunc(b.mul))
	kernels.MustRegister(t, kernels.OpDivide, kernels.BinaryFunc(b.divide))
	return t
}
