//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"k8s.io/klog/v2"
)

// sizeClass groups pooled buffers by allocation size.
type sizeClass int

const (
	smallClass  sizeClass = iota // < 4KB
	mediumClass                  // 4KB - 1MB
	largeClass                   // > 1MB
)

const (
	smallThreshold  = 4 * 1024
	mediumThreshold = 1024 * 1024
	maxPoolSize     = 100 // per class
)

// storageUsage is the usage of every array buffer.
const storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

// BufferPool recycles storage buffers released by arrays.
type BufferPool struct {
	device *wgpu.Device
	pools  [3][]*pooledBuffer
	mu     sync.Mutex

	hits, misses uint64
}

// NewBufferPool creates an empty pool for device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{device: device}
}

// Acquire returns a storage buffer of at least size bytes, its actual size,
// and whether it was recycled. New buffers are zero-initialized.
func (p *BufferPool) Acquire(size uint64) (*wgpu.Buffer, uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := classify(size)
	for i, pb := range p.pools[class] {
		if pb.size >= size {
			p.pools[class] = append(p.pools[class][:i], p.pools[class][i+1:]...)
			p.hits++
			return pb.buffer, pb.size, true
		}
	}
	p.misses++
	buf := p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: storageUsage,
		Size:  size,
	})
	return buf, size, false
}

// Release returns a buffer to the pool, or frees it when the pool is full.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := classify(size)
	if len(p.pools[class]) >= maxPoolSize {
		buffer.Release()
		return
	}
	p.pools[class] = append(p.pools[class], &pooledBuffer{buffer: buffer, size: size})
}

// Clear frees every pooled buffer.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for class := range p.pools {
		for _, pb := range p.pools[class] {
			pb.buffer.Release()
		}
		p.pools[class] = nil
	}
	klog.V(2).Infof("%s: buffer pool cleared (hits=%d misses=%d)", Name, p.hits, p.misses)
}

// Stats returns pool hits, misses and the number of idle buffers.
func (p *BufferPool) Stats() (hits, misses uint64, pooled int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pool := range p.pools {
		pooled += len(pool)
	}
	return p.hits, p.misses, pooled
}

func classify(size uint64) sizeClass {
	switch {
	case size < smallThreshold:
		return smallClass
	case size < mediumThreshold:
		return mediumClass
	default:
		return largeClass
	}
}
