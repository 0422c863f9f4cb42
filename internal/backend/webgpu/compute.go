//go:build windows

package webgpu

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/ndarray/internal/tensor"
)

// compileShader compiles WGSL code once per name.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, ok := b.shaders[name]; ok {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	defer b.mu.Unlock()
	if cached, ok := b.shaders[name]; ok {
		shader.Release()
		return cached
	}
	b.shaders[name] = shader
	return shader
}

// pipeline returns the cached compute pipeline for a shader.
func (b *Backend) pipeline(name, code string) *wgpu.ComputePipeline {
	b.mu.RLock()
	if p, ok := b.pipelines[name]; ok {
		b.mu.RUnlock()
		return p
	}
	b.mu.RUnlock()

	shader := b.compileShader(name, code)
	p := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	defer b.mu.Unlock()
	if cached, ok := b.pipelines[name]; ok {
		p.Release()
		return cached
	}
	b.pipelines[name] = p
	return p
}

// createBuffer creates a buffer initialized with data, padded to 4 bytes.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data)+3) &^ 3
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mapped := buffer.GetMappedRange(0, size)
	//nolint:gosec // mapped range is valid for size bytes until Unmap
	copy(unsafe.Slice((*byte)(mapped), size), data)
	buffer.Unmap()
	return buffer
}

// createUniformBuffer creates a 16-byte aligned uniform buffer.
func (b *Backend) createUniformBuffer(data []byte) *wgpu.Buffer {
	padded := make([]byte, (len(data)+15)&^15)
	copy(padded, data)
	return b.createBuffer(padded, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
}

// copyBuffers submits a device-side copy.
func (b *Backend) copyBuffers(src *wgpu.Buffer, srcOffset int, dst *wgpu.Buffer, dstOffset int, size int) {
	if size == 0 {
		return
	}
	encoder := b.device.CreateCommandEncoder(nil)
	//nolint:gosec // offsets and size are validated non-negative
	encoder.CopyBufferToBuffer(src, uint64(srcOffset), dst, uint64(dstOffset), uint64(size))
	b.queue.Submit(encoder.Finish(nil))
}

// readBuffer copies size bytes at offset of src back to host memory through a
// mappable staging buffer. It waits for all previously submitted work.
func (b *Backend) readBuffer(src *wgpu.Buffer, offset, size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	//nolint:gosec // size is validated non-negative
	n := uint64(size)
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  n,
	})
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	//nolint:gosec // offset is validated non-negative
	encoder.CopyBufferToBuffer(src, uint64(offset), staging, 0, n)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, n); err != nil {
		return nil, tensor.DeviceErrorf("%s: failed to map staging buffer: %v", Name, err)
	}
	mapped := staging.GetMappedRange(0, n)
	out := make([]byte, size)
	//nolint:gosec // mapped range is valid for n bytes until Unmap
	copy(out, unsafe.Slice((*byte)(mapped), n))
	staging.Unmap()
	return out, nil
}

// wait blocks until the queue has drained. The queue executes in order, so
// mapping a buffer written by a final copy waits for everything before it.
func (b *Backend) wait() error {
	marker := b.createBuffer(make([]byte, 4), wgpu.BufferUsageCopySrc)
	defer marker.Release()
	_, err := b.readBuffer(marker, 0, 4)
	return err
}

// clear zeroes size bytes of buf.
func (b *Backend) clear(buf *wgpu.Buffer, size uint64) {
	//nolint:gosec // pool sizes fit in uint32 word counts
	b.run(fillShaderName, fillShader, uint32(size/4), []*wgpu.Buffer{buf}, []uint64{size}, params(uint32(size/4), 0, math.Float32bits(0)))
}

// run dispatches a shader over n elements. buffers are bound in order from
// binding 0 with their sizes; the uniform parameters follow them.
func (b *Backend) run(name, code string, n uint32, buffers []*wgpu.Buffer, sizes []uint64, uniform []byte) {
	if n == 0 {
		return
	}
	p := b.pipeline(name, code)
	paramBuf := b.createUniformBuffer(uniform)
	defer paramBuf.Release()

	entries := make([]wgpu.BindGroupEntry, 0, len(buffers)+1)
	for i, buf := range buffers {
		//nolint:gosec // binding indices are small
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), buf, 0, sizes[i]))
	}
	//nolint:gosec // binding indices are small
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(buffers)), paramBuf, 0, uint64((len(uniform)+15)&^15)))
	group := b.device.CreateBindGroupSimple(p.GetBindGroupLayout(0), entries)
	defer group.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p)
	pass.SetBindGroup(0, group, nil)
	pass.DispatchWorkgroups((n+workgroupSize-1)/workgroupSize, 1, 1)
	pass.End()
	b.queue.Submit(encoder.Finish(nil))
}

// params packs uint32 shader parameters little-endian.
func params(values ...uint32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[4*i:], v)
	}
	return out
}
