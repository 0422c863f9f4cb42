//go:build windows

package webgpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndarray/internal/array"
	"github.com/born-ml/ndarray/internal/autodiff"
	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/backend/webgpu"
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

func newBackend(t *testing.T) *webgpu.Backend {
	t.Helper()
	b, err := webgpu.New()
	if err != nil {
		t.Skipf("WebGPU not available: %v", err)
	}
	t.Cleanup(b.Release)
	return b
}

// TestRoundTrip tests uploading, computing and reading back on the GPU.
func TestRoundTrip(t *testing.T) {
	b := newBackend(t)
	gpu, err := b.Device(0)
	require.NoError(t, err)
	host := cpu.New().MustDevice(0)

	a, err := array.FromSlice([]float32{1, 2, 3}, nil, host)
	require.NoError(t, err)
	ga, err := a.ToDevice(gpu)
	require.NoError(t, err)
	gb, err := array.Full(tensor.Shape{3}, float32(2), tensor.Float32, gpu)
	require.NoError(t, err)

	prod, err := array.Mul(ga, gb)
	require.NoError(t, err)
	require.NoError(t, prod.IAdd(gb))
	require.NoError(t, gpu.Synchronize())

	got, err := array.ToSlice[float32](prod)
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 6, 8}, got)
}

// TestGradientReturnsToHost tests a backward pass across the transfer.
func TestGradientReturnsToHost(t *testing.T) {
	b := newBackend(t)
	gpu, err := b.Device(0)
	require.NoError(t, err)
	host := cpu.New().MustDevice(0)

	x, err := array.FromSlice([]float32{3, 4}, nil, host)
	require.NoError(t, err)
	x.RequireGrad()
	gx, err := x.ToDevice(gpu)
	require.NoError(t, err)
	y, err := array.Mul(gx, gx)
	require.NoError(t, err)
	require.NoError(t, y.Backward())

	g, err := x.GetGrad(autodiff.DefaultGraphID)
	require.NoError(t, err)
	assert.Same(t, host, g.Device())
	got, err := array.ToSlice[float32](g)
	require.NoError(t, err)
	assert.Equal(t, []float32{6, 8}, got)
}

// TestMissingKernel tests that operations outside the GPU table fail cleanly.
func TestMissingKernel(t *testing.T) {
	b := newBackend(t)
	gpu, err := b.Device(0)
	require.NoError(t, err)

	a, err := array.Ones(tensor.Shape{2}, tensor.Float32, gpu)
	require.NoError(t, err)
	_, err = array.Exp(a)
	assert.ErrorIs(t, err, tensor.ErrDevice)
	assert.Contains(t, b.Kernels().Missing(), kernels.OpExp)
}
