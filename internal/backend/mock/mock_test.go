package mock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndarray/internal/backend/mock"
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

func TestMock_PartialTable(t *testing.T) {
	m := mock.New(2)
	assert.Equal(t, 2, m.DeviceCount())
	assert.Equal(t, []string{kernels.OpAdd, kernels.OpCopy, kernels.OpFill}, m.Kernels().Names())
	assert.Contains(t, m.Kernels().Missing(), kernels.OpMul)

	_, err := m.Device(2)
	assert.ErrorIs(t, err, tensor.ErrDevice)
}

func TestMock_Kernels(t *testing.T) {
	d, err := mock.New(1).Device(0)
	require.NoError(t, err)
	assert.Equal(t, "mock:0", d.Name())

	a, err := tensor.AllocRaw(tensor.Shape{3}, tensor.Int32, d)
	require.NoError(t, err)
	out, err := tensor.AllocRaw(tensor.Shape{3}, tensor.Int32, d)
	require.NoError(t, err)

	require.NoError(t, kernels.Fill(a, tensor.IntScalar(4)))
	require.NoError(t, kernels.Add(a, a, out))
	require.NoError(t, kernels.Copy(out, a))
	assert.Equal(t, []int32{8, 8, 8}, a.AsInt32())

	err = kernels.Exp(a, out)
	assert.ErrorIs(t, err, tensor.ErrDtype)
	err = kernels.Sum(a, nil, out)
	assert.ErrorIs(t, err, tensor.ErrDevice)
}

func TestMock_Memory(t *testing.T) {
	d, err := mock.New(1).Device(0)
	require.NoError(t, err)

	src, err := d.FromHostMemory([]byte{1, 2, 3})
	require.NoError(t, err)
	dst, err := d.Allocate(3)
	require.NoError(t, err)
	require.NoError(t, d.MemoryCopyTo(dst, 0, src, 0, 3))
	assert.Equal(t, []byte{1, 2, 3}, dst.Bytes())
	assert.ErrorIs(t, d.MemoryCopyFrom(dst, 1, src, 0, 3), tensor.ErrDimension)

	other, err := mock.New(1).Device(0)
	require.NoError(t, err)
	moved, err := d.TransferDataTo(other, src, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, moved.Bytes())
	assert.False(t, d.Backend().SupportsTransfer(d, other))
}
