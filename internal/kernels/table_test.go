package kernels_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

func TestRegister_Signature(t *testing.T) {
	table := kernels.NewTable("test")

	err := kernels.Register(table, kernels.OpFill, kernels.FillFunc(func(*tensor.RawTensor, tensor.Scalar) error { return nil }))
	require.NoError(t, err)

	// A Fill implementation cannot stand in for Add.
	err = kernels.Register(table, kernels.OpAdd, kernels.FillFunc(func(*tensor.RawTensor, tensor.Scalar) error { return nil }))
	assert.ErrorIs(t, err, tensor.ErrDevice)

	// Unnamed function types differ from the catalog type.
	err = kernels.Register(table, kernels.OpExp, func(x, out *tensor.RawTensor) error { return nil })
	assert.ErrorIs(t, err, tensor.ErrDevice)

	err = kernels.Register(table, "Softmax", kernels.UnaryFunc(func(x, out *tensor.RawTensor) error { return nil }))
	assert.ErrorIs(t, err, tensor.ErrDevice)

	assert.Panics(t, func() {
		kernels.MustRegister(table, kernels.OpMul, kernels.UnaryFunc(nil))
	})
}

func TestTable_LookupAndMissing(t *testing.T) {
	table := kernels.NewTable("test")
	kernels.MustRegister(table, kernels.OpCopy, kernels.UnaryFunc(func(x, out *tensor.RawTensor) error { return nil }))
	kernels.MustRegister(table, kernels.OpAdd, kernels.BinaryFunc(func(a, b, out *tensor.RawTensor) error { return nil }))

	fn, ok := table.Lookup(kernels.OpCopy)
	assert.True(t, ok)
	assert.IsType(t, kernels.UnaryFunc(nil), fn)

	_, ok = table.Lookup(kernels.OpMul)
	assert.False(t, ok)

	assert.Equal(t, []string{kernels.OpAdd, kernels.OpCopy}, table.Names())
	missing := table.Missing()
	assert.Contains(t, missing, kernels.OpMul)
	assert.NotContains(t, missing, kernels.OpAdd)
	assert.IsIncreasing(t, missing)

	sig, ok := kernels.Signature(kernels.OpSum)
	require.True(t, ok)
	assert.Equal(t, "ReduceFunc", sig.Name())
}

func TestNormalizeAxes(t *testing.T) {
	axes, err := kernels.NormalizeAxes("Sum", []int{2, -3}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, axes)

	_, err = kernels.NormalizeAxes("Sum", []int{3}, 3)
	assert.ErrorIs(t, err, tensor.ErrDimension)
	_, err = kernels.NormalizeAxes("Sum", []int{1, -2}, 3)
	assert.ErrorIs(t, err, tensor.ErrDimension)

	assert.Equal(t, tensor.Shape{2, 4}, kernels.ReducedShape(tensor.Shape{2, 3, 4}, []int{1}))
	assert.Equal(t, tensor.Shape{}, kernels.ReducedShape(tensor.Shape{2, 3}, []int{0, 1}))
}
