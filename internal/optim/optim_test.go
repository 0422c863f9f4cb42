package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndarray/internal/array"
	"github.com/born-ml/ndarray/internal/autodiff"
	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/optim"
	"github.com/born-ml/ndarray/internal/tensor"
)

const graph autodiff.GraphID = "train"

func param(t *testing.T, values ...float32) *array.Array {
	t.Helper()
	p, err := array.FromSlice(values, nil, cpu.New().MustDevice(0))
	require.NoError(t, err)
	return p.RequireGrad(graph)
}

func setGrad(t *testing.T, p *array.Array, values ...float32) {
	t.Helper()
	g, err := array.FromSlice(values, nil, p.Device())
	require.NoError(t, err)
	require.NoError(t, p.SetGrad(g, graph))
}

func floats(t *testing.T, a *array.Array) []float32 {
	t.Helper()
	v, err := array.ToSlice[float32](a)
	require.NoError(t, err)
	return v
}

var _ optim.Optimizer = (*optim.SGD)(nil)
var _ optim.Optimizer = (*optim.Adam)(nil)

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	p := param(t, 2, -1)
	setGrad(t, p, 1, -2)

	opt := optim.NewSGD([]*array.Array{p}, graph, optim.SGDConfig{LR: 0.1})
	require.NoError(t, opt.Step())
	assert.InDeltaSlice(t, []float32{1.9, -0.8}, floats(t, p), 1e-6)

	// The parameter is still a leaf of the graph.
	assert.True(t, p.Node(graph).IsLeaf())
}

// TestSGD_WithMomentum tests velocity accumulation across steps.
func TestSGD_WithMomentum(t *testing.T) {
	p := param(t, 1)
	opt := optim.NewSGD([]*array.Array{p}, graph, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	setGrad(t, p, 1)
	require.NoError(t, opt.Step())
	assert.InDelta(t, 0.9, floats(t, p)[0], 1e-6)

	// velocity = 0.9*1 + 1 = 1.9
	setGrad(t, p, 1)
	require.NoError(t, opt.Step())
	assert.InDelta(t, 0.71, floats(t, p)[0], 1e-6)
}

// TestSGD_SkipsMissingGradient tests that parameters without a gradient are left alone.
func TestSGD_SkipsMissingGradient(t *testing.T) {
	p := param(t, 3)
	opt := optim.NewSGD([]*array.Array{p}, graph, optim.SGDConfig{})
	assert.InDelta(t, 0.01, opt.GetLR(), 1e-9)
	require.NoError(t, opt.Step())
	assert.Equal(t, []float32{3}, floats(t, p))

	// A parameter outside the graph is an error.
	q, err := array.FromSlice([]float32{1}, nil, p.Device())
	require.NoError(t, err)
	bad := optim.NewSGD([]*array.Array{q}, graph, optim.SGDConfig{})
	assert.ErrorIs(t, bad.Step(), tensor.ErrGraph)
}

// TestAdam_FirstStep tests that the first step moves each parameter by lr
// against the sign of its gradient.
func TestAdam_FirstStep(t *testing.T) {
	p := param(t, 1, 1)
	setGrad(t, p, 0.5, -4)

	opt := optim.NewAdam([]*array.Array{p}, graph, optim.AdamConfig{LR: 0.1})
	require.NoError(t, opt.Step())
	assert.Equal(t, 1, opt.GetTimestep())
	assert.InDeltaSlice(t, []float32{0.9, 1.1}, floats(t, p), 1e-5)
}

// TestOptimizer_Minimize tests a few steps of training on sum((x-3)^2) built
// from differentiable routines.
func TestOptimizer_Minimize(t *testing.T) {
	p := param(t, 0, 10)
	target, err := array.Full(p.Shape(), -3.0, p.DType(), p.Device())
	require.NoError(t, err)

	opt := optim.NewSGD([]*array.Array{p}, graph, optim.SGDConfig{LR: 0.25})
	for i := 0; i < 20; i++ {
		diff, err := array.Add(p, target)
		require.NoError(t, err)
		sq, err := array.Square(diff)
		require.NoError(t, err)
		loss, err := array.Sum(sq)
		require.NoError(t, err)

		opt.ZeroGrad()
		require.NoError(t, loss.Backward(graph))
		require.NoError(t, opt.Step())
	}
	assert.InDeltaSlice(t, []float32{3, 3}, floats(t, p), 1e-4)

	opt.ZeroGrad()
	g, err := p.GetGrad(graph)
	require.NoError(t, err)
	assert.Nil(t, g)
}
