// Package optim implements gradient descent updates for arrays.
//
// An optimizer holds a set of parameter arrays and the graph whose gradients
// drive them. Step reads each parameter's gradient in that graph and writes
// the update into the parameter's buffer through a detached view, so the
// parameter keeps its leaf node and stays attached to every graph.
//
// Example usage:
//
//	w.RequireGrad("loss")
//	opt := optim.NewAdam([]*array.Array{w}, "loss", optim.AdamConfig{LR: 0.01})
//
//	for range steps {
//	    loss := computeLoss(w)
//	    if err := loss.Backward("loss"); err != nil {
//	        return err
//	    }
//	    if err := opt.Step(); err != nil {
//	        return err
//	    }
//	    opt.ZeroGrad()
//	}
package optim

import (
	"github.com/born-ml/ndarray/internal/array"
	"github.com/born-ml/ndarray/internal/autodiff"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter with a gradient.
	// Parameters without a gradient are skipped.
	Step() error

	// ZeroGrad clears the gradients of all parameters in the optimizer's graph.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// base holds what every optimizer shares.
type base struct {
	params []*array.Array
	graph  autodiff.GraphID
	lr     float32
}

// gradient returns the detached gradient of p, or nil when none was computed.
func (b *base) gradient(p *array.Array) (*array.Array, error) {
	g, err := p.GetGrad(b.graph)
	if err != nil || g == nil {
		return nil, err
	}
	return g.AsConstant(array.CopyKindView)
}

func (b *base) ZeroGrad() {
	for _, p := range b.params {
		p.ClearGrad(b.graph)
	}
}

func (b *base) GetLR() float32 {
	return b.lr
}

// SetLR sets the learning rate.
func (b *base) SetLR(lr float32) {
	b.lr = lr
}

// scale returns c*x.
func scale(x *array.Array, c float32) (*array.Array, error) {
	k, err := array.FullLike(x, c, x.Device())
	if err != nil {
		return nil, err
	}
	return array.Mul(x, k)
}

// axpy returns a*x + b*y.
func axpy(a float32, x *array.Array, b float32, y *array.Array) (*array.Array, error) {
	ax, err := scale(x, a)
	if err != nil {
		return nil, err
	}
	by, err := scale(y, b)
	if err != nil {
		return nil, err
	}
	return array.Add(ax, by)
}

// apply adds delta to p's elements in place.
func apply(p, delta *array.Array) error {
	return p.View().IAdd(delta)
}
