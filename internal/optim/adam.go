package optim

import (
	"math"

	"github.com/born-ml/ndarray/internal/array"
	"github.com/born-ml/ndarray/internal/autodiff"
)

// Adam implements the Adam optimizer.
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Every step runs on the parameters' device.
type Adam struct {
	base
	beta1 float32
	beta2 float32
	eps   float32
	t     int
	m     map[*array.Array]*array.Array
	v     map[*array.Array]*array.Array
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float32    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates an Adam optimizer for params driven by gradients in graph.
func NewAdam(params []*array.Array, graph autodiff.GraphID, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		base:  base{params: params, graph: graph, lr: config.LR},
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
		m:     make(map[*array.Array]*array.Array),
		v:     make(map[*array.Array]*array.Array),
	}
}

// Step performs a single optimization step.
func (a *Adam) Step() error {
	a.t++
	bc1 := float32(1 - math.Pow(float64(a.beta1), float64(a.t)))
	bc2 := float32(1 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, p := range a.params {
		g, err := a.gradient(p)
		if err != nil {
			return err
		}
		if g == nil {
			continue
		}
		if err := a.update(p, g, bc1, bc2); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adam) update(p, g *array.Array, bc1, bc2 float32) error {
	g2, err := array.Square(g)
	if err != nil {
		return err
	}
	m, v := a.m[p], a.v[p]
	if m == nil {
		if m, err = array.ZerosLike(g, g.Device()); err != nil {
			return err
		}
		if v, err = array.ZerosLike(g, g.Device()); err != nil {
			return err
		}
	}
	if m, err = axpy(a.beta1, m, 1-a.beta1, g); err != nil {
		return err
	}
	if v, err = axpy(a.beta2, v, 1-a.beta2, g2); err != nil {
		return err
	}
	a.m[p], a.v[p] = m, v

	// sqrt(v_hat) + eps
	vHat, err := scale(v, 1/bc2)
	if err != nil {
		return err
	}
	denom, err := array.Sqrt(vHat)
	if err != nil {
		return err
	}
	eps, err := array.FullLike(denom, a.eps, denom.Device())
	if err != nil {
		return err
	}
	if err := denom.IAdd(eps); err != nil {
		return err
	}

	step, err := array.Divide(m, denom)
	if err != nil {
		return err
	}
	delta, err := scale(step, -a.lr/bc1)
	if err != nil {
		return err
	}
	return apply(p, delta)
}

// GetTimestep returns the number of steps taken.
func (a *Adam) GetTimestep() int {
	return a.t
}
