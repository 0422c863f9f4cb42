package optim

import (
	"github.com/born-ml/ndarray/internal/array"
	"github.com/born-ml/ndarray/internal/autodiff"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	base
	momentum   float32
	velocities map[*array.Array]*array.Array
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates an SGD optimizer for params driven by gradients in graph.
func NewSGD(params []*array.Array, graph autodiff.GraphID, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		base:       base{params: params, graph: graph, lr: config.LR},
		momentum:   config.Momentum,
		velocities: make(map[*array.Array]*array.Array),
	}
}

// Step performs a single optimization step.
func (s *SGD) Step() error {
	for _, p := range s.params {
		g, err := s.gradient(p)
		if err != nil {
			return err
		}
		if g == nil {
			continue
		}
		if s.momentum != 0 {
			if v, ok := s.velocities[p]; ok {
				if g, err = axpy(s.momentum, v, 1, g); err != nil {
					return err
				}
			} else if g, err = g.AsConstant(array.CopyKindCopy); err != nil {
				return err
			}
			s.velocities[p] = g
		}
		delta, err := scale(g, -s.lr)
		if err != nil {
			return err
		}
		if err := apply(p, delta); err != nil {
			return err
		}
	}
	return nil
}
