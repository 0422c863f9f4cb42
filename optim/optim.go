// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient descent optimizers driven by the gradients
// arrays hold in one graph.
package optim

import (
	"github.com/born-ml/ndarray/internal/array"
	"github.com/born-ml/ndarray/internal/autodiff"
	"github.com/born-ml/ndarray/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	w.RequireGrad("loss")
//	opt := optim.NewSGD([]*array.Array{w}, "loss", optim.SGDConfig{LR: 0.01, Momentum: 0.9})
func NewSGD(params []*array.Array, graph autodiff.GraphID, config SGDConfig) *SGD {
	return optim.NewSGD(params, graph, config)
}

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer.
func NewAdam(params []*array.Array, graph autodiff.GraphID, config AdamConfig) *Adam {
	return optim.NewAdam(params, graph, config)
}
