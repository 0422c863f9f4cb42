// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff exposes graph identifiers and the reverse-mode engine
// arrays record their operations into.
//
// Every array keeps one node per graph it takes part in. Gradients for
// different graphs are computed and stored independently:
//
//	x, _ := array.Full(array.Shape{3}, 2.0, array.Float32, nil)
//	x.RequireGrad("loss", "penalty")
//	y, _ := array.Mul(x, x)
//	_ = y.Backward("penalty")
//	g, _ := x.GetGrad("penalty") // 2*x
package autodiff

import (
	"github.com/born-ml/ndarray/internal/array"
	"github.com/born-ml/ndarray/internal/autodiff"
)

// GraphID names an independent gradient graph.
type GraphID = autodiff.GraphID

// DefaultGraphID is used when no graph is named.
const DefaultGraphID = autodiff.DefaultGraphID

// Node is the per-graph record of an array.
type Node = array.Node

// BackwardFunc maps the gradient of an output to one input's contribution.
type BackwardFunc = array.BackwardFunc

// Input describes one input of a user-defined operation.
type Input = array.Input

// ConnectOp records a user-defined operation that produced out from inputs,
// so that backward passes route gradients through it.
func ConnectOp(name string, out *array.Array, inputs ...Input) error {
	return array.ConnectOp(name, out, inputs...)
}
