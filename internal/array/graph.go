package array

import (
	"github.com/born-ml/ndarray/internal/autodiff"
)

// BackwardFunc maps the gradient of an operation's output to the gradient of
// one input. The returned array must not carry graph nodes of its own.
type BackwardFunc func(outGrad *Array) (*Array, error)

// Input is one operand of an operation recorded with ConnectOp.
type Input struct {
	Array    *Array
	Backward BackwardFunc
	// StopGraphs lists graphs through which no gradient flows into Array.
	// The output is still attached to those graphs when another input is.
	StopGraphs []autodiff.GraphID
}

// identity passes the output gradient through unchanged.
func identity(g *Array) (*Array, error) {
	return g, nil
}

// ConnectOp records name as the operation producing out. For every graph any
// input participates in, out receives a node whose rank exceeds the rank of
// each connected input node by at least one. Inputs without a node in a graph,
// or that stop it, get no gradient in that graph.
//
// When out already has a node in a graph, as for in-place operations, that
// node is replaced by a fresh one. Inputs that refer to out keep the previous
// node, so history recorded before the mutation stays reachable.
func ConnectOp(name string, out *Array, inputs ...Input) error {
	return connect(name, out, nil, inputs...)
}

// connect is ConnectOp restricted to graphs not listed in exclude.
func connect(name string, out *Array, exclude []autodiff.GraphID, inputs ...Input) error {
	graphs := map[autodiff.GraphID]struct{}{}
	for _, in := range inputs {
		for g := range in.Array.body.nodes {
			if !autodiff.ContainsGraph(exclude, g) {
				graphs[g] = struct{}{}
			}
		}
	}
	// Resolve every input node before any replacement on out.
	type edge struct {
		node     *Node
		backward BackwardFunc
	}
	edges := make(map[autodiff.GraphID][]edge, len(graphs))
	for _, g := range autodiff.SortedGraphIDs(graphs) {
		for _, in := range inputs {
			n := in.Array.body.nodes[g]
			if n == nil || autodiff.ContainsGraph(in.StopGraphs, g) {
				continue
			}
			bw := in.Backward
			if bw == nil {
				bw = identity
			}
			edges[g] = append(edges[g], edge{node: n, backward: bw})
		}
	}
	for _, g := range autodiff.SortedGraphIDs(graphs) {
		node := autodiff.NewNode[*Array](g)
		if es := edges[g]; len(es) > 0 {
			nodes := make([]*Node, len(es))
			for i, e := range es {
				nodes[i] = e.node
			}
			err := node.AddOperation(name, nodes, func(gout *Array) ([]*Array, error) {
				grads := make([]*Array, len(es))
				for i, e := range es {
					gi, err := e.backward(gout)
					if err != nil {
						return nil, err
					}
					grads[i] = gi
				}
				return grads, nil
			})
			if err != nil {
				return err
			}
		}
		out.body.nodes[g] = node
	}
	return nil
}

// requiresAnyGrad reports whether a participates in a graph that inputs could
// carry a gradient through.
func (a *Array) requiresAnyGrad() bool {
	return len(a.body.nodes) > 0
}
