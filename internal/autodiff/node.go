package autodiff

import (
	"github.com/born-ml/ndarray/internal/tensor"
)

// BackwardFunc maps the gradient of an operation's output to one gradient
// contribution per input. A zero value in the result means no contribution.
type BackwardFunc[V comparable] func(outGrad V) ([]V, error)

// Operation is one recorded step of a graph: it was applied to Inputs and its
// backward function sends gradient to them.
type Operation[V comparable] struct {
	name     string
	inputs   []*Node[V]
	backward BackwardFunc[V]
}

// Name returns the operation name.
func (op *Operation[V]) Name() string {
	return op.name
}

// Inputs returns the nodes receiving gradient from this operation.
func (op *Operation[V]) Inputs() []*Node[V] {
	return op.inputs
}

// Node is the autograd state of one value in one graph.
type Node[V comparable] struct {
	graph   GraphID
	rank    int
	grad    V
	hasGrad bool
	ops     []*Operation[V]
}

// NewNode creates a leaf node with rank zero.
func NewNode[V comparable](graph GraphID) *Node[V] {
	return &Node[V]{graph: graph}
}

// Graph returns the graph the node belongs to.
func (n *Node[V]) Graph() GraphID {
	return n.graph
}

// Rank returns the topological rank. Nodes computed later have higher ranks.
func (n *Node[V]) Rank() int {
	return n.rank
}

// IsLeaf reports whether the node has no recorded operation.
func (n *Node[V]) IsLeaf() bool {
	return len(n.ops) == 0
}

// Operations returns the recorded operations in the order they were added.
func (n *Node[V]) Operations() []*Operation[V] {
	return n.ops
}

// Grad returns the stored gradient.
func (n *Node[V]) Grad() (V, bool) {
	return n.grad, n.hasGrad
}

// SetGrad stores grad.
func (n *Node[V]) SetGrad(grad V) {
	n.grad = grad
	n.hasGrad = true
}

// ClearGrad drops the stored gradient; the node itself stays attached.
func (n *Node[V]) ClearGrad() {
	var zero V
	n.grad = zero
	n.hasGrad = false
}

// AddOperation records that the node's value was computed by the named
// operation from inputs. Every input must belong to the node's graph. The
// node's rank becomes greater than the rank of every input.
func (n *Node[V]) AddOperation(name string, inputs []*Node[V], backward BackwardFunc[V]) error {
	for i, in := range inputs {
		if in == nil {
			return tensor.GraphErrorf("%s: input %d has no node", name, i)
		}
		if in.graph != n.graph {
			return tensor.GraphErrorf("%s: input %d belongs to graph %q, not %q", name, i, in.graph, n.graph)
		}
		if in == n {
			return tensor.GraphErrorf("%s: node cannot be its own input", name)
		}
		n.rank = max(n.rank, in.rank+1)
	}
	n.ops = append(n.ops, &Operation[V]{
		name:     name,
		inputs:   append([]*Node[V](nil), inputs...),
		backward: backward,
	})
	return nil
}
