package autodiff

import (
	"container/heap"

	"github.com/pkg/errors"

	"github.com/born-ml/ndarray/internal/tensor"
)

// AddFunc accumulates two gradients.
type AddFunc[V comparable] func(a, b V) (V, error)

// Backward propagates seed from root through every node reachable from it.
//
// Nodes are visited in decreasing rank, and a node is visited only after every
// reachable node feeding its gradient has contributed. Leaf nodes add the
// incoming gradient to the one they already hold; inner nodes store the
// gradient computed by this pass.
func Backward[V comparable](root *Node[V], seed V, add AddFunc[V]) error {
	var zero V
	if root == nil {
		return tensor.GraphErrorf("backward: no root node")
	}
	if seed == zero {
		return tensor.GraphErrorf("backward: graph %q: no seed gradient", root.graph)
	}

	pending := countConsumers(root)
	incoming := map[*Node[V]]V{root: seed}

	queue := &rankQueue[V]{}
	heap.Push(queue, root)
	for queue.Len() > 0 {
		n := heap.Pop(queue).(*Node[V])
		g, ok := incoming[n]
		delete(incoming, n)

		if ok {
			if err := n.store(g, add); err != nil {
				return err
			}
		}

		for _, op := range n.ops {
			if ok {
				grads, err := op.backward(g)
				if err != nil {
					return errors.Wrapf(err, "backward of %s in graph %q", op.name, n.graph)
				}
				if len(grads) != len(op.inputs) {
					return tensor.GraphErrorf("backward of %s returned %d gradients for %d inputs", op.name, len(grads), len(op.inputs))
				}
				for i, in := range op.inputs {
					if grads[i] == zero {
						continue
					}
					if prev, seen := incoming[in]; seen {
						sum, err := add(prev, grads[i])
						if err != nil {
							return errors.Wrapf(err, "accumulating gradient of %s input %d", op.name, i)
						}
						incoming[in] = sum
					} else {
						incoming[in] = grads[i]
					}
				}
			}
			for _, in := range op.inputs {
				pending[in]--
				if pending[in] == 0 {
					heap.Push(queue, in)
				}
			}
		}
	}
	return nil
}

// store keeps the gradient that reached n during a pass.
func (n *Node[V]) store(g V, add AddFunc[V]) error {
	if n.IsLeaf() && n.hasGrad {
		sum, err := add(n.grad, g)
		if err != nil {
			return errors.Wrap(err, "accumulating leaf gradient")
		}
		g = sum
	}
	n.SetGrad(g)
	return nil
}

// countConsumers returns, for every node reachable from root, the number of
// operation edges leading into it from reachable nodes.
func countConsumers[V comparable](root *Node[V]) map[*Node[V]]int {
	pending := make(map[*Node[V]]int)
	visited := map[*Node[V]]bool{root: true}
	stack := []*Node[V]{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, op := range n.ops {
			for _, in := range op.inputs {
				pending[in]++
				if !visited[in] {
					visited[in] = true
					stack = append(stack, in)
				}
			}
		}
	}
	return pending
}

// rankQueue is a max-heap of nodes ordered by rank.
type rankQueue[V comparable] []*Node[V]

func (q rankQueue[V]) Len() int           { return len(q) }
func (q rankQueue[V]) Less(i, j int) bool { return q[i].rank > q[j].rank }
func (q rankQueue[V]) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *rankQueue[V]) Push(x any) {
	*q = append(*q, x.(*Node[V]))
}

func (q *rankQueue[V]) Pop() any {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}
