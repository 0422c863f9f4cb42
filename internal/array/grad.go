package array

import (
	"io"

	"github.com/born-ml/ndarray/internal/autodiff"
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

func graphOrDefault(graphs []autodiff.GraphID) []autodiff.GraphID {
	if len(graphs) == 0 {
		return []autodiff.GraphID{autodiff.DefaultGraphID}
	}
	return graphs
}

// RequireGrad attaches a leaf node to a for each graph, the default graph when
// none is given. Graphs a already belongs to are left unchanged.
func (a *Array) RequireGrad(graphs ...autodiff.GraphID) *Array {
	for _, g := range graphOrDefault(graphs) {
		if _, ok := a.body.nodes[g]; !ok {
			a.body.nodes[g] = autodiff.NewNode[*Array](g)
		}
	}
	return a
}

// IsGradRequired reports whether a has a node in graph.
func (a *Array) IsGradRequired(graph autodiff.GraphID) bool {
	_, ok := a.body.nodes[graph]
	return ok
}

func (a *Array) nodeFor(op string, graph autodiff.GraphID) (*Node, error) {
	n, ok := a.body.nodes[graph]
	if !ok {
		return nil, tensor.GraphErrorf("%s: array is not part of graph %q", op, graph)
	}
	return n, nil
}

// GetGrad returns the gradient stored for graph, or nil when none was computed.
// It fails when a has no node in graph.
func (a *Array) GetGrad(graph autodiff.GraphID) (*Array, error) {
	n, err := a.nodeFor("get grad", graph)
	if err != nil {
		return nil, err
	}
	g, _ := n.Grad()
	return g, nil
}

// SetGrad stores grad as a's gradient in graph. grad must match a in shape,
// dtype and device.
func (a *Array) SetGrad(grad *Array, graph autodiff.GraphID) error {
	n, err := a.nodeFor("set grad", graph)
	if err != nil {
		return err
	}
	if err := checkGradLike(a, grad); err != nil {
		return err
	}
	n.SetGrad(grad)
	return nil
}

// ClearGrad drops the gradient stored for graph but keeps the node, so a still
// requires a gradient there. It is a no-op when a has no node in graph.
func (a *Array) ClearGrad(graph autodiff.GraphID) {
	if n, ok := a.body.nodes[graph]; ok {
		n.ClearGrad()
	}
}

func checkGradLike(a, grad *Array) error {
	if grad == nil {
		return tensor.GraphErrorf("gradient is nil")
	}
	if !tensor.SameDevice(a.Device(), grad.Device()) {
		return tensor.DeviceErrorf("gradient on %s for array on %s", deviceName(grad.Device()), deviceName(a.Device()))
	}
	if err := tensor.CheckEqualShapes(a.Shape(), grad.Shape()); err != nil {
		return err
	}
	if a.DType() != grad.DType() {
		return tensor.DtypeErrorf("gradient dtype %s does not match %s", grad.DType(), a.DType())
	}
	return nil
}

// Backward computes gradients of a with respect to every array reachable
// through its node in graph, the default graph when none is given.
// The pass is seeded with a's stored gradient, or ones when a has none.
func (a *Array) Backward(graph ...autodiff.GraphID) error {
	g := autodiff.DefaultGraphID
	if len(graph) > 0 {
		g = graph[0]
	}
	root, err := a.nodeFor("backward", g)
	if err != nil {
		return err
	}
	seed, ok := root.Grad()
	if ok {
		// The root stores the seed again during the pass.
		root.ClearGrad()
	} else {
		seed, err = OnesLike(a, a.Device())
		if err != nil {
			return err
		}
	}
	return autodiff.Backward(root, seed, addGrads)
}

// addGrads sums two gradients without recording anything.
func addGrads(x, y *Array) (*Array, error) {
	return binaryConst(kernels.Add, x, y)
}

// DumpGraph writes the computational graph behind a in graph to w.
func (a *Array) DumpGraph(w io.Writer, graph autodiff.GraphID) error {
	n, err := a.nodeFor("dump graph", graph)
	if err != nil {
		return err
	}
	return autodiff.Dump(w, n)
}
