package autodiff_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndarray/internal/autodiff"
	"github.com/born-ml/ndarray/internal/tensor"
)

// val is a boxed scalar gradient; nil means no contribution.
type val struct{ v float64 }

func v(x float64) *val { return &val{x} }

func add(a, b *val) (*val, error) { return v(a.v + b.v), nil }

func scale(c float64) func(*val) (*val, error) {
	return func(g *val) (*val, error) { return v(g.v * c), nil }
}

// record adds an operation with one scale factor per input.
func record(t *testing.T, out *autodiff.Node[*val], name string, inputs []*autodiff.Node[*val], factors ...float64) {
	t.Helper()
	require.NoError(t, out.AddOperation(name, inputs, func(g *val) ([]*val, error) {
		grads := make([]*val, len(factors))
		for i, c := range factors {
			grads[i], _ = scale(c)(g)
		}
		return grads, nil
	}))
}

func gradOf(t *testing.T, n *autodiff.Node[*val]) float64 {
	t.Helper()
	g, ok := n.Grad()
	require.True(t, ok, "node has no gradient")
	return g.v
}

// TestAddOperation_Rank tests that ranks grow along recorded operations.
func TestAddOperation_Rank(t *testing.T) {
	a := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	b := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	c := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	record(t, c, "mul", []*autodiff.Node[*val]{a}, 1)
	d := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	record(t, d, "add", []*autodiff.Node[*val]{b, c}, 1, 1)

	assert.True(t, a.IsLeaf())
	assert.Equal(t, 0, a.Rank())
	assert.Equal(t, 1, c.Rank())
	assert.Equal(t, 2, d.Rank())
	assert.Len(t, d.Operations(), 1)
	assert.Equal(t, "add", d.Operations()[0].Name())
}

// TestAddOperation_Errors tests the graph consistency checks.
func TestAddOperation_Errors(t *testing.T) {
	a := autodiff.NewNode[*val]("g1")
	b := autodiff.NewNode[*val]("g2")
	out := autodiff.NewNode[*val]("g1")
	noop := func(*val) ([]*val, error) { return nil, nil }

	assert.ErrorIs(t, out.AddOperation("x", []*autodiff.Node[*val]{b}, noop), tensor.ErrGraph)
	assert.ErrorIs(t, out.AddOperation("x", []*autodiff.Node[*val]{nil}, noop), tensor.ErrGraph)
	assert.ErrorIs(t, out.AddOperation("x", []*autodiff.Node[*val]{out}, noop), tensor.ErrGraph)
	require.NoError(t, out.AddOperation("x", []*autodiff.Node[*val]{a}, noop))
}

// TestBackward_Chain tests propagation through y = 3 * (2 * x).
func TestBackward_Chain(t *testing.T) {
	x := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	h := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	record(t, h, "scale2", []*autodiff.Node[*val]{x}, 2)
	y := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	record(t, y, "scale3", []*autodiff.Node[*val]{h}, 3)

	require.NoError(t, autodiff.Backward(y, v(1), add))
	assert.Equal(t, 6.0, gradOf(t, x))
	assert.Equal(t, 3.0, gradOf(t, h))
	assert.Equal(t, 1.0, gradOf(t, y))
}

// TestBackward_WaitsForAllConsumers tests that a node shared by paths of
// different length is processed once with the full gradient.
func TestBackward_WaitsForAllConsumers(t *testing.T) {
	x := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	short := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	record(t, short, "a", []*autodiff.Node[*val]{x}, 2)
	mid := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	record(t, mid, "b", []*autodiff.Node[*val]{short}, 5)
	y := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	record(t, y, "c", []*autodiff.Node[*val]{mid, short}, 1, 1)

	require.NoError(t, autodiff.Backward(y, v(1), add))
	// short receives 5 from mid and 1 directly.
	assert.Equal(t, 6.0, gradOf(t, short))
	assert.Equal(t, 12.0, gradOf(t, x))
}

// TestBackward_LeafAccumulates tests that leaves add up across passes while
// inner nodes are overwritten.
func TestBackward_LeafAccumulates(t *testing.T) {
	x := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	y := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	record(t, y, "scale", []*autodiff.Node[*val]{x}, 4)

	require.NoError(t, autodiff.Backward(y, v(1), add))
	require.NoError(t, autodiff.Backward(y, v(1), add))
	assert.Equal(t, 8.0, gradOf(t, x))
	assert.Equal(t, 1.0, gradOf(t, y))

	x.ClearGrad()
	_, ok := x.Grad()
	assert.False(t, ok)
}

// TestBackward_NilContribution tests that a nil gradient is skipped.
func TestBackward_NilContribution(t *testing.T) {
	a := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	b := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	y := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	require.NoError(t, y.AddOperation("first", []*autodiff.Node[*val]{a, b}, func(g *val) ([]*val, error) {
		return []*val{g, nil}, nil
	}))

	require.NoError(t, autodiff.Backward(y, v(2), add))
	assert.Equal(t, 2.0, gradOf(t, a))
	_, ok := b.Grad()
	assert.False(t, ok)
}

// TestBackward_Errors tests failures of the traversal.
func TestBackward_Errors(t *testing.T) {
	assert.ErrorIs(t, autodiff.Backward[*val](nil, v(1), add), tensor.ErrGraph)

	x := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	assert.ErrorIs(t, autodiff.Backward(x, nil, add), tensor.ErrGraph)

	boom := errors.New("boom")
	y := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	require.NoError(t, y.AddOperation("bad", []*autodiff.Node[*val]{x}, func(*val) ([]*val, error) {
		return nil, boom
	}))
	err := autodiff.Backward(y, v(1), add)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")

	z := autodiff.NewNode[*val](autodiff.DefaultGraphID)
	require.NoError(t, z.AddOperation("short", []*autodiff.Node[*val]{x}, func(*val) ([]*val, error) {
		return nil, nil
	}))
	assert.ErrorIs(t, autodiff.Backward(z, v(1), add), tensor.ErrGraph)
}

// TestDump tests the textual dump of a small graph.
func TestDump(t *testing.T) {
	x := autodiff.NewNode[*val]("g")
	y := autodiff.NewNode[*val]("g")
	record(t, y, "scale", []*autodiff.Node[*val]{x}, 2)

	var sb strings.Builder
	require.NoError(t, autodiff.Dump(&sb, y))
	want := "Node#0<graph=g rank=1 grad=none>\n" +
		"  Op<scale>\n" +
		"    Node#1<graph=g rank=0 grad=none>\n"
	assert.Equal(t, want, sb.String())
}

// TestDump_SharedNodes tests that a node reached along several paths is
// printed once.
func TestDump_SharedNodes(t *testing.T) {
	x := autodiff.NewNode[*val]("g")
	a := autodiff.NewNode[*val]("g")
	b := autodiff.NewNode[*val]("g")
	z := autodiff.NewNode[*val]("g")
	record(t, a, "scale", []*autodiff.Node[*val]{x}, 2)
	record(t, b, "scale", []*autodiff.Node[*val]{x}, 3)
	record(t, z, "add", []*autodiff.Node[*val]{a, b}, 1, 1)

	var sb strings.Builder
	require.NoError(t, autodiff.Dump(&sb, z))
	want := "Node#0<graph=g rank=2 grad=none>\n" +
		"  Op<add>\n" +
		"    Node#1<graph=g rank=1 grad=none>\n" +
		"      Op<scale>\n" +
		"        Node#2<graph=g rank=0 grad=none>\n" +
		"    Node#3<graph=g rank=1 grad=none>\n" +
		"      Op<scale>\n" +
		"        Node#2 (see above)\n"
	assert.Equal(t, want, sb.String())

	// A chain of diamonds stays linear in size.
	prev := z
	for i := 0; i < 30; i++ {
		l, r, top := autodiff.NewNode[*val]("g"), autodiff.NewNode[*val]("g"), autodiff.NewNode[*val]("g")
		record(t, l, "scale", []*autodiff.Node[*val]{prev}, 1)
		record(t, r, "scale", []*autodiff.Node[*val]{prev}, 1)
		record(t, top, "add", []*autodiff.Node[*val]{l, r}, 1, 1)
		prev = top
	}
	sb.Reset()
	require.NoError(t, autodiff.Dump(&sb, prev))
	assert.Less(t, strings.Count(sb.String(), "\n"), 30*8+20)
}

// TestSortedGraphIDs tests the deterministic graph order.
func TestSortedGraphIDs(t *testing.T) {
	m := map[autodiff.GraphID]int{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []autodiff.GraphID{"a", "b", "c"}, autodiff.SortedGraphIDs(m))
	assert.True(t, autodiff.ContainsGraph([]autodiff.GraphID{"a"}, "a"))
	assert.False(t, autodiff.ContainsGraph(nil, "a"))
}
