// Package autodiff keeps reverse-mode differentiation state for any number
// of independent graphs.
//
// A Node holds the per (value, graph) state: the accumulated gradient, a
// rank used to order the backward traversal, and the operations that
// propagate the node's gradient to the nodes it was computed from. Nodes are
// generic over the gradient value type so that the array package can store
// its own arrays as gradients without an import cycle.
package autodiff

import (
	"slices"

	"golang.org/x/exp/maps"
)

// GraphID names an independent differentiation session.
type GraphID string

// DefaultGraphID is used when callers do not need several graphs at once.
const DefaultGraphID GraphID = "default"

// SortedGraphIDs returns the keys of a graph-keyed map in a stable order.
func SortedGraphIDs[T any](m map[GraphID]T) []GraphID {
	ids := maps.Keys(m)
	slices.Sort(ids)
	return ids
}

// ContainsGraph reports whether id is in ids.
func ContainsGraph(ids []GraphID, id GraphID) bool {
	return slices.Contains(ids, id)
}
