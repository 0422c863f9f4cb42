package autodiff

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a readable tree of the graph rooted at n. Each node is numbered
// on first appearance; later paths to it print a back-reference instead of
// the subtree again.
func Dump[V comparable](w io.Writer, n *Node[V]) error {
	d := &dumper[V]{w: w, ids: make(map[*Node[V]]int)}
	return d.node(n, 0)
}

type dumper[V comparable] struct {
	w   io.Writer
	ids map[*Node[V]]int
}

func (d *dumper[V]) node(n *Node[V], depth int) error {
	indent := strings.Repeat("  ", depth)
	if id, seen := d.ids[n]; seen {
		_, err := fmt.Fprintf(d.w, "%sNode#%d (see above)\n", indent, id)
		return err
	}
	id := len(d.ids)
	d.ids[n] = id

	grad := "none"
	if g, ok := n.Grad(); ok {
		grad = fmt.Sprint(g)
	}
	if _, err := fmt.Fprintf(d.w, "%sNode#%d<graph=%s rank=%d grad=%s>\n", indent, id, n.graph, n.rank, grad); err != nil {
		return err
	}
	for _, op := range n.ops {
		if _, err := fmt.Fprintf(d.w, "%s  Op<%s>\n", indent, op.name); err != nil {
			return err
		}
		for _, in := range op.inputs {
			if err := d.node(in, depth+2); err != nil {
				return err
			}
		}
	}
	return nil
}
