package atlaspack

import (
	"bufio"
	"fmt"
	"io"
)

// WriteDOT writes the page's partition tree as a Graphviz digraph. Internal
// nodes are drawn as boxes, free leaves dashed and occupied leaves filled.
// Node names are arena indices, so n0 is always the root.
func (l *Layout) WriteDOT(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "digraph layout {\n")
	fmt.Fprintf(bw, "  label=%q;\n", "page "+sizeString(l.width, l.height))
	fmt.Fprintf(bw, "  node [shape=box, fontname=monospace, fontsize=10];\n")

	var edges [][2]int
	l.walk(0, func(idx int, n *node) {
		label := fmt.Sprintf("%d,%d %s", n.x, n.y, sizeString(n.w, n.h))
		switch {
		case !n.isLeaf():
			fmt.Fprintf(bw, "  n%d [label=%q];\n", idx, label)
			edges = append(edges, [2]int{idx, n.children[0]}, [2]int{idx, n.children[1]})
		case n.full:
			fmt.Fprintf(bw, "  n%d [label=%q, style=filled, fillcolor=lightblue];\n", idx, label)
		default:
			fmt.Fprintf(bw, "  n%d [label=%q, style=dashed];\n", idx, label)
		}
	})
	for _, e := range edges {
		fmt.Fprintf(bw, "  n%d -> n%d;\n", e[0], e[1])
	}
	fmt.Fprintf(bw, "}\n")
	return bw.Flush()
}
