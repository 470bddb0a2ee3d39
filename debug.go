package atlaspack

import (
	"context"
	"fmt"
	"log/slog"
)

// LayoutStats summarizes how a page's partition tree is used.
type LayoutStats struct {
	Nodes      int // arena size
	Leaves     int // nodes without children
	FullLeaves int // leaves holding an element
	UsedArea   int // pixels covered by placed elements
	// Utilization is UsedArea over the current page area, in [0, 1].
	Utilization float64
}

// Stats walks the partition tree and reports its usage.
func (l *Layout) Stats() LayoutStats {
	s := LayoutStats{Nodes: len(l.nodes), UsedArea: l.usedArea}
	l.walk(0, func(_ int, n *node) {
		if !n.isLeaf() {
			return
		}
		s.Leaves++
		if n.full {
			s.FullLeaves++
		}
	})
	if area := l.width * l.height; area > 0 {
		s.Utilization = float64(l.usedArea) / float64(area)
	}
	return s
}

// walk visits the subtree rooted at idx in depth-first, child 0 first order.
func (l *Layout) walk(idx int, fn func(idx int, n *node)) {
	n := &l.nodes[idx]
	fn(idx, n)
	if n.isLeaf() {
		return
	}
	l.walk(n.children[0], fn)
	l.walk(n.children[1], fn)
}

// debugLog reports per-page statistics at debug level.
func debugLog(page int, s LayoutStats) {
	log := Logger()
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	log.Debug("atlaspack: page stats",
		"page", page,
		"nodes", s.Nodes,
		"leaves", s.Leaves,
		"elements", s.FullLeaves,
		"utilization", fmt.Sprintf("%.1f%%", s.Utilization*100))
}

func sizeString(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}
