package atlaspack

import "math/bits"

// noChild marks an absent child slot in the node arena.
const noChild = -1

// node is one rectangular region of a page. Leaves host at most one element;
// internal nodes always have exactly two children inside their region.
type node struct {
	x, y, w, h int
	children   [2]int
	full       bool
}

func newNode(x, y, w, h int) node {
	return node{x: x, y: y, w: w, h: h, children: [2]int{noChild, noChild}}
}

func (n *node) isLeaf() bool {
	return n.children[0] == noChild
}

// Layout places rectangles on a single atlas page using a binary-tree
// partition. The page starts at its initial size and grows on demand up to
// its maximum size.
//
// Nodes live in an arena indexed by int; the root is always index 0.
// A Layout is not safe for concurrent mutation.
type Layout struct {
	nodes []node

	initialWidth, initialHeight int
	width, height               int
	maxWidth, maxHeight         int
	pow2                        bool

	usedArea int
}

// NewLayout creates a layout for a page of the given initial size that may
// grow up to maxWidth x maxHeight.
//
// When pow2 is set the page dimensions are kept at exact powers of two: the
// maximum is rounded down and the initial size is rounded up to the nearest
// power of two, then capped at the rounded maximum.
func NewLayout(width, height, maxWidth, maxHeight int, pow2 bool) (*Layout, error) {
	if width <= 0 {
		return nil, &ConfigError{Field: "Width", Reason: "must be positive"}
	}
	if height <= 0 {
		return nil, &ConfigError{Field: "Height", Reason: "must be positive"}
	}
	if width > maxWidth {
		return nil, &ConfigError{Field: "Width", Reason: "must be at most MaxWidth"}
	}
	if height > maxHeight {
		return nil, &ConfigError{Field: "Height", Reason: "must be at most MaxHeight"}
	}
	if pow2 {
		maxWidth, maxHeight = prevPow2(maxWidth), prevPow2(maxHeight)
		width, height = min(nextPow2(width), maxWidth), min(nextPow2(height), maxHeight)
	}

	l := &Layout{
		nodes:         make([]node, 1, 16),
		initialWidth:  width,
		initialHeight: height,
		width:         width,
		height:        height,
		maxWidth:      maxWidth,
		maxHeight:     maxHeight,
		pow2:          pow2,
	}
	l.nodes[0] = newNode(0, 0, width, height)
	return l, nil
}

// Width returns the current page width, in pixels.
func (l *Layout) Width() int { return l.width }

// Height returns the current page height, in pixels.
func (l *Layout) Height() int { return l.height }

// MaxWidth returns the width the page may grow to.
func (l *Layout) MaxWidth() int { return l.maxWidth }

// MaxHeight returns the height the page may grow to.
func (l *Layout) MaxHeight() int { return l.maxHeight }

// Pow2 reports whether page dimensions are kept at powers of two.
func (l *Layout) Pow2() bool { return l.pow2 }

// AddElement places a width x height rectangle on the page and returns its
// top-left corner. It reports false, leaving the layout untouched, when the
// rectangle does not fit even after growing the page to its maximum size.
//
// Zero-area rectangles always succeed at (0, 0) and consume no space.
// Elements should be added largest first; any order is correct but small
// elements added early fragment the page.
func (l *Layout) AddElement(width, height int) (x, y int, ok bool) {
	if width < 0 || height < 0 {
		return 0, 0, false
	}
	if width == 0 || height == 0 {
		return 0, 0, true
	}

	x, y, ok = l.addToNode(0, width, height)
	if !ok {
		x, y, ok = l.grow(width, height)
	}
	if ok {
		l.usedArea += width * height
	}
	return x, y, ok
}

// addToNode inserts into the subtree rooted at idx. A failed insertion never
// mutates the arena: leaves are only split once the element is known to fit.
func (l *Layout) addToNode(idx, w, h int) (x, y int, ok bool) {
	n := &l.nodes[idx]
	if n.full || w > n.w || h > n.h {
		return 0, 0, false
	}

	if !n.isLeaf() {
		c0, c1 := n.children[0], n.children[1]
		x, y, ok = l.addToNode(c0, w, h)
		if !ok {
			x, y, ok = l.addToNode(c1, w, h)
		}
		if ok {
			l.nodes[idx].full = l.nodes[c0].full && l.nodes[c1].full
		}
		return x, y, ok
	}

	if w == n.w && h == n.h {
		n.full = true
		return n.x, n.y, true
	}

	// Split so the larger leftover stays in one piece.
	nx, ny, nw, nh := n.x, n.y, n.w, n.h
	first := len(l.nodes)
	if nw-w > nh-h {
		l.nodes = append(l.nodes,
			newNode(nx, ny, w, nh),
			newNode(nx+w, ny, nw-w, nh))
	} else {
		l.nodes = append(l.nodes,
			newNode(nx, ny, nw, h),
			newNode(nx, ny+h, nw, nh-h))
	}
	// n may be stale after append.
	l.nodes[idx].children = [2]int{first, first + 1}
	return l.addToNode(first, w, h)
}

// grow enlarges the page one dimension at a time until the element fits or
// neither dimension can grow. On failure every growth step is rolled back.
func (l *Layout) grow(w, h int) (x, y int, ok bool) {
	if w > l.maxWidth || h > l.maxHeight {
		return 0, 0, false
	}

	mark, root := len(l.nodes), l.nodes[0]
	width, height := l.width, l.height

	for l.growStep(w, h) {
		if x, y, ok = l.addToNode(0, w, h); ok {
			Logger().Debug("atlaspack: page grown",
				"from", sizeString(width, height), "to", sizeString(l.width, l.height))
			return x, y, true
		}
	}

	l.nodes = l.nodes[:mark]
	l.nodes[0] = root
	l.width, l.height = width, height
	return 0, 0, false
}

// growStep grows one dimension. A dimension the element does not fit in at
// all grows first; otherwise the smaller side grows to keep the page square.
func (l *Layout) growStep(w, h int) bool {
	canW := l.width < l.maxWidth
	canH := l.height < l.maxHeight
	needW := w > l.width
	needH := h > l.height

	var growW bool
	switch {
	case needW && !canW, needH && !canH:
		return false
	case needW && needH:
		growW = l.width <= l.height
	case needW:
		growW = true
	case needH:
		growW = false
	case !canW && !canH:
		return false
	default:
		growW = canW && (l.width <= l.height || !canH)
	}

	if growW {
		newW := l.width + w
		if l.pow2 {
			newW = nextPow2(newW)
		}
		l.extend(min(newW, l.maxWidth), l.height)
	} else {
		newH := l.height + h
		if l.pow2 {
			newH = nextPow2(newH)
		}
		l.extend(l.width, min(newH, l.maxHeight))
	}
	return true
}

// extend resizes the page to newW x newH, which differs from the current
// size in exactly one dimension. An untouched root is resized in place;
// otherwise the old root moves to a new slot and becomes child 0 of a new
// root, with the added strip as child 1.
func (l *Layout) extend(newW, newH int) {
	root := &l.nodes[0]
	if root.isLeaf() && !root.full {
		root.w, root.h = newW, newH
		l.width, l.height = newW, newH
		return
	}

	var strip node
	if newW > l.width {
		strip = newNode(l.width, 0, newW-l.width, l.height)
	} else {
		strip = newNode(0, l.height, l.width, newH-l.height)
	}

	first := len(l.nodes)
	l.nodes = append(l.nodes, l.nodes[0], strip)
	grown := newNode(0, 0, newW, newH)
	grown.children = [2]int{first, first + 1}
	l.nodes[0] = grown
	l.width, l.height = newW, newH
}

// Clear removes every element and restores the initial page size.
func (l *Layout) Clear() {
	l.nodes = l.nodes[:1]
	l.nodes[0] = newNode(0, 0, l.initialWidth, l.initialHeight)
	l.width, l.height = l.initialWidth, l.initialHeight
	l.usedArea = 0
}

// IsEmpty reports whether no element has been placed since construction or
// the last Clear.
func (l *Layout) IsEmpty() bool {
	return len(l.nodes) == 1 && !l.nodes[0].full
}

// nextPow2 returns the smallest power of two >= v.
func nextPow2(v int) int {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(v-1))
}

// prevPow2 returns the largest power of two <= v, or 0 for v < 1.
func prevPow2(v int) int {
	if v < 1 {
		return 0
	}
	return 1 << (bits.Len(uint(v)) - 1)
}
