package atlaspack

import (
	"cmp"
	"errors"
	"slices"
)

// Options configures page size limits for packing.
type Options struct {
	// Width and Height are the initial page size, in pixels.
	Width, Height int
	// MaxWidth and MaxHeight bound how far a page may grow before the
	// packer opens a new one.
	MaxWidth, MaxHeight int
	// Pow2 keeps every page dimension at an exact power of two.
	Pow2 bool
}

// DefaultOptions returns options for pages starting at 256x256 and growing
// up to 2048x2048.
func DefaultOptions() Options {
	return Options{
		Width:     256,
		Height:    256,
		MaxWidth:  2048,
		MaxHeight: 2048,
	}
}

// Validate checks the options without allocating a layout.
func (o Options) Validate() error {
	_, err := o.newLayout()
	return err
}

func (o Options) newLayout() (*Layout, error) {
	return NewLayout(o.Width, o.Height, o.MaxWidth, o.MaxHeight, o.Pow2)
}

// Element is one rectangle to place. Width and Height are set by the caller;
// X, Y, Page and Index are filled in by CreateAtlasLayout.
type Element struct {
	Width, Height int

	// X and Y are the top-left corner on the page. Only valid when Page >= 0.
	X, Y int
	// Page indexes the slice returned by CreateAtlasLayout, or is -1 when the
	// element has not been placed.
	Page int
	// Index is the element's position in the slice given to the packer.
	Index int
}

// Page describes the final size of one atlas page.
type Page struct {
	Width, Height int
}

// Packer places elements one at a time across as many pages as needed.
// When an element does not fit the current page, that page is finalized and
// a fresh one is opened with the same options; earlier pages are never
// revisited.
type Packer struct {
	opts    Options
	layouts []*Layout
	counts  []int
}

// NewPacker validates opts and returns a packer with one empty page.
func NewPacker(opts Options) (*Packer, error) {
	l, err := opts.newLayout()
	if err != nil {
		return nil, err
	}
	return &Packer{
		opts:    opts,
		layouts: []*Layout{l},
		counts:  []int{0},
	}, nil
}

// Add places a width x height rectangle and returns its position and page.
// It returns an *ElementError when the rectangle cannot fit even on an empty
// page.
func (p *Packer) Add(width, height int) (x, y, page int, err error) {
	page = len(p.layouts) - 1
	cur := p.layouts[page]
	if width < 0 || height < 0 || width > cur.MaxWidth() || height > cur.MaxHeight() {
		return 0, 0, -1, &ElementError{Width: width, Height: height}
	}
	if x, y, ok := cur.AddElement(width, height); ok {
		p.counts[page]++
		return x, y, page, nil
	}

	if p.counts[page] > 0 {
		Logger().Debug("atlaspack: page full, opening new page",
			"page", page, "size", sizeString(cur.Width(), cur.Height()), "elements", p.counts[page])
		debugLog(page, cur.Stats())

		l, err := p.opts.newLayout()
		if err != nil {
			return 0, 0, -1, err
		}
		p.layouts = append(p.layouts, l)
		p.counts = append(p.counts, 0)
		page++

		if x, y, ok := l.AddElement(width, height); ok {
			p.counts[page]++
			return x, y, page, nil
		}
	}
	return 0, 0, -1, &ElementError{Width: width, Height: height}
}

// Pages returns the size of every page that holds at least one element.
func (p *Packer) Pages() []Page {
	pages := make([]Page, 0, len(p.layouts))
	for i, l := range p.layouts {
		if p.counts[i] == 0 {
			continue
		}
		pages = append(pages, Page{Width: l.Width(), Height: l.Height()})
	}
	return pages
}

// PageCount returns the number of pages holding at least one element.
func (p *Packer) PageCount() int {
	n := len(p.layouts)
	if p.counts[n-1] == 0 {
		n--
	}
	return n
}

// Layout returns the layout backing the given page, or nil when out of range.
func (p *Packer) Layout(page int) *Layout {
	if page < 0 || page >= len(p.layouts) {
		return nil
	}
	return p.layouts[page]
}

// CreateAtlasLayout packs elements in the given order and returns the final
// page sizes. Each element's X, Y, Page and Index are written in place.
//
// Elements are not sorted; pass them largest first (see SortLargestFirst)
// for tight pages. If any element cannot fit on an empty page of the maximum
// size the whole call fails with an *ElementError and no pages are returned.
func CreateAtlasLayout(elements []Element, opts Options) ([]Page, error) {
	p, err := NewPacker(opts)
	if err != nil {
		return nil, err
	}
	if err := place(p, elements); err != nil {
		return nil, err
	}
	pages := p.Pages()
	Logger().Debug("atlaspack: layout created", "elements", len(elements), "pages", len(pages))
	return pages, nil
}

// place adds elements to p in order and writes the placements in place.
func place(p *Packer, elements []Element) error {
	for i := range elements {
		elements[i].Page = -1
		elements[i].Index = i
	}
	for i := range elements {
		e := &elements[i]
		x, y, page, err := p.Add(e.Width, e.Height)
		if err != nil {
			var ee *ElementError
			if errors.As(err, &ee) {
				ee.Index = i
			}
			// No pages are returned, so nothing counts as placed.
			for j := range elements[:i] {
				elements[j].Page = -1
			}
			return err
		}
		e.X, e.Y, e.Page = x, y, page
	}
	return nil
}

// SortLargestFirst orders elements by descending area, then by descending
// longest side. The sort is stable, so equal elements keep their order.
func SortLargestFirst(elements []Element) {
	slices.SortStableFunc(elements, func(a, b Element) int {
		if c := cmp.Compare(b.Width*b.Height, a.Width*a.Height); c != 0 {
			return c
		}
		return cmp.Compare(max(b.Width, b.Height), max(a.Width, a.Height))
	})
}
