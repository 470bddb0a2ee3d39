package atlaspack

import (
	"cmp"
	"errors"
	"fmt"
	"image"
	"math"
	"slices"

	"golang.org/x/image/draw"
)

// Sprite is a named source image to place on a sheet.
type Sprite struct {
	Name  string
	Image image.Image
}

// BuildOptions configures Build.
type BuildOptions struct {
	Options

	// Padding is the number of transparent pixels kept to the right of and
	// below every sprite to prevent sampling bleed.
	Padding int

	// Trim crops fully transparent borders before packing. The cropped
	// amount is recorded in the region's OffsetX/OffsetY.
	Trim bool
}

// DefaultBuildOptions returns DefaultOptions with one pixel of padding.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{Options: DefaultOptions(), Padding: 1}
}

// Validate checks the page options and the sheet-specific limits.
func (o BuildOptions) Validate() error {
	if o.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	if o.MaxWidth > math.MaxUint16 {
		return &ConfigError{Field: "MaxWidth", Reason: "must be at most 65535"}
	}
	if o.MaxHeight > math.MaxUint16 {
		return &ConfigError{Field: "MaxHeight", Reason: "must be at most 65535"}
	}
	return o.Options.Validate()
}

// Sheet is the result of Build: composed page images and the region of every
// sprite.
type Sheet struct {
	Pages   []*image.NRGBA
	Regions map[string]TextureRegion

	layouts []*Layout
}

// sheetEntry is a sprite after trimming.
type sheetEntry struct {
	name   string
	src    image.Image
	bounds image.Rectangle // part of src that is packed
	origW  int
	origH  int
}

// Build packs sprites largest first and composes them onto page images.
func Build(sprites []Sprite, opts BuildOptions) (*Sheet, error) {
	if len(sprites) == 0 {
		return nil, ErrNoSprites
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	entries := make([]sheetEntry, 0, len(sprites))
	seen := make(map[string]struct{}, len(sprites))
	for _, sp := range sprites {
		if _, dup := seen[sp.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, sp.Name)
		}
		seen[sp.Name] = struct{}{}

		full := sp.Image.Bounds()
		bounds := full
		if opts.Trim {
			bounds = trimBounds(sp.Image)
		}
		// Regions store the source size as uint16 and the trim offset as int16.
		if full.Dx() > math.MaxUint16 || full.Dy() > math.MaxUint16 {
			return nil, fmt.Errorf("atlaspack: sprite %q: %w: source %dx%d exceeds %d",
				sp.Name, ErrElementTooLarge, full.Dx(), full.Dy(), math.MaxUint16)
		}
		if off := bounds.Min.Sub(full.Min); off.X > math.MaxInt16 || off.Y > math.MaxInt16 {
			return nil, fmt.Errorf("atlaspack: sprite %q: %w: trim offset %v exceeds %d",
				sp.Name, ErrElementTooLarge, off, math.MaxInt16)
		}
		entries = append(entries, sheetEntry{
			name:   sp.Name,
			src:    sp.Image,
			bounds: bounds,
			origW:  full.Dx(),
			origH:  full.Dy(),
		})
	}

	// Largest first, names break ties so output is independent of input order.
	slices.SortStableFunc(entries, func(a, b sheetEntry) int {
		if c := cmp.Compare(area(b.bounds), area(a.bounds)); c != 0 {
			return c
		}
		if c := cmp.Compare(longest(b.bounds), longest(a.bounds)); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	elements := make([]Element, len(entries))
	for i, e := range entries {
		elements[i] = Element{
			Width:  e.bounds.Dx() + opts.Padding,
			Height: e.bounds.Dy() + opts.Padding,
		}
	}
	packer, err := NewPacker(opts.Options)
	if err != nil {
		return nil, err
	}
	if err := place(packer, elements); err != nil {
		var ee *ElementError
		if errors.As(err, &ee) {
			return nil, fmt.Errorf("atlaspack: sprite %q: %w", entries[ee.Index].name, err)
		}
		return nil, err
	}

	pages := packer.Pages()
	sheet := &Sheet{
		Pages:   make([]*image.NRGBA, len(pages)),
		Regions: make(map[string]TextureRegion, len(entries)),
		layouts: packer.layouts[:len(pages)],
	}
	for i, p := range pages {
		sheet.Pages[i] = image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	}
	for i, e := range entries {
		el := elements[i]
		draw.Copy(sheet.Pages[el.Page], image.Pt(el.X, el.Y), e.src, e.bounds, draw.Src, nil)

		full := e.src.Bounds()
		sheet.Regions[e.name] = TextureRegion{
			Page:      uint16(el.Page),
			X:         uint16(el.X),
			Y:         uint16(el.Y),
			Width:     uint16(e.bounds.Dx()),
			Height:    uint16(e.bounds.Dy()),
			OriginalW: uint16(e.origW),
			OriginalH: uint16(e.origH),
			OffsetX:   int16(e.bounds.Min.X - full.Min.X),
			OffsetY:   int16(e.bounds.Min.Y - full.Min.Y),
		}
	}

	Logger().Debug("atlaspack: sheet built", "sprites", len(entries), "pages", len(pages))
	return sheet, nil
}

// Layout returns the partition tree of page i, or nil when out of range.
// Sheets decoded from JSON have no layouts.
func (s *Sheet) Layout(i int) *Layout {
	if i < 0 || i >= len(s.layouts) {
		return nil
	}
	return s.layouts[i]
}

// Names returns the sprite names on the sheet in sorted order.
func (s *Sheet) Names() []string {
	names := make([]string, 0, len(s.Regions))
	for name := range s.Regions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SubImage returns the packed pixels of the named sprite, or nil when the
// sheet has no such sprite.
func (s *Sheet) SubImage(name string) image.Image {
	r, ok := s.Regions[name]
	if !ok || int(r.Page) >= len(s.Pages) {
		return nil
	}
	return s.Pages[r.Page].SubImage(regionRect(r))
}

// trimBounds returns the smallest rectangle holding every non-transparent
// pixel of img. A fully transparent image trims to its top-left pixel.
func trimBounds(img image.Image) image.Rectangle {
	b := img.Bounds()
	if b.Empty() {
		return b
	}
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rect(b.Min.X, b.Min.Y, b.Min.X+1, b.Min.Y+1)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

func area(r image.Rectangle) int    { return r.Dx() * r.Dy() }
func longest(r image.Rectangle) int { return max(r.Dx(), r.Dy()) }
