package atlaspack

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// TextureRegion describes a sub-rectangle within an atlas page.
type TextureRegion struct {
	Page      uint16 // atlas page index
	X, Y      uint16 // top-left corner of the sub-image rect within the atlas page
	Width     uint16 // width of the sub-image rect (may differ from OriginalW if trimmed)
	Height    uint16 // height of the sub-image rect (may differ from OriginalH if trimmed)
	OriginalW uint16 // untrimmed sprite width
	OriginalH uint16 // untrimmed sprite height
	OffsetX   int16  // horizontal trim offset
	OffsetY   int16  // vertical trim offset
	Rotated   bool   // true if the region is stored 90 degrees clockwise in the atlas
}

// Atlas holds one or more atlas page images and a map of named regions.
type Atlas struct {
	// Pages contains the atlas page images indexed by page number.
	Pages   []*ebiten.Image
	regions map[string]TextureRegion
}

// Region returns the TextureRegion for the given name.
// If the name doesn't exist, it logs a warning and returns a 1×1 magenta
// placeholder region on page index MagentaPlaceholderPage.
func (a *Atlas) Region(name string) TextureRegion {
	if r, ok := a.regions[name]; ok {
		return r
	}
	Logger().Warn("atlaspack: atlas region not found, using magenta placeholder", "name", name)
	return magentaRegion()
}

// Lookup returns the named region and whether it exists.
func (a *Atlas) Lookup(name string) (TextureRegion, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Names returns every region name in sorted order.
func (a *Atlas) Names() []string {
	names := make([]string, 0, len(a.regions))
	for name := range a.regions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// PageImage returns the image for a region's page, or the magenta
// placeholder image when the page is unknown.
func (a *Atlas) PageImage(r TextureRegion) *ebiten.Image {
	if int(r.Page) < len(a.Pages) {
		return a.Pages[r.Page]
	}
	return ensureMagentaImage()
}

// SubImage returns the named region cut out of its page.
func (a *Atlas) SubImage(name string) *ebiten.Image {
	r := a.Region(name)
	page := a.PageImage(r)
	if int(r.Page) >= len(a.Pages) {
		return page
	}
	rect := regionRect(r)
	return page.SubImage(rect).(*ebiten.Image)
}

// regionRect returns the pixel rectangle a region covers on its page.
func regionRect(r TextureRegion) image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Width), int(r.Y)+int(r.Height))
}

// magenta placeholder singleton (not synchronized; ebiten images are
// created on the game goroutine)
var magentaImage *ebiten.Image

func ensureMagentaImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(1, 1)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}

// MagentaPlaceholderPage is a sentinel page index used for magenta placeholders.
// It's high enough to never collide with real atlas pages.
const MagentaPlaceholderPage = 0xFFFF

func magentaRegion() TextureRegion {
	return TextureRegion{
		Page:      MagentaPlaceholderPage,
		Width:     1,
		Height:    1,
		OriginalW: 1,
		OriginalH: 1,
	}
}

// LoadAtlas parses TexturePacker JSON data and associates the given page images.
// Supports both the hash format (single "frames" object) and the array format
// ("textures" array with per-page frame lists).
func LoadAtlas(jsonData []byte, pages []*ebiten.Image) (*Atlas, error) {
	regions, err := ParseRegions(jsonData)
	if err != nil {
		return nil, err
	}
	return &Atlas{Pages: pages, regions: regions}, nil
}

// ParseRegions parses TexturePacker JSON without loading any page images.
func ParseRegions(jsonData []byte) (map[string]TextureRegion, error) {
	// Probe top-level keys to detect format.
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("atlaspack: failed to parse atlas JSON: %w", err)
	}

	regions := make(map[string]TextureRegion)
	switch {
	case probe.Textures != nil:
		if err := parseArrayFormat(probe.Textures, regions); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := parseHashFrames(probe.Frames, 0, regions); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("atlaspack: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return regions, nil
}

// PageInfo describes one page listed in atlas JSON.
type PageInfo struct {
	Image  string
	Width  int // 0 when the JSON does not record a size
	Height int
}

// ParsePages returns every page listed in array-format JSON, in page order.
// Hash-format JSON yields a single page from meta.image and meta.size, or
// nothing when meta.image is absent.
func ParsePages(jsonData []byte) ([]PageInfo, error) {
	var doc struct {
		Textures []jsonTexturePage `json:"textures"`
		Meta     struct {
			Image string   `json:"image"`
			Size  jsonSize `json:"size"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("atlaspack: failed to parse atlas JSON: %w", err)
	}
	if len(doc.Textures) == 0 {
		if doc.Meta.Image == "" {
			return nil, nil
		}
		return []PageInfo{{Image: doc.Meta.Image, Width: doc.Meta.Size.W, Height: doc.Meta.Size.H}}, nil
	}
	pages := make([]PageInfo, len(doc.Textures))
	for i, tex := range doc.Textures {
		pages[i] = PageInfo{Image: tex.Image, Width: tex.Size.W, Height: tex.Size.H}
	}
	return pages, nil
}

// ParsePageImages returns the image file name of every page listed in
// atlas JSON, in page order.
func ParsePageImages(jsonData []byte) ([]string, error) {
	pages, err := ParsePages(jsonData)
	if err != nil {
		return nil, err
	}
	images := make([]string, len(pages))
	for i, p := range pages {
		images[i] = p.Image
	}
	return images, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Format string               `json:"format,omitempty"`
	Size   jsonSize             `json:"size"`
	Frames map[string]jsonFrame `json:"frames"`
}

// parseHashFrames parses the hash format: {"name": {frame...}, ...}
func parseHashFrames(raw json.RawMessage, pageIndex uint16, regions map[string]TextureRegion) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("atlaspack: failed to parse atlas frames: %w", err)
	}
	for name, f := range frames {
		regions[name] = frameToRegion(f, pageIndex)
	}
	return nil
}

// parseArrayFormat parses the array format: [{"image":"...", "frames":{...}}, ...]
func parseArrayFormat(raw json.RawMessage, regions map[string]TextureRegion) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("atlaspack: failed to parse atlas textures array: %w", err)
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			regions[name] = frameToRegion(f, uint16(i))
		}
	}
	return nil
}

func frameToRegion(f jsonFrame, page uint16) TextureRegion {
	return TextureRegion{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
		Rotated:   f.Rotated,
	}
}

func regionToFrame(r TextureRegion) jsonFrame {
	trimmed := r.OffsetX != 0 || r.OffsetY != 0 ||
		r.Width != r.OriginalW || r.Height != r.OriginalH
	return jsonFrame{
		Frame:   jsonRect{X: int(r.X), Y: int(r.Y), W: int(r.Width), H: int(r.Height)},
		Rotated: r.Rotated,
		Trimmed: trimmed,
		SpriteSourceSize: jsonRect{
			X: int(r.OffsetX), Y: int(r.OffsetY), W: int(r.Width), H: int(r.Height),
		},
		SourceSize: jsonSize{W: int(r.OriginalW), H: int(r.OriginalH)},
	}
}
