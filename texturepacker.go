package atlaspack

import (
	"encoding/json"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Version is written to the meta block of generated atlas JSON.
const Version = "0.3.0"

type jsonMeta struct {
	App     string `json:"app"`
	Version string `json:"version"`
}

type jsonArrayDoc struct {
	Textures []jsonTexturePage `json:"textures"`
	Meta     jsonMeta          `json:"meta"`
}

// EncodeJSON returns the sheet in TexturePacker array format. Page i refers
// to the image file PageFileName(base, i). The output is deterministic and
// can be read back with LoadAtlas or ParseRegions.
func (s *Sheet) EncodeJSON(base string) ([]byte, error) {
	doc := jsonArrayDoc{
		Textures: make([]jsonTexturePage, len(s.Pages)),
		Meta:     jsonMeta{App: "atlaspack", Version: Version},
	}
	for i, page := range s.Pages {
		b := page.Bounds()
		doc.Textures[i] = jsonTexturePage{
			Image:  PageFileName(base, i),
			Format: "RGBA8888",
			Size:   jsonSize{W: b.Dx(), H: b.Dy()},
			Frames: make(map[string]jsonFrame),
		}
	}
	for name, r := range s.Regions {
		if int(r.Page) >= len(doc.Textures) {
			return nil, fmt.Errorf("atlaspack: region %q references page %d of %d", name, r.Page, len(doc.Textures))
		}
		doc.Textures[r.Page].Frames[name] = regionToFrame(r)
	}
	// encoding/json sorts map keys, which keeps frames in name order.
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("atlaspack: encode atlas JSON: %w", err)
	}
	return data, nil
}

// Atlas uploads the sheet's pages as ebiten images and returns an Atlas for
// named region lookups.
func (s *Sheet) Atlas() *Atlas {
	pages := make([]*ebiten.Image, len(s.Pages))
	for i, p := range s.Pages {
		pages[i] = ebiten.NewImageFromImage(p)
	}
	regions := make(map[string]TextureRegion, len(s.Regions))
	for name, r := range s.Regions {
		regions[name] = r
	}
	return &Atlas{Pages: pages, regions: regions}
}
