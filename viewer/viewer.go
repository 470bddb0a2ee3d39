// Package viewer displays a packed atlas in an Ebitengine window.
//
// Pages are laid out left to right. The camera centers on one page at a
// time; the arrow keys scroll to the neighbouring page and every packed
// region is outlined, with the region under the cursor highlighted and
// named in the status line.
//
// Controls:
//
//	Left/Right   previous/next page
//	+/- , wheel  zoom in/out
//	0            fit the current page
//	drag         pan
//	O            toggle region outlines
//	Esc          quit
package viewer

import (
	"cmp"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/atlaspack"
)

const (
	pageGap    = 32.0 // page-space gap between neighbouring pages
	fitMargin  = 24.0 // screen pixels kept around a fitted page
	zoomFactor = 1.25
)

// Config holds viewer window settings.
type Config struct {
	Title  string
	Width  int
	Height int

	Background color.Color
	Outline    color.Color
	Highlight  color.Color

	// ScrollDuration is the page switch animation length in seconds.
	ScrollDuration float32
	// HideOutlines starts the viewer with region outlines switched off.
	HideOutlines bool
}

// DefaultConfig returns a 1024×768 window with a dark background.
func DefaultConfig() Config {
	return Config{
		Title:          "atlaspack viewer",
		Width:          1024,
		Height:         768,
		Background:     color.RGBA{R: 30, G: 30, B: 36, A: 255},
		Outline:        color.RGBA{R: 90, G: 200, B: 255, A: 160},
		Highlight:      color.RGBA{R: 255, G: 200, B: 40, A: 255},
		ScrollDuration: 0.35,
	}
}

// regionBox is a named region in page space.
type regionBox struct {
	name   string
	bounds Rect
}

// Viewer is an ebiten.Game showing the pages of an atlas.
type Viewer struct {
	atlas *atlaspack.Atlas
	cfg   Config
	cam   *Camera

	origins []float64     // page-space x of every page's left edge
	regions [][]regionBox // per page, sorted by name

	page         int
	hover        string
	showOutlines bool

	dragging     bool
	dragX, dragY int
}

// New creates a viewer for atlas. Zero fields in cfg take their
// DefaultConfig values.
func New(atlas *atlaspack.Atlas, cfg Config) *Viewer {
	def := DefaultConfig()
	cfg.Title = cmp.Or(cfg.Title, def.Title)
	cfg.Width = cmp.Or(cfg.Width, def.Width)
	cfg.Height = cmp.Or(cfg.Height, def.Height)
	cfg.ScrollDuration = cmp.Or(cfg.ScrollDuration, def.ScrollDuration)
	if cfg.Background == nil {
		cfg.Background = def.Background
	}
	if cfg.Outline == nil {
		cfg.Outline = def.Outline
	}
	if cfg.Highlight == nil {
		cfg.Highlight = def.Highlight
	}

	v := &Viewer{
		atlas:        atlas,
		cfg:          cfg,
		cam:          NewCamera(Rect{Width: float64(cfg.Width), Height: float64(cfg.Height)}),
		origins:      make([]float64, len(atlas.Pages)),
		regions:      make([][]regionBox, len(atlas.Pages)),
		showOutlines: !cfg.HideOutlines,
	}

	x := 0.0
	for i, p := range atlas.Pages {
		v.origins[i] = x
		x += float64(p.Bounds().Dx()) + pageGap
	}
	for _, name := range atlas.Names() {
		r, _ := atlas.Lookup(name)
		if int(r.Page) >= len(v.regions) {
			continue
		}
		v.regions[r.Page] = append(v.regions[r.Page], regionBox{
			name: name,
			bounds: Rect{
				X:      v.origins[r.Page] + float64(r.X),
				Y:      float64(r.Y),
				Width:  float64(r.Width),
				Height: float64(r.Height),
			},
		})
	}

	v.focus(0)
	return v
}

// Camera returns the viewer's camera.
func (v *Viewer) Camera() *Camera { return v.cam }

// Page returns the index of the page the camera is centered on.
func (v *Viewer) Page() int { return v.page }

// PageCount returns the number of atlas pages.
func (v *Viewer) PageCount() int { return len(v.atlas.Pages) }

// Hover returns the name of the region under the cursor, or "".
func (v *Viewer) Hover() string { return v.hover }

// SetPage scrolls the camera to page i and zooms to fit it. Out of range
// indices are clamped.
func (v *Viewer) SetPage(i int) {
	if len(v.atlas.Pages) == 0 {
		return
	}
	v.page = max(0, min(i, len(v.atlas.Pages)-1))
	cx, cy, w, h := v.pageCenter(v.page)
	v.cam.ScrollTo(cx, cy, v.cfg.ScrollDuration, ease.OutCubic)
	v.cam.ZoomTo(v.cam.FitZoom(w, h, fitMargin), v.cfg.ScrollDuration, ease.OutCubic)
	atlaspack.Logger().Debug("viewer: page", "page", v.page, "size", fmt.Sprintf("%.0fx%.0f", w, h))
}

// focus jumps to page i without animation.
func (v *Viewer) focus(i int) {
	if len(v.atlas.Pages) == 0 {
		return
	}
	v.page = i
	cx, cy, w, h := v.pageCenter(i)
	v.cam.ScrollTo(cx, cy, 0, nil)
	v.cam.ZoomTo(v.cam.FitZoom(w, h, fitMargin), 0, nil)
}

func (v *Viewer) pageCenter(i int) (cx, cy, w, h float64) {
	b := v.atlas.Pages[i].Bounds()
	w, h = float64(b.Dx()), float64(b.Dy())
	return v.origins[i] + w/2, h / 2, w, h
}

// regionAt returns the region containing the page-space point (wx, wy).
func (v *Viewer) regionAt(wx, wy float64) (regionBox, bool) {
	for _, boxes := range v.regions {
		for _, b := range boxes {
			if b.bounds.Contains(wx, wy) {
				return b, true
			}
		}
	}
	return regionBox{}, false
}

// Update handles input and advances camera animation.
func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		v.SetPage(v.page + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		v.SetPage(v.page - 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit0):
		v.SetPage(v.page)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		v.cam.ZoomTo(v.cam.Zoom*zoomFactor, 0.1, ease.OutQuad)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		v.cam.ZoomTo(v.cam.Zoom/zoomFactor, 0.1, ease.OutQuad)
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		v.showOutlines = !v.showOutlines
	}

	if _, wy := ebiten.Wheel(); wy > 0 {
		v.cam.ZoomTo(v.cam.Zoom*zoomFactor, 0, nil)
	} else if wy < 0 {
		v.cam.ZoomTo(v.cam.Zoom/zoomFactor, 0, nil)
	}

	mx, my := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		v.dragging, v.dragX, v.dragY = true, mx, my
	case v.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		v.pan(float64(mx-v.dragX), float64(my-v.dragY))
		v.dragX, v.dragY = mx, my
	default:
		v.dragging = false
	}

	v.cam.update(float32(1.0 / float64(ebiten.TPS())))

	v.hover = ""
	if b, ok := v.regionAt(v.cam.ScreenToWorld(float64(mx), float64(my))); ok {
		v.hover = b.name
	}
	return nil
}

// pan moves the camera by a screen-space delta.
func (v *Viewer) pan(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	v.cam.StopScroll()
	v.cam.X -= dx / v.cam.Zoom
	v.cam.Y -= dy / v.cam.Zoom
	v.cam.MarkDirty()
}

// Draw renders every page, the region outlines and the status line.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(v.cfg.Background)

	for i, img := range v.atlas.Pages {
		b := img.Bounds()
		sx, sy := v.cam.WorldToScreen(v.origins[i], 0)
		var op ebiten.DrawImageOptions
		op.GeoM.Scale(v.cam.Zoom, v.cam.Zoom)
		op.GeoM.Translate(sx, sy)
		if v.cam.Zoom >= 2 {
			op.Filter = ebiten.FilterNearest
		} else {
			op.Filter = ebiten.FilterLinear
		}
		screen.DrawImage(img, &op)
		v.strokeWorldRect(screen, Rect{X: v.origins[i], Width: float64(b.Dx()), Height: float64(b.Dy())}, v.cfg.Outline)
	}

	var hovered regionBox
	for _, boxes := range v.regions {
		for _, box := range boxes {
			if box.name == v.hover {
				hovered = box
			}
			if v.showOutlines {
				v.strokeWorldRect(screen, box.bounds, v.cfg.Outline)
			}
		}
	}
	if v.hover != "" {
		v.strokeWorldRect(screen, hovered.bounds, v.cfg.Highlight)
	}

	ebitenutil.DebugPrintAt(screen, v.status(), 4, 4)
}

func (v *Viewer) strokeWorldRect(dst *ebiten.Image, r Rect, clr color.Color) {
	x0, y0 := v.cam.WorldToScreen(r.X, r.Y)
	x1, y1 := v.cam.WorldToScreen(r.X+r.Width, r.Y+r.Height)
	vector.StrokeRect(dst, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 1, clr, false)
}

// status returns the text of the status line.
func (v *Viewer) status() string {
	if len(v.atlas.Pages) == 0 {
		return "no pages"
	}
	b := v.atlas.Pages[v.page].Bounds()
	s := fmt.Sprintf("page %d/%d  %dx%d  %d regions  zoom %.2fx",
		v.page+1, len(v.atlas.Pages), b.Dx(), b.Dy(), len(v.regions[v.page]), v.cam.Zoom)
	if v.hover != "" {
		r, _ := v.atlas.Lookup(v.hover)
		s += fmt.Sprintf("\n%s  page %d  %d,%d %dx%d", v.hover, r.Page, r.X, r.Y, r.Width, r.Height)
		if r.Width != r.OriginalW || r.Height != r.OriginalH {
			s += fmt.Sprintf("  (trimmed from %dx%d)", r.OriginalW, r.OriginalH)
		}
	}
	return s
}

// Layout tracks the window size so the viewport always fills it.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := float64(outsideWidth), float64(outsideHeight)
	if v.cam.Viewport.Width != w || v.cam.Viewport.Height != h {
		v.cam.Viewport = Rect{Width: w, Height: h}
		v.cam.MarkDirty()
	}
	return outsideWidth, outsideHeight
}

// Run opens a window and blocks until it is closed.
func Run(atlas *atlaspack.Atlas, cfg Config) error {
	v := New(atlas, cfg)
	ebiten.SetWindowTitle(v.cfg.Title)
	ebiten.SetWindowSize(v.cfg.Width, v.cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}
