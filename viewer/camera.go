package viewer

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	minZoom = 1.0 / 16
	maxZoom = 32.0
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera controls the view onto an atlas page: position, zoom and viewport.
type Camera struct {
	// X and Y are the page-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = one page pixel per screen pixel).
	Zoom float64
	// Viewport is the screen-space rectangle the camera renders into.
	Viewport Rect

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	scrollTween *scrollAnim
	zoomTween   *gween.Tween
}

// NewCamera creates a Camera with zoom 1 and the given viewport.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Zoom:     1.0,
		Viewport: viewport,
		dirty:    true,
	}
}

// ScrollTo animates the camera to the given page position over duration
// seconds. A zero duration jumps immediately.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if duration <= 0 {
		c.scrollTween = nil
		c.X, c.Y = x, y
		c.dirty = true
		return
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// StopScroll cancels a running ScrollTo, leaving the camera where it is.
func (c *Camera) StopScroll() {
	c.scrollTween = nil
}

// ZoomTo animates the zoom factor to z over duration seconds. z is clamped
// to the supported zoom range.
func (c *Camera) ZoomTo(z float64, duration float32, easeFn ease.TweenFunc) {
	z = clampZoom(z)
	if duration <= 0 {
		c.zoomTween = nil
		c.Zoom = z
		c.dirty = true
		return
	}
	c.zoomTween = gween.New(float32(c.Zoom), float32(z), duration, easeFn)
}

// Animating reports whether a scroll or zoom tween is in progress.
func (c *Camera) Animating() bool {
	return c.scrollTween != nil || c.zoomTween != nil
}

// FitZoom returns the zoom that fits a w×h page inside the viewport with
// margin screen pixels on every side.
func (c *Camera) FitZoom(w, h, margin float64) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	zx := (c.Viewport.Width - 2*margin) / w
	zy := (c.Viewport.Height - 2*margin) / h
	return clampZoom(math.Min(zx, zy))
}

// update advances the scroll and zoom tweens by dt seconds.
func (c *Camera) update(dt float32) {
	prevX, prevY, prevZoom := c.X, c.Y, c.Zoom

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.zoomTween != nil {
		val, done := c.zoomTween.Update(dt)
		c.Zoom = clampZoom(float64(val))
		if done {
			c.zoomTween = nil
		}
	}

	if c.X != prevX || c.Y != prevY || c.Zoom != prevZoom {
		c.dirty = true
	}
}

// computeViewMatrix recomputes the cached view matrix if dirty.
//
// viewMatrix = Translate(cx, cy) * Scale(zoom) * Translate(-X, -Y)
// where cx, cy = viewport center.
func (c *Camera) computeViewMatrix() [6]float64 {
	if !c.dirty {
		return c.viewMatrix
	}
	c.dirty = false

	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	z := c.Zoom

	c.viewMatrix = [6]float64{z, 0, 0, z, cx - z*c.X, cy - z*c.Y}
	c.invViewMatrix = invertAffine(c.viewMatrix)
	return c.viewMatrix
}

// WorldToScreen converts page coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	c.computeViewMatrix()
	return transformPoint(c.viewMatrix, wx, wy)
}

// ScreenToWorld converts screen coordinates to page coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.computeViewMatrix()
	return transformPoint(c.invViewMatrix, sx, sy)
}

// MarkDirty forces a recomputation of the view matrix. Call it after
// modifying X, Y or Zoom directly.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

func clampZoom(z float64) float64 {
	return math.Max(minZoom, math.Min(z, maxZoom))
}
