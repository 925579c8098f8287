// Package viewport models the visible region of an equirectangular world canvas
// and converts between screen, world-canvas and geographic coordinates.
package viewport

import (
	"math"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/pkg/geospatial"
)

// Canvas is the fixed-size planar world: W units span 360° of longitude,
// H units span 180° of latitude.
type Canvas struct {
	W, H float64
}

// DefaultCanvas is the 2:1 world used by the map client.
var DefaultCanvas = Canvas{W: 1000, H: 500}

// ToWorld projects a geographic point onto the canvas.
func (c Canvas) ToWorld(p domain.GeoPoint) (x, y float64) {
	x = (p.Lon + 180) / 360 * c.W
	y = (90 - p.Lat) / 180 * c.H
	return x, y
}

// ToGeo is the inverse of ToWorld.
func (c Canvas) ToGeo(x, y float64) domain.GeoPoint {
	return domain.GeoPoint{
		Lat: 90 - y/c.H*180,
		Lon: x/c.W*360 - 180,
	}
}

// Limits bounds the zoom scale. Step is the multiplicative change per wheel notch.
type Limits struct {
	MinScale float64
	MaxScale float64
	Step     float64
}

// DefaultLimits matches the map client defaults.
var DefaultLimits = Limits{MinScale: 1, MaxScale: 4, Step: 1.1}

// Scale 1 shows the whole canvas; anything below would make the extent larger than the world.
func (l Limits) min() float64 {
	return math.Max(1, l.MinScale)
}

func (l Limits) max() float64 {
	return math.Max(l.min(), l.MaxScale)
}

// Rect is the on-screen area the viewport is drawn into.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Contains reports whether the screen point falls inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Left+r.Width && y >= r.Top && y < r.Top+r.Height
}

// Empty reports whether the rect has no area, as before the first layout.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Viewport is the visible window onto the canvas. Width and Height are always
// canvas size divided by Scale, and the window never leaves the canvas.
type Viewport struct {
	X, Y          float64
	Width, Height float64
	Scale         float64

	canvas Canvas
	limits Limits
}

// New returns a viewport showing the whole canvas at the minimum scale.
func New(c Canvas, l Limits) *Viewport {
	v := &Viewport{canvas: c, limits: l}
	v.Reset()
	return v
}

// Reset returns to the initial full-world view.
func (v *Viewport) Reset() {
	v.setScale(v.limits.min())
	v.X, v.Y = 0, 0
}

func (v *Viewport) Canvas() Canvas { return v.canvas }
func (v *Viewport) Limits() Limits { return v.limits }

func (v *Viewport) setScale(s float64) {
	v.Scale = math.Max(v.limits.min(), math.Min(v.limits.max(), s))
	v.Width = v.canvas.W / v.Scale
	v.Height = v.canvas.H / v.Scale
}

func (v *Viewport) clamp() {
	v.X = math.Max(0, math.Min(v.canvas.W-v.Width, v.X))
	v.Y = math.Max(0, math.Min(v.canvas.H-v.Height, v.Y))
}

// ScreenToWorld maps a screen point inside r to canvas coordinates.
func (v *Viewport) ScreenToWorld(sx, sy float64, r Rect) (wx, wy float64) {
	wx = (sx-r.Left)/r.Width*v.Width + v.X
	wy = (sy-r.Top)/r.Height*v.Height + v.Y
	return wx, wy
}

// WorldToScreen is the inverse of ScreenToWorld.
func (v *Viewport) WorldToScreen(wx, wy float64, r Rect) (sx, sy float64) {
	sx = (wx-v.X)/v.Width*r.Width + r.Left
	sy = (wy-v.Y)/v.Height*r.Height + r.Top
	return sx, sy
}

// ScreenToGeo resolves the geographic coordinate under a screen point.
func (v *Viewport) ScreenToGeo(sx, sy float64, r Rect) domain.GeoPoint {
	return v.canvas.ToGeo(v.ScreenToWorld(sx, sy, r))
}

// GeoToScreen returns where p is drawn inside r. The result may lie outside r
// when p is not visible.
func (v *Viewport) GeoToScreen(p domain.GeoPoint, r Rect) (sx, sy float64) {
	wx, wy := v.canvas.ToWorld(p)
	return v.WorldToScreen(wx, wy, r)
}

// Visible reports whether p falls inside the current window.
func (v *Viewport) Visible(p domain.GeoPoint) bool {
	wx, wy := v.canvas.ToWorld(p)
	return wx >= v.X && wx <= v.X+v.Width && wy >= v.Y && wy <= v.Y+v.Height
}

// Pan moves the window by a screen-space drag of (dx, dy). The map follows the
// pointer, so the origin moves the opposite way. An empty r is a no-op.
func (v *Viewport) Pan(dx, dy float64, r Rect) {
	if r.Empty() {
		return
	}
	v.X -= dx * v.Width / r.Width
	v.Y -= dy * v.Height / r.Height
	v.clamp()
}

// Zoom multiplies the scale by factor, keeping the canvas point under
// (ax, ay) fixed on screen. Nothing changes while r is empty. Edge clamping wins over the anchor when zooming
// out near the canvas border.
func (v *Viewport) Zoom(factor, ax, ay float64, r Rect) {
	if factor <= 0 || r.Empty() {
		return
	}
	wx, wy := v.ScreenToWorld(ax, ay, r)
	v.setScale(v.Scale * factor)
	v.X = wx - (ax-r.Left)/r.Width*v.Width
	v.Y = wy - (ay-r.Top)/r.Height*v.Height
	v.clamp()
}

// Wheel zooms by whole notches anchored at (ax, ay). Positive notches
// (wheel down) zoom in by Step each, negative notches zoom out.
func (v *Viewport) Wheel(notches int, ax, ay float64, r Rect) {
	if notches == 0 {
		return
	}
	v.Zoom(math.Pow(v.limits.Step, float64(notches)), ax, ay, r)
}

// Bounds returns the geographic box currently visible.
func (v *Viewport) Bounds() domain.Bounds {
	nw := v.canvas.ToGeo(v.X, v.Y)
	se := v.canvas.ToGeo(v.X+v.Width, v.Y+v.Height)
	return domain.Bounds{
		MinLat: geospatial.ClampLatitude(se.Lat),
		MaxLat: geospatial.ClampLatitude(nw.Lat),
		MinLon: geospatial.WrapLongitude(nw.Lon),
		MaxLon: geospatial.WrapLongitude(se.Lon),
	}
}
