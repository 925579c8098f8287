// Package surface interprets pointer gestures over the map: drags pan, wheel
// notches zoom, clicks either inspect a marker or request a new pin.
package surface

import (
	"math"
	"time"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/viewport"
)

// IntentKind tells the page what a click asked for.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentCreate
	IntentInspect
)

func (k IntentKind) String() string {
	switch k {
	case IntentCreate:
		return "create"
	case IntentInspect:
		return "inspect"
	default:
		return "none"
	}
}

// Intent is the outcome of a click. At is set for IntentCreate, Pin for IntentInspect.
type Intent struct {
	Kind IntentKind
	At   domain.GeoPoint
	Pin  domain.PinEntry
}

// Marker is a pin projected into screen space.
type Marker struct {
	Entry domain.PinEntry
	X, Y  float64
}

// Options tune gesture handling.
type Options struct {
	// DragCooldown is how long clicks are ignored after a drag ends.
	DragCooldown time.Duration
	// MarkerRadius is the hit distance around a marker, per axis, in screen units.
	MarkerRadius float64
	Now          func() time.Time
}

// Surface owns the viewport and the pins currently drawn on it.
type Surface struct {
	vp   *viewport.Viewport
	rect viewport.Rect
	pins []domain.PinEntry
	opts Options

	pressed      bool
	dragging     bool
	lastX, lastY float64
	dragEndedAt  time.Time
	hasDragged   bool
}

// New creates a surface drawing vp into an initially empty rect.
func New(vp *viewport.Viewport, opts Options) *Surface {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Surface{vp: vp, opts: opts}
}

func (s *Surface) Viewport() *viewport.Viewport { return s.vp }
func (s *Surface) Rect() viewport.Rect          { return s.rect }

// SetRect updates the on-screen area, e.g. after a terminal resize.
func (s *Surface) SetRect(r viewport.Rect) { s.rect = r }

// SetPins replaces the rendered pin set.
func (s *Surface) SetPins(pins []domain.PinEntry) { s.pins = pins }

func (s *Surface) Pins() []domain.PinEntry { return s.pins }

// Dragging reports whether a pan gesture is in progress.
func (s *Surface) Dragging() bool { return s.dragging }

func (s *Surface) usable() bool {
	return s.rect.Width > 0 && s.rect.Height > 0
}

// MouseDown starts a potential drag at (x, y).
func (s *Surface) MouseDown(x, y float64) {
	if !s.usable() || !s.rect.Contains(x, y) {
		return
	}
	s.pressed = true
	s.dragging = false
	s.lastX, s.lastY = x, y
}

// MouseMove pans the viewport while the button is held. Any movement counts
// as a drag. It reports whether the viewport moved.
func (s *Surface) MouseMove(x, y float64) bool {
	if !s.pressed {
		return false
	}
	dx, dy := x-s.lastX, y-s.lastY
	if dx == 0 && dy == 0 {
		return false
	}
	s.dragging = true
	s.vp.Pan(dx, dy, s.rect)
	s.lastX, s.lastY = x, y
	return true
}

// MouseUp ends the gesture. A drag arms the click cooldown.
func (s *Surface) MouseUp(x, y float64) {
	if !s.pressed {
		return
	}
	s.MouseMove(x, y)
	if s.dragging {
		s.dragEndedAt = s.opts.Now()
		s.hasDragged = true
	}
	s.pressed = false
	s.dragging = false
}

func (s *Surface) coolingDown() bool {
	if !s.hasDragged {
		return false
	}
	return !s.opts.Now().After(s.dragEndedAt.Add(s.opts.DragCooldown))
}

// Click resolves a click at (x, y). A marker under the pointer takes the click
// and the map never sees it.
func (s *Surface) Click(x, y float64) Intent {
	if !s.usable() || !s.rect.Contains(x, y) || s.coolingDown() {
		return Intent{}
	}
	if e, ok := s.MarkerAt(x, y); ok {
		return Intent{Kind: IntentInspect, Pin: e}
	}
	return Intent{Kind: IntentCreate, At: s.vp.ScreenToGeo(x, y, s.rect)}
}

// Wheel zooms at the pointer. Positive notches zoom in.
func (s *Surface) Wheel(notches int, x, y float64) {
	if !s.usable() {
		return
	}
	s.vp.Wheel(notches, x, y, s.rect)
}

// Markers returns the screen position of every visible pin, in pin order.
func (s *Surface) Markers() []Marker {
	if !s.usable() {
		return nil
	}
	out := make([]Marker, 0, len(s.pins))
	for _, e := range s.pins {
		p := e.Pin.Point()
		if !s.vp.Visible(p) {
			continue
		}
		x, y := s.vp.GeoToScreen(p, s.rect)
		out = append(out, Marker{Entry: e, X: x, Y: y})
	}
	return out
}

// MarkerAt returns the nearest marker within MarkerRadius of (x, y).
func (s *Surface) MarkerAt(x, y float64) (domain.PinEntry, bool) {
	var (
		best  domain.PinEntry
		bestD = math.Inf(1)
		found bool
	)
	r := s.opts.MarkerRadius
	for _, m := range s.Markers() {
		dx, dy := math.Abs(m.X-x), math.Abs(m.Y-y)
		if dx > r || dy > r {
			continue
		}
		if d := dx*dx + dy*dy; d < bestD {
			best, bestD, found = m.Entry, d, true
		}
	}
	return best, found
}
