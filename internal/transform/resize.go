package transform

import (
	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/hints"
)

// Resize tracks a frame edge being dragged by the pointer. Geometry is the
// frame rectangle without its border.
type Resize struct {
	edge   Edge
	start  geom.Rect
	cur    geom.Rect
	grabX  int
	grabY  int
	size   hints.SizeHints
	decor  int
	unitsW int
	unitsH int
}

// StartResize begins resizing frame. decorHeight is the height the
// titlebar and handle take out of the frame; size hints apply to the rest.
func StartResize(frame geom.Rect, edge Edge, pressX, pressY int, size hints.SizeHints, decorHeight int) *Resize {
	r := &Resize{
		edge:  edge,
		start: frame,
		grabX: pressX,
		grabY: pressY,
		size:  size,
		decor: decorHeight,
	}
	r.cur, r.unitsW, r.unitsH = FixSize(size, decorHeight, frame, edge)
	return r
}

// Motion feeds one pointer sample and returns the fixed frame rectangle.
func (r *Resize) Motion(rootX, rootY int) geom.Rect {
	next := r.start
	next.Height = max(1, r.start.Height+(rootY-r.grabY))

	switch r.edge {
	case EdgeLeft:
		right := r.start.Right()
		left := min(r.start.X+(rootX-r.grabX), right-1)
		next.X = left
		next.Width = right - left
	default:
		next.Width = max(1, r.start.Width+(rootX-r.grabX))
	}

	r.cur, r.unitsW, r.unitsH = FixSize(r.size, r.decor, next, r.edge)
	return r.cur
}

// Geometry returns the last fixed rectangle.
func (r *Resize) Geometry() geom.Rect { return r.cur }

// Start returns the rectangle the resize began with.
func (r *Resize) Start() geom.Rect { return r.start }

// Units returns the last size in resize increments, for feedback.
func (r *Resize) Units() (int, int) { return r.unitsW, r.unitsH }

// Edge returns the dragged edge.
func (r *Resize) Edge() Edge { return r.edge }

// FixSize constrains a frame rectangle by the client's size hints. The
// decoration height is removed before constraining and added back after.
// When the left edge is dragged the right edge is kept in place.
func FixSize(size hints.SizeHints, decorHeight int, frame geom.Rect, edge Edge) (geom.Rect, int, int) {
	clientH := max(1, frame.Height-decorHeight)
	w, h, uw, uh := size.Constrain(frame.Width, clientH)

	fixed := geom.Rect{X: frame.X, Y: frame.Y, Width: w, Height: h + decorHeight}
	if edge == EdgeLeft {
		fixed.X = frame.Right() - w
	}
	return fixed, uw, uh
}
