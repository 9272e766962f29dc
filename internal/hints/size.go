package hints

import "github.com/1broseidon/fluxcore/internal/geom"

// SizeFlags mirror the ICCCM WM_NORMAL_HINTS flag bits.
type SizeFlags uint32

const (
	USPosition  SizeFlags = 1 << 0
	USSize      SizeFlags = 1 << 1
	PPosition   SizeFlags = 1 << 2
	PSize       SizeFlags = 1 << 3
	PMinSize    SizeFlags = 1 << 4
	PMaxSize    SizeFlags = 1 << 5
	PResizeInc  SizeFlags = 1 << 6
	PAspect     SizeFlags = 1 << 7
	PBaseSize   SizeFlags = 1 << 8
	PWinGravity SizeFlags = 1 << 9
)

// Gravity is the ICCCM window gravity.
type Gravity int

const (
	GravityForget Gravity = iota
	GravityNorthWest
	GravityNorth
	GravityNorthEast
	GravityWest
	GravityCenter
	GravityEast
	GravitySouthWest
	GravitySouth
	GravitySouthEast
	GravityStatic
)

// SizeHints holds the client's geometry constraints. A zero maximum means
// unbounded.
type SizeHints struct {
	Flags      SizeFlags
	MinWidth   int
	MinHeight  int
	MaxWidth   int
	MaxHeight  int
	BaseWidth  int
	BaseHeight int
	WidthInc   int
	HeightInc  int

	MinAspectX int
	MinAspectY int
	MaxAspectX int
	MaxAspectY int

	Gravity Gravity
}

// DefaultSizeHints returns the hints assumed for a client that sets none.
func DefaultSizeHints() SizeHints {
	return SizeHints{}.Normalize()
}

// Normalize fills every field whose flag is absent with its default.
func (h SizeHints) Normalize() SizeHints {
	out := h
	if h.Flags&PMinSize == 0 {
		out.MinWidth, out.MinHeight = 1, 1
	}
	if h.Flags&PMaxSize == 0 {
		out.MaxWidth, out.MaxHeight = 0, 0
	}
	if h.Flags&PResizeInc == 0 {
		out.WidthInc, out.HeightInc = 1, 1
	}
	if h.Flags&PAspect == 0 {
		out.MinAspectX, out.MinAspectY, out.MaxAspectX, out.MaxAspectY = 1, 1, 1, 1
	}
	if h.Flags&PBaseSize == 0 {
		out.BaseWidth, out.BaseHeight = 0, 0
	}
	if h.Flags&PWinGravity == 0 {
		out.Gravity = GravityNorthWest
	}
	return out
}

// Degenerate reports whether the client cannot be resized at all: both
// bounds are declared and the maximum does not exceed the minimum on
// either axis.
func (h SizeHints) Degenerate() bool {
	if h.Flags&PMinSize == 0 || h.Flags&PMaxSize == 0 {
		return false
	}
	return h.MaxWidth != 0 && h.MaxWidth <= h.MinWidth &&
		h.MaxHeight != 0 && h.MaxHeight <= h.MinHeight
}

// UserPlaced reports whether the client asked for its own position.
func (h SizeHints) UserPlaced() bool {
	return h.Flags&(PPosition|USPosition) != 0
}

// Constrain fits a client area size to the hints. The base size is
// subtracted, the remainder clamped to [min, max] and rounded down to the
// increment, then the base is added back. The maximum always wins over the
// minimum. units are the size in increments,
// as shown in geometry feedback.
func (h SizeHints) Constrain(width, height int) (w, ht, unitsW, unitsH int) {
	dx := width - h.BaseWidth
	dy := height - h.BaseHeight

	if dx < h.MinWidth {
		dx = h.MinWidth
	}
	if dy < h.MinHeight {
		dy = h.MinHeight
	}
	if h.MaxWidth > 0 && dx > h.MaxWidth {
		dx = h.MaxWidth
	}
	if h.MaxHeight > 0 && dy > h.MaxHeight {
		dy = h.MaxHeight
	}

	if h.Flags&PAspect != 0 {
		dx, dy = h.applyAspect(dx, dy)
	}

	incW, incH := h.WidthInc, h.HeightInc
	if incW <= 0 {
		incW = 1
	}
	if incH <= 0 {
		incH = 1
	}

	unitsW = dx / incW
	unitsH = dy / incH
	if unitsW*incW < h.MinWidth {
		unitsW++
	}
	if unitsH*incH < h.MinHeight {
		unitsH++
	}

	// Rounding up to the minimum must not step past the maximum.
	dx, dy = unitsW*incW, unitsH*incH
	if h.MaxWidth > 0 && dx > h.MaxWidth {
		dx = h.MaxWidth
		unitsW = dx / incW
	}
	if h.MaxHeight > 0 && dy > h.MaxHeight {
		dy = h.MaxHeight
		unitsH = dy / incH
	}
	return dx + h.BaseWidth, dy + h.BaseHeight, unitsW, unitsH
}

// applyAspect shrinks one dimension so that minAspect <= dx/dy <= maxAspect.
func (h SizeHints) applyAspect(dx, dy int) (int, int) {
	if dy <= 0 || dx <= 0 {
		return dx, dy
	}
	if h.MinAspectX > 0 && h.MinAspectY > 0 && dx*h.MinAspectY < h.MinAspectX*dy {
		if ny := dx * h.MinAspectY / h.MinAspectX; ny >= h.MinHeight {
			dy = ny
		}
	}
	if h.MaxAspectX > 0 && h.MaxAspectY > 0 && dx*h.MaxAspectY > h.MaxAspectX*dy {
		if nx := dy * h.MaxAspectX / h.MaxAspectY; nx >= h.MinWidth {
			dx = nx
		}
	}
	return dx, dy
}

// ApplyGravity shifts a frame that was created at the client's requested
// position so the client's reference point stays put once decorations are
// added. clientW and clientH are the client area size inside the frame.
func ApplyGravity(g Gravity, frame geom.Rect, clientW, clientH int) geom.Rect {
	out := frame
	switch g {
	case GravityNorthEast, GravityEast, GravitySouthEast:
		out.X = frame.X + clientW - frame.Width
	}
	switch g {
	case GravitySouthWest, GravitySouth, GravitySouthEast:
		out.Y = frame.Y + clientH - frame.Height
	}
	return out
}

// RestoreGravity returns where the client should be placed on the root
// when it is released from its frame.
func RestoreGravity(g Gravity, frame geom.Rect, clientW, clientH int) (int, int) {
	x, y := frame.X, frame.Y
	switch g {
	case GravityNorthEast, GravityEast, GravitySouthEast:
		x = frame.Right() - clientW
	}
	switch g {
	case GravitySouthWest, GravitySouth, GravitySouthEast:
		y = frame.Bottom() - clientH
	}
	return x, y
}
