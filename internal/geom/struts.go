package geom

// StrutPartial mirrors a _NET_WM_STRUT_PARTIAL reservation in root coordinates.
type StrutPartial struct {
	Left, Right, Top, Bottom int

	LeftStartY, LeftEndY     int
	RightStartY, RightEndY   int
	TopStartX, TopEndX       int
	BottomStartX, BottomEndX int
}

// FullStrut expands a plain _NET_WM_STRUT into a partial strut spanning the
// whole root edge.
func FullStrut(left, right, top, bottom, rootWidth, rootHeight int) StrutPartial {
	return StrutPartial{
		Left:       left,
		Right:      right,
		Top:        top,
		Bottom:     bottom,
		LeftEndY:   rootHeight - 1,
		RightEndY:  rootHeight - 1,
		TopEndX:    rootWidth - 1,
		BottomEndX: rootWidth - 1,
	}
}

// Struts accumulates the largest reservation per screen edge.
type Struts struct {
	Left, Right, Top, Bottom int
}

// Zero reports whether no edge is reserved.
func (s Struts) Zero() bool {
	return s.Left == 0 && s.Right == 0 && s.Top == 0 && s.Bottom == 0
}

// Add folds a strut reservation into the accumulator, counting only the part
// that intersects area.
func (s *Struts) Add(area Rect, rootWidth, rootHeight int, sp StrutPartial) {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		r := Rect{X: sp.TopStartX, Y: 0, Width: sp.TopEndX + 1 - sp.TopStartX, Height: sp.Top}
		s.Top = max(s.Top, area.Intersect(r).Height)
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight)
	if sp.Bottom > 0 {
		r := Rect{X: sp.BottomStartX, Y: rootHeight - sp.Bottom, Width: sp.BottomEndX + 1 - sp.BottomStartX, Height: sp.Bottom}
		s.Bottom = max(s.Bottom, area.Intersect(r).Height)
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		r := Rect{X: 0, Y: sp.LeftStartY, Width: sp.Left, Height: sp.LeftEndY + 1 - sp.LeftStartY}
		s.Left = max(s.Left, area.Intersect(r).Width)
	}

	// Right strut: x=[rootWidth-Right,rootWidth)
	if sp.Right > 0 {
		r := Rect{X: rootWidth - sp.Right, Y: sp.RightStartY, Width: sp.Right, Height: sp.RightEndY + 1 - sp.RightStartY}
		s.Right = max(s.Right, area.Intersect(r).Width)
	}
}

// Apply shrinks area by the accumulated reservations. The result is never
// smaller than 1x1.
func (s Struts) Apply(area Rect) Rect {
	out := Rect{
		X:      area.X + s.Left,
		Y:      area.Y + s.Top,
		Width:  area.Width - (s.Left + s.Right),
		Height: area.Height - (s.Top + s.Bottom),
	}
	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}
