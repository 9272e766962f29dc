package screen

import (
	"fmt"
	"slices"

	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/window"
)

// Placement selects where windows without a requested position go.
type Placement int

const (
	PlacementRowSmart Placement = iota
	PlacementColSmart
	PlacementCascade
)

// String returns the string representation of the placement
func (p Placement) String() string {
	switch p {
	case PlacementRowSmart:
		return "row-smart"
	case PlacementColSmart:
		return "col-smart"
	case PlacementCascade:
		return "cascade"
	default:
		return "unknown"
	}
}

// ParsePlacement maps a configuration name to a placement.
func ParsePlacement(name string) (Placement, error) {
	switch name {
	case "row-smart", "":
		return PlacementRowSmart, nil
	case "col-smart":
		return PlacementColSmart, nil
	case "cascade":
		return PlacementCascade, nil
	default:
		return PlacementRowSmart, fmt.Errorf("unknown placement %q", name)
	}
}

// place moves w to a free spot of the maximized area, falling back to
// cascading when no spot is free.
func (s *Screen) place(w *window.Window, ws int) {
	area := s.MaxArea()
	outer := w.Outer()

	var others []geom.Rect
	for i, list := range s.workspaces {
		for _, o := range list.windows {
			if o == w || o.IsIconic() || (i != ws && !o.IsStuck()) {
				continue
			}
			others = append(others, o.Outer())
		}
	}

	var (
		x, y int
		ok   bool
	)
	switch s.opts.Placement {
	case PlacementRowSmart:
		x, y, ok = smartPlace(area, outer.Width, outer.Height, others, true)
	case PlacementColSmart:
		x, y, ok = smartPlace(area, outer.Width, outer.Height, others, false)
	}
	if !ok {
		x, y = s.cascade(area, outer.Width, outer.Height)
	}
	s.logger.Debug("window placed", "frame", w.ID(), "x", x, "y", y, "placement", s.opts.Placement.String())
	w.Move(x, y)
}

// smartPlace returns the first position inside area where a width x
// height rectangle overlaps none of others. Candidate positions are the
// area origin and the right and bottom edges of the other windows, scanned
// row by row or column by column.
func smartPlace(area geom.Rect, width, height int, others []geom.Rect, rows bool) (int, int, bool) {
	xs := []int{area.X}
	ys := []int{area.Y}
	for _, o := range others {
		xs = append(xs, o.Right())
		ys = append(ys, o.Bottom())
	}
	slices.Sort(xs)
	slices.Sort(ys)
	xs = slices.Compact(xs)
	ys = slices.Compact(ys)

	free := func(x, y int) bool {
		r := geom.Rect{X: x, Y: y, Width: width, Height: height}
		if x < area.X || y < area.Y || r.Right() > area.Right() || r.Bottom() > area.Bottom() {
			return false
		}
		for _, o := range others {
			if r.Overlaps(o) {
				return false
			}
		}
		return true
	}

	outer, inner := ys, xs
	if !rows {
		outer, inner = xs, ys
	}
	for _, a := range outer {
		for _, b := range inner {
			x, y := b, a
			if !rows {
				x, y = a, b
			}
			if free(x, y) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// cascade steps each new window down and right from the area origin,
// starting over when the window would leave the area.
func (s *Screen) cascade(area geom.Rect, width, height int) (int, int) {
	x := area.X + s.cascadeX
	y := area.Y + s.cascadeY
	if x+width > area.Right() || y+height > area.Bottom() {
		s.cascadeX, s.cascadeY = 0, 0
		x, y = area.X, area.Y
	}
	s.cascadeX += s.opts.CascadeStep
	s.cascadeY += s.opts.CascadeStep
	return x, y
}
