package transform

import "github.com/1broseidon/fluxcore/internal/geom"

// Snap adjusts the top-left corner of an outer rectangle of size
// width x height so that its edges line up with any target edge closer than
// threshold. Horizontal edges only attract when the vertical ranges touch,
// and vice versa. Each axis takes the smallest correction found. A zero
// threshold disables snapping.
func Snap(threshold, left, top, width, height int, targets []geom.Rect) (int, int) {
	if threshold <= 0 {
		return left, top
	}

	dx := threshold + 1
	dy := threshold + 1

	right := left + width
	bottom := top + height

	for _, t := range targets {
		snapTo(&dx, &dy, left, right, top, bottom, t.X, t.Right(), t.Y, t.Bottom())
	}

	if abs(dx) <= threshold {
		left += dx
	}
	if abs(dy) <= threshold {
		top += dy
	}
	return left, top
}

func snapTo(xlimit, ylimit *int, left, right, top, bottom, oleft, oright, otop, obottom int) {
	// left and right edges only matter when the vertical ranges touch
	if top <= obottom && bottom >= otop {
		closer(xlimit, oleft-left)
		closer(xlimit, oleft-right)
		closer(xlimit, oright-left)
		closer(xlimit, oright-right)
	}

	if left <= oright && right >= oleft {
		closer(ylimit, otop-top)
		closer(ylimit, otop-bottom)
		closer(ylimit, obottom-top)
		closer(ylimit, obottom-bottom)
	}
}

func closer(limit *int, d int) {
	if abs(d) < abs(*limit) {
		*limit = d
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
