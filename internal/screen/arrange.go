package screen

import (
	"fmt"
	"math"

	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/window"
)

// CalculateGrid determines the grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows == 0 {
		return 0, 0
	}

	// Calculate columns first (ceiling of square root)
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))

	// Calculate rows needed
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	return rows, cols
}

// CalculatePositions computes outer window rectangles for a grid layout
// with gaps
func CalculatePositions(numWindows int, area geom.Rect, gapSize int) ([]geom.Rect, error) {
	if numWindows == 0 {
		return nil, nil
	}

	rows, cols := CalculateGrid(numWindows)

	// One gap before each column and one after the last
	totalHorizontalGaps := (cols + 1) * gapSize
	totalVerticalGaps := (rows + 1) * gapSize

	cellWidth := (area.Width - totalHorizontalGaps) / cols
	cellHeight := (area.Height - totalVerticalGaps) / rows

	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space to arrange: area=%dx%d rows=%d cols=%d gap=%d",
			area.Width, area.Height, rows, cols, gapSize,
		)
	}

	positions := make([]geom.Rect, numWindows)

	for i := 0; i < numWindows; i++ {
		row := i / cols
		col := i % cols

		positions[i] = geom.Rect{
			X:      area.X + gapSize + col*(cellWidth+gapSize),
			Y:      area.Y + gapSize + row*(cellHeight+gapSize),
			Width:  cellWidth,
			Height: cellHeight,
		}
	}

	return positions, nil
}

// ArrangeWindows tiles the windows shown on the current workspace in a
// grid over the maximized area. Shaded and maximized windows and windows
// that cannot be moved and resized keep their geometry. It returns the
// number of windows arranged.
func (s *Screen) ArrangeWindows(gapSize int) (int, error) {
	var targets []*window.Window
	for _, w := range s.visible() {
		f := w.Functions()
		if w.IsShaded() || w.IsMaximized() || !f.Move || !f.Resize {
			continue
		}
		targets = append(targets, w)
	}

	positions, err := CalculatePositions(len(targets), s.MaxArea(), gapSize)
	if err != nil {
		return 0, err
	}
	for i, w := range targets {
		p := positions[i]
		b := w.Border()
		w.MoveResize(geom.Rect{
			X:      p.X,
			Y:      p.Y,
			Width:  max(1, p.Width-2*b),
			Height: max(1, p.Height-2*b),
		})
	}
	s.logger.Info("windows arranged", "workspace", s.current, "count", len(targets))
	return len(targets), nil
}
