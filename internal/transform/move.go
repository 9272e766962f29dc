package transform

import "github.com/1broseidon/fluxcore/internal/geom"

// Env is what a move needs from the surrounding screen.
type Env interface {
	Bounds() geom.Rect
	SnapTargets() []geom.Rect
	CurrentWorkspace() int
	WorkspaceCount() int
	SwitchWorkspace(id int)
	WarpPointer(dx, dy int)
}

// Move tracks a frame being dragged by the pointer.
type Move struct {
	opts    Options
	grabX   int
	grabY   int
	lastX   int
	width   int
	height  int
	x, y    int
	startWS int
	warps   int
}

// StartMove begins a move of a frame whose outer rectangle is outer. pressX
// and pressY are the root coordinates where the button went down.
func StartMove(opts Options, outer geom.Rect, pressX, pressY, workspace int) *Move {
	return &Move{
		opts:    opts,
		grabX:   pressX - outer.X,
		grabY:   pressY - outer.Y,
		lastX:   pressX,
		width:   outer.Width,
		height:  outer.Height,
		x:       outer.X,
		y:       outer.Y,
		startWS: workspace,
	}
}

// Motion feeds one pointer sample in root coordinates and returns the new
// top-left of the outer rectangle.
func (m *Move) Motion(env Env, rootX, rootY int) (int, int) {
	pointerX := rootX
	movedX := rootX - m.lastX
	m.lastX = rootX

	if movedX != 0 && m.opts.WorkspaceWarping && env.WorkspaceCount() > 1 {
		pointerX = m.warp(env, rootX, movedX)
	}

	x := pointerX - m.grabX
	y := rootY - m.grabY

	targets := append([]geom.Rect{env.Bounds()}, env.SnapTargets()...)
	m.x, m.y = Snap(m.opts.SnapThreshold, x, y, m.width, m.height, targets)
	return m.x, m.y
}

// warp switches workspace when the pointer is pushed into the left or
// right screen edge, moves the pointer to the opposite edge and returns the
// pointer's new x.
func (m *Move) warp(env Env, rootX, movedX int) int {
	width := env.Bounds().Width
	pad := m.opts.SnapThreshold
	cur := env.CurrentWorkspace()
	count := env.WorkspaceCount()

	next := cur
	delta := 0
	switch {
	case rootX >= width-pad-1 && movedX > 0:
		next = (cur + 1) % count
		delta = -rootX
	case rootX <= pad && movedX < 0:
		next = (cur + count - 1) % count
		delta = width - rootX - 1
	}
	if next == cur {
		return rootX
	}

	env.WarpPointer(delta, 0)
	env.SwitchWorkspace(next)
	m.warps++
	m.lastX = rootX + delta
	return rootX + delta
}

// Position returns the last computed top-left.
func (m *Move) Position() (int, int) { return m.x, m.y }

// Size returns the outer size being moved.
func (m *Move) Size() (int, int) { return m.width, m.height }

// Outline returns the rectangle to draw for a non-opaque move.
func (m *Move) Outline() geom.Rect {
	return geom.Rect{X: m.x, Y: m.y, Width: m.width, Height: m.height}
}

// Warped reports whether the move switched workspace at least once.
func (m *Move) Warped() bool { return m.warps > 0 }

// StartWorkspace returns the workspace the move began on.
func (m *Move) StartWorkspace() int { return m.startWS }

// Opaque reports whether every sample should be committed.
func (m *Move) Opaque() bool { return m.opts.Opaque }
