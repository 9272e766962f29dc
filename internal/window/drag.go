package window

import (
	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/transform"
)

// moveEnv lets a move switch workspaces and find snap targets.
type moveEnv struct{ w *Window }

func (e moveEnv) Bounds() geom.Rect        { return e.w.m.screen.Bounds() }
func (e moveEnv) SnapTargets() []geom.Rect { return e.w.m.screen.SnapTargets(e.w) }
func (e moveEnv) CurrentWorkspace() int    { return e.w.m.screen.CurrentWorkspace() }
func (e moveEnv) WorkspaceCount() int      { return e.w.m.screen.WorkspaceCount() }
func (e moveEnv) SwitchWorkspace(id int)   { e.w.m.screen.SwitchWorkspace(id) }
func (e moveEnv) WarpPointer(dx, dy int)   { e.w.m.provider.WarpPointer(dx, dy) }

// StartMoving begins an interactive move anchored at the current pointer
// position, for moves not started by a button press.
func (w *Window) StartMoving() bool {
	x, y, err := w.m.provider.Pointer()
	if err != nil {
		w.logger.Debug("pointer query failed", "error", err)
		return false
	}
	return w.startMoving(x, y)
}

// startMoving begins a move anchored at rootX, rootY. Nothing changes if
// the pointer cannot be grabbed.
func (w *Window) startMoving(rootX, rootY int) bool {
	if w.phase != transform.PhaseInactive || !w.funcs.Move {
		return false
	}
	if err := w.m.provider.GrabPointer(CursorMove); err != nil {
		w.logger.Debug("move grab failed", "error", err)
		return false
	}

	opts := transform.Options{
		SnapThreshold:    w.m.opts.EdgeSnapThreshold,
		WorkspaceWarping: w.m.opts.WorkspaceWarping,
		Opaque:           w.m.opts.OpaqueMove,
	}
	w.move = transform.StartMove(opts, w.Outer(), rootX, rootY, w.workspace)
	w.phase = transform.PhaseMoving
	w.m.dragging = w

	w.TempRaise()
	if !opts.Opaque {
		w.m.provider.DrawOutline(w.Outer())
	}
	if w.m.opts.ShowPosition {
		w.m.screen.ShowPosition(w.geom.X, w.geom.Y)
	}
	return true
}

func (w *Window) moveMotion(rootX, rootY int) {
	x, y := w.move.Motion(moveEnv{w}, rootX, rootY)
	if w.move.Opaque() {
		w.Move(x, y)
	} else {
		w.m.provider.DrawOutline(w.move.Outline())
	}
	if w.m.opts.ShowPosition {
		w.m.screen.ShowPosition(x, y)
	}
}

// stopMoving commits the final position. A window dragged across a
// workspace edge joins the workspace now shown.
func (w *Window) stopMoving() {
	x, y := w.move.Position()
	if !w.move.Opaque() {
		w.m.provider.ClearOutline()
	}
	w.move = nil
	w.phase = transform.PhaseInactive
	w.m.dragging = nil

	w.Move(x, y)
	if cur := w.m.screen.CurrentWorkspace(); w.workspace != cur && !w.stuck {
		w.m.screen.Reassociate(w, cur, true)
		w.m.provider.Show(w.frame)
	}
	w.m.stack.Layers().Commit()

	w.m.screen.HideGeometry()
	w.m.provider.UngrabPointer()
}

// StartResizing begins an interactive resize of the given edge anchored
// at the current pointer position.
func (w *Window) StartResizing(edge transform.Edge) bool {
	x, y, err := w.m.provider.Pointer()
	if err != nil {
		w.logger.Debug("pointer query failed", "error", err)
		return false
	}
	return w.startResizing(edge, x, y)
}

// startResizing begins a resize of edge anchored at rootX, rootY. Nothing
// changes if the pointer cannot be grabbed.
func (w *Window) startResizing(edge transform.Edge, rootX, rootY int) bool {
	s := w.active()
	if s == nil || w.phase != transform.PhaseInactive || !w.funcs.Resize || w.shaded {
		return false
	}
	cursor := CursorResizeRight
	if edge == transform.EdgeLeft {
		cursor = CursorResizeLeft
	}
	if err := w.m.provider.GrabPointer(cursor); err != nil {
		w.logger.Debug("resize grab failed", "error", err)
		return false
	}

	w.resize = transform.StartResize(w.geom, edge, rootX, rootY, s.Size, w.decorHeight())
	w.phase = transform.PhaseResizing
	w.m.dragging = w

	w.m.provider.DrawOutline(w.resize.Geometry().Outer(w.border))
	w.m.screen.ShowGeometry(w.resize.Units())
	return true
}

func (w *Window) resizeMotion(rootX, rootY int) {
	r := w.resize.Motion(rootX, rootY)
	w.m.provider.DrawOutline(r.Outer(w.border))
	w.m.screen.ShowGeometry(w.resize.Units())
}

func (w *Window) stopResizing() {
	r := w.resize.Geometry()
	w.m.provider.ClearOutline()
	w.resize = nil
	w.phase = transform.PhaseInactive
	w.m.dragging = nil

	w.m.screen.HideGeometry()
	w.MoveResize(r)
	w.m.provider.UngrabPointer()
}

// CancelTransform abandons a move, resize or tab drag in progress. The
// window keeps its last committed geometry.
func (w *Window) CancelTransform() {
	switch {
	case w.move != nil:
		if !w.move.Opaque() {
			w.m.provider.ClearOutline()
		}
		w.m.stack.Layers().Commit()
	case w.resize != nil:
		w.m.provider.ClearOutline()
	case w.tabDrag != None:
		w.m.provider.ClearOutline()
	default:
		return
	}
	w.move = nil
	w.resize = nil
	w.tabDrag = None
	w.phase = transform.PhaseInactive
	if w.m.dragging == w {
		w.m.dragging = nil
	}
	w.m.screen.HideGeometry()
	w.m.provider.UngrabPointer()
}

func (w *Window) startTabDrag(client SurfaceID, rootX, rootY int) {
	if w.tabDrag != None || w.phase != transform.PhaseInactive || !w.clients.Contains(client) {
		return
	}
	if err := w.m.provider.GrabPointer(CursorMove); err != nil {
		w.logger.Debug("tab drag grab failed", "error", err)
		return
	}
	w.tabDrag = client
	w.m.dragging = w
	w.tabMotion(rootX, rootY)
}

func (w *Window) tabMotion(rootX, rootY int) {
	w.m.provider.DrawOutline(geom.Rect{
		X:      rootX,
		Y:      rootY,
		Width:  w.geom.Width / max(1, w.clients.Len()),
		Height: max(1, w.titleHeight()),
	})
}

// dropTab attaches the dragged tab to the window under the pointer, or
// detaches it when dropped outside any window.
func (w *Window) dropTab(rootX, rootY int) {
	tab := w.tabDrag
	w.tabDrag = None
	w.m.dragging = nil
	w.m.provider.ClearOutline()
	w.m.provider.UngrabPointer()

	target, ok := w.m.Lookup(w.m.provider.SurfaceAt(rootX, rootY))
	switch {
	case !ok:
		if w.Detach(tab) {
			if nw, ok := w.m.owner[tab]; ok {
				nw.Move(rootX, rootY)
			}
		}
	case target != w:
		target.Attach(tab)
	}
}
