package window

import (
	"log/slog"

	"github.com/1broseidon/fluxcore/internal/attrib"
	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/group"
	"github.com/1broseidon/fluxcore/internal/hints"
	"github.com/1broseidon/fluxcore/internal/transform"
)

// opState guards the recursive operations (stacking, deiconify) against
// revisiting a window through a transient cycle.
type opState int

const (
	opIdle opState = iota
	opBusy
)

// Window is one managed, framed window holding one or more client
// surfaces.
type Window struct {
	m       *Manager
	logger  *slog.Logger
	frame   SurfaceID
	clients *group.Group[SurfaceID]

	geom   geom.Rect // frame without border, unshaded height
	border int

	state      attrib.State
	shaded     bool
	maximized  bool
	stuck      bool
	focused    bool
	wasFocused bool
	mapped     bool
	op         opState

	decor     hints.Decorations
	funcs     hints.Functions
	preset    *hints.Preset
	oldPreset hints.Preset

	layer     int
	workspace int
	premax    geom.Rect
	attrs     attrib.Attributes

	phase  transform.Phase
	move   *transform.Move
	resize *transform.Resize

	tabDrag        SurfaceID
	pressX, pressY int

	stopAutoRaise func()
}

// ID returns the frame surface id.
func (w *Window) ID() SurfaceID { return w.frame }

// Client returns the active client surface id.
func (w *Window) Client() SurfaceID {
	id, _ := w.clients.Active()
	return id
}

// Clients returns the client surfaces in tab order.
func (w *Window) Clients() []SurfaceID { return w.clients.Members() }

// Title returns the active client's title.
func (w *Window) Title() string {
	if s := w.active(); s != nil {
		return s.Title
	}
	return ""
}

// Class returns the active client's WM_CLASS class.
func (w *Window) Class() string {
	if s := w.active(); s != nil {
		return s.Class
	}
	return ""
}

// Geometry returns the frame rectangle without border, at full height even
// when shaded.
func (w *Window) Geometry() geom.Rect { return w.geom }

// Border returns the frame border width.
func (w *Window) Border() int { return w.border }

// Outer returns the rectangle the frame covers on screen, border included.
func (w *Window) Outer() geom.Rect { return w.visibleRect().Outer(w.border) }

// State returns the lifecycle state.
func (w *Window) State() attrib.State { return w.state }

// ProtocolState returns the state reported to clients. Shaded windows
// report Iconic.
func (w *Window) ProtocolState() attrib.State {
	if w.state == attrib.StateNormal && w.shaded {
		return attrib.StateIconic
	}
	return w.state
}

func (w *Window) IsIconic() bool    { return w.state == attrib.StateIconic }
func (w *Window) IsShaded() bool    { return w.shaded }
func (w *Window) IsMaximized() bool { return w.maximized }
func (w *Window) IsStuck() bool     { return w.stuck }
func (w *Window) IsFocused() bool   { return w.focused }
func (w *Window) IsMoving() bool    { return w.phase == transform.PhaseMoving }
func (w *Window) IsResizing() bool  { return w.phase == transform.PhaseResizing }

// Phase returns the interactive transform in progress.
func (w *Window) Phase() transform.Phase { return w.phase }

// Decorations returns the derived decoration set.
func (w *Window) Decorations() hints.Decorations { return w.decor }

// Functions returns the derived function set.
func (w *Window) Functions() hints.Functions { return w.funcs }

// Layer returns the stacking layer number.
func (w *Window) Layer() int { return w.layer }

// Workspace returns the workspace the window belongs to.
func (w *Window) Workspace() int { return w.workspace }

// Attributes returns the attribute record last broadcast.
func (w *Window) Attributes() attrib.Attributes { return w.attrs }

// Visible reports whether the frame is currently shown.
func (w *Window) Visible() bool {
	return w.state == attrib.StateNormal && w.onCurrentWorkspace()
}

func (w *Window) onCurrentWorkspace() bool {
	return w.stuck || w.workspace == w.m.screen.CurrentWorkspace()
}

func (w *Window) active() *Surface {
	id, ok := w.clients.Active()
	if !ok {
		return nil
	}
	return w.m.surfaces[id]
}

func (w *Window) enter() bool {
	if w.op == opBusy {
		return false
	}
	w.op = opBusy
	return true
}

func (w *Window) leave() { w.op = opIdle }

func (w *Window) titleHeight() int {
	if w.decor.Titlebar {
		return w.m.opts.Theme.TitleHeight
	}
	return 0
}

func (w *Window) handleHeight() int {
	if w.decor.Handle {
		return w.m.opts.Theme.HandleHeight
	}
	return 0
}

func (w *Window) decorHeight() int { return w.titleHeight() + w.handleHeight() }

func (w *Window) borderWidth() int {
	if w.decor.Border {
		return w.m.opts.Theme.BorderWidth
	}
	return 0
}

// clientArea returns where clients sit inside the frame.
func (w *Window) clientArea() geom.Rect {
	return geom.Rect{
		X:      0,
		Y:      w.titleHeight(),
		Width:  w.geom.Width,
		Height: max(1, w.geom.Height-w.decorHeight()),
	}
}

func (w *Window) visibleRect() geom.Rect {
	r := w.geom
	if w.shaded {
		r.Height = max(1, w.titleHeight())
	}
	return r
}

// MoveResize sets the frame rectangle. Clients are resized with it and told
// their new position unless a move is in progress.
func (w *Window) MoveResize(r geom.Rect) {
	w.moveResize(r, false)
}

func (w *Window) moveResize(r geom.Rect, relayout bool) {
	resized := relayout || r.Width != w.geom.Width || r.Height != w.geom.Height
	if resized {
		// keep at least part of the frame reachable
		if r.X+r.Width < 0 {
			r.X = 0
		}
		if r.Y+r.Height < 0 {
			r.Y = 0
		}
	}
	r.Width = max(1, r.Width)
	r.Height = max(1, r.Height)
	w.geom = r

	if err := w.m.provider.MoveResize(w.frame, w.visibleRect()); err != nil {
		w.logger.Debug("frame move failed", "frame", w.frame, "error", err)
	}
	if resized {
		area := w.clientArea()
		for _, c := range w.clients.Members() {
			_ = w.m.provider.MoveResize(c, area)
		}
	}
	if !w.IsMoving() {
		w.sendConfigureNotify()
	}
}

// Move moves the frame keeping its size.
func (w *Window) Move(x, y int) {
	w.MoveResize(geom.Rect{X: x, Y: y, Width: w.geom.Width, Height: w.geom.Height})
}

// ResizeClient sets the frame size so the client area is width x height.
func (w *Window) ResizeClient(width, height int) {
	w.MoveResize(geom.Rect{X: w.geom.X, Y: w.geom.Y, Width: width, Height: height + w.decorHeight()})
}

// sendConfigureNotify tells every client where it is on the root.
func (w *Window) sendConfigureNotify() {
	area := w.clientArea()
	abs := geom.Rect{
		X:      w.geom.X + w.border + area.X,
		Y:      w.geom.Y + w.border + area.Y,
		Width:  area.Width,
		Height: area.Height,
	}
	for _, c := range w.clients.Members() {
		s := w.m.surfaces[c]
		if s == nil {
			continue
		}
		s.Geometry = abs
		w.m.provider.SendConfigureNotify(c, abs, s.OldBorder)
	}
}

// rederive recomputes decorations and functions from the active client's
// hints and lays the frame out again when decoration sizes changed.
func (w *Window) rederive() {
	s := w.active()
	if s == nil {
		return
	}
	oldTitle, oldHandle, oldBorder := w.titleHeight(), w.handleHeight(), w.border

	res := hints.Derive(hints.Input{
		Size:      s.Size,
		Motif:     s.Motif,
		Preset:    w.preset,
		Transient: s.Transient(),
		CanClose:  s.Protocols.DeleteWindow,
	})
	w.decor = res.Decorations
	w.funcs = res.Functions
	w.border = w.borderWidth()

	if w.shaded && !w.decor.Titlebar {
		w.shaded = false
		w.attrs.Clear(attrib.FlagShaded)
	}

	if w.frame == None {
		return
	}
	if oldTitle != w.titleHeight() || oldHandle != w.handleHeight() || oldBorder != w.border {
		w.relayout(oldTitle, oldHandle, oldBorder)
	}
	w.m.notify(w, ChangeDecorations)
}

// relayout keeps the client area size when decoration sizes change.
func (w *Window) relayout(oldTitle, oldHandle, oldBorder int) {
	clientH := w.geom.Height - oldTitle - oldHandle
	r := w.geom
	r.Height = max(1, clientH) + w.decorHeight()

	if oldBorder != w.border {
		_ = w.m.provider.SetBorderWidth(w.frame, w.border)
	}
	for _, c := range w.clients.Members() {
		_ = w.m.provider.Reparent(c, w.frame, 0, w.titleHeight())
	}
	w.moveResize(r, true)
}

// raiseActive shows the active client on top of the other tabs.
func (w *Window) raiseActive() {
	if id, ok := w.clients.Active(); ok {
		w.m.provider.RaiseInFrame(id)
	}
}
