package window

import (
	"github.com/1broseidon/fluxcore/internal/attrib"
	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/hints"
)

// mapRequest decides the first visible state of a newly mapped client.
// Later map requests from a managed client just show it.
func (w *Window) mapRequest() {
	s := w.active()
	if s == nil {
		return
	}
	target := attrib.StateNormal
	if s.firstMap {
		s.firstMap = false
		switch {
		case s.hasSaved && w.m.startup:
			target = s.savedState
		case s.WM.HasState && (!s.hasSaved || (s.savedState != attrib.StateNormal && s.savedState != attrib.StateIconic)):
			target = s.WM.InitialState
		}
	}

	switch target {
	case attrib.StateIconic:
		w.iconify()
	case attrib.StateWithdrawn:
		w.Withdraw()
	default:
		w.Deiconify(false, true)
	}
}

// Iconify hides the window and every window in its transient group.
// Windows without the iconify function stay put.
func (w *Window) Iconify() {
	if !w.funcs.Iconify {
		return
	}
	w.iconify()
}

// iconify is Iconify without the function check, for client requested
// initial state and transient propagation.
func (w *Window) iconify() {
	if w.IsIconic() {
		return
	}
	w.CancelTransform()
	w.wasFocused = w.focused
	w.setState(attrib.StateIconic)

	w.m.provider.Hide(w.frame)
	for _, c := range w.clients.Members() {
		w.m.provider.Hide(c)

		if s := w.m.surfaces[c]; s != nil {
			if parent := w.m.parentWindow(s); parent != nil && parent != w && !parent.IsIconic() {
				parent.iconify()
			}
		}
		for _, t := range w.m.transientsOf(c) {
			if tw := w.m.owner[t]; tw != nil && tw != w && !tw.IsIconic() {
				tw.iconify()
			}
		}
	}
	if w.m.focused == w {
		w.m.setFocused(nil)
	}
}

// Deiconify shows the window again. With reassoc it is moved to the
// current workspace first; otherwise a window that is not iconic and not
// on the current workspace stays hidden. Transients follow.
func (w *Window) Deiconify(reassoc, raise bool) {
	if !w.enter() {
		return
	}
	wasIconic := w.IsIconic()

	if reassoc {
		w.m.screen.Reassociate(w, w.m.screen.CurrentWorkspace(), true)
	} else if !wasIconic && (w.IsMoving() || !w.onCurrentWorkspace()) {
		w.leave()
		return
	}

	w.setState(attrib.StateNormal)

	if w.onCurrentWorkspace() {
		for _, c := range w.clients.Members() {
			w.m.provider.Show(c)
		}
		w.raiseActive()
		w.m.provider.Show(w.frame)

		if wasIconic && (w.wasFocused || w.m.opts.FocusNew) {
			w.SetInputFocus()
		}
	}

	if reassoc {
		for _, tw := range w.m.transientWindows(w) {
			tw.Deiconify(true, false)
		}
	}
	w.leave()

	if raise {
		w.Raise()
	}
}

// Withdraw hides the frame without iconifying. A resize in progress is
// abandoned.
func (w *Window) Withdraw() {
	if w.IsResizing() {
		w.CancelTransform()
	}
	w.setState(attrib.StateWithdrawn)
	w.m.provider.Hide(w.frame)
	for _, c := range w.clients.Members() {
		w.m.provider.Hide(c)
	}
}

// Shade toggles the window between full height and titlebar only.
func (w *Window) Shade() {
	if !w.decor.Titlebar {
		return
	}
	w.shaded = !w.shaded
	if w.shaded {
		w.attrs.Set(attrib.FlagShaded, true)
	} else {
		w.attrs.Clear(attrib.FlagShaded)
	}
	_ = w.m.provider.MoveResize(w.frame, w.visibleRect())
	w.setState(w.state)
}

// Maximize toggles between the screen's maximized area and the saved
// geometry. A window without the maximize function can only be restored.
func (w *Window) Maximize() {
	if !w.maximized && !w.funcs.Maximize {
		return
	}
	if w.IsIconic() {
		w.Deiconify(true, true)
	}
	w.toggleMaximize()
}

func (w *Window) toggleMaximize() {
	if !w.maximized {
		w.premax = w.geom
		area := w.m.screen.MaxArea()
		w.attrs.Set(attrib.FlagMaxHoriz, true)
		w.attrs.Set(attrib.FlagMaxVert, true)
		w.setPremax(w.premax)
		w.maximized = true
		w.MoveResize(geom.Rect{
			X:      area.X,
			Y:      area.Y,
			Width:  area.Width - 2*w.border,
			Height: area.Height - 2*w.border,
		})
	} else {
		w.attrs.Clear(attrib.FlagMaxHoriz)
		w.attrs.Clear(attrib.FlagMaxVert)
		w.maximized = false
		w.MoveResize(w.premax)
	}
	w.saveAttributes()
	w.m.notify(w, ChangeState)
}

// MaximizeHorizontal stretches the window across the maximized area
// without touching the maximized flag.
func (w *Window) MaximizeHorizontal() {
	if !w.funcs.Maximize {
		return
	}
	area := w.m.screen.MaxArea()
	w.MoveResize(geom.Rect{X: area.X, Y: w.geom.Y, Width: area.Width - 2*w.border, Height: w.geom.Height})
}

// MaximizeVertical stretches the window down the maximized area without
// touching the maximized flag.
func (w *Window) MaximizeVertical() {
	if !w.funcs.Maximize {
		return
	}
	area := w.m.screen.MaxArea()
	w.MoveResize(geom.Rect{X: w.geom.X, Y: area.Y, Width: w.geom.Width, Height: area.Height - 2*w.border})
}

func (w *Window) setPremax(r geom.Rect) {
	w.attrs.PremaxX = int32(r.X)
	w.attrs.PremaxY = int32(r.Y)
	w.attrs.PremaxW = uint32(max(0, r.Width))
	w.attrs.PremaxH = uint32(max(0, r.Height))
}

// Stick toggles whether the window shows on every workspace.
func (w *Window) Stick() {
	w.stuck = !w.stuck
	if w.stuck {
		w.attrs.Set(attrib.FlagOmnipresent, true)
	} else {
		w.attrs.Clear(attrib.FlagOmnipresent)
	}
	w.setState(w.state)
}

// SetWorkspace records the workspace the window belongs to. Moving it
// between workspace lists is the Screen's job.
func (w *Window) SetWorkspace(n int) {
	w.workspace = n
	w.attrs.Flags |= attrib.FlagWorkspace
	w.attrs.Workspace = uint32(n)
	w.saveAttributes()
	w.m.notify(w, ChangeWorkspace)
}

func (w *Window) setLayerNum(n int) {
	w.layer = n
	w.attrs.Flags |= attrib.FlagStack
	w.attrs.Stack = uint32(n)
	w.saveAttributes()
	w.m.notify(w, ChangeLayer)
}

// Close asks the active client to close through WM_DELETE_WINDOW. Clients
// without the close function are left alone; Kill in the provider is the
// forceful way out. A move or resize in progress is abandoned.
func (w *Window) Close() {
	s := w.active()
	if s == nil || !w.funcs.Close {
		return
	}
	w.CancelTransform()
	if err := w.m.provider.SendDelete(s.ID); err != nil {
		w.logger.Debug("close failed", "error", err)
	}
}

// SetDecoration selects a decoration preset and re-derives decorations.
func (w *Window) SetDecoration(p hints.Preset) {
	w.preset = &p
	w.attrs.Flags |= attrib.FlagDecoration
	w.rederive()
	w.saveAttributes()
}

// ToggleDecoration switches between no decorations and the previous
// preset. Shaded windows keep their decorations.
func (w *Window) ToggleDecoration() {
	if w.shaded {
		return
	}
	if w.decor.Enabled {
		w.oldPreset = hints.PresetNormal
		if w.preset != nil && *w.preset != hints.PresetNone {
			w.oldPreset = *w.preset
		}
		w.SetDecoration(hints.PresetNone)
		return
	}
	w.SetDecoration(w.oldPreset)
}

// ApplyAttributeHints carries out a client request to change shade,
// maximize, stick, workspace, layer or decoration.
func (w *Window) ApplyAttributeHints(h attrib.Hints) {
	if h.Flags&attrib.FlagShaded != 0 && (h.Attrib&attrib.FlagShaded != 0) != w.shaded {
		w.Shade()
	}

	if h.Flags&(attrib.FlagMaxHoriz|attrib.FlagMaxVert) != 0 {
		horiz := h.Attrib&attrib.FlagMaxHoriz != 0
		vert := h.Attrib&attrib.FlagMaxVert != 0
		switch {
		case horiz && vert:
			if !w.maximized {
				w.Maximize()
			}
		case horiz:
			w.MaximizeHorizontal()
		case vert:
			w.MaximizeVertical()
		default:
			if w.maximized {
				w.Maximize()
			}
		}
	}

	if h.Flags&attrib.FlagOmnipresent != 0 && (h.Attrib&attrib.FlagOmnipresent != 0) != w.stuck {
		w.Stick()
	}

	if h.Flags&attrib.FlagWorkspace != 0 {
		ws := int(h.Workspace)
		if ws >= 0 && ws < w.m.screen.WorkspaceCount() {
			w.m.screen.Reassociate(w, ws, true)
			if ws != w.m.screen.CurrentWorkspace() && !w.stuck {
				w.Withdraw()
			} else {
				w.Deiconify(false, true)
			}
		}
	}

	if h.Flags&attrib.FlagStack != 0 {
		w.MoveToLayer(int(h.Stack))
	}

	if h.Flags&attrib.FlagDecoration != 0 {
		w.SetDecoration(hints.Preset(h.Decoration))
	}
}

// applyInitialHints seeds state from attribute hints present at adoption.
func (w *Window) applyInitialHints(h attrib.Hints) {
	if h.Flags&attrib.FlagShaded != 0 {
		w.shaded = h.Attrib&attrib.FlagShaded != 0
	}
	if h.Flags&attrib.FlagMaxHoriz != 0 && h.Flags&attrib.FlagMaxVert != 0 {
		w.maximized = h.Attrib&(attrib.FlagMaxHoriz|attrib.FlagMaxVert) == attrib.FlagMaxHoriz|attrib.FlagMaxVert
	}
	if h.Flags&attrib.FlagOmnipresent != 0 {
		w.stuck = h.Attrib&attrib.FlagOmnipresent != 0
	}
	if h.Flags&attrib.FlagWorkspace != 0 {
		w.workspace = int(h.Workspace)
	}
	if h.Flags&attrib.FlagStack != 0 {
		w.layer = int(h.Stack)
	}
	if h.Flags&attrib.FlagDecoration != 0 {
		p := hints.Preset(h.Decoration)
		w.preset = &p
	}
}

// restoreAttributes applies the record a previous session left on the
// active client.
func (w *Window) restoreAttributes() {
	id := w.Client()
	state, ok := w.m.store.ReadState(id)
	if !ok {
		state = attrib.StateNormal
	}

	a, ok := w.m.store.ReadAttributes(id)
	if !ok {
		w.state = state
		return
	}
	w.attrs = a

	if a.Has(attrib.FlagShaded) {
		w.shaded = true
		// shaded windows report iconic
		if state == attrib.StateIconic {
			state = attrib.StateNormal
		}
	}

	cur := w.m.screen.CurrentWorkspace()
	if a.Flags&attrib.FlagWorkspace != 0 && int(a.Workspace) != cur && int(a.Workspace) < w.m.screen.WorkspaceCount() {
		w.workspace = int(a.Workspace)
		if state == attrib.StateNormal {
			state = attrib.StateWithdrawn
		}
	} else if state == attrib.StateWithdrawn {
		state = attrib.StateNormal
	}

	if a.Has(attrib.FlagOmnipresent) {
		w.stuck = true
		state = attrib.StateNormal
	}

	if a.Flags&attrib.FlagStack != 0 {
		w.layer = int(a.Stack)
	}

	if a.Has(attrib.FlagMaxHoriz) && a.Has(attrib.FlagMaxVert) {
		w.maximized = true
		w.premax = geom.Rect{
			X:      int(a.PremaxX),
			Y:      int(a.PremaxY),
			Width:  int(a.PremaxW),
			Height: int(a.PremaxH),
		}
	}

	w.state = state
}

// setState changes the lifecycle state and broadcasts it.
func (w *Window) setState(s attrib.State) {
	w.state = s
	w.broadcast()
	w.m.notify(w, ChangeState)
}

// broadcast writes WM_STATE and the attribute record to every client.
func (w *Window) broadcast() {
	ps := w.ProtocolState()
	for _, c := range w.clients.Members() {
		if err := w.m.store.WriteState(c, ps); err != nil {
			w.logger.Debug("failed to write state", "surface", c, "error", err)
		}
		if err := w.m.store.WriteAttributes(c, w.attrs); err != nil {
			w.logger.Debug("failed to write attributes", "surface", c, "error", err)
		}
	}
}

func (w *Window) saveAttributes() {
	for _, c := range w.clients.Members() {
		if err := w.m.store.WriteAttributes(c, w.attrs); err != nil {
			w.logger.Debug("failed to write attributes", "surface", c, "error", err)
		}
	}
}

// release gives a client back to the root window. The window is destroyed
// when its last client is released.
func (w *Window) release(id SurfaceID, remap bool) {
	if !w.clients.Contains(id) {
		return
	}
	if id == w.Client() {
		w.CancelTransform()
	}

	s := w.m.surfaces[id]
	if s != nil && w.m.provider.Alive(id) {
		w.m.provider.SetSaveSet(id, false)
		w.m.provider.Hide(id)
		_ = w.m.provider.SetBorderWidth(id, s.OldBorder)
		x, y := hints.RestoreGravity(s.Size.Gravity, w.geom, s.Geometry.Width, s.Geometry.Height)
		if err := w.m.provider.Reparent(id, None, x, y); err != nil {
			w.logger.Debug("failed to reparent to root", "surface", id, "error", err)
		}
		if remap {
			w.m.provider.Show(id)
		} else {
			_ = w.m.store.WriteState(id, attrib.StateWithdrawn)
		}
	}

	w.clients.Remove(id)
	w.m.forget(id)

	if w.clients.Len() == 0 {
		w.destroy()
		return
	}
	w.rederive()
	w.raiseActive()
	w.m.notify(w, ChangeClients)
}

// destroy tears down the frame. Clients must have been released or moved
// to another window.
func (w *Window) destroy() {
	if w.stopAutoRaise != nil {
		w.stopAutoRaise()
		w.stopAutoRaise = nil
	}
	w.CancelTransform()
	w.m.provider.Hide(w.frame)
	w.m.screen.RemoveWindow(w)
	w.m.stack.Remove(w)
	w.m.provider.DestroyFrame(w.frame)
	w.m.unregister(w)
	w.m.logger.Debug("window destroyed", "frame", w.frame)
	w.m.notify(w, ChangeRemoved)
}

// Unmanage releases every client, for example on shutdown.
func (w *Window) Unmanage(remap bool) {
	for _, c := range w.clients.Members() {
		w.release(c, remap)
	}
}
