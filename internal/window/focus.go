package window

import "github.com/1broseidon/fluxcore/internal/hints"

// SetInputFocus gives the input focus to the active client. Focus goes to
// a modal transient instead when the client has one. It returns false when
// the client is gone or does not take input from the window manager.
func (w *Window) SetInputFocus() bool {
	w.correctOffscreen()

	s := w.active()
	if s == nil {
		return false
	}
	if target := w.m.modalTarget(s.ID); target != s.ID {
		tw := w.m.owner[target]
		if tw == nil {
			return false
		}
		tw.SetActiveClient(target, false)
		return tw.focusActive()
	}
	return w.focusActive()
}

func (w *Window) focusActive() bool {
	s := w.active()
	if s == nil {
		return false
	}
	if !w.m.provider.Alive(s.ID) {
		w.logger.Debug("focus target gone", "surface", s.ID)
		return false
	}

	if !s.Focus.AcceptsInput() {
		if s.Focus == hints.FocusGloballyActive {
			if err := w.m.provider.SendTakeFocus(s.ID); err != nil {
				w.logger.Debug("take focus failed", "error", err)
			}
		}
		return false
	}

	if err := w.m.provider.SetInputFocus(s.ID); err != nil {
		w.logger.Debug("set input focus failed", "error", err)
		return false
	}
	w.m.setFocused(w)

	if s.Protocols.TakeFocus {
		if err := w.m.provider.SendTakeFocus(s.ID); err != nil {
			w.logger.Debug("take focus failed", "error", err)
		}
	}
	if w.m.opts.sloppy() && w.m.opts.AutoRaise {
		w.startAutoRaise()
	}
	return true
}

// modalTarget follows modal transients from id and returns the surface
// that should receive focus. The first modal transient in adoption order
// wins at each step.
func (m *Manager) modalTarget(id SurfaceID) SurfaceID {
	seen := map[SurfaceID]bool{id: true}
	cur := id
	for {
		next := None
		for _, t := range m.transientsOf(cur) {
			if s := m.surfaces[t]; s != nil && s.Modal && !seen[t] {
				next = t
				break
			}
		}
		if next == None {
			return cur
		}
		seen[next] = true
		cur = next
	}
}

// SetFocusFlag records whether the window has the input focus. A pending
// auto-raise is cancelled either way.
func (w *Window) SetFocusFlag(focused bool) {
	w.focused = focused
	w.cancelAutoRaise()
	w.m.notify(w, ChangeFocus)
}

func (w *Window) startAutoRaise() {
	w.cancelAutoRaise()
	if w.m.sched == nil {
		return
	}
	w.stopAutoRaise = w.m.sched.AfterFunc(w.m.opts.AutoRaiseDelay, func() {
		w.stopAutoRaise = nil
		if _, ok := w.m.frames[w.frame]; !ok {
			return
		}
		if w.m.focused == w {
			w.Raise()
		}
	})
}

func (w *Window) cancelAutoRaise() {
	if w.stopAutoRaise != nil {
		w.stopAutoRaise()
		w.stopAutoRaise = nil
	}
}

// correctOffscreen pulls a frame that lies entirely left or right of the
// screen back to the nearest edge.
func (w *Window) correctOffscreen() {
	b := w.m.screen.Bounds()
	r := w.visibleRect()
	bw := w.border

	var x int
	switch {
	case r.Right() < b.X:
		x = b.X + bw
	case r.X > b.Right():
		x = b.Right() - r.Width
	default:
		return
	}

	y := r.Y + bw
	switch {
	case r.Y+w.titleHeight() < b.Y:
		y = b.Y + bw
	case r.Y > b.Bottom():
		y = b.Bottom() - r.Height
	}
	w.Move(x, y)
}

func (w *Window) enterNotify(e Enter) {
	if e.Grab || !w.Visible() {
		return
	}
	if !w.m.opts.sloppy() || w.focused {
		return
	}
	if w.SetInputFocus() {
		w.m.provider.InstallColormap(w.Client(), true)
	}
}

func (w *Window) leaveNotify(Leave) {
	w.m.provider.InstallColormap(w.Client(), false)
}
