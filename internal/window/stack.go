package window

// Raise brings the window and its transients to the top of their layers.
// An iconic window is deiconified first.
func (w *Window) Raise() {
	if w.IsIconic() {
		w.Deiconify(true, false)
	}
	w.m.stack.Raise(w)
}

// Lower sends the window and its transients to the bottom of their layers.
func (w *Window) Lower() {
	if w.IsIconic() {
		w.Deiconify(true, false)
	}
	w.m.stack.Lower(w)
}

// TempRaise shows the window on top without recording the change.
func (w *Window) TempRaise() {
	if w.IsIconic() {
		w.Deiconify(true, false)
	}
	w.m.stack.TempRaise(w)
}

// RaiseLayer moves the window's transient tree one layer up.
func (w *Window) RaiseLayer() { w.m.stack.RaiseLayer(w) }

// LowerLayer moves the window's transient tree one layer down.
func (w *Window) LowerLayer() { w.m.stack.LowerLayer(w) }

// MoveToLayer moves the window's transient tree to layer n, clamped below
// the menu layer, and returns the layer used.
func (w *Window) MoveToLayer(n int) int { return w.m.stack.MoveToLayer(w, n) }
