package window

// Attach moves the surface id, together with every other surface of the
// window currently holding it, into w. The emptied window is destroyed.
func (w *Window) Attach(id SurfaceID) bool {
	if _, ok := w.m.surfaces[id]; !ok {
		return false
	}
	if !w.m.provider.Alive(id) {
		return false
	}
	src := w.m.owner[id]
	if src == w {
		return false
	}

	moved := []SurfaceID{id}
	if src != nil {
		moved = src.clients.Members()
	}
	area := w.clientArea()
	for _, c := range moved {
		if err := w.m.provider.Reparent(c, w.frame, 0, w.titleHeight()); err != nil {
			w.logger.Debug("failed to reparent tab", "surface", c, "error", err)
		}
		_ = w.m.provider.MoveResize(c, area)
		if w.IsIconic() {
			w.m.provider.Hide(c)
		} else {
			w.m.provider.Show(c)
		}
		w.m.owner[c] = w
	}

	if src != nil {
		w.clients.Splice(src.clients)
		src.destroy()
	} else {
		w.clients.Add(id)
	}

	w.raiseActive()
	w.broadcast()
	w.sendConfigureNotify()
	w.m.notify(w, ChangeClients)
	return true
}

// Detach takes id out of the group into a new window of its own. It fails
// when id is not a member or is the only one.
func (w *Window) Detach(id SurfaceID) bool {
	if !w.clients.Contains(id) || w.clients.Len() <= 1 {
		return false
	}
	s := w.m.surfaces[id]
	if s == nil || !w.m.provider.Alive(id) {
		return false
	}

	w.clients.Remove(id)
	delete(w.m.owner, id)

	nw, err := w.m.frameSurface(s, w.workspace)
	if err != nil {
		w.logger.Warn("failed to detach tab", "surface", id, "error", err)
		w.clients.Add(id)
		w.m.owner[id] = w
		_ = w.m.provider.Reparent(id, w.frame, 0, w.titleHeight())
		return false
	}
	offset := w.m.opts.Theme.TitleHeight
	nw.Move(w.geom.X+offset, w.geom.Y+offset)
	nw.Deiconify(false, true)

	w.rederive()
	w.raiseActive()
	w.m.notify(w, ChangeClients)
	w.SetInputFocus()
	return true
}

// SetActiveClient shows id on top of the other tabs and optionally focuses
// it. It fails when id is not a member.
func (w *Window) SetActiveClient(id SurfaceID, focus bool) bool {
	if !w.clients.SetActive(id) {
		return false
	}
	w.raiseActive()
	w.rederive()
	w.m.notify(w, ChangeClients)
	if focus {
		return w.SetInputFocus()
	}
	return true
}

// NextClient activates the next tab with wraparound.
func (w *Window) NextClient() {
	_, ok := w.clients.Next()
	w.cycled(ok)
}

// PrevClient activates the previous tab with wraparound.
func (w *Window) PrevClient() {
	_, ok := w.clients.Prev()
	w.cycled(ok)
}

func (w *Window) cycled(advanced bool) {
	w.raiseActive()
	if !advanced {
		return
	}
	w.rederive()
	w.m.notify(w, ChangeClients)
	w.SetInputFocus()
}
