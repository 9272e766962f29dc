package window

import (
	"fmt"

	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/transform"
)

// Handle processes one event aimed at the window.
func (w *Window) Handle(ev Event) {
	switch e := ev.(type) {
	case MapRequest:
		w.mapRequest()
	case MapNotify:
		w.mapNotify(e)
	case UnmapNotify:
		w.release(e.Window, false)
	case DestroyNotify:
		w.destroyNotify(e)
	case PropertyNotify:
		w.propertyNotify(e)
	case ConfigureRequest:
		w.configureRequest(e)
	case ButtonPress:
		w.buttonPress(e)
	case ButtonRelease:
		w.buttonRelease(e)
	case Motion:
		w.motion(e)
	case Enter:
		w.enterNotify(e)
	case Leave:
		w.leaveNotify(e)
	case AttributeRequest:
		w.ApplyAttributeHints(e.Hints)
	default:
		w.logger.Warn("unhandled event", "type", fmt.Sprintf("%T", ev))
	}
}

func (w *Window) mapNotify(e MapNotify) {
	s := w.m.surfaces[e.Window]
	if s == nil || !w.Visible() {
		return
	}
	first := !w.mapped
	w.mapped = true
	if s.Transient() || (first && w.m.opts.FocusNew) {
		w.SetInputFocus()
	} else if !w.focused {
		w.SetFocusFlag(false)
	}
}

func (w *Window) destroyNotify(e DestroyNotify) {
	if !w.clients.Contains(e.Window) {
		return
	}
	if w.clients.Len() == 1 {
		w.m.provider.Hide(w.frame)
	}
	w.release(e.Window, false)
}

func (w *Window) propertyNotify(e PropertyNotify) {
	s := w.m.surfaces[e.Window]
	if s == nil {
		return
	}
	d := w.m.decoder
	switch e.Property {
	case PropTitle, PropIconTitle:
		s.reloadTitles(d)
		w.m.notify(w, ChangeTitle)
	case PropClass:
		s.Instance, s.Class = d.Class(s.ID)
	case PropWMHints:
		s.reloadWMHints(d)
	case PropNormalHints:
		s.reloadSizeHints(d)
		w.rederiveFor(s.ID)
	case PropTransientFor:
		s.reloadTransient(d)
		w.rederiveFor(s.ID)
	case PropProtocols:
		s.reloadProtocols(d)
		w.rederiveFor(s.ID)
	case PropMotifHints:
		s.reloadMotif(d)
		w.rederiveFor(s.ID)
	}
}

func (w *Window) rederiveFor(id SurfaceID) {
	if id == w.Client() {
		w.rederive()
	}
}

func (w *Window) configureRequest(e ConfigureRequest) {
	s := w.m.surfaces[e.Window]
	if s == nil {
		return
	}
	if e.Mask&ConfigBorder != 0 {
		s.OldBorder = e.Border
	}

	if e.Mask&(ConfigX|ConfigY|ConfigWidth|ConfigHeight) != 0 && e.Window == w.Client() {
		area := w.clientArea()
		r := geom.Rect{X: w.geom.X, Y: w.geom.Y, Width: area.Width, Height: area.Height}
		if e.Mask&ConfigX != 0 {
			r.X = e.X
		}
		if e.Mask&ConfigY != 0 {
			r.Y = e.Y
		}
		if e.Mask&ConfigWidth != 0 {
			r.Width = e.Width
		}
		if e.Mask&ConfigHeight != 0 {
			r.Height = e.Height
		}
		r.Height += w.decorHeight()
		w.MoveResize(r)
	} else {
		// clients expect a reply even when nothing changed
		w.sendConfigureNotify()
	}

	if e.Mask&ConfigStackMode != 0 {
		switch e.StackMode {
		case StackAbove, StackTopIf:
			w.Raise()
		case StackBelow, StackBottomIf:
			w.Lower()
		}
	}
}

func (w *Window) buttonPress(e ButtonPress) {
	w.pressX, w.pressY = e.RootX, e.RootY

	switch {
	case e.Button == 1 || (e.Button == 3 && e.Mods&ModAlt != 0):
		if !w.focused && !w.m.opts.sloppy() {
			w.SetInputFocus()
		}
		if e.Region == RegionClient {
			if w.m.opts.ClickRaises {
				w.Raise()
			}
			w.m.provider.ReplayPointer()
			return
		}
		if e.Button == 1 && e.Region == RegionLabel && e.Client != None {
			w.SetActiveClient(e.Client, true)
		}
		if e.Button == 1 && decorationRegion(e.Region) {
			w.Raise()
		}
	case e.Button == 2 && e.Region == RegionTitlebar:
		w.Lower()
	}
}

func (w *Window) buttonRelease(e ButtonRelease) {
	switch {
	case w.IsMoving():
		w.stopMoving()
	case w.IsResizing():
		w.stopResizing()
	case w.tabDrag != None:
		w.dropTab(e.RootX, e.RootY)
	}
}

func (w *Window) motion(e Motion) {
	switch {
	case w.IsMoving():
		w.moveMotion(e.RootX, e.RootY)
		return
	case w.IsResizing():
		w.resizeMotion(e.RootX, e.RootY)
		return
	case w.tabDrag != None:
		w.tabMotion(e.RootX, e.RootY)
		return
	}

	alt := e.Mods&ModAlt != 0
	inFrame := e.Region == RegionFrame || e.Region == RegionClient

	switch {
	case e.Buttons&Button2Held != 0 && e.Region == RegionLabel && e.Client != None:
		w.startTabDrag(e.Client, e.RootX, e.RootY)
	case e.Buttons&Button1Held != 0 && (e.Region == RegionGripLeft || e.Region == RegionGripRight):
		edge := transform.EdgeRight
		if e.Region == RegionGripLeft {
			edge = transform.EdgeLeft
		}
		if w.startResizing(edge, w.pressX, w.pressY) {
			w.resizeMotion(e.RootX, e.RootY)
		}
	case e.Buttons&Button1Held != 0 && (decorationRegion(e.Region) || (inFrame && alt)):
		if w.startMoving(w.pressX, w.pressY) {
			w.moveMotion(e.RootX, e.RootY)
		}
	case e.Buttons&Button3Held != 0 && inFrame && alt:
		edge := transform.EdgeRight
		if cx, _ := w.geom.Center(); w.pressX < cx {
			edge = transform.EdgeLeft
		}
		if w.startResizing(edge, w.pressX, w.pressY) {
			w.resizeMotion(e.RootX, e.RootY)
		}
	}
}

func decorationRegion(r Region) bool {
	return r == RegionTitlebar || r == RegionLabel || r == RegionHandle
}
