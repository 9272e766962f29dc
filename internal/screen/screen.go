// Package screen keeps the workspaces of one root screen: which managed
// windows belong to which workspace, the usable area left by docks and
// panels, placement of new windows and the move/resize feedback text.
package screen

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/window"
)

// Observer is told when the workspace layout or the current workspace
// changes.
type Observer interface {
	WorkspacesChanged(s *Screen)
}

// Options configure a screen.
type Options struct {
	Workspaces  int
	Names       []string
	Placement   Placement
	CascadeStep int
}

// DefaultOptions returns four workspaces with row smart placement.
func DefaultOptions() Options {
	return Options{
		Workspaces:  4,
		Placement:   PlacementRowSmart,
		CascadeStep: 20,
	}
}

type workspace struct {
	name      string
	windows   []*window.Window
	lastFocus *window.Window
}

// Screen is the in-memory workspace container. It implements
// window.Screen and window.Listener and must only be used from the control
// thread.
type Screen struct {
	logger     *slog.Logger
	opts       Options
	bounds     geom.Rect
	struts     geom.Struts
	reserved   []geom.Rect
	workspaces []*workspace
	current    int

	cascadeX, cascadeY int
	feedback           string
	observers          []Observer
}

// New creates a screen covering bounds.
func New(bounds geom.Rect, opts Options, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workspaces < 1 {
		opts.Workspaces = 1
	}
	if opts.CascadeStep < 1 {
		opts.CascadeStep = DefaultOptions().CascadeStep
	}
	s := &Screen{
		logger: logger,
		opts:   opts,
		bounds: bounds,
	}
	for i := 0; i < opts.Workspaces; i++ {
		s.workspaces = append(s.workspaces, &workspace{name: workspaceName(opts.Names, i)})
	}
	return s
}

func workspaceName(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return fmt.Sprintf("Workspace %d", i+1)
}

// AddObserver registers o for workspace notifications.
func (s *Screen) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *Screen) notify() {
	for _, o := range s.observers {
		o.WorkspacesChanged(s)
	}
}

// Bounds returns the root rectangle.
func (s *Screen) Bounds() geom.Rect { return s.bounds }

// SetBounds updates the root rectangle after a screen change.
func (s *Screen) SetBounds(r geom.Rect) {
	s.bounds = r
	s.logger.Info("screen bounds changed", "bounds", r.String())
}

// SetStruts records the space reserved by docks and panels.
func (s *Screen) SetStruts(st geom.Struts) {
	if st == s.struts {
		return
	}
	s.struts = st
	s.logger.Debug("struts updated", "left", st.Left, "right", st.Right, "top", st.Top, "bottom", st.Bottom)
}

// SetReserved records the outer rectangles of docks that moving windows
// snap to.
func (s *Screen) SetReserved(rects []geom.Rect) {
	s.reserved = slices.Clone(rects)
}

// MaxArea returns the area maximized windows fill.
func (s *Screen) MaxArea() geom.Rect { return s.struts.Apply(s.bounds) }

// CurrentWorkspace returns the workspace shown.
func (s *Screen) CurrentWorkspace() int { return s.current }

// WorkspaceCount returns the number of workspaces.
func (s *Screen) WorkspaceCount() int { return len(s.workspaces) }

// WorkspaceNames returns the workspace names in order.
func (s *Screen) WorkspaceNames() []string {
	names := make([]string, len(s.workspaces))
	for i, ws := range s.workspaces {
		names[i] = ws.name
	}
	return names
}

// Windows returns the windows on workspace ws, oldest first.
func (s *Screen) Windows(ws int) []*window.Window {
	if ws < 0 || ws >= len(s.workspaces) {
		return nil
	}
	return slices.Clone(s.workspaces[ws].windows)
}

// SwitchWorkspace shows workspace id. Windows of the old workspace are
// withdrawn unless they are stuck, iconic or being moved; a window being
// moved joins the new workspace when the move ends.
func (s *Screen) SwitchWorkspace(id int) {
	if id < 0 || id >= len(s.workspaces) || id == s.current {
		return
	}
	old := s.current
	for _, w := range s.workspaces[old].windows {
		if w.IsStuck() || w.IsMoving() || w.IsIconic() {
			continue
		}
		w.Withdraw()
	}

	s.current = id
	next := s.workspaces[id]
	for _, w := range next.windows {
		if w.IsIconic() {
			continue
		}
		w.Deiconify(false, false)
	}
	if f := next.lastFocus; f != nil && f.Visible() {
		f.SetInputFocus()
	}

	s.logger.Debug("workspace switched", "from", old, "to", id)
	s.notify()
}

// NextWorkspace switches to the following workspace with wraparound.
func (s *Screen) NextWorkspace() {
	s.SwitchWorkspace((s.current + 1) % len(s.workspaces))
}

// PrevWorkspace switches to the previous workspace with wraparound.
func (s *Screen) PrevWorkspace() {
	n := len(s.workspaces)
	s.SwitchWorkspace((s.current + n - 1) % n)
}

// SendToWorkspace moves w to workspace ws and hides it when ws is not
// shown.
func (s *Screen) SendToWorkspace(w *window.Window, ws int) {
	if ws < 0 || ws >= len(s.workspaces) {
		return
	}
	s.Reassociate(w, ws, true)
	if ws != s.current && !w.IsStuck() && !w.IsIconic() {
		w.Withdraw()
	}
}

// AddWindow puts w on workspace ws, out of range meaning the current one,
// and places it when asked.
func (s *Screen) AddWindow(w *window.Window, ws int, place bool) {
	if ws < 0 || ws >= len(s.workspaces) {
		ws = s.current
	}
	s.detach(w)
	s.workspaces[ws].windows = append(s.workspaces[ws].windows, w)
	w.SetWorkspace(ws)
	if place {
		s.place(w, ws)
	}
}

// RemoveWindow forgets w.
func (s *Screen) RemoveWindow(w *window.Window) {
	s.detach(w)
}

func (s *Screen) detach(w *window.Window) {
	for _, ws := range s.workspaces {
		if i := slices.Index(ws.windows, w); i >= 0 {
			ws.windows = slices.Delete(ws.windows, i, i+1)
		}
		if ws.lastFocus == w {
			ws.lastFocus = nil
		}
	}
}

// Reassociate moves w to workspace ws. Out of range means the current
// workspace. Stuck windows stay where they are unless ignoreSticky is set.
func (s *Screen) Reassociate(w *window.Window, ws int, ignoreSticky bool) {
	if ws < 0 || ws >= len(s.workspaces) {
		ws = s.current
	}
	if !w.IsIconic() && w.Workspace() == ws && slices.Contains(s.workspaces[ws].windows, w) {
		return
	}
	if !w.IsIconic() && w.IsStuck() && !ignoreSticky {
		return
	}
	s.detach(w)
	s.workspaces[ws].windows = append(s.workspaces[ws].windows, w)
	w.SetWorkspace(ws)
}

// SnapTargets returns the outer rectangles of the other windows shown on
// the current workspace plus the reserved dock areas.
func (s *Screen) SnapTargets(self *window.Window) []geom.Rect {
	targets := slices.Clone(s.reserved)
	for _, w := range s.visible() {
		if w != self {
			targets = append(targets, w.Outer())
		}
	}
	return targets
}

// visible returns every window shown on the current workspace, stuck
// windows from other workspaces included.
func (s *Screen) visible() []*window.Window {
	var out []*window.Window
	for _, ws := range s.workspaces {
		for _, w := range ws.windows {
			if w.Visible() {
				out = append(out, w)
			}
		}
	}
	return out
}

// ShowPosition shows the position of a window being moved.
func (s *Screen) ShowPosition(x, y int) {
	s.setFeedback(fmt.Sprintf("X: %4d x Y: %4d", x, y))
}

// ShowGeometry shows the size of a window being resized.
func (s *Screen) ShowGeometry(unitsW, unitsH int) {
	s.setFeedback(fmt.Sprintf("W: %4d x H: %4d", unitsW, unitsH))
}

// HideGeometry clears the feedback text.
func (s *Screen) HideGeometry() {
	s.setFeedback("")
}

// Feedback returns the feedback text currently shown.
func (s *Screen) Feedback() string { return s.feedback }

func (s *Screen) setFeedback(text string) {
	if text == s.feedback {
		return
	}
	s.feedback = text
	s.logger.Debug("feedback", "text", text)
}

// WindowChanged remembers the last focused window of each workspace and
// drops windows that went away.
func (s *Screen) WindowChanged(w *window.Window, c window.Change) {
	switch c {
	case window.ChangeFocus:
		if w.IsFocused() {
			if ws := w.Workspace(); ws >= 0 && ws < len(s.workspaces) {
				s.workspaces[ws].lastFocus = w
			}
		}
	case window.ChangeRemoved:
		s.detach(w)
	}
}
