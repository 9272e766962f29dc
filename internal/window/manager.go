// Package window holds the managed window model: the Manager registry that
// maps surface ids to windows, each Window's lifecycle state machine, tab
// groups, focus handling and the interactive move and resize driven by
// decoded protocol events.
package window

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/1broseidon/fluxcore/internal/attrib"
	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/group"
	"github.com/1broseidon/fluxcore/internal/hints"
	"github.com/1broseidon/fluxcore/internal/stacking"
	"github.com/1broseidon/fluxcore/internal/transient"
)

// Deps are the collaborators a Manager drives.
type Deps struct {
	Provider  SurfaceProvider
	Decoder   HintDecoder
	Store     StateStore
	Screen    Screen
	Scheduler Scheduler
	Logger    *slog.Logger
}

// Manager owns every managed window and the lookup table from surface ids
// to windows. All methods must be called from the control thread.
type Manager struct {
	opts     Options
	provider SurfaceProvider
	decoder  HintDecoder
	store    StateStore
	screen   Screen
	sched    Scheduler
	logger   *slog.Logger
	stack    *stacking.Coordinator[*Window]

	surfaces map[SurfaceID]*Surface
	owner    map[SurfaceID]*Window
	frames   map[SurfaceID]*Window
	adoption []SurfaceID
	windows  []*Window

	focused   *Window
	dragging  *Window
	listeners []Listener
	startup   bool
}

// NewManager creates an empty manager.
func NewManager(deps Deps, opts Options) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		opts:     opts,
		provider: deps.Provider,
		decoder:  deps.Decoder,
		store:    deps.Store,
		screen:   deps.Screen,
		sched:    deps.Scheduler,
		logger:   logger,
		surfaces: make(map[SurfaceID]*Surface),
		owner:    make(map[SurfaceID]*Window),
		frames:   make(map[SurfaceID]*Window),
	}
	layers := stacking.NewLayers(opts.NumLayers, m.restack)
	m.stack = stacking.NewCoordinator[*Window](stackTree{m}, layers, opts.MenuLayer, logger.With("component", "stacking"))
	m.stack.SetObserver(stackTree{m})
	return m
}

// Options returns the current preferences.
func (m *Manager) Options() Options { return m.opts }

// SetOptions replaces the preferences. Layer layout changes only apply to
// windows adopted afterwards.
func (m *Manager) SetOptions(opts Options) {
	opts.MenuLayer = m.opts.MenuLayer
	opts.NumLayers = m.opts.NumLayers
	m.opts = opts
}

// AddListener registers l for window change notifications.
func (m *Manager) AddListener(l Listener) {
	m.listeners = append(m.listeners, l)
}

// Lookup resolves a client or frame id to its window.
func (m *Manager) Lookup(id SurfaceID) (*Window, bool) {
	if w, ok := m.owner[id]; ok {
		return w, true
	}
	w, ok := m.frames[id]
	return w, ok
}

// Surface returns the record for a managed client surface.
func (m *Manager) Surface(id SurfaceID) (*Surface, bool) {
	s, ok := m.surfaces[id]
	return s, ok
}

// Windows returns the managed windows in adoption order.
func (m *Manager) Windows() []*Window {
	return slices.Clone(m.windows)
}

// Stacking returns the managed windows from top to bottom.
func (m *Manager) Stacking() []*Window {
	return m.stack.Layers().Order()
}

// Focused returns the focused window or nil.
func (m *Manager) Focused() *Window { return m.focused }

// Manage adopts a client surface and frames it. Adopting a surface that is
// already managed returns its window.
func (m *Manager) Manage(id SurfaceID) (*Window, error) {
	if w, ok := m.owner[id]; ok {
		return w, nil
	}
	if _, ok := m.frames[id]; ok {
		return nil, ErrUnmanageable
	}

	a, err := m.provider.Attributes(id)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes of %#x: %w", uint32(id), err)
	}
	if a.OverrideRedirect {
		return nil, ErrUnmanageable
	}

	s := loadSurface(m.decoder, id, a)
	s.savedState, s.hasSaved = m.store.ReadState(id)
	s.firstMap = true
	m.surfaces[id] = s
	m.adoption = append(m.adoption, id)

	w, err := m.frameSurface(s, -1)
	if err != nil {
		m.forget(id)
		return nil, err
	}
	m.logger.Debug("window managed", "client", id, "frame", w.frame, "title", s.Title)
	return w, nil
}

// frameSurface builds a new window around an already recorded surface.
// ws < 0 picks the workspace from hints or the current one.
func (m *Manager) frameSurface(s *Surface, ws int) (*Window, error) {
	w := &Window{
		m:         m,
		logger:    m.logger.With("client", s.ID),
		clients:   group.New(s.ID),
		state:     attrib.StateWithdrawn,
		layer:     m.opts.DefaultLayer,
		workspace: ws,
	}
	if s.AttrHints != nil {
		w.applyInitialHints(*s.AttrHints)
	}
	w.rederive()

	cw, ch, _, _ := s.Size.Constrain(s.Geometry.Width, s.Geometry.Height)
	frame := geom.Rect{
		X:      s.Geometry.X,
		Y:      s.Geometry.Y,
		Width:  cw,
		Height: ch + w.decorHeight(),
	}
	place := true
	if m.startup || s.Transient() || s.Size.UserPlaced() {
		frame = hints.ApplyGravity(s.Size.Gravity, frame, cw, ch)
		b := m.screen.Bounds()
		place = !m.startup && !(frame.X >= b.X && frame.Y >= b.Y && frame.X <= b.Right() && frame.Y <= b.Bottom())
	}

	fid, err := m.provider.CreateFrame(frame, w.border)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame for %#x: %w", uint32(s.ID), err)
	}
	w.frame = fid
	w.geom = frame

	m.provider.SetSaveSet(s.ID, true)
	_ = m.provider.SetBorderWidth(s.ID, 0)
	if err := m.provider.Reparent(s.ID, fid, 0, w.titleHeight()); err != nil {
		m.provider.DestroyFrame(fid)
		return nil, fmt.Errorf("failed to reparent %#x: %w", uint32(s.ID), err)
	}
	_ = m.provider.MoveResize(s.ID, w.clientArea())
	m.provider.GrabButtons(fid, s.ID)

	m.owner[s.ID] = w
	m.frames[fid] = w
	m.windows = append(m.windows, w)

	if w.workspace < 0 || w.workspace >= m.screen.WorkspaceCount() {
		w.workspace = m.screen.CurrentWorkspace()
	}

	w.restoreAttributes()

	if parent := m.parentWindow(s); parent != nil && parent != w {
		w.layer = parent.layer
	}
	w.layer = m.stack.Add(w, w.layer)
	w.setLayerNum(w.layer)

	if !place {
		w.MoveResize(frame)
	}
	m.screen.AddWindow(w, w.workspace, place)

	if w.shaded {
		w.shaded = false
		w.Shade()
	}
	switch {
	case w.maximized && w.funcs.Maximize:
		saved := w.premax
		w.maximized = false
		w.toggleMaximize()
		if !saved.Empty() {
			w.premax = saved
			w.setPremax(saved)
		}
	case w.attrs.Has(attrib.FlagMaxHoriz) && w.funcs.Maximize:
		w.MaximizeHorizontal()
	case w.attrs.Has(attrib.FlagMaxVert) && w.funcs.Maximize:
		w.MaximizeVertical()
	}
	if w.stuck {
		w.stuck = false
		w.Stick()
	}

	w.setState(w.state)
	w.sendConfigureNotify()
	w.focused = false
	m.notify(w, ChangeAdded)
	return w, nil
}

// Adopt manages surfaces that were already mapped when the manager
// started. Their positions and persisted state are kept.
func (m *Manager) Adopt(ids []SurfaceID) {
	m.startup = true
	defer func() { m.startup = false }()
	for _, id := range ids {
		m.Dispatch(MapRequest{Window: id})
	}
}

// Shutdown gives every client back to the root, mapped.
func (m *Manager) Shutdown() {
	for _, w := range m.Windows() {
		w.Unmanage(true)
	}
}

// Dispatch routes a decoded event to the window it targets. While a move,
// resize or tab drag is in progress, pointer motion and release go to the
// dragging window whatever surface they were reported on.
func (m *Manager) Dispatch(ev Event) {
	if m.dragging != nil {
		switch ev.(type) {
		case Motion, ButtonRelease:
			m.dragging.Handle(ev)
			return
		}
	}

	if e, ok := ev.(MapRequest); ok {
		if _, managed := m.Lookup(e.Window); !managed {
			if _, err := m.Manage(e.Window); err != nil {
				if errors.Is(err, ErrUnmanageable) || errors.Is(err, ErrSurfaceGone) {
					m.logger.Debug("map request ignored", "window", e.Window, "error", err)
				} else {
					m.logger.Warn("failed to manage window", "window", e.Window, "error", err)
				}
				return
			}
		}
	}

	w, ok := m.Lookup(ev.Target())
	if !ok {
		return
	}
	w.Handle(ev)
}

// transientsOf returns the surfaces transient for id in adoption order.
func (m *Manager) transientsOf(id SurfaceID) []SurfaceID {
	var out []SurfaceID
	for _, sid := range m.adoption {
		if s := m.surfaces[sid]; s != nil && s.Transient() && s.TransientFor == id {
			out = append(out, sid)
		}
	}
	return out
}

// parentWindow returns the window owning the surface s is transient for.
func (m *Manager) parentWindow(s *Surface) *Window {
	if !s.Transient() {
		return nil
	}
	return m.owner[s.TransientFor]
}

// transientWindows returns the windows holding surfaces that are transient
// for any of w's clients.
func (m *Manager) transientWindows(w *Window) []*Window {
	var out []*Window
	for _, c := range w.clients.Members() {
		for _, t := range m.transientsOf(c) {
			tw := m.owner[t]
			if tw == nil || tw == w || slices.Contains(out, tw) {
				continue
			}
			out = append(out, tw)
		}
	}
	return out
}

func (m *Manager) forget(id SurfaceID) {
	delete(m.surfaces, id)
	delete(m.owner, id)
	if i := slices.Index(m.adoption, id); i >= 0 {
		m.adoption = slices.Delete(m.adoption, i, i+1)
	}
}

func (m *Manager) unregister(w *Window) {
	delete(m.frames, w.frame)
	if i := slices.Index(m.windows, w); i >= 0 {
		m.windows = slices.Delete(m.windows, i, i+1)
	}
	if m.focused == w {
		m.focused = nil
	}
	if m.dragging == w {
		m.dragging = nil
	}
}

// setFocused records w as the focused window and clears the flag on the
// previous one.
func (m *Manager) setFocused(w *Window) {
	if m.focused == w {
		if w != nil && !w.focused {
			w.SetFocusFlag(true)
		}
		return
	}
	if prev := m.focused; prev != nil {
		prev.SetFocusFlag(false)
	}
	m.focused = w
	if w != nil {
		w.SetFocusFlag(true)
	}
}

func (m *Manager) restack(order []*Window) {
	frames := make([]SurfaceID, 0, len(order))
	for _, w := range order {
		frames = append(frames, w.frame)
	}
	m.provider.Restack(frames)
}

func (m *Manager) notify(w *Window, c Change) {
	for _, l := range m.listeners {
		l.WindowChanged(w, c)
	}
}

// stackTree exposes the transient relation between windows to the
// stacking coordinator.
type stackTree struct{ m *Manager }

func (t stackTree) Root(w *Window) *Window {
	start, ok := w.clients.Active()
	if !ok {
		return w
	}
	root, cycle := transient.Root(start, func(id SurfaceID) (SurfaceID, bool) {
		s := t.m.surfaces[id]
		if s == nil || !s.Transient() {
			return None, false
		}
		if _, ok := t.m.owner[s.TransientFor]; !ok {
			return None, false
		}
		return s.TransientFor, true
	})
	if cycle {
		t.m.logger.Debug("transient cycle", "start", start, "root", root)
	}
	if rw := t.m.owner[root]; rw != nil {
		return rw
	}
	return w
}

func (t stackTree) Transients(w *Window) []*Window { return t.m.transientWindows(w) }
func (t stackTree) Iconic(w *Window) bool          { return w.IsIconic() }
func (t stackTree) Enter(w *Window) bool           { return w.enter() }
func (t stackTree) Leave(w *Window)                { w.leave() }
func (t stackTree) SetLayer(w *Window, layer int)  { w.setLayerNum(layer) }
func (t stackTree) Raised(w *Window)               { t.m.notify(w, ChangeStacking) }
func (t stackTree) Lowered(w *Window)              { t.m.notify(w, ChangeStacking) }
