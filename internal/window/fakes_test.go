package window

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/1broseidon/fluxcore/internal/attrib"
	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/hints"
)

type fakeProvider struct {
	nextFrame  SurfaceID
	attrs      map[SurfaceID]SurfaceAttributes
	gone       map[SurfaceID]bool
	rects      map[SurfaceID]geom.Rect
	parent     map[SurfaceID]SurfaceID
	visible    map[SurfaceID]bool
	configured map[SurfaceID]geom.Rect
	colormaps  map[SurfaceID]bool
	destroyed  []SurfaceID
	stack      []SurfaceID
	focus      SurfaceID
	takeFocus  []SurfaceID
	deleted    []SurfaceID
	killed     []SurfaceID
	grabFail   bool
	grabbed    bool
	outline    *geom.Rect
	warpDX     int
	ptrX, ptrY int
	at         SurfaceID
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		nextFrame:  1000,
		attrs:      make(map[SurfaceID]SurfaceAttributes),
		gone:       make(map[SurfaceID]bool),
		rects:      make(map[SurfaceID]geom.Rect),
		parent:     make(map[SurfaceID]SurfaceID),
		visible:    make(map[SurfaceID]bool),
		configured: make(map[SurfaceID]geom.Rect),
		colormaps:  make(map[SurfaceID]bool),
	}
}

func (p *fakeProvider) Attributes(id SurfaceID) (SurfaceAttributes, error) {
	a, ok := p.attrs[id]
	if !ok || p.gone[id] {
		return SurfaceAttributes{}, ErrSurfaceGone
	}
	return a, nil
}

func (p *fakeProvider) Alive(id SurfaceID) bool {
	_, ok := p.attrs[id]
	return ok && !p.gone[id]
}

func (p *fakeProvider) CreateFrame(r geom.Rect, border int) (SurfaceID, error) {
	p.nextFrame++
	p.rects[p.nextFrame] = r
	return p.nextFrame, nil
}

func (p *fakeProvider) DestroyFrame(frame SurfaceID) {
	delete(p.rects, frame)
	p.destroyed = append(p.destroyed, frame)
}

func (p *fakeProvider) Reparent(id, parent SurfaceID, x, y int) error {
	if p.gone[id] {
		return ErrSurfaceGone
	}
	p.parent[id] = parent
	return nil
}

func (p *fakeProvider) SetSaveSet(SurfaceID, bool) {}

func (p *fakeProvider) MoveResize(id SurfaceID, r geom.Rect) error {
	p.rects[id] = r
	return nil
}

func (p *fakeProvider) SetBorderWidth(SurfaceID, int) error { return nil }
func (p *fakeProvider) Show(id SurfaceID)                   { p.visible[id] = true }
func (p *fakeProvider) Hide(id SurfaceID)                   { p.visible[id] = false }
func (p *fakeProvider) RaiseInFrame(SurfaceID)              {}
func (p *fakeProvider) Restack(order []SurfaceID)           { p.stack = slices.Clone(order) }

func (p *fakeProvider) SendConfigureNotify(id SurfaceID, r geom.Rect, border int) {
	p.configured[id] = r
}

func (p *fakeProvider) GrabButtons(frame, client SurfaceID) {}
func (p *fakeProvider) ReplayPointer()                      {}

func (p *fakeProvider) GrabPointer(Cursor) error {
	if p.grabFail {
		return errors.New("grab failed")
	}
	p.grabbed = true
	return nil
}

func (p *fakeProvider) UngrabPointer()               { p.grabbed = false }
func (p *fakeProvider) WarpPointer(dx, dy int)       { p.warpDX += dx }
func (p *fakeProvider) SurfaceAt(x, y int) SurfaceID { return p.at }
func (p *fakeProvider) Pointer() (int, int, error)   { return p.ptrX, p.ptrY, nil }

func (p *fakeProvider) SetInputFocus(id SurfaceID) error {
	if !p.Alive(id) {
		return ErrSurfaceGone
	}
	p.focus = id
	return nil
}

func (p *fakeProvider) SendTakeFocus(id SurfaceID) error {
	p.takeFocus = append(p.takeFocus, id)
	return nil
}

func (p *fakeProvider) SendDelete(id SurfaceID) error {
	p.deleted = append(p.deleted, id)
	return nil
}

func (p *fakeProvider) Kill(id SurfaceID) error {
	p.killed = append(p.killed, id)
	return nil
}

func (p *fakeProvider) InstallColormap(id SurfaceID, install bool) { p.colormaps[id] = install }
func (p *fakeProvider) DrawOutline(r geom.Rect)                    { p.outline = &r }
func (p *fakeProvider) ClearOutline()                              { p.outline = nil }

type decoded struct {
	title     string
	size      *hints.SizeHints
	wm        *hints.WMHints
	motif     *hints.MotifHints
	protocols hints.Protocols
	transient SurfaceID
	modal     bool
	attrHints *attrib.Hints
}

type fakeDecoder struct {
	surfaces map[SurfaceID]*decoded
}

func (d *fakeDecoder) get(id SurfaceID) *decoded {
	if s, ok := d.surfaces[id]; ok {
		return s
	}
	return &decoded{}
}

func (d *fakeDecoder) Title(id SurfaceID) string     { return d.get(id).title }
func (d *fakeDecoder) IconTitle(id SurfaceID) string { return "" }
func (d *fakeDecoder) Class(id SurfaceID) (string, string) {
	return "test", "Test"
}

func (d *fakeDecoder) SizeHints(id SurfaceID) (hints.SizeHints, bool) {
	if s := d.get(id).size; s != nil {
		return *s, true
	}
	return hints.SizeHints{}, false
}

func (d *fakeDecoder) WMHints(id SurfaceID) (hints.WMHints, bool) {
	if wm := d.get(id).wm; wm != nil {
		return *wm, true
	}
	return hints.WMHints{}, false
}

func (d *fakeDecoder) MotifHints(id SurfaceID) (hints.MotifHints, bool) {
	if m := d.get(id).motif; m != nil {
		return *m, true
	}
	return hints.MotifHints{}, false
}

func (d *fakeDecoder) Protocols(id SurfaceID) hints.Protocols { return d.get(id).protocols }

func (d *fakeDecoder) TransientFor(id SurfaceID) (SurfaceID, bool) {
	t := d.get(id).transient
	return t, t != None
}

func (d *fakeDecoder) Modal(id SurfaceID) bool { return d.get(id).modal }

func (d *fakeDecoder) AttributeHints(id SurfaceID) (attrib.Hints, bool) {
	if h := d.get(id).attrHints; h != nil {
		return *h, true
	}
	return attrib.Hints{}, false
}

type fakeStore struct {
	states map[SurfaceID]attrib.State
	attrs  map[SurfaceID]attrib.Attributes
}

func (s *fakeStore) WriteState(id SurfaceID, st attrib.State) error {
	s.states[id] = st
	return nil
}

func (s *fakeStore) ReadState(id SurfaceID) (attrib.State, bool) {
	st, ok := s.states[id]
	return st, ok
}

func (s *fakeStore) WriteAttributes(id SurfaceID, a attrib.Attributes) error {
	s.attrs[id] = a
	return nil
}

func (s *fakeStore) ReadAttributes(id SurfaceID) (attrib.Attributes, bool) {
	a, ok := s.attrs[id]
	return a, ok
}

type fakeScreen struct {
	bounds   geom.Rect
	maxArea  geom.Rect
	current  int
	count    int
	windows  []*Window
	position string
	geometry string
}

func (s *fakeScreen) Bounds() geom.Rect      { return s.bounds }
func (s *fakeScreen) MaxArea() geom.Rect     { return s.maxArea }
func (s *fakeScreen) CurrentWorkspace() int  { return s.current }
func (s *fakeScreen) WorkspaceCount() int    { return s.count }
func (s *fakeScreen) SwitchWorkspace(id int) { s.current = id }

func (s *fakeScreen) AddWindow(w *Window, ws int, place bool) {
	s.windows = append(s.windows, w)
	w.SetWorkspace(ws)
}

func (s *fakeScreen) RemoveWindow(w *Window) {
	if i := slices.Index(s.windows, w); i >= 0 {
		s.windows = slices.Delete(s.windows, i, i+1)
	}
}

func (s *fakeScreen) Reassociate(w *Window, ws int, ignoreSticky bool) {
	if ws < 0 || ws >= s.count {
		return
	}
	w.SetWorkspace(ws)
}

func (s *fakeScreen) SnapTargets(*Window) []geom.Rect { return nil }
func (s *fakeScreen) ShowPosition(x, y int)           { s.position = fmt.Sprintf("%d,%d", x, y) }
func (s *fakeScreen) ShowGeometry(uw, uh int)         { s.geometry = fmt.Sprintf("%dx%d", uw, uh) }

func (s *fakeScreen) HideGeometry() {
	s.position = ""
	s.geometry = ""
}

type fakeTask struct {
	f       func()
	stopped bool
}

type fakeScheduler struct {
	pending []*fakeTask
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) func() {
	t := &fakeTask{f: f}
	s.pending = append(s.pending, t)
	return func() { t.stopped = true }
}

func (s *fakeScheduler) fire() {
	tasks := s.pending
	s.pending = nil
	for _, t := range tasks {
		if !t.stopped {
			t.f()
		}
	}
}

func (s *fakeScheduler) live() int {
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

type harness struct {
	m     *Manager
	p     *fakeProvider
	d     *fakeDecoder
	st    *fakeStore
	sc    *fakeScreen
	sched *fakeScheduler
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	opts := DefaultOptions()
	for _, fn := range mutate {
		fn(&opts)
	}
	h := &harness{
		p:     newFakeProvider(),
		d:     &fakeDecoder{surfaces: make(map[SurfaceID]*decoded)},
		st:    &fakeStore{states: make(map[SurfaceID]attrib.State), attrs: make(map[SurfaceID]attrib.Attributes)},
		sc:    &fakeScreen{bounds: geom.Rect{Width: 1000, Height: 800}, maxArea: geom.Rect{Y: 20, Width: 1000, Height: 760}, count: 4},
		sched: &fakeScheduler{},
	}
	h.m = NewManager(Deps{
		Provider:  h.p,
		Decoder:   h.d,
		Store:     h.st,
		Screen:    h.sc,
		Scheduler: h.sched,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, opts)
	return h
}

func (h *harness) addClient(id SurfaceID, r geom.Rect) *decoded {
	h.p.attrs[id] = SurfaceAttributes{Geometry: r, Border: 2, Viewable: true}
	d := &decoded{title: fmt.Sprintf("client-%d", id)}
	h.d.surfaces[id] = d
	return d
}

func (h *harness) mapClient(t *testing.T, id SurfaceID) *Window {
	t.Helper()
	h.m.Dispatch(MapRequest{Window: id})
	w, ok := h.m.Lookup(id)
	if !ok {
		t.Fatalf("expected %d to be managed", id)
	}
	return w
}

func frameRect() geom.Rect {
	return geom.Rect{X: 10, Y: 20, Width: 300, Height: 200}
}
