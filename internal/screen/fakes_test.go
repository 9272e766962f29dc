package screen

import (
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/fluxcore/internal/attrib"
	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/hints"
	"github.com/1broseidon/fluxcore/internal/window"
)

type fakeProvider struct {
	next    window.SurfaceID
	attrs   map[window.SurfaceID]window.SurfaceAttributes
	visible map[window.SurfaceID]bool
	focus   window.SurfaceID
}

func (p *fakeProvider) Attributes(id window.SurfaceID) (window.SurfaceAttributes, error) {
	a, ok := p.attrs[id]
	if !ok {
		return window.SurfaceAttributes{}, window.ErrSurfaceGone
	}
	return a, nil
}

func (p *fakeProvider) Alive(id window.SurfaceID) bool {
	_, ok := p.attrs[id]
	return ok
}

func (p *fakeProvider) CreateFrame(geom.Rect, int) (window.SurfaceID, error) {
	p.next++
	return p.next, nil
}

func (p *fakeProvider) DestroyFrame(window.SurfaceID)                        {}
func (p *fakeProvider) Reparent(id, parent window.SurfaceID, x, y int) error { return nil }
func (p *fakeProvider) SetSaveSet(window.SurfaceID, bool)                    {}
func (p *fakeProvider) MoveResize(window.SurfaceID, geom.Rect) error         { return nil }
func (p *fakeProvider) SetBorderWidth(window.SurfaceID, int) error           { return nil }
func (p *fakeProvider) Show(id window.SurfaceID)                             { p.visible[id] = true }
func (p *fakeProvider) Hide(id window.SurfaceID)                             { p.visible[id] = false }
func (p *fakeProvider) RaiseInFrame(window.SurfaceID)                        {}
func (p *fakeProvider) Restack([]window.SurfaceID)                           {}
func (p *fakeProvider) SendConfigureNotify(window.SurfaceID, geom.Rect, int) {}
func (p *fakeProvider) GrabButtons(frame, client window.SurfaceID)           {}
func (p *fakeProvider) ReplayPointer()                                       {}
func (p *fakeProvider) GrabPointer(window.Cursor) error                      { return nil }
func (p *fakeProvider) UngrabPointer()                                       {}
func (p *fakeProvider) WarpPointer(dx, dy int)                               {}
func (p *fakeProvider) SurfaceAt(x, y int) window.SurfaceID                  { return window.None }
func (p *fakeProvider) Pointer() (int, int, error)                           { return 0, 0, nil }
func (p *fakeProvider) SendTakeFocus(window.SurfaceID) error                 { return nil }
func (p *fakeProvider) SendDelete(window.SurfaceID) error                    { return nil }
func (p *fakeProvider) Kill(window.SurfaceID) error                          { return nil }
func (p *fakeProvider) InstallColormap(window.SurfaceID, bool)               {}
func (p *fakeProvider) DrawOutline(geom.Rect)                                {}
func (p *fakeProvider) ClearOutline()                                        {}

func (p *fakeProvider) SetInputFocus(id window.SurfaceID) error {
	p.focus = id
	return nil
}

type fakeDecoder struct{}

func (fakeDecoder) Title(window.SurfaceID) string                          { return "" }
func (fakeDecoder) IconTitle(window.SurfaceID) string                      { return "" }
func (fakeDecoder) Class(window.SurfaceID) (string, string)                { return "", "" }
func (fakeDecoder) SizeHints(window.SurfaceID) (hints.SizeHints, bool)     { return hints.SizeHints{}, false }
func (fakeDecoder) WMHints(window.SurfaceID) (hints.WMHints, bool)         { return hints.WMHints{}, false }
func (fakeDecoder) MotifHints(window.SurfaceID) (hints.MotifHints, bool)   { return hints.MotifHints{}, false }
func (fakeDecoder) Protocols(window.SurfaceID) hints.Protocols             { return hints.Protocols{} }
func (fakeDecoder) TransientFor(window.SurfaceID) (window.SurfaceID, bool) { return window.None, false }
func (fakeDecoder) Modal(window.SurfaceID) bool                            { return false }
func (fakeDecoder) AttributeHints(window.SurfaceID) (attrib.Hints, bool)   { return attrib.Hints{}, false }

type fakeStore struct {
	states map[window.SurfaceID]attrib.State
}

func (s *fakeStore) WriteState(id window.SurfaceID, st attrib.State) error {
	s.states[id] = st
	return nil
}

func (s *fakeStore) ReadState(window.SurfaceID) (attrib.State, bool)           { return 0, false }
func (s *fakeStore) WriteAttributes(window.SurfaceID, attrib.Attributes) error { return nil }
func (s *fakeStore) ReadAttributes(window.SurfaceID) (attrib.Attributes, bool) { return attrib.Attributes{}, false }

type recorder struct{ calls int }

func (r *recorder) WorkspacesChanged(*Screen) { r.calls++ }

type harness struct {
	s *Screen
	m *window.Manager
	p *fakeProvider
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		s: New(geom.Rect{Width: 1000, Height: 800}, opts, logger),
		p: &fakeProvider{
			next:    1000,
			attrs:   make(map[window.SurfaceID]window.SurfaceAttributes),
			visible: make(map[window.SurfaceID]bool),
		},
	}
	h.m = window.NewManager(window.Deps{
		Provider: h.p,
		Decoder:  fakeDecoder{},
		Store:    &fakeStore{states: make(map[window.SurfaceID]attrib.State)},
		Screen:   h.s,
		Logger:   logger,
	}, window.DefaultOptions())
	h.m.AddListener(h.s)
	return h
}

// mapClient manages and maps a 300x200 client. Its frame is 300x224 with
// a one pixel border, 302x226 outside.
func (h *harness) mapClient(t *testing.T, id window.SurfaceID) *window.Window {
	t.Helper()
	h.p.attrs[id] = window.SurfaceAttributes{Geometry: geom.Rect{Width: 300, Height: 200}}
	h.m.Dispatch(window.MapRequest{Window: id})
	w, ok := h.m.Lookup(id)
	if !ok {
		t.Fatalf("expected %d to be managed", id)
	}
	return w
}
