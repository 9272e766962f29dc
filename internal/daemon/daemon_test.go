package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/fluxcore/internal/attrib"
	"github.com/1broseidon/fluxcore/internal/config"
	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/hints"
	"github.com/1broseidon/fluxcore/internal/screen"
	"github.com/1broseidon/fluxcore/internal/window"
)

type stubProvider struct {
	next   window.SurfaceID
	attrs  map[window.SurfaceID]window.SurfaceAttributes
	gone   map[window.SurfaceID]bool
	killed []window.SurfaceID
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		next:  5000,
		attrs: make(map[window.SurfaceID]window.SurfaceAttributes),
		gone:  make(map[window.SurfaceID]bool),
	}
}

func (p *stubProvider) Attributes(id window.SurfaceID) (window.SurfaceAttributes, error) {
	a, ok := p.attrs[id]
	if !ok || p.gone[id] {
		return window.SurfaceAttributes{}, window.ErrSurfaceGone
	}
	return a, nil
}

func (p *stubProvider) Alive(id window.SurfaceID) bool {
	_, ok := p.attrs[id]
	return ok && !p.gone[id]
}

func (p *stubProvider) CreateFrame(geom.Rect, int) (window.SurfaceID, error) {
	p.next++
	return p.next, nil
}

func (p *stubProvider) DestroyFrame(window.SurfaceID) {}

func (p *stubProvider) Reparent(id, parent window.SurfaceID, x, y int) error {
	if p.gone[id] {
		return window.ErrSurfaceGone
	}
	return nil
}

func (p *stubProvider) SetSaveSet(window.SurfaceID, bool)                    {}
func (p *stubProvider) MoveResize(window.SurfaceID, geom.Rect) error         { return nil }
func (p *stubProvider) SetBorderWidth(window.SurfaceID, int) error           { return nil }
func (p *stubProvider) Show(window.SurfaceID)                                {}
func (p *stubProvider) Hide(window.SurfaceID)                                {}
func (p *stubProvider) RaiseInFrame(window.SurfaceID)                        {}
func (p *stubProvider) Restack([]window.SurfaceID)                           {}
func (p *stubProvider) SendConfigureNotify(window.SurfaceID, geom.Rect, int) {}
func (p *stubProvider) GrabButtons(frame, client window.SurfaceID)           {}
func (p *stubProvider) ReplayPointer()                                       {}
func (p *stubProvider) GrabPointer(window.Cursor) error                      { return nil }
func (p *stubProvider) UngrabPointer()                                       {}
func (p *stubProvider) WarpPointer(dx, dy int)                               {}
func (p *stubProvider) SurfaceAt(x, y int) window.SurfaceID                  { return window.None }
func (p *stubProvider) Pointer() (int, int, error)                           { return 0, 0, nil }

func (p *stubProvider) SetInputFocus(id window.SurfaceID) error {
	if !p.Alive(id) {
		return window.ErrSurfaceGone
	}
	return nil
}

func (p *stubProvider) SendTakeFocus(window.SurfaceID) error { return nil }
func (p *stubProvider) SendDelete(window.SurfaceID) error    { return nil }

func (p *stubProvider) Kill(id window.SurfaceID) error {
	p.killed = append(p.killed, id)
	return nil
}

func (p *stubProvider) InstallColormap(window.SurfaceID, bool) {}
func (p *stubProvider) DrawOutline(geom.Rect)                  {}
func (p *stubProvider) ClearOutline()                          {}

type stubDecoder struct{}

func (stubDecoder) Title(id window.SurfaceID) string { return fmt.Sprintf("client-%d", id) }
func (stubDecoder) IconTitle(window.SurfaceID) string { return "" }
func (stubDecoder) Class(window.SurfaceID) (string, string) {
	return "xterm", "XTerm"
}
func (stubDecoder) SizeHints(window.SurfaceID) (hints.SizeHints, bool) {
	return hints.SizeHints{}, false
}
func (stubDecoder) WMHints(window.SurfaceID) (hints.WMHints, bool) {
	return hints.WMHints{}, false
}
func (stubDecoder) MotifHints(window.SurfaceID) (hints.MotifHints, bool) {
	return hints.MotifHints{}, false
}
func (stubDecoder) Protocols(window.SurfaceID) hints.Protocols { return hints.Protocols{} }
func (stubDecoder) TransientFor(window.SurfaceID) (window.SurfaceID, bool) {
	return window.None, false
}
func (stubDecoder) Modal(window.SurfaceID) bool { return false }
func (stubDecoder) AttributeHints(window.SurfaceID) (attrib.Hints, bool) {
	return attrib.Hints{}, false
}

type stubStore struct{}

func (stubStore) WriteState(window.SurfaceID, attrib.State) error { return nil }
func (stubStore) ReadState(window.SurfaceID) (attrib.State, bool) {
	return attrib.StateWithdrawn, false
}
func (stubStore) WriteAttributes(window.SurfaceID, attrib.Attributes) error { return nil }
func (stubStore) ReadAttributes(window.SurfaceID) (attrib.Attributes, bool) {
	return attrib.Attributes{}, false
}

type stubScheduler struct{}

func (stubScheduler) AfterFunc(time.Duration, func()) (stop func()) { return func() {} }

type stubKeys struct {
	binds   int
	unbinds int
	last    map[string]string
}

func (k *stubKeys) Bind(keys map[string]string, actions map[string]func()) int {
	k.binds++
	k.last = keys
	return len(keys)
}

func (k *stubKeys) Unbind() { k.unbinds++ }

type fixture struct {
	prov *stubProvider
	mgr  *window.Manager
	scr  *screen.Screen
	keys *stubKeys
	wm   *WM
}

// direct runs f in place; tests are single threaded.
func direct(_ context.Context, f func()) error {
	f()
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DefaultConfig()

	prov := newStubProvider()
	scr := screen.New(geom.Rect{Width: 1280, Height: 800}, cfg.ScreenOptions(), logger)
	mgr := window.NewManager(window.Deps{
		Provider:  prov,
		Decoder:   stubDecoder{},
		Store:     stubStore{},
		Screen:    scr,
		Scheduler: stubScheduler{},
		Logger:    logger,
	}, cfg.WindowOptions())
	mgr.AddListener(scr)

	keys := &stubKeys{}
	wm := &WM{
		mgr:    mgr,
		scr:    scr,
		prov:   prov,
		keys:   keys,
		run:    direct,
		load:   func() (*config.Config, error) { return config.DefaultConfig(), nil },
		level:  new(slog.LevelVar),
		logger: logger,
	}
	wm.applyConfig(cfg)
	return &fixture{prov: prov, mgr: mgr, scr: scr, keys: keys, wm: wm}
}

func (f *fixture) mapClient(t *testing.T, id window.SurfaceID) *window.Window {
	t.Helper()
	f.prov.attrs[id] = window.SurfaceAttributes{
		Geometry: geom.Rect{X: 10, Y: 10, Width: 200, Height: 100},
		Viewable: true,
	}
	f.mgr.Dispatch(window.MapRequest{Window: id})
	w, ok := f.mgr.Lookup(id)
	if !ok {
		t.Fatalf("expected %d to be managed", id)
	}
	return w
}

func TestApplyConfigBindsKeys(t *testing.T) {
	f := newFixture(t)

	if f.keys.binds != 1 || f.keys.unbinds != 1 {
		t.Fatalf("expected one bind and unbind, got %d and %d", f.keys.binds, f.keys.unbinds)
	}
	if len(f.keys.last) != len(config.DefaultConfig().Keys) {
		t.Fatalf("expected default keys to be bound, got %v", f.keys.last)
	}
	if f.wm.level.Level() != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", f.wm.level.Level())
	}
}

func TestReloadAppliesNewConfig(t *testing.T) {
	f := newFixture(t)
	f.wm.load = func() (*config.Config, error) {
		cfg := config.DefaultConfig()
		cfg.LogLevel = "debug"
		cfg.EdgeSnapThreshold = 42
		cfg.Keys = map[string]string{config.ActionClose: "Mod4-q"}
		return cfg, nil
	}

	if err := f.wm.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if f.keys.binds != 2 {
		t.Fatalf("expected keys to be rebound, got %d binds", f.keys.binds)
	}
	if f.keys.last[config.ActionClose] != "Mod4-q" {
		t.Fatalf("expected new close binding, got %v", f.keys.last)
	}
	if f.wm.level.Level() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", f.wm.level.Level())
	}
	if got := f.mgr.Options().EdgeSnapThreshold; got != 42 {
		t.Fatalf("expected snap threshold 42, got %d", got)
	}
}

func TestReloadKeepsRunningConfigOnError(t *testing.T) {
	f := newFixture(t)
	f.wm.load = func() (*config.Config, error) { return nil, errors.New("bad yaml") }

	if err := f.wm.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}
	if f.keys.binds != 1 {
		t.Fatalf("expected no rebind, got %d binds", f.keys.binds)
	}
}

func TestStatusAndWindows(t *testing.T) {
	f := newFixture(t)
	f.mapClient(t, 1)
	w := f.mapClient(t, 2)
	w.SetInputFocus()

	status, err := f.wm.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if status.WindowCount != 2 {
		t.Fatalf("expected 2 windows, got %d", status.WindowCount)
	}
	if status.WorkspaceCount != 4 || status.WorkspaceName != "Workspace 1" {
		t.Fatalf("unexpected workspace status: %+v", status)
	}
	if status.Focused != "client-2" {
		t.Fatalf("expected client-2 focused, got %q", status.Focused)
	}

	windows, err := f.wm.Windows(context.Background())
	if err != nil {
		t.Fatalf("Windows() error: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	for _, info := range windows {
		if len(info.Clients) != 1 || info.Class != "XTerm" {
			t.Fatalf("unexpected window info: %+v", info)
		}
	}
}

func TestActionRunsOnFocusedWindow(t *testing.T) {
	f := newFixture(t)
	w := f.mapClient(t, 1)
	w.SetInputFocus()

	if err := f.wm.Action(context.Background(), config.ActionStick); err != nil {
		t.Fatalf("Action() error: %v", err)
	}
	if !w.IsStuck() {
		t.Fatal("expected window to be stuck")
	}

	if err := f.wm.Action(context.Background(), config.ActionKill); err != nil {
		t.Fatalf("Action() error: %v", err)
	}
	if len(f.prov.killed) != 1 || f.prov.killed[0] != 1 {
		t.Fatalf("expected client 1 killed, got %v", f.prov.killed)
	}

	err := f.wm.Action(context.Background(), "fly")
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Fatalf("expected unknown action error, got %v", err)
	}
}

func TestSwitchWorkspaceRange(t *testing.T) {
	f := newFixture(t)

	if err := f.wm.SwitchWorkspace(context.Background(), 2); err != nil {
		t.Fatalf("SwitchWorkspace() error: %v", err)
	}
	if f.scr.CurrentWorkspace() != 2 {
		t.Fatalf("expected workspace 2, got %d", f.scr.CurrentWorkspace())
	}
	if err := f.wm.SwitchWorkspace(context.Background(), 9); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestReconcilerReleasesVanishedClients(t *testing.T) {
	f := newFixture(t)
	f.mapClient(t, 1)
	f.mapClient(t, 2)

	r := NewReconciler(ReconcilerConfig{Logger: f.wm.logger}, f.mgr, f.prov.Alive, direct)

	if err := r.ReconcileNow(context.Background()); err != nil {
		t.Fatalf("ReconcileNow() error: %v", err)
	}
	if len(f.mgr.Windows()) != 2 {
		t.Fatalf("expected both windows kept, got %d", len(f.mgr.Windows()))
	}

	f.prov.gone[2] = true
	if err := r.ReconcileNow(context.Background()); err != nil {
		t.Fatalf("ReconcileNow() error: %v", err)
	}
	if len(f.mgr.Windows()) != 1 {
		t.Fatalf("expected 1 window after reconcile, got %d", len(f.mgr.Windows()))
	}
	if _, ok := f.mgr.Lookup(2); ok {
		t.Fatal("expected vanished client to be released")
	}
}

func TestSanitizeError(t *testing.T) {
	ctx := context.Background()

	if err := sanitizeError(ctx, nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	plain := errors.New("boom")
	if err := sanitizeError(ctx, plain); err != plain {
		t.Fatalf("expected plain error unchanged, got %v", err)
	}

	err := sanitizeError(ctx, fmt.Errorf("dial: %w", context.DeadlineExceeded))
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context error to be masked, got %v", err)
	}

	err = sanitizeError(ctx, fmt.Errorf("%w: %w", suture.ErrDoNotRestart, context.Canceled))
	if !errors.Is(err, suture.ErrDoNotRestart) || errors.Is(err, context.Canceled) {
		t.Fatalf("expected only ErrDoNotRestart to survive, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := sanitizeError(cancelled, plain); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled once the context is done, got %v", err)
	}
}
