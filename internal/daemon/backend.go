package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/1broseidon/fluxcore/internal/config"
	"github.com/1broseidon/fluxcore/internal/hotkeys"
	"github.com/1broseidon/fluxcore/internal/ipc"
	"github.com/1broseidon/fluxcore/internal/screen"
	"github.com/1broseidon/fluxcore/internal/window"
)

type keyBinder interface {
	Bind(keys map[string]string, actions map[string]func()) int
	Unbind()
}

// WM ties the window core to its configuration, key bindings and IPC
// clients. Fields marked loop-only are touched from the event loop alone.
type WM struct {
	mgr    *window.Manager
	scr    *screen.Screen
	prov   window.SurfaceProvider
	keys   keyBinder
	run    RunFunc
	load   func() (*config.Config, error)
	level  *slog.LevelVar
	logger *slog.Logger

	// loop-only
	cfg     *config.Config
	actions map[string]func()
}

// query runs f on the event loop and hands back its result.
func query[T any](ctx context.Context, run RunFunc, f func() T) (T, error) {
	ch := make(chan T, 1)
	if err := run(ctx, func() { ch <- f() }); err != nil {
		var zero T
		return zero, err
	}
	return <-ch, nil
}

// applyConfig makes cfg the live configuration. It must run on the event
// loop.
func (d *WM) applyConfig(cfg *config.Config) {
	if d.cfg != nil && !sameWorkspaces(d.cfg, cfg) {
		d.logger.Warn("workspace count, names and placement take effect after restart")
	}
	d.cfg = cfg
	d.mgr.SetOptions(cfg.WindowOptions())
	d.actions = hotkeys.Actions(hotkeys.Target{
		Manager:    d.mgr,
		Screen:     d.scr,
		Provider:   d.prov,
		ArrangeGap: cfg.ArrangeGap,
		Logger:     d.logger,
	})
	if d.keys != nil {
		d.keys.Unbind()
		n := d.keys.Bind(cfg.Keys, d.actions)
		d.logger.Debug("key bindings applied", "bound", n, "configured", len(cfg.Keys))
	}
	if d.level != nil {
		d.level.Set(cfg.SlogLevel())
	}
}

func sameWorkspaces(a, b *config.Config) bool {
	return a.Workspaces == b.Workspaces &&
		a.Placement == b.Placement &&
		slices.Equal(a.WorkspaceNames, b.WorkspaceNames)
}

// Status implements ipc.Backend.
func (d *WM) Status(ctx context.Context) (ipc.StatusData, error) {
	return query(ctx, d.run, func() ipc.StatusData {
		cur := d.scr.CurrentWorkspace()
		st := ipc.StatusData{
			WindowCount:    len(d.mgr.Windows()),
			Workspace:      cur,
			WorkspaceCount: d.scr.WorkspaceCount(),
			Feedback:       d.scr.Feedback(),
		}
		if names := d.scr.WorkspaceNames(); cur < len(names) {
			st.WorkspaceName = names[cur]
		}
		if w := d.mgr.Focused(); w != nil {
			st.Focused = w.Title()
		}
		return st
	})
}

// Windows implements ipc.Backend. Windows are listed top of the stack
// first; windows outside the stack follow in management order.
func (d *WM) Windows(ctx context.Context) ([]ipc.WindowInfo, error) {
	return query(ctx, d.run, func() []ipc.WindowInfo {
		seen := make(map[*window.Window]bool)
		var out []ipc.WindowInfo
		for _, w := range d.mgr.Stacking() {
			seen[w] = true
			out = append(out, windowInfo(w))
		}
		for _, w := range d.mgr.Windows() {
			if !seen[w] {
				out = append(out, windowInfo(w))
			}
		}
		return out
	})
}

func windowInfo(w *window.Window) ipc.WindowInfo {
	g := w.Geometry()
	info := ipc.WindowInfo{
		Frame:     uint32(w.ID()),
		Title:     w.Title(),
		Class:     w.Class(),
		Workspace: w.Workspace(),
		Layer:     w.Layer(),
		X:         g.X,
		Y:         g.Y,
		Width:     g.Width,
		Height:    g.Height,
		State:     w.State().String(),
		Focused:   w.IsFocused(),
		Iconic:    w.IsIconic(),
		Shaded:    w.IsShaded(),
		Maximized: w.IsMaximized(),
		Stuck:     w.IsStuck(),
	}
	for _, id := range w.Clients() {
		info.Clients = append(info.Clients, uint32(id))
	}
	return info
}

// Reload implements ipc.Backend.
func (d *WM) Reload(ctx context.Context) error {
	cfg, err := d.load()
	if err != nil {
		return err
	}
	return d.run(ctx, func() { d.applyConfig(cfg) })
}

// Action implements ipc.Backend.
func (d *WM) Action(ctx context.Context, name string) error {
	res, err := query(ctx, d.run, func() error {
		fn, ok := d.actions[name]
		if !ok {
			return fmt.Errorf("unknown action %q", name)
		}
		fn()
		return nil
	})
	if err != nil {
		return err
	}
	return res
}

// SwitchWorkspace implements ipc.Backend.
func (d *WM) SwitchWorkspace(ctx context.Context, n int) error {
	res, err := query(ctx, d.run, func() error {
		if n < 0 || n >= d.scr.WorkspaceCount() {
			return fmt.Errorf("workspace %d out of range [0, %d)", n, d.scr.WorkspaceCount())
		}
		d.scr.SwitchWorkspace(n)
		return nil
	})
	if err != nil {
		return err
	}
	return res
}

var _ ipc.Backend = (*WM)(nil)
