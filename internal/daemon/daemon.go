// Package daemon runs the window manager: it connects to the display,
// wires the window core to the X11 adapter, binds keys and serves IPC
// under a supervisor until the context ends.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/fluxcore/internal/config"
	"github.com/1broseidon/fluxcore/internal/hotkeys"
	"github.com/1broseidon/fluxcore/internal/ipc"
	"github.com/1broseidon/fluxcore/internal/runtimepath"
	"github.com/1broseidon/fluxcore/internal/screen"
	"github.com/1broseidon/fluxcore/internal/window"
	"github.com/1broseidon/fluxcore/internal/x11"
)

// Options configure Run.
type Options struct {
	Config *config.Config
	// ConfigPath is reloaded on RELOAD; empty means the default location.
	ConfigPath string
	Logger     *slog.Logger
	// Level, when set, follows log_level across reloads.
	Level             *slog.LevelVar
	ReconcileInterval time.Duration
}

func (o Options) loadConfig() (*config.Config, error) {
	if o.ConfigPath == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// Run manages the display until ctx is cancelled or the X connection is
// lost.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		return errors.New("daemon: no configuration")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.BecomeWM("fluxcore"); err != nil {
		return err
	}

	prov, err := x11.NewProvider(conn, logger.With("component", "x11"))
	if err != nil {
		return err
	}
	dec := x11.NewDecoder(conn)
	loop := x11.NewLoop(conn)

	scr := screen.New(conn.RootGeometry(), cfg.ScreenOptions(), logger.With("component", "screen"))
	mgr := window.NewManager(window.Deps{
		Provider:  prov,
		Decoder:   dec,
		Store:     dec,
		Screen:    scr,
		Scheduler: loop,
		Logger:    logger.With("component", "window"),
	}, cfg.WindowOptions())

	pub := x11.NewPublisher(conn, mgr, logger)
	mgr.AddListener(scr)
	mgr.AddListener(pub)
	scr.AddObserver(pub)

	events := x11.NewEvents(conn, prov, dec, mgr, scr, pub, logger)
	events.Connect()
	pub.WorkspacesChanged(scr)

	wm := &WM{
		mgr:    mgr,
		scr:    scr,
		prov:   prov,
		keys:   hotkeys.NewHandler(conn.XUtil, conn.Root, logger.With("component", "hotkeys")),
		run:    loop.Do,
		load:   opts.loadConfig,
		level:  opts.Level,
		logger: logger,
	}
	wm.applyConfig(cfg)

	ids, err := conn.TopLevels()
	if err != nil {
		logger.Warn("failed to list existing windows", "error", err)
	}
	events.Adopt(ids)
	logger.Info("window manager started", "windows", len(mgr.Windows()), "workspaces", scr.WorkspaceCount())

	loop.OnShutdown(func() {
		wm.keys.Unbind()
		mgr.Shutdown()
		pub.Clear()
	})

	socket, err := runtimepath.SocketPath(cfg.Display)
	if err != nil {
		return fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	sup := newSupervisor(logger)
	add(sup, serviceFunc{name: "x11", fn: func(ctx context.Context) error {
		err := loop.Run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// The display is gone; nothing left to restart.
		return fmt.Errorf("%w: %v", suture.ErrTerminateSupervisorTree, err)
	}})
	add(sup, ipc.NewServer(socket, wm, logger.With("component", "ipc")))
	add(sup, serviceFunc{name: "sighup", fn: func(ctx context.Context) error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				if err := wm.Reload(ctx); err != nil {
					logger.Warn("config reload failed", "error", err)
				}
			}
		}
	}})
	add(sup, NewReconciler(ReconcilerConfig{
		Interval: opts.ReconcileInterval,
		Logger:   logger.With("component", "reconciler"),
	}, mgr, prov.Alive, loop.Do))

	err = sup.Serve(ctx)
	logger.Info("window manager stopped")
	if ctx.Err() != nil {
		return nil
	}
	return err
}
