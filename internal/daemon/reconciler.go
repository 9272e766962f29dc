package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/fluxcore/internal/window"
)

// RunFunc runs f on the event loop and waits for it.
type RunFunc func(ctx context.Context, f func()) error

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks that every managed client still exists
// and releases the ones whose destroy notification was lost.
type Reconciler struct {
	interval time.Duration
	mgr      *window.Manager
	alive    func(window.SurfaceID) bool
	run      RunFunc
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, mgr *window.Manager, alive func(window.SurfaceID) bool, run RunFunc) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		mgr:      mgr,
		alive:    alive,
		run:      run,
		logger:   logger,
	}
}

func (r *Reconciler) String() string { return "reconciler" }

// Serve starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.run(ctx, r.reconcile); err != nil && ctx.Err() == nil {
				r.logger.Warn("reconciler: event loop busy", "error", err)
			}
		}
	}
}

// reconcile performs a single reconciliation pass. It must run on the
// event loop.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the window manager
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	var orphaned []window.SurfaceID
	for _, w := range r.mgr.Windows() {
		for _, id := range w.Clients() {
			if !r.alive(id) {
				orphaned = append(orphaned, id)
			}
		}
	}

	for _, id := range orphaned {
		r.logger.Info("reconciler: client vanished", "surface", id)
		r.mgr.Dispatch(window.DestroyNotify{Window: id})
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) error {
	return r.run(ctx, r.reconcile)
}
