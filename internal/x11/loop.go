package x11

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// ErrLoopQuit is returned by Run when the X event loop stopped on its own.
var ErrLoopQuit = errors.New("x11: event loop quit")

// Loop serializes X event callbacks with timers and requests from other
// goroutines. Everything touching the window core runs inside it.
type Loop struct {
	xu    *xgbutil.XUtil
	tasks chan func()

	start                 sync.Once
	pingBefore, pingAfter chan struct{}
	pingQuit              chan struct{}
	shutdown              []func()
}

// NewLoop creates a loop for the connection.
func NewLoop(conn *Connection) *Loop {
	return &Loop{
		xu:    conn.XUtil,
		tasks: make(chan func(), 64),
	}
}

// Post queues f to run on the loop. It never blocks.
func (l *Loop) Post(f func()) {
	select {
	case l.tasks <- f:
	default:
		go func() { l.tasks <- f }()
	}
}

// AfterFunc runs f on the loop after d. It implements window.Scheduler.
func (l *Loop) AfterFunc(d time.Duration, f func()) (stop func()) {
	var stopped atomic.Bool
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !stopped.Load() {
				f()
			}
		})
	})
	return func() {
		stopped.Store(true)
		t.Stop()
	}
}

// Do runs f on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, f func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		f()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnShutdown registers f to run on the loop when Run's context ends,
// before the X event loop is told to quit. Call it before Run.
func (l *Loop) OnShutdown(f func()) {
	l.shutdown = append(l.shutdown, f)
}

// Run processes X events and queued tasks until ctx is done or the X
// event loop quits. Run may be called again after a task panicked; the X
// event reader is only started once.
func (l *Loop) Run(ctx context.Context) error {
	l.start.Do(func() {
		l.pingBefore, l.pingAfter, l.pingQuit = xevent.MainPing(l.xu)
	})
	for {
		select {
		case <-l.pingBefore:
			// Wait for event processing to finish.
			<-l.pingAfter
		case f := <-l.tasks:
			f()
		case <-l.pingQuit:
			return ErrLoopQuit
		case <-ctx.Done():
			for _, f := range l.shutdown {
				f()
			}
			xevent.Quit(l.xu)
			return ctx.Err()
		}
	}
}
