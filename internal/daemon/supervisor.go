package daemon

import (
	"context"
	"errors"
	"log/slog"

	"github.com/thejerf/suture/v4"
)

func newSupervisor(logger *slog.Logger) *suture.Supervisor {
	return suture.New("fluxcore", suture.Spec{
		EventHook: eventHook(logger),
	})
}

func eventHook(logger *slog.Logger) suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			logger.Info("service failed to terminate in a timely manner", "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventServicePanic:
			logger.Error("service panic recovered", "service", e.ServiceName, "panic", e.PanicMsg)
			logger.Debug(e.Stacktrace)
		case suture.EventServiceTerminate:
			logger.Error("service failed", "error", e.Err, "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventBackoff:
			logger.Debug("too many service failures, backing off", "supervisor", e.SupervisorName)
		case suture.EventResume:
			logger.Debug("exiting backoff state", "supervisor", e.SupervisorName)
		default:
			logger.Warn("unknown supervisor event", "type", int(e.Type()))
		}
	}
}

// service forces the use of the String method so events name the service.
type service interface {
	String() string
	suture.Service
}

func add(super *suture.Supervisor, svc service) suture.ServiceToken {
	return super.Add(sanitized{service: svc})
}

type sanitized struct {
	service
}

func (s sanitized) Serve(ctx context.Context) error {
	return sanitizeError(ctx, s.service.Serve(ctx))
}

// sanitizeError keeps a service error from being read as a context error
// unless ctx really is done; suture stops restarting a service that
// returns one.
func sanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var errs []error
	if errors.Is(err, suture.ErrDoNotRestart) {
		errs = append(errs, suture.ErrDoNotRestart)
	}
	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
		errs = append(errs, suture.ErrTerminateSupervisorTree)
	}
	errs = append(errs, errors.New(err.Error()))
	return errors.Join(errs...)
}

type serviceFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (s serviceFunc) String() string { return s.name }

func (s serviceFunc) Serve(ctx context.Context) error { return s.fn(ctx) }
