package uow

import (
	"context"
	"errors"
	"time"

	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/pkg/logger"
	"github.com/suteetoe/inventory-service/pkg/metrics"
	"go.uber.org/zap"
)

// Handler executes a call and reports its outcome
type Handler func(ctx context.Context, call Call) error

// Interceptor wraps a handler with cross-cutting behaviour
type Interceptor func(next Handler) Handler

// Chain composes interceptors so the first one is outermost
func Chain(interceptors ...Interceptor) Interceptor {
	return func(next Handler) Handler {
		for i := len(interceptors) - 1; i >= 0; i-- {
			next = interceptors[i](next)
		}
		return next
	}
}

// Status is the outcome label for metrics and logs
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	return errs.KindOf(err).String()
}

// Metrics records an operation counter and duration for every call
func Metrics(m *metrics.Metrics) Interceptor {
	return func(next Handler) Handler {
		return func(ctx context.Context, call Call) error {
			start := time.Now()
			err := next(ctx, call)
			m.RecordOperation(call.Name, Status(err), time.Since(start))
			return err
		}
	}
}

// Logging writes one structured line per call. Storage failures are logged
// with the wrapped cause, which is never returned to API callers.
func Logging(base *zap.Logger) Interceptor {
	return func(next Handler) Handler {
		return func(ctx context.Context, call Call) error {
			start := time.Now()
			err := next(ctx, call)

			log := base
			if l, ok := logger.Lookup(ctx); ok {
				log = l
			}
			fields := []zap.Field{
				zap.String("operation", call.Name),
				zap.Duration("duration", time.Since(start)),
			}

			switch errs.KindOf(err) {
			case 0:
				log.Info("Operation committed", fields...)
			case errs.KindPersistence:
				fields = append(fields, zap.String("code", errs.CodeOf(err)), zap.Error(err))
				if inner := unwrapCause(err); inner != nil {
					fields = append(fields, zap.NamedError("cause", inner))
				}
				log.Error("Operation rolled back", fields...)
			default:
				fields = append(fields, zap.String("kind", errs.KindOf(err).String()),
					zap.String("code", errs.CodeOf(err)), zap.String("reason", errs.PublicMessage(err)))
				log.Warn("Operation rejected", fields...)
			}
			return err
		}
	}
}

func unwrapCause(err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Err
	}
	return nil
}
