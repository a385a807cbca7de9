package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"basegraph.app/ticketsync/common/logger"
	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/event"
	"basegraph.app/ticketsync/internal/model"
	"basegraph.app/ticketsync/internal/strategy"
)

// DefectReporter receives failures that point at a bug or an unexpected
// payload rather than an unavailable tracker.
type DefectReporter func(ctx context.Context, env event.Envelope, kind event.Kind, err error)

type Option func(*Dispatcher)

func WithDefectReporter(r DefectReporter) Option {
	return func(d *Dispatcher) {
		d.reportDefect = r
	}
}

// Dispatcher classifies an envelope, runs the matching strategy and always
// returns a well-formed result. It never retries.
type Dispatcher struct {
	registry     *strategy.Registry
	reportDefect DefectReporter
}

func New(registry *strategy.Registry, opts ...Option) *Dispatcher {
	if registry == nil {
		registry = strategy.NewRegistry()
	}
	d := &Dispatcher{registry: registry}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// PanicError wraps a value recovered from a panicking strategy.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (d *Dispatcher) Process(ctx context.Context, env event.Envelope, conns strategy.Connections, cfg config.TransitionConfig) *model.Result {
	kind := event.Classify(env)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		EventKind: logger.Ptr(kind.String()),
		Component: "ticketsync.dispatch",
	})
	sc := logger.StartSpan(ctx, "dispatch.process")
	defer sc.End()
	ctx = sc.Context()
	sc.Span().SetAttributes(
		attribute.String("event.kind", kind.String()),
		attribute.String("event.category", env.Category),
		attribute.String("event.action", env.Action),
	)

	result, err := d.execute(ctx, env, kind, conns, cfg)
	if err != nil {
		sc.RecordError(err)
		sc.Span().SetStatus(codes.Error, "strategy failed")
		slog.ErrorContext(ctx, "event processing failed", "error", err)

		if d.reportDefect != nil {
			d.reportDefect(ctx, env, kind, err)
		}
		result = model.ErrorResult(fmt.Sprintf("Failed to process %s event: %s", kind, failureClass(err)))
	}
	if result == nil {
		result = model.ErrorResult(fmt.Sprintf("Failed to process %s event: no result", kind))
	}

	result.Detail("event_kind", kind.String())
	sc.Span().SetAttributes(
		attribute.String("result.status", string(result.Status)),
		attribute.Int("result.actions", len(result.Actions)),
	)
	return result
}

func (d *Dispatcher) execute(ctx context.Context, env event.Envelope, kind event.Kind, conns strategy.Connections, cfg config.TransitionConfig) (result *model.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &PanicError{Value: r}
		}
	}()
	return d.registry.Lookup(kind).Execute(ctx, env, conns, cfg)
}

// failureClass describes err for the caller without exposing payload
// contents or stack traces.
func failureClass(err error) string {
	var panicErr *PanicError
	switch {
	case errors.As(err, &panicErr):
		return "internal error"
	case errors.Is(err, strategy.ErrMalformedPayload):
		return err.Error()
	default:
		return "internal error"
	}
}
