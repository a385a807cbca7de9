package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"

	"basegraph.app/ticketsync/core/config"
)

// SetupSentry initializes the global Sentry client. It reports false when no
// DSN is configured.
func SetupSentry(cfg config.SentryConfig, release string) (bool, error) {
	if !cfg.Enabled() {
		return false, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     release,
	}); err != nil {
		return false, fmt.Errorf("sentry init: %w", err)
	}
	return true, nil
}

// FlushSentry waits for buffered events to be sent.
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}

// CaptureDefect logs err and sends it to Sentry with the context's LogFields
// as tags. The hub attached to ctx is used when present.
func CaptureDefect(ctx context.Context, err error, extra map[string]any) {
	if err == nil {
		return
	}

	args := []any{"error", err}
	for k, v := range extra {
		args = append(args, k, v)
	}
	slog.ErrorContext(ctx, "defect captured", args...)

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	fields := GetLogFields(ctx)
	hub.WithScope(func(scope *sentry.Scope) {
		setTag(scope, "delivery_id", fields.DeliveryID)
		setTag(scope, "provider", fields.Provider)
		setTag(scope, "event_category", fields.EventCategory)
		setTag(scope, "event_action", fields.EventAction)
		setTag(scope, "event_kind", fields.EventKind)
		if fields.Component != "" {
			scope.SetTag("component", fields.Component)
		}
		for k, v := range extra {
			scope.SetExtra(k, v)
		}
		hub.CaptureException(err)
	})
}

func setTag(scope *sentry.Scope, key string, value *string) {
	if value != nil && *value != "" {
		scope.SetTag(key, *value)
	}
}
