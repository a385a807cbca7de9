package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// The HTTP boundary sets the delivery fields, the dispatcher adds the event kind,
// and strategies add the ticket key while they work on it.
type LogFields struct {
	DeliveryID    *string // Webhook delivery ID (X-GitHub-Delivery, X-Gitlab-Event-UUID or generated)
	Provider      *string // "github" or "gitlab"
	EventCategory *string // e.g. "pull_request"
	EventAction   *string // e.g. "opened"
	EventKind     *string // Classified kind, e.g. "pull_request_merged"
	TicketKey     *string // Jira key currently being acted on
	Component     string  // Component name (OTel semantic convention style, e.g., "ticketsync.dispatch")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.DeliveryID != nil {
		result.DeliveryID = new.DeliveryID
	}
	if new.Provider != nil {
		result.Provider = new.Provider
	}
	if new.EventCategory != nil {
		result.EventCategory = new.EventCategory
	}
	if new.EventAction != nil {
		result.EventAction = new.EventAction
	}
	if new.EventKind != nil {
		result.EventKind = new.EventKind
	}
	if new.TicketKey != nil {
		result.TicketKey = new.TicketKey
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{TicketKey: logger.Ptr(key)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
