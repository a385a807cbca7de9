package strategy

import (
	"context"
	"errors"

	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/event"
	"basegraph.app/ticketsync/internal/model"
	"basegraph.app/ticketsync/internal/service/integration"
	"basegraph.app/ticketsync/internal/service/issue_tracker"
)

// ErrMalformedPayload is returned, wrapped with the missing field, when a
// payload lacks an object its strategy cannot work without.
var ErrMalformedPayload = errors.New("malformed payload")

// Connections are the outbound clients a strategy may call.
type Connections struct {
	Tracker issue_tracker.IssueTrackerService
	// Commenter is nil when no pull request provider credentials are configured.
	Commenter integration.PullRequestCommenter
}

func (c Connections) tracker() issue_tracker.IssueTrackerService {
	if c.Tracker == nil {
		return issue_tracker.NewUnconfiguredIssueTracker()
	}
	return c.Tracker
}

// Strategy turns one classified event into tracker operations. Per-key tracker
// failures are recorded on the result; a returned error means the event itself
// could not be handled.
type Strategy interface {
	Execute(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error)
}

// Func adapts an ordinary function to Strategy.
type Func func(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error)

func (f Func) Execute(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	return f(ctx, env, conns, cfg)
}
