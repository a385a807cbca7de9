package issue_tracker

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned by every call on a tracker that has no
	// credentials.
	ErrNotConfigured = errors.New("issue tracker not configured")

	// ErrNoTransition means the issue's workflow has no transition leading to
	// the requested status from its current state.
	ErrNoTransition = errors.New("no transition found")
)

// IssueTrackerService is the connection the strategies use to move tickets.
// Implementations must be safe for concurrent use. Failures are returned as
// errors, never panics.
type IssueTrackerService interface {
	TransitionIssue(ctx context.Context, issueKey, targetStatus string) error
	AddComment(ctx context.Context, issueKey, body string) error
}

type unconfiguredIssueTracker struct{}

// NewUnconfiguredIssueTracker returns a tracker whose calls all fail with
// ErrNotConfigured, so events are still processed and reported when Jira
// credentials are missing.
func NewUnconfiguredIssueTracker() IssueTrackerService {
	return unconfiguredIssueTracker{}
}

func (unconfiguredIssueTracker) TransitionIssue(ctx context.Context, issueKey, targetStatus string) error {
	return ErrNotConfigured
}

func (unconfiguredIssueTracker) AddComment(ctx context.Context, issueKey, body string) error {
	return ErrNotConfigured
}
