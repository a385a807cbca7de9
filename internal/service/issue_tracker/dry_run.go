package issue_tracker

import (
	"context"
	"sync"
)

// Call is one request recorded by a DryRunIssueTracker.
type Call struct {
	Method   string // "transition" or "comment"
	IssueKey string
	Value    string // target status or comment body
}

// DryRunIssueTracker records calls instead of sending them. Every call
// succeeds.
type DryRunIssueTracker struct {
	mu    sync.Mutex
	calls []Call
}

func NewDryRunIssueTracker() *DryRunIssueTracker {
	return &DryRunIssueTracker{}
}

func (t *DryRunIssueTracker) TransitionIssue(ctx context.Context, issueKey, targetStatus string) error {
	t.record(Call{Method: "transition", IssueKey: issueKey, Value: targetStatus})
	return nil
}

func (t *DryRunIssueTracker) AddComment(ctx context.Context, issueKey, body string) error {
	t.record(Call{Method: "comment", IssueKey: issueKey, Value: body})
	return nil
}

func (t *DryRunIssueTracker) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

func (t *DryRunIssueTracker) record(c Call) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, c)
}
