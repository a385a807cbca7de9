package strategy

import (
	"sync"

	"basegraph.app/ticketsync/internal/event"
)

// Registry maps event kinds to strategies. Lookups are total: kinds without a
// registered strategy resolve to Unhandled.
type Registry struct {
	strategies map[event.Kind]Strategy
	mu         sync.RWMutex
}

// NewRegistry returns a registry holding the default strategy for every kind.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[event.Kind]Strategy)}

	r.Register(event.KindPullRequestOpened, Func(PullRequestOpened))
	r.Register(event.KindPullRequestReopened, Func(PullRequestReopened))
	r.Register(event.KindPullRequestMerged, Func(PullRequestMerged))
	r.Register(event.KindPullRequestClosedUnmerged, Func(PullRequestClosedUnmerged))
	r.Register(event.KindPullRequestSynchronized, Func(PullRequestSynchronized))
	r.Register(event.KindReviewApproved, Func(ReviewApproved))
	r.Register(event.KindReviewChangesRequested, Func(ReviewChangesRequested))
	r.Register(event.KindReviewOtherSubmitted, Func(ReviewOtherSubmitted))
	r.Register(event.KindIssueCommentCreated, Func(IssueCommentCreated))
	r.Register(event.KindPush, Func(Push))
	r.Register(event.KindPing, Func(Ping))
	r.Register(event.KindUnhandled, Func(Unhandled))

	return r
}

// Register sets the strategy for kind, replacing any existing one.
func (r *Registry) Register(kind event.Kind, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[kind] = s
}

func (r *Registry) Lookup(kind event.Kind) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.strategies[kind]; ok && s != nil {
		return s
	}
	return Func(Unhandled)
}
