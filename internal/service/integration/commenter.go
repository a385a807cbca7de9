package integration

import (
	"context"
	"errors"
	"fmt"

	"basegraph.app/ticketsync/internal/model"
)

var ErrUnsupportedSource = errors.New("no commenter for source")

// PullRequestCommenter posts a comment on a pull request or merge request.
type PullRequestCommenter interface {
	CommentOnPullRequest(ctx context.Context, pr model.PullRequestRef, body string) error
}

type sourceRouter struct {
	commenters map[string]PullRequestCommenter
}

// NewSourceRouter routes each comment to the commenter registered for the
// pull request's source. Nil commenters are skipped. It returns nil when no
// commenter is given, so callers can tell that commenting is unavailable.
func NewSourceRouter(commenters map[string]PullRequestCommenter) PullRequestCommenter {
	r := &sourceRouter{commenters: make(map[string]PullRequestCommenter, len(commenters))}
	for source, c := range commenters {
		if c != nil {
			r.commenters[source] = c
		}
	}
	if len(r.commenters) == 0 {
		return nil
	}
	return r
}

func (r *sourceRouter) CommentOnPullRequest(ctx context.Context, pr model.PullRequestRef, body string) error {
	c, ok := r.commenters[pr.Source]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnsupportedSource, pr.Source)
	}
	return c.CommentOnPullRequest(ctx, pr, body)
}
