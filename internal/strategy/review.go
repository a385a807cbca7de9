package strategy

import (
	"context"
	"fmt"
	"strings"

	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/event"
	"basegraph.app/ticketsync/internal/model"
)

type review struct {
	State    string
	Reviewer string
}

func readReview(env event.Envelope) (review, error) {
	r, ok := env.Payload.Map("review")
	if !ok {
		return review{}, fmt.Errorf("%w: missing review", ErrMalformedPayload)
	}
	return review{
		State:    strings.ToLower(r.StringOr("", "state")),
		Reviewer: r.StringOr("unknown", "user", "login"),
	}, nil
}

func ReviewApproved(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	return reviewSubmitted(ctx, env, conns, cfg, cfg.StatusOnReviewApproved)
}

func ReviewChangesRequested(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	return reviewSubmitted(ctx, env, conns, cfg, cfg.StatusOnChangesRequested)
}

// ReviewOtherSubmitted reports comment-only and dismissed reviews without
// touching tickets.
func ReviewOtherSubmitted(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	return reviewSubmitted(ctx, env, conns, cfg, "")
}

// reviewSubmitted transitions the pull request's tickets to status, or only
// reports the review when status is empty.
func reviewSubmitted(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig, status string) (*model.Result, error) {
	pr, err := readPullRequest(env)
	if err != nil {
		return nil, err
	}
	rv, err := readReview(env)
	if err != nil {
		return nil, err
	}

	state := rv.State
	if state == "" {
		state = "submitted"
	}

	result := model.NewResult(fmt.Sprintf("PR #%d review %s by %s", pr.Number, state, rv.Reviewer), pr.Keys)
	result.Detail("pr_number", pr.Number).
		Detail("review_state", rv.State).
		Detail("reviewer", rv.Reviewer)

	if status != "" {
		transitionAll(ctx, result, conns, cfg, pr, status)
	}
	return result, nil
}
