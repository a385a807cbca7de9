package strategy

import (
	"context"
	"fmt"
	"log/slog"

	"basegraph.app/ticketsync/common/logger"
	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/model"
)

const missingTicketComment = "This pull request doesn't appear to reference a Jira ticket. " +
	"Please include the Jira issue key in the PR title or description " +
	"(e.g., `PROJ-123: Add new feature`).\n\n" +
	"This helps us automatically track progress in Jira."

// transitionAll moves every key to status, one call per key in key order.
// A failed key is recorded and the remaining keys are still attempted.
func transitionAll(ctx context.Context, result *model.Result, conns Connections, cfg config.TransitionConfig, pr pullRequest, status string) {
	tracker := conns.tracker()

	for _, key := range result.TicketKeys {
		keyCtx := logger.WithLogFields(ctx, logger.LogFields{TicketKey: logger.Ptr(key)})

		if cfg.CommentOnTransition {
			note := fmt.Sprintf("PR #%d (%s) - transitioning to %s\n%s", pr.Number, pr.Title, status, pr.URL)
			if err := tracker.AddComment(keyCtx, key, note); err != nil {
				slog.WarnContext(keyCtx, "could not annotate ticket before transition", "error", err)
			}
		}

		action := model.Action{
			Operation: model.OperationTransition,
			TicketKey: key,
			Target:    status,
		}
		if err := tracker.TransitionIssue(keyCtx, key, status); err != nil {
			action.Description = fmt.Sprintf("Failed to transition %s to %s: %v", key, status, err)
			slog.WarnContext(keyCtx, "ticket transition failed", "target_status", status, "error", err)
		} else {
			action.Success = true
			action.Description = fmt.Sprintf("Transitioned %s to %s", key, status)
			slog.InfoContext(keyCtx, "ticket transitioned", "target_status", status)
		}
		result.Record(action)
	}
}

// commentAll adds body as a comment on every key in key order.
func commentAll(ctx context.Context, result *model.Result, conns Connections, body string) {
	tracker := conns.tracker()

	for _, key := range result.TicketKeys {
		keyCtx := logger.WithLogFields(ctx, logger.LogFields{TicketKey: logger.Ptr(key)})

		action := model.Action{
			Operation: model.OperationComment,
			TicketKey: key,
		}
		if err := tracker.AddComment(keyCtx, key, body); err != nil {
			action.Description = fmt.Sprintf("Failed to add comment to %s: %v", key, err)
			slog.WarnContext(keyCtx, "ticket comment failed", "error", err)
		} else {
			action.Success = true
			action.Description = fmt.Sprintf("Added comment to %s", key)
		}
		result.Record(action)
	}
}

// commentMissingTicket asks the pull request author to reference a ticket.
// It reports whether a comment was attempted.
func commentMissingTicket(ctx context.Context, result *model.Result, conns Connections, pr pullRequest) bool {
	if conns.Commenter == nil {
		slog.WarnContext(ctx, "no ticket key found and pull request commenting is not configured", "pr_number", pr.Number)
		return false
	}

	action := model.Action{
		Operation: model.OperationPRComment,
		Target:    fmt.Sprintf("#%d", pr.Number),
	}
	if err := conns.Commenter.CommentOnPullRequest(ctx, pr.Ref, missingTicketComment); err != nil {
		action.Description = fmt.Sprintf("Failed to comment on PR #%d: %v", pr.Number, err)
		slog.WarnContext(ctx, "missing ticket comment failed", "pr_number", pr.Number, "error", err)
	} else {
		action.Success = true
		action.Description = fmt.Sprintf("No Jira keys found in PR - comment added to PR #%d", pr.Number)
	}
	result.Record(action)
	return true
}
