package strategy

import (
	"context"
	"fmt"

	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/event"
	"basegraph.app/ticketsync/internal/model"
	"basegraph.app/ticketsync/internal/ticket"
)

// IssueCommentCreated reports the tickets referenced by the commented issue's
// title. It never changes a ticket.
func IssueCommentCreated(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	comment, ok := env.Payload.Map("comment")
	if !ok {
		return nil, fmt.Errorf("%w: missing comment", ErrMalformedPayload)
	}

	number, _ := env.Payload.Int("issue", "number")
	commenter := comment.StringOr("unknown", "user", "login")
	keys := ticket.ExtractKeys(env.Payload.StringOr("", "issue", "title"))

	result := model.NewResult(fmt.Sprintf("Comment on PR #%d by %s", number, commenter), keys)
	result.Detail("commenter", commenter)
	return result, nil
}

// Push reports tickets referenced by the pushed commit messages without
// acting on them.
func Push(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	ref := env.Payload.StringOr("", "ref")
	commits := env.Payload.Maps("commits")

	messages := make([]string, 0, len(commits))
	for _, c := range commits {
		messages = append(messages, c.StringOr("", "message"))
	}

	result := model.NewResult(fmt.Sprintf("Push to %s with %d commits", ref, len(commits)), ticket.ExtractFromTexts(messages...))
	result.Detail("ref", ref).Detail("commit_count", len(commits))
	return result, nil
}

func Ping(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	zen := env.Payload.StringOr("", "zen")

	var hookID any
	if id, ok := env.Payload.Int("hook_id"); ok {
		hookID = id
	} else if id, ok := env.Payload.String("hook_id"); ok {
		hookID = id
	}

	message := fmt.Sprintf("Pong! Webhook %v connected successfully.", hookID)
	if hookID == nil {
		message = "Pong! Webhook connected successfully."
	}

	result := model.NewResult(message, nil)
	result.Detail("zen", zen).Detail("hook_id", hookID)
	return result, nil
}

// Unhandled acknowledges events nothing is registered for.
func Unhandled(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	category, action := env.Category, env.Action
	if category == "" {
		category = "unknown"
	}
	if action == "" {
		action = "unknown"
	}

	result := model.NewResult(fmt.Sprintf("Received unhandled event: %s/%s", category, action), nil)
	result.Detail("event_type", category).Detail("action", action)
	return result, nil
}
