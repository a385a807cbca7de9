package mapper

import (
	"context"
	"fmt"

	"basegraph.app/ticketsync/internal/event"
)

const (
	headerGitHubEvent    = "X-GitHub-Event"
	headerGitHubDelivery = "X-GitHub-Delivery"
)

type GitHubEventMapper struct{}

func NewGitHubEventMapper() *GitHubEventMapper {
	return &GitHubEventMapper{}
}

// Map takes the category from X-GitHub-Event. A body shaped like a ping is
// accepted without the header; anything else without it is rejected.
func (m *GitHubEventMapper) Map(ctx context.Context, body map[string]any, headers map[string]string) (event.Envelope, error) {
	payload := event.Payload(body)
	category := header(headers, headerGitHubEvent)
	if category == "" {
		if !event.IsPing(payload) {
			return event.Envelope{}, fmt.Errorf("%w: %s", ErrMissingEventHeader, headerGitHubEvent)
		}
		category = event.CategoryPing
	}

	return event.NewEnvelope(event.SourceGitHub, category, header(headers, headerGitHubDelivery), payload), nil
}
