package mapper

import (
	"context"
	"fmt"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"basegraph.app/ticketsync/internal/event"
)

const (
	headerGitLabEvent     = "X-Gitlab-Event"
	headerGitLabEventUUID = "X-Gitlab-Event-UUID"
)

type GitLabEventMapper struct{}

func NewGitLabEventMapper() *GitLabEventMapper {
	return &GitLabEventMapper{}
}

// Map rewrites merge request, note and push hooks into the payload shape
// GitHub sends for the equivalent event, so classification and strategies
// only deal with one vocabulary. Other hooks keep their object_kind as the
// category and end up unhandled.
func (m *GitLabEventMapper) Map(ctx context.Context, body map[string]any, headers map[string]string) (event.Envelope, error) {
	p := event.Payload(body)
	hook := gitlab.EventType(header(headers, headerGitLabEvent))
	objectKind := p.StringOr("", "object_kind")
	if hook == "" && objectKind == "" {
		return event.Envelope{}, fmt.Errorf("%w: %s", ErrMissingEventHeader, headerGitLabEvent)
	}

	deliveryID := header(headers, headerGitLabEventUUID)

	switch {
	case hook == gitlab.EventTypeMergeRequest || objectKind == "merge_request":
		return m.mapMergeRequest(p, deliveryID), nil
	case hook == gitlab.EventTypeNote || objectKind == "note":
		return m.mapNote(p, deliveryID), nil
	case hook == gitlab.EventTypePush || objectKind == "push":
		return m.mapPush(p, deliveryID), nil
	}

	category := objectKind
	if category == "" {
		category = strings.ToLower(strings.ReplaceAll(strings.TrimSuffix(string(hook), " Hook"), " ", "_"))
	}
	return event.Envelope{
		Source:     event.SourceGitLab,
		Category:   category,
		Action:     p.StringOr("", "object_attributes", "action"),
		DeliveryID: deliveryID,
		Payload:    p,
	}, nil
}

func (m *GitLabEventMapper) mapMergeRequest(p event.Payload, deliveryID string) event.Envelope {
	attrs, _ := p.Map("object_attributes")
	pr := pullRequestFromMergeRequest(p, attrs)

	category := event.CategoryPullRequest
	var action string
	out := event.Payload{
		"pull_request": pr,
		"repository":   repositoryFromProject(p),
		"project_id":   projectID(p),
		"sender":       map[string]any{"login": p.StringOr("", "user", "username")},
	}

	switch gitlabAction := attrs.StringOr("", "action"); gitlabAction {
	case "open":
		action = "opened"
	case "reopen":
		action = "reopened"
	case "merge":
		action = "closed"
		pr["merged"] = true
	case "close":
		action = "closed"
		pr["merged"] = false
	case "update":
		// Only updates that push commits carry oldrev.
		if attrs.Has("oldrev") {
			action = "synchronize"
		} else {
			action = "edited"
		}
	case "approved", "approval":
		category = event.CategoryPullRequestReview
		action = "submitted"
		out["review"] = map[string]any{
			"state": "approved",
			"user":  map[string]any{"login": p.StringOr("", "user", "username")},
		}
	default:
		action = gitlabAction
	}
	out["action"] = action

	return event.Envelope{
		Source:     event.SourceGitLab,
		Category:   category,
		Action:     action,
		DeliveryID: deliveryID,
		Payload:    out,
	}
}

func (m *GitLabEventMapper) mapNote(p event.Payload, deliveryID string) event.Envelope {
	attrs, _ := p.Map("object_attributes")
	if attrs.StringOr("", "noteable_type") != "MergeRequest" {
		return event.Envelope{
			Source:     event.SourceGitLab,
			Category:   "note",
			Action:     strings.ToLower(attrs.StringOr("", "noteable_type")),
			DeliveryID: deliveryID,
			Payload:    p,
		}
	}

	mr, _ := p.Map("merge_request")
	iid, _ := mr.Int("iid")
	out := event.Payload{
		"action": "created",
		"issue": map[string]any{
			"number":   float64(iid),
			"title":    mr.StringOr("", "title"),
			"html_url": mr.StringOr("", "url"),
		},
		"comment": map[string]any{
			"body": attrs.StringOr("", "note"),
			"user": map[string]any{"login": p.StringOr("", "user", "username")},
		},
		"repository": repositoryFromProject(p),
		"project_id": projectID(p),
	}

	return event.Envelope{
		Source:     event.SourceGitLab,
		Category:   event.CategoryIssueComment,
		Action:     "created",
		DeliveryID: deliveryID,
		Payload:    out,
	}
}

func (m *GitLabEventMapper) mapPush(p event.Payload, deliveryID string) event.Envelope {
	commits := make([]any, 0)
	for _, c := range p.Maps("commits") {
		commits = append(commits, map[string]any{
			"id":      c.StringOr("", "id"),
			"message": c.StringOr("", "message"),
		})
	}

	out := event.Payload{
		"ref":        p.StringOr("", "ref"),
		"before":     p.StringOr("", "before"),
		"after":      p.StringOr("", "after"),
		"commits":    commits,
		"repository": repositoryFromProject(p),
		"project_id": projectID(p),
	}

	return event.Envelope{
		Source:     event.SourceGitLab,
		Category:   event.CategoryPush,
		DeliveryID: deliveryID,
		Payload:    out,
	}
}

func pullRequestFromMergeRequest(p, attrs event.Payload) map[string]any {
	iid, _ := attrs.Int("iid")
	return map[string]any{
		"number":   float64(iid),
		"title":    attrs.StringOr("", "title"),
		"body":     attrs.StringOr("", "description"),
		"html_url": attrs.StringOr("", "url"),
		"state":    attrs.StringOr("", "state"),
		"merged":   attrs.StringOr("", "state") == "merged",
		"head": map[string]any{
			"ref": attrs.StringOr("", "source_branch"),
			"sha": attrs.StringOr("", "last_commit", "id"),
		},
		"base": map[string]any{
			"ref":  attrs.StringOr("", "target_branch"),
			"repo": repositoryFromProject(p),
		},
		"user": map[string]any{"login": p.StringOr("", "user", "username")},
	}
}

func repositoryFromProject(p event.Payload) map[string]any {
	namespace := p.StringOr("", "project", "namespace")
	if path := p.StringOr("", "project", "path_with_namespace"); path != "" {
		if i := strings.LastIndex(path, "/"); i > 0 {
			namespace = path[:i]
		}
	}
	return map[string]any{
		"id":        float64(projectID(p)),
		"name":      p.StringOr("", "project", "name"),
		"full_name": p.StringOr("", "project", "path_with_namespace"),
		"html_url":  p.StringOr("", "project", "web_url"),
		"owner":     map[string]any{"login": namespace},
	}
}

func projectID(p event.Payload) int64 {
	if id, ok := p.Int("project", "id"); ok {
		return id
	}
	id, _ := p.Int("project_id")
	return id
}
