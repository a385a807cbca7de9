package issue_tracker

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"
)

type JiraParams struct {
	BaseURL   string // e.g. https://your-org.atlassian.net
	UserEmail string
	APIToken  string
	Timeout   time.Duration
}

type jiraIssueTrackerService struct {
	client *jira.Client
}

func NewJiraIssueTrackerService(params JiraParams) (IssueTrackerService, error) {
	if params.BaseURL == "" {
		return nil, fmt.Errorf("jira base url is required")
	}

	transport := jira.BasicAuthTransport{
		Username: params.UserEmail,
		Password: params.APIToken,
	}
	httpClient := transport.Client()
	if params.Timeout > 0 {
		httpClient.Timeout = params.Timeout
	}

	return newJiraIssueTrackerService(httpClient, params.BaseURL)
}

func newJiraIssueTrackerService(httpClient *http.Client, baseURL string) (IssueTrackerService, error) {
	client, err := jira.NewClient(httpClient, strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("creating jira client: %w", err)
	}
	return &jiraIssueTrackerService{client: client}, nil
}

// TransitionIssue moves the issue to targetStatus using the first transition
// whose name or destination status name matches case-insensitively.
func (s *jiraIssueTrackerService) TransitionIssue(ctx context.Context, issueKey, targetStatus string) error {
	transitions, _, err := s.client.Issue.GetTransitionsWithContext(ctx, issueKey)
	if err != nil {
		return fmt.Errorf("fetching transitions for %s: %w", issueKey, err)
	}

	transitionID, ok := findTransition(transitions, targetStatus)
	if !ok {
		return fmt.Errorf("%w to status '%s'", ErrNoTransition, targetStatus)
	}

	if _, err := s.client.Issue.DoTransitionWithContext(ctx, issueKey, transitionID); err != nil {
		return fmt.Errorf("transitioning %s: %w", issueKey, err)
	}
	return nil
}

func (s *jiraIssueTrackerService) AddComment(ctx context.Context, issueKey, body string) error {
	if _, _, err := s.client.Issue.AddCommentWithContext(ctx, issueKey, &jira.Comment{Body: body}); err != nil {
		return fmt.Errorf("adding comment to %s: %w", issueKey, err)
	}
	return nil
}

func findTransition(transitions []jira.Transition, targetStatus string) (string, bool) {
	for _, t := range transitions {
		if strings.EqualFold(t.Name, targetStatus) || strings.EqualFold(t.To.Name, targetStatus) {
			return t.ID, true
		}
	}
	return "", false
}
