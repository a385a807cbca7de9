package integration

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"basegraph.app/ticketsync/internal/model"
)

type GitLabParams struct {
	Token       string
	InstanceURL string // without /api/v4. Empty means gitlab.com.
	Timeout     time.Duration
}

type gitLabCommenter struct {
	client *gitlab.Client
}

func NewGitLabCommenter(params GitLabParams) (PullRequestCommenter, error) {
	return newGitLabCommenter(params.InstanceURL, params.Token, &http.Client{Timeout: params.Timeout})
}

func newGitLabCommenter(instanceURL, token string, httpClient *http.Client) (*gitLabCommenter, error) {
	opts := []gitlab.ClientOptionFunc{gitlab.WithHTTPClient(httpClient)}
	if instanceURL != "" {
		opts = append(opts, gitlab.WithBaseURL(strings.TrimSuffix(instanceURL, "/")+"/api/v4"))
	}

	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &gitLabCommenter{client: client}, nil
}

// CommentOnPullRequest adds a note to the merge request identified by the
// project id and merge request iid.
func (c *gitLabCommenter) CommentOnPullRequest(ctx context.Context, pr model.PullRequestRef, body string) error {
	if pr.ProjectID <= 0 || pr.Number <= 0 {
		return fmt.Errorf("incomplete gitlab merge request reference %d!%d", pr.ProjectID, pr.Number)
	}

	_, _, err := c.client.Notes.CreateMergeRequestNote(
		pr.ProjectID,
		int64(pr.Number),
		&gitlab.CreateMergeRequestNoteOptions{Body: gitlab.Ptr(body)},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("commenting on merge request %d!%d: %w", pr.ProjectID, pr.Number, err)
	}
	return nil
}
