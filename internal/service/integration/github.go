package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v61/github"
	"golang.org/x/oauth2"

	"basegraph.app/ticketsync/internal/model"
)

type GitHubParams struct {
	Token   string
	BaseURL string // API root, e.g. https://github.example.com/api/v3. Empty means api.github.com.
	Timeout time.Duration
}

type gitHubCommenter struct {
	client *github.Client
}

func NewGitHubCommenter(ctx context.Context, params GitHubParams) (PullRequestCommenter, error) {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: params.Token}))
	if params.Timeout > 0 {
		httpClient.Timeout = params.Timeout
	}
	return newGitHubCommenter(httpClient, params.BaseURL)
}

func newGitHubCommenter(httpClient *http.Client, baseURL string) (*gitHubCommenter, error) {
	client := github.NewClient(httpClient)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing github api url: %w", err)
		}
		client.BaseURL = u
	}
	return &gitHubCommenter{client: client}, nil
}

func (c *gitHubCommenter) CommentOnPullRequest(ctx context.Context, pr model.PullRequestRef, body string) error {
	if pr.Owner == "" || pr.Repo == "" || pr.Number <= 0 {
		return fmt.Errorf("incomplete github pull request reference %s/%s#%d", pr.Owner, pr.Repo, pr.Number)
	}

	_, _, err := c.client.Issues.CreateComment(ctx, pr.Owner, pr.Repo, pr.Number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("commenting on %s/%s#%d: %w", pr.Owner, pr.Repo, pr.Number, err)
	}
	return nil
}
