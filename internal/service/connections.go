package service

import (
	"context"
	"fmt"

	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/event"
	"basegraph.app/ticketsync/internal/service/integration"
	"basegraph.app/ticketsync/internal/service/issue_tracker"
	"basegraph.app/ticketsync/internal/strategy"
)

// NewConnections builds the tracker and pull request clients that cfg has
// credentials for. The returned status marks which ones were configured.
func NewConnections(ctx context.Context, cfg config.Config) (strategy.Connections, HealthStatus, error) {
	var (
		conns  strategy.Connections
		status HealthStatus
	)

	if cfg.Jira.Enabled() {
		tracker, err := issue_tracker.NewJiraIssueTrackerService(issue_tracker.JiraParams{
			BaseURL:   cfg.Jira.BaseURL,
			UserEmail: cfg.Jira.UserEmail,
			APIToken:  cfg.Jira.APIToken,
			Timeout:   cfg.Jira.Timeout,
		})
		if err != nil {
			return strategy.Connections{}, HealthStatus{}, fmt.Errorf("creating jira client: %w", err)
		}
		conns.Tracker = tracker
		status.JiraConnected = true
	} else {
		conns.Tracker = issue_tracker.NewUnconfiguredIssueTracker()
	}

	commenters := make(map[string]integration.PullRequestCommenter)
	if cfg.GitHub.Enabled() {
		gh, err := integration.NewGitHubCommenter(ctx, integration.GitHubParams{
			Token:   cfg.GitHub.Token,
			BaseURL: cfg.GitHub.BaseURL,
			Timeout: cfg.Jira.Timeout,
		})
		if err != nil {
			return strategy.Connections{}, HealthStatus{}, fmt.Errorf("creating github client: %w", err)
		}
		commenters[string(event.SourceGitHub)] = gh
		status.GitHubConnected = true
	}
	if cfg.GitLab.Enabled() {
		gl, err := integration.NewGitLabCommenter(integration.GitLabParams{
			Token:       cfg.GitLab.Token,
			InstanceURL: cfg.GitLab.BaseURL,
			Timeout:     cfg.Jira.Timeout,
		})
		if err != nil {
			return strategy.Connections{}, HealthStatus{}, fmt.Errorf("creating gitlab client: %w", err)
		}
		commenters[string(event.SourceGitLab)] = gl
		status.GitLabConnected = true
	}
	conns.Commenter = integration.NewSourceRouter(commenters)

	return conns, status, nil
}
