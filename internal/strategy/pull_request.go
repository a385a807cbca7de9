package strategy

import (
	"context"
	"fmt"

	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/event"
	"basegraph.app/ticketsync/internal/model"
	"basegraph.app/ticketsync/internal/ticket"
)

type pullRequest struct {
	Ref     model.PullRequestRef
	Number  int
	Title   string
	Branch  string
	Body    string
	URL     string
	HeadSHA string
	Merged  bool
	Keys    []string
}

func readPullRequest(env event.Envelope) (pullRequest, error) {
	pr, ok := env.Payload.Map("pull_request")
	if !ok {
		return pullRequest{}, fmt.Errorf("%w: missing pull_request", ErrMalformedPayload)
	}

	number, _ := pr.Int("number")
	merged, _ := pr.Bool("merged")
	out := pullRequest{
		Number:  int(number),
		Title:   pr.StringOr("", "title"),
		Branch:  pr.StringOr("", "head", "ref"),
		Body:    pr.StringOr("", "body"),
		URL:     pr.StringOr("", "html_url"),
		HeadSHA: pr.StringOr("", "head", "sha"),
		Merged:  merged,
	}
	out.Keys = ticket.ExtractFromPullRequest(out.Title, out.Branch, out.Body)
	out.Ref = pullRequestRef(env, out)
	return out, nil
}

func pullRequestRef(env event.Envelope, pr pullRequest) model.PullRequestRef {
	p := env.Payload
	owner := p.StringOr(p.StringOr("", "repository", "owner", "login"), "pull_request", "base", "repo", "owner", "login")
	repo := p.StringOr(p.StringOr("", "repository", "name"), "pull_request", "base", "repo", "name")
	projectID, _ := p.Int("project_id")

	return model.PullRequestRef{
		Source:    string(env.Source),
		Owner:     owner,
		Repo:      repo,
		ProjectID: projectID,
		Number:    pr.Number,
		URL:       pr.URL,
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func PullRequestOpened(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	return pullRequestOpened(ctx, env, conns, cfg, "opened")
}

func PullRequestReopened(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	return pullRequestOpened(ctx, env, conns, cfg, "reopened")
}

// pullRequestOpened moves every referenced ticket to the opened status. A pull
// request without a ticket gets a comment asking for one instead.
func pullRequestOpened(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig, verb string) (*model.Result, error) {
	pr, err := readPullRequest(env)
	if err != nil {
		return nil, err
	}

	result := model.NewResult(fmt.Sprintf("PR #%d %s: %s", pr.Number, verb, pr.Title), pr.Keys)
	result.Detail("pr_number", pr.Number)

	if len(pr.Keys) == 0 {
		if !commentMissingTicket(ctx, result, conns, pr) {
			result.Message += " (no Jira key found; pull request commenting is not configured)"
		}
		return result, nil
	}

	transitionAll(ctx, result, conns, cfg, pr, cfg.StatusOnPROpened)
	return result, nil
}

func PullRequestMerged(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	pr, err := readPullRequest(env)
	if err != nil {
		return nil, err
	}

	result := model.NewResult(fmt.Sprintf("PR #%d merged: %s", pr.Number, pr.Title), pr.Keys)
	result.Detail("pr_number", pr.Number).Detail("merged", true)

	transitionAll(ctx, result, conns, cfg, pr, cfg.StatusOnPRMerged)
	return result, nil
}

func PullRequestClosedUnmerged(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	pr, err := readPullRequest(env)
	if err != nil {
		return nil, err
	}

	result := model.NewResult(fmt.Sprintf("PR #%d closed without merge: %s", pr.Number, pr.Title), pr.Keys)
	result.Detail("pr_number", pr.Number).Detail("merged", false)

	if cfg.StatusOnPRDeclined == "" {
		if len(pr.Keys) > 0 {
			result.Message += " (no declined status configured, tickets left unchanged)"
		}
		return result, nil
	}

	transitionAll(ctx, result, conns, cfg, pr, cfg.StatusOnPRDeclined)
	return result, nil
}

func PullRequestSynchronized(ctx context.Context, env event.Envelope, conns Connections, cfg config.TransitionConfig) (*model.Result, error) {
	pr, err := readPullRequest(env)
	if err != nil {
		return nil, err
	}

	sha := shortSHA(pr.HeadSHA)
	result := model.NewResult(fmt.Sprintf("PR #%d synchronized: %s", pr.Number, sha), pr.Keys)
	result.Detail("pr_number", pr.Number).Detail("head_sha", pr.HeadSHA)

	if cfg.CommentOnPRSync {
		commentAll(ctx, result, conns, fmt.Sprintf("PR #%d updated with new commits. Latest: %s", pr.Number, sha))
	}
	return result, nil
}
