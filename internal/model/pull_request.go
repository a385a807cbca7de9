package model

// PullRequestRef identifies a pull request (or GitLab merge request) that can
// be commented on.
type PullRequestRef struct {
	Source    string // "github" or "gitlab"
	Owner     string
	Repo      string
	ProjectID int64 // GitLab project id
	Number    int
	URL       string
}
