package event

// Source identifies the provider a webhook was received from.
type Source string

const (
	SourceGitHub Source = "github"
	SourceGitLab Source = "gitlab"
)

// Categories use GitHub's event names. Other providers are normalized onto
// these by the webhook mappers.
const (
	CategoryPullRequest       = "pull_request"
	CategoryPullRequestReview = "pull_request_review"
	CategoryIssueComment      = "issue_comment"
	CategoryPush              = "push"
	CategoryPing              = "ping"
)

// Envelope is the normalized (category, action, payload) triple derived from
// an inbound webhook body. It is passed by value and never mutated.
type Envelope struct {
	Source     Source
	Category   string
	Action     string
	DeliveryID string
	Payload    Payload
}

// NewEnvelope builds an envelope, reading the action from the payload when
// the provider carries it there.
func NewEnvelope(source Source, category, deliveryID string, payload Payload) Envelope {
	action, _ := payload.String("action")
	return Envelope{
		Source:     source,
		Category:   category,
		Action:     action,
		DeliveryID: deliveryID,
		Payload:    payload,
	}
}

// Label is "category/action", or just the category when there is no action.
func (e Envelope) Label() string {
	if e.Action == "" {
		return e.Category
	}
	return e.Category + "/" + e.Action
}
