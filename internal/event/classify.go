package event

import "strings"

// Classify maps an envelope to its semantic kind. It is total: anything it
// does not recognize is KindUnhandled.
func Classify(env Envelope) Kind {
	if env.Category == CategoryPing || IsPing(env.Payload) {
		return KindPing
	}

	switch env.Category {
	case CategoryPullRequest:
		return classifyPullRequest(env)
	case CategoryPullRequestReview:
		if env.Action != "submitted" {
			return KindUnhandled
		}
		return classifyReview(env.Payload)
	case CategoryIssueComment:
		if env.Action == "created" {
			return KindIssueCommentCreated
		}
	case CategoryPush:
		return KindPush
	}

	return KindUnhandled
}

// IsPing recognizes a GitHub ping by its body, which carries zen and hook_id.
func IsPing(p Payload) bool {
	return p.Has("zen") && p.Has("hook_id")
}

func classifyPullRequest(env Envelope) Kind {
	switch env.Action {
	case "opened":
		return KindPullRequestOpened
	case "reopened":
		return KindPullRequestReopened
	case "synchronize":
		return KindPullRequestSynchronized
	case "closed":
		if merged, _ := env.Payload.Bool("pull_request", "merged"); merged {
			return KindPullRequestMerged
		}
		return KindPullRequestClosedUnmerged
	}
	return KindUnhandled
}

func classifyReview(p Payload) Kind {
	state, _ := p.String("review", "state")
	switch strings.ToLower(state) {
	case "approved":
		return KindReviewApproved
	case "changes_requested":
		return KindReviewChangesRequested
	}
	return KindReviewOtherSubmitted
}
