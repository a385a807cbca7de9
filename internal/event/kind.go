package event

// Kind is the semantic event kind an envelope is classified into.
type Kind string

const (
	KindPullRequestOpened         Kind = "pull_request_opened"
	KindPullRequestReopened       Kind = "pull_request_reopened"
	KindPullRequestMerged         Kind = "pull_request_merged"
	KindPullRequestClosedUnmerged Kind = "pull_request_closed_unmerged"
	KindPullRequestSynchronized   Kind = "pull_request_synchronized"
	KindReviewApproved            Kind = "review_approved"
	KindReviewChangesRequested    Kind = "review_changes_requested"
	KindReviewOtherSubmitted      Kind = "review_other_submitted"
	KindIssueCommentCreated       Kind = "issue_comment_created"
	KindPush                      Kind = "push"
	KindPing                      Kind = "ping"
	KindUnhandled                 Kind = "unhandled"
)

// Kinds lists every kind Classify can return.
var Kinds = []Kind{
	KindPullRequestOpened,
	KindPullRequestReopened,
	KindPullRequestMerged,
	KindPullRequestClosedUnmerged,
	KindPullRequestSynchronized,
	KindReviewApproved,
	KindReviewChangesRequested,
	KindReviewOtherSubmitted,
	KindIssueCommentCreated,
	KindPush,
	KindPing,
	KindUnhandled,
}

func (k Kind) String() string {
	return string(k)
}
