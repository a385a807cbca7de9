package event_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/ticketsync/internal/event"
)

func envelope(category, action string, payload event.Payload) event.Envelope {
	return event.Envelope{
		Source:   event.SourceGitHub,
		Category: category,
		Action:   action,
		Payload:  payload,
	}
}

var _ = Describe("Classify", func() {
	DescribeTable("pull_request actions",
		func(action string, payload event.Payload, expected event.Kind) {
			Expect(event.Classify(envelope("pull_request", action, payload))).To(Equal(expected))
		},
		Entry("opened", "opened", event.Payload{}, event.KindPullRequestOpened),
		Entry("reopened", "reopened", event.Payload{}, event.KindPullRequestReopened),
		Entry("synchronize", "synchronize", event.Payload{}, event.KindPullRequestSynchronized),
		Entry("closed and merged", "closed",
			event.Payload{"pull_request": map[string]any{"merged": true}}, event.KindPullRequestMerged),
		Entry("closed without merge", "closed",
			event.Payload{"pull_request": map[string]any{"merged": false}}, event.KindPullRequestClosedUnmerged),
		Entry("closed with no merged flag", "closed", event.Payload{}, event.KindPullRequestClosedUnmerged),
		Entry("closed with a non-boolean merged flag", "closed",
			event.Payload{"pull_request": map[string]any{"merged": "yes"}}, event.KindPullRequestClosedUnmerged),
		Entry("edited", "edited", event.Payload{}, event.KindUnhandled),
		Entry("no action", "", event.Payload{}, event.KindUnhandled),
	)

	DescribeTable("pull_request_review submissions",
		func(state any, expected event.Kind) {
			payload := event.Payload{"review": map[string]any{"state": state}}
			Expect(event.Classify(envelope("pull_request_review", "submitted", payload))).To(Equal(expected))
		},
		Entry("approved", "approved", event.KindReviewApproved),
		Entry("approved in upper case", "APPROVED", event.KindReviewApproved),
		Entry("changes requested", "changes_requested", event.KindReviewChangesRequested),
		Entry("commented", "commented", event.KindReviewOtherSubmitted),
		Entry("non-string state", 42, event.KindReviewOtherSubmitted),
	)

	It("treats a review without a review object as another submission", func() {
		Expect(event.Classify(envelope("pull_request_review", "submitted", event.Payload{}))).
			To(Equal(event.KindReviewOtherSubmitted))
	})

	It("ignores non-submitted review actions", func() {
		Expect(event.Classify(envelope("pull_request_review", "dismissed", event.Payload{}))).
			To(Equal(event.KindUnhandled))
	})

	It("classifies created issue comments only", func() {
		Expect(event.Classify(envelope("issue_comment", "created", event.Payload{}))).
			To(Equal(event.KindIssueCommentCreated))
		Expect(event.Classify(envelope("issue_comment", "deleted", event.Payload{}))).
			To(Equal(event.KindUnhandled))
	})

	It("classifies push regardless of action", func() {
		Expect(event.Classify(envelope("push", "", event.Payload{}))).To(Equal(event.KindPush))
	})

	It("recognizes pings by category or by payload shape", func() {
		Expect(event.Classify(envelope("ping", "", event.Payload{}))).To(Equal(event.KindPing))
		Expect(event.Classify(envelope("", "", event.Payload{"zen": "Keep it simple.", "hook_id": 1.0}))).
			To(Equal(event.KindPing))
		Expect(event.Classify(envelope("", "", event.Payload{"zen": "half a ping"}))).
			To(Equal(event.KindUnhandled))
	})

	It("is total over unknown categories and nil payloads", func() {
		for _, category := range []string{"", "release", "workflow_run", "PULL_REQUEST"} {
			Expect(event.Classify(envelope(category, "opened", nil))).To(Equal(event.KindUnhandled))
		}
	})

	It("returns only known kinds", func() {
		combos := []event.Envelope{
			envelope("pull_request", "opened", nil),
			envelope("pull_request", "closed", nil),
			envelope("pull_request_review", "submitted", nil),
			envelope("issue_comment", "created", nil),
			envelope("push", "", nil),
			envelope("ping", "", nil),
			envelope("deployment", "created", nil),
		}
		for _, env := range combos {
			Expect(event.Kinds).To(ContainElement(event.Classify(env)))
		}
	})
})

var _ = Describe("NewEnvelope", func() {
	It("reads the action from the payload", func() {
		env := event.NewEnvelope(event.SourceGitHub, "pull_request", "d-1", event.Payload{"action": "opened"})
		Expect(env.Action).To(Equal("opened"))
		Expect(env.Label()).To(Equal("pull_request/opened"))
	})

	It("leaves the action empty when absent", func() {
		env := event.NewEnvelope(event.SourceGitHub, "push", "d-2", event.Payload{})
		Expect(env.Action).To(BeEmpty())
		Expect(env.Label()).To(Equal("push"))
	})
})

var _ = Describe("Payload", func() {
	var p event.Payload

	BeforeEach(func() {
		Expect(json.Unmarshal([]byte(`{
			"number": 42,
			"ratio": 1.5,
			"pull_request": {"title": "PROJ-1: add x", "merged": true, "head": {"ref": "feature/PROJ-1"}},
			"commits": [{"message": "a"}, "junk", {"message": "b"}],
			"body": null
		}`), &p)).To(Succeed())
	})

	It("walks nested paths", func() {
		ref, ok := p.String("pull_request", "head", "ref")
		Expect(ok).To(BeTrue())
		Expect(ref).To(Equal("feature/PROJ-1"))
		merged, ok := p.Bool("pull_request", "merged")
		Expect(ok).To(BeTrue())
		Expect(merged).To(BeTrue())
	})

	It("fails soft on missing or mistyped segments", func() {
		_, ok := p.String("pull_request", "base", "ref")
		Expect(ok).To(BeFalse())
		_, ok = p.String("pull_request", "title", "deeper")
		Expect(ok).To(BeFalse())
		_, ok = p.Bool("pull_request", "title")
		Expect(ok).To(BeFalse())
		_, ok = p.Map("number")
		Expect(ok).To(BeFalse())
		Expect(p.StringOr("fallback", "missing")).To(Equal("fallback"))
	})

	It("reads JSON numbers as integers", func() {
		n, ok := p.Int("number")
		Expect(ok).To(BeTrue())
		Expect(n).To(Equal(int64(42)))
		_, ok = p.Int("ratio")
		Expect(ok).To(BeFalse())
	})

	It("distinguishes null from absent", func() {
		Expect(p.Has("body")).To(BeTrue())
		_, ok := p.String("body")
		Expect(ok).To(BeFalse())
		Expect(p.Has("nope")).To(BeFalse())
	})

	It("returns only object elements from arrays", func() {
		commits := p.Maps("commits")
		Expect(commits).To(HaveLen(2))
		Expect(commits[1].StringOr("", "message")).To(Equal("b"))
	})

	It("is safe on a nil payload", func() {
		var empty event.Payload
		_, ok := empty.String("anything")
		Expect(ok).To(BeFalse())
		Expect(empty.Maps("commits")).To(BeNil())
	})
})
