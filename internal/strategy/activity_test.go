package strategy_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/event"
	"basegraph.app/ticketsync/internal/model"
	"basegraph.app/ticketsync/internal/strategy"
)

var _ = Describe("Informational strategies", func() {
	var (
		ctx     context.Context
		tracker *fakeTracker
		conns   strategy.Connections
		cfg     config.TransitionConfig
	)

	BeforeEach(func() {
		ctx = context.Background()
		tracker = &fakeTracker{}
		conns = strategy.Connections{Tracker: tracker}
		cfg = config.DefaultTransitions()
	})

	AfterEach(func() {
		Expect(tracker.calls).To(BeEmpty())
	})

	Describe("IssueCommentCreated", func() {
		It("reports keys from the issue title and the commenter", func() {
			env := envelope(event.CategoryIssueComment, event.Payload{
				"action":  "created",
				"issue":   map[string]any{"number": float64(5), "title": "PROJ-8: fix"},
				"comment": map[string]any{"body": "lgtm", "user": map[string]any{"login": "octocat"}},
			})

			result, err := strategy.IssueCommentCreated(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(model.StatusSuccess))
			Expect(result.Message).To(Equal("Comment on PR #5 by octocat"))
			Expect(result.TicketKeys).To(Equal([]string{"PROJ-8"}))
			Expect(result.Details).To(HaveKeyWithValue("commenter", "octocat"))
		})

		It("rejects a payload without a comment", func() {
			env := envelope(event.CategoryIssueComment, event.Payload{"action": "created"})

			_, err := strategy.IssueCommentCreated(ctx, env, conns, cfg)
			Expect(err).To(MatchError(strategy.ErrMalformedPayload))
		})
	})

	Describe("Push", func() {
		It("reports keys from commit messages without acting on them", func() {
			env := envelope(event.CategoryPush, event.Payload{
				"ref": "refs/heads/main",
				"commits": []any{
					map[string]any{"message": "PROJ-1 first"},
					map[string]any{"message": "OPS-3 second, see PROJ-1"},
					map[string]any{"message": "no key"},
				},
			})

			result, err := strategy.Push(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Message).To(Equal("Push to refs/heads/main with 3 commits"))
			Expect(result.TicketKeys).To(Equal([]string{"PROJ-1", "OPS-3"}))
			Expect(result.Details).To(HaveKeyWithValue("ref", "refs/heads/main"))
			Expect(result.Details).To(HaveKeyWithValue("commit_count", 3))
			Expect(result.Actions).To(BeEmpty())
		})

		It("handles a push without commits", func() {
			env := envelope(event.CategoryPush, event.Payload{"ref": "refs/tags/v1"})

			result, err := strategy.Push(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Message).To(Equal("Push to refs/tags/v1 with 0 commits"))
			Expect(result.TicketKeys).To(BeEmpty())
		})
	})

	Describe("Ping", func() {
		It("confirms connectivity", func() {
			env := envelope(event.CategoryPing, event.Payload{"zen": "Keep it logically awesome.", "hook_id": float64(123)})

			result, err := strategy.Ping(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(model.StatusSuccess))
			Expect(result.Message).To(Equal("Pong! Webhook 123 connected successfully."))
			Expect(result.Details).To(HaveKeyWithValue("zen", "Keep it logically awesome."))
			Expect(result.Details).To(HaveKeyWithValue("hook_id", int64(123)))
		})
	})

	Describe("Unhandled", func() {
		It("acknowledges the event without actions", func() {
			env := event.Envelope{Category: "deployment", Action: "created"}

			result, err := strategy.Unhandled(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(model.StatusSuccess))
			Expect(result.Message).To(Equal("Received unhandled event: deployment/created"))
			Expect(result.Actions).To(BeEmpty())
		})

		It("names a missing action as unknown", func() {
			result, err := strategy.Unhandled(ctx, event.Envelope{Category: "star"}, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Message).To(Equal("Received unhandled event: star/unknown"))
		})
	})
})
