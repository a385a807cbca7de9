package strategy_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/event"
	"basegraph.app/ticketsync/internal/model"
	"basegraph.app/ticketsync/internal/service/issue_tracker"
	"basegraph.app/ticketsync/internal/strategy"
)

var _ = Describe("Pull request strategies", func() {
	var (
		ctx       context.Context
		tracker   *fakeTracker
		commenter *fakeCommenter
		conns     strategy.Connections
		cfg       config.TransitionConfig
	)

	BeforeEach(func() {
		ctx = context.Background()
		tracker = &fakeTracker{}
		commenter = &fakeCommenter{}
		conns = strategy.Connections{Tracker: tracker, Commenter: commenter}
		cfg = config.DefaultTransitions()
	})

	Describe("PullRequestOpened", func() {
		It("transitions the referenced ticket to the opened status", func() {
			env := envelope(event.CategoryPullRequest, pullRequestPayload("opened", prFields{number: 7, title: "PROJ-1: add x"}))

			result, err := strategy.PullRequestOpened(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Status).To(Equal(model.StatusSuccess))
			Expect(result.Message).To(Equal("PR #7 opened: PROJ-1: add x"))
			Expect(result.TicketKeys).To(Equal([]string{"PROJ-1"}))
			Expect(result.Actions).To(HaveLen(1))
			Expect(result.Actions[0].Operation).To(Equal(model.OperationTransition))
			Expect(result.Actions[0].Target).To(Equal("In Review"))
			Expect(tracker.callsOf("transition")).To(Equal([]trackerCall{
				{Method: "transition", Key: "PROJ-1", Value: "In Review"},
			}))
		})

		It("annotates the ticket before transitioning it", func() {
			env := envelope(event.CategoryPullRequest, pullRequestPayload("opened", prFields{number: 7, title: "PROJ-1: add x"}))

			_, err := strategy.PullRequestOpened(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(tracker.calls).To(HaveLen(2))
			Expect(tracker.calls[0]).To(Equal(trackerCall{
				Method: "comment",
				Key:    "PROJ-1",
				Value:  "PR #7 (PROJ-1: add x) - transitioning to In Review\nhttps://github.com/acme/api/pull/7",
			}))
			Expect(tracker.calls[1].Method).To(Equal("transition"))
		})

		It("does not count a failed annotation as an action", func() {
			tracker.commentFn = func(key, body string) error { return errTrackerDown }
			env := envelope(event.CategoryPullRequest, pullRequestPayload("opened", prFields{number: 7, title: "PROJ-1: add x"}))

			result, err := strategy.PullRequestOpened(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(model.StatusSuccess))
			Expect(result.Actions).To(HaveLen(1))
		})

		It("skips annotations when disabled", func() {
			cfg.CommentOnTransition = false
			env := envelope(event.CategoryPullRequest, pullRequestPayload("opened", prFields{number: 7, title: "PROJ-1: add x"}))

			_, err := strategy.PullRequestOpened(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(tracker.callsOf("comment")).To(BeEmpty())
		})

		It("uses title, branch and description keys in that order", func() {
			env := envelope(event.CategoryPullRequest, pullRequestPayload("opened", prFields{
				number: 8,
				title:  "CORE-9 tidy",
				branch: "feature/OPS-2-fix",
				body:   "Also closes CORE-9 and WEB-3",
			}))

			result, err := strategy.PullRequestOpened(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.TicketKeys).To(Equal([]string{"CORE-9", "OPS-2", "WEB-3"}))

			var keys []string
			for _, c := range tracker.callsOf("transition") {
				keys = append(keys, c.Key)
			}
			Expect(keys).To(Equal([]string{"CORE-9", "OPS-2", "WEB-3"}))
		})

		It("comments on the pull request when no ticket is referenced", func() {
			env := envelope(event.CategoryPullRequest, pullRequestPayload("opened", prFields{number: 7, title: "add x"}))

			result, err := strategy.PullRequestOpened(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Status).To(Equal(model.StatusSuccess))
			Expect(result.TicketKeys).To(BeEmpty())
			Expect(result.Actions).To(HaveLen(1))
			Expect(result.Actions[0].Operation).To(Equal(model.OperationPRComment))
			Expect(result.Actions[0].Success).To(BeTrue())
			Expect(tracker.calls).To(BeEmpty())

			Expect(commenter.refs).To(Equal([]model.PullRequestRef{{
				Source: "github",
				Owner:  "acme",
				Repo:   "api",
				Number: 7,
				URL:    "https://github.com/acme/api/pull/7",
			}}))
			Expect(commenter.bodies[0]).To(ContainSubstring("PROJ-123"))
		})

		It("reports a failed pull request comment", func() {
			commenter.commentFn = func(pr model.PullRequestRef, body string) error { return errors.New("forbidden") }
			env := envelope(event.CategoryPullRequest, pullRequestPayload("opened", prFields{number: 7, title: "add x"}))

			result, err := strategy.PullRequestOpened(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(model.StatusError))
			Expect(result.Descriptions()[0]).To(ContainSubstring("forbidden"))
		})

		It("skips the comment without failing when no commenter is configured", func() {
			conns.Commenter = nil
			env := envelope(event.CategoryPullRequest, pullRequestPayload("opened", prFields{number: 7, title: "add x"}))

			result, err := strategy.PullRequestOpened(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(model.StatusSuccess))
			Expect(result.Actions).To(BeEmpty())
			Expect(result.Message).To(ContainSubstring("not configured"))
		})

		It("fails every key when the tracker is not configured", func() {
			conns.Tracker = nil
			env := envelope(event.CategoryPullRequest, pullRequestPayload("opened", prFields{number: 7, title: "PROJ-1 PROJ-2"}))

			result, err := strategy.PullRequestOpened(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(model.StatusError))
			Expect(result.Actions).To(HaveLen(2))
			Expect(result.Descriptions()[0]).To(ContainSubstring(issue_tracker.ErrNotConfigured.Error()))
		})

		It("rejects a payload without a pull request", func() {
			env := envelope(event.CategoryPullRequest, event.Payload{"action": "opened"})

			_, err := strategy.PullRequestOpened(ctx, env, conns, cfg)
			Expect(err).To(MatchError(strategy.ErrMalformedPayload))
			Expect(err.Error()).To(ContainSubstring("missing pull_request"))
		})
	})

	Describe("PullRequestReopened", func() {
		It("behaves like opened", func() {
			env := envelope(event.CategoryPullRequest, pullRequestPayload("reopened", prFields{number: 3, title: "PROJ-5 again"}))

			result, err := strategy.PullRequestReopened(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Message).To(Equal("PR #3 reopened: PROJ-5 again"))
			Expect(tracker.callsOf("transition")).To(HaveLen(1))
		})
	})

	Describe("PullRequestMerged", func() {
		It("transitions every key to the merged status", func() {
			env := envelope(event.CategoryPullRequest, pullRequestPayload("closed", prFields{
				number: 9, title: "PROJ-1 and PROJ-2", merged: true,
			}))

			result, err := strategy.PullRequestMerged(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Status).To(Equal(model.StatusSuccess))
			Expect(result.Details).To(HaveKeyWithValue("merged", true))
			Expect(tracker.callsOf("transition")).To(Equal([]trackerCall{
				{Method: "transition", Key: "PROJ-1", Value: "Done"},
				{Method: "transition", Key: "PROJ-2", Value: "Done"},
			}))
		})

		It("reports partial success when one transition fails", func() {
			tracker.transitionFn = func(key, status string) error {
				if key == "PROJ-2" {
					return errTrackerDown
				}
				return nil
			}
			env := envelope(event.CategoryPullRequest, pullRequestPayload("closed", prFields{
				number: 9, title: "PROJ-1 and PROJ-2", merged: true,
			}))

			result, err := strategy.PullRequestMerged(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Status).To(Equal(model.StatusPartial))
			Expect(result.Actions).To(HaveLen(2))
			Expect(result.Actions[0].Success).To(BeTrue())
			Expect(failedActions(result)).To(HaveLen(1))
			Expect(result.Descriptions()).To(Equal([]string{
				"Transitioned PROJ-1 to Done",
				"Failed to transition PROJ-2 to Done: tracker unavailable",
			}))
		})

		It("reports an error when every transition fails", func() {
			tracker.transitionFn = func(key, status string) error { return errTrackerDown }
			env := envelope(event.CategoryPullRequest, pullRequestPayload("closed", prFields{
				number: 9, title: "PROJ-1 and PROJ-2", merged: true,
			}))

			result, err := strategy.PullRequestMerged(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(model.StatusError))
			Expect(tracker.callsOf("transition")).To(HaveLen(2))
		})

		It("succeeds with no actions when no ticket is referenced", func() {
			env := envelope(event.CategoryPullRequest, pullRequestPayload("closed", prFields{number: 9, title: "chore", merged: true}))

			result, err := strategy.PullRequestMerged(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(model.StatusSuccess))
			Expect(result.Actions).To(BeEmpty())
			Expect(commenter.bodies).To(BeEmpty())
		})
	})

	Describe("PullRequestClosedUnmerged", func() {
		It("is a no-op without a declined status", func() {
			env := envelope(event.CategoryPullRequest, pullRequestPayload("closed", prFields{number: 4, title: "PROJ-1"}))

			result, err := strategy.PullRequestClosedUnmerged(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(model.StatusSuccess))
			Expect(result.Actions).To(BeEmpty())
			Expect(result.Message).To(ContainSubstring("no declined status configured"))
			Expect(tracker.calls).To(BeEmpty())
		})

		It("transitions to the declined status when configured", func() {
			cfg.StatusOnPRDeclined = "To Do"
			env := envelope(event.CategoryPullRequest, pullRequestPayload("closed", prFields{number: 4, title: "PROJ-1"}))

			result, err := strategy.PullRequestClosedUnmerged(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Details).To(HaveKeyWithValue("merged", false))
			Expect(tracker.callsOf("transition")).To(Equal([]trackerCall{
				{Method: "transition", Key: "PROJ-1", Value: "To Do"},
			}))
		})
	})

	Describe("PullRequestSynchronized", func() {
		var env event.Envelope

		BeforeEach(func() {
			env = envelope(event.CategoryPullRequest, pullRequestPayload("synchronize", prFields{
				number: 12, title: "PROJ-1 work", sha: "0123456789abcdef",
			}))
		})

		It("does nothing by default", func() {
			result, err := strategy.PullRequestSynchronized(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Message).To(Equal("PR #12 synchronized: 0123456"))
			Expect(result.Details).To(HaveKeyWithValue("head_sha", "0123456789abcdef"))
			Expect(result.Actions).To(BeEmpty())
			Expect(tracker.calls).To(BeEmpty())
		})

		It("comments on each ticket when enabled", func() {
			cfg.CommentOnPRSync = true

			result, err := strategy.PullRequestSynchronized(ctx, env, conns, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Actions).To(HaveLen(1))
			Expect(result.Actions[0].Operation).To(Equal(model.OperationComment))
			Expect(tracker.calls).To(Equal([]trackerCall{{
				Method: "comment",
				Key:    "PROJ-1",
				Value:  "PR #12 updated with new commits. Latest: 0123456",
			}}))
		})
	})
})
