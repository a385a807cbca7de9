package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/ticketsync/internal/model"
)

var _ = Describe("GitHub commenter", func() {
	var (
		ctx  context.Context
		mock *scmAPIMock
	)

	BeforeEach(func() {
		ctx = context.Background()
		mock = newSCMAPIMock()
		mock.start()
		DeferCleanup(mock.close)
	})

	It("posts an issue comment on the pull request", func() {
		c, err := newGitHubCommenter(http.DefaultClient, mock.baseURL())
		Expect(err).NotTo(HaveOccurred())

		err = c.CommentOnPullRequest(ctx, model.PullRequestRef{
			Source: "github", Owner: "acme", Repo: "api", Number: 7,
		}, "please add a ticket")
		Expect(err).NotTo(HaveOccurred())

		Expect(mock.comments).To(ConsistOf(postedComment{
			Path: "/repos/acme/api/issues/7/comments",
			Body: "please add a ticket",
		}))
	})

	It("reports API failures", func() {
		mock.fail = http.StatusForbidden
		c, err := newGitHubCommenter(http.DefaultClient, mock.baseURL())
		Expect(err).NotTo(HaveOccurred())

		err = c.CommentOnPullRequest(ctx, model.PullRequestRef{
			Source: "github", Owner: "acme", Repo: "api", Number: 7,
		}, "x")
		Expect(err).To(MatchError(ContainSubstring("acme/api#7")))
	})

	It("rejects incomplete references without calling the API", func() {
		c, err := newGitHubCommenter(http.DefaultClient, mock.baseURL())
		Expect(err).NotTo(HaveOccurred())

		err = c.CommentOnPullRequest(ctx, model.PullRequestRef{Source: "github", Number: 7}, "x")
		Expect(err).To(HaveOccurred())
		Expect(mock.comments).To(BeEmpty())
	})
})

var _ = Describe("GitLab commenter", func() {
	var (
		ctx  context.Context
		mock *scmAPIMock
	)

	BeforeEach(func() {
		ctx = context.Background()
		mock = newSCMAPIMock()
		mock.start()
		DeferCleanup(mock.close)
	})

	It("adds a merge request note", func() {
		c, err := newGitLabCommenter(mock.baseURL(), "token", http.DefaultClient)
		Expect(err).NotTo(HaveOccurred())

		err = c.CommentOnPullRequest(ctx, model.PullRequestRef{
			Source: "gitlab", ProjectID: 42, Number: 3,
		}, "please add a ticket")
		Expect(err).NotTo(HaveOccurred())

		Expect(mock.comments).To(ConsistOf(postedComment{
			Path: "/api/v4/projects/42/merge_requests/3/notes",
			Body: "please add a ticket",
		}))
		Expect(mock.tokens).To(ContainElement("token"))
	})

	It("reports API failures", func() {
		mock.fail = http.StatusForbidden
		c, err := newGitLabCommenter(mock.baseURL(), "token", http.DefaultClient)
		Expect(err).NotTo(HaveOccurred())

		err = c.CommentOnPullRequest(ctx, model.PullRequestRef{Source: "gitlab", ProjectID: 42, Number: 3}, "x")
		Expect(err).To(MatchError(ContainSubstring("42!3")))
	})

	It("requires a project id", func() {
		c, err := newGitLabCommenter(mock.baseURL(), "token", http.DefaultClient)
		Expect(err).NotTo(HaveOccurred())

		err = c.CommentOnPullRequest(ctx, model.PullRequestRef{Source: "gitlab", Number: 3}, "x")
		Expect(err).To(HaveOccurred())
		Expect(mock.comments).To(BeEmpty())
	})
})

var _ = Describe("NewSourceRouter", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("returns nil when no commenter is available", func() {
		Expect(NewSourceRouter(nil)).To(BeNil())
		Expect(NewSourceRouter(map[string]PullRequestCommenter{"github": nil})).To(BeNil())
	})

	It("routes by source", func() {
		gh := &recordingCommenter{}
		gl := &recordingCommenter{}
		r := NewSourceRouter(map[string]PullRequestCommenter{"github": gh, "gitlab": gl})

		Expect(r.CommentOnPullRequest(ctx, model.PullRequestRef{Source: "gitlab", ProjectID: 1, Number: 2}, "hi")).To(Succeed())
		Expect(gh.bodies).To(BeEmpty())
		Expect(gl.bodies).To(Equal([]string{"hi"}))
	})

	It("fails for sources without a commenter", func() {
		r := NewSourceRouter(map[string]PullRequestCommenter{"github": &recordingCommenter{}})

		err := r.CommentOnPullRequest(ctx, model.PullRequestRef{Source: "gitlab"}, "hi")
		Expect(err).To(MatchError(ErrUnsupportedSource))
	})
})

type recordingCommenter struct {
	bodies []string
}

func (c *recordingCommenter) CommentOnPullRequest(ctx context.Context, pr model.PullRequestRef, body string) error {
	c.bodies = append(c.bodies, body)
	return nil
}

type postedComment struct {
	Path string
	Body string
}

// scmAPIMock serves the comment endpoints of both the GitHub and GitLab APIs.
type scmAPIMock struct {
	server   *httptest.Server
	comments []postedComment
	tokens   []string
	fail     int
	mu       sync.Mutex
}

func newSCMAPIMock() *scmAPIMock {
	return &scmAPIMock{}
}

func (m *scmAPIMock) baseURL() string {
	return m.server.URL
}

func (m *scmAPIMock) start() {
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/repos/") && strings.HasSuffix(r.URL.Path, "/comments") && r.Method == http.MethodPost:
			m.handleComment(w, r, `{"id":1}`)
		case strings.HasPrefix(r.URL.Path, "/api/v4/projects/") && strings.HasSuffix(r.URL.Path, "/notes") && r.Method == http.MethodPost:
			m.handleComment(w, r, `{"id":1}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func (m *scmAPIMock) close() {
	m.server.Close()
}

func (m *scmAPIMock) handleComment(w http.ResponseWriter, r *http.Request, response string) {
	if m.fail != 0 {
		http.Error(w, `{"message":"failed"}`, m.fail)
		return
	}

	var body struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.comments = append(m.comments, postedComment{Path: r.URL.Path, Body: body.Body})
	if token := r.Header.Get("PRIVATE-TOKEN"); token != "" {
		m.tokens = append(m.tokens, token)
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(response))
}
