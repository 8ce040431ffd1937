package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/suitesmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/services"
)

// stubAssistant answers every request with canned results.
type stubAssistant struct {
	design *domain.DesignResult
	reply  *domain.ChatReply
	err    error
}

func (a *stubAssistant) DesignTests(_ context.Context, _ domain.PageSnapshot, _ int) (*domain.DesignResult, error) {
	return a.design, a.err
}

func (a *stubAssistant) Chat(_ context.Context, _ domain.ChatRequest) (*domain.ChatReply, error) {
	return a.reply, a.err
}

func (a *stubAssistant) GenerateCode(_ context.Context, _ domain.CodeRequest) (*domain.CodeResult, error) {
	return &domain.CodeResult{Code: "def test_page(): pass\n"}, a.err
}

// stubExplorer returns a fixed page snapshot.
type stubExplorer struct {
	snap *domain.PageSnapshot
	err  error
}

func (e *stubExplorer) Explore(_ context.Context, url string) (*domain.PageSnapshot, error) {
	if e.err != nil {
		return nil, e.err
	}
	snap := *e.snap
	snap.URL = url
	return &snap, nil
}

func loginCases() []domain.TestCase {
	return []domain.TestCase{
		{ID: 1, Name: "Valid login", Steps: []string{"Enter credentials", "Submit"}, ExpectedOutcome: "Dashboard shown", Priority: domain.PriorityHigh},
		{ID: 2, Name: "Empty password", Steps: []string{"Submit"}, ExpectedOutcome: "Error shown", Priority: domain.PriorityMedium},
	}
}

// fixture wires memory-backed services the way the CLI does.
type fixture struct {
	repo      *services.RepositoryService
	review    *services.ReviewService
	workflow  *services.WorkflowService
	publish   *services.PublishService
	assistant *stubAssistant
	suite     *domain.TestSuite
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repo := services.NewRepositoryService(memory.NewBlobStore())
	require.NoError(t, repo.Load(ctx))

	asst := &stubAssistant{
		design: &domain.DesignResult{TestCases: loginCases(), CoverageScore: 50},
		reply:  &domain.ChatReply{ResponseText: "Looks complete."},
	}
	explorer := &stubExplorer{snap: &domain.PageSnapshot{
		Title: "Sign in",
		Elements: []domain.PageElement{
			{Tag: "button", Text: "Sign in", ID: "signin", Visible: true, Locator: "#signin"},
		},
	}}

	suite, err := repo.AddSuite(ctx, domain.TestSuite{
		Name:          "Login",
		URL:           "https://app.example.com/login",
		TestCases:     loginCases(),
		CoverageScore: 50,
	})
	require.NoError(t, err)

	return &fixture{
		repo:      repo,
		review:    services.NewReviewService(repo, asst, domain.DirtyPolicyConfirm),
		workflow:  services.NewWorkflowService(repo, explorer, asst),
		publish:   services.NewPublishService(repo, nil),
		assistant: asst,
		suite:     suite,
	}
}

func (f *fixture) ports() *Ports {
	return &Ports{
		Repository: f.repo,
		Review:     f.review,
		Workflow:   f.workflow,
		Publish:    f.publish,
	}
}

func (f *fixture) server(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(f.ports())
	require.NoError(t, err)
	return s
}
