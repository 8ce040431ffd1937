package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/suitesmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/services"
)

type stubExplorer struct {
	err error
}

func (e *stubExplorer) Explore(_ context.Context, url string) (*domain.PageSnapshot, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &domain.PageSnapshot{
		URL:   url,
		Title: "Login",
		Elements: []domain.PageElement{
			{Tag: "input", Type: "email", Name: "email", Visible: true, Locator: "#email"},
			{Tag: "button", Text: "Sign in", Visible: true, Locator: "text=Sign in"},
			{Tag: "input", Type: "hidden", Name: "csrf"},
		},
		Structure: domain.PageStructure{Forms: 1, Buttons: 1, Inputs: 2},
	}, nil
}

type stubAssistant struct {
	reply *domain.ChatReply
	err   error
	code  string
}

func (a *stubAssistant) DesignTests(_ context.Context, _ domain.PageSnapshot, count int) (*domain.DesignResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	cases := make([]domain.TestCase, 0, count)
	for i := range count {
		cases = append(cases, domain.TestCase{
			ID: 100 + i, Name: "Generated", Steps: []string{"Do it"}, ExpectedOutcome: "Done", Priority: domain.PriorityMedium,
		})
	}
	return &domain.DesignResult{TestCases: cases, CoverageScore: 72.5}, nil
}

func (a *stubAssistant) Chat(_ context.Context, _ domain.ChatRequest) (*domain.ChatReply, error) {
	return a.reply, a.err
}

func (a *stubAssistant) GenerateCode(_ context.Context, req domain.CodeRequest) (*domain.CodeResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &domain.CodeResult{Code: a.code + "# " + req.SuiteName + "\n"}, nil
}

type stubPublisher struct {
	filenames []string
}

func (p *stubPublisher) Publish(_ context.Context, filename, _, _ string) (*domain.PublishResult, error) {
	p.filenames = append(p.filenames, filename)
	return &domain.PublishResult{ID: "g1", URL: "https://gist.github.com/g1"}, nil
}

type env struct {
	repo      *services.RepositoryService
	review    *services.ReviewService
	assistant *stubAssistant
	publisher *stubPublisher
	settings  *services.SettingsService
}

// newEnv wires the command set to memory-backed services and restores the
// previous wiring when the test ends.
func newEnv(t *testing.T) *env {
	t.Helper()
	repo := services.NewRepositoryService(memory.NewBlobStore())
	require.NoError(t, repo.Load(context.Background()))

	asst := &stubAssistant{reply: &domain.ChatReply{ResponseText: "Fine as is."}, code: "import pytest\n"}
	pub := &stubPublisher{}
	review := services.NewReviewService(repo, asst, domain.DirtyPolicyConfirm)
	workflow := services.NewWorkflowService(repo, &stubExplorer{}, asst)
	workflow.SetDesiredCount(3)
	settings := services.NewSettingsService(memory.NewConfigStore(), nil)

	prev := Services{
		Repository: repositoryService,
		Review:     reviewService,
		Workflow:   workflowService,
		Settings:   settingsService,
		Publish:    publishService,
	}
	SetServices(Services{
		Repository: repo,
		Review:     review,
		Workflow:   workflow,
		Settings:   settings,
		Publish:    services.NewPublishService(repo, pub),
	})
	t.Cleanup(func() { SetServices(prev) })

	return &env{repo: repo, review: review, assistant: asst, publisher: pub, settings: settings}
}

func (e *env) addSuite(t *testing.T) *domain.TestSuite {
	t.Helper()
	suite, err := e.repo.AddSuite(context.Background(), domain.TestSuite{
		Name: "Login Suite",
		URL:  "https://app.example.com/login",
		TestCases: []domain.TestCase{
			{ID: 1, Name: "Valid login", Steps: []string{"Enter email", "Submit"}, ExpectedOutcome: "Dashboard", Priority: domain.PriorityHigh},
			{ID: 2, Name: "Wrong password", Steps: []string{"Submit"}, ExpectedOutcome: "Error", Priority: domain.PriorityMedium},
			{ID: 3, Name: "Locked account", Steps: []string{"Submit"}, ExpectedOutcome: "Locked", Priority: domain.PriorityLow},
		},
	})
	require.NoError(t, err)
	return suite
}

// resetFlags puts every command flag variable back to its default.
func resetFlags() {
	verbose = false
	exploreName = ""
	designName = ""
	designCount = 0
	showJSON = false
	editSets = nil
	editRemoves = nil
	editAdd = 0
	exportFormat = "markdown"
	exportOutput = ""
	codegenInstructions = ""
	codegenOutput = ""
	codegenPublish = false
	versionShort = false
	mcpPort = 0
	mcpHost = "localhost"
}

// run executes the root command with args and returns everything printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runIn(t, "", args...)
}

// runIn is run with stdin.
func runIn(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
