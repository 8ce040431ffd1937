package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/suitesmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/services"
)

// stubAssistant answers every chat turn with reply.
type stubAssistant struct {
	reply *domain.ChatReply
	err   error
}

func (a *stubAssistant) DesignTests(_ context.Context, _ domain.PageSnapshot, _ int) (*domain.DesignResult, error) {
	return &domain.DesignResult{TestCases: loginCases(), CoverageScore: 50}, a.err
}

func (a *stubAssistant) Chat(_ context.Context, _ domain.ChatRequest) (*domain.ChatReply, error) {
	return a.reply, a.err
}

func (a *stubAssistant) GenerateCode(_ context.Context, _ domain.CodeRequest) (*domain.CodeResult, error) {
	return &domain.CodeResult{Code: "pass\n"}, a.err
}

func loginCases() []domain.TestCase {
	return []domain.TestCase{
		{ID: 1, Name: "Valid login", Steps: []string{"Submit"}, ExpectedOutcome: "Dashboard shown", Priority: domain.PriorityHigh},
		{ID: 2, Name: "Empty password", Steps: []string{"Submit"}, ExpectedOutcome: "Error shown", Priority: domain.PriorityMedium},
	}
}

type fixture struct {
	repo      *services.RepositoryService
	review    *services.ReviewService
	assistant *stubAssistant
	suite     *domain.TestSuite
	app       *App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repo := services.NewRepositoryService(memory.NewBlobStore())
	require.NoError(t, repo.Load(ctx))
	suite, err := repo.AddSuite(ctx, domain.TestSuite{Name: "Login", URL: "https://app.example.com", TestCases: loginCases()})
	require.NoError(t, err)

	asst := &stubAssistant{reply: &domain.ChatReply{ResponseText: "Looks good."}}
	review := services.NewReviewService(repo, asst, domain.DirtyPolicyConfirm)
	settingsSvc := services.NewSettingsService(memory.NewConfigStore(), nil)

	app, err := NewApp(&Ports{
		Repository: repo,
		Review:     review,
		Settings:   settingsSvc,
	})
	require.NoError(t, err)
	app.SetDimensions(120, 40)

	return &fixture{repo: repo, review: review, assistant: asst, suite: suite, app: app}
}

// send runs msg through the app and then every command it produces,
// breadth first, until no commands remain. Batches are expanded.
func (f *fixture) send(msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		_, cmd := f.app.Update(next)
		queue = append(queue, runCmd(cmd)...)
	}
}

// runCmd executes cmd. Commands that do not finish promptly, such as
// cursor blink timers, are dropped.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(100 * time.Millisecond):
		return nil
	}

	switch m := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range m {
			out = append(out, runCmd(c)...)
		}
		return out
	case tea.QuitMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (f *fixture) typeText(s string) {
	for _, r := range s {
		f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}
