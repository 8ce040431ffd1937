// Package explorations provides the explorations list view for the TUI.
package explorations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
)

var errUnavailable = errors.New("service not available")

// View lists explorations and starts explore and design runs.
type View struct {
	ctx      context.Context
	styles   *styles.Styles
	repo     driving.RepositoryService
	workflow driving.WorkflowService

	explorations []domain.Exploration
	selected     int
	prompt       *input.Prompt
	width        int
	height       int
	err          error
	busy         string
	notice       string
}

// NewView creates a new explorations view.
func NewView(s *styles.Styles, repo driving.RepositoryService, workflow driving.WorkflowService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		ctx:      context.Background(),
		styles:   s,
		repo:     repo,
		workflow: workflow,
		prompt:   input.NewPrompt(s, "URL", "https://example.com/page"),
	}
}

// WithContext sets the context used for explore and design runs.
func (v *View) WithContext(ctx context.Context) {
	v.ctx = ctx
}

// Init loads the explorations.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	return func() tea.Msg {
		if v.repo == nil {
			return messages.ExplorationsLoaded{Err: errUnavailable}
		}
		return messages.ExplorationsLoaded{Explorations: v.repo.ListExplorations()}
	}
}

// Update handles messages for the explorations view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.prompt.Focused() {
			return v.handlePromptKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.ExplorationsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.explorations = msg.Explorations
		if v.selected >= len(v.explorations) {
			v.selected = max(len(v.explorations)-1, 0)
		}
		return v, nil

	case messages.ExplorationCreated:
		v.busy = ""
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.selected = 0
		v.notice = fmt.Sprintf("Explored %q", msg.Exploration.Name)
		return v, v.load()

	case messages.ExplorationDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.load()

	case messages.SuiteDesigned:
		v.busy = ""
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		suiteID := msg.Suite.ID
		return v, func() tea.Msg { return messages.SuiteSelected{SuiteID: suiteID} }
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.busy != "" {
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.explorations)-1 {
			v.selected++
		}
	case "n":
		v.notice = ""
		return v, v.prompt.Open("URL", "")
	case "d", "enter":
		if e := v.current(); e != nil {
			v.busy = fmt.Sprintf("Designing test cases for %s...", e.URL)
			v.err = nil
			return v, v.design(e.ID)
		}
	case "x", "delete":
		if e := v.current(); e != nil {
			return v, v.remove(e.ID)
		}
	case "r":
		return v, v.load()
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	return v, nil
}

func (v *View) handlePromptKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type { //nolint:exhaustive // only submit and cancel are special
	case tea.KeyEsc:
		v.prompt.Close()
		return v, nil
	case tea.KeyEnter:
		url := strings.TrimSpace(v.prompt.Value())
		v.prompt.Close()
		if url == "" {
			return v, nil
		}
		v.busy = fmt.Sprintf("Exploring %s...", url)
		v.err = nil
		return v, v.explore(url)
	default:
		var cmd tea.Cmd
		v.prompt, cmd = v.prompt.Update(msg)
		return v, cmd
	}
}

func (v *View) explore(url string) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.workflow == nil {
			return messages.ExplorationCreated{Err: errUnavailable}
		}
		e, err := v.workflow.Explore(ctx, url, "")
		return messages.ExplorationCreated{Exploration: e, Err: err}
	}
}

func (v *View) design(explorationID string) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.workflow == nil {
			return messages.SuiteDesigned{Err: errUnavailable}
		}
		suite, err := v.workflow.DesignSuite(ctx, explorationID, "", 0)
		return messages.SuiteDesigned{Suite: suite, Err: err}
	}
}

func (v *View) remove(id string) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.repo == nil {
			return messages.ExplorationDeleted{ID: id, Err: errUnavailable}
		}
		return messages.ExplorationDeleted{ID: id, Err: v.repo.DeleteExploration(ctx, id)}
	}
}

func (v *View) current() *domain.Exploration {
	if v.selected < 0 || v.selected >= len(v.explorations) {
		return nil
	}
	return &v.explorations[v.selected]
}

// View renders the explorations view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Explorations"))
	b.WriteString("\n\n")

	if v.prompt.Focused() {
		b.WriteString(v.prompt.View())
		b.WriteString("\n\n")
	}

	switch {
	case v.busy != "":
		b.WriteString(v.styles.Muted.Render(v.busy))
		b.WriteString("\n\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err)))
		b.WriteString("\n\n")
	case v.notice != "":
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	if len(v.explorations) == 0 {
		b.WriteString(v.styles.Muted.Render("No explorations yet. Press [n] to explore a page."))
	}
	for i := range v.explorations {
		b.WriteString(v.renderRow(i, &v.explorations[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[n] explore url  [enter/d] design suite  [x] delete  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderRow(index int, e *domain.Exploration) string {
	date := e.CreatedAt.Format("2006-01-02 15:04")
	line := fmt.Sprintf("%-30s %s  %s", e.Name, date, e.URL)
	if maxLen := v.width - 4; maxLen > 20 && len([]rune(line)) > maxLen {
		line = string([]rune(line)[:maxLen-3]) + "..."
	}
	if index == v.selected {
		return v.styles.Selected.Render("> " + line)
	}
	return v.styles.Normal.Render("  " + line)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.prompt.SetWidth(width)
}

// Explorations returns the listed explorations.
func (v *View) Explorations() []domain.Exploration {
	return v.explorations
}

// SelectedIndex returns the cursor position.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Busy reports whether an explore or design run is in progress.
func (v *View) Busy() bool {
	return v.busy != ""
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
