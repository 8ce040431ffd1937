// Package suites provides the test suite list view for the TUI.
package suites

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
)

var errUnavailable = errors.New("repository not available")

// View lists test suites. Selecting one opens it for review.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	repo   driving.RepositoryService

	suites        []domain.TestSuite
	selected      int
	confirmDelete bool
	width         int
	height        int
	err           error
}

// NewView creates a new suites view.
func NewView(s *styles.Styles, repo driving.RepositoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		ctx:    context.Background(),
		styles: s,
		repo:   repo,
	}
}

// WithContext sets the context used for deletes.
func (v *View) WithContext(ctx context.Context) {
	v.ctx = ctx
}

// Init loads the suites.
func (v *View) Init() tea.Cmd {
	v.confirmDelete = false
	return v.load()
}

func (v *View) load() tea.Cmd {
	return func() tea.Msg {
		if v.repo == nil {
			return messages.SuitesLoaded{Err: errUnavailable}
		}
		return messages.SuitesLoaded{Suites: v.repo.ListSuites()}
	}
}

// Update handles messages for the suites view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.confirmDelete {
			return v.handleConfirmKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.SuitesLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.suites = msg.Suites
		if v.selected >= len(v.suites) {
			v.selected = max(len(v.suites)-1, 0)
		}
		return v, nil

	case messages.SuiteDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.load()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.suites)-1 {
			v.selected++
		}
	case "enter":
		if s := v.current(); s != nil {
			id := s.ID
			return v, func() tea.Msg { return messages.SuiteSelected{SuiteID: id} }
		}
	case "x", "delete":
		if v.current() != nil {
			v.confirmDelete = true
		}
	case "r":
		return v, v.load()
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	return v, nil
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirmDelete = false
	if msg.String() != "y" {
		return v, nil
	}
	s := v.current()
	if s == nil {
		return v, nil
	}
	id, ctx := s.ID, v.ctx
	return v, func() tea.Msg {
		if v.repo == nil {
			return messages.SuiteDeleted{ID: id, Err: errUnavailable}
		}
		return messages.SuiteDeleted{ID: id, Err: v.repo.DeleteSuite(ctx, id)}
	}
}

func (v *View) current() *domain.TestSuite {
	if v.selected < 0 || v.selected >= len(v.suites) {
		return nil
	}
	return &v.suites[v.selected]
}

// View renders the suites view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Test Suites"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err)))
		b.WriteString("\n\n")
	}

	if len(v.suites) == 0 {
		b.WriteString(v.styles.Muted.Render("No suites yet. Design one from the Explorations view."))
		b.WriteString("\n")
	}
	for i := range v.suites {
		b.WriteString(v.renderRow(i, &v.suites[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.confirmDelete {
		if s := v.current(); s != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Delete %q and its chat history? [y] yes  [any key] no", s.Name)))
			return b.String()
		}
	}
	b.WriteString(v.styles.Help.Render("[enter] review  [x] delete  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderRow(index int, s *domain.TestSuite) string {
	meta := fmt.Sprintf("%2d cases  %5.1f%%  %s", len(s.TestCases), s.CoverageScore, s.CreatedAt.Format("2006-01-02"))
	name := s.Name
	maxName := v.width - len(meta) - 8
	if maxName < 10 {
		maxName = 30
	}
	if r := []rune(name); len(r) > maxName {
		name = string(r[:maxName-3]) + "..."
	}
	line := fmt.Sprintf("%-*s  %s", maxName, name, meta)
	if index == v.selected {
		return v.styles.Selected.Render("> " + line)
	}
	return v.styles.Normal.Render("  "+fmt.Sprintf("%-*s  ", maxName, name)) + v.styles.Muted.Render(meta)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Suites returns the listed suites.
func (v *View) Suites() []domain.TestSuite {
	return v.suites
}

// SelectedIndex returns the cursor position.
func (v *View) SelectedIndex() int {
	return v.selected
}

// ConfirmingDelete reports whether a delete confirmation is showing.
func (v *View) ConfirmingDelete() bool {
	return v.confirmDelete
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
