// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
)

// Item represents a single menu option.
type Item struct {
	Label string
	View  messages.ViewType
	Quit  bool
}

// View represents the main menu view.
type View struct {
	styles   *styles.Styles
	repo     driving.RepositoryService
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view. repo is used for the collection counts
// and may be nil.
func NewView(s *styles.Styles, repo driving.RepositoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		repo:   repo,
		items: []Item{
			{Label: "Suites", View: messages.ViewSuites},
			{Label: "Explorations", View: messages.ViewExplorations},
			{Label: "Settings", View: messages.ViewSettings},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
		case "enter":
			item := v.items[v.selected]
			if item.Quit {
				return v, tea.Quit
			}
			return v, func() tea.Msg {
				return messages.ViewChanged{View: item.View}
			}
		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("suitesmith"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Co-author QA test suites"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := item.Label + v.count(item.View)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] select  [q] quit"))

	return b.String()
}

// count renders the collection size next to list entries.
func (v *View) count(view messages.ViewType) string {
	if v.repo == nil {
		return ""
	}
	switch view {
	case messages.ViewSuites:
		return fmt.Sprintf(" (%d)", len(v.repo.ListSuites()))
	case messages.ViewExplorations:
		return fmt.Sprintf(" (%d)", len(v.repo.ListExplorations()))
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}
