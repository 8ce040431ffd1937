// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// Theme defines the colour palette and styling for the TUI.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color

	// StatusBackground fills the review status bar.
	StatusBackground lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:          lipgloss.Color("#7C3AED"), // Purple
		Secondary:        lipgloss.Color("#06B6D4"), // Cyan
		Foreground:       lipgloss.Color("#CDD6F4"), // Light gray
		Muted:            lipgloss.Color("#6C7086"), // Medium gray
		Success:          lipgloss.Color("#A6E3A1"), // Green
		Warning:          lipgloss.Color("#F9E2AF"), // Yellow
		Error:            lipgloss.Color("#F38BA8"), // Red
		Border:           lipgloss.Color("#45475A"),
		StatusBackground: lipgloss.Color("#181825"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// InputField frames text prompts.
	InputField lipgloss.Style

	// StatusBar is the bottom line of the review view.
	StatusBar lipgloss.Style

	Help lipgloss.Style

	// Field highlights the field under the cursor in the review view.
	Field lipgloss.Style

	// ChatUser and ChatAssistant colour transcript lines by author.
	ChatUser      lipgloss.Style
	ChatAssistant lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.StatusBackground).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Field: lipgloss.NewStyle().
			Underline(true).
			Foreground(theme.Secondary),

		ChatUser: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		ChatAssistant: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// ForState returns the style of the review state badge.
func (s *Styles) ForState(state domain.ReviewState) lipgloss.Style {
	switch state {
	case domain.ReviewDirty:
		return s.Warning.Bold(true)
	case domain.ReviewSaving:
		return s.Muted
	case domain.ReviewSaved:
		return s.Success
	case domain.ReviewEditing, domain.ReviewViewing:
		return s.Normal
	default:
		return s.Normal
	}
}

// ForPriority returns the style used to render a test case priority.
func (s *Styles) ForPriority(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityHigh:
		return s.Error
	case domain.PriorityLow:
		return s.Muted
	default:
		return s.Warning
	}
}
