// Package status provides the review status bar for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// Bar shows the reconciliation state of the open suite and keybinding hints.
type Bar struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	status    domain.ReviewStatus
	suiteName string
	message   string
	width     int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		status: domain.ReviewStatus{State: domain.ReviewViewing},
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// Label returns the plain text state label shown on the left.
func (s *Bar) Label() string {
	switch {
	case s.status.State == domain.ReviewViewing:
		return "No suite open"
	case s.status.ChatInFlight:
		return "Waiting for assistant..."
	case s.status.State == domain.ReviewSaving:
		return "Saving..."
	case s.status.Dirty:
		return "● Unsaved changes"
	case s.status.State == domain.ReviewSaved:
		return "Saved"
	default:
		return "No changes"
	}
}

func (s *Bar) renderLeft() string {
	parts := make([]string, 0, 3)
	if s.suiteName != "" {
		parts = append(parts, s.styles.Subtitle.Render(s.suiteName))
	}
	parts = append(parts, s.styles.ForState(s.status.State).Render(s.Label()))

	switch {
	case s.status.LastError != nil:
		parts = append(parts, s.styles.Error.Render(fmt.Sprintf("Error: %s", s.status.LastError)))
	case s.message != "":
		parts = append(parts, s.styles.Muted.Render(s.message))
	}
	return strings.Join(parts, "  ")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.status.State.HasBuffer() {
		bindings = s.keymap.ReviewHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetStatus replaces the displayed review status.
func (s *Bar) SetStatus(status domain.ReviewStatus) {
	s.status = status
}

// Status returns the displayed review status.
func (s *Bar) Status() domain.ReviewStatus {
	return s.status
}

// SetSuiteName sets the name shown before the state label.
func (s *Bar) SetSuiteName(name string) {
	s.suiteName = name
}

// SetMessage sets a transient note shown after the state label.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current note.
func (s *Bar) Message() string {
	return s.message
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the bar to its closed state.
func (s *Bar) Clear() {
	s.status = domain.ReviewStatus{State: domain.ReviewViewing}
	s.suiteName = ""
	s.message = ""
}
