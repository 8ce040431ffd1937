// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewExplorations lists recorded page explorations.
	ViewExplorations
	// ViewSuites lists test suites.
	ViewSuites
	// ViewReview edits one suite and hosts the chat.
	ViewReview
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewSettings is the settings configuration view.
	ViewSettings
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewExplorations:
		return "explorations"
	case ViewSuites:
		return "suites"
	case ViewReview:
		return "review"
	case ViewHelp:
		return "help"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// ExplorationsLoaded carries the list of explorations.
type ExplorationsLoaded struct {
	Explorations []domain.Exploration
	Err          error
}

// ExplorationCreated signals a page was explored and stored.
type ExplorationCreated struct {
	Exploration *domain.Exploration
	Err         error
}

// ExplorationDeleted signals an exploration was deleted.
type ExplorationDeleted struct {
	ID  string
	Err error
}

// SuiteDesigned signals a design run finished.
type SuiteDesigned struct {
	Suite *domain.TestSuite
	Err   error
}

// SuitesLoaded carries the list of suites.
type SuitesLoaded struct {
	Suites []domain.TestSuite
	Err    error
}

// SuiteDeleted signals a suite was deleted.
type SuiteDeleted struct {
	ID  string
	Err error
}

// SuiteSelected asks the app to open a suite for review.
type SuiteSelected struct {
	SuiteID string
}

// SuiteOpened reports the result of opening a suite in the review workspace.
type SuiteOpened struct {
	SuiteID string
	Err     error
}

// SuiteSaved reports the result of saving the edit buffer.
type SuiteSaved struct {
	Err error
}

// SuiteLeft reports the result of closing the open suite.
// Discarded is true when the caller forced unsaved edits away.
type SuiteLeft struct {
	Discarded bool
	Err       error
}

// ChatReplied carries the outcome of one chat turn.
type ChatReplied struct {
	SuiteID string
	Message string
	Reply   *domain.ChatReply
	Err     error
}

// ChatHistoryLoaded carries a suite's transcript.
type ChatHistoryLoaded struct {
	SuiteID  string
	Messages []domain.ChatMessage
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
