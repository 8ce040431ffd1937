package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/views/explorations"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/views/review"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/views/suites"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView         *menu.View
	explorationsView *explorations.View
	suitesView       *suites.View
	reviewView       *review.View
	settingsView     *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that no view claimed.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:            ports,
		ctx:              context.Background(),
		styles:           s,
		menuView:         menu.NewView(s, ports.Repository),
		explorationsView: explorations.NewView(s, ports.Repository, ports.Workflow),
		suitesView:       suites.NewView(s, ports.Repository),
		reviewView:       review.NewView(s, ports.Review, ports.Repository),
		settingsView:     settings.NewView(s, ports.Settings, ports.Review),
		currentView:      messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.explorationsView.WithContext(ctx)
	a.suitesView.WithContext(ctx)
	a.reviewView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("suitesmith"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, a.quit()
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		a.err = nil
		switch msg.View {
		case messages.ViewExplorations:
			return a, a.explorationsView.Init()
		case messages.ViewSuites:
			return a, a.suitesView.Init()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewMenu, messages.ViewHelp, messages.ViewReview:
		}
		return a, nil

	case messages.SuiteSelected:
		return a, a.reviewView.Open(msg.SuiteID)

	case messages.SuiteOpened:
		a.reviewView, cmd = a.reviewView.Update(msg)
		if msg.Err != nil {
			a.err = fmt.Errorf("opening suite: %w", msg.Err)
			return a, cmd
		}
		a.err = nil
		a.currentView = messages.ViewReview
		return a, cmd

	case messages.ChatReplied, messages.ChatHistoryLoaded, messages.SuiteSaved, messages.SuiteLeft:
		// Chat replies may land after the user has moved on.
		a.reviewView, cmd = a.reviewView.Update(msg)
		return a, cmd

	case messages.SuiteDesigned, messages.ExplorationCreated,
		messages.ExplorationDeleted, messages.ExplorationsLoaded:
		a.explorationsView, cmd = a.explorationsView.Update(msg)
		return a, cmd

	case messages.SuitesLoaded, messages.SuiteDeleted:
		a.suitesView, cmd = a.suitesView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		return a, a.quit()
	}

	return a, nil
}

// forward sends a key to the active view.
func (a *App) forward(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewExplorations:
		a.explorationsView, cmd = a.explorationsView.Update(msg)
	case messages.ViewSuites:
		a.suitesView, cmd = a.suitesView.Update(msg)
	case messages.ViewReview:
		a.reviewView, cmd = a.reviewView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

// quit closes the open suite before exiting. Unsaved edits follow the
// configured dirty policy; under confirm they are dropped, since there is
// nowhere left to ask.
func (a *App) quit() tea.Cmd {
	if a.ports.Review.Status().State.HasBuffer() {
		if err := a.ports.Review.Leave(a.ctx, false); err != nil {
			_ = a.ports.Review.Leave(a.ctx, true)
		}
	}
	return tea.Quit
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewMenu:
		body = a.menuView.View()
	case messages.ViewExplorations:
		body = a.explorationsView.View()
	case messages.ViewSuites:
		body = a.suitesView.View()
	case messages.ViewReview:
		body = a.reviewView.View()
	case messages.ViewSettings:
		body = a.settingsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.menuView.View()
	}

	if a.err != nil {
		body += "\n\n" + a.styles.Error.Render(fmt.Sprintf("Error: %s", a.err))
	}
	return body
}

func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Explorations:
  n           Explore a URL
  enter / d   Design a suite from the selected page
  x           Delete

Suites:
  enter       Review the selected suite
  x           Delete (asks first)

Review:
  j/k, ↑/↓    Select a test case
  tab         Select a field
  e / enter   Edit the selected field
  a           Add a blank test case
  x           Remove the selected test case
  s, ctrl+s   Save
  c           Chat with the assistant (rewrites are saved at once)
  esc         Leave; unsaved edits follow the dirty policy

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that no view claimed.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// Review returns the review view.
func (a *App) Review() *review.View {
	return a.reviewView
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.explorationsView.SetDimensions(width, height)
	a.suitesView.SetDimensions(width, height)
	a.reviewView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
