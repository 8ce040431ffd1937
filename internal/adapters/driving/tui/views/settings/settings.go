// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
)

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionLLM
	SectionPolicy
	SectionCount
	SectionRate
	SectionStorage
	SectionToken
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyTab   = "tab"
)

var errUnavailable = errors.New("settings service not available")

// overviewItems is the order of the overview rows.
var overviewItems = []Section{SectionLLM, SectionPolicy, SectionCount, SectionRate, SectionStorage, SectionToken}

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService
	reviewService   driving.ReviewService

	settings *domain.AppSettings
	err      error
	notice   string

	section      Section
	selected     int
	focusedField int

	// apiKeyInput takes the LLM API key; valueInput takes numbers and the token.
	apiKeyInput textinput.Model
	valueInput  textinput.Model

	width  int
	height int
}

// NewView creates a new settings view. review may be nil; when set, dirty
// policy changes apply to the running review workspace immediately.
func NewView(s *styles.Styles, settingsService driving.SettingsService, review driving.ReviewService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	apiKeyInput := textinput.New()
	apiKeyInput.Placeholder = "Enter API key"
	apiKeyInput.EchoMode = textinput.EchoPassword
	apiKeyInput.CharLimit = 256

	valueInput := textinput.New()
	valueInput.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		reviewService:   review,
		section:         SectionOverview,
		apiKeyInput:     apiKeyInput,
		valueInput:      valueInput,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: errUnavailable}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved"
		v.backToOverview()
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.backToOverview()
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionLLM:
		return v.handleLLMKeys(msg)
	case SectionPolicy:
		return v.handleChoiceKeys(msg, len(domain.AllDirtyPolicies()), func(i int) tea.Cmd {
			return v.setDirtyPolicy(domain.AllDirtyPolicies()[i])
		})
	case SectionStorage:
		backends := allBackends()
		return v.handleChoiceKeys(msg, len(backends), func(i int) tea.Cmd {
			return v.save(func(s driving.SettingsService) error { return s.SetStorageBackend(backends[i]) })
		})
	case SectionCount, SectionRate, SectionToken:
		return v.handleValueKeys(msg)
	}

	return v, nil
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(overviewItems)-1 {
			v.selected++
		}
	case keyEnter:
		if v.settings == nil {
			return v, nil
		}
		v.notice = ""
		v.section = overviewItems[v.selected]
		switch v.section {
		case SectionLLM:
			v.selected = indexOf(domain.AllLLMProviders(), v.settings.LLM.Provider)
		case SectionPolicy:
			v.selected = indexOf(domain.AllDirtyPolicies(), v.settings.Review.DirtyPolicy)
		case SectionStorage:
			v.selected = indexOf(allBackends(), v.settings.Storage.Backend)
		case SectionCount:
			return v, v.openValue(strconv.Itoa(v.settings.Design.DesiredCount), false)
		case SectionRate:
			return v, v.openValue(strconv.Itoa(v.settings.LLM.RequestsPerMinute), false)
		case SectionToken:
			return v, v.openValue("", true)
		case SectionOverview:
		}
	}
	return v, nil
}

func (v *View) handleChoiceKeys(msg tea.KeyMsg, n int, choose func(int) tea.Cmd) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < n-1 {
			v.selected++
		}
	case keyEnter:
		if v.selected >= 0 && v.selected < n {
			return v, choose(v.selected)
		}
	}
	return v, nil
}

//nolint:gocognit // TUI input complexity
func (v *View) handleLLMKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	providers := domain.AllLLMProviders()

	if v.focusedField == 1 {
		switch msg.String() {
		case keyTab, "shift+tab":
			v.focusedField = 0
			v.apiKeyInput.Blur()
			return v, nil
		case keyEnter:
			if v.selected >= 0 && v.selected < len(providers) {
				return v, v.setLLMProvider(providers[v.selected], v.apiKeyInput.Value())
			}
		default:
			var cmd tea.Cmd
			v.apiKeyInput, cmd = v.apiKeyInput.Update(msg)
			return v, cmd
		}
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(providers)-1 {
			v.selected++
		}
	case keyTab, keyEnter:
		if v.selected < 0 || v.selected >= len(providers) {
			return v, nil
		}
		provider := providers[v.selected]
		if provider.RequiresAPIKey() {
			v.focusedField = 1
			return v, v.apiKeyInput.Focus()
		}
		if msg.String() == keyEnter {
			return v, v.setLLMProvider(provider, "")
		}
	}
	return v, nil
}

func (v *View) handleValueKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() != keyEnter {
		var cmd tea.Cmd
		v.valueInput, cmd = v.valueInput.Update(msg)
		return v, cmd
	}

	value := strings.TrimSpace(v.valueInput.Value())
	switch v.section {
	case SectionToken:
		return v, v.save(func(s driving.SettingsService) error { return s.SetGitHubToken(value) })
	case SectionCount, SectionRate:
		n, err := strconv.Atoi(value)
		if err != nil {
			v.err = fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, value)
			return v, nil
		}
		if v.section == SectionCount {
			return v, v.save(func(s driving.SettingsService) error { return s.SetDesiredCount(n) })
		}
		return v, v.save(func(s driving.SettingsService) error { return s.SetRequestsPerMinute(n) })
	default:
		return v, nil
	}
}

func (v *View) openValue(value string, secret bool) tea.Cmd {
	v.valueInput.SetValue(value)
	v.valueInput.CursorEnd()
	if secret {
		v.valueInput.EchoMode = textinput.EchoPassword
	} else {
		v.valueInput.EchoMode = textinput.EchoNormal
	}
	return v.valueInput.Focus()
}

// save runs fn against the settings service and reports the outcome.
func (v *View) save(fn func(driving.SettingsService) error) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Err: errUnavailable}
		}
		return messages.SettingsSaved{Err: fn(v.settingsService)}
	}
}

func (v *View) setDirtyPolicy(policy domain.DirtyPolicy) tea.Cmd {
	return v.save(func(s driving.SettingsService) error {
		if err := s.SetDirtyPolicy(policy); err != nil {
			return err
		}
		if v.reviewService != nil {
			return v.reviewService.SetDirtyPolicy(policy)
		}
		return nil
	})
}

func (v *View) setLLMProvider(provider domain.AIProvider, apiKey string) tea.Cmd {
	model := domain.DefaultLLMModels()[provider]
	return v.save(func(s driving.SettingsService) error {
		return s.SetLLMProvider(provider, model, apiKey)
	})
}

func (v *View) backToOverview() {
	if v.section != SectionOverview {
		v.selected = overviewIndex(v.section)
	}
	v.section = SectionOverview
	v.focusedField = 0
	v.apiKeyInput.SetValue("")
	v.apiKeyInput.Blur()
	v.valueInput.SetValue("")
	v.valueInput.Blur()
}

func allBackends() []domain.StorageBackend {
	return []domain.StorageBackend{domain.StorageBackendSQLite, domain.StorageBackendMemory}
}

func indexOf[T comparable](items []T, want T) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return 0
}

func overviewIndex(s Section) int {
	return indexOf(overviewItems, s)
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionLLM:
		b.WriteString(v.renderLLMSelect())
	case SectionPolicy:
		b.WriteString(v.renderChoices("When leaving a suite with unsaved edits", policyLabels(), v.settings.Review.DirtyPolicy.String()))
	case SectionStorage:
		b.WriteString(v.renderChoices("Storage backend (applies on restart)", backendLabels(), string(v.settings.Storage.Backend)))
	case SectionCount:
		b.WriteString(v.renderValue("Test cases per design run"))
	case SectionRate:
		b.WriteString(v.renderValue("LLM requests per minute (0 = unlimited)"))
	case SectionToken:
		b.WriteString(v.renderValue("GitHub token (gist scope)"))
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder

	llmValue := "Not Set"
	if v.settings.LLM.Provider != "" {
		llmValue = fmt.Sprintf("%s (%s)", v.settings.LLM.Provider.Description(), v.settings.LLM.Model)
	}
	llmStatus := v.styles.Warning.Render("[needs API key]")
	if v.settings.LLM.IsConfigured() {
		llmStatus = v.styles.Success.Render("[configured]")
	}

	rate := "unlimited"
	if v.settings.LLM.RequestsPerMinute > 0 {
		rate = fmt.Sprintf("%d/min", v.settings.LLM.RequestsPerMinute)
	}
	token := "not set"
	if v.settings.Publish.GitHubToken != "" {
		token = "set"
	}

	rows := []string{
		fmt.Sprintf("LLM Provider: %s %s", llmValue, llmStatus),
		fmt.Sprintf("Unsaved edits on leave: %s", v.settings.Review.DirtyPolicy),
		fmt.Sprintf("Test cases per design: %d", v.settings.Design.DesiredCount),
		fmt.Sprintf("LLM rate limit: %s", rate),
		fmt.Sprintf("Storage: %s", v.settings.Storage.Backend),
		fmt.Sprintf("GitHub token: %s", token),
	}

	for i, row := range rows {
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + row))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Warning: %s", err.Error())))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
	}

	return b.String()
}

func (v *View) renderChoices(title string, labels []string, current string) string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(title))
	b.WriteString("\n\n")
	for i, label := range labels {
		line := label
		if strings.HasPrefix(label, current+" ") || label == current {
			line += v.styles.Success.Render(" (current)")
		}
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderValue(title string) string {
	return v.styles.Subtitle.Render(title) + "\n\n" + v.valueInput.View() + "\n"
}

func (v *View) renderLLMSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select LLM Provider"))
	b.WriteString("\n\n")

	providers := domain.AllLLMProviders()
	defaults := domain.DefaultLLMModels()
	for i, provider := range providers {
		line := provider.Description()
		if provider == v.settings.LLM.Provider {
			line += v.styles.Success.Render(" (current)")
		}
		if i == v.selected && v.focusedField == 0 {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("    Model: %s", defaults[provider])))
		b.WriteString("\n")
	}

	if v.selected >= 0 && v.selected < len(providers) && providers[v.selected].RequiresAPIKey() {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("API Key:"))
		b.WriteString("\n")
		b.WriteString(v.apiKeyInput.View())
		b.WriteString("\n")
	}

	return b.String()
}

func policyLabels() []string {
	labels := make([]string, 0, 3)
	for _, p := range domain.AllDirtyPolicies() {
		switch p {
		case domain.DirtyPolicyConfirm:
			labels = append(labels, "confirm - ask before discarding")
		case domain.DirtyPolicyDiscard:
			labels = append(labels, "discard - drop unsaved edits")
		case domain.DirtyPolicyAutosave:
			labels = append(labels, "autosave - save before leaving")
		}
	}
	return labels
}

func backendLabels() []string {
	return []string{
		string(domain.StorageBackendSQLite) + " - local database file",
		string(domain.StorageBackendMemory) + " - nothing persists after exit",
	}
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back")
	case SectionPolicy, SectionStorage:
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] back")
	case SectionCount, SectionRate, SectionToken:
		return v.styles.Help.Render("[enter] save  [esc] back")
	case SectionLLM:
		if v.focusedField == 1 {
			return v.styles.Help.Render("[tab] back to list  [enter] save  [esc] back")
		}
		return v.styles.Help.Render("[j/k] navigate  [tab] API key  [enter] select  [esc] back")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.backToOverview()
	v.selected = 0
	v.err = nil
	v.notice = ""
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
