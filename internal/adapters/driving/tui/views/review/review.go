// Package review provides the suite review view: the test case editor,
// its dirty-state status bar and the chat with the suite assistant.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
)

// Mode is the input mode of the review view.
type Mode int

// Review view modes.
const (
	ModeBrowse Mode = iota
	ModeEdit
	ModeChat
	ModeConfirmLeave
)

// transcriptLines is how many chat messages are shown under the editor.
const transcriptLines = 6

var errUnavailable = errors.New("review service not available")

// View edits one suite through the review service.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	review driving.ReviewService
	repo   driving.RepositoryService

	suiteID   string
	suiteName string

	list   *list.CaseList
	bar    *status.Bar
	prompt *input.Prompt

	mode       Mode
	editIndex  int
	editField  string
	transcript []domain.ChatMessage
	pending    string

	width  int
	height int
}

// NewView creates a new review view.
func NewView(s *styles.Styles, review driving.ReviewService, repo driving.RepositoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()
	return &View{
		ctx:    context.Background(),
		styles: s,
		keymap: km,
		review: review,
		repo:   repo,
		list:   list.NewCaseList(s),
		bar:    status.NewBar(s, km),
		prompt: input.NewPrompt(s, "", ""),
	}
}

// WithContext sets the context used for saves and chat turns.
func (v *View) WithContext(ctx context.Context) {
	v.ctx = ctx
}

// Open returns a command that opens suiteID in the review service.
// The caller's unsaved edits are never discarded here; the service reports
// ErrUnsavedChanges instead.
func (v *View) Open(suiteID string) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.review == nil {
			return messages.SuiteOpened{SuiteID: suiteID, Err: errUnavailable}
		}
		return messages.SuiteOpened{SuiteID: suiteID, Err: v.review.Open(ctx, suiteID, false)}
	}
}

// Update handles messages for the review view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case ModeEdit:
			return v.handleEditKey(msg)
		case ModeChat:
			return v.handleChatKey(msg)
		case ModeConfirmLeave:
			return v.handleConfirmKey(msg)
		default:
			return v.handleBrowseKey(msg)
		}

	case messages.SuiteOpened:
		if msg.Err != nil {
			return v, nil
		}
		v.suiteID = msg.SuiteID
		v.suiteName = msg.SuiteID
		if v.repo != nil {
			if suite, err := v.repo.GetSuite(msg.SuiteID); err == nil {
				v.suiteName = suite.Name
			}
		}
		v.mode = ModeBrowse
		v.list.SetSelected(0)
		v.bar.SetSuiteName(v.suiteName)
		v.bar.SetMessage("")
		v.refresh()
		return v, v.loadTranscript()

	case messages.ChatHistoryLoaded:
		if msg.SuiteID == v.suiteID {
			v.transcript = msg.Messages
		}
		return v, nil

	case messages.SuiteSaved:
		if msg.Err != nil {
			v.bar.SetMessage("")
		} else {
			v.bar.SetMessage(fmt.Sprintf("Saved %d test cases", v.list.Count()))
		}
		v.refresh()
		return v, nil

	case messages.ChatReplied:
		return v.handleChatReplied(msg)

	case messages.SuiteLeft:
		return v.handleLeft(msg)
	}

	return v, nil
}

func (v *View) handleBrowseKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, v.leave(false)

	case v.pending != "" && (keymap.Matches(key, v.keymap.Edit) ||
		keymap.Matches(key, v.keymap.Add) || keymap.Matches(key, v.keymap.Remove)):
		v.bar.SetMessage("Waiting for the assistant to answer")
		return v, nil

	case keymap.Matches(key, v.keymap.Edit):
		tc := v.list.SelectedCase()
		if tc == nil {
			return v, nil
		}
		v.editIndex = v.list.Selected()
		v.editField = v.list.Field()
		v.mode = ModeEdit
		return v, v.prompt.Open(editLabel(v.editField), list.FieldValue(*tc, v.editField))

	case keymap.Matches(key, v.keymap.Add):
		index, err := v.review.AddBlank()
		v.report(err)
		v.refresh()
		v.list.SetSelected(index)
		return v, nil

	case keymap.Matches(key, v.keymap.Remove):
		if v.list.SelectedCase() == nil {
			return v, nil
		}
		v.report(v.review.RemoveAt(v.list.Selected()))
		v.refresh()
		return v, nil

	case keymap.Matches(key, v.keymap.Save):
		return v, v.save()

	case keymap.Matches(key, v.keymap.Chat):
		if v.pending != "" {
			v.bar.SetMessage("Waiting for the assistant to answer")
			return v, nil
		}
		v.mode = ModeChat
		return v, v.prompt.Open("Ask the assistant", "")

	default:
		var cmd tea.Cmd
		v.list, cmd = v.list.Update(msg)
		return v, cmd
	}
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type { //nolint:exhaustive // only submit and cancel are special
	case tea.KeyEsc:
		v.closePrompt()
		return v, nil
	case tea.KeyEnter:
		value := v.prompt.Value()
		v.closePrompt()
		var err error
		if v.editField == list.FieldSteps {
			err = v.review.SetSteps(v.editIndex, stepsFromPrompt(value))
		} else {
			err = v.review.SetField(v.editIndex, v.editField, value)
		}
		v.report(err)
		v.refresh()
		return v, nil
	default:
		var cmd tea.Cmd
		v.prompt, cmd = v.prompt.Update(msg)
		return v, cmd
	}
}

func (v *View) handleChatKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type { //nolint:exhaustive // only submit and cancel are special
	case tea.KeyEsc:
		v.closePrompt()
		return v, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(v.prompt.Value())
		v.closePrompt()
		if text == "" {
			return v, nil
		}
		v.pending = text
		v.bar.SetMessage("")
		return v, v.sendChat(text)
	default:
		var cmd tea.Cmd
		v.prompt, cmd = v.prompt.Update(msg)
		return v, cmd
	}
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "y":
		v.mode = ModeBrowse
		return v, v.leave(true)
	case "s":
		v.mode = ModeBrowse
		return v, v.saveAndLeave()
	default:
		v.mode = ModeBrowse
		return v, nil
	}
}

func (v *View) handleChatReplied(msg messages.ChatReplied) (*View, tea.Cmd) {
	v.pending = ""
	if msg.SuiteID != v.suiteID {
		// The suite was closed while waiting; the service has already
		// written any replacement to the repository.
		return v, nil
	}
	switch {
	case msg.Err != nil:
		v.bar.SetMessage("")
	case msg.Reply != nil && msg.Reply.HasModifications():
		v.list.SetSelected(0)
		v.bar.SetMessage(fmt.Sprintf("Assistant updated the suite: %d test cases saved", len(msg.Reply.ModifiedTestCases)))
	default:
		v.bar.SetMessage("Assistant replied")
	}
	v.refresh()
	return v, v.loadTranscript()
}

func (v *View) handleLeft(msg messages.SuiteLeft) (*View, tea.Cmd) {
	if errors.Is(msg.Err, domain.ErrUnsavedChanges) {
		v.mode = ModeConfirmLeave
		return v, nil
	}
	if msg.Err != nil {
		v.refresh()
		return v, nil
	}
	v.reset()
	return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSuites} }
}

func (v *View) leave(discard bool) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.review == nil {
			return messages.SuiteLeft{Err: errUnavailable}
		}
		return messages.SuiteLeft{Discarded: discard, Err: v.review.Leave(ctx, discard)}
	}
}

func (v *View) save() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		return messages.SuiteSaved{Err: v.review.Save(ctx)}
	}
}

func (v *View) saveAndLeave() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if err := v.review.Save(ctx); err != nil {
			return messages.SuiteSaved{Err: err}
		}
		return messages.SuiteLeft{Err: v.review.Leave(ctx, false)}
	}
}

func (v *View) sendChat(text string) tea.Cmd {
	ctx, suiteID := v.ctx, v.suiteID
	return func() tea.Msg {
		reply, err := v.review.SendChat(ctx, text)
		return messages.ChatReplied{SuiteID: suiteID, Message: text, Reply: reply, Err: err}
	}
}

func (v *View) loadTranscript() tea.Cmd {
	suiteID := v.suiteID
	return func() tea.Msg {
		if v.repo == nil {
			return messages.ChatHistoryLoaded{SuiteID: suiteID}
		}
		return messages.ChatHistoryLoaded{SuiteID: suiteID, Messages: v.repo.ChatHistory(suiteID)}
	}
}

// refresh pulls the buffer and dirty signal from the review service.
func (v *View) refresh() {
	if v.review == nil {
		return
	}
	v.list.SetCases(v.review.TestCases())
	st := v.review.Status()
	if v.pending != "" {
		st.ChatInFlight = true
	}
	v.bar.SetStatus(st)
}

// report shows a rejected edit without changing the service's last error.
func (v *View) report(err error) {
	if err != nil {
		v.bar.SetMessage(err.Error())
	} else {
		v.bar.SetMessage("")
	}
}

func (v *View) closePrompt() {
	v.prompt.Close()
	v.mode = ModeBrowse
}

func (v *View) reset() {
	v.suiteID = ""
	v.suiteName = ""
	v.transcript = nil
	v.mode = ModeBrowse
	v.list.SetCases(nil)
	v.bar.Clear()
}

// stepsFromPrompt turns "a | b" into newline-delimited steps.
func stepsFromPrompt(value string) string {
	parts := strings.Split(value, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, "\n")
}

func editLabel(field string) string {
	switch field {
	case list.FieldSteps:
		return "Steps (separate with |)"
	case list.FieldPriority:
		return "Priority (High/Medium/Low)"
	case list.FieldExpectedOutcome:
		return "Expected outcome"
	default:
		return strings.ToUpper(field[:1]) + field[1:]
	}
}

// View renders the review view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.suiteName))
	b.WriteString("\n\n")
	b.WriteString(v.list.View())
	b.WriteString("\n\n")

	b.WriteString(v.renderTranscript())

	switch v.mode {
	case ModeEdit, ModeChat:
		b.WriteString("\n")
		b.WriteString(v.prompt.View())
		b.WriteString("\n")
	case ModeConfirmLeave:
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render("Unsaved changes. [y] discard  [s] save and leave  [any key] stay"))
		b.WriteString("\n")
	case ModeBrowse:
	}

	b.WriteString("\n")
	b.WriteString(v.bar.View())
	return b.String()
}

func (v *View) renderTranscript() string {
	msgs := v.transcript
	if len(msgs) > transcriptLines {
		msgs = msgs[len(msgs)-transcriptLines:]
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Chat"))
	b.WriteString("\n")
	if len(msgs) == 0 && v.pending == "" {
		b.WriteString(v.styles.Muted.Render("No messages yet. Press [c] to ask the assistant."))
		b.WriteString("\n")
	}
	for _, m := range msgs {
		b.WriteString(v.renderMessage(m.Role, m.Content))
	}
	if v.pending != "" {
		b.WriteString(v.renderMessage(domain.ChatRoleUser, v.pending))
		b.WriteString(v.styles.Muted.Render("  assistant is thinking..."))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderMessage(role domain.ChatRole, content string) string {
	maxLen := v.width - 14
	if maxLen < 20 {
		maxLen = 60
	}
	content = strings.ReplaceAll(content, "\n", " ")
	if r := []rune(content); len(r) > maxLen {
		content = string(r[:maxLen-3]) + "..."
	}
	if role == domain.ChatRoleUser {
		return v.styles.ChatUser.Render("you: ") + content + "\n"
	}
	return v.styles.ChatAssistant.Render("assistant: ") + content + "\n"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-transcriptLines-4)
	v.bar.SetWidth(width)
	v.prompt.SetWidth(width)
}

// SuiteID returns the open suite, empty when none is open.
func (v *View) SuiteID() string {
	return v.suiteID
}

// Mode returns the current input mode.
func (v *View) Mode() Mode {
	return v.mode
}

// Cases returns the displayed test cases.
func (v *View) Cases() []domain.TestCase {
	return v.list.Cases()
}

// Status returns the displayed review status.
func (v *View) Status() domain.ReviewStatus {
	return v.bar.Status()
}

// Message returns the status bar note.
func (v *View) Message() string {
	return v.bar.Message()
}

// Pending returns the chat message awaiting a reply.
func (v *View) Pending() string {
	return v.pending
}

// Transcript returns the loaded chat transcript.
func (v *View) Transcript() []domain.ChatMessage {
	return v.transcript
}
