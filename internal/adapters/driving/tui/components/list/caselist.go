// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// Editable test case fields, in cursor order.
const (
	FieldName            = "name"
	FieldDescription     = "description"
	FieldSteps           = "steps"
	FieldExpectedOutcome = "expected_outcome"
	FieldPriority        = "priority"
)

// Fields lists the editable fields in the order tab moves through them.
var Fields = []string{FieldName, FieldDescription, FieldSteps, FieldExpectedOutcome, FieldPriority}

// CaseList displays a suite's test cases with a row cursor and a field
// cursor for the selected row.
type CaseList struct {
	cases    []domain.TestCase
	selected int
	field    int
	styles   *styles.Styles
	width    int
	height   int
}

// NewCaseList creates a new test case list component.
func NewCaseList(s *styles.Styles) *CaseList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &CaseList{
		styles: s,
		width:  80,
		height: 20,
	}
}

// Update handles list navigation messages.
func (l *CaseList) Update(msg tea.Msg) (*CaseList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "tab":
			l.NextField()
		case "shift+tab":
			l.PrevField()
		}
	}
	return l, nil
}

// View renders the list and the detail of the selected case.
func (l *CaseList) View() string {
	if len(l.cases) == 0 {
		return l.styles.Muted.Render("No test cases. Press [a] to add one or [c] to ask the assistant.")
	}

	lines := make([]string, 0, len(l.cases)+12)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Test cases (%d)", len(l.cases))), "")

	// Leave room for the detail pane and the status bar
	visible := l.height - 16
	if visible < 3 {
		visible = 3
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.cases) {
		end = len(l.cases)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderRow(i, &l.cases[i]))
	}

	lines = append(lines, "", l.renderDetail(&l.cases[l.selected]))
	return strings.Join(lines, "\n")
}

func (l *CaseList) renderRow(index int, tc *domain.TestCase) string {
	maxName := l.width - 20
	if maxName < 10 {
		maxName = 10
	}
	name := tc.Name
	if r := []rune(name); len(r) > maxName {
		name = string(r[:maxName-3]) + "..."
	}

	if index == l.selected {
		return l.styles.Selected.Render(fmt.Sprintf("> %2d. %-*s %s", index+1, maxName, name, tc.Priority))
	}
	return l.styles.Normal.Render(fmt.Sprintf("  %2d. %-*s ", index+1, maxName, name)) +
		l.styles.ForPriority(tc.Priority).Render(string(tc.Priority))
}

func (l *CaseList) renderDetail(tc *domain.TestCase) string {
	var b strings.Builder
	for i, f := range Fields {
		label := fieldLabel(f)
		if i == l.field {
			label = l.styles.Field.Render(label)
		} else {
			label = l.styles.Muted.Render(label)
		}

		switch f {
		case FieldSteps:
			b.WriteString(label + ":\n")
			if len(tc.Steps) == 0 {
				b.WriteString(l.styles.Muted.Render("    (none)") + "\n")
			}
			for n, step := range tc.Steps {
				b.WriteString(fmt.Sprintf("    %d. %s\n", n+1, step))
			}
		default:
			b.WriteString(fmt.Sprintf("%s: %s\n", label, FieldValue(*tc, f)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func fieldLabel(field string) string {
	switch field {
	case FieldName:
		return "Name"
	case FieldDescription:
		return "Description"
	case FieldSteps:
		return "Steps"
	case FieldExpectedOutcome:
		return "Expected"
	case FieldPriority:
		return "Priority"
	default:
		return field
	}
}

// FieldValue returns the editable text of field. Steps are joined with " | ".
func FieldValue(tc domain.TestCase, field string) string {
	switch field {
	case FieldName:
		return tc.Name
	case FieldDescription:
		return tc.Description
	case FieldSteps:
		return strings.Join(tc.Steps, " | ")
	case FieldExpectedOutcome:
		return tc.ExpectedOutcome
	case FieldPriority:
		return string(tc.Priority)
	default:
		return ""
	}
}

// SetCases replaces the displayed cases, keeping the cursor in range.
func (l *CaseList) SetCases(cases []domain.TestCase) {
	l.cases = cases
	if l.selected >= len(cases) {
		l.selected = len(cases) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Cases returns the displayed cases.
func (l *CaseList) Cases() []domain.TestCase {
	return l.cases
}

// Selected returns the index of the selected case.
func (l *CaseList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *CaseList) SetSelected(index int) {
	if index >= 0 && index < len(l.cases) {
		l.selected = index
	}
}

// SelectedCase returns the selected case, or nil if the list is empty.
func (l *CaseList) SelectedCase() *domain.TestCase {
	if len(l.cases) == 0 || l.selected < 0 || l.selected >= len(l.cases) {
		return nil
	}
	return &l.cases[l.selected]
}

// Field returns the field under the cursor.
func (l *CaseList) Field() string {
	return Fields[l.field]
}

// NextField moves the field cursor forward, wrapping.
func (l *CaseList) NextField() {
	l.field = (l.field + 1) % len(Fields)
}

// PrevField moves the field cursor back, wrapping.
func (l *CaseList) PrevField() {
	l.field = (l.field + len(Fields) - 1) % len(Fields)
}

// MoveUp moves selection up.
func (l *CaseList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *CaseList) MoveDown() {
	if l.selected < len(l.cases)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *CaseList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of cases.
func (l *CaseList) Count() int {
	return len(l.cases)
}
