package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// Editable test case fields.
const (
	FieldName            = "name"
	FieldDescription     = "description"
	FieldExpectedOutcome = "expected_outcome"
	FieldPriority        = "priority"
)

// EditableFields lists the fields accepted by SetField.
func EditableFields() []string {
	return []string{FieldName, FieldDescription, FieldExpectedOutcome, FieldPriority}
}

// EditBuffer is a private working copy of one suite's test cases.
// Nothing in the buffer is shared with the suite it was opened from.
//
// IDs are left as they are while editing; Renumber fixes them up before save.
type EditBuffer struct {
	suiteID string
	cases   []domain.TestCase
}

// OpenEditBuffer deep-copies the suite's test cases into a new buffer.
func OpenEditBuffer(suite domain.TestSuite) *EditBuffer {
	cases := domain.CloneTestCases(suite.TestCases)
	if cases == nil {
		cases = []domain.TestCase{}
	}
	return &EditBuffer{
		suiteID: suite.ID,
		cases:   cases,
	}
}

// SuiteID returns the id of the suite the buffer was opened from.
func (b *EditBuffer) SuiteID() string {
	return b.suiteID
}

// Len returns the number of test cases.
func (b *EditBuffer) Len() int {
	return len(b.cases)
}

// TestCases returns a deep copy of the buffer.
func (b *EditBuffer) TestCases() []domain.TestCase {
	return domain.CloneTestCases(b.cases)
}

func (b *EditBuffer) checkIndex(index int) error {
	if index < 0 || index >= len(b.cases) {
		return fmt.Errorf("%w: test case index %d out of range [0,%d)", domain.ErrInvalidInput, index, len(b.cases))
	}
	return nil
}

// SetField sets one scalar field of the case at index.
func (b *EditBuffer) SetField(index int, field, value string) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}

	tc := &b.cases[index]
	switch field {
	case FieldName:
		tc.Name = value
	case FieldDescription:
		tc.Description = value
	case FieldExpectedOutcome:
		tc.ExpectedOutcome = value
	case FieldPriority:
		p, err := domain.ParsePriority(value)
		if err != nil {
			return err
		}
		tc.Priority = p
	default:
		return fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, field)
	}
	return nil
}

// SetSteps replaces the steps of the case at index with the non-blank lines of text.
func (b *EditBuffer) SetSteps(index int, text string) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	b.cases[index].Steps = SplitSteps(text)
	return nil
}

// SplitSteps splits newline-delimited text into steps, dropping blank lines.
func SplitSteps(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	steps := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		steps = append(steps, line)
	}
	return steps
}

// AddBlank appends a placeholder case and returns its index.
func (b *EditBuffer) AddBlank() int {
	tc := domain.BlankTestCase()
	tc.ID = len(b.cases) + 1
	b.cases = append(b.cases, tc)
	return len(b.cases) - 1
}

// RemoveAt deletes the case at index.
func (b *EditBuffer) RemoveAt(index int) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	b.cases = append(b.cases[:index], b.cases[index+1:]...)
	return nil
}

// ReplaceAll overwrites the buffer with a copy of cases.
func (b *EditBuffer) ReplaceAll(cases []domain.TestCase) {
	cloned := domain.CloneTestCases(cases)
	if cloned == nil {
		cloned = []domain.TestCase{}
	}
	b.cases = cloned
}

// Renumber assigns each case its 1-based position as ID.
func (b *EditBuffer) Renumber() {
	domain.RenumberTestCases(b.cases)
}

// Equal reports whether the buffer holds exactly cases.
func (b *EditBuffer) Equal(cases []domain.TestCase) bool {
	return domain.EqualTestCases(b.cases, cases)
}
