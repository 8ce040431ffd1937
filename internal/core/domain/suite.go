package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Placeholder values used when a test case is created without content.
const (
	// DefaultTestCaseName is the name given to a blank test case.
	DefaultTestCaseName = "New Test Case"

	// DefaultExpectedOutcome is used when no expected outcome is known.
	DefaultExpectedOutcome = "Test should complete successfully"

	// DefaultDesiredCount is how many test cases a design run asks for.
	DefaultDesiredCount = 12
)

// Priority ranks a test case.
type Priority string

// Available priorities.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// IsValid returns true if the priority is recognised.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p Priority) String() string {
	return string(p)
}

// ParsePriority parses a priority case-insensitively.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, s)
	}
}

// NormalisePriority parses s, falling back to Medium for unknown values.
func NormalisePriority(s string) Priority {
	p, err := ParsePriority(s)
	if err != nil {
		return PriorityMedium
	}
	return p
}

// TestCase is one structured test record within a suite.
//
// ID is a presentation-order index. It is reassigned 1..N whenever the
// suite is saved and must not be used as a reference from elsewhere.
type TestCase struct {
	ID              int               `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Steps           []string          `json:"steps"`
	ExpectedOutcome string            `json:"expected_outcome"`
	Priority        Priority          `json:"priority"`
	Locators        map[string]string `json:"locators,omitempty"`
}

// Clone returns a deep copy of the test case.
func (tc TestCase) Clone() TestCase {
	out := tc
	if tc.Steps != nil {
		out.Steps = append([]string(nil), tc.Steps...)
	}
	if tc.Locators != nil {
		out.Locators = make(map[string]string, len(tc.Locators))
		for k, v := range tc.Locators {
			out.Locators[k] = v
		}
	}
	return out
}

// Equal reports whether two test cases hold the same content.
// Nil and empty steps or locators compare equal.
func (tc TestCase) Equal(other TestCase) bool {
	if tc.ID != other.ID ||
		tc.Name != other.Name ||
		tc.Description != other.Description ||
		tc.ExpectedOutcome != other.ExpectedOutcome ||
		tc.Priority != other.Priority {
		return false
	}
	if len(tc.Steps) != len(other.Steps) {
		return false
	}
	for i := range tc.Steps {
		if tc.Steps[i] != other.Steps[i] {
			return false
		}
	}
	if len(tc.Locators) != len(other.Locators) {
		return false
	}
	for k, v := range tc.Locators {
		if ov, ok := other.Locators[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Validate checks the test case has a name and a known priority.
func (tc TestCase) Validate() error {
	if strings.TrimSpace(tc.Name) == "" {
		return fmt.Errorf("%w: test case name is required", ErrValidation)
	}
	if !tc.Priority.IsValid() {
		return fmt.Errorf("%w: test case %q has unknown priority %q", ErrValidation, tc.Name, tc.Priority)
	}
	return nil
}

// CloneTestCases deep-copies a test case sequence.
// A nil input yields nil.
func CloneTestCases(cases []TestCase) []TestCase {
	if cases == nil {
		return nil
	}
	out := make([]TestCase, len(cases))
	for i, tc := range cases {
		out[i] = tc.Clone()
	}
	return out
}

// EqualTestCases reports whether two sequences hold the same content in the same order.
func EqualTestCases(a, b []TestCase) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// RenumberTestCases assigns each case its 1-based position as ID, in place.
func RenumberTestCases(cases []TestCase) {
	for i := range cases {
		cases[i].ID = i + 1
	}
}

// ValidateTestCases validates every case in the sequence.
func ValidateTestCases(cases []TestCase) error {
	for i, tc := range cases {
		if err := tc.Validate(); err != nil {
			return fmt.Errorf("test case %d: %w", i+1, err)
		}
	}
	return nil
}

// BlankTestCase returns a new test case with placeholder defaults.
func BlankTestCase() TestCase {
	return TestCase{
		Name:            DefaultTestCaseName,
		Steps:           []string{},
		ExpectedOutcome: DefaultExpectedOutcome,
		Priority:        PriorityMedium,
	}
}

// TestSuite is a named, ordered collection of test cases for one page.
type TestSuite struct {
	// ID is the unique identifier for the suite.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// URL is the page the suite was designed against.
	URL string `json:"url"`

	// TestCases is the ordered test case sequence.
	TestCases []TestCase `json:"test_cases"`

	// Exploration is a copy of the originating exploration's page payload,
	// taken when the suite was created. It is not a live link.
	Exploration json.RawMessage `json:"exploration,omitempty"`

	// CoverageScore is the estimated element coverage percentage at design time.
	CoverageScore float64 `json:"coverage_score"`

	// CreatedAt is when the suite was created.
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the suite.
func (s TestSuite) Clone() TestSuite {
	out := s
	out.TestCases = CloneTestCases(s.TestCases)
	if s.Exploration != nil {
		out.Exploration = append(json.RawMessage(nil), s.Exploration...)
	}
	return out
}

// SuitePatch names the suite fields to replace in an update.
// Nil fields are left unchanged; TestCases replaces the whole sequence.
type SuitePatch struct {
	Name      *string
	URL       *string
	TestCases *[]TestCase
}

// ExplorationPatch names the exploration fields to replace in an update.
type ExplorationPatch struct {
	Name *string
}
