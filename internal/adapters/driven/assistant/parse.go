package assistant

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// Output bounds applied to parsed test cases.
const (
	maxNameLen        = 100
	maxDescriptionLen = 300
	maxExpectedLen    = 300
	maxSteps          = 15
	defaultDesc       = "Test case generated from page analysis"
)

// rawTestCase is the loose JSON shape models return. Steps may arrive as a
// list or a single newline-separated string, and ids as numbers or strings.
type rawTestCase struct {
	ID              json.RawMessage   `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Steps           json.RawMessage   `json:"steps"`
	ExpectedOutcome string            `json:"expected_outcome"`
	Expected        string            `json:"expected"`
	Priority        string            `json:"priority"`
	Locators        map[string]string `json:"locators"`
}

// ParseTestCases turns a model's design output into test cases.
// JSON is tried first, then the "Test N: ..." text layout. The result is
// deduplicated and renumbered 1..N. When nothing parses, placeholder cases
// are returned.
func ParseTestCases(output string) []domain.TestCase {
	cases, err := parseJSONCases(output)
	if err != nil || len(cases) == 0 {
		cases = parseTextCases(output)
	}
	cases = Dedupe(cases)
	if len(cases) == 0 {
		return PlaceholderTestCases()
	}
	domain.RenumberTestCases(cases)
	return cases
}

// parseJSONCases accepts {"test_cases": [...]} or a bare array, optionally
// wrapped in prose or a markdown fence.
func parseJSONCases(output string) ([]domain.TestCase, error) {
	var envelope struct {
		TestCases []rawTestCase `json:"test_cases"`
	}
	if obj, ok := extractJSON(output, '{', '}'); ok {
		if err := json.Unmarshal([]byte(obj), &envelope); err == nil && envelope.TestCases != nil {
			return convertRaw(envelope.TestCases), nil
		}
	}

	if arr, ok := extractJSON(output, '[', ']'); ok {
		var raw []rawTestCase
		if err := json.Unmarshal([]byte(arr), &raw); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		return convertRaw(raw), nil
	}
	return nil, fmt.Errorf("%w: no JSON test cases found", domain.ErrValidation)
}

// decodeModifiedCases parses the "test_cases" member of a chat reply.
// A null or absent member yields nil.
func decodeModifiedCases(raw json.RawMessage) ([]domain.TestCase, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var cases []rawTestCase
	if err := json.Unmarshal(raw, &cases); err != nil {
		return nil, fmt.Errorf("%w: test_cases: %w", domain.ErrValidation, err)
	}
	return convertRaw(cases), nil
}

func convertRaw(raw []rawTestCase) []domain.TestCase {
	out := make([]domain.TestCase, 0, len(raw))
	for i, r := range raw {
		expected := r.ExpectedOutcome
		if expected == "" {
			expected = r.Expected
		}
		tc := domain.TestCase{
			ID:              rawID(r.ID, i+1),
			Name:            truncate(strings.TrimSpace(r.Name), maxNameLen),
			Description:     truncate(strings.TrimSpace(r.Description), maxDescriptionLen),
			Steps:           rawSteps(r.Steps),
			ExpectedOutcome: truncate(strings.TrimSpace(expected), maxExpectedLen),
			Priority:        domain.NormalisePriority(r.Priority),
			Locators:        r.Locators,
		}
		if tc.Name == "" {
			tc.Name = domain.DefaultTestCaseName
		}
		if tc.ExpectedOutcome == "" {
			tc.ExpectedOutcome = domain.DefaultExpectedOutcome
		}
		out = append(out, tc)
	}
	return out
}

func rawID(raw json.RawMessage, fallback int) int {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func rawSteps(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return []string{}
		}
		list = strings.Split(single, "\n")
	}
	steps := make([]string, 0, len(list))
	for _, s := range list {
		if s = cleanStep(s); s != "" {
			steps = append(steps, s)
		}
		if len(steps) == maxSteps {
			break
		}
	}
	return steps
}

// extractJSON returns the outermost open..close span in s.
func extractJSON(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

var (
	blockStart   = regexp.MustCompile(`(?i)(?:Test|###)\s*(?:Case)?\s*#?\d+`)
	nameLine     = regexp.MustCompile(`(?i)^(?:Test|###)\s*(?:Case)?\s*#?(\d+)\s*[:\-.]?\s*(.*)`)
	fieldLabel   = regexp.MustCompile(`(?i)^\**\s*(description|desc|steps|expected(?: outcome)?|priority)\s*\**\s*:\s*\**\s*(.*)$`)
	stepBullet   = regexp.MustCompile(`^(?:[-*•]|\d+[.)\]])\s*`)
	priorityWord = regexp.MustCompile(`(?i)\b(high|medium|low)\b`)
)

// parseTextCases reads the line-oriented layout:
//
//	Test 1: Name
//	Description: ...
//	Steps:
//	1. ...
//	Expected: ...
//	Priority: High
func parseTextCases(output string) []domain.TestCase {
	output = strings.ReplaceAll(output, `\n`, "\n")
	idx := blockStart.FindAllStringIndex(output, -1)

	var cases []domain.TestCase
	for i, loc := range idx {
		end := len(output)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		block := output[loc[0]:end]
		if len(strings.TrimSpace(block)) < 20 {
			continue
		}
		if tc, ok := parseTextBlock(block, len(cases)+1); ok {
			cases = append(cases, tc)
		}
	}
	return cases
}

func parseTextBlock(block string, fallbackID int) (domain.TestCase, bool) {
	lines := strings.Split(block, "\n")
	m := nameLine.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return domain.TestCase{}, false
	}

	tc := domain.TestCase{ID: fallbackID, Priority: domain.PriorityMedium}
	if n, err := strconv.Atoi(m[1]); err == nil {
		tc.ID = n
	}
	tc.Name = strings.Trim(strings.TrimSpace(m[2]), "*:# ")
	if tc.Name == "" {
		return domain.TestCase{}, false
	}

	var desc, expected []string
	section := ""
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if f := fieldLabel.FindStringSubmatch(line); f != nil {
			section = strings.ToLower(f[1])
			line = strings.TrimSpace(f[2])
			if line == "" {
				continue
			}
		}
		switch {
		case section == "description" || section == "desc":
			desc = append(desc, line)
		case section == "steps":
			if step := cleanStep(line); len(step) > 5 && len(tc.Steps) < maxSteps {
				tc.Steps = append(tc.Steps, step)
			}
		case strings.HasPrefix(section, "expected"):
			expected = append(expected, line)
		case section == "priority":
			if p := priorityWord.FindString(line); p != "" {
				tc.Priority = domain.NormalisePriority(p)
			}
		}
	}

	tc.Name = truncate(tc.Name, maxNameLen)
	tc.Description = truncate(strings.Join(desc, " "), maxDescriptionLen)
	if tc.Description == "" {
		tc.Description = defaultDesc
	}
	tc.ExpectedOutcome = truncate(strings.Trim(strings.Join(expected, " "), `"' `), maxExpectedLen)
	if len(tc.ExpectedOutcome) < 5 {
		tc.ExpectedOutcome = domain.DefaultExpectedOutcome
	}
	if len(tc.Steps) == 0 {
		first, _, _ := strings.Cut(tc.Description, ".")
		tc.Steps = []string{"Navigate to the page", first}
	}
	return tc, true
}

func cleanStep(s string) string {
	s = strings.TrimSpace(s)
	s = stepBullet.ReplaceAllString(s, "")
	return strings.Trim(s, `"' `)
}

// Dedupe drops cases whose lower-cased name and first step repeat an earlier case.
func Dedupe(cases []domain.TestCase) []domain.TestCase {
	type key struct{ name, step string }
	seen := make(map[key]bool, len(cases))
	out := make([]domain.TestCase, 0, len(cases))
	for _, tc := range cases {
		k := key{name: strings.ToLower(tc.Name)}
		if len(tc.Steps) > 0 {
			k.step = strings.ToLower(tc.Steps[0])
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, tc)
	}
	return out
}

// PlaceholderTestCases is returned when design output cannot be parsed.
func PlaceholderTestCases() []domain.TestCase {
	return []domain.TestCase{
		{
			ID:              1,
			Name:            "Header Presence",
			Description:     "Auto-generated test case",
			Steps:           []string{"Navigate to page", "Verify header exists"},
			ExpectedOutcome: "Header element is visible",
			Priority:        domain.PriorityMedium,
		},
		{
			ID:              2,
			Name:            "Footer Presence",
			Description:     "Auto-generated test case",
			Steps:           []string{"Navigate to page", "Verify footer exists"},
			ExpectedOutcome: "Footer element is visible",
			Priority:        domain.PriorityMedium,
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
