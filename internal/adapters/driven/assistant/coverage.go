package assistant

import (
	"math"
	"strings"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// Coverage bounds.
const (
	noVisibleCoverage = 50.0
	maxCoverage       = 95.0
)

// Coverage estimates the share of visible elements referenced by the test
// cases, as a percentage rounded to one decimal and capped at 95.
//
// An element counts as covered when its id, the first 20 characters of its
// text (if longer than 3), or its type appears in any case's name,
// description or steps. With no cases or no elements the score is 0; with
// elements but none visible it is 50.
func Coverage(cases []domain.TestCase, elements []domain.PageElement) float64 {
	if len(cases) == 0 || len(elements) == 0 {
		return 0
	}

	var visible []domain.PageElement
	for _, el := range elements {
		if el.Visible {
			visible = append(visible, el)
		}
	}
	if len(visible) == 0 {
		return noVisibleCoverage
	}

	var content strings.Builder
	for _, tc := range cases {
		content.WriteString(tc.Name)
		content.WriteByte(' ')
		content.WriteString(tc.Description)
		content.WriteByte(' ')
		content.WriteString(strings.Join(tc.Steps, " "))
		content.WriteByte(' ')
	}
	text := strings.ToLower(content.String())

	covered := make(map[string]bool)
	for _, el := range visible {
		elText := strings.ToLower(strings.TrimSpace(el.Text))
		switch {
		case el.ID != "" && strings.Contains(text, strings.ToLower(el.ID)):
			covered["id:"+el.ID] = true
		case len(elText) > 3 && strings.Contains(text, prefix(elText, 20)):
			covered["text:"+prefix(elText, 20)] = true
		case el.Type != "" && strings.Contains(text, el.Type):
			covered["type:"+el.Type] = true
		}
	}

	n := min(len(covered), len(visible))
	score := float64(n) / float64(len(visible)) * 100
	return math.Round(min(score, maxCoverage)*10) / 10
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
