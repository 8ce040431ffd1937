package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

func TestCoverage(t *testing.T) {
	cases := []domain.TestCase{
		{Name: "Sign in", Steps: []string{"Click the button with id signin-btn"}},
		{Name: "Search", Description: "Use the search box", Steps: []string{"Type into the field"}},
	}
	elements := []domain.PageElement{
		{Tag: "button", ID: "signin-btn", Visible: true},
		{Tag: "a", Text: "Search the catalogue", Visible: true},
		{Tag: "input", Type: "email", Visible: true},
		{Tag: "a", Text: "Careers", Visible: true},
		{Tag: "a", Text: "Hidden", Visible: false},
	}

	// Only signin-btn is referenced; hidden elements are not counted.
	assert.Equal(t, 25.0, Coverage(cases, elements))
}

func TestCoverage_Edges(t *testing.T) {
	cases := []domain.TestCase{{Name: "x"}}
	hidden := []domain.PageElement{{Tag: "a", Visible: false}}

	assert.Zero(t, Coverage(nil, hidden))
	assert.Zero(t, Coverage(cases, nil))
	assert.Equal(t, 50.0, Coverage(cases, hidden))
}

func TestCoverage_CappedAndRounded(t *testing.T) {
	cases := []domain.TestCase{{Name: "click ok and cancel and help"}}
	all := []domain.PageElement{
		{ID: "ok", Visible: true},
		{ID: "cancel", Visible: true},
	}
	assert.Equal(t, 95.0, Coverage(cases, all))

	three := []domain.PageElement{
		{ID: "ok", Visible: true},
		{ID: "zzz", Visible: true},
		{ID: "yyy", Visible: true},
	}
	assert.Equal(t, 33.3, Coverage(cases, three))
}
