package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, string(theme.Primary))
	assert.NotEmpty(t, string(theme.Secondary))
	assert.NotEmpty(t, string(theme.Foreground))
	assert.NotEmpty(t, string(theme.Muted))
	assert.NotEmpty(t, string(theme.Success))
	assert.NotEmpty(t, string(theme.Warning))
	assert.NotEmpty(t, string(theme.Error))
	assert.NotEmpty(t, string(theme.Border))
	assert.NotEmpty(t, string(theme.StatusBackground))
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	accents := []lipgloss.Color{
		theme.Primary,
		theme.Secondary,
		theme.Success,
		theme.Warning,
		theme.Error,
	}

	seen := make(map[string]bool)
	for _, c := range accents {
		s := string(c)
		assert.False(t, seen[s], "duplicate accent: %s", s)
		seen[s] = true
	}
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestDefaultStyles(t *testing.T) {
	s := DefaultStyles()

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme().Primary, s.Theme().Primary)
}

func TestForState(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Warning.Bold(true).Render("dirty"), s.ForState(domain.ReviewDirty).Render("dirty"))
	assert.Equal(t, s.Success.Render("saved"), s.ForState(domain.ReviewSaved).Render("saved"))
	assert.Equal(t, s.Normal.Render("editing"), s.ForState(domain.ReviewEditing).Render("editing"))
}

func TestForPriority(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Error.Render("High"), s.ForPriority(domain.PriorityHigh).Render("High"))
	assert.Equal(t, s.Warning.Render("Medium"), s.ForPriority(domain.PriorityMedium).Render("Medium"))
	assert.Equal(t, s.Muted.Render("Low"), s.ForPriority(domain.PriorityLow).Render("Low"))
}
