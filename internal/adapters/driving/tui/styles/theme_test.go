package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for name, c := range map[string]lipgloss.Color{
		"primary":    theme.Primary,
		"secondary":  theme.Secondary,
		"foreground": theme.Foreground,
		"muted":      theme.Muted,
		"success":    theme.Success,
		"warning":    theme.Warning,
		"error":      theme.Error,
		"border":     theme.Border,
		"bar":        theme.Bar,
	} {
		assert.NotEmpty(t, string(c), name)
	}
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

func TestNewStyles_WithTheme(t *testing.T) {
	theme := DefaultTheme()
	styles := NewStyles(theme)

	require.NotNil(t, styles)
	assert.Equal(t, theme, styles.Theme())
}

func TestNewStyles_NilTheme(t *testing.T) {
	styles := NewStyles(nil)

	require.NotNil(t, styles)
	assert.NotNil(t, styles.Theme())
}

func TestStyles_CanRenderText(t *testing.T) {
	styles := DefaultStyles()

	testCases := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Title", styles.Title},
		{"Subtitle", styles.Subtitle},
		{"Normal", styles.Normal},
		{"Muted", styles.Muted},
		{"Selected", styles.Selected},
		{"Error", styles.Error},
		{"Success", styles.Success},
		{"Warning", styles.Warning},
		{"Help", styles.Help},
		{"Raw", styles.Raw},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := tc.style.Render("test text")
			assert.Contains(t, result, "test text")
		})
	}
}
