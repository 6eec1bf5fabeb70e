package termrender

import (
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/mdline/internal/markdown"
	"github.com/gubarz/mdline/internal/richtext"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func render(t *testing.T, src string, width int) string {
	t.Helper()
	doc, err := richtext.FromMarkdown(src, markdown.Options{})
	require.NoError(t, err)
	return New(width).Render(doc)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"heading then paragraph", "# Title\n\npara", "Title\n\npara"},
		{"bullets stay tight", "- a\n- b", "• a\n• b"},
		{"ordered items are numbered", "1. x\n2. y", "1. x\n2. y"},
		{"code block is indented", "```\nx := 1\ny := 2\n```", "  x := 1\n  y := 2"},
		{"link shows target", "[go](https://go.dev)", "go (https://go.dev)"},
		{"bare link shows once", "[u](u)", "u"},
		{"rule spans width", "---", strings.Repeat("─", 10)},
		{"quote has a left bar", "> q", "│ q"},
		{"list then paragraph", "- a\ntext", "• a\n\ntext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, render(t, tt.src, 10))
		})
	}
}

func TestRenderWrapsParagraphs(t *testing.T) {
	src := "the quick brown fox jumps over the lazy dog and keeps running far away"
	out := render(t, src, 20)

	lines := strings.Split(out, "\n")
	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), 20, "line %q", line)
	}
	assert.Equal(t, src, strings.Join(strings.Fields(out), " "))
}

func TestNewDefaultsWidth(t *testing.T) {
	doc, err := richtext.FromMarkdown("---", markdown.Options{})
	require.NoError(t, err)

	tests := []struct {
		width    int
		expected int
	}{
		{0, 80},
		{-5, 80},
		{42, 42},
	}

	for _, tt := range tests {
		out := New(tt.width).Render(doc)
		assert.Equal(t, strings.Repeat("─", tt.expected), out, "width %d", tt.width)
	}
}

func TestLoadFromConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("color_heading", "31")
	viper.Set("color_code", "92")
	viper.Set("color_link", "201")
	viper.Set("color_quote", "35")
	viper.Set("color_rule", "37")

	s := DefaultStyles()
	s.LoadFromConfig()

	assert.Equal(t, lipgloss.Color("1"), s.Heading.GetForeground())
	assert.Equal(t, lipgloss.Color("10"), s.Code.GetForeground())
	assert.Equal(t, lipgloss.Color("10"), s.InlineCode.GetForeground())
	assert.Equal(t, lipgloss.Color("201"), s.Link.GetForeground())
	assert.Equal(t, lipgloss.Color("5"), s.Quote.GetForeground())
	assert.Equal(t, lipgloss.Color("5"), s.Quote.GetBorderLeftForeground())
	assert.Equal(t, lipgloss.Color("7"), s.Rule.GetForeground())
	assert.Equal(t, lipgloss.Color("7"), s.Bullet.GetForeground())
	assert.True(t, s.Heading.GetBold(), "config colours keep the base attributes")
}

func TestTerminalWidthFallback(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "notatty")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 80, TerminalWidth(f.Fd()))
}

func TestParseANSIColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("6"), parseANSIColor("36"))
	assert.Equal(t, lipgloss.Color("8"), parseANSIColor("90"))
	assert.Equal(t, lipgloss.Color("240"), parseANSIColor("240"))
}
