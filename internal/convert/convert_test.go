package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/mdline/internal/markdown"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"", FormatAuto, false},
		{"HTML", FormatHTML, false},
		{"text", FormatText, false},
		{"term", FormatTerm, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestResolveAuto(t *testing.T) {
	assert.Equal(t, FormatTerm, (&Converter{IsTerminal: true}).Resolve(FormatAuto))
	assert.Equal(t, FormatHTML, (&Converter{}).Resolve(FormatAuto))
	assert.Equal(t, FormatText, (&Converter{IsTerminal: true}).Resolve(FormatText))
}

func TestRender(t *testing.T) {
	src := "# Title\n- a\n- b"

	tests := []struct {
		name     string
		conv     Converter
		format   Format
		expected string
	}{
		{"html", Converter{}, FormatHTML, "<h1>Title</h1><ul><li>a</li><li>b</li></ul>"},
		{"html newlines", Converter{Markdown: markdown.Options{Newlines: true}}, FormatHTML, "<h1>Title</h1>\n<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n"},
		{"auto off terminal", Converter{}, FormatAuto, "<h1>Title</h1><ul><li>a</li><li>b</li></ul>"},
		{"text", Converter{}, FormatText, "Title\na\nb"},
		{"jq", Converter{Query: "[.blocks[].kind]"}, FormatJSON, "[\"heading\",\"list_item\",\"list_item\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.conv.Render(src, "doc.md", tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestRenderStructured(t *testing.T) {
	c := &Converter{}

	out, err := c.Render("**x**", "doc.md", FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, out, `"source": "doc.md"`)
	assert.Contains(t, out, `"html": "<p><strong>x</strong></p>"`)

	out, err = c.Render("**x**", "doc.md", FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, out, "kind: paragraph")
}

func TestRenderEmptySource(t *testing.T) {
	c := &Converter{}

	out, err := c.Render("", "", FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, out, `"blocks": []`)
	assert.NotContains(t, out, "null")

	out, err = c.Render("", "", FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, out, "blocks: []")
}

func TestRenderQueryNeedsJSON(t *testing.T) {
	c := &Converter{Query: ".html"}
	_, err := c.Render("x", "", FormatHTML)
	assert.ErrorContains(t, err, "--jq needs json")
}

func TestRenderTerm(t *testing.T) {
	c := &Converter{Width: 30, IsTerminal: true}
	out, err := c.Render("- a", "", FormatAuto)
	require.NoError(t, err)
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "•")
}
