// Package termrender draws rich-text documents as styled terminal text
package termrender

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/gubarz/mdline/internal/richtext"
)

const defaultWidth = 80

// Renderer turns a richtext.Document into terminal output of a fixed width
type Renderer struct {
	styles *StyleManager
	width  int
}

// New creates a renderer; a non-positive width falls back to 80 columns
func New(width int) *Renderer {
	if width <= 0 {
		width = defaultWidth
	}
	return &Renderer{styles: DefaultStyles(), width: width}
}

// WithStyles sets a custom style set
func (r *Renderer) WithStyles(s *StyleManager) *Renderer {
	r.styles = s
	return r
}

// TerminalWidth reports the column count of the terminal on fd, or 80 when
// fd is not a terminal
func TerminalWidth(fd uintptr) int {
	w, _, err := term.GetSize(int(fd))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// Render draws every block and joins them with blank lines. Runs of list
// items and quote paragraphs stay tight.
func (r *Renderer) Render(doc *richtext.Document) string {
	var b strings.Builder
	for i, blk := range doc.Blocks {
		if i > 0 {
			b.WriteString(separator(doc.Blocks[i-1], blk))
		}
		b.WriteString(r.renderBlock(blk))
	}
	return trimTrailingSpaces(b.String())
}

func separator(prev, next richtext.Block) string {
	if prev.Kind == next.Kind && (next.Kind == richtext.ListItem || next.Kind == richtext.Quote) {
		return "\n"
	}
	return "\n\n"
}

func (r *Renderer) renderBlock(blk richtext.Block) string {
	switch blk.Kind {
	case richtext.Heading:
		return r.styles.Heading.Render(r.renderSpans(blk.Spans))

	case richtext.ListItem:
		marker := "•"
		if blk.Ordered {
			marker = strconv.Itoa(blk.Index) + "."
		}
		marker = r.styles.Bullet.Render(marker) + " "
		body := r.wrap(r.renderSpans(blk.Spans), r.width-lipgloss.Width(marker))
		return lipgloss.JoinHorizontal(lipgloss.Top, marker, body)

	case richtext.Quote:
		return r.styles.Quote.Width(max(r.width-1, 1)).Render(r.renderSpans(blk.Spans))

	case richtext.CodeBlock:
		return r.styles.Code.Render(strings.TrimSuffix(blk.Text(), "\n"))

	case richtext.Rule:
		return r.styles.Rule.Render(strings.Repeat("─", r.width))

	default:
		return r.wrap(r.renderSpans(blk.Spans), r.width)
	}
}

func (r *Renderer) renderSpans(spans []richtext.Span) string {
	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(r.renderSpan(sp))
	}
	return b.String()
}

func (r *Renderer) renderSpan(sp richtext.Span) string {
	st := lipgloss.NewStyle()
	if sp.Style.Has(richtext.Bold) {
		st = st.Bold(true)
	}
	if sp.Style.Has(richtext.Italic) {
		st = st.Italic(true)
	}
	if sp.Style.Has(richtext.Strike) {
		st = st.Strikethrough(true)
	}
	if sp.Style.Has(richtext.Code) {
		st = st.Inherit(r.styles.InlineCode)
	}
	if sp.Style.Has(richtext.Link) {
		st = st.Inherit(r.styles.Link)
	}

	out := st.Render(sp.Text)
	if sp.Style.Has(richtext.Link) && sp.Href != "" && sp.Href != sp.Text {
		out += " (" + sp.Href + ")"
	}
	return out
}

func (r *Renderer) wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(max(width, 1)).Render(s)
}

// trimTrailingSpaces drops the padding lipgloss adds to fill a width
func trimTrailingSpaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
