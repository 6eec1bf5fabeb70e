package markdown

import (
	"regexp"
	"strings"
)

// Options controls the shape of the generated HTML
type Options struct {
	// Newlines appends a line break after every block-level fragment.
	Newlines bool
	// EscapeHTML escapes &, < and > in line content and code lines.
	EscapeHTML bool
}

var (
	headingRe     = regexp.MustCompile(`^(#{1,6}) (.*)$`)
	orderedItemRe = regexp.MustCompile(`^\d+\.[\t\n\v\f\r ][^\n\r\x{85}\x{2028}\x{2029}]*$`)
	orderedMarkRe = regexp.MustCompile(`^\d+\.[\t\n\v\f\r ]`)
	ruleRe        = regexp.MustCompile(`^[-*_]{3,}$`)
	lineBreakRe   = regexp.MustCompile(`\r\n|\r|\n`)
)

const fence = "```"

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// ToHTML converts Markdown source to compact HTML
func ToHTML(src string) string {
	return Convert(src, Options{})
}

// Convert runs the line scanner over src and returns the accumulated HTML.
// It never fails: unknown markers pass through, open blocks are closed at
// end of input.
func Convert(src string, opts Options) string {
	s := &blockState{opts: opts}
	for _, line := range splitLines(src) {
		s.scanLine(line)
	}
	s.finish()
	return s.out.String()
}

// splitLines splits on any of \r\n, \r and \n
func splitLines(src string) []string {
	return lineBreakRe.Split(src, -1)
}

// blockState is the open-block bookkeeping for a single Convert call
type blockState struct {
	opts Options
	out  strings.Builder

	inList        bool
	inOrderedList bool
	inCodeBlock   bool
	inBlockquote  bool
}

// emit writes one block-level fragment
func (s *blockState) emit(fragment string) {
	s.out.WriteString(fragment)
	if s.opts.Newlines {
		s.out.WriteByte('\n')
	}
}

func (s *blockState) inline(text string) string {
	if s.opts.EscapeHTML {
		text = htmlEscaper.Replace(text)
	}
	return Inline(text)
}

func (s *blockState) closeList() {
	if s.inList {
		s.emit("</ul>")
		s.inList = false
	}
}

func (s *blockState) closeOrderedList() {
	if s.inOrderedList {
		s.emit("</ol>")
		s.inOrderedList = false
	}
}

func (s *blockState) closeBlockquote() {
	if s.inBlockquote {
		s.emit("</blockquote>")
		s.inBlockquote = false
	}
}

// closeOpenBlocks closes lists and blockquote, in that order
func (s *blockState) closeOpenBlocks() {
	s.closeList()
	s.closeOrderedList()
	s.closeBlockquote()
}

func (s *blockState) scanLine(line string) {
	trimmed := strings.TrimSpace(line)

	// Fence toggles code mode
	if strings.HasPrefix(trimmed, fence) {
		s.closeOpenBlocks()
		if s.inCodeBlock {
			s.emit("</code></pre>")
			s.inCodeBlock = false
		} else {
			// Opener is glued to the first code line
			s.out.WriteString("<pre><code>")
			s.inCodeBlock = true
		}
		return
	}

	// Inside code block: verbatim
	if s.inCodeBlock {
		if s.opts.EscapeHTML {
			line = htmlEscaper.Replace(line)
		}
		s.out.WriteString(line)
		s.out.WriteByte('\n')
		return
	}

	if m := headingRe.FindStringSubmatch(trimmed); m != nil {
		tag := "h" + string(rune('0'+len(m[1])))
		s.emit("<" + tag + ">" + s.inline(m[2]) + "</" + tag + ">")
		return
	}

	switch {
	case strings.HasPrefix(trimmed, "> "):
		if !s.inBlockquote {
			s.emit("<blockquote>")
			s.inBlockquote = true
		}
		s.emit("<p>" + s.inline(trimmed[2:]) + "</p>")

	case orderedItemRe.MatchString(trimmed):
		s.closeList()
		if !s.inOrderedList {
			s.emit("<ol>")
			s.inOrderedList = true
		}
		content := orderedMarkRe.ReplaceAllString(trimmed, "")
		s.emit("<li>" + s.inline(content) + "</li>")

	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		s.closeOrderedList()
		if !s.inList {
			s.emit("<ul>")
			s.inList = true
		}
		s.emit("<li>" + s.inline(trimmed[2:]) + "</li>")

	case ruleRe.MatchString(trimmed):
		s.closeOpenBlocks()
		s.emit("<hr>")

	case trimmed == "":
		// Paragraph break
		s.closeOpenBlocks()

	default:
		s.closeOpenBlocks()
		s.emit("<p>" + s.inline(trimmed) + "</p>")
	}
}

// finish force-closes whatever is still open at end of input
func (s *blockState) finish() {
	s.closeList()
	s.closeOrderedList()
	s.closeBlockquote()
	if s.inCodeBlock {
		s.emit("</code></pre>")
		s.inCodeBlock = false
	}
}
