package markdown

import "regexp"

// inlineRule is one regex substitution in the inline chain
type inlineRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var (
	boldRule   = inlineRule{regexp.MustCompile(`\*\*(.+?)\*\*`), "<strong>${1}</strong>"}
	italicRule = inlineRule{regexp.MustCompile(`\*(.+?)\*`), "<em>${1}</em>"}
)

// inlineRules run in order. Bold and italic appear twice: the second pass
// picks up markers left behind by the triple-emphasis rule.
var inlineRules = []inlineRule{
	boldRule,
	italicRule,
	{regexp.MustCompile("`(.+?)`"), "<code>${1}</code>"},
	{regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), `<a href="${2}">${1}</a>`},
	{regexp.MustCompile(`~~(.+?)~~`), "<del>${1}</del>"},
	{regexp.MustCompile(`\*\*\*(.+?)\*\*\*`), "<strong><em>${1}</em></strong>"},
	boldRule,
	italicRule,
}

// Inline resolves emphasis, code spans, links and strikethrough in a single
// line of text. Markers are matched lazily and never nest, so overlapping
// markers may resolve in surprising ways.
func Inline(text string) string {
	for _, rule := range inlineRules {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text
}
