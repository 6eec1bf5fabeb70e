package termrender

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/mdline/internal/config"
)

// StyleManager encapsulates all terminal styles used when rendering a document
type StyleManager struct {
	// Block styles
	Heading lipgloss.Style
	Quote   lipgloss.Style
	Code    lipgloss.Style
	Rule    lipgloss.Style
	Bullet  lipgloss.Style

	// Inline styles
	Link       lipgloss.Style
	InlineCode lipgloss.Style
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Heading:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Quote:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("8")).PaddingLeft(1),
		Code:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")).PaddingLeft(2),
		Rule:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Bullet:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Link:       lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("4")),
		InlineCode: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	headingColor := parseANSIColor(config.GetColorHeading())
	codeColor := parseANSIColor(config.GetColorCode())
	linkColor := parseANSIColor(config.GetColorLink())
	quoteColor := parseANSIColor(config.GetColorQuote())
	ruleColor := parseANSIColor(config.GetColorRule())

	s.Heading = s.Heading.Foreground(headingColor)
	s.Quote = s.Quote.Foreground(quoteColor).BorderForeground(quoteColor)
	s.Code = s.Code.Foreground(codeColor)
	s.InlineCode = s.InlineCode.Foreground(codeColor)
	s.Link = s.Link.Foreground(linkColor)
	s.Rule = s.Rule.Foreground(ruleColor)
	s.Bullet = s.Bullet.Foreground(ruleColor)
}

// parseANSIColor converts ANSI color codes to lipgloss colors
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}
