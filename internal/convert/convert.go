// Package convert ties the transformer to the output formats the CLI offers
package convert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gubarz/mdline/internal/markdown"
	"github.com/gubarz/mdline/internal/outfmt"
	"github.com/gubarz/mdline/internal/richtext"
	"github.com/gubarz/mdline/internal/termrender"
)

// Format selects what Render produces
type Format string

const (
	FormatAuto Format = "auto"
	FormatHTML Format = "html"
	FormatText Format = "text"
	FormatTerm Format = "term"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name; empty means auto
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatHTML, FormatText, FormatTerm, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (supported: auto, html, text, term, json, yaml)", s)
	}
}

// Converter renders Markdown into one of the supported formats
type Converter struct {
	Markdown markdown.Options
	Width    int
	Query    string
	Styles   *termrender.StyleManager
	// IsTerminal decides what auto resolves to
	IsTerminal bool
}

// Resolve maps auto onto a concrete format
func (c *Converter) Resolve(f Format) Format {
	if f != FormatAuto {
		return f
	}
	if c.IsTerminal {
		return FormatTerm
	}
	return FormatHTML
}

// Render converts src. name labels the source in structured output.
func (c *Converter) Render(src, name string, f Format) (string, error) {
	f = c.Resolve(f)
	if c.Query != "" && f != FormatJSON {
		return "", fmt.Errorf("--jq needs json format, got %s", f)
	}

	html := markdown.Convert(src, c.Markdown)
	if f == FormatHTML {
		return html, nil
	}

	doc, err := richtext.ParseString(html)
	if err != nil {
		return "", err
	}

	switch f {
	case FormatText:
		return doc.PlainText(), nil

	case FormatTerm:
		r := termrender.New(c.Width)
		if c.Styles != nil {
			r = r.WithStyles(c.Styles)
		}
		return r.Render(doc), nil

	case FormatJSON, FormatYAML:
		var buf bytes.Buffer
		p := outfmt.NewPrinter(string(f)).WithQuery(c.Query)
		p.Writer = &buf
		result := outfmt.Result{Source: name, HTML: html, Blocks: doc.Blocks}
		if err := p.Print(result); err != nil {
			return "", err
		}
		return buf.String(), nil

	default:
		return "", fmt.Errorf("unknown format %q", f)
	}
}
