// Package richtext turns the HTML produced by the markdown package into a
// flat document of styled blocks, ready for non-HTML renderers.
package richtext

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gubarz/mdline/internal/markdown"
)

// Style is a set of inline text attributes
type Style uint8

const (
	Bold Style = 1 << iota
	Italic
	Code
	Strike
	Link
)

// Has reports whether all bits of o are set
func (s Style) Has(o Style) bool { return s&o == o }

// BlockKind identifies the block-level construct a Block came from
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	ListItem
	Quote
	CodeBlock
	Rule
)

var blockKindNames = map[BlockKind]string{
	Paragraph: "paragraph",
	Heading:   "heading",
	ListItem:  "list_item",
	Quote:     "quote",
	CodeBlock: "code_block",
	Rule:      "rule",
}

func (k BlockKind) String() string {
	if name, ok := blockKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON and YAML output
func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Span is a run of text sharing one style
type Span struct {
	Text  string `json:"text" yaml:"text"`
	Style Style  `json:"style,omitempty" yaml:"style,omitempty"`
	Href  string `json:"href,omitempty" yaml:"href,omitempty"`
}

// Block is one line-level element
type Block struct {
	Kind    BlockKind `json:"kind" yaml:"kind"`
	Level   int       `json:"level,omitempty" yaml:"level,omitempty"`     // heading level
	Ordered bool      `json:"ordered,omitempty" yaml:"ordered,omitempty"` // list items only
	Index   int       `json:"index,omitempty" yaml:"index,omitempty"`     // 1-based position in its list
	Spans   []Span    `json:"spans,omitempty" yaml:"spans,omitempty"`
}

// Text returns the concatenated span text
func (b Block) Text() string {
	var sb strings.Builder
	for _, sp := range b.Spans {
		sb.WriteString(sp.Text)
	}
	return sb.String()
}

// Document is an ordered list of blocks
type Document struct {
	Blocks []Block `json:"blocks" yaml:"blocks"`
}

// PlainText drops all styling and joins blocks with newlines
func (d *Document) PlainText() string {
	lines := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		lines = append(lines, strings.TrimSuffix(b.Text(), "\n"))
	}
	return strings.Join(lines, "\n")
}

// FromMarkdown converts Markdown source straight to a Document
func FromMarkdown(src string, opts markdown.Options) (*Document, error) {
	return ParseString(markdown.Convert(src, opts))
}

// ParseString parses an HTML fragment
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads an HTML fragment and flattens it into blocks
func Parse(r io.Reader) (*Document, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, context)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := &builder{doc: &Document{Blocks: []Block{}}}
	for _, n := range nodes {
		b.walk(n, 0, "")
	}
	b.flush()
	return b.doc, nil
}
