package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// frame is an open block-level element. cur is created lazily on the first
// text and flushed whenever a nested block interrupts it.
type frame struct {
	proto   Block
	cur     *Block
	emitted bool
	loose   bool
}

type listState struct {
	ordered bool
	count   int
}

type builder struct {
	doc        *Document
	frames     []frame
	lists      []listState
	quoteDepth int
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3,
	atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

func (b *builder) walk(n *html.Node, style Style, href string) {
	switch n.Type {
	case html.TextNode:
		b.text(n.Data, style, href)
		return
	case html.ElementNode:
	default:
		return
	}

	if level, ok := headingLevels[n.DataAtom]; ok {
		b.enter(Block{Kind: Heading, Level: level})
		b.walkChildren(n, style, href)
		b.leave()
		return
	}

	switch n.DataAtom {
	case atom.P:
		kind := Paragraph
		if b.quoteDepth > 0 {
			kind = Quote
		}
		b.enter(Block{Kind: kind})
		b.walkChildren(n, style, href)
		b.leave()

	case atom.Ul, atom.Ol:
		b.lists = append(b.lists, listState{ordered: n.DataAtom == atom.Ol})
		b.walkChildren(n, style, href)
		b.lists = b.lists[:len(b.lists)-1]

	case atom.Li:
		item := Block{Kind: ListItem}
		if len(b.lists) > 0 {
			top := &b.lists[len(b.lists)-1]
			top.count++
			item.Ordered = top.ordered
			item.Index = top.count
		}
		b.enter(item)
		b.walkChildren(n, style, href)
		b.leave()

	case atom.Blockquote:
		b.quoteDepth++
		b.walkChildren(n, style, href)
		b.quoteDepth--

	case atom.Pre:
		b.enter(Block{Kind: CodeBlock})
		b.walkChildren(n, style|Code, href)
		b.leave()

	case atom.Hr:
		b.flush()
		b.doc.Blocks = append(b.doc.Blocks, Block{Kind: Rule})

	case atom.Br:
		b.text("\n", style, href)

	case atom.Strong, atom.B:
		b.walkChildren(n, style|Bold, href)
	case atom.Em, atom.I:
		b.walkChildren(n, style|Italic, href)
	case atom.Code:
		b.walkChildren(n, style|Code, href)
	case atom.Del, atom.S, atom.Strike:
		b.walkChildren(n, style|Strike, href)
	case atom.A:
		b.walkChildren(n, style|Link, attr(n, "href"))

	default:
		b.walkChildren(n, style, href)
	}
}

func (b *builder) walkChildren(n *html.Node, style Style, href string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c, style, href)
	}
}

// top returns the innermost open block, opening a loose paragraph when text
// shows up outside any block
func (b *builder) top() *frame {
	if len(b.frames) == 0 {
		kind := Paragraph
		if b.quoteDepth > 0 {
			kind = Quote
		}
		b.frames = append(b.frames, frame{proto: Block{Kind: kind}, loose: true})
	}
	return &b.frames[len(b.frames)-1]
}

func (b *builder) text(data string, style Style, href string) {
	blank := strings.TrimSpace(data) == ""
	if len(b.frames) == 0 && blank {
		return
	}
	f := b.top()
	if f.cur == nil {
		// Layout whitespace between blocks
		if f.proto.Kind != CodeBlock && blank {
			return
		}
		blk := f.proto
		f.cur = &blk
	}

	spans := f.cur.Spans
	if n := len(spans); n > 0 && spans[n-1].Style == style && spans[n-1].Href == href {
		spans[n-1].Text += data
		return
	}
	f.cur.Spans = append(spans, Span{Text: data, Style: style, Href: href})
}

// flush moves the innermost partial block into the document
func (b *builder) flush() {
	if len(b.frames) == 0 {
		return
	}
	f := &b.frames[len(b.frames)-1]
	if f.cur != nil {
		b.doc.Blocks = append(b.doc.Blocks, *f.cur)
		f.cur = nil
		f.emitted = true
	}
}

func (b *builder) enter(proto Block) {
	b.flush()
	// A loose paragraph never outlives the next real block
	if n := len(b.frames); n > 0 && b.frames[n-1].loose {
		b.frames = b.frames[:n-1]
	}
	b.frames = append(b.frames, frame{proto: proto})
}

func (b *builder) leave() {
	f := &b.frames[len(b.frames)-1]
	b.flush()
	if !f.emitted && f.proto.Kind != Paragraph && f.proto.Kind != Quote {
		// Keep empty headings, items and code blocks
		b.doc.Blocks = append(b.doc.Blocks, f.proto)
	}
	b.frames = b.frames[:len(b.frames)-1]
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
