package editor

import (
	"golang.org/x/net/html"
)

// DefaultLanguage is the code block language when none is given.
const DefaultLanguage = "javascript"

// LanguageClassPrefix marks the language class of a code element.
const LanguageClassPrefix = "language-"

type Kind string

const (
	KindParagraph      Kind = "paragraph"
	KindHeading        Kind = "heading"
	KindCodeBlock      Kind = "codeBlock"
	KindImage          Kind = "image"
	KindBlockquote     Kind = "blockquote"
	KindList           Kind = "list"
	KindHorizontalRule Kind = "horizontalRule"
)

// Node is a block of a post document. The set of node types is closed:
// only the types in this package implement it.
type Node interface {
	Kind() Kind
	node()
}

// Paragraph holds inline markup (text with marks such as <strong> or <a>),
// rendered as is.
type Paragraph struct {
	Inline string
}

// Heading levels run from 1 to 3.
type Heading struct {
	Level  int
	Inline string
}

type CodeBlock struct {
	Language string
	Code     string
}

// Image is a block image. Loading is set only on an upload placeholder and
// holds the marker of that upload.
type Image struct {
	Src     string
	Alt     string
	Title   string
	Loading string
}

type Blockquote struct {
	Children []Node
}

type ListItem struct {
	Children []Node
}

type List struct {
	Ordered bool
	Items   []ListItem
}

type HorizontalRule struct{}

func (Paragraph) Kind() Kind      { return KindParagraph }
func (Heading) Kind() Kind        { return KindHeading }
func (CodeBlock) Kind() Kind      { return KindCodeBlock }
func (Image) Kind() Kind          { return KindImage }
func (Blockquote) Kind() Kind     { return KindBlockquote }
func (List) Kind() Kind           { return KindList }
func (HorizontalRule) Kind() Kind { return KindHorizontalRule }

func (Paragraph) node()      {}
func (Heading) node()        {}
func (CodeBlock) node()      {}
func (Image) node()          {}
func (Blockquote) node()     {}
func (List) node()           {}
func (HorizontalRule) node() {}

// Text makes a paragraph from plain text.
func Text(s string) Paragraph {
	return Paragraph{Inline: html.EscapeString(s)}
}

// NewCodeBlock fills in the default language.
func NewCodeBlock(language, code string) CodeBlock {
	if language == "" {
		language = DefaultLanguage
	}
	return CodeBlock{Language: language, Code: code}
}

// IsPlaceholder reports whether the image stands in for an upload in progress.
func (i Image) IsPlaceholder() bool {
	return i.Loading != ""
}

// ExitOnEnter reports whether Enter at the end of the block leaves it, which
// happens when the code already ends with a blank line. The returned block
// has that blank line removed.
func (c CodeBlock) ExitOnEnter() (CodeBlock, bool) {
	if len(c.Code) < 2 || c.Code[len(c.Code)-2:] != "\n\n" {
		return c, false
	}
	c.Code = c.Code[:len(c.Code)-2]
	return c, true
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 3:
		return 3
	}
	return level
}

// cloneNode deep copies the container nodes so callers cannot reach a
// document's internals.
func cloneNode(n Node) Node {
	switch v := n.(type) {
	case Blockquote:
		return Blockquote{Children: cloneNodes(v.Children)}
	case List:
		items := make([]ListItem, len(v.Items))
		for i, it := range v.Items {
			items[i] = ListItem{Children: cloneNodes(it.Children)}
		}
		return List{Ordered: v.Ordered, Items: items}
	default:
		return n
	}
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
	}
	return out
}
