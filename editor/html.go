package editor

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	errs "github.com/jrsteele09/go-blog-client/internal/errors"
)

// ParseHTML reads stored post HTML into blocks. Markup the document model
// has no block for is unwrapped; stray inline content becomes a paragraph.
func ParseHTML(r io.Reader) ([]Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	children, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("[editor ParseHTML] %w", err)
	}
	for _, c := range children {
		body.AppendChild(c)
	}
	return parseBlocks(body)
}

func parseBlocks(parent *html.Node) ([]Node, error) {
	var (
		out    []Node
		inline []*html.Node
	)
	flush := func() error {
		if len(inline) == 0 {
			return nil
		}
		s, err := renderNodes(inline)
		inline = inline[:0]
		if err != nil {
			return err
		}
		if strings.TrimSpace(s) != "" {
			out = append(out, Paragraph{Inline: strings.TrimSpace(s)})
		}
		return nil
	}

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || !isBlock(c.DataAtom) {
			if c.Type == html.TextNode || c.Type == html.ElementNode {
				inline = append(inline, c)
			}
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		nodes, err := parseBlock(c)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Pre, atom.Img, atom.Blockquote, atom.Ul, atom.Ol, atom.Hr,
		atom.Div, atom.Section, atom.Article:
		return true
	}
	return false
}

func parseBlock(n *html.Node) ([]Node, error) {
	switch n.DataAtom {
	case atom.P:
		if imgs, ok := imagesOnly(n); ok {
			return imgs, nil
		}
		s, err := innerHTML(n)
		if err != nil {
			return nil, err
		}
		return []Node{Paragraph{Inline: strings.TrimSpace(s)}}, nil
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		s, err := innerHTML(n)
		if err != nil {
			return nil, err
		}
		level := int(n.Data[1] - '0')
		return []Node{Heading{Level: clampLevel(level), Inline: strings.TrimSpace(s)}}, nil
	case atom.Pre:
		return []Node{parseCodeBlock(n)}, nil
	case atom.Img:
		if img, ok := parseImage(n); ok {
			return []Node{img}, nil
		}
		return nil, nil
	case atom.Blockquote:
		children, err := parseBlocks(n)
		if err != nil {
			return nil, err
		}
		return []Node{Blockquote{Children: children}}, nil
	case atom.Ul, atom.Ol:
		list := List{Ordered: n.DataAtom == atom.Ol}
		for li := n.FirstChild; li != nil; li = li.NextSibling {
			if li.Type != html.ElementNode || li.DataAtom != atom.Li {
				continue
			}
			children, err := parseBlocks(li)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, ListItem{Children: children})
		}
		return []Node{list}, nil
	case atom.Hr:
		return []Node{HorizontalRule{}}, nil
	default:
		// div and friends carry no meaning of their own
		return parseBlocks(n)
	}
}

// parseCodeBlock reads <pre><code class="language-x">. The language falls
// back to the default when no language class is present.
func parseCodeBlock(pre *html.Node) CodeBlock {
	lang := ""
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			for _, cls := range strings.Fields(attr(c, "class")) {
				if strings.HasPrefix(cls, LanguageClassPrefix) {
					lang = strings.TrimPrefix(cls, LanguageClassPrefix)
					break
				}
			}
			break
		}
	}
	return NewCodeBlock(lang, textContent(pre))
}

func parseImage(n *html.Node) (Image, bool) {
	src := attr(n, "src")
	if src == "" {
		return Image{}, false
	}
	return Image{
		Src:     src,
		Alt:     attr(n, "alt"),
		Title:   attr(n, "title"),
		Loading: placeholderMarker(attr(n, "loading")),
	}, true
}

// placeholderMarker keeps loading only when it is an upload marker, not a
// browser hint such as loading="lazy".
func placeholderMarker(v string) string {
	if strings.HasPrefix(v, MarkerPrefix) {
		return v
	}
	return ""
}

// imagesOnly unwraps a paragraph that holds nothing but images.
func imagesOnly(p *html.Node) ([]Node, bool) {
	var imgs []Node
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
		case c.Type == html.ElementNode && c.DataAtom == atom.Img:
			if img, ok := parseImage(c); ok {
				imgs = append(imgs, img)
			}
		default:
			return nil, false
		}
	}
	return imgs, len(imgs) > 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func innerHTML(n *html.Node) (string, error) {
	var nodes []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	return renderNodes(nodes)
}

func renderNodes(nodes []*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// RenderHTML writes blocks as HTML.
func RenderHTML(w io.Writer, nodes []Node) error {
	bw := bufio.NewWriter(w)
	for _, n := range nodes {
		if err := renderNode(bw, n); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func renderNode(w *bufio.Writer, n Node) error {
	switch v := n.(type) {
	case Paragraph:
		w.WriteString("<p>" + v.Inline + "</p>")
	case Heading:
		lvl := clampLevel(v.Level)
		fmt.Fprintf(w, "<h%d>%s</h%d>", lvl, v.Inline, lvl)
	case CodeBlock:
		lang := v.Language
		if lang == "" {
			lang = DefaultLanguage
		}
		fmt.Fprintf(w, `<pre><code class="%s">%s</code></pre>`,
			html.EscapeString(LanguageClassPrefix+lang), html.EscapeString(v.Code))
	case Image:
		w.WriteString(`<img src="` + html.EscapeString(v.Src) + `"`)
		for _, a := range [][2]string{{"alt", v.Alt}, {"title", v.Title}, {"loading", v.Loading}} {
			if a[1] != "" {
				w.WriteString(" " + a[0] + `="` + html.EscapeString(a[1]) + `"`)
			}
		}
		w.WriteString(">")
	case Blockquote:
		w.WriteString("<blockquote>")
		for _, c := range v.Children {
			if err := renderNode(w, c); err != nil {
				return err
			}
		}
		w.WriteString("</blockquote>")
	case List:
		tag := "ul"
		if v.Ordered {
			tag = "ol"
		}
		w.WriteString("<" + tag + ">")
		for _, it := range v.Items {
			w.WriteString("<li>")
			for _, c := range it.Children {
				if err := renderNode(w, c); err != nil {
					return err
				}
			}
			w.WriteString("</li>")
		}
		w.WriteString("</" + tag + ">")
	case HorizontalRule:
		w.WriteString("<hr>")
	default:
		return fmt.Errorf("[editor RenderHTML] %w: node %T", errs.ErrUnsupported, n)
	}
	return nil
}
