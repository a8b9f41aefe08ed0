package htmltree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse reads an HTML document or fragment and returns its root element.
func Parse(r io.Reader) (Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &htmlNode{n: doc}, nil
}

// ParseFragment parses a markup fragment the way the MediaWiki API returns
// section bodies: no surrounding html/body wrapper is required.
func ParseFragment(markup string) (Node, error) {
	return Parse(strings.NewReader(markup))
}

type htmlNode struct {
	n *html.Node
}

func (h *htmlNode) TagName() string {
	if h.n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(h.n.Data)
}

func (h *htmlNode) Text() string {
	var b strings.Builder
	collectText(h.n, &b)
	return b.String()
}

func (h *htmlNode) ClassList() []string {
	raw, ok := h.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(raw)
}

func (h *htmlNode) Attr(name string) (string, bool) {
	for _, attr := range h.n.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val, true
		}
	}
	return "", false
}

func (h *htmlNode) Children() []Node {
	var out []Node
	for c := h.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &htmlNode{n: c})
		}
	}
	return out
}

func (h *htmlNode) NextSibling() Node {
	for s := h.n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return &htmlNode{n: s}
		}
	}
	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
