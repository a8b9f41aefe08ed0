package htmltree

import "strings"

// StaticNode is an in-memory Node used by tests and fixtures. Sibling links
// are wired by Wire, which must be called on the root before traversal.
type StaticNode struct {
	Tag     string
	Classes []string
	Attrs   map[string]string
	Txt     string
	Kids    []*StaticNode

	next *StaticNode
}

// El builds an element with the given children.
func El(tag string, kids ...*StaticNode) *StaticNode {
	return &StaticNode{Tag: tag, Kids: kids}
}

// ElText builds a leaf element with text content.
func ElText(tag, text string, kids ...*StaticNode) *StaticNode {
	return &StaticNode{Tag: tag, Txt: text, Kids: kids}
}

// Wire links sibling pointers across the whole subtree and returns the root.
func Wire(root *StaticNode) *StaticNode {
	wireSiblings(root)
	return root
}

func wireSiblings(n *StaticNode) {
	for i, kid := range n.Kids {
		if i+1 < len(n.Kids) {
			kid.next = n.Kids[i+1]
		} else {
			kid.next = nil
		}
		wireSiblings(kid)
	}
}

func (s *StaticNode) TagName() string {
	return strings.ToLower(s.Tag)
}

func (s *StaticNode) Text() string {
	var b strings.Builder
	s.collectText(&b)
	return b.String()
}

func (s *StaticNode) collectText(b *strings.Builder) {
	b.WriteString(s.Txt)
	for _, kid := range s.Kids {
		kid.collectText(b)
	}
}

func (s *StaticNode) ClassList() []string {
	return append([]string(nil), s.Classes...)
}

func (s *StaticNode) Attr(name string) (string, bool) {
	v, ok := s.Attrs[strings.ToLower(name)]
	return v, ok
}

func (s *StaticNode) Children() []Node {
	out := make([]Node, 0, len(s.Kids))
	for _, kid := range s.Kids {
		out = append(out, kid)
	}
	return out
}

func (s *StaticNode) NextSibling() Node {
	if s.next == nil {
		return nil
	}
	return s.next
}
