package htmltree

// Node is the read-only element view the bracket extractor walks. It is the
// whole surface the core needs from whatever parsed the raw markup, so the
// extractor never depends on a concrete parser.
type Node interface {
	// TagName returns the lowercase element name ("h3", "table", "td").
	TagName() string
	// Text returns the concatenated text content of the element and its
	// descendants, in document order.
	Text() string
	// ClassList returns the element's class attribute split on whitespace.
	ClassList() []string
	// Attr looks up an attribute value by its lowercase name.
	Attr(name string) (string, bool)
	// Children returns the element children in document order. Text nodes are
	// not exposed; they are reachable only through Text.
	Children() []Node
	// NextSibling returns the next element sibling, or nil at the end of the
	// parent's child list.
	NextSibling() Node
}
