package doctree

import "strings"

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text and PDF pages)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Text flattens the tree in document order. Every non-empty heading and text
// block is followed by a newline. The tree title is not included.
func (t *DocTree) Text() string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			if n.Title != "" {
				sb.WriteString(n.Title)
				sb.WriteString("\n")
			}
			if n.Text != "" {
				sb.WriteString(n.Text)
				sb.WriteString("\n")
			}
			walk(n.Children)
		}
	}
	walk(t.Children)
	return sb.String()
}
