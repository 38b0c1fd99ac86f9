// Package glaeml implements the document tree and surface parser for the
// glaeml text format used by mode (.glaem) and charset (.cst) files.
//
// The format is line oriented:
//
//	\name arg1 "arg two"        one-line element
//	\beg name arg…              block element, closed by \end
//	\** anything                comment line
//	other text                  text child of the enclosing block
package glaeml

// NodeType discriminates element nodes from free-text nodes
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is one node of a glaeml document tree. Consumers treat it as
// read-only. Text nodes carry their content in Args[0].
type Node struct {
	Type     NodeType
	Name     string
	Args     []string
	Children []*Node
	Line     int
}

// IsText reports whether the node is a free-text node
func (n *Node) IsText() bool {
	return n.Type == TextNode
}

// IsElement reports whether the node is an element node
func (n *Node) IsElement() bool {
	return n.Type == ElementNode
}

// Text returns the content of a text node, or "" for element nodes
func (n *Node) Text() string {
	if n.Type != TextNode || len(n.Args) == 0 {
		return ""
	}
	return n.Args[0]
}

// Arg returns the i-th argument or "" when absent
func (n *Node) Arg(i int) string {
	if i < 0 || i >= len(n.Args) {
		return ""
	}
	return n.Args[i]
}

// ChildrenNamed returns all element children with the given name, in order
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.IsElement() && c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildNamed returns the first element child with the given name
func (n *Node) FirstChildNamed(name string) *Node {
	for _, c := range n.Children {
		if c.IsElement() && c.Name == name {
			return c
		}
	}
	return nil
}

// Document is a parsed glaeml file. RootNode is a synthetic element holding
// the top-level nodes as children.
type Document struct {
	RootNode *Node
}
