// Package trie implements the longest-match transcription trie built from
// the concrete sub-rules of a compiled mode.
package trie

import (
	"sort"

	"github.com/glaemscribe/glaemgo/core/errlog"
	"github.com/glaemscribe/glaemgo/runtime/rules"
)

// Word boundary conventions. The in-language boundary appears in rule
// sources; the tree boundary exists only inside the trie and the per-word
// traversal. The two must never alias the user-visible word breaker.
const (
	WordBoundaryLang = "_"
	WordBoundaryTree = "\x00"
)

// Nodes live in an arena; links are indices, not pointers. Index 0 is the
// root.
type nodeIndex int32

type node struct {
	character   string
	parent      nodeIndex
	children    map[string]nodeIndex
	replacement [][]string
	crossSchema []int
	effective   bool
	line        int
}

// Trie is the longest-match trie over source combinations. It is immutable
// once the owning mode finalizes and may be shared across transcription
// calls.
type Trie struct {
	nodes []node
}

// New creates a trie holding only the root
func New() *Trie {
	return &Trie{nodes: []node{{parent: -1, children: map[string]nodeIndex{}}}}
}

// Insert adds one sub-rule. The in-language boundary token is rewritten to
// the tree boundary. A terminal that is already effective with a different
// replacement or schema is a duplicate-rule error naming both lines.
func (t *Trie) Insert(sub *rules.SubRule) *errlog.Error {
	idx := nodeIndex(0)
	for _, tok := range sub.Src {
		if tok == WordBoundaryLang {
			tok = WordBoundaryTree
		}
		child, ok := t.nodes[idx].children[tok]
		if !ok {
			child = nodeIndex(len(t.nodes))
			t.nodes = append(t.nodes, node{
				character: tok,
				parent:    idx,
				children:  map[string]nodeIndex{},
			})
			t.nodes[idx].children[tok] = child
		}
		idx = child
	}

	terminal := &t.nodes[idx]
	if terminal.effective {
		if groupsEqual(terminal.replacement, sub.DstGroups) && schemasEqual(terminal.crossSchema, sub.CrossSchema) {
			// identical duplicate: first definition wins
			return nil
		}
		return errlog.Newf(errlog.KindCompile, sub.Rule.Line,
			"duplicate rule for source '%s' (first defined at line %d)",
			sub.SrcText(), terminal.line)
	}
	terminal.effective = true
	terminal.replacement = sub.DstGroups
	terminal.crossSchema = sub.CrossSchema
	terminal.line = sub.Rule.Line
	return nil
}

// Len returns the number of nodes including the root
func (t *Trie) Len() int {
	return len(t.nodes)
}

// NodeRef is a cheap handle on one trie node
type NodeRef struct {
	t   *Trie
	idx nodeIndex
}

// Root returns a handle on the root node
func (t *Trie) Root() NodeRef {
	return NodeRef{t: t, idx: 0}
}

// Child descends by one token
func (n NodeRef) Child(tok string) (NodeRef, bool) {
	idx, ok := n.t.nodes[n.idx].children[tok]
	if !ok {
		return NodeRef{}, false
	}
	return NodeRef{t: n.t, idx: idx}, true
}

// Effective reports whether a rule ends at this node
func (n NodeRef) Effective() bool {
	return n.t.nodes[n.idx].effective
}

// Replacement returns the destination groups stored at an effective node,
// keyed by source sheaf position.
func (n NodeRef) Replacement() [][]string {
	return n.t.nodes[n.idx].replacement
}

// CrossSchema returns the cross schema of the rule ending here, nil for
// normal rules.
func (n NodeRef) CrossSchema() []int {
	return n.t.nodes[n.idx].crossSchema
}

// Line returns the source line of the rule ending at this node
func (n NodeRef) Line() int {
	return n.t.nodes[n.idx].line
}

// Emit flattens the node's replacement into the output token stream,
// reordering the matched source groups by the cross schema when present.
func (n NodeRef) Emit() []string {
	nd := &n.t.nodes[n.idx]
	var out []string
	if nd.crossSchema == nil {
		for _, group := range nd.replacement {
			out = append(out, group...)
		}
		return out
	}
	for _, src := range nd.crossSchema {
		out = append(out, nd.replacement[src-1]...)
	}
	return out
}

// childTokens returns the node's child tokens in ascending order
func (t *Trie) childTokens(idx nodeIndex) []string {
	children := t.nodes[idx].children
	toks := make([]string, 0, len(children))
	for tok := range children {
		toks = append(toks, tok)
	}
	sort.Strings(toks)
	return toks
}

func groupsEqual(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func schemasEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
