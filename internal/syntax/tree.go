package syntax

import (
	"sync"

	"sharpfix/internal/source"
)

type nodeInfo struct {
	parent *Node
	slot   int
	pos    uint32 // full start, trivia included
	tok    int    // index in Tree.tokens, -1 for inner nodes
}

// Tree owns a root node and answers positional questions about it. Trees are
// immutable and safe for concurrent use; edits return new trees that share
// unchanged subtrees with the receiver.
type Tree struct {
	File source.FileID
	Path string

	root *Node

	once   sync.Once
	index  map[*Node]nodeInfo
	tokens []*Node
	eol    string
}

// NewTree wraps root. A node pointer must appear at most once in root.
func NewTree(file source.FileID, path string, root *Node) *Tree {
	return &Tree{File: file, Path: path, root: root}
}

func (t *Tree) Root() *Node { return t.root }

// Text renders the whole tree back to source text.
func (t *Tree) Text() string { return t.root.Render() }

func (t *Tree) build() {
	t.once.Do(func() {
		t.index = make(map[*Node]nodeInfo, 64)
		t.index[t.root] = nodeInfo{slot: -1, tok: -1}
		var walk func(n *Node, pos uint32)
		walk = func(n *Node, pos uint32) {
			if n.IsToken() {
				info := t.index[n]
				info.tok = len(t.tokens)
				t.index[n] = info
				t.tokens = append(t.tokens, n)
				if t.eol == "" {
					t.eol = firstEOL(n.leading, n.trailing)
				}
				return
			}
			for i, c := range n.children {
				if _, dup := t.index[c]; !dup {
					t.index[c] = nodeInfo{parent: n, slot: i, pos: pos, tok: -1}
				}
				walk(c, pos)
				pos += c.width
			}
		}
		walk(t.root, 0)
		if t.eol == "" {
			t.eol = "\n"
		}
	})
}

func firstEOL(lists ...[]Trivia) string {
	for _, list := range lists {
		for _, tr := range list {
			if tr.Kind == TriviaEndOfLine {
				return tr.Text
			}
		}
	}
	return ""
}

// Contains reports whether n belongs to this tree.
func (t *Tree) Contains(n *Node) bool {
	if n == nil {
		return false
	}
	t.build()
	_, ok := t.index[n]
	return ok
}

// EOL returns the line terminator used by the tree's text ("\n" when none).
func (t *Tree) EOL() string {
	t.build()
	return t.eol
}

// HasErrors reports whether the parser had to recover from malformed input.
func (t *Tree) HasErrors() bool { return t.root.HasError() }

// Parent returns the parent of n, or nil for the root and foreign nodes.
func (t *Tree) Parent(n *Node) *Node {
	t.build()
	return t.index[n].parent
}

// Slot returns the index of n among its parent's children, -1 for the root.
func (t *Tree) Slot(n *Node) int {
	t.build()
	info, ok := t.index[n]
	if !ok {
		return -1
	}
	return info.slot
}

// Ancestors returns the chain of parents of n, nearest first.
func (t *Tree) Ancestors(n *Node) []*Node {
	t.build()
	var out []*Node
	for p := t.index[n].parent; p != nil; p = t.index[p].parent {
		out = append(out, p)
	}
	return out
}

// Ancestor returns the nearest proper ancestor of n whose kind is one of kinds.
func (t *Tree) Ancestor(n *Node, kinds ...Kind) *Node {
	t.build()
	for p := t.index[n].parent; p != nil; p = t.index[p].parent {
		if p.Is(kinds...) {
			return p
		}
	}
	return nil
}

// Descendants returns nodes below n in pre-order filtered by kinds.
func (t *Tree) Descendants(n *Node, kinds ...Kind) []*Node {
	return n.Descendants(kinds...)
}

// FullSpan is the node's range including leading and trailing trivia.
func (t *Tree) FullSpan(n *Node) source.Span {
	t.build()
	pos := t.index[n].pos
	return source.Span{File: t.File, Start: pos, End: pos + n.width}
}

// Span is the node's range without its outer trivia.
func (t *Tree) Span(n *Node) source.Span {
	full := t.FullSpan(n)
	lead, trail := n.leadingWidth(), n.trailingWidth()
	if lead+trail > full.Len() {
		return source.Span{File: t.File, Start: full.Start, End: full.Start}
	}
	full.Start += lead
	full.End -= trail
	return full
}

// FindNode returns the outermost node whose Span equals sp and whose kind is
// one of kinds (any kind when none are given).
func (t *Tree) FindNode(sp source.Span, kinds ...Kind) (*Node, bool) {
	if sp.File != t.File {
		return nil, false
	}
	t.build()
	var found *Node
	var search func(n *Node) bool
	search = func(n *Node) bool {
		if (len(kinds) == 0 || n.Is(kinds...)) && t.Span(n) == sp {
			found = n
			return true
		}
		if n.IsToken() {
			return false
		}
		pos := t.index[n].pos
		for _, c := range n.children {
			end := pos + c.width
			if pos <= sp.Start && sp.End <= end {
				if search(c) {
					return true
				}
			}
			pos = end
		}
		return false
	}
	if search(t.root) {
		return found, true
	}
	return nil, false
}

// TokenAt returns the token whose span (trivia excluded) contains offset.
func (t *Tree) TokenAt(offset uint32) *Node {
	t.build()
	for _, tok := range t.tokens {
		sp := t.Span(tok)
		if sp.Start <= offset && offset < sp.End {
			return tok
		}
		if sp.Start > offset {
			break
		}
	}
	return nil
}

// PrevToken returns the token before tok in document order.
func (t *Tree) PrevToken(tok *Node) *Node {
	t.build()
	info, ok := t.index[tok]
	if !ok || info.tok <= 0 {
		return nil
	}
	return t.tokens[info.tok-1]
}

// NextToken returns the token after tok in document order.
func (t *Tree) NextToken(tok *Node) *Node {
	t.build()
	info, ok := t.index[tok]
	if !ok || info.tok < 0 || info.tok+1 >= len(t.tokens) {
		return nil
	}
	return t.tokens[info.tok+1]
}

// PrevSibling returns the child of n's parent just before n.
func (t *Tree) PrevSibling(n *Node) *Node {
	t.build()
	info := t.index[n]
	if info.parent == nil {
		return nil
	}
	return info.parent.Child(info.slot - 1)
}

// NextSibling returns the child of n's parent just after n.
func (t *Tree) NextSibling(n *Node) *Node {
	t.build()
	info := t.index[n]
	if info.parent == nil {
		return nil
	}
	return info.parent.Child(info.slot + 1)
}

// EachTrivia calls yield for every trivia item of the tree with its span and
// owning token, in document order, until yield returns false.
func (t *Tree) EachTrivia(yield func(tok *Node, tr Trivia, sp source.Span) bool) {
	t.build()
	for _, tok := range t.tokens {
		pos := t.index[tok].pos
		for _, tr := range tok.leading {
			end := pos + width(len(tr.Text))
			if !yield(tok, tr, source.Span{File: t.File, Start: pos, End: end}) {
				return
			}
			pos = end
		}
		pos += width(len(tok.text))
		for _, tr := range tok.trailing {
			end := pos + width(len(tr.Text))
			if !yield(tok, tr, source.Span{File: t.File, Start: pos, End: end}) {
				return
			}
			pos = end
		}
	}
}

// NumTokens returns the number of tokens, end_of_file included.
func (t *Tree) NumTokens() int {
	t.build()
	return len(t.tokens)
}
