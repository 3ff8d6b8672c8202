package syntax

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

type nodeFlags uint8

const (
	flagToken nodeFlags = 1 << iota
	flagNamed
	flagMissing
	flagError // в поддереве есть ERROR или MISSING
)

// TokenFlags configures tokens built with NewToken.
type TokenFlags uint8

const (
	// TokenNamed marks tokens the grammar names (identifiers, literals) as opposed to punctuation.
	TokenNamed TokenFlags = 1 << iota
	// TokenMissing marks zero-width tokens inserted by error recovery.
	TokenMissing
)

// Node is an immutable syntax node. It stores widths, never absolute
// positions, so any subtree can be shared by several trees. Positions are
// answered by the Tree that owns the node.
type Node struct {
	kind     Kind
	field    string // метка слота в родителе (поле грамматики)
	text     string
	leading  []Trivia
	trailing []Trivia
	children []*Node
	width    uint32
	flags    nodeFlags
}

func width(n int) uint32 {
	w, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("syntax: node width overflow: %w", err))
	}
	return w
}

// NewToken builds a leaf token. The trivia slices are owned by the token afterwards.
func NewToken(kind Kind, text string, flags TokenFlags, leading, trailing []Trivia) *Node {
	n := &Node{
		kind:     kind,
		text:     text,
		leading:  leading,
		trailing: trailing,
		flags:    flagToken,
		width:    width(triviaWidth(leading) + len(text) + triviaWidth(trailing)),
	}
	if flags&TokenNamed != 0 {
		n.flags |= flagNamed
	}
	if flags&TokenMissing != 0 {
		n.flags |= flagMissing | flagError
	}
	if kind == KindError {
		n.flags |= flagError
	}
	return n
}

// NewRaw builds a named token that carries arbitrary source text. Fixes fall
// back to it when a replacement cannot be parsed into a structured node.
func NewRaw(text string) *Node {
	return NewToken(KindRaw, text, TokenNamed, nil, nil)
}

// NewNode builds an inner node over children. The slice is owned by the node afterwards.
func NewNode(kind Kind, children ...*Node) *Node {
	n := &Node{kind: kind, children: children, flags: flagNamed}
	total := uint32(0)
	for _, c := range children {
		total += c.width
		if c.flags&flagError != 0 {
			n.flags |= flagError
		}
	}
	if kind == KindError {
		n.flags |= flagError
	}
	n.width = total
	return n
}

// Kind returns the node kind; a nil node has the empty kind.
func (n *Node) Kind() Kind {
	if n == nil {
		return ""
	}
	return n.kind
}

// FieldName returns the grammar field label of the node's slot, "" when unlabeled.
func (n *Node) FieldName() string { return n.field }

// Labeled returns n carrying the field label name. The receiver is never modified.
func Labeled(name string, n *Node) *Node {
	if n == nil || n.field == name {
		return n
	}
	c := *n
	c.field = name
	return &c
}

// Field returns the first direct child labeled name.
func (n *Node) Field(name string) *Node {
	for _, c := range n.children {
		if c.field == name {
			return c
		}
	}
	return nil
}

// Fields returns every direct child labeled name.
func (n *Node) Fields(name string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.field == name {
			out = append(out, c)
		}
	}
	return out
}

// Text returns the token text without trivia; inner nodes return "".
func (n *Node) Text() string { return n.text }

func (n *Node) IsToken() bool   { return n.flags&flagToken != 0 }
func (n *Node) IsNamed() bool   { return n.flags&flagNamed != 0 }
func (n *Node) IsMissing() bool { return n.flags&flagMissing != 0 }

// HasError reports whether the subtree contains ERROR or MISSING nodes.
func (n *Node) HasError() bool { return n.flags&flagError != 0 }

// Is reports whether the node kind is one of kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.kind == k {
			return true
		}
	}
	return false
}

// FullWidth is the byte length of the node including all trivia.
func (n *Node) FullWidth() uint32 { return n.width }

// Children returns the ordered children.
// ВАЖНО: не модифицируйте возвращаемый срез, он общий для всех деревьев.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) NumChildren() int { return len(n.children) }

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// NamedChildren returns children the grammar names, skipping punctuation and keywords.
func (n *Node) NamedChildren() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if c.IsNamed() {
			out = append(out, c)
		}
	}
	return out
}

// ChildOfKind returns the first direct child whose kind is one of kinds.
func (n *Node) ChildOfKind(kinds ...Kind) *Node {
	for _, c := range n.children {
		if c.Is(kinds...) {
			return c
		}
	}
	return nil
}

// ChildrenOfKind returns every direct child whose kind is one of kinds.
func (n *Node) ChildrenOfKind(kinds ...Kind) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Is(kinds...) {
			out = append(out, c)
		}
	}
	return out
}

// TokenChild returns the first direct child token with the given text.
func (n *Node) TokenChild(text string) *Node {
	for _, c := range n.children {
		if c.IsToken() && c.text == text {
			return c
		}
	}
	return nil
}

// IndexOf returns the slot of child in n, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// FirstToken returns the leftmost token of the subtree, or nil for an empty inner node.
func (n *Node) FirstToken() *Node {
	if n.IsToken() {
		return n
	}
	for _, c := range n.children {
		if t := c.FirstToken(); t != nil {
			return t
		}
	}
	return nil
}

// LastToken returns the rightmost token of the subtree.
func (n *Node) LastToken() *Node {
	if n.IsToken() {
		return n
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if t := n.children[i].LastToken(); t != nil {
			return t
		}
	}
	return nil
}

// Leading returns the leading trivia of the node's first token.
func (n *Node) Leading() []Trivia {
	if t := n.FirstToken(); t != nil {
		return t.leading
	}
	return nil
}

// Trailing returns the trailing trivia of the node's last token.
func (n *Node) Trailing() []Trivia {
	if t := n.LastToken(); t != nil {
		return t.trailing
	}
	return nil
}

// Tokens calls yield for every token in document order until yield returns false.
func (n *Node) Tokens(yield func(tok *Node) bool) bool {
	if n.IsToken() {
		return yield(n)
	}
	for _, c := range n.children {
		if !c.Tokens(yield) {
			return false
		}
	}
	return true
}

// Descendants returns every node below n (n excluded) in pre-order whose kind
// is one of kinds; with no kinds every descendant is returned.
func (n *Node) Descendants(kinds ...Kind) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.children {
			if len(kinds) == 0 || c.Is(kinds...) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// Render returns the full text of the subtree, trivia included.
func (n *Node) Render() string {
	var b strings.Builder
	b.Grow(int(n.width))
	n.write(&b, nil, nil)
	return b.String()
}

// SignificantText returns the subtree text without the outer leading trivia
// of its first token and the outer trailing trivia of its last token.
func (n *Node) SignificantText() string {
	var b strings.Builder
	n.write(&b, n.FirstToken(), n.LastToken())
	return b.String()
}

func (n *Node) write(b *strings.Builder, skipLeading, skipTrailing *Node) {
	n.Tokens(func(tok *Node) bool {
		if tok != skipLeading {
			writeTrivia(b, tok.leading)
		}
		b.WriteString(tok.text)
		if tok != skipTrailing {
			writeTrivia(b, tok.trailing)
		}
		return true
	})
}

func writeTrivia(b *strings.Builder, list []Trivia) {
	for _, tr := range list {
		b.WriteString(tr.Text)
	}
}

func (n *Node) leadingWidth() uint32 {
	if t := n.FirstToken(); t != nil {
		return width(triviaWidth(t.leading))
	}
	return 0
}

func (n *Node) trailingWidth() uint32 {
	if t := n.LastToken(); t != nil {
		return width(triviaWidth(t.trailing))
	}
	return 0
}

// withChildren copies an inner node over a new child list.
func (n *Node) withChildren(children []*Node) *Node {
	return Labeled(n.field, NewNode(n.kind, children...))
}

// WithLeading returns a copy of token n with new leading trivia.
func (n *Node) WithLeading(list []Trivia) *Node {
	return n.withTrivia(list, n.trailing)
}

// WithTrailing returns a copy of token n with new trailing trivia.
func (n *Node) WithTrailing(list []Trivia) *Node {
	return n.withTrivia(n.leading, list)
}

func (n *Node) withTrivia(leading, trailing []Trivia) *Node {
	var flags TokenFlags
	if n.IsNamed() {
		flags |= TokenNamed
	}
	if n.IsMissing() {
		flags |= TokenMissing
	}
	return Labeled(n.field, NewToken(n.kind, n.text, flags, leading, trailing))
}

// OwnLeading returns the token's own leading trivia.
func (n *Node) OwnLeading() []Trivia { return n.leading }

// OwnTrailing returns the token's own trailing trivia.
func (n *Node) OwnTrailing() []Trivia { return n.trailing }

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.IsToken() {
		return fmt.Sprintf("%s %q", n.kind, n.text)
	}
	return fmt.Sprintf("%s[%d]", n.kind, len(n.children))
}
