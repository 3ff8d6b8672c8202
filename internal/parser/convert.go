package parser

import (
	"fmt"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"sharpfix/internal/syntax"
)

// atomicKinds are grammar nodes kept as a single token even when the grammar
// exposes their inner pieces.
var atomicKinds = map[string]bool{
	"string_literal":          true,
	"verbatim_string_literal": true,
	"raw_string_literal":      true,
	"character_literal":       true,
	"predefined_type":         true,
}

type proto struct {
	kind     syntax.Kind
	text     string
	flags    syntax.TokenFlags
	leading  []syntax.Trivia
	trailing []syntax.Trivia
}

type converter struct {
	src     []byte
	size    uint32
	pos     uint32
	protos  []proto
	between []syntax.Trivia // trivia since the previous token
	tokens  []*syntax.Node
	next    int
}

func newConverter(src []byte) *converter {
	size, err := safecast.Conv[uint32](len(src))
	if err != nil {
		panic(fmt.Errorf("source too large: %w", err))
	}
	return &converter{src: src, size: size}
}

func (c *converter) convert(root *sitter.Node) *syntax.Node {
	c.collect(root, true)
	c.gap(c.size)
	c.push(proto{kind: syntax.KindEndOfFile})

	c.tokens = make([]*syntax.Node, len(c.protos))
	for i, p := range c.protos {
		c.tokens[i] = syntax.NewToken(p.kind, p.text, p.flags, p.leading, p.trailing)
	}

	out := c.build(root, true)
	eof := c.tokens[len(c.tokens)-1]
	children := append(append([]*syntax.Node(nil), out.Children()...), eof)
	return syntax.NewNode(out.Kind(), children...)
}

func isTrivia(n *sitter.Node) bool {
	return n.IsExtra() && n.Type() != string(syntax.KindError) && !n.IsMissing()
}

func isAtomic(n *sitter.Node) bool {
	return n.ChildCount() == 0 || atomicKinds[n.Type()]
}

// collect walks the grammar tree in document order and records tokens and
// trivia with the gaps between them.
func (c *converter) collect(n *sitter.Node, root bool) {
	switch {
	case !root && isTrivia(n):
		start, end := c.clamp(n)
		c.gap(start)
		c.between = append(c.between, extraTrivia(string(c.src[start:end]))...)
		c.pos = end
	case !root && isAtomic(n):
		start, end := c.clamp(n)
		c.gap(start)
		var flags syntax.TokenFlags
		if n.IsNamed() {
			flags |= syntax.TokenNamed
		}
		if n.IsMissing() {
			flags |= syntax.TokenMissing
			end = start
		}
		c.push(proto{kind: syntax.Kind(n.Type()), text: string(c.src[start:end]), flags: flags})
		c.pos = end
	default:
		for i := 0; i < int(n.ChildCount()); i++ {
			c.collect(n.Child(i), false)
		}
	}
}

func (c *converter) clamp(n *sitter.Node) (start, end uint32) {
	start, end = n.StartByte(), n.EndByte()
	if end > c.size {
		end = c.size
	}
	if start < c.pos {
		start = c.pos
	}
	if end < start {
		end = start
	}
	return start, end
}

func (c *converter) gap(until uint32) {
	if until > c.pos {
		c.between = append(c.between, splitGap(string(c.src[c.pos:until]))...)
		c.pos = until
	}
}

// push attaches pending trivia: the previous token keeps everything up to and
// including the first line break, the rest leads the new token.
func (c *converter) push(p proto) {
	rest := c.between
	if n := len(c.protos); n > 0 {
		cut := len(rest)
		for i, tr := range rest {
			if tr.Kind == syntax.TriviaEndOfLine {
				cut = i + 1
				break
			}
		}
		c.protos[n-1].trailing = rest[:cut:cut]
		rest = rest[cut:]
	}
	p.leading = rest
	c.protos = append(c.protos, p)
	c.between = nil
}

func (c *converter) build(n *sitter.Node, root bool) *syntax.Node {
	if !root && isAtomic(n) {
		tok := c.tokens[c.next]
		c.next++
		return tok
	}
	children := make([]*syntax.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if isTrivia(ch) {
			continue
		}
		node := c.build(ch, false)
		if field := n.FieldNameForChild(i); field != "" {
			node = syntax.Labeled(field, node)
		}
		children = append(children, node)
	}
	return syntax.NewNode(syntax.Kind(n.Type()), children...)
}
