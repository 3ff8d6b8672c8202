package parser

import (
	"context"
	"strings"

	"fortio.org/safecast"

	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
)

// Fragments are parsed inside a synthetic member body and cut out by span.
const (
	exprPrefix = "class __C { void __M() { __x = "
	exprSuffix = "; } }"
	stmtPrefix = "class __C { void __M() { "
	stmtSuffix = " } }"
)

// ParseExpression parses a C# expression into a detached node without outer
// trivia. Text that does not parse cleanly comes back as one raw token, so
// rendering the result always reproduces text.
func ParseExpression(text string) *syntax.Node {
	n, _ := parseFragment(exprPrefix, text, exprSuffix, func(k syntax.Kind) bool {
		return !k.IsStatement() && !k.IsTypeDeclaration()
	})
	return n
}

// ParseStatement parses one C# statement; see ParseExpression.
func ParseStatement(text string) *syntax.Node {
	n, _ := parseFragment(stmtPrefix, text, stmtSuffix, syntax.Kind.IsStatement)
	return n
}

func parseFragment(prefix, text, suffix string, accept func(syntax.Kind) bool) (*syntax.Node, bool) {
	body := strings.TrimSpace(text)
	raw := syntax.NewRaw(body)
	if body == "" {
		return raw, false
	}
	tree, err := ParseText(context.Background(), 0, "<fragment>", []byte(prefix+body+suffix))
	if err != nil {
		return raw, false
	}
	start, err1 := safecast.Conv[uint32](len(prefix))
	size, err2 := safecast.Conv[uint32](len(body))
	if err1 != nil || err2 != nil {
		return raw, false
	}
	n, ok := tree.FindNode(source.Span{Start: start, End: start + size})
	if !ok || n.HasError() || !accept(n.Kind()) {
		return raw, false
	}
	return syntax.Labeled("", syntax.StripOuterTrivia(n)), true
}
