package rules

import (
	"sharpfix/internal/rule"
	"sharpfix/internal/semantic"
	"sharpfix/internal/syntax"
)

// ifCondition returns the parenthesized condition of an if_statement.
func ifCondition(n *syntax.Node) *syntax.Node {
	if n == nil {
		return nil
	}
	if c := n.Field("condition"); c != nil {
		return c
	}
	open := false
	for _, c := range n.Children() {
		if c.IsToken() && c.Text() == "(" {
			open = true
			continue
		}
		if open && c.IsNamed() {
			return c
		}
	}
	return nil
}

// enclosingFunction returns the nearest function-like ancestor of n.
func enclosingFunction(t *syntax.Tree, n *syntax.Node) *syntax.Node {
	for _, a := range t.Ancestors(n) {
		if a.Kind().IsFunctionLike() {
			return a
		}
	}
	return nil
}

// resolvesTo reports whether n resolves to a symbol of kind k.
func resolvesTo(ctx *rule.Context, n *syntax.Node, k semantic.SymbolKind) (*semantic.Symbol, bool) {
	if n == nil {
		return nil, false
	}
	sym, ok := ctx.Resolve(n)
	if !ok || sym.Kind != k {
		return nil, false
	}
	return sym, true
}

// argumentTexts returns the argument expressions of list as written. ok is
// false when an argument is named or carries ref/out/in.
func argumentTexts(list *syntax.Node) (out []string, ok bool) {
	for _, a := range syntax.Arguments(list) {
		e := syntax.ArgumentExpr(a)
		if e == nil || syntax.IsNamedArgument(a) || a.TokenChild("ref") != nil || a.TokenChild("out") != nil || a.TokenChild("in") != nil {
			return nil, false
		}
		out = append(out, e.SignificantText())
	}
	return out, true
}

// inStatementList reports whether stmt is a direct statement of a block or
// switch section.
func inStatementList(t *syntax.Tree, stmt *syntax.Node) bool {
	return t.Parent(stmt).Is(syntax.KindBlock, syntax.KindSwitchSection)
}
