package semantic

import (
	"strings"

	"sharpfix/internal/syntax"
)

// TypeOf implements Resolver.
func (b *Binder) TypeOf(expr *syntax.Node) (*TypeInfo, bool) {
	if expr == nil || !b.tree.Contains(expr) {
		return nil, false
	}
	t := b.typeOf(expr, 0)
	return t, t != nil
}

func (b *Binder) named(full string) *TypeInfo { return b.lookupType(full) }

func (b *Binder) typeOf(n *syntax.Node, depth int) *TypeInfo {
	if n == nil || depth > maxDepth {
		return nil
	}
	switch n.Kind() {
	case syntax.KindStringLiteral, syntax.KindVerbatimStringLiteral, syntax.KindRawStringLiteral, syntax.KindInterpolatedString:
		return b.named("System.String")
	case syntax.KindCharLiteral:
		return b.named("System.Char")
	case syntax.KindBooleanLiteral, syntax.KindIsPattern, "is_expression":
		return b.named("System.Boolean")
	case syntax.KindIntegerLiteral:
		return b.named(integerType(n.SignificantText()))
	case syntax.KindRealLiteral:
		return b.named(realType(n.SignificantText()))
	case syntax.KindNullLiteral:
		return nil
	case syntax.KindThis:
		return b.EnclosingType(n)
	case syntax.KindBase:
		if t := b.EnclosingType(n); t != nil && len(t.Bases) > 0 {
			return b.lookupType(t.Bases[0])
		}
		return nil
	case "typeof_expression":
		return b.named("System.Type")
	case syntax.KindParenthesized:
		if inner := syntax.Unparen(n); inner != n {
			return b.typeOf(inner, depth+1)
		}
		return nil
	case syntax.KindObjectCreation:
		if typ, _, _, ok := syntax.ObjectCreationParts(n); ok {
			return b.resolveTypeText(compact(typ.SignificantText()), n)
		}
		return nil
	case syntax.KindCast, "as_expression":
		if typ := castType(n); typ != nil {
			return b.resolveTypeText(compact(typ.SignificantText()), n)
		}
		return nil
	case syntax.KindBinary:
		return b.binaryType(n, depth)
	case syntax.KindPrefixUnary:
		if first := n.Child(0); first != nil && first.Text() == "!" {
			return b.named("System.Boolean")
		}
		if named := n.NamedChildren(); len(named) > 0 {
			return b.typeOf(named[len(named)-1], depth+1)
		}
		return nil
	case syntax.KindAssignment:
		if left, _, _, ok := syntax.AssignmentParts(n); ok {
			return b.typeOf(left, depth+1)
		}
		return nil
	case "conditional_expression":
		if t := b.typeOf(n.Field("consequence"), depth+1); t != nil {
			return t
		}
		return b.typeOf(n.Field("alternative"), depth+1)
	case syntax.KindInvocation:
		callee, _, ok := syntax.InvocationParts(n)
		if !ok {
			return nil
		}
		if callee.SignificantText() == "nameof" {
			return b.named("System.String")
		}
		return b.symbolType(b.resolve(callee, depth+1), depth+1)
	case syntax.KindIdentifier, syntax.KindMemberAccess, syntax.KindConditionalAccess:
		sym := b.resolve(n, depth+1)
		if sym == nil || !sym.Kind.IsValue() {
			return nil
		}
		return b.symbolType(sym, depth+1)
	}
	return nil
}

func (b *Binder) binaryType(n *syntax.Node, depth int) *TypeInfo {
	left, op, right, ok := syntax.BinaryParts(n)
	if !ok {
		return nil
	}
	switch op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return b.named("System.Boolean")
	case "??":
		if t := b.typeOf(left, depth+1); t != nil {
			return t
		}
		return b.typeOf(right, depth+1)
	}
	lt, rt := b.typeOf(left, depth+1), b.typeOf(right, depth+1)
	if op == "+" && (isString(lt) || isString(rt)) {
		return b.named("System.String")
	}
	if lt != nil {
		return lt
	}
	return rt
}

func isString(t *TypeInfo) bool { return t != nil && t.FullName == "System.String" }

// castType returns the target type node of a cast or as expression.
func castType(n *syntax.Node) *syntax.Node {
	if t := n.Field("type"); t != nil {
		return t
	}
	named := n.NamedChildren()
	if len(named) < 2 {
		return nil
	}
	if n.Is(syntax.KindCast) {
		return named[0]
	}
	if r := n.Field("right"); r != nil {
		return r
	}
	return named[len(named)-1]
}

func integerType(lit string) string {
	l := strings.ToLower(lit)
	switch {
	case strings.HasSuffix(l, "ul"), strings.HasSuffix(l, "lu"):
		return "System.UInt64"
	case strings.HasSuffix(l, "l"):
		return "System.Int64"
	case strings.HasSuffix(l, "u"):
		return "System.UInt32"
	default:
		return "System.Int32"
	}
}

func realType(lit string) string {
	if lit == "" {
		return "System.Double"
	}
	switch strings.ToLower(lit[len(lit)-1:]) {
	case "f":
		return "System.Single"
	case "m":
		return "System.Decimal"
	default:
		return "System.Double"
	}
}
