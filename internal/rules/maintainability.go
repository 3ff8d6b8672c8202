package rules

import (
	"fmt"
	"strings"

	"sharpfix/internal/diag"
	"sharpfix/internal/fix"
	"sharpfix/internal/rule"
	"sharpfix/internal/semantic"
	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
)

// MNT3011: throw new ArgumentNullException() без имени параметра.

func argumentExceptionRule(data *Data) *rule.Rule {
	templates := make(map[string]ExceptionTemplate, len(data.ArgumentExceptions))
	for k, v := range data.ArgumentExceptions {
		templates[k] = v
	}
	return &rule.Rule{
		Code:     ArgumentExceptionWithoutParam,
		Name:     "argument-exception-param-name",
		Title:    "Argument exceptions should name the offending parameter",
		Category: CategoryMaintainability,
		Severity: diag.SevWarning,
		Kinds:    []syntax.Kind{syntax.KindObjectCreation},
		Check: func(ctx *rule.Context) error {
			n := ctx.Node
			typ, args, init, ok := syntax.ObjectCreationParts(n)
			if !ok || init != nil || len(syntax.Arguments(args)) > 0 {
				return nil
			}
			if !ctx.Tree.Parent(n).Is(syntax.KindThrow, syntax.KindThrowExpression) {
				return nil
			}
			sym, ok := resolvesTo(ctx, typ, semantic.SymbolType)
			if !ok || sym.Type == nil {
				return nil
			}
			tpl, ok := templates[sym.Type.FullName]
			if !ok {
				return nil
			}
			b := ctx.ReportNode(n, "%s is thrown without the name of the offending parameter", sym.Type.Name)
			if param := offendingParameter(ctx, n); param != "" {
				b.WithProp("args", expand(tpl.Args, param, nil))
			}
			b.Emit()
			return nil
		},
	}
}

// offendingParameter picks the parameter an argument exception is about:
// the only parameter tested by an enclosing if, or else the only parameter
// of the enclosing method.
func offendingParameter(ctx *rule.Context, n *syntax.Node) string {
	for _, a := range ctx.Tree.Ancestors(n) {
		if a.Kind().IsFunctionLike() {
			if params := syntax.ParameterParts(a); len(params) == 1 {
				return params[0].Name
			}
			return ""
		}
		if !a.Is(syntax.KindIf) {
			continue
		}
		cond := ifCondition(a)
		if cond == nil {
			continue
		}
		var names []string
		for _, id := range cond.Descendants(syntax.KindIdentifier) {
			if _, ok := resolvesTo(ctx, id, semantic.SymbolParameter); ok && !contains(names, id.Text()) {
				names = append(names, id.Text())
			}
		}
		if cond.Is(syntax.KindIdentifier) {
			if _, ok := resolvesTo(ctx, cond, semantic.SymbolParameter); ok {
				names = append(names, cond.Text())
			}
		}
		if len(names) == 1 {
			return names[0]
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func argumentExceptionFix() *fix.Fix {
	return &fix.Fix{
		Code:        ArgumentExceptionWithoutParam,
		Title:       "Pass the parameter name",
		TargetKinds: []syntax.Kind{syntax.KindObjectCreation},
		Applies:     func(d diag.Diagnostic) bool { return d.Prop("args") != "" },
		Compute: func(ctx *fix.Context) ([]fix.Edit, error) {
			typ, _, _, ok := syntax.ObjectCreationParts(ctx.Target)
			if !ok {
				return nil, fix.ErrNotApplicable
			}
			text := fmt.Sprintf("new %s(%s)", typ.SignificantText(), ctx.Prop("args"))
			return []fix.Edit{ctx.ReplaceExpression(ctx.Target, text)}, nil
		},
	}
}

// MNT3012: a == b || (a != null && a.Equals(b)).

func equalsRule() *rule.Rule {
	return &rule.Rule{
		Code:     EqualsSimplification,
		Name:     "equals-simplification",
		Title:    "Equality check can be simplified to a static Equals call",
		Category: CategoryMaintainability,
		Severity: diag.SevWarning,
		Kinds:    []syntax.Kind{syntax.KindBinary},
		Check: func(ctx *rule.Context) error {
			a, b, ok := equalityOperands(ctx.Node)
			if !ok {
				return nil
			}
			t, ok := ctx.TypeOf(a)
			if !ok {
				return nil
			}
			owner := "object"
			if t.FullName == "System.String" {
				owner = "string"
			}
			ctx.ReportNode(ctx.Node, "Use %s.Equals(%s, %s) instead", owner, a.SignificantText(), b.SignificantText()).
				WithProp("owner", owner).
				Emit()
			return nil
		},
	}
}

// equalityOperands matches a == b || (a != null && a.Equals(b)) and returns
// a and b.
func equalityOperands(n *syntax.Node) (a, b *syntax.Node, ok bool) {
	left, op, right, ok := syntax.BinaryParts(n)
	if !ok || op != "||" {
		return nil, nil, false
	}
	a, op, b, ok = syntax.BinaryParts(syntax.Unparen(left))
	if !ok || op != "==" || syntax.IsNullLiteral(a) || syntax.IsNullLiteral(b) {
		return nil, nil, false
	}
	guard, op, call, ok := syntax.BinaryParts(syntax.Unparen(right))
	if !ok || op != "&&" {
		return nil, nil, false
	}
	x, op, null, ok := syntax.BinaryParts(syntax.Unparen(guard))
	if !ok || op != "!=" || !syntax.IsNullLiteral(null) || !syntax.SameExpression(x, a) {
		return nil, nil, false
	}
	callee, args, ok := syntax.InvocationParts(syntax.Unparen(call))
	if !ok {
		return nil, nil, false
	}
	recv, name := syntax.CalleeParts(callee)
	list := syntax.Arguments(args)
	if name != "Equals" || !callee.Is(syntax.KindMemberAccess) || !syntax.SameExpression(recv, a) || len(list) != 1 {
		return nil, nil, false
	}
	if !syntax.SameExpression(syntax.ArgumentExpr(list[0]), b) {
		return nil, nil, false
	}
	return a, b, true
}

func equalsFix() *fix.Fix {
	return &fix.Fix{
		Code:        EqualsSimplification,
		Title:       "Call static Equals",
		TargetKinds: []syntax.Kind{syntax.KindBinary},
		Applies:     func(d diag.Diagnostic) bool { return d.Prop("owner") != "" },
		Compute: func(ctx *fix.Context) ([]fix.Edit, error) {
			a, b, ok := equalityOperands(ctx.Target)
			if !ok {
				return nil, fix.ErrNotApplicable
			}
			text := fmt.Sprintf("%s.Equals(%s, %s)", ctx.Prop("owner"), a.SignificantText(), b.SignificantText())
			return []fix.Edit{ctx.ReplaceExpression(ctx.Target, text)}, nil
		},
	}
}

// MNT3013: every arm of a switch assigns one variable that is returned
// right after the switch.

func switchReturnRule() *rule.Rule {
	return &rule.Rule{
		Code:     ReturnFromSwitchArms,
		Name:     "return-from-switch-arms",
		Title:    "Return directly from switch arms",
		Category: CategoryMaintainability,
		Severity: diag.SevWarning,
		Kinds:    []syntax.Kind{syntax.KindSwitch},
		Check: func(ctx *rule.Context) error {
			m, ok := matchSwitchReturn(ctx.Tree, ctx.Node)
			if !ok {
				return nil
			}
			sym, ok := resolvesTo(ctx, m.ret, semantic.SymbolLocal)
			if !ok || !declaredBy(ctx.Tree, sym, m.decl) {
				return nil
			}
			scope := enclosingFunction(ctx.Tree, ctx.Node)
			if scope == nil {
				scope = ctx.Tree.Root()
			}
			// переменная не должна использоваться где-то ещё
			uses := 0
			for _, id := range scope.Descendants(syntax.KindIdentifier) {
				if id.Text() != m.name {
					continue
				}
				if p := ctx.Tree.Parent(id); p.Is(syntax.KindVariableDeclarator) && syntax.DeclName(p) == id {
					continue
				}
				if s, ok := ctx.Resolve(id); ok && s.Decl == sym.Decl {
					uses++
				}
			}
			if uses != len(m.arms)+1 {
				return nil
			}
			var secondary []source.Span
			for _, arm := range m.arms {
				secondary = append(secondary, ctx.Span(arm.assign))
			}
			ctx.ReportNode(ctx.Node, "Return directly from the switch arms instead of assigning %s", m.name).
				WithSecondary(secondary...).
				Emit()
			return nil
		},
	}
}

type switchArm struct {
	assign *syntax.Node // expression_statement v = expr;
	value  *syntax.Node
	brk    *syntax.Node
}

type switchReturn struct {
	name string
	arms []switchArm
	ret  *syntax.Node // v in the trailing return
	stmt *syntax.Node // the trailing return statement
	decl *syntax.Node // local_declaration_statement of v
}

// matchSwitchReturn is the syntactic half of MNT3013, shared with its fix.
func matchSwitchReturn(t *syntax.Tree, sw *syntax.Node) (switchReturn, bool) {
	var m switchReturn
	if !inStatementList(t, sw) {
		return m, false
	}
	sections := syntax.SwitchSections(sw)
	if len(sections) == 0 {
		return m, false
	}
	hasDefault := false
	for _, sec := range sections {
		hasDefault = hasDefault || syntax.IsDefaultSection(sec)
		stmts := syntax.Statements(sec)
		if len(stmts) != 2 || !stmts[1].Is(syntax.KindBreak) {
			return m, false
		}
		left, op, right, ok := syntax.AssignmentParts(syntax.AssignmentOf(stmts[0]))
		if !ok || op != "=" || !left.Is(syntax.KindIdentifier) {
			return m, false
		}
		if m.name == "" {
			m.name = left.Text()
		} else if left.Text() != m.name {
			return m, false
		}
		m.arms = append(m.arms, switchArm{assign: stmts[0], value: right, brk: stmts[1]})
	}
	if !hasDefault {
		return m, false
	}

	next := t.NextSibling(sw)
	ret := syntax.ReturnedExpression(next)
	if !ret.Is(syntax.KindIdentifier) || ret.Text() != m.name {
		return m, false
	}
	m.ret, m.stmt = ret, next

	// объявление ищем выше switch в том же блоке
	for prev := t.PrevSibling(sw); prev != nil; prev = t.PrevSibling(prev) {
		if !prev.Is(syntax.KindLocalDeclaration) {
			continue
		}
		ds := syntax.Declarators(prev)
		if len(ds) != 1 {
			continue
		}
		name, value := syntax.DeclaratorParts(ds[0])
		if name == nil || name.Text() != m.name {
			continue
		}
		if value != nil && !isLiteral(value) {
			return m, false
		}
		m.decl = prev
		return m, true
	}
	return m, false
}

func isLiteral(n *syntax.Node) bool {
	n = syntax.Unparen(n)
	switch n.Kind() {
	case syntax.KindIntegerLiteral, syntax.KindRealLiteral, syntax.KindBooleanLiteral, syntax.KindNullLiteral,
		syntax.KindCharLiteral, syntax.KindStringLiteral, syntax.KindVerbatimStringLiteral:
		return true
	case "default_expression":
		return true
	}
	return false
}

func declaredBy(t *syntax.Tree, sym *semantic.Symbol, decl *syntax.Node) bool {
	if sym.Decl == nil {
		return false
	}
	for _, a := range append([]*syntax.Node{sym.Decl}, t.Ancestors(sym.Decl)...) {
		if a == decl {
			return true
		}
	}
	return false
}

func switchReturnFix() *fix.Fix {
	return &fix.Fix{
		Code:        ReturnFromSwitchArms,
		Title:       "Return from each arm",
		TargetKinds: []syntax.Kind{syntax.KindSwitch},
		Compute: func(ctx *fix.Context) ([]fix.Edit, error) {
			m, ok := matchSwitchReturn(ctx.Tree, ctx.Target)
			if !ok {
				return nil, fix.ErrNotApplicable
			}
			edits := make([]fix.Edit, 0, 2*len(m.arms)+2)
			for _, arm := range m.arms {
				value := strings.TrimSpace(arm.value.SignificantText())
				edits = append(edits,
					ctx.ReplaceStatement(arm.assign, "return "+value+";"),
					ctx.Delete(arm.brk),
				)
			}
			edits = append(edits, ctx.Delete(m.stmt), ctx.Delete(m.decl))
			return edits, nil
		},
	}
}

// MNT3014: the same handler is registered twice for one event within a body.

type registrations struct {
	keys  []string
	spans map[string][]source.Span
}

func duplicateRegistrationRule() *rule.Rule {
	return &rule.Rule{
		Code:     DuplicateEventRegistration,
		Name:     "duplicate-event-registration",
		Title:    "Event handler is registered more than once",
		Category: CategoryMaintainability,
		Severity: diag.SevWarning,
		Kinds:    []syntax.Kind{syntax.KindAssignment},
		Scope:    syntax.FunctionScopes,
		NewState: func() any {
			return &registrations{spans: make(map[string][]source.Span)}
		},
		Check: func(ctx *rule.Context) error {
			st, ok := ctx.State().(*registrations)
			if !ok {
				return nil
			}
			left, op, right, ok := syntax.AssignmentParts(ctx.Node)
			if !ok || (op != "+=" && op != "-=") {
				return nil
			}
			if _, ok := resolvesTo(ctx, left, semantic.SymbolEvent); !ok {
				return nil
			}
			key := compact(left) + "\x00" + compact(right)
			list := st.spans[key]
			if op == "-=" {
				if len(list) > 0 {
					st.spans[key] = list[:len(list)-1]
				}
				return nil
			}
			if _, seen := st.spans[key]; !seen {
				st.keys = append(st.keys, key)
			}
			st.spans[key] = append(list, ctx.Span(ctx.Node))
			return nil
		},
		Finish: func(ctx *rule.Context, state any) error {
			st, ok := state.(*registrations)
			if !ok {
				return nil
			}
			for _, key := range st.keys {
				spans := st.spans[key]
				if len(spans) < 2 {
					continue
				}
				event, handler, _ := strings.Cut(key, "\x00")
				others := append([]source.Span{spans[0]}, spans[2:]...)
				ctx.Report(spans[1], "Handler %s is registered for %s %d times", handler, event, len(spans)).
					WithSecondary(others...).
					Emit()
			}
			return nil
		},
	}
}

// compact renders n with whitespace and comments removed.
func compact(n *syntax.Node) string {
	var b strings.Builder
	n.Tokens(func(tok *syntax.Node) bool {
		b.WriteString(tok.Text())
		return true
	})
	return b.String()
}
