package rules

import (
	"sharpfix/internal/diag"
	"sharpfix/internal/rule"
	"sharpfix/internal/semantic"
	"sharpfix/internal/syntax"
)

// THR3020: raising an event runs foreign code while the lock is held.
func eventInLockRule() *rule.Rule {
	return &rule.Rule{
		Code:     EventRaisedInLock,
		Name:     "event-raised-in-lock",
		Title:    "Do not raise events inside a lock",
		Category: CategoryThreading,
		Severity: diag.SevWarning,
		Kinds:    []syntax.Kind{syntax.KindInvocation},
		Check: func(ctx *rule.Context) error {
			if !insideLock(ctx.Tree, ctx.Node) {
				return nil
			}
			event := raisedEvent(ctx, ctx.Node)
			if event == nil {
				return nil
			}
			ctx.ReportNode(ctx.Node, "Event %s is raised while holding a lock", event.Name).Emit()
			return nil
		},
	}
}

// insideLock reports whether n runs under a lock statement of its own body.
// Lambdas and local functions run later, so they end the search.
func insideLock(t *syntax.Tree, n *syntax.Node) bool {
	for _, a := range t.Ancestors(n) {
		switch {
		case a.Is(syntax.KindLock):
			return true
		case a.Kind().IsFunctionLike():
			return false
		}
	}
	return false
}

// raisedEvent returns the event an invocation raises: E(...), this.E(...),
// E.Invoke(...) or E?.Invoke(...).
func raisedEvent(ctx *rule.Context, call *syntax.Node) *semantic.Symbol {
	callee, _, ok := syntax.InvocationParts(call)
	if !ok {
		return nil
	}
	var target *syntax.Node
	switch callee.Kind() {
	case syntax.KindIdentifier:
		target = callee
	case syntax.KindMemberAccess:
		recv, name := syntax.CalleeParts(callee)
		switch {
		case name == "Invoke":
			target = recv
		case recv.Is(syntax.KindThis):
			target = callee
		}
	case syntax.KindConditionalAccess:
		if recv, name := syntax.CalleeParts(callee); name == "Invoke" {
			target = recv
		}
	case syntax.KindMemberBinding:
		// E?.Invoke(...): the invocation sits inside the conditional access
		parent := ctx.Tree.Parent(call)
		if !parent.Is(syntax.KindConditionalAccess) || callee.SignificantText() != ".Invoke" {
			return nil
		}
		if named := parent.NamedChildren(); len(named) > 0 {
			target = named[0]
		}
	}
	sym, ok := resolvesTo(ctx, target, semantic.SymbolEvent)
	if !ok {
		return nil
	}
	return sym
}
