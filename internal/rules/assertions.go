package rules

import (
	"strings"

	"sharpfix/internal/diag"
	"sharpfix/internal/fix"
	"sharpfix/internal/rule"
	"sharpfix/internal/syntax"
)

const nunitAssert = "NUnit.Framework.Assert"

// TST4001: Assert.AreEqual(expected, actual) и подобные -> Assert.That(actual, constraint).
func assertionRule(data *Data) *rule.Rule {
	constraints := make(map[string]string, len(data.Constraints))
	for k, v := range data.Constraints {
		constraints[k] = v
	}
	return &rule.Rule{
		Code:     ClassicAssertion,
		Name:     "nunit-constraint-model",
		Title:    "Use the NUnit constraint model",
		Category: CategoryTesting,
		Severity: diag.SevWarning,
		Kinds:    []syntax.Kind{syntax.KindInvocation},
		Check: func(ctx *rule.Context) error {
			callee, args, ok := syntax.InvocationParts(ctx.Node)
			if !ok || !callee.Is(syntax.KindMemberAccess) {
				return nil
			}
			recv, name := syntax.CalleeParts(callee)
			tpl, ok := constraints[name]
			if !ok || recv == nil || !ctx.IsType(recv, nunitAssert) {
				return nil
			}
			list, ok := argumentTexts(args)
			if !ok || len(list) < placeholders(tpl) {
				return nil
			}
			ctx.ReportNode(ctx.Node, "Use Assert.That instead of Assert.%s", name).
				WithProp("constraint", tpl).
				Emit()
			return nil
		},
	}
}

func assertionFix() *fix.Fix {
	return &fix.Fix{
		Code:        ClassicAssertion,
		Title:       "Rewrite as Assert.That",
		TargetKinds: []syntax.Kind{syntax.KindInvocation},
		Applies:     func(d diag.Diagnostic) bool { return d.Prop("constraint") != "" },
		Compute: func(ctx *fix.Context) ([]fix.Edit, error) {
			callee, args, ok := syntax.InvocationParts(ctx.Target)
			if !ok {
				return nil, fix.ErrNotApplicable
			}
			recv, _ := syntax.CalleeParts(callee)
			list, ok := argumentTexts(args)
			tpl := ctx.Prop("constraint")
			used := placeholders(tpl)
			if recv == nil || !ok || len(list) < used {
				return nil, fix.ErrNotApplicable
			}
			// лишние аргументы (сообщение, параметры формата) идут после ограничения
			parts := append([]string{expand(tpl, "", list)}, list[used:]...)
			text := recv.SignificantText() + ".That(" + strings.Join(parts, ", ") + ")"
			return []fix.Edit{ctx.ReplaceExpression(ctx.Target, text)}, nil
		},
	}
}
