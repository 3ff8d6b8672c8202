package rules

import (
	"strings"

	"sharpfix/internal/diag"
	"sharpfix/internal/fix"
	"sharpfix/internal/rule"
	"sharpfix/internal/syntax"
)

// keyword names the statement in messages: its first token, or the kind when
// that token is empty or was inserted by error recovery.
func keyword(n *syntax.Node) string {
	if tok := n.FirstToken(); tok != nil && !tok.IsMissing() && tok.Text() != "" {
		return tok.Text()
	}
	name := strings.TrimSuffix(string(n.Kind()), "_statement")
	return strings.ReplaceAll(name, "_", " ")
}

// SPC6001
func blankBeforeRule() *rule.Rule {
	return &rule.Rule{
		Code:     BlankLineBeforeControlFlow,
		Name:     "blank-line-before-control-flow",
		Title:    "Separate control flow statements from preceding code with a blank line",
		Category: CategorySpacing,
		Severity: diag.SevWarning,
		Kinds:    syntax.ControlFlowKinds,
		Check: func(ctx *rule.Context) error {
			n := ctx.Node
			if !inStatementList(ctx.Tree, n) {
				return nil
			}
			prev := ctx.Tree.PrevSibling(n)
			if prev == nil || !prev.Kind().IsStatement() || ctx.Tree.HasBlankLineBefore(n) {
				return nil
			}
			ctx.ReportNode(n, "Add a blank line before the %s statement", keyword(n)).Emit()
			return nil
		},
	}
}

func blankBeforeFix() *fix.Fix {
	return &fix.Fix{
		Code:        BlankLineBeforeControlFlow,
		Title:       "Insert blank line",
		TargetKinds: syntax.ControlFlowKinds,
		Compute: func(ctx *fix.Context) ([]fix.Edit, error) {
			return []fix.Edit{ctx.BlankLineBefore(ctx.Target)}, nil
		},
	}
}

// SPC6002
func blankAfterRule() *rule.Rule {
	return &rule.Rule{
		Code:     BlankLineAfterControlFlow,
		Name:     "blank-line-after-control-flow",
		Title:    "Separate control flow statements from following code with a blank line",
		Category: CategorySpacing,
		Severity: diag.SevWarning,
		Kinds:    syntax.ControlFlowKinds,
		Check: func(ctx *rule.Context) error {
			n := ctx.Node
			if !inStatementList(ctx.Tree, n) {
				return nil
			}
			next := ctx.Tree.NextSibling(n)
			if next == nil || !next.Kind().IsStatement() || ctx.Tree.HasBlankLineAfter(n) {
				return nil
			}
			ctx.ReportNode(n, "Add a blank line after the %s statement", keyword(n)).Emit()
			return nil
		},
	}
}

func blankAfterFix() *fix.Fix {
	return &fix.Fix{
		Code:        BlankLineAfterControlFlow,
		Title:       "Insert blank line",
		TargetKinds: syntax.ControlFlowKinds,
		Compute: func(ctx *fix.Context) ([]fix.Edit, error) {
			return []fix.Edit{ctx.BlankLineAfter(ctx.Target)}, nil
		},
	}
}
