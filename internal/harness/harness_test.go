package harness_test

import (
	"errors"
	"strings"
	"testing"

	"sharpfix/internal/diag"
	"sharpfix/internal/fix"
	"sharpfix/internal/harness"
	"sharpfix/internal/rule"
	"sharpfix/internal/syntax"
)

const (
	nullReturn diag.Code = "TST9100"
	broken     diag.Code = "TST9101"
)

func setup(t *testing.T) *harness.Harness {
	t.Helper()
	cat, err := rule.NewCatalog(
		&rule.Rule{
			Code:  nullReturn,
			Name:  "null-return",
			Kinds: []syntax.Kind{syntax.KindReturn},
			Check: func(ctx *rule.Context) error {
				if e := syntax.ReturnedExpression(ctx.Node); syntax.IsNullLiteral(e) {
					ctx.ReportNode(e, "null returned").Emit()
				}
				return nil
			},
		},
		&rule.Rule{
			Code:  broken,
			Name:  "broken",
			Kinds: []syntax.Kind{syntax.KindReturn},
			Check: func(*rule.Context) error { return errors.New("boom") },
		},
	)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	reg, err := fix.NewRegistry(&fix.Fix{
		Code: nullReturn,
		Compute: func(ctx *fix.Context) ([]fix.Edit, error) {
			return []fix.Edit{ctx.ReplaceExpression(ctx.Target, "default")}, nil
		},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return harness.New(cat, reg)
}

const src = `class C
{
    object A() { return null; }
    object B() { return null; }
}
`

func TestHarnessPasses(t *testing.T) {
	v := setup(t).Rule(nullReturn)
	v.AssertDiagnostics(t, src, 2)
	v.AssertNoDiagnostics(t, "class C { object A() { return 1; } }")
	v.AssertFixAll(t, src, strings.ReplaceAll(src, "return null", "return default"))
	if err := v.DiagnosticsAt(src, "null"); err == nil {
		t.Fatalf("ambiguous marker accepted")
	}
}

func TestHarnessFailureMessages(t *testing.T) {
	v := setup(t).Rule(nullReturn)

	err := v.NoDiagnostics(src)
	if err == nil || !strings.Contains(err.Error(), "TST9100 3:25") {
		t.Fatalf("error should list diagnostics with positions: %v", err)
	}

	err = v.Fix(src, src)
	if err == nil || !strings.Contains(err.Error(), "expected 1 fixable diagnostic, got 2") {
		t.Fatalf("got %v", err)
	}

	one := "class C { object A() { return null; } }\n"
	err = v.Fix(one, one)
	if err == nil || !strings.Contains(err.Error(), "--- expected") || !strings.Contains(err.Error(), "+class C { object A() { return default; } }") {
		t.Fatalf("error should carry a unified diff: %v", err)
	}
	if !strings.Contains(err.Error(), "diagnostics:\n  TST9100 1:31 [30,34)") {
		t.Fatalf("text mismatch should list the diagnostics: %v", err)
	}

	err = v.FixAll(src, src)
	if err == nil || !strings.Contains(err.Error(), "+    object B() { return default; }") {
		t.Fatalf("FixAll mismatch should carry a diff: %v", err)
	}
	for _, want := range []string{"TST9100 3:25", "TST9100 4:25"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("FixAll mismatch misses %q: %v", want, err)
		}
	}
}

func TestHarnessReportsRuleFailures(t *testing.T) {
	h := setup(t)
	err := h.Rule(broken).NoDiagnostics(src)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("rule failure not surfaced: %v", err)
	}
	if err := h.Rule("TST0000").NoDiagnostics(src); err == nil {
		t.Fatalf("unknown rule accepted")
	}
}
