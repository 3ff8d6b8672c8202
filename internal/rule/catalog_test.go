package rule

import (
	"errors"
	"testing"

	"sharpfix/internal/diag"
	"sharpfix/internal/syntax"
)

func nopCheck(*Context) error { return nil }

func sample(code diag.Code, kinds ...syntax.Kind) *Rule {
	return &Rule{Code: code, Name: string(code), Severity: diag.SevWarning, Kinds: kinds, Check: nopCheck}
}

func TestNewCatalogValidates(t *testing.T) {
	cases := []struct {
		name  string
		rules []*Rule
		want  error
	}{
		{"duplicate", []*Rule{sample("MNT3011", syntax.KindThrow), sample("MNT3011", syntax.KindIf)}, ErrDuplicateCode},
		{"no kinds", []*Rule{sample("MNT3011")}, ErrNoKinds},
		{"no code", []*Rule{sample("", syntax.KindIf)}, ErrMissingCode},
		{"no check", []*Rule{{Code: "MNT3011", Kinds: []syntax.Kind{syntax.KindIf}}}, ErrNoCheck},
	}
	for _, tc := range cases {
		_, err := NewCatalog(tc.rules...)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
	if _, err := NewCatalog(sample("bad", syntax.KindIf)); err == nil {
		t.Fatalf("malformed code accepted")
	}
}

func TestSelectIndexesByKind(t *testing.T) {
	a := sample("MNT3011", syntax.KindThrow, syntax.KindThrowExpression, syntax.KindThrow)
	b := sample("SPC6001", syntax.KindIf, syntax.KindThrow)
	c := &Rule{
		Code: "MNT3014", Kinds: []syntax.Kind{syntax.KindAssignment}, Check: nopCheck,
		Scope: []syntax.Kind{syntax.KindMethod}, NewState: func() any { return 0 },
	}
	cat, err := NewCatalog(a, b, c)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	all := cat.All()
	if got := all.ForKind(syntax.KindThrow); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("ForKind(throw) = %v", got)
	}
	if got := all.ScopesFor(syntax.KindMethod); len(got) != 1 || got[0] != c {
		t.Fatalf("ScopesFor(method) = %v", got)
	}

	only, err := cat.Only("SPC6001")
	if err != nil {
		t.Fatalf("Only: %v", err)
	}
	if got := only.ForKind(syntax.KindThrow); len(got) != 1 || got[0] != b {
		t.Fatalf("Only kept %v", got)
	}

	sel, err := cat.Select(Selection{
		Disable:  []diag.Code{"MNT3011"},
		Severity: map[diag.Code]diag.Severity{"SPC6001": diag.SevError},
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Len() != 2 || sel.Severity(b) != diag.SevError {
		t.Fatalf("selection: len %d severity %v", sel.Len(), sel.Severity(b))
	}
	if sel.Fingerprint() == all.Fingerprint() {
		t.Fatalf("fingerprint ignores the selection")
	}

	if _, err := cat.Only("NAM9999"); !errors.Is(err, ErrUnknownRule) {
		t.Fatalf("unknown code: err = %v", err)
	}
}
