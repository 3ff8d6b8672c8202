// Package harness checks rules and fixes against literal C# sources.
//
// Every check parses the source, binds it, runs exactly one rule and compares
// the outcome with what the caller expects. Failures describe the diagnostics
// that were actually produced and, for fixes, a unified diff of the text.
package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"fortio.org/safecast"
	"github.com/pmezard/go-difflib/difflib"

	"sharpfix/internal/diag"
	"sharpfix/internal/engine"
	"sharpfix/internal/fix"
	"sharpfix/internal/parser"
	"sharpfix/internal/rule"
	"sharpfix/internal/semantic"
	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
)

// maxFixPasses bounds FixAll: each pass re-analyses the text the previous one
// produced.
const maxFixPasses = 10

// Harness runs single rules of a catalog.
type Harness struct {
	catalog *rule.Catalog
	fixes   *fix.Registry
	bind    []semantic.Option
}

// New returns a harness over catalog and its fixes. Sources are bound with
// the SDK's implicit usings unless opts say otherwise.
func New(catalog *rule.Catalog, fixes *fix.Registry, opts ...semantic.Option) *Harness {
	if len(opts) == 0 {
		opts = []semantic.Option{semantic.WithImplicitUsings(semantic.DefaultImplicitUsings...)}
	}
	return &Harness{catalog: catalog, fixes: fixes, bind: opts}
}

// Verifier checks one rule.
type Verifier struct {
	h    *Harness
	code diag.Code
	set  *rule.Set
	err  error
}

// Rule returns the verifier of code. An unknown code makes every check fail.
func (h *Harness) Rule(code diag.Code) *Verifier {
	set, err := h.catalog.Only(code)
	return &Verifier{h: h, code: code, set: set, err: err}
}

// Result is one analysis of a source text.
type Result struct {
	Files       *source.FileSet
	Tree        *syntax.Tree
	Diagnostics []diag.Diagnostic
}

// Analyze parses, binds and runs the rule on src.
func (v *Verifier) Analyze(src string) (*Result, error) {
	if v.err != nil {
		return nil, v.err
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual("Test0.cs", []byte(src))
	tree, err := parser.ParseFile(context.Background(), fs.Get(id))
	if err != nil {
		return nil, err
	}
	b := semantic.Bind(tree, v.h.bind...)
	res := &Result{Files: fs, Tree: tree, Diagnostics: engine.Run(tree, b, v.set)}
	for _, d := range res.Diagnostics {
		if d.Internal {
			return res, fmt.Errorf("%s: %s: %s\n%s", v.code, d.Message, d.Prop("error"), res.describe())
		}
	}
	return res, nil
}

// NoDiagnostics fails when the rule reports anything on src.
func (v *Verifier) NoDiagnostics(src string) error {
	return v.Diagnostics(src, 0)
}

// Diagnostics fails unless the rule reports exactly want findings on src.
func (v *Verifier) Diagnostics(src string, want int) error {
	res, err := v.Analyze(src)
	if err != nil {
		return err
	}
	if got := len(res.Diagnostics); got != want {
		return fmt.Errorf("%s: expected %d diagnostic(s), got %d\n%s", v.code, want, got, res.describe())
	}
	return nil
}

// DiagnosticsAt fails unless the rule reports exactly one finding per span,
// compared by primary span. Spans are given as source substrings: each one
// must occur in src once.
func (v *Verifier) DiagnosticsAt(src string, at ...string) error {
	res, err := v.Analyze(src)
	if err != nil {
		return err
	}
	var want []source.Span
	for _, s := range at {
		i := strings.Index(src, s)
		if i < 0 || strings.Count(src, s) != 1 {
			return fmt.Errorf("%s: marker %q must occur exactly once in the source", v.code, s)
		}
		start, err1 := safecast.Conv[uint32](i)
		size, err2 := safecast.Conv[uint32](len(s))
		if err1 != nil || err2 != nil {
			return fmt.Errorf("%s: marker %q out of range", v.code, s)
		}
		want = append(want, source.NewSpan(res.Tree.File, start, size))
	}
	if len(want) != len(res.Diagnostics) {
		return fmt.Errorf("%s: expected %d diagnostic(s), got %d\n%s", v.code, len(want), len(res.Diagnostics), res.describe())
	}
	for _, sp := range want {
		found := false
		for _, d := range res.Diagnostics {
			if d.Primary == sp {
				found = true
				break
			}
		}
		if !found {
			start, _ := res.Files.Resolve(sp)
			return fmt.Errorf("%s: no diagnostic at %d:%d %v\n%s", v.code, start.Line, start.Col, sp, res.describe())
		}
	}
	return nil
}

// Fix requires exactly one fixable diagnostic on original, applies its fix
// and compares the text with expected byte for byte.
func (v *Verifier) Fix(original, expected string) error {
	res, err := v.Analyze(original)
	if err != nil {
		return err
	}
	var fixable []diag.Diagnostic
	for _, d := range res.Diagnostics {
		if v.h.fixes.Fixable(d) {
			fixable = append(fixable, d)
		}
	}
	if len(fixable) != 1 {
		return fmt.Errorf("%s: expected 1 fixable diagnostic, got %d\n%s", v.code, len(fixable), res.describe())
	}
	f, _ := v.h.fixes.Get(v.code)
	out, err := fix.Apply(res.Tree, fixable[0], f)
	if err != nil {
		return fmt.Errorf("%s: %w\n%s", v.code, err, res.describe())
	}
	return v.compare(expected, out.Text(), res)
}

// FixAll applies every fix of the rule until no fixable diagnostic is left and
// compares the final text with expected.
func (v *Verifier) FixAll(original, expected string) error {
	text := original
	var first *Result
	for pass := 0; pass < maxFixPasses; pass++ {
		res, err := v.Analyze(text)
		if err != nil {
			return err
		}
		if first == nil {
			first = res
		}
		out, _, err := fix.ApplyAll(res.Tree, res.Diagnostics, v.h.fixes, fix.ApplyOptions{Mode: fix.ApplyModeRule, Rule: v.code})
		if err != nil || out.Text() == text {
			break
		}
		text = out.Text()
	}
	return v.compare(expected, text, first)
}

// compare reports a text mismatch together with the diagnostics of the
// original source.
func (v *Verifier) compare(expected, actual string, res *Result) error {
	if expected == actual {
		return nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("%s: fixed text differs: %w\n%s", v.code, err, res.describe())
	}
	return fmt.Errorf("%s: fixed text differs\n%s%s", v.code, diff, res.describe())
}

// describe lists the diagnostics of r one per line.
func (r *Result) describe() string {
	if len(r.Diagnostics) == 0 {
		return "diagnostics: none"
	}
	var b strings.Builder
	b.WriteString("diagnostics:")
	for _, d := range r.Diagnostics {
		start, _ := r.Files.Resolve(d.Primary)
		fmt.Fprintf(&b, "\n  %s %d:%d [%d,%d) %s", d.Code, start.Line, start.Col, d.Primary.Start, d.Primary.End, d.Message)
		for _, sp := range d.Secondary {
			s, _ := r.Files.Resolve(sp)
			fmt.Fprintf(&b, "\n    also %d:%d [%d,%d)", s.Line, s.Col, sp.Start, sp.End)
		}
	}
	return b.String()
}

// AssertNoDiagnostics is NoDiagnostics for tests.
func (v *Verifier) AssertNoDiagnostics(t testing.TB, src string) {
	t.Helper()
	if err := v.NoDiagnostics(src); err != nil {
		t.Fatal(err)
	}
}

// AssertDiagnostics is Diagnostics for tests.
func (v *Verifier) AssertDiagnostics(t testing.TB, src string, want int) {
	t.Helper()
	if err := v.Diagnostics(src, want); err != nil {
		t.Fatal(err)
	}
}

// AssertDiagnosticsAt is DiagnosticsAt for tests.
func (v *Verifier) AssertDiagnosticsAt(t testing.TB, src string, at ...string) {
	t.Helper()
	if err := v.DiagnosticsAt(src, at...); err != nil {
		t.Fatal(err)
	}
}

// AssertFix is Fix for tests.
func (v *Verifier) AssertFix(t testing.TB, original, expected string) {
	t.Helper()
	if err := v.Fix(original, expected); err != nil {
		t.Fatal(err)
	}
}

// AssertFixAll is FixAll for tests.
func (v *Verifier) AssertFixAll(t testing.TB, original, expected string) {
	t.Helper()
	if err := v.FixAll(original, expected); err != nil {
		t.Fatal(err)
	}
}
