package fix

import (
	"errors"
	"fmt"
	"sort"

	"sharpfix/internal/diag"
	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
)

// Apply runs f for diagnostic d against tree. On any error the returned tree
// is tree itself, untouched.
func Apply(tree *syntax.Tree, d diag.Diagnostic, f *Fix) (*syntax.Tree, error) {
	out, _, err := apply(tree, d, f)
	if err != nil {
		return tree, err
	}
	return out, nil
}

func apply(tree *syntax.Tree, d diag.Diagnostic, f *Fix) (*syntax.Tree, []Edit, error) {
	edits, err := plan(tree, d, f)
	if err != nil {
		return nil, nil, err
	}

	// снизу вверх: правка ниже не сдвигает спаны выше неё
	working := tree
	for _, e := range edits {
		n, ok := working.FindNode(e.Target, e.Kinds...)
		if !ok {
			return nil, nil, fmt.Errorf("%s at %s: %s: %w", d.Code, d.Primary, e, ErrStaleDiagnostic)
		}
		next, err := e.apply(working, n)
		if err != nil {
			return nil, nil, fmt.Errorf("%s at %s: %s: %w", d.Code, d.Primary, e, err)
		}
		working = next
	}
	return working, edits, nil
}

// plan locates the targets of d in tree and computes the ordered edits of f
// without applying them.
func plan(tree *syntax.Tree, d diag.Diagnostic, f *Fix) ([]Edit, error) {
	if f == nil || f.Code != d.Code {
		return nil, fmt.Errorf("%s: %w", d.Code, ErrWrongFixForDiagnostic)
	}
	target, ok := tree.FindNode(d.Primary, f.TargetKinds...)
	if !ok {
		return nil, fmt.Errorf("%s at %s: primary target: %w", d.Code, d.Primary, ErrStaleDiagnostic)
	}
	ctx := &Context{Tree: tree, Diagnostic: d, Target: target}
	for _, sp := range d.Secondary {
		n, ok := tree.FindNode(sp)
		if !ok {
			return nil, fmt.Errorf("%s at %s: secondary target %s: %w", d.Code, d.Primary, sp, ErrStaleDiagnostic)
		}
		ctx.Secondary = append(ctx.Secondary, n)
	}
	if f.Applies != nil && !f.Applies(d) {
		return nil, fmt.Errorf("%s at %s: %w", d.Code, d.Primary, ErrNotApplicable)
	}

	edits, err := f.Compute(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", d.Code, d.Primary, err)
	}
	if len(edits) == 0 {
		return nil, fmt.Errorf("%s at %s: no edits: %w", d.Code, d.Primary, ErrNotApplicable)
	}
	edits, err = order(edits)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", d.Code, d.Primary, err)
	}
	return edits, nil
}

// order sorts edits from the end of the file toward its start and rejects
// overlapping targets.
func order(edits []Edit) ([]Edit, error) {
	out := append([]Edit(nil), edits...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Target.Start == out[j].Target.Start {
			return out[i].Target.End > out[j].Target.End
		}
		return out[i].Target.Start > out[j].Target.Start
	})
	for i := 1; i < len(out); i++ {
		if spansConflict(out[i-1].region(), out[i].region()) {
			return nil, fmt.Errorf("%s and %s: %w", out[i].Target, out[i-1].Target, ErrConflict)
		}
	}
	return out, nil
}

// spansConflict reports whether two edit targets overlap.
// Spans are treated as half-open intervals [Start, End). Two zero-length
// targets conflict only at the same position. A zero-length target conflicts
// with a non-zero span if its position is within that span (Start <= pos < End).
func spansConflict(a, b source.Span) bool {
	if a.File != b.File {
		return false
	}
	if a.Start == a.End && b.Start == b.End {
		return a.Start == b.Start
	}
	if a.Start == a.End {
		return b.Start <= a.Start && a.Start < b.End
	}
	if b.Start == b.End {
		return a.Start <= b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeAll ApplyMode = iota
	ApplyModeOnce
	ApplyModeRule
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode ApplyMode
	Rule diag.Code // for ApplyModeRule
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	Code      diag.Code
	Title     string
	Message   string
	Primary   source.Span
	EditCount int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	Code    diag.Code
	Title   string
	Primary source.Span
	Reason  string
	Err     error
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

// Merge appends other to r.
func (r *ApplyResult) Merge(other *ApplyResult) {
	if other == nil {
		return
	}
	r.Applied = append(r.Applied, other.Applied...)
	r.Skipped = append(r.Skipped, other.Skipped...)
	r.FileChanges = append(r.FileChanges, other.FileChanges...)
}

// ApplyAll applies the registered fix of every selected diagnostic of tree's
// file, bottom to top, each on the tree the previous one produced. Stale,
// conflicting and declined fixes are skipped and reported. ErrNoFixes is
// returned, together with the unchanged tree, when nothing was applied.
func ApplyAll(tree *syntax.Tree, diags []diag.Diagnostic, reg *Registry, opts ApplyOptions) (*syntax.Tree, *ApplyResult, error) {
	result := &ApplyResult{}
	cands := candidates(tree, diags, reg, opts)
	if len(cands) == 0 {
		return tree, result, ErrNoFixes
	}

	working := tree
	var touched []source.Span
	for _, d := range cands {
		f, _ := reg.Get(d.Code)
		skip := func(reason string, err error) {
			result.Skipped = append(result.Skipped, SkippedFix{
				Code: d.Code, Title: f.Title, Primary: d.Primary, Reason: reason, Err: err,
			})
		}
		next, edits, err := apply(working, d, f)
		if err != nil {
			skip(reason(err), err)
			continue
		}
		if overlapsAny(touched, targets(edits)) {
			skip("conflicts with previously applied edits", ErrConflict)
			continue
		}
		working = next
		touched = append(touched, targets(edits)...)
		result.Applied = append(result.Applied, AppliedFix{
			Code: d.Code, Title: f.Title, Message: d.Message, Primary: d.Primary, EditCount: len(edits),
		})
		if opts.Mode == ApplyModeOnce {
			break
		}
	}
	if len(result.Applied) == 0 {
		return tree, result, ErrNoFixes
	}
	return working, result, nil
}

// candidates selects the fixable diagnostics of tree's file, last first by the
// lowest offset their fix edits, which may lie above the primary span.
func candidates(tree *syntax.Tree, diags []diag.Diagnostic, reg *Registry, opts ApplyOptions) []diag.Diagnostic {
	type cand struct {
		d   diag.Diagnostic
		low uint32
	}
	var cs []cand
	for _, d := range diags {
		if d.Internal || d.Primary.File != tree.File || !reg.Fixable(d) {
			continue
		}
		if opts.Mode == ApplyModeRule && d.Code != opts.Rule {
			continue
		}
		cs = append(cs, cand{d: d, low: reach(tree, d, reg)})
	}
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.low != b.low {
			return a.low > b.low
		}
		if a.d.Primary.Start != b.d.Primary.Start {
			return a.d.Primary.Start > b.d.Primary.Start
		}
		if a.d.Primary.End != b.d.Primary.End {
			return a.d.Primary.End > b.d.Primary.End
		}
		return a.d.Code < b.d.Code
	})
	out := make([]diag.Diagnostic, len(cs))
	for i, c := range cs {
		out[i] = c.d
	}
	if opts.Mode == ApplyModeOnce && len(out) > 1 {
		// первой применяется находка, стоящая выше всех в файле
		out = append(out[len(out)-1:], out[:len(out)-1]...)
	}
	return out
}

// reach is the lowest offset the fix of d edits in tree. A fix that cannot be
// planned falls back to its primary start and is skipped when applied.
func reach(tree *syntax.Tree, d diag.Diagnostic, reg *Registry) uint32 {
	low := d.Primary.Start
	f, _ := reg.Get(d.Code)
	edits, err := plan(tree, d, f)
	if err != nil {
		return low
	}
	for _, sp := range targets(edits) {
		low = min(low, sp.Start)
	}
	return low
}

func targets(edits []Edit) []source.Span {
	out := make([]source.Span, len(edits))
	for i, e := range edits {
		out[i] = e.region()
	}
	return out
}

func overlapsAny(done, spans []source.Span) bool {
	for _, a := range done {
		for _, b := range spans {
			if spansConflict(a, b) {
				return true
			}
		}
	}
	return false
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrStaleDiagnostic):
		return "diagnostic is stale"
	case errors.Is(err, ErrNotApplicable):
		return "fix is not applicable"
	case errors.Is(err, ErrConflict):
		return "conflicting edits"
	case errors.Is(err, syntax.ErrNodeNotFound):
		return "target node not found"
	}
	return err.Error()
}
