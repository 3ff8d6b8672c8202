// Package fix applies rule fixes to syntax trees.
//
// A Fix computes Edits against the tree a diagnostic was raised on. Edits name
// their target by span, never by node identity: Apply re-locates every target
// in the tree it is given, so diagnostics computed once stay usable after
// unrelated fixes produced a new tree. Edits of one fix are applied from the
// end of the file toward its start and either all succeed or the input tree
// is returned unchanged.
package fix

import (
	"errors"

	"sharpfix/internal/diag"
	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
)

var (
	// ErrNoFixes is returned when no fixes were applied.
	ErrNoFixes = errors.New("no applicable fixes found")
	// ErrWrongFixForDiagnostic: the fix belongs to another rule.
	ErrWrongFixForDiagnostic = errors.New("fix does not belong to the diagnostic's rule")
	// ErrStaleDiagnostic: a span of the diagnostic or of an edit no longer
	// locates a node of the expected kind.
	ErrStaleDiagnostic = errors.New("diagnostic is stale")
	// ErrNotApplicable: the fix declined this occurrence.
	ErrNotApplicable = errors.New("fix is not applicable")
	// ErrConflict: two edits target overlapping regions.
	ErrConflict = errors.New("conflicting edits")
)

// Fix is the automated correction registered for one rule code.
type Fix struct {
	Code  diag.Code
	Title string
	// TargetKinds constrain the node the primary span must locate; empty
	// accepts the outermost node with exactly that span.
	TargetKinds []syntax.Kind
	// Applies may reject a diagnostic up front (e.g. by its properties).
	Applies func(d diag.Diagnostic) bool
	Compute func(ctx *Context) ([]Edit, error)
}

// Context is the input of Fix.Compute.
type Context struct {
	Tree       *syntax.Tree
	Diagnostic diag.Diagnostic
	Target     *syntax.Node   // node at the primary span
	Secondary  []*syntax.Node // nodes at the secondary spans, in order
}

// Span returns the span of n in the tree being fixed.
func (c *Context) Span(n *syntax.Node) source.Span { return c.Tree.Span(n) }

// Prop is Diagnostic.Prop.
func (c *Context) Prop(key string) string { return c.Diagnostic.Prop(key) }

// Edit is one targeted change. Build edits with Replace, Delete, Rewrite,
// BlankLineBefore and BlankLineAfter.
type Edit struct {
	Target source.Span
	Kinds  []syntax.Kind
	// Rewrite maps the located node to its replacement; zero nodes delete it.
	Rewrite func(old *syntax.Node) ([]*syntax.Node, error)

	tree  func(t *syntax.Tree, n *syntax.Node) (*syntax.Tree, error)
	touch touchMode
}

type touchMode uint8

const (
	touchNode   touchMode = iota // the whole target
	touchBefore                  // trivia in front of the target
	touchAfter                   // trivia behind the target
)

// region is the part of the source the edit may change, used for conflict
// checks. Blank-line edits only touch the boundary of their target.
func (e Edit) region() source.Span {
	switch e.touch {
	case touchBefore:
		return source.Span{File: e.Target.File, Start: e.Target.Start, End: e.Target.Start}
	case touchAfter:
		return source.Span{File: e.Target.File, Start: e.Target.End, End: e.Target.End}
	}
	return e.Target
}

func (e Edit) apply(t *syntax.Tree, n *syntax.Node) (*syntax.Tree, error) {
	if e.tree != nil {
		return e.tree(t, n)
	}
	if e.Rewrite == nil {
		return t, nil
	}
	repl, err := e.Rewrite(n)
	if err != nil {
		return nil, err
	}
	return t.Replace(n, repl...)
}
