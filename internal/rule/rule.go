// Package rule defines rules as plain values and the catalog they are
// registered in.
package rule

import (
	"fmt"

	"sharpfix/internal/diag"
	"sharpfix/internal/semantic"
	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
)

// Rule is a named predicate over the nodes of the listed kinds.
//
// Check runs once per visited node whose kind is in Kinds. Rules that need
// state across nodes list the kinds opening a scope in Scope: entering such a
// node creates a fresh state with NewState, Context.State returns the
// innermost one, and Finish runs when the walk leaves the scope node.
type Rule struct {
	Code     diag.Code
	Name     string
	Title    string
	Category string
	Severity diag.Severity
	Kinds    []syntax.Kind
	Check    func(ctx *Context) error

	Scope    []syntax.Kind
	NewState func() any
	Finish   func(ctx *Context, state any) error
}

// Scoped reports whether r keeps per-scope state.
func (r *Rule) Scoped() bool {
	return len(r.Scope) > 0 && r.NewState != nil
}

func (r *Rule) validate() error {
	switch {
	case r == nil:
		return fmt.Errorf("nil rule")
	case r.Code == "":
		return fmt.Errorf("rule %q: %w", r.Name, ErrMissingCode)
	case len(r.Kinds) == 0 && len(r.Scope) == 0:
		return fmt.Errorf("rule %s: %w", r.Code, ErrNoKinds)
	case r.Check == nil && r.Finish == nil:
		return fmt.Errorf("rule %s: %w", r.Code, ErrNoCheck)
	case len(r.Scope) > 0 && r.NewState == nil:
		return fmt.Errorf("rule %s: scope without NewState", r.Code)
	}
	if _, err := diag.ParseCode(string(r.Code)); err != nil {
		return fmt.Errorf("rule %s: %w", r.Code, err)
	}
	return nil
}

// Context is what a rule sees during one call. A Context is only valid for the
// duration of the call it is passed to.
type Context struct {
	Tree     *syntax.Tree
	Node     *syntax.Node
	Resolver semantic.Resolver
	Rule     *Rule
	Severity diag.Severity

	state    any
	reporter diag.Reporter
}

// NewContext is used by the engine; rules receive ready contexts.
func NewContext(tree *syntax.Tree, res semantic.Resolver, r diag.Reporter) *Context {
	if res == nil {
		res = semantic.Null{}
	}
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Context{Tree: tree, Resolver: res, reporter: r}
}

// Enter points the context at rule r visiting node n with scope state st.
func (c *Context) Enter(r *Rule, sev diag.Severity, n *syntax.Node, st any) {
	c.Rule, c.Severity, c.Node, c.state = r, sev, n, st
}

// State returns the innermost scope state of the current rule, nil outside
// any scope.
func (c *Context) State() any { return c.state }

// Span returns the span of n without its outer trivia.
func (c *Context) Span(n *syntax.Node) source.Span {
	return c.Tree.Span(n)
}

// Report starts a diagnostic of the current rule at span sp.
func (c *Context) Report(sp source.Span, format string, args ...any) *diag.ReportBuilder {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return diag.NewReportBuilder(c.reporter, c.Severity, c.Rule.Code, sp, msg)
}

// ReportNode starts a diagnostic of the current rule at node n.
func (c *Context) ReportNode(n *syntax.Node, format string, args ...any) *diag.ReportBuilder {
	return c.Report(c.Span(n), format, args...)
}

// Resolve is Resolver.Resolve.
func (c *Context) Resolve(n *syntax.Node) (*semantic.Symbol, bool) {
	return c.Resolver.Resolve(n)
}

// TypeOf is Resolver.TypeOf.
func (c *Context) TypeOf(n *syntax.Node) (*semantic.TypeInfo, bool) {
	return c.Resolver.TypeOf(n)
}

// IsType reports whether n resolves to a symbol or has a type that is, or
// derives from, the well-known type fullName.
func (c *Context) IsType(n *syntax.Node, fullName string) bool {
	want, ok := c.Resolver.WellKnownType(fullName)
	if !ok {
		return false
	}
	if sym, ok := c.Resolver.Resolve(n); ok && sym.Kind == semantic.SymbolType {
		return c.Resolver.IsSubtype(sym.Type, want)
	}
	if t, ok := c.Resolver.TypeOf(n); ok {
		return c.Resolver.IsSubtype(t, want)
	}
	return false
}
