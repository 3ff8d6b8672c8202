// Package engine runs a rule set over syntax trees.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"sharpfix/internal/diag"
	"sharpfix/internal/metrics"
	"sharpfix/internal/rule"
	"sharpfix/internal/semantic"
	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
)

// RuleFailedMessage is the message of the internal diagnostic replacing a
// failing rule invocation.
const RuleFailedMessage = "rule failed"

// ErrRulePanic wraps the value a rule panicked with.
var ErrRulePanic = errors.New("rule panicked")

// Options tune a run. The zero value is valid.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Jobs    int // RunUnits worker count, defaults to GOMAXPROCS
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Run walks tree once in pre-order and returns every diagnostic of set,
// ordered by primary span and then rule code. A nil resolver behaves like
// semantic.Null.
func Run(tree *syntax.Tree, res semantic.Resolver, set *rule.Set) []diag.Diagnostic {
	return RunWith(tree, res, set, Options{})
}

// RunWith is Run with options.
func RunWith(tree *syntax.Tree, res semantic.Resolver, set *rule.Set, opts Options) []diag.Diagnostic {
	if tree == nil || set == nil || set.Len() == 0 {
		return nil
	}
	w := &walker{
		set:    set,
		opts:   opts,
		log:    opts.logger(),
		states: make(map[*rule.Rule][]any),
	}
	// правило может сообщить одну находку с двух узлов
	w.ctx = rule.NewContext(tree, res, diag.NewDedupReporter(w))
	w.visit(tree.Root())
	diag.SortDiagnostics(w.out)
	opts.Metrics.Diagnostics(w.out)
	return w.out
}

type walker struct {
	set    *rule.Set
	opts   Options
	log    *slog.Logger
	ctx    *rule.Context
	states map[*rule.Rule][]any
	out    []diag.Diagnostic
}

// Report collects the findings of this walk once duplicates are filtered.
func (w *walker) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, secondary []source.Span, props map[string]string) {
	w.out = append(w.out, diag.Diagnostic{
		Code:      code,
		Severity:  sev,
		Message:   msg,
		Primary:   primary,
		Secondary: secondary,
		Props:     props,
	})
}

func (w *walker) visit(n *syntax.Node) {
	kind := n.Kind()
	scoped := w.set.ScopesFor(kind)
	for _, r := range scoped {
		w.states[r] = append(w.states[r], w.newState(r, n))
	}
	for _, r := range w.set.ForKind(kind) {
		st := w.top(r)
		w.call(r, n, st, r.Check)
	}
	for _, c := range n.Children() {
		w.visit(c)
	}
	for i := len(scoped) - 1; i >= 0; i-- {
		r := scoped[i]
		stack := w.states[r]
		st := stack[len(stack)-1]
		w.states[r] = stack[:len(stack)-1]
		if r.Finish != nil {
			w.call(r, n, st, func(ctx *rule.Context) error { return r.Finish(ctx, st) })
		}
	}
}

func (w *walker) top(r *rule.Rule) any {
	if stack := w.states[r]; len(stack) > 0 {
		return stack[len(stack)-1]
	}
	return nil
}

func (w *walker) newState(r *rule.Rule, n *syntax.Node) (st any) {
	defer func() {
		if p := recover(); p != nil {
			w.fail(r, n, fmt.Errorf("%w: NewState: %v", ErrRulePanic, p))
			st = nil
		}
	}()
	return r.NewState()
}

func (w *walker) call(r *rule.Rule, n *syntax.Node, st any, fn func(*rule.Context) error) {
	w.ctx.Enter(r, w.set.Severity(r), n, st)
	w.opts.Metrics.RuleChecked(r.Code)
	if err := protect(fn, w.ctx); err != nil {
		w.fail(r, n, err)
	}
}

func protect(fn func(*rule.Context) error, ctx *rule.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrRulePanic, p)
		}
	}()
	return fn(ctx)
}

func (w *walker) fail(r *rule.Rule, n *syntax.Node, err error) {
	w.log.Debug("rule failed", "rule", r.Code.ID(), "kind", string(n.Kind()), "err", err)
	w.opts.Metrics.RuleFailed(r.Code)
	w.out = append(w.out, diag.Diagnostic{
		Code:     r.Code,
		Severity: diag.SevInfo,
		Message:  RuleFailedMessage,
		Primary:  w.ctx.Tree.Span(n),
		Props:    map[string]string{"error": err.Error()},
		Internal: true,
	})
}

// Unit is one independently analysed compilation unit.
type Unit struct {
	Tree     *syntax.Tree
	Resolver semantic.Resolver
}

// RunUnits analyses units on a worker pool and merges the results by
// concatenation followed by the deterministic sort of Run. It stops early
// only when ctx is cancelled.
func RunUnits(ctx context.Context, units []Unit, set *rule.Set, opts Options) ([]diag.Diagnostic, error) {
	if len(units) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([][]diag.Diagnostic, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for i, u := range units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = RunWith(u.Tree, u.Resolver, set, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []diag.Diagnostic
	for _, r := range results {
		merged = append(merged, r...)
	}
	diag.SortDiagnostics(merged)
	return merged, nil
}
