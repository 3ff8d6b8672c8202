package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"sharpfix/internal/diag"
	"sharpfix/internal/engine"
	"sharpfix/internal/fix"
	"sharpfix/internal/parser"
	"sharpfix/internal/semantic"
	"sharpfix/internal/source"
)

// DefaultFixPasses bounds the re-analysis loop of Fix: fixes applied in one
// pass can expose or invalidate findings of the next.
const DefaultFixPasses = 10

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FixOptions select the fixes Fix applies.
type FixOptions struct {
	Mode      fix.ApplyMode
	Rule      diag.Code // ApplyModeRule
	DryRun    bool      // compute but do not write
	MaxPasses int       // 0: DefaultFixPasses; ApplyModeOnce always runs one pass
}

// FileFix is the outcome for one changed file.
type FileFix struct {
	Path    string
	Before  []byte // as on disk, BOM included
	After   []byte
	Passes  int
	Result  *fix.ApplyResult
	Written bool
}

// FixResult is the outcome of Fix.
type FixResult struct {
	Diagnose *Result    // the analysis the fixes started from
	Files    []*FileFix // changed files, in discovery order
}

// Applied counts fixes over every file.
func (r *FixResult) Applied() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Result.Applied)
	}
	return n
}

// Fix analyses target and applies fixes file by file. Every file is fixed to a
// fixpoint: the text is re-parsed and re-analysed after each pass until no
// fix applies or the pass limit is hit. Changed files are written atomically
// with their BOM restored unless fo.DryRun is set.
func Fix(ctx context.Context, target string, opts Options, fo FixOptions) (*FixResult, error) {
	if opts.Fixes == nil {
		return nil, errors.New("driver: no fix registry")
	}
	res, err := Diagnose(ctx, target, opts)
	if err != nil {
		return nil, err
	}
	if fo.MaxPasses <= 0 {
		fo.MaxPasses = DefaultFixPasses
	}
	if fo.Mode == fix.ApplyModeOnce {
		fo.MaxPasses = 1
	}

	out := make([]*FileFix, len(res.Units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(max(1, len(res.Units))))
	for i, u := range res.Units {
		if !hasFixable(u.Diagnostics, opts.Fixes, fo) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ff, err := fixFile(gctx, u, &opts, fo)
			if err != nil {
				emit(opts.Progress, Event{File: u.Path, Stage: StageFix, Status: StatusError, Err: err})
				return err
			}
			out[i] = ff
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fr := &FixResult{Diagnose: res}
	for _, ff := range out {
		if ff != nil {
			fr.Files = append(fr.Files, ff)
		}
	}
	return fr, nil
}

func hasFixable(ds []diag.Diagnostic, reg *fix.Registry, fo FixOptions) bool {
	for _, d := range ds {
		if d.Internal || !reg.Fixable(d) {
			continue
		}
		if fo.Mode == fix.ApplyModeRule && d.Code != fo.Rule {
			continue
		}
		return true
	}
	return false
}

// fixFile returns nil when nothing changed.
func fixFile(ctx context.Context, u *FileResult, opts *Options, fo FixOptions) (*FileFix, error) {
	start := time.Now()
	log := opts.logger()
	emit(opts.Progress, Event{File: u.Path, Stage: StageFix, Status: StatusWorking})

	tree := u.Tree
	ds := u.Diagnostics
	if tree == nil {
		// результат из кэша: дерева нет, разбираем заново
		var err error
		if tree, err = parser.ParseFile(ctx, u.File); err != nil {
			return nil, fmt.Errorf("%s: %w", u.Path, err)
		}
	}

	total := &fix.ApplyResult{}
	passes := 0
	for passes < fo.MaxPasses {
		next, r, err := fix.ApplyAll(tree, ds, opts.Fixes, fix.ApplyOptions{Mode: fo.Mode, Rule: fo.Rule})
		for _, s := range r.Skipped {
			opts.Metrics.FixOutcome(s.Code, s.Reason)
			log.Debug("fix skipped", "path", u.Path, "rule", s.Code.ID(), "reason", s.Reason)
		}
		for _, a := range r.Applied {
			opts.Metrics.FixOutcome(a.Code, "applied")
		}
		total.Merge(r)
		if errors.Is(err, fix.ErrNoFixes) || next.Text() == tree.Text() {
			break
		}
		passes++
		tree, err = parser.ParseText(ctx, u.File.ID, u.File.Path, []byte(next.Text()))
		if err != nil {
			return nil, fmt.Errorf("%s: reparse after fixes: %w", u.Path, err)
		}
		ds = engine.RunWith(tree, semantic.Bind(tree, opts.bindOptions()...), opts.Rules,
			engine.Options{Logger: log, Metrics: opts.Metrics})
	}
	if len(total.Applied) == 0 {
		emit(opts.Progress, Event{File: u.Path, Stage: StageFix, Status: StatusDone, Elapsed: time.Since(start)})
		return nil, nil
	}

	ff := &FileFix{
		Path:   u.Path,
		Before: withBOM(u.File, u.File.Content),
		After:  withBOM(u.File, []byte(tree.Text())),
		Passes: passes,
		Result: total,
	}
	total.FileChanges = append(total.FileChanges, fix.FileChange{Path: u.Path, EditCount: editCount(total)})
	if !fo.DryRun {
		if err := writeAtomic(u.Path, ff.After); err != nil {
			return nil, fmt.Errorf("%s: %w", u.Path, err)
		}
		ff.Written = true
		log.Info("fixed file", "path", u.Path, "fixes", len(total.Applied), "passes", passes)
	}
	emit(opts.Progress, Event{File: u.Path, Stage: StageFix, Status: StatusDone, Elapsed: time.Since(start)})
	return ff, nil
}

func editCount(r *fix.ApplyResult) int {
	n := 0
	for _, a := range r.Applied {
		n += a.EditCount
	}
	return n
}

func withBOM(f *source.File, text []byte) []byte {
	if f.Flags&source.FileHadBOM == 0 {
		return text
	}
	out := make([]byte, 0, len(utf8BOM)+len(text))
	return append(append(out, utf8BOM...), text...)
}

// writeAtomic replaces path through a temporary file in the same directory,
// keeping the permission bits of the original.
func writeAtomic(path string, data []byte) (err error) {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Chmod(mode); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
