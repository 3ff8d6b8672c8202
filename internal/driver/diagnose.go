// Package driver runs the analysis pipeline over files on disk: discovery,
// loading, parse, bind, rule walk, caching and fix application.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"sharpfix/internal/config"
	"sharpfix/internal/diag"
	"sharpfix/internal/engine"
	"sharpfix/internal/fix"
	"sharpfix/internal/metrics"
	"sharpfix/internal/observ"
	"sharpfix/internal/parser"
	"sharpfix/internal/rule"
	"sharpfix/internal/semantic"
	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
	"sharpfix/internal/version"
)

// ErrNoRules is returned when the options carry no rule set.
var ErrNoRules = errors.New("driver: no rules selected")

// Options configure Diagnose and Fix.
type Options struct {
	Config         *config.Config // nil: discovered from the target
	Rules          *rule.Set
	Fixes          *fix.Registry // required by Fix only
	Jobs           int           // 0: config, then GOMAXPROCS
	Cache          *DiskCache    // nil disables caching
	MaxDiagnostics int           // 0: unlimited
	Bind           []semantic.Option
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Progress       ProgressSink
	Timer          *observ.Timer
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o *Options) jobs(n int) int {
	jobs := o.Jobs
	if jobs <= 0 && o.Config != nil {
		jobs = o.Config.Run.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

func (o *Options) bindOptions() []semantic.Option {
	if len(o.Bind) == 0 {
		return []semantic.Option{semantic.WithImplicitUsings(semantic.DefaultImplicitUsings...)}
	}
	return o.Bind
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path        string
	File        *source.File
	Tree        *syntax.Tree // nil when served from the cache
	Diagnostics []diag.Diagnostic
	Cached      bool
	Elapsed     time.Duration
}

// LoadError is a file that could not be read.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

// Result is the outcome of Diagnose.
type Result struct {
	Files      *source.FileSet
	Units      []*FileResult // in discovery order
	Bag        *diag.Bag     // every diagnostic, sorted
	LoadErrors []LoadError
}

// Diagnose analyses target, a .cs file or a directory.
func Diagnose(ctx context.Context, target string, opts Options) (*Result, error) {
	if opts.Rules == nil {
		return nil, ErrNoRules
	}
	log := opts.logger()
	if opts.Config == nil {
		cfg, err := config.Discover(target)
		if err != nil {
			return nil, err
		}
		opts.Config = cfg
	}

	idx := opts.Timer.Begin("discover")
	paths, err := Discover(target, opts.Config)
	opts.Timer.End(idx, fmt.Sprintf("%d files", len(paths)))
	if err != nil {
		return nil, err
	}
	log.Debug("discovered files", "target", target, "count", len(paths), "config", opts.Config.Path)

	res := &Result{Files: source.NewFileSetWithBase(baseDir(target, opts.Config))}
	idx = opts.Timer.Begin("load")
	files := make([]*source.File, 0, len(paths))
	for _, p := range paths {
		emit(opts.Progress, Event{File: p, Stage: StageLoad, Status: StatusQueued})
		id, err := res.Files.Load(p)
		if err != nil {
			log.Warn("cannot load file", "path", p, "err", err)
			res.LoadErrors = append(res.LoadErrors, LoadError{Path: p, Err: err})
			emit(opts.Progress, Event{File: p, Stage: StageLoad, Status: StatusError, Err: err})
			continue
		}
		files = append(files, res.Files.Get(id))
	}
	opts.Timer.End(idx, "")

	idx = opts.Timer.Begin("analyze")
	res.Units, err = analyzeFiles(ctx, files, &opts)
	opts.Timer.End(idx, "")
	if err != nil {
		return nil, err
	}

	var all []diag.Diagnostic
	for _, u := range res.Units {
		all = append(all, u.Diagnostics...)
	}
	// лимит режет уже отсортированный список
	diag.SortDiagnostics(all)
	res.Bag = diag.NewBag(opts.MaxDiagnostics)
	res.Bag.AddAll(all)
	return res, nil
}

func baseDir(target string, cfg *config.Config) string {
	if cfg != nil && cfg.Root != "" {
		return cfg.Root
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return ""
	}
	return abs
}

// analyzeFiles прогоняет файлы на пуле воркеров; индексы уникальны для каждой
// горутины, мьютекс не нужен.
func analyzeFiles(ctx context.Context, files []*source.File, opts *Options) ([]*FileResult, error) {
	out := make([]*FileResult, len(files))
	if len(files) == 0 {
		return out, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(files)))
	for i, f := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			r, err := analyzeFile(gctx, f, opts)
			if err != nil {
				emit(opts.Progress, Event{File: f.Path, Stage: StageAnalyze, Status: StatusError, Err: err})
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func analyzeFile(ctx context.Context, f *source.File, opts *Options) (*FileResult, error) {
	start := time.Now()
	log := opts.logger()
	fingerprint := opts.Rules.Fingerprint()
	key := cacheKey(f.Hash, fingerprint, version.Version)

	if opts.Cache != nil {
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			log.Debug("cache read failed", "path", f.Path, "err", err)
		}
		if hit && payload.ContentHash == Digest(f.Hash) && payload.Fingerprint == fingerprint {
			elapsed := time.Since(start)
			emit(opts.Progress, Event{File: f.Path, Stage: StageAnalyze, Status: StatusCached, Elapsed: elapsed})
			return &FileResult{
				Path:        f.Path,
				File:        f,
				Diagnostics: fromDiskPayload(&payload, f.ID),
				Cached:      true,
				Elapsed:     elapsed,
			}, nil
		}
	}

	emit(opts.Progress, Event{File: f.Path, Stage: StageParse, Status: StatusWorking})
	t0 := time.Now()
	tree, err := parser.ParseFile(ctx, f)
	opts.Timer.Add("parse", time.Since(t0))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}

	emit(opts.Progress, Event{File: f.Path, Stage: StageAnalyze, Status: StatusWorking})
	t0 = time.Now()
	b := semantic.Bind(tree, opts.bindOptions()...)
	opts.Timer.Add("bind", time.Since(t0))

	t0 = time.Now()
	ds := engine.RunWith(tree, b, opts.Rules, engine.Options{Logger: log, Metrics: opts.Metrics})
	opts.Timer.Add("rules", time.Since(t0))
	if tree.HasErrors() {
		bag := diag.NewBag(0)
		bag.AddAll(ds)
		reportParseIncomplete(diag.BagReporter{Bag: bag}, tree)
		bag.Sort()
		ds = bag.Items()
	}

	if opts.Cache != nil {
		if payload, ok := toDiskPayload(f, fingerprint, ds); ok {
			if err := opts.Cache.Put(key, payload); err != nil {
				log.Debug("cache write failed", "path", f.Path, "err", err)
			}
		}
	}

	elapsed := time.Since(start)
	opts.Metrics.FileAnalyzed(elapsed)
	emit(opts.Progress, Event{File: f.Path, Stage: StageAnalyze, Status: StatusDone, Elapsed: elapsed})
	return &FileResult{Path: f.Path, File: f, Tree: tree, Diagnostics: ds, Elapsed: elapsed}, nil
}

// reportParseIncomplete reports the first recovered region of tree. Rules
// still run on such trees: error nodes are opaque to them.
func reportParseIncomplete(r diag.Reporter, tree *syntax.Tree) {
	sp := tree.Span(tree.Root())
	if errs := tree.Descendants(tree.Root(), syntax.KindError); len(errs) > 0 {
		sp = tree.Span(errs[0])
	}
	diag.ReportInfo(r, diag.ParseIncomplete, sp,
		"source could not be parsed completely; findings in this file may be incomplete").Emit()
}
