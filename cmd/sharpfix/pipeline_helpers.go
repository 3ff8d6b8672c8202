package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sharpfix/internal/config"
	"sharpfix/internal/diagfmt"
	"sharpfix/internal/driver"
	"sharpfix/internal/metrics"
	"sharpfix/internal/observ"
	"sharpfix/internal/rule"
	"sharpfix/internal/rules"
)

const appName = "sharpfix"

// runEnv is what every analysing command needs: the resolved configuration,
// the catalog and driver options built from flags.
type runEnv struct {
	cfg      *config.Config
	catalog  *rule.Catalog
	opts     driver.Options
	useColor bool
	quiet    bool
	timings  bool
}

// globalFlags читает persistent-флаги корневой команды.
type globalFlags struct {
	color          string
	quiet          bool
	timings        bool
	maxDiagnostics int
	configPath     string
	logLevel       string
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	var g globalFlags
	var err error
	pf := cmd.Root().PersistentFlags()
	if g.color, err = pf.GetString("color"); err != nil {
		return g, fmt.Errorf("failed to get color flag: %w", err)
	}
	if g.quiet, err = pf.GetBool("quiet"); err != nil {
		return g, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = pf.GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.maxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
		return g, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if g.configPath, err = pf.GetString("config"); err != nil {
		return g, fmt.Errorf("failed to get config flag: %w", err)
	}
	if g.logLevel, err = pf.GetString("log-level"); err != nil {
		return g, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	return g, nil
}

func useColorFor(mode string, f *os.File) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "", "auto":
		return isTerminal(f) && os.Getenv("NO_COLOR") == "", nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
}

func parseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid --log-level value %q (expected debug|info|warn|error)", s)
	}
	return lvl, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// loadConfig uses --config when given, otherwise discovers sharpfix.toml
// upward from target.
func loadConfig(path, target string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(target)
}

// newRunEnv resolves configuration, rule selection and logging for target.
func newRunEnv(cmd *cobra.Command, target string) (*runEnv, error) {
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return nil, err
	}
	useColor, err := useColorFor(g.color, os.Stdout)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), g.logLevel)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(g.configPath, target)
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration", "path", cfg.Path, "root", cfg.Root)

	catalog, fixes, err := rules.Default()
	if err != nil {
		return nil, fmt.Errorf("rule catalog: %w", err)
	}
	sel, err := cfg.Selection()
	if err != nil {
		return nil, err
	}
	set, err := catalog.Select(sel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configName(cfg), err)
	}

	env := &runEnv{
		cfg:      cfg,
		catalog:  catalog,
		useColor: useColor,
		quiet:    g.quiet,
		timings:  g.timings,
		opts: driver.Options{
			Config:         cfg,
			Rules:          set,
			Fixes:          fixes,
			MaxDiagnostics: g.maxDiagnostics,
			Logger:         logger,
		},
	}
	if g.timings {
		env.opts.Timer = observ.NewTimer()
	}
	return env, nil
}

func configName(cfg *config.Config) string {
	if cfg.Path == "" {
		return "configuration"
	}
	return cfg.Path
}

// enableCache opens the disk cache when the flag or [run] cache asks for it.
func (e *runEnv) enableCache(flag bool) error {
	if !flag && !e.cfg.Run.Cache {
		return nil
	}
	var (
		cache *driver.DiskCache
		err   error
	)
	if dir := e.cfg.Run.CacheDir; dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(e.cfg.Root, dir)
		}
		cache, err = driver.OpenDiskCacheAt(dir)
	} else {
		cache, err = driver.OpenDiskCache(appName)
	}
	if err != nil {
		// без кэша можно работать дальше
		e.opts.Logger.Warn("disk cache disabled", "err", err)
		return nil
	}
	e.opts.Logger.Debug("disk cache", "dir", cache.Dir())
	e.opts.Cache = cache
	return nil
}

func (e *runEnv) enableMetrics() *metrics.Metrics {
	if e.opts.Metrics == nil {
		e.opts.Metrics = metrics.New()
	}
	return e.opts.Metrics
}

func (e *runEnv) printTimings(w io.Writer) {
	if !e.timings || e.opts.Timer == nil {
		return
	}
	fmt.Fprint(w, e.opts.Timer.Summary())
}

func (e *runEnv) printLoadErrors(w io.Writer, res *driver.Result) {
	for _, le := range res.LoadErrors {
		printError(w, le)
	}
}

// sarifRules describes the enabled rules for SARIF output.
func (e *runEnv) sarifRules() []diagfmt.SarifRule {
	set := e.opts.Rules
	out := make([]diagfmt.SarifRule, 0, set.Len())
	for _, r := range set.Rules() {
		out = append(out, diagfmt.SarifRule{
			ID:       r.Code.ID(),
			Name:     r.Name,
			Title:    r.Title,
			Category: r.Category,
			Level:    diagfmt.SarifLevel(set.Severity(r)),
		})
	}
	return out
}

// checkTarget rejects paths that do not exist before the pipeline starts.
func checkTarget(target string) error {
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	return nil
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	if f, ok := w.(*os.File); !ok || !isTerminal(f) {
		red.DisableColor()
	}
	fmt.Fprintf(w, "%s %v\n", red.Sprint("error:"), err)
}
