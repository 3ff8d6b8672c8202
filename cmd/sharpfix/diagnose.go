package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sharpfix/internal/diagfmt"
	"sharpfix/internal/driver"
	"sharpfix/internal/version"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <file.cs|directory>",
	Short: "Run the rule catalog on a C# file or directory",
	Long:  `Run every enabled rule on a C# source file or on all *.cs files within a directory and report the findings`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	diagCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	diagCmd.Flags().Bool("disk-cache", false, "reuse diagnostics of unchanged files from the disk cache")
	diagCmd.Flags().String("ui", "auto", "progress view for directories (auto|on|off); defaults to $SHARPFIX_UI or [run].ui")
	diagCmd.Flags().Bool("metrics", false, "print Prometheus metrics of the run to stderr")
	diagCmd.Flags().Bool("with-notes", false, "include related locations in output")
	diagCmd.Flags().Bool("show-internal", false, "include engine diagnostics such as failing rules")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

type diagFlags struct {
	format       string
	jobs         int
	diskCache    bool
	ui           string
	uiSet        bool
	metrics      bool
	withNotes    bool
	showInternal bool
	fullPath     bool
}

func readDiagFlags(cmd *cobra.Command) (diagFlags, error) {
	var f diagFlags
	var err error
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch f.format {
	case "pretty", "short", "json", "sarif":
	default:
		return f, fmt.Errorf("unknown format: %s", f.format)
	}
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.diskCache, err = cmd.Flags().GetBool("disk-cache"); err != nil {
		return f, fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	if f.ui, err = cmd.Flags().GetString("ui"); err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if _, err = readUIMode(f.ui); err != nil {
		return f, fmt.Errorf("--ui: %w", err)
	}
	f.uiSet = cmd.Flags().Changed("ui")
	if f.metrics, err = cmd.Flags().GetBool("metrics"); err != nil {
		return f, fmt.Errorf("failed to get metrics flag: %w", err)
	}
	if f.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return f, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if f.showInternal, err = cmd.Flags().GetBool("show-internal"); err != nil {
		return f, fmt.Errorf("failed to get show-internal flag: %w", err)
	}
	if f.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return f, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	return f, nil
}

// runDiagnose executes "diag": it analyses the target, prints the findings in
// the chosen format and exits with status 1 when any of them is an error.
func runDiagnose(cmd *cobra.Command, args []string) error {
	target := args[0]
	flags, err := readDiagFlags(cmd)
	if err != nil {
		return err
	}
	if err := checkTarget(target); err != nil {
		return err
	}
	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	env, err := newRunEnv(cmd, target)
	if err != nil {
		return err
	}
	env.opts.Jobs = flags.jobs
	if err := env.enableCache(flags.diskCache); err != nil {
		return err
	}
	if flags.metrics {
		env.enableMetrics()
	}
	progressMode, err := resolveUIMode(flags.ui, flags.uiSet, env.cfg)
	if err != nil {
		return err
	}

	var res *driver.Result
	info, _ := os.Stat(target)
	if info != nil && info.IsDir() && flags.format == "pretty" && shouldUseTUI(progressMode, env.quiet, os.Stderr) {
		res, err = runDiagnoseWithUI(cmd.Context(), "sharpfix diag "+target, target, env.opts)
	} else {
		res, err = driver.Diagnose(cmd.Context(), target, env.opts)
	}
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	env.printLoadErrors(stderr, res)
	if err := writeDiagnostics(cmd.OutOrStdout(), env, flags, res, os.Args[1:]); err != nil {
		return err
	}
	if flags.metrics {
		if err := env.opts.Metrics.WriteText(stderr); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	env.printTimings(stderr)
	if !env.quiet && flags.format == "pretty" {
		printDiagSummary(cmd.OutOrStdout(), res)
	}

	if res.Bag.HasErrors() || len(res.LoadErrors) > 0 {
		return exitError{}
	}
	return nil
}

func writeDiagnostics(w io.Writer, env *runEnv, flags diagFlags, res *driver.Result, argv []string) error {
	pathMode := diagfmt.PathModeAuto
	if flags.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch flags.format {
	case "pretty":
		diagfmt.Pretty(w, res.Bag, res.Files, diagfmt.PrettyOpts{
			Color:         env.useColor,
			Context:       2,
			PathMode:      pathMode,
			ShowSecondary: flags.withNotes,
			ShowInternal:  flags.showInternal,
		})
	case "short":
		diagfmt.Short(w, res.Bag, res.Files, flags.withNotes)
	case "json":
		err := diagfmt.JSON(w, res.Bag, res.Files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeSecondary: flags.withNotes,
			IncludeInternal:  flags.showInternal,
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "sarif":
		err := diagfmt.Sarif(w, res.Bag, res.Files, diagfmt.SarifRunMeta{
			ToolName:       appName,
			ToolVersion:    version.Version,
			InvocationArgs: argv,
			Rules:          env.sarifRules(),
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	return nil
}

func printDiagSummary(w io.Writer, res *driver.Result) {
	cached := 0
	for _, u := range res.Units {
		if u.Cached {
			cached++
		}
	}
	fmt.Fprintf(w, "%d file(s) checked", len(res.Units))
	if cached > 0 {
		fmt.Fprintf(w, " (%d from cache)", cached)
	}
	fmt.Fprintf(w, ", %d finding(s)\n", res.Bag.Len())
}
