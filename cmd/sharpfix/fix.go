package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sharpfix/internal/diag"
	"sharpfix/internal/diagfmt"
	"sharpfix/internal/driver"
	"sharpfix/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.cs|directory>",
	Short: "Apply available fixes to a C# file or directory",
	Long:  "Run the rule catalog, then apply the fixes of the findings according to the chosen strategy and rewrite the files in place.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply every fix, re-analysing until nothing changes")
	fixCmd.Flags().Bool("once", false, "apply the first available fix per file (default)")
	fixCmd.Flags().String("rule", "", "apply only the fixes of the given rule code")
	fixCmd.Flags().Bool("dry-run", false, "print a diff instead of writing files")
	fixCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	fixCmd.Flags().Int("max-passes", driver.DefaultFixPasses, "re-analysis passes per file")
}

func readFixOptions(cmd *cobra.Command) (driver.FixOptions, error) {
	var fo driver.FixOptions
	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fo, err
	}
	applyOnce, err := cmd.Flags().GetBool("once")
	if err != nil {
		return fo, err
	}
	ruleCode, err := cmd.Flags().GetString("rule")
	if err != nil {
		return fo, err
	}
	if ruleCode != "" && (applyAll || applyOnce) {
		return fo, fmt.Errorf("--rule cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fo, fmt.Errorf("--all and --once are mutually exclusive")
	}

	fo.Mode = fix.ApplyModeOnce
	switch {
	case ruleCode != "":
		code, err := diag.ParseCode(ruleCode)
		if err != nil {
			return fo, fmt.Errorf("--rule: %w", err)
		}
		fo.Mode = fix.ApplyModeRule
		fo.Rule = code
	case applyAll:
		fo.Mode = fix.ApplyModeAll
	}
	if fo.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return fo, err
	}
	if fo.MaxPasses, err = cmd.Flags().GetInt("max-passes"); err != nil {
		return fo, err
	}
	return fo, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	target := args[0]
	fo, err := readFixOptions(cmd)
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
	if fo.Mode == fix.ApplyModeRule {
		if _, ok := env.catalog.Get(fo.Rule); !ok {
			return fmt.Errorf("fix: unknown rule %s", fo.Rule)
		}
	}
	if env.opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return err
	}

	res, err := driver.Fix(cmd.Context(), target, env.opts, fo)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}
	out := cmd.OutOrStdout()
	env.printLoadErrors(cmd.ErrOrStderr(), res.Diagnose)
	if fo.DryRun {
		if err := printDiffs(out, res, env.useColor); err != nil {
			return err
		}
	}
	if err := printFixResult(out, res, fo.DryRun, env.quiet); err != nil {
		return err
	}
	env.printTimings(cmd.ErrOrStderr())
	if len(res.Diagnose.LoadErrors) > 0 {
		return exitError{}
	}
	return nil
}

func printDiffs(w io.Writer, res *driver.FixResult, useColor bool) error {
	for _, ff := range res.Files {
		d, err := diagfmt.UnifiedDiff(ff.Path, ff.Before, ff.After, 3)
		if err != nil {
			return fmt.Errorf("diff %s: %w", ff.Path, err)
		}
		if err := diagfmt.WriteDiff(w, d, useColor); err != nil {
			return err
		}
	}
	return nil
}

func printFixResult(w io.Writer, res *driver.FixResult, dryRun, quiet bool) error {
	var printErr error
	if len(res.Files) == 0 {
		if !quiet {
			_, printErr = fmt.Fprintln(w, "No applicable fixes found.")
		}
		return printErr
	}
	if quiet {
		return nil
	}

	verb := "Applied"
	if dryRun {
		verb = "Would apply"
	}
	if _, printErr = fmt.Fprintf(w, "%s %d fix(es):\n", verb, res.Applied()); printErr != nil {
		return printErr
	}
	files := res.Diagnose.Files
	for _, ff := range res.Files {
		for _, item := range ff.Result.Applied {
			start, _ := files.Resolve(item.Primary)
			_, printErr = fmt.Fprintf(w, "  %s:%d:%d %s [%s] (%d edits)\n",
				ff.Path, start.Line, start.Col, item.Title, item.Code.ID(), item.EditCount)
			if printErr != nil {
				return printErr
			}
		}
	}

	if !dryRun {
		if _, printErr = fmt.Fprintln(w, "Updated files:"); printErr != nil {
			return printErr
		}
		for _, ff := range res.Files {
			for _, change := range ff.Result.FileChanges {
				suffix := ""
				if ff.Passes > 1 {
					suffix = fmt.Sprintf(", %d passes", ff.Passes)
				}
				if _, printErr = fmt.Fprintf(w, "  %s (%d edits%s)\n", change.Path, change.EditCount, suffix); printErr != nil {
					return printErr
				}
			}
		}
	}

	var skipped []fix.SkippedFix
	for _, ff := range res.Files {
		skipped = append(skipped, ff.Result.Skipped...)
	}
	if len(skipped) > 0 {
		if _, printErr = fmt.Fprintln(w, "Skipped fixes:"); printErr != nil {
			return printErr
		}
		for _, skip := range skipped {
			title := skip.Title
			if title == "" {
				title = "(untitled)"
			}
			if _, printErr = fmt.Fprintf(w, "  %s [%s]: %s\n", title, skip.Code.ID(), skip.Reason); printErr != nil {
				return printErr
			}
		}
	}
	return nil
}
