package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sharpfix/internal/diag"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [flags] [directory]",
	Short: "List the rule catalog",
	Long:  "List every known rule with its severity, whether the configuration found from the directory enables it and whether it has a fix.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type ruleEntry struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Enabled  bool   `json:"enabled"`
	Fixable  bool   `json:"fixable"`
}

func runRules(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	env, err := newRunEnv(cmd, dir)
	if err != nil {
		return err
	}

	enabled := make(map[diag.Code]bool, env.opts.Rules.Len())
	for _, code := range env.opts.Rules.Codes() {
		enabled[code] = true
	}
	fixable := make(map[diag.Code]bool)
	for _, code := range env.opts.Fixes.Codes() {
		fixable[code] = true
	}
	entries := make([]ruleEntry, 0, env.catalog.Len())
	for _, r := range env.catalog.Rules() {
		sev := r.Severity
		if enabled[r.Code] {
			sev = env.opts.Rules.Severity(r)
		}
		entries = append(entries, ruleEntry{
			Code:     r.Code.ID(),
			Name:     r.Name,
			Title:    r.Title,
			Category: r.Category,
			Severity: strings.ToLower(sev.String()),
			Enabled:  enabled[r.Code],
			Fixable:  fixable[r.Code],
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "pretty":
		return printRules(cmd.OutOrStdout(), entries, env.useColor)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func printRules(w io.Writer, entries []ruleEntry, useColor bool) error {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	if useColor {
		bold.EnableColor()
		dim.EnableColor()
	} else {
		bold.DisableColor()
		dim.DisableColor()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSEVERITY\tFIX\tNAME\tTITLE")
	for _, e := range entries {
		fixMark := ""
		if e.Fixable {
			fixMark = "yes"
		}
		code := bold.Sprint(e.Code)
		if !e.Enabled {
			code = dim.Sprint(e.Code + " (off)")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", code, e.Severity, fixMark, e.Name, e.Title)
	}
	return tw.Flush()
}
