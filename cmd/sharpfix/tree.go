package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sharpfix/internal/diagfmt"
	"sharpfix/internal/parser"
	"sharpfix/internal/source"
)

var treeCmd = &cobra.Command{
	Use:   "tree [flags] <file.cs>",
	Short: "Dump the syntax tree of a C# file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

func init() {
	treeCmd.Flags().Bool("json", false, "emit the tree as JSON")
	treeCmd.Flags().Bool("trivia", false, "show leading and trailing trivia of tokens")
	treeCmd.Flags().Int("depth", 0, "maximum depth to print (0=unlimited)")
}

func runTree(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	trivia, err := cmd.Flags().GetBool("trivia")
	if err != nil {
		return err
	}
	depth, err := cmd.Flags().GetInt("depth")
	if err != nil {
		return err
	}

	fs := source.NewFileSet()
	id, err := fs.Load(args[0])
	if err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	tree, err := parser.ParseFile(cmd.Context(), fs.Get(id))
	if err != nil {
		return fmt.Errorf("tree: %w", err)
	}

	opts := diagfmt.TreeOpts{ShowTrivia: trivia, MaxDepth: depth}
	if asJSON {
		return diagfmt.FormatTreeJSON(cmd.OutOrStdout(), tree, opts)
	}
	if err := diagfmt.FormatTreePretty(cmd.OutOrStdout(), tree, fs, opts); err != nil {
		return err
	}
	if tree.HasErrors() {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: the file contains syntax errors; ERROR nodes are shown in place")
	}
	return nil
}
