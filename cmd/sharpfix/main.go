package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sharpfix/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "sharpfix",
	Short:         "Rule-based C# analyser and rewriter",
	Long:          `sharpfix finds style and maintainability issues in C# sources and applies trivia-preserving fixes`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show (0=unlimited)")
	rootCmd.PersistentFlags().String("config", "", "path to sharpfix.toml (default: discovered from the target)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level on stderr (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to the file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to the file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime trace to the file")
}

// main runs the root command. Exit code 1 means failure or error-level
// diagnostics.
func main() {
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(exitError); !ok {
			printError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// exitError ends the process with status 1 without printing anything more:
// the command already reported what went wrong.
type exitError struct{}

func (exitError) Error() string { return "exit status 1" }

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
