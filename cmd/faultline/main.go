// Package main provides the entry point for the faultline CLI tool.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/faultline-sh/faultline/cmd/faultline/commands"
	"github.com/faultline-sh/faultline/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "faultline",
		Short: "Faultline - structural history mining and defect risk scoring",
		Long: `Faultline mines a git repository's history into per-commit structural
change-sets and aggregates time-decayed, bug-fix-weighted risk scores per file.

Commands:
  analyze   Mine a repository and report per-file risk`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRun:  func(_ *cobra.Command, _ []string) { configureLogging() },
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configureLogging() {
	level := slog.LevelInfo

	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "faultline %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
