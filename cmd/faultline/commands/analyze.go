package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/faultline-sh/faultline/internal/config"
	"github.com/faultline-sh/faultline/internal/extract"
	"github.com/faultline-sh/faultline/internal/lang"
	"github.com/faultline-sh/faultline/internal/risk"
	"github.com/faultline-sh/faultline/internal/structure"
)

// Output format constants.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatPlot  = "plot"
)

// defaultTopN bounds the table and plot output.
const defaultTopN = 20

// ErrUnknownFormat is returned for --format values other than
// table/json/yaml/plot.
var ErrUnknownFormat = errors.New("unknown output format")

// ErrPlotNeedsOutput is returned when --format plot is used without --output.
var ErrPlotNeedsOutput = errors.New("plot format requires --output")

// AnalyzeCommand holds the flags for the analyze command.
type AnalyzeCommand struct {
	configPath  string
	output      string
	format      string
	granularity string
	ignore      string
	riskPattern string
	maxCommits  int
	workers     int
	topN        int
	sequential  bool
	noColor     bool
}

// NewAnalyzeCommand creates and configures the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &AnalyzeCommand{}

	cobraCmd := &cobra.Command{
		Use:   "analyze <repository>",
		Short: "Mine a repository's history and report per-file defect risk",
		Long: `Analyze walks the repository's commit history, extracts structural
change-sets at the configured granularity, and scores every current file by
time-decayed bug-fix weight.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.Run(cobraCmd, args[0])
		},
	}

	cobraCmd.Flags().StringVarP(&cmd.configPath, "config", "c", "", "config file (default: .faultline.yaml in CWD or $HOME)")
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "output file (default: stdout; required for plot)")
	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", FormatTable, "output format: table, json, yaml, or plot")
	cobraCmd.Flags().StringVarP(&cmd.granularity, "granularity", "g", "", `change-set depth: "file" or "method"`)
	cobraCmd.Flags().StringVar(&cmd.ignore, "ignore", "", "regexp of paths to exclude")
	cobraCmd.Flags().StringVar(&cmd.riskPattern, "risk-pattern", "", "regexp identifying bug-fix commit messages")
	cobraCmd.Flags().IntVar(&cmd.maxCommits, "max-commits", 0, "cap on extracted history (0 = full)")
	cobraCmd.Flags().IntVarP(&cmd.workers, "workers", "w", 0, "extraction workers (0 = one per CPU)")
	cobraCmd.Flags().IntVar(&cmd.topN, "top", defaultTopN, "entries shown in table/plot output (0 = all)")
	cobraCmd.Flags().BoolVar(&cmd.sequential, "sequential", false, "disable concurrent extraction")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "disable colored output")

	return cobraCmd
}

// Run executes the analyze command.
func (c *AnalyzeCommand) Run(cobraCmd *cobra.Command, repoPath string) error {
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}

	c.applyFlagOverrides(cobraCmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	registry, err := buildRegistry(cfg.Parsers)
	if err != nil {
		return err
	}

	classifier, err := lang.NewClassifier(cfg.Extraction.Ignore, registry.Languages())
	if err != nil {
		return err
	}

	analyzer, err := risk.NewAnalyzer(cfg.Risk.Pattern)
	if err != nil {
		return err
	}

	extractor := extract.New(
		extract.GitFactory(repoPath),
		registry,
		classifier,
		extract.Options{
			MaxCommits:  cfg.Extraction.MaxCommits,
			Granularity: extract.Granularity(cfg.Extraction.Granularity),
			Workers:     cfg.Extraction.Workers,
			Sequential:  cfg.Extraction.Sequential,
		},
		slog.Default(),
	)

	started := time.Now()

	repo, err := extractor.Extract(cobraCmd.Context())
	if err != nil {
		return fmt.Errorf("analyze %s: %w", repoPath, err)
	}

	slog.Debug("extraction complete",
		"repository", repoPath,
		"commits", len(repo.Commits),
		"files", len(repo.Files),
		"elapsed", time.Since(started))

	report := NewReport(repoPath, repo, analyzer.Scores(repo), time.Since(started))

	return c.render(report)
}

// applyFlagOverrides lets explicitly set flags win over file and env config.
func (c *AnalyzeCommand) applyFlagOverrides(cobraCmd *cobra.Command, cfg *config.Config) {
	flags := cobraCmd.Flags()

	if flags.Changed("granularity") {
		cfg.Extraction.Granularity = c.granularity
	}

	if flags.Changed("ignore") {
		cfg.Extraction.Ignore = c.ignore
	}

	if flags.Changed("max-commits") {
		cfg.Extraction.MaxCommits = c.maxCommits
	}

	if flags.Changed("workers") {
		cfg.Extraction.Workers = c.workers
	}

	if flags.Changed("sequential") {
		cfg.Extraction.Sequential = c.sequential
	}

	if flags.Changed("risk-pattern") {
		cfg.Risk.Pattern = c.riskPattern
	}
}

// buildRegistry instantiates the configured parser per language.
func buildRegistry(parsers map[string]string) (*structure.Registry, error) {
	registry := structure.NewRegistry()

	for language, strategy := range parsers {
		parser, err := structure.NewParser(language, structure.Strategy(strategy))
		if err != nil {
			return nil, fmt.Errorf("configure %s parser: %w", language, err)
		}

		registry.Register(language, parser)
	}

	return registry, nil
}

// render writes the report in the requested format.
func (c *AnalyzeCommand) render(report *Report) error {
	switch c.format {
	case FormatTable:
		writer, closeFn, err := c.outputWriter()
		if err != nil {
			return err
		}
		defer closeFn()

		return renderTable(writer, report, c.topN, c.noColor)
	case FormatJSON:
		writer, closeFn, err := c.outputWriter()
		if err != nil {
			return err
		}
		defer closeFn()

		return renderJSON(writer, report)
	case FormatYAML:
		writer, closeFn, err := c.outputWriter()
		if err != nil {
			return err
		}
		defer closeFn()

		return renderYAML(writer, report)
	case FormatPlot:
		if c.output == "" {
			return ErrPlotNeedsOutput
		}

		return renderPlot(c.output, report, c.topN)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, c.format)
	}
}

// outputWriter opens the --output file, defaulting to stdout.
func (c *AnalyzeCommand) outputWriter() (*os.File, func(), error) {
	if c.output == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(c.output)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}

	return file, func() { _ = file.Close() }, nil
}
