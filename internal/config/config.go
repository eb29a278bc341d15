// Package config loads and validates faultline settings from file,
// environment and defaults.
package config

import (
	"errors"
	"fmt"
	"regexp"
)

// Granularity values accepted by extraction.granularity.
const (
	GranularityFile   = "file"
	GranularityMethod = "method"
)

// Parser strategy values accepted per language.
const (
	StrategyHeuristic = "heuristic"
	StrategyGrammar   = "grammar"
)

// Defaults applied when neither file nor environment sets a key.
const (
	// DefaultGranularity keeps extraction at file level; method-level detail
	// is opt-in.
	DefaultGranularity = GranularityFile
	// DefaultWorkers of 0 means one worker per CPU.
	DefaultWorkers = 0
	// DefaultMaxCommits of 0 extracts the full history.
	DefaultMaxCommits = 0
	// DefaultRiskPattern is the bug-fix commit message heuristic.
	DefaultRiskPattern = "bug|fix"
	// DefaultJavaStrategy selects the grammar parser for Java sources.
	DefaultJavaStrategy = StrategyGrammar
)

// Config is the top-level configuration struct for faultline.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Extraction ExtractionConfig  `mapstructure:"extraction"`
	Parsers    map[string]string `mapstructure:"parsers"`
	Risk       RiskConfig        `mapstructure:"risk"`
}

// ExtractionConfig holds history extraction knobs.
type ExtractionConfig struct {
	// Ignore is a regexp; matching paths are excluded from extraction.
	Ignore string `mapstructure:"ignore"`
	// MaxCommits caps the extracted history when positive.
	MaxCommits int `mapstructure:"max_commits"`
	// Granularity is "file" or "method".
	Granularity string `mapstructure:"granularity"`
	// Workers sizes the extraction pool; 0 means one per CPU.
	Workers int `mapstructure:"workers"`
	// Sequential disables the concurrent path.
	Sequential bool `mapstructure:"sequential"`
}

// RiskConfig holds risk scoring settings.
type RiskConfig struct {
	// Pattern is the case-insensitive regexp identifying bug-fix commits.
	Pattern string `mapstructure:"pattern"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("extraction.workers must be non-negative")
	// ErrInvalidMaxCommits indicates the commit cap is negative.
	ErrInvalidMaxCommits = errors.New("extraction.max_commits must be non-negative")
	// ErrInvalidGranularity indicates an unknown granularity value.
	ErrInvalidGranularity = errors.New(`extraction.granularity must be "file" or "method"`)
	// ErrInvalidIgnore indicates the ignore pattern does not compile.
	ErrInvalidIgnore = errors.New("extraction.ignore is not a valid regexp")
	// ErrInvalidStrategy indicates an unknown parser strategy value.
	ErrInvalidStrategy = errors.New(`parser strategy must be "heuristic" or "grammar"`)
	// ErrInvalidRiskPattern indicates the risk pattern does not compile.
	ErrInvalidRiskPattern = errors.New("risk.pattern is not a valid regexp")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	extractionErr := c.validateExtraction()
	if extractionErr != nil {
		return extractionErr
	}

	for language, strategy := range c.Parsers {
		if strategy != StrategyHeuristic && strategy != StrategyGrammar {
			return fmt.Errorf("%w: %s=%s", ErrInvalidStrategy, language, strategy)
		}
	}

	if c.Risk.Pattern != "" {
		if _, err := regexp.Compile(c.Risk.Pattern); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRiskPattern, err)
		}
	}

	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Extraction.MaxCommits < 0 {
		return ErrInvalidMaxCommits
	}

	if c.Extraction.Granularity != GranularityFile && c.Extraction.Granularity != GranularityMethod {
		return fmt.Errorf("%w: %q", ErrInvalidGranularity, c.Extraction.Granularity)
	}

	if c.Extraction.Ignore != "" {
		if _, err := regexp.Compile(c.Extraction.Ignore); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidIgnore, err)
		}
	}

	return nil
}
