package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "explicit missing file should fail")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultGranularity, cfg.Extraction.Granularity)
	assert.Equal(t, DefaultMaxCommits, cfg.Extraction.MaxCommits)
	assert.Equal(t, DefaultWorkers, cfg.Extraction.Workers)
	assert.False(t, cfg.Extraction.Sequential)
	assert.Empty(t, cfg.Extraction.Ignore)
	assert.Equal(t, DefaultRiskPattern, cfg.Risk.Pattern)
	assert.Equal(t, map[string]string{"Java": DefaultJavaStrategy}, cfg.Parsers)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faultline.yaml")

	content := `extraction:
  granularity: method
  max_commits: 500
  workers: 3
  ignore: "^generated/"
parsers:
  Java: heuristic
risk:
  pattern: "hotfix"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, GranularityMethod, cfg.Extraction.Granularity)
	assert.Equal(t, 500, cfg.Extraction.MaxCommits)
	assert.Equal(t, 3, cfg.Extraction.Workers)
	assert.Equal(t, "^generated/", cfg.Extraction.Ignore)
	assert.Equal(t, StrategyHeuristic, cfg.Parsers["Java"])
	assert.Equal(t, "hotfix", cfg.Risk.Pattern)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("FAULTLINE_EXTRACTION_GRANULARITY", "method")
	t.Setenv("FAULTLINE_EXTRACTION_WORKERS", "2")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, GranularityMethod, cfg.Extraction.Granularity)
	assert.Equal(t, 2, cfg.Extraction.Workers)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Extraction: ExtractionConfig{Granularity: GranularityFile},
			Parsers:    map[string]string{"Java": StrategyGrammar},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Extraction.Workers = -1 },
			wantErr: ErrInvalidWorkers,
		},
		{
			name:    "negative max commits",
			mutate:  func(c *Config) { c.Extraction.MaxCommits = -1 },
			wantErr: ErrInvalidMaxCommits,
		},
		{
			name:    "unknown granularity",
			mutate:  func(c *Config) { c.Extraction.Granularity = "class" },
			wantErr: ErrInvalidGranularity,
		},
		{
			name:    "bad ignore regexp",
			mutate:  func(c *Config) { c.Extraction.Ignore = "[" },
			wantErr: ErrInvalidIgnore,
		},
		{
			name:    "unknown parser strategy",
			mutate:  func(c *Config) { c.Parsers["Java"] = "antlr" },
			wantErr: ErrInvalidStrategy,
		},
		{
			name:    "bad risk pattern",
			mutate:  func(c *Config) { c.Risk.Pattern = "(" },
			wantErr: ErrInvalidRiskPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
