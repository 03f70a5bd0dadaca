// Package config defines the tool configuration and how it is loaded.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - Errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/okian/topsis/internal/domain/topsis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Precision is the number of decimals written for scores; -1 writes the
	// shortest exact representation.
	Precision int `koanf:"precision"`

	// DivisionPolicy is "zero" or "error", see topsis.DivisionPolicy.
	DivisionPolicy string `koanf:"division_policy"`

	// Delimiter separates fields in input and output tables. "\t" and "tab"
	// both select a tab.
	Delimiter string `koanf:"delimiter"`

	// ScoreColumn and RankColumn name the derived output columns.
	ScoreColumn string `koanf:"score_column"`
	RankColumn  string `koanf:"rank_column"`

	// MetricsFile, when set, receives the run metrics in Prometheus text format.
	MetricsFile string `koanf:"metrics_file"`
}

// New creates a Config with defaults. Context is accepted first to satisfy the
// project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "warn",
		LogFormat:      "text",
		Precision:      -1,
		DivisionPolicy: string(topsis.DivisionZero),
		Delimiter:      ",",
		ScoreColumn:    "Score",
		RankColumn:     "Rank",
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := topsis.ParseDivisionPolicy(c.DivisionPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	if c.Precision < -1 {
		return fmt.Errorf("%w: precision must be -1 or more, got %d", ErrInvalidConfig, c.Precision)
	}
	if strings.TrimSpace(c.ScoreColumn) == "" || strings.TrimSpace(c.RankColumn) == "" {
		return fmt.Errorf("%w: score_column and rank_column must not be empty", ErrInvalidConfig)
	}
	if c.ScoreColumn == c.RankColumn {
		return fmt.Errorf("%w: score_column and rank_column must differ", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// Policy returns the parsed division policy.
func (c *Config) Policy() topsis.DivisionPolicy {
	p, err := topsis.ParseDivisionPolicy(c.DivisionPolicy)
	if err != nil {
		return topsis.DivisionZero
	}
	return p
}

// DelimiterRune returns the field separator as a single rune.
func (c *Config) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case `\t`, "tab", "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return 0, fmt.Errorf("%w: delimiter must be a single character, got %q", ErrInvalidConfig, c.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("%w: delimiter %q is not allowed", ErrInvalidConfig, c.Delimiter)
	}
	return r, nil
}
