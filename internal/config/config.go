// Package config defines all configuration structures for the bdst toolchain.
// No I/O or parsing logic lives here — only plain data types and validation.
package config

import (
	"fmt"

	"github.com/verdantlab/bdst/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// RulesConfig locates the three rule documents the risk engine is built from.
// Paths are resolved relative to the working directory unless absolute.
type RulesConfig struct {
	RulesFile       string `mapstructure:"rules_file"`
	TokenRulesFile  string `mapstructure:"token_rules_file"`
	HazardRulesFile string `mapstructure:"hazard_rules_file"`
}

// BatchConfig holds CSV batch-driver tunables.
type BatchConfig struct {
	// Workers bounds the evaluation pool; 1 means sequential.
	Workers int `mapstructure:"workers"`
	// Limit caps the number of data rows processed; 0 means no limit.
	Limit int `mapstructure:"limit"`
	// MetricsFile, when non-empty, receives a Prometheus text-format
	// snapshot of the run's counters on completion.
	MetricsFile string `mapstructure:"metrics_file"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for every bdst command. It is
// populated from a YAML file and/or BDST_* environment variables and is
// treated as immutable after Load returns.
type Config struct {
	Rules RulesConfig    `mapstructure:"rules"`
	Batch BatchConfig    `mapstructure:"batch"`
	Log   logging.Config `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks the configuration for internal consistency and returns a
// descriptive error for the first problem found.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil config")
	}

	// ── Rules ─────────────────────────────────────────────────────────────────
	if c.Rules.RulesFile == "" {
		return fmt.Errorf("config: rules.rules_file must not be empty")
	}
	if c.Rules.TokenRulesFile == "" {
		return fmt.Errorf("config: rules.token_rules_file must not be empty")
	}
	if c.Rules.HazardRulesFile == "" {
		return fmt.Errorf("config: rules.hazard_rules_file must not be empty")
	}

	// ── Batch ─────────────────────────────────────────────────────────────────
	if c.Batch.Workers < 1 {
		return fmt.Errorf("config: batch.workers must be ≥ 1, got %d", c.Batch.Workers)
	}
	if c.Batch.Limit < 0 {
		return fmt.Errorf("config: batch.limit must be ≥ 0, got %d", c.Batch.Limit)
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level must be one of debug|info|warn|error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format must be %q or %q, got %q", "json", "console", c.Log.Format)
	}

	return nil
}
