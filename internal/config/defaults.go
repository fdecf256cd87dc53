// Package config defines all configuration structures for the bdst toolchain.
// No I/O or parsing logic lives here — only plain data types and validation.
package config

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultRulesFile       = "configs/bdst_v1_rules.yaml"
	DefaultTokenRulesFile  = "configs/rules_token_normalization.yaml"
	DefaultHazardRulesFile = "configs/rules_hazard_text_normalization.yaml"

	DefaultBatchWorkers = 4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the tool default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Rules ─────────────────────────────────────────────────────────────────
	if cfg.Rules.RulesFile == "" {
		cfg.Rules.RulesFile = DefaultRulesFile
	}
	if cfg.Rules.TokenRulesFile == "" {
		cfg.Rules.TokenRulesFile = DefaultTokenRulesFile
	}
	if cfg.Rules.HazardRulesFile == "" {
		cfg.Rules.HazardRulesFile = DefaultHazardRulesFile
	}

	// ── Batch ─────────────────────────────────────────────────────────────────
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = DefaultBatchWorkers
	}
	// Limit is an int; 0 is a valid explicit value meaning "no limit", so we
	// cannot distinguish "not set" from "set to 0".  We leave it as-is.

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stderr"}
	}
	if len(cfg.Log.ErrorOutputPaths) == 0 {
		cfg.Log.ErrorOutputPaths = []string{"stderr"}
	}
}
