// Package config defines all configuration structures for the bdst toolchain.
// No I/O or parsing logic lives here — only plain data types and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all bdst settings.
const envPrefix = "BDST"

// newViper builds a pre-configured Viper instance with the tool's standard
// settings: YAML file type, BDST_ env prefix, automatic env binding, and a
// key replacer that maps "." → "_" so that nested keys like "batch.workers"
// resolve to "BDST_BATCH_WORKERS".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads the YAML file at configPath, merges any BDST_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.  It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadOrDiscover looks for a "bdst.yaml" file in the working directory and in
// ./configs, in that order.  When no file is found the configuration is built
// entirely from BDST_* environment variables and defaults, which is enough for
// every command as long as the rule documents sit at their default paths.
func LoadOrDiscover() (*Config, error) {
	v := newViper()
	v.SetConfigName("bdst")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: failed to read discovered config file: %w", err)
		}
		// No file anywhere — env vars and defaults only.
	}

	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}
