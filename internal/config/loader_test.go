package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
rules:
  rules_file: "configs/bdst_v1_rules.yaml"
  token_rules_file: "configs/rules_token_normalization.yaml"
  hazard_rules_file: "configs/rules_hazard_text_normalization.yaml"
batch:
  workers: 2
  limit: 0
log:
  level: "debug"
  format: "console"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "bdst.yaml")
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err)
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "configs/bdst_v1_rules.yaml", cfg.Rules.RulesFile)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load("non_existent_config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "rules: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, `
batch:
  workers: -3
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "batch.workers")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := createTempConfigFile(t, `
log:
  level: "warn"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultRulesFile, cfg.Rules.RulesFile)
	assert.Equal(t, DefaultBatchWorkers, cfg.Batch.Workers)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("BDST_BATCH_WORKERS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Batch.Workers)
}

func TestLoad_EnvOverride_NestedKey(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("BDST_RULES_RULES_FILE", "elsewhere/rules.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere/rules.yaml", cfg.Rules.RulesFile)
}

func TestLoadOrDiscover_NoFileAnywhere(t *testing.T) {
	dir := t.TempDir()
	restoreWorkingDir(t, dir)

	cfg, err := LoadOrDiscover()
	require.NoError(t, err)
	assert.Equal(t, DefaultRulesFile, cfg.Rules.RulesFile)
	assert.Equal(t, DefaultBatchWorkers, cfg.Batch.Workers)
}

func TestLoadOrDiscover_FindsFileInConfigsDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	err := os.WriteFile(filepath.Join(dir, "configs", "bdst.yaml"), []byte(validConfigYAML), 0o644)
	require.NoError(t, err)
	restoreWorkingDir(t, dir)

	cfg, err := LoadOrDiscover()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Equal(t, "console", cfg.Log.Format)
}

// restoreWorkingDir chdirs into dir and restores the previous working
// directory when the test finishes.
func restoreWorkingDir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
