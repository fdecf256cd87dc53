// Shared helpers for integration tests. These tests exercise the real
// shipped rule documents under configs/, so a failure here usually means a
// config edit broke the pipeline rather than a code change.
package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verdantlab/bdst/internal/domain/risk"
)

// repoPath resolves a path relative to the repository root.
func repoPath(parts ...string) string {
	return filepath.Join(append([]string{"..", ".."}, parts...)...)
}

// ShippedRulePaths returns the three rule documents shipped under configs/.
func ShippedRulePaths() (rules, tokens, hazards string) {
	return repoPath("configs", "bdst_v1_rules.yaml"),
		repoPath("configs", "rules_token_normalization.yaml"),
		repoPath("configs", "rules_hazard_text_normalization.yaml")
}

// LoadShippedEvaluator compiles the evaluator from the shipped documents.
func LoadShippedEvaluator(t *testing.T) *risk.Evaluator {
	t.Helper()
	rules, tokens, hazards := ShippedRulePaths()
	evaluator, err := risk.LoadEvaluator(rules, tokens, hazards)
	if err != nil {
		t.Fatalf("load shipped rule documents: %v", err)
	}
	return evaluator
}

// WriteFile writes content to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
