package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verdantlab/bdst/internal/domain/risk"
)

// RulesYAML is a compact but complete rules document mirroring the shipped
// configuration: two bands per rating axis, the four use-profile quadrants,
// two keywords per hazard tier, and two tokens per bioactivity set.
const RulesYAML = `
bdst_v1:
  normalization:
    rating_bands:
      edibility:
        E_low: {min: 0, max: 2}
        E_high: {min: 3, max: 5}
        E_unknown:
      medicinal:
        M_low: {min: 0, max: 1}
        M2: {min: 2, max: 5}
        M_unknown:
      unknown:
        edibility: E_unknown
        medicinal: M_unknown
  quadrant_classification:
    order: [Q1_dual_purpose, Q2_medicinal_only, Q3_food_oriented, Q4_low_use]
    unknown_quadrant: Q_unknown
    quadrants:
      Q1_dual_purpose:
        label: Dual purpose (food and medicine)
        condition: {edibility_band_in: [E_high], medicinal_band_in: [M2]}
      Q2_medicinal_only:
        label: Medicinal focus
        condition: {edibility_band_in: [E_low], medicinal_band_in: [M2]}
      Q3_food_oriented:
        label: Food oriented
        condition: {edibility_band_in: [E_high], medicinal_band_in: [M_low]}
      Q4_low_use:
        label: Low reported use
        condition: {edibility_band_in: [E_low], medicinal_band_in: [M_low]}
      Q_unknown:
        label: Unknown use profile
  hazard_extraction:
    tiers:
      H2_high_severity:
        keywords: [toxic, poison]
      H1_moderate_severity:
        keywords: [irritant, caution]
  medicinal_property_risk:
    high_risk_bioactivities:
      tokens: [mydriatic, narcotic]
    moderate_risk_bioactivities:
      tokens: [tonic, sedative]
  risk_engine:
    escalation:
      medicinal_only_quadrant: Q2_medicinal_only
      top_medicinal_band: M2
    risk_levels:
      GREEN: {label: Low concern}
      AMBER: {label: Caution advised}
      RED: {label: High concern}
`

// TokenRulesYAML is the matching token-normalization fixture.
const TokenRulesYAML = `
token_normalization:
  phrase_rules:
    - pattern: blood pressure
      canonical: blood_pressure
  synonym_map:
    sedative: [calming]
  stoplist:
    tokens: [plant, herb]
`

// HazardRulesYAML is the matching hazard-text fixture.
const HazardRulesYAML = `
hazard_text_normalization:
  spelling_variants:
    poisonus: poison
  phrase_normalization:
    rules:
      - pattern: harmful if eaten
        canonical: toxic
`

// NewEvaluator builds a risk evaluator from the shared fixture documents.
func NewEvaluator(t *testing.T) *risk.Evaluator {
	t.Helper()
	rules, err := risk.ParseRules([]byte(RulesYAML))
	require.NoError(t, err)
	tokens, err := risk.ParseTokenRules([]byte(TokenRulesYAML))
	require.NoError(t, err)
	hazards, err := risk.ParseHazardRules([]byte(HazardRulesYAML))
	require.NoError(t, err)
	return risk.NewEvaluator(rules, tokens, hazards)
}

// WriteRuleFiles drops the three fixture documents into dir and returns their
// paths in (rules, token rules, hazard rules) order.
func WriteRuleFiles(t *testing.T, dir string) (string, string, string) {
	t.Helper()
	rulesPath := filepath.Join(dir, "bdst_v1_rules.yaml")
	tokenPath := filepath.Join(dir, "rules_token_normalization.yaml")
	hazardPath := filepath.Join(dir, "rules_hazard_text_normalization.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(RulesYAML), 0o644))
	require.NoError(t, os.WriteFile(tokenPath, []byte(TokenRulesYAML), 0o644))
	require.NoError(t, os.WriteFile(hazardPath, []byte(HazardRulesYAML), 0o644))
	return rulesPath, tokenPath, hazardPath
}
