package risk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testRulesYAML is a small but complete rules document used across the
// package tests: two bands per rating axis, the four use-profile quadrants,
// two keywords per hazard tier, and two tokens per bioactivity set.
const testRulesYAML = `
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

const testTokenRulesYAML = `
token_normalization:
  phrase_rules:
    - pattern: blood pressure
      canonical: blood_pressure
    - pattern: pain relief
      canonical: analgesic
  synonym_map:
    sedative: [calming, relaxant]
    mydriatic: [pupil dilator]
    remedy: [cure-all]
  stoplist:
    tokens: [plant, herb, remedy]
`

const testHazardRulesYAML = `
hazard_text_normalization:
  spelling_variants:
    poisonus: poison
    toxicity: toxic
  phrase_normalization:
    rules:
      - pattern: harmful if eaten
        canonical: toxic
`

func mustRuleset(t *testing.T) *Ruleset {
	t.Helper()
	rs, err := ParseRules([]byte(testRulesYAML))
	require.NoError(t, err)
	return rs
}

func mustTokenNormalizer(t *testing.T) *TokenNormalizer {
	t.Helper()
	tn, err := ParseTokenRules([]byte(testTokenRulesYAML))
	require.NoError(t, err)
	return tn
}

func mustHazardNormalizer(t *testing.T) *HazardNormalizer {
	t.Helper()
	hn, err := ParseHazardRules([]byte(testHazardRulesYAML))
	require.NoError(t, err)
	return hn
}

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	return NewEvaluator(mustRuleset(t), mustTokenNormalizer(t), mustHazardNormalizer(t))
}

func intp(n int) *int {
	return &n
}

func strp(s string) *string {
	return &s
}
