package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/verdantlab/bdst/pkg/errors"
	rtypes "github.com/verdantlab/bdst/pkg/types/risk"
)

func TestParseRules_CompilesFixture(t *testing.T) {
	rs := mustRuleset(t)

	assert.Equal(t, "E_unknown", rs.EdibilityBands.Unknown)
	assert.Equal(t, "M_unknown", rs.MedicinalBands.Unknown)
	require.Len(t, rs.EdibilityBands.Bands, 2)
	assert.Equal(t, "E_low", rs.EdibilityBands.Bands[0].ID)

	require.Len(t, rs.Quadrants.Rules, 4)
	assert.Equal(t, "Q1_dual_purpose", rs.Quadrants.Rules[0].ID)
	assert.Equal(t, "Q_unknown", rs.Quadrants.Unknown)

	assert.Equal(t, []string{"toxic", "poison"}, rs.H2Keywords)
	assert.Equal(t, []string{"irritant", "caution"}, rs.H1Keywords)

	assert.Contains(t, rs.HighRiskTokens, "mydriatic")
	assert.Contains(t, rs.ModerateRiskTokens, "sedative")

	assert.Equal(t, "Low concern", rs.RiskLabels[rtypes.LevelGreen])
	assert.Equal(t, "Caution advised", rs.RiskLabels[rtypes.LevelAmber])
	assert.Equal(t, "High concern", rs.RiskLabels[rtypes.LevelRed])

	assert.Equal(t, "Q2_medicinal_only", rs.MedicinalOnlyQuadrant)
	assert.Equal(t, "M2", rs.TopMedicinalBand)
}

func TestParseRules_MissingRootKey(t *testing.T) {
	_, err := ParseRules([]byte("{}"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigMissingKey))
	assert.Contains(t, err.Error(), "bdst_v1")
}

func TestParseRules_InvalidYAML(t *testing.T) {
	_, err := ParseRules([]byte("bdst_v1: ["))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
}

func TestParseRules_MissingEdibilityBands(t *testing.T) {
	doc := `
bdst_v1:
  normalization:
    rating_bands:
      medicinal:
        M_low: {min: 0, max: 1}
`
	_, err := ParseRules([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigMissingKey))
	assert.Contains(t, err.Error(), "normalization.rating_bands.edibility")
}

func TestParseRules_MissingMedicinalBands(t *testing.T) {
	doc := `
bdst_v1:
  normalization:
    rating_bands:
      edibility:
        E_low: {min: 0, max: 2}
`
	_, err := ParseRules([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigMissingKey))
	assert.Contains(t, err.Error(), "normalization.rating_bands.medicinal")
}

func TestParseRules_MissingQuadrants(t *testing.T) {
	doc := `
bdst_v1:
  normalization:
    rating_bands:
      edibility:
        E_low: {min: 0, max: 2}
      medicinal:
        M_low: {min: 0, max: 1}
`
	_, err := ParseRules([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigMissingKey))
	assert.Contains(t, err.Error(), "quadrant_classification.quadrants")
}

func TestParseRules_MissingTierKeywords(t *testing.T) {
	base := `
bdst_v1:
  normalization:
    rating_bands:
      edibility:
        E_low: {min: 0, max: 2}
      medicinal:
        M_low: {min: 0, max: 1}
  quadrant_classification:
    order: [Q1]
    unknown_quadrant: QU
    quadrants:
      Q1:
        label: One
        condition: {edibility_band_in: [E_low], medicinal_band_in: [M_low]}
      QU:
        label: Unknown
`
	t.Run("H2 absent", func(t *testing.T) {
		_, err := ParseRules([]byte(base))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "H2_high_severity.keywords")
	})

	t.Run("H1 absent", func(t *testing.T) {
		doc := base + `
  hazard_extraction:
    tiers:
      H2_high_severity:
        keywords: [toxic]
`
		_, err := ParseRules([]byte(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "H1_moderate_severity.keywords")
	})
}

func TestParseRules_EmptyKeywordListIsValid(t *testing.T) {
	doc := strings.Replace(testRulesYAML, "keywords: [toxic, poison]", "keywords: []", 1)
	rs, err := ParseRules([]byte(doc))
	require.NoError(t, err)
	assert.NotNil(t, rs.H2Keywords)
	assert.Empty(t, rs.H2Keywords)
}

func TestParseRules_MissingBioactivityTokens(t *testing.T) {
	doc := strings.Replace(testRulesYAML,
		"    high_risk_bioactivities:\n      tokens: [mydriatic, narcotic]\n", "", 1)
	_, err := ParseRules([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigMissingKey))
	assert.Contains(t, err.Error(), "high_risk_bioactivities.tokens")
}

func TestParseRules_MissingRiskLevelLabel(t *testing.T) {
	doc := strings.Replace(testRulesYAML, "      RED: {label: High concern}\n", "", 1)
	_, err := ParseRules([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigMissingKey))
	assert.Contains(t, err.Error(), "risk_levels.RED.label")
}

func TestParseRules_EmptyRiskLevelLabel(t *testing.T) {
	doc := strings.Replace(testRulesYAML,
		"      AMBER: {label: Caution advised}\n", "      AMBER: {label: \"\"}\n", 1)
	_, err := ParseRules([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "risk_levels.AMBER.label")
}

func TestParseRules_DefaultUnknownBandNames(t *testing.T) {
	doc := strings.Replace(testRulesYAML,
		"      unknown:\n        edibility: E_unknown\n        medicinal: M_unknown\n", "", 1)
	rs, err := ParseRules([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "E_unknown", rs.EdibilityBands.Unknown)
	assert.Equal(t, "M_unknown", rs.MedicinalBands.Unknown)
}

func TestParseRules_DefaultEscalationParameters(t *testing.T) {
	doc := strings.Replace(testRulesYAML,
		"    escalation:\n      medicinal_only_quadrant: Q2_medicinal_only\n      top_medicinal_band: M2\n", "", 1)
	rs, err := ParseRules([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Q2_medicinal_only", rs.MedicinalOnlyQuadrant)
	assert.Equal(t, "M2", rs.TopMedicinalBand)
}

func TestParseRules_EscalationOverrides(t *testing.T) {
	doc := strings.Replace(testRulesYAML, "top_medicinal_band: M2", "top_medicinal_band: M_low", 1)
	rs, err := ParseRules([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "M_low", rs.TopMedicinalBand)
}

func TestEachMappingEntry_RejectsNonMapping(t *testing.T) {
	var specs orderedBandSpecs
	err := yaml.Unmarshal([]byte("- a\n- b\n"), &specs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a mapping")
}
