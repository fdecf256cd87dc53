package acceptance

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlab/bdst/internal/testutil"
	"github.com/verdantlab/bdst/pkg/errors"
)

// amberInput is a record the fixture ruleset evaluates to an AMBER card:
// dual-purpose quadrant, high bioactivity from "mydriatic", no hazards text.
func amberInput() map[string]any {
	return map[string]any{
		"scientific_name":      "Atropa demo",
		"edibility_rating":     4,
		"medicinal_rating":     2,
		"medicinal_props_text": "mydriatic, tonic",
		"known_hazards_text":   "",
	}
}

// greenInput is a benign record: food-oriented quadrant, no bioactivity,
// no hazards.
func greenInput() map[string]any {
	return map[string]any{
		"scientific_name":  "Rosa demo",
		"edibility_rating": 4,
		"medicinal_rating": 1,
	}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	return NewRunner(testutil.NewEvaluator(t), nil)
}

func TestRunner_Run_PassingCase(t *testing.T) {
	runner := newTestRunner(t)

	suite := &Suite{Tests: []Case{{
		ID:    "T01",
		Title: "amber from bioactivity",
		Input: amberInput(),
		Expected: map[string]any{
			"bdst_risk_level":               "AMBER",
			"hazard_tier":                   "H0",
			"quadrant":                      "Q1_dual_purpose",
			"bioactivity_risk_level":        "High",
			"uncategorized_hazard_notes":    false,
			"must_include_rationale":        []string{"ESC_01_high_risk_bioactivity"},
			"normalized_props_must_include": []string{"mydriatic", "tonic"},
		},
	}}}

	report, err := runner.Run(context.Background(), suite)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	assert.True(t, res.Pass)
	assert.Empty(t, res.Reasons)
	assert.Equal(t, "T01", res.ID)
	assert.Equal(t, "amber from bioactivity", res.Title)
	require.NotNil(t, res.Got)
	assert.Equal(t, "AMBER", string(res.Got.RiskBadge.Level))
}

func TestRunner_Run_RiskLevelMismatch(t *testing.T) {
	runner := newTestRunner(t)

	suite := &Suite{Tests: []Case{{
		ID:       "T01",
		Input:    amberInput(),
		Expected: map[string]any{"bdst_risk_level": "GREEN"},
	}}}

	report, err := runner.Run(context.Background(), suite)
	require.NoError(t, err)

	res := report.Results[0]
	assert.False(t, res.Pass)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, "bdst_risk_level expected=GREEN got=AMBER", res.Reasons[0])
	assert.NotNil(t, res.Got)
}

func TestRunner_Run_EngineExceptionProducesNullGot(t *testing.T) {
	runner := newTestRunner(t)

	suite := &Suite{Tests: []Case{{
		ID:       "T01",
		Input:    map[string]any{},
		Expected: map[string]any{"bdst_risk_level": "GREEN"},
	}}}

	report, err := runner.Run(context.Background(), suite)
	require.NoError(t, err)

	res := report.Results[0]
	assert.False(t, res.Pass)
	require.Len(t, res.Reasons, 1)
	assert.True(t, strings.HasPrefix(res.Reasons[0], "engine_exception:"))
	assert.Contains(t, res.Reasons[0], "missing scientific_name")
	assert.Nil(t, res.Got)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"got":null`)
}

func TestRunner_Run_MissingRationaleReason(t *testing.T) {
	runner := newTestRunner(t)

	suite := &Suite{Tests: []Case{{
		ID:    "T01",
		Input: amberInput(),
		Expected: map[string]any{
			"must_include_rationale": []string{"no_such_code"},
		},
	}}}

	report, err := runner.Run(context.Background(), suite)
	require.NoError(t, err)

	res := report.Results[0]
	assert.False(t, res.Pass)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, "missing_rationale:[no_such_code]", res.Reasons[0])
}

func TestRunner_Run_ForbiddenRationaleReason(t *testing.T) {
	runner := newTestRunner(t)

	suite := &Suite{Tests: []Case{{
		ID:    "T01",
		Input: amberInput(),
		Expected: map[string]any{
			"must_not_include_rationale": []string{"ESC_01_high_risk_bioactivity"},
		},
	}}}

	report, err := runner.Run(context.Background(), suite)
	require.NoError(t, err)

	res := report.Results[0]
	assert.False(t, res.Pass)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, "forbidden_rationale_present:[ESC_01_high_risk_bioactivity]", res.Reasons[0])
}

func TestRunner_Run_MissingNormalizedPropsReason(t *testing.T) {
	runner := newTestRunner(t)

	suite := &Suite{Tests: []Case{{
		ID:    "T01",
		Input: amberInput(),
		Expected: map[string]any{
			"normalized_props_must_include": []string{"mydriatic", "absent_token"},
		},
	}}}

	report, err := runner.Run(context.Background(), suite)
	require.NoError(t, err)

	res := report.Results[0]
	assert.False(t, res.Pass)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, "missing_normalized_props:[absent_token]", res.Reasons[0])
}

func TestRunner_Run_UncategorizedBoolCheck(t *testing.T) {
	runner := newTestRunner(t)

	input := greenInput()
	input["known_hazards_text"] = "strange smell"

	suite := &Suite{Tests: []Case{
		{
			ID:    "T01",
			Input: input,
			Expected: map[string]any{
				"uncategorized_hazard_notes": true,
				"bdst_risk_level":            "AMBER",
			},
		},
		{
			ID:       "T02",
			Input:    input,
			Expected: map[string]any{"uncategorized_hazard_notes": false},
		},
	}}

	report, err := runner.Run(context.Background(), suite)
	require.NoError(t, err)

	assert.True(t, report.Results[0].Pass)
	res := report.Results[1]
	assert.False(t, res.Pass)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, "uncategorized_hazard_notes expected=false got=true", res.Reasons[0])
}

func TestRunner_Run_CollectsMultipleReasons(t *testing.T) {
	runner := newTestRunner(t)

	suite := &Suite{Tests: []Case{{
		ID:    "T01",
		Input: amberInput(),
		Expected: map[string]any{
			"bdst_risk_level":        "GREEN",
			"quadrant":               "Q4_low_use",
			"must_include_rationale": []string{"no_such_code"},
		},
	}}}

	report, err := runner.Run(context.Background(), suite)
	require.NoError(t, err)

	res := report.Results[0]
	assert.False(t, res.Pass)
	require.Len(t, res.Reasons, 3)
	assert.Equal(t, "bdst_risk_level expected=GREEN got=AMBER", res.Reasons[0])
	assert.Equal(t, "quadrant expected=Q4_low_use got=Q1_dual_purpose", res.Reasons[1])
	assert.Equal(t, "missing_rationale:[no_such_code]", res.Reasons[2])
}

func TestRunner_Run_AbsentExpectationsAlwaysPass(t *testing.T) {
	runner := newTestRunner(t)

	suite := &Suite{Tests: []Case{{
		ID:       "T01",
		Input:    amberInput(),
		Expected: map[string]any{},
	}}}

	report, err := runner.Run(context.Background(), suite)
	require.NoError(t, err)
	assert.True(t, report.Results[0].Pass)
	assert.Empty(t, report.Results[0].Reasons)
}

func TestRunner_Run_TallyCounts(t *testing.T) {
	runner := newTestRunner(t)

	suite := &Suite{Tests: []Case{
		{ID: "T01", Input: amberInput(), Expected: map[string]any{"bdst_risk_level": "AMBER"}},
		{ID: "T02", Input: greenInput(), Expected: map[string]any{"bdst_risk_level": "RED"}},
	}}

	report, err := runner.Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, Tally{Total: 2, Passed: 1, Failed: 1}, report.Summary)
}

func TestRunner_Run_EmptySuite(t *testing.T) {
	runner := newTestRunner(t)

	report, err := runner.Run(context.Background(), &Suite{})
	require.NoError(t, err)

	assert.Equal(t, Tally{}, report.Summary)
	assert.NotNil(t, report.Meta)
	assert.NotNil(t, report.Results)

	raw, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"results":[]`)
	assert.Contains(t, string(raw), `"meta":{}`)
}

func TestRunner_Run_CanceledContext(t *testing.T) {
	runner := newTestRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	suite := &Suite{Tests: []Case{{ID: "T01", Input: amberInput()}}}
	_, err := runner.Run(ctx, suite)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInternal))
}

func TestRunner_RunFile_WritesReport(t *testing.T) {
	runner := newTestRunner(t)
	dir := t.TempDir()

	doc := `
bdst_v1_acceptance_tests:
  meta:
    version: "1.0"
  tests:
    - id: T01
      title: amber from bioactivity
      input:
        scientific_name: Atropa demo
        edibility_rating: 4
        medicinal_rating: 2
        medicinal_props_text: mydriatic, tonic
      expected:
        bdst_risk_level: AMBER
        quadrant: Q1_dual_purpose
    - id: T02
      title: record without a name
      input:
        edibility_rating: 4
      expected:
        bdst_risk_level: GREEN
`
	fixtures := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(doc), 0o644))

	out := filepath.Join(dir, "outputs", "nested", "report.json")
	report, err := runner.RunFile(context.Background(), fixtures, out)
	require.NoError(t, err)

	assert.Equal(t, "1.0", report.Meta["version"])
	assert.Equal(t, Tally{Total: 2, Passed: 1, Failed: 1}, report.Summary)
	assert.True(t, report.Results[0].Pass)
	assert.Empty(t, report.Results[0].Reasons)
	assert.False(t, report.Results[1].Pass)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	var parsed Report
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, report.Summary, parsed.Summary)
	require.Len(t, parsed.Results, 2)
	assert.Equal(t, "T01", parsed.Results[0].ID)
	assert.Contains(t, string(raw), `"got": null`)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  "))
}

func TestRunner_RunFile_NoOutputPath(t *testing.T) {
	runner := newTestRunner(t)
	dir := t.TempDir()

	doc := `
tests:
  - id: T01
    input:
      scientific_name: Rosa demo
      edibility_rating: 4
      medicinal_rating: 1
    expected:
      bdst_risk_level: GREEN
`
	fixtures := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(doc), 0o644))

	report, err := runner.RunFile(context.Background(), fixtures, "")
	require.NoError(t, err)
	assert.Equal(t, Tally{Total: 1, Passed: 1}, report.Summary)
}

func TestRunner_RunFile_MissingFixtures(t *testing.T) {
	runner := newTestRunner(t)

	_, err := runner.RunFile(context.Background(), "/nonexistent/fixtures.yaml", "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIOFailure))
}
