package acceptance

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/verdantlab/bdst/internal/domain/risk"
	"github.com/verdantlab/bdst/internal/infrastructure/monitoring/logging"
	"github.com/verdantlab/bdst/pkg/errors"
	"github.com/verdantlab/bdst/pkg/types/plant"
	rtypes "github.com/verdantlab/bdst/pkg/types/risk"
)

// DefaultReportPath is where the report lands when no output path is given.
const DefaultReportPath = "outputs/acceptance_test_report.json"

// ─────────────────────────────────────────────────────────────────────────────
// Report types
// ─────────────────────────────────────────────────────────────────────────────

// Result is the outcome of one fixture. Input and Expected pass through as
// written in the fixture file; Got is the produced card, or null when the
// engine rejected the input.
type Result struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Pass     bool           `json:"pass"`
	Reasons  []string       `json:"reasons"`
	Input    map[string]any `json:"input"`
	Expected map[string]any `json:"expected"`
	Got      *rtypes.Card   `json:"got"`
}

// Tally counts fixture outcomes.
type Tally struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Report is the full outcome of a suite run.
type Report struct {
	Meta    map[string]any `json:"meta"`
	Summary Tally          `json:"summary"`
	Results []Result       `json:"results"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Runner
// ─────────────────────────────────────────────────────────────────────────────

// Runner executes fixture suites against an evaluator.
type Runner struct {
	evaluator *risk.Evaluator
	logger    logging.Logger
}

// NewRunner constructs a Runner. logger may be nil.
func NewRunner(evaluator *risk.Evaluator, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{evaluator: evaluator, logger: logger}
}

// RunFile loads the fixture file at testsPath, runs it, and, when outputPath
// is non-empty, writes the report there as indented JSON.
func (r *Runner) RunFile(ctx context.Context, testsPath, outputPath string) (*Report, error) {
	suite, err := LoadSuite(testsPath)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := r.logger.With(logging.String("run_id", runID))
	log.Info("acceptance run started",
		logging.String("fixtures", testsPath),
		logging.Int("tests", len(suite.Tests)),
	)

	report, err := r.Run(ctx, suite)
	if err != nil {
		return nil, err
	}

	if outputPath != "" {
		if err := WriteReport(outputPath, report); err != nil {
			return nil, err
		}
	}
	log.Info("acceptance run finished",
		logging.Int("passed", report.Summary.Passed),
		logging.Int("failed", report.Summary.Failed),
	)
	return report, nil
}

// Run executes every fixture in the suite. The only error is context
// cancellation; fixture mismatches are reported, not returned.
func (r *Runner) Run(ctx context.Context, suite *Suite) (*Report, error) {
	report := &Report{
		Meta:    suite.Meta,
		Results: make([]Result, 0, len(suite.Tests)),
	}
	if report.Meta == nil {
		report.Meta = make(map[string]any)
	}

	for _, tc := range suite.Tests {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "acceptance run canceled")
		}
		res := r.runCase(tc)
		report.Results = append(report.Results, res)
		if res.Pass {
			report.Summary.Passed++
		}
	}
	report.Summary.Total = len(report.Results)
	report.Summary.Failed = report.Summary.Total - report.Summary.Passed
	return report, nil
}

// runCase evaluates one fixture and collects every mismatch reason.
func (r *Runner) runCase(tc Case) Result {
	res := Result{
		ID:       tc.ID,
		Title:    tc.Title,
		Reasons:  make([]string, 0),
		Input:    tc.Input,
		Expected: tc.Expected,
	}

	card, err := r.evaluate(tc.Input)
	if err != nil {
		res.Reasons = append(res.Reasons, "engine_exception:"+err.Error())
		return res
	}
	res.Got = card

	pass := true
	check := func(field string, got any) {
		exp, present := tc.Expected[field]
		if !present || exp == nil {
			return
		}
		if fmt.Sprintf("%v", exp) != fmt.Sprintf("%v", got) {
			pass = false
			res.Reasons = append(res.Reasons,
				fmt.Sprintf("%s expected=%v got=%v", field, exp, got))
		}
	}
	check("bdst_risk_level", card.RiskBadge.Level)
	check("hazard_tier", card.Hazards.Tier)
	check("quadrant", card.UseProfile.Quadrant)
	check("bioactivity_risk_level", card.Bioactivity.Level)
	check("uncategorized_hazard_notes", card.Hazards.Uncategorized)

	if include := stringList(tc.Expected["must_include_rationale"]); len(include) > 0 {
		if missing := missingFrom(card.Rationale.RulesTriggered, include); len(missing) > 0 {
			pass = false
			res.Reasons = append(res.Reasons, fmt.Sprintf("missing_rationale:%v", missing))
		}
	}
	if exclude := stringList(tc.Expected["must_not_include_rationale"]); len(exclude) > 0 {
		if present := presentIn(card.Rationale.RulesTriggered, exclude); len(present) > 0 {
			pass = false
			res.Reasons = append(res.Reasons, fmt.Sprintf("forbidden_rationale_present:%v", present))
		}
	}
	if include := stringList(tc.Expected["normalized_props_must_include"]); len(include) > 0 {
		if missing := missingFrom(card.Debug.NormalizedPropsTokens, include); len(missing) > 0 {
			pass = false
			res.Reasons = append(res.Reasons, fmt.Sprintf("missing_normalized_props:%v", missing))
		}
	}

	res.Pass = pass
	return res
}

func (r *Runner) evaluate(input map[string]any) (*rtypes.Card, error) {
	rec, err := plant.FromMap(input)
	if err != nil {
		return nil, err
	}
	return r.evaluator.Evaluate(rec)
}

// missingFrom returns the needles absent from haystack, in needle order.
func missingFrom(haystack, needles []string) []string {
	set := make(map[string]struct{}, len(haystack))
	for _, h := range haystack {
		set[h] = struct{}{}
	}
	var missing []string
	for _, n := range needles {
		if _, ok := set[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// presentIn returns the forbidden entries found in haystack, in forbidden
// order.
func presentIn(haystack, forbidden []string) []string {
	set := make(map[string]struct{}, len(haystack))
	for _, h := range haystack {
		set[h] = struct{}{}
	}
	var present []string
	for _, f := range forbidden {
		if _, ok := set[f]; ok {
			present = append(present, f)
		}
	}
	return present
}

// WriteReport writes the report as indented JSON, creating parent
// directories as needed.
func WriteReport(path string, report *Report) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.CodeIOFailure, "create output directory "+dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeIOFailure, "create report file "+path)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		f.Close()
		return errors.Wrap(err, errors.CodeSerialization, "encode report to "+path)
	}
	return errors.Wrap(f.Close(), errors.CodeIOFailure, "close report file "+path)
}
