// Package summary aggregates a card array into distribution counts for
// curation review: risk levels, hazard tiers, quadrants, bioactivity levels,
// and the most frequently fired rationale codes.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/verdantlab/bdst/internal/infrastructure/monitoring/logging"
	"github.com/verdantlab/bdst/pkg/errors"
)

// topRulesLimit caps the rationale leaderboard.
const topRulesLimit = 30

// DefaultOutputPath is where the summary lands when no output path is given.
const DefaultOutputPath = "outputs/plant_cards_summary.json"

// ─────────────────────────────────────────────────────────────────────────────
// Types
// ─────────────────────────────────────────────────────────────────────────────

// RuleCount is one (rationale code, occurrences) pair. It serializes as a
// two-element array so the leaderboard reads as [[code, count], ...].
type RuleCount struct {
	Code  string
	Count int
}

// MarshalJSON renders the pair as [code, count].
func (rc RuleCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{rc.Code, rc.Count})
}

// UnmarshalJSON accepts the same [code, count] form, so written summaries
// read back into the struct.
func (rc *RuleCount) UnmarshalJSON(data []byte) error {
	var pair []any
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("rule count: want [code, count], got %d elements", len(pair))
	}
	code, ok := pair[0].(string)
	if !ok {
		return fmt.Errorf("rule count: code must be a string")
	}
	count, ok := pair[1].(float64)
	if !ok {
		return fmt.Errorf("rule count: count must be a number")
	}
	rc.Code = code
	rc.Count = int(count)
	return nil
}

// Summary is the aggregate view of one card array. Error placeholders count
// toward records_errors and are excluded from every distribution.
type Summary struct {
	RecordsTotal            int            `json:"records_total"`
	RecordsErrors           int            `json:"records_errors"`
	RecordsOK               int            `json:"records_ok"`
	RiskDistribution        map[string]int `json:"risk_distribution"`
	HazardTierDistribution  map[string]int `json:"hazard_tier_distribution"`
	QuadrantDistribution    map[string]int `json:"quadrant_distribution"`
	BioactivityDistribution map[string]int `json:"bioactivity_risk_distribution"`
	TopRules                []RuleCount    `json:"top_rules_triggered"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregation
// ─────────────────────────────────────────────────────────────────────────────

// Summarize walks a loosely-parsed card array. Cards missing a classification
// field count under "UNKNOWN" rather than being dropped.
func Summarize(items []map[string]any) *Summary {
	s := &Summary{
		RecordsTotal:            len(items),
		RiskDistribution:        make(map[string]int),
		HazardTierDistribution:  make(map[string]int),
		QuadrantDistribution:    make(map[string]int),
		BioactivityDistribution: make(map[string]int),
		TopRules:                make([]RuleCount, 0),
	}

	triggers := make(map[string]int)
	for _, item := range items {
		if _, failed := item["error"]; failed {
			s.RecordsErrors++
			continue
		}
		s.RiskDistribution[nestedString(item, "risk_badge", "bdst_risk_level")]++
		s.HazardTierDistribution[nestedString(item, "hazards", "hazard_tier")]++
		s.QuadrantDistribution[nestedString(item, "use_profile", "quadrant")]++
		s.BioactivityDistribution[nestedString(item, "bioactivity_flags", "bioactivity_risk_level")]++

		rationale, _ := item["rationale"].(map[string]any)
		codes, _ := rationale["rules_triggered"].([]any)
		for _, c := range codes {
			if code, ok := c.(string); ok {
				triggers[code]++
			}
		}
	}
	s.RecordsOK = s.RecordsTotal - s.RecordsErrors
	s.TopRules = topRules(triggers, topRulesLimit)
	return s
}

// nestedString digs item[section][key]; anything missing or non-string reads
// as "UNKNOWN".
func nestedString(item map[string]any, section, key string) string {
	obj, _ := item[section].(map[string]any)
	if v, ok := obj[key].(string); ok && v != "" {
		return v
	}
	return "UNKNOWN"
}

// topRules orders codes by count descending, ties by code ascending, so the
// leaderboard is stable across runs.
func topRules(counts map[string]int, limit int) []RuleCount {
	out := make([]RuleCount, 0, len(counts))
	for code, n := range counts {
		out = append(out, RuleCount{Code: code, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service reads a card array file and writes its summary.
type Service struct {
	logger logging.Logger
}

// NewService constructs a Service. logger may be nil.
func NewService(logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{logger: logger}
}

// Run summarizes the card array at inputPath. When outputPath is non-empty
// the summary is also written there as indented JSON, creating parent
// directories as needed.
func (s *Service) Run(ctx context.Context, inputPath, outputPath string) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "summary run canceled")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIOFailure, "read cards file "+inputPath)
	}
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "parse cards file "+inputPath)
	}

	sum := Summarize(items)
	s.logger.Info("cards summarized",
		logging.String("input", inputPath),
		logging.Int("records", sum.RecordsTotal),
		logging.Int("ok", sum.RecordsOK),
		logging.Int("errors", sum.RecordsErrors),
	)

	if outputPath != "" {
		if err := writeSummary(outputPath, sum); err != nil {
			return nil, err
		}
		s.logger.Info("summary written", logging.String("output", outputPath))
	}
	return sum, nil
}

func writeSummary(path string, sum *Summary) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.CodeIOFailure, "create output directory "+dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeIOFailure, "create summary file "+path)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		f.Close()
		return errors.Wrap(err, errors.CodeSerialization, "encode summary to "+path)
	}
	return errors.Wrap(f.Close(), errors.CodeIOFailure, "close summary file "+path)
}
