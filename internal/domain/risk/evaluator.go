package risk

import (
	"os"
	"strings"

	"github.com/verdantlab/bdst/pkg/errors"
	"github.com/verdantlab/bdst/pkg/types/plant"
	rtypes "github.com/verdantlab/bdst/pkg/types/risk"
)

// Rationale codes recorded on a card, in the order the chain appends them.
// These strings are part of the audit contract and never change spelling.
const (
	RuleBaseHazardPrefix     = "base_risk_from_hazards:"
	RuleHighBioactivity      = "ESC_01_high_risk_bioactivity"
	RuleMedicinalOnlyTopBand = "ESC_02_medicinal_only_high_medicinal"
	RuleUncategorizedHazards = "HZ_UNCATEGORIZED_MIN_AMBER"
	RuleMissingRatings       = "ESC_04_missing_ratings_uncertainty"
	RuleAmberRelaxed         = "DEESC_01_allow_amber_to_green"
)

// excerptMaxRunes bounds the hazard notes excerpt on a card.
const excerptMaxRunes = 240

// disclaimers is attached verbatim to every card.
var disclaimers = []string{
	"Non-clinical decision support; not medical advice.",
	"Absence of hazard warnings is not proof of safety.",
	"Information is dataset-derived and may be incomplete.",
}

// Evaluator applies the compiled rule documents to plant records.  It holds
// no mutable state and is safe for concurrent use.
type Evaluator struct {
	rules   *Ruleset
	tokens  *TokenNormalizer
	hazards *HazardNormalizer
}

// NewEvaluator assembles an evaluator from compiled rule documents.
func NewEvaluator(rules *Ruleset, tokens *TokenNormalizer, hazards *HazardNormalizer) *Evaluator {
	return &Evaluator{rules: rules, tokens: tokens, hazards: hazards}
}

// LoadEvaluator reads and compiles the three rule documents from disk.
func LoadEvaluator(rulesPath, tokenRulesPath, hazardRulesPath string) (*Evaluator, error) {
	rulesData, err := os.ReadFile(rulesPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigUnreadable, "read rules document "+rulesPath)
	}
	rules, err := ParseRules(rulesData)
	if err != nil {
		return nil, err
	}

	tokenData, err := os.ReadFile(tokenRulesPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigUnreadable, "read token normalization document "+tokenRulesPath)
	}
	tokens, err := ParseTokenRules(tokenData)
	if err != nil {
		return nil, err
	}

	hazardData, err := os.ReadFile(hazardRulesPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigUnreadable, "read hazard normalization document "+hazardRulesPath)
	}
	hazards, err := ParseHazardRules(hazardData)
	if err != nil {
		return nil, err
	}

	return NewEvaluator(rules, tokens, hazards), nil
}

// Ruleset exposes the compiled rules, mainly for tests and tooling.
func (e *Evaluator) Ruleset() *Ruleset {
	return e.rules
}

// Evaluate produces the risk card for one plant record.
//
// Classification runs first: rating bands, quadrant, hazard tier from the
// normalized hazard text, bioactivity from the normalized property tokens.
// The derived facts then feed the rule chain, which owns every level
// transition.  The same inputs always yield the same card.
func (e *Evaluator) Evaluate(rec plant.Record) (*rtypes.Card, error) {
	if rec.ScientificName == "" {
		return nil, errors.InvalidRecord("missing scientific_name in plant record")
	}

	// Rating bands.
	edBand := e.rules.EdibilityBands.Classify(rec.EdibilityRating)
	medBand := e.rules.MedicinalBands.Classify(rec.MedicinalRating)
	anyRatingUnknown := edBand == e.rules.EdibilityBands.Unknown || medBand == e.rules.MedicinalBands.Unknown

	// Quadrant.
	quadrant, quadrantLabel := e.rules.Quadrants.Classify(edBand, medBand, anyRatingUnknown)

	// Hazard text.
	hazardTextPresent := strings.TrimSpace(rec.KnownHazards) != ""
	normalizedHazards := ""
	matchedH2 := []string{}
	matchedH1 := []string{}
	if hazardTextPresent {
		normalizedHazards = e.hazards.Normalize(rec.KnownHazards)
		matchedH2 = FindKeywords(normalizedHazards, e.rules.H2Keywords)
		matchedH1 = FindKeywords(normalizedHazards, e.rules.H1Keywords)
	}

	tier := rtypes.TierH0
	switch {
	case len(matchedH2) > 0:
		tier = rtypes.TierH2
	case len(matchedH1) > 0:
		tier = rtypes.TierH1
	}
	uncategorized := hazardTextPresent && len(matchedH2)+len(matchedH1) == 0

	// Medicinal properties.
	propsTokens := e.tokens.NormalizeToTokens(rec.MedicinalProperties)
	bioLevel, bioTriggers := classifyBioactivity(propsTokens, e.rules.HighRiskTokens, e.rules.ModerateRiskTokens)

	// Rule chain.
	level, rationale := runChain(ruleInput{
		tier:             tier,
		bioLevel:         bioLevel,
		medicinalOnlyTop: quadrant == e.rules.MedicinalOnlyQuadrant && medBand == e.rules.TopMedicinalBand,
		uncategorized:    uncategorized,
		anyRatingUnknown: anyRatingUnknown,
	})

	return &rtypes.Card{
		Identity: rtypes.Identity{
			ScientificName: rec.ScientificName,
			Family:         rec.Family,
		},
		UseProfile: rtypes.UseProfile{
			EdibilityRating: rec.EdibilityRating,
			EdibilityBand:   edBand,
			MedicinalRating: rec.MedicinalRating,
			MedicinalBand:   medBand,
			Quadrant:        quadrant,
			QuadrantLabel:   quadrantLabel,
		},
		RiskBadge: rtypes.Badge{
			Level: level,
			Label: e.rules.RiskLabels[level],
		},
		Rationale: rtypes.Rationale{RulesTriggered: rationale},
		Hazards: rtypes.Hazards{
			TextPresent:    hazardTextPresent,
			Tier:           tier,
			KeywordMatches: rtypes.TierMatches{H2: matchedH2, H1: matchedH1},
			Uncategorized:  uncategorized,
			NotesExcerpt:   Excerpt(rec.KnownHazards, excerptMaxRunes),
		},
		Bioactivity: rtypes.Bioflags{
			Level:    bioLevel,
			Triggers: bioTriggers,
		},
		Debug: rtypes.Debug{
			NormalizedPropsTokens: propsTokens,
			NormalizedHazardsText: normalizedHazards,
		},
		Disclaimers: append([]string(nil), disclaimers...),
	}, nil
}
