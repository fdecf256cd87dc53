// Package risk implements the botanical decision-support rule engine: rating
// band classification, use-profile quadrants, hazard keyword tiers,
// bioactivity flags, and the ordered escalation chain that turns a plant
// record into a risk card.
//
// All rule behavior is driven by three YAML documents compiled once at
// startup; evaluation itself performs no I/O and holds no mutable state.
package risk

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/verdantlab/bdst/pkg/errors"
	rtypes "github.com/verdantlab/bdst/pkg/types/risk"
)

// Default identifiers used when the rules document leaves the corresponding
// keys unset.
const (
	defaultUnknownEdibilityBand  = "E_unknown"
	defaultUnknownMedicinalBand  = "M_unknown"
	defaultUnknownQuadrant       = "Q_unknown"
	defaultMedicinalOnlyQuadrant = "Q2_medicinal_only"
	defaultTopMedicinalBand      = "M2"
)

// defaultQuadrantOrder is the evaluation order used when the document does
// not configure one.
var defaultQuadrantOrder = []string{
	"Q1_dual_purpose",
	"Q2_medicinal_only",
	"Q3_food_oriented",
	"Q4_low_use",
}

// Ruleset is the compiled, immutable view of the rules document.
type Ruleset struct {
	EdibilityBands BandTable
	MedicinalBands BandTable
	Quadrants      QuadrantTable

	H2Keywords []string
	H1Keywords []string

	HighRiskTokens     map[string]struct{}
	ModerateRiskTokens map[string]struct{}

	RiskLabels map[rtypes.Level]string

	// MedicinalOnlyQuadrant and TopMedicinalBand parameterize the
	// medicinal-only escalation rule.
	MedicinalOnlyQuadrant string
	TopMedicinalBand      string
}

// ─────────────────────────────────────────────────────────────────────────────
// Document schema
// ─────────────────────────────────────────────────────────────────────────────

// rulesFile is the top level of the rules document.
type rulesFile struct {
	BDSTV1 *rulesDocument `yaml:"bdst_v1"`
}

type rulesDocument struct {
	Normalization struct {
		RatingBands struct {
			Edibility orderedBandSpecs `yaml:"edibility"`
			Medicinal orderedBandSpecs `yaml:"medicinal"`
			Unknown   struct {
				Edibility string `yaml:"edibility"`
				Medicinal string `yaml:"medicinal"`
			} `yaml:"unknown"`
		} `yaml:"rating_bands"`
	} `yaml:"normalization"`

	QuadrantClassification quadrantSection `yaml:"quadrant_classification"`

	HazardExtraction struct {
		Tiers struct {
			H2 *tierSpec `yaml:"H2_high_severity"`
			H1 *tierSpec `yaml:"H1_moderate_severity"`
		} `yaml:"tiers"`
	} `yaml:"hazard_extraction"`

	MedicinalPropertyRisk struct {
		High     tokenListSpec `yaml:"high_risk_bioactivities"`
		Moderate tokenListSpec `yaml:"moderate_risk_bioactivities"`
	} `yaml:"medicinal_property_risk"`

	RiskEngine struct {
		Escalation struct {
			MedicinalOnlyQuadrant string `yaml:"medicinal_only_quadrant"`
			TopMedicinalBand      string `yaml:"top_medicinal_band"`
		} `yaml:"escalation"`
		RiskLevels map[string]labelSpec `yaml:"risk_levels"`
	} `yaml:"risk_engine"`
}

type tierSpec struct {
	Keywords []string `yaml:"keywords"`
}

type tokenListSpec struct {
	Tokens []string `yaml:"tokens"`
}

type labelSpec struct {
	Label string `yaml:"label"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Parsing and compilation
// ─────────────────────────────────────────────────────────────────────────────

// ParseRules decodes and compiles the rules document.  Every structural
// problem surfaces here, before any record is evaluated.
func ParseRules(data []byte) (*Ruleset, error) {
	var doc rulesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigInvalid, "parse rules document")
	}
	if doc.BDSTV1 == nil {
		return nil, errors.New(errors.CodeConfigMissingKey, "rules document: missing bdst_v1 root key")
	}
	return compileRuleset(doc.BDSTV1)
}

func compileRuleset(doc *rulesDocument) (*Ruleset, error) {
	rb := doc.Normalization.RatingBands
	if rb.Edibility == nil {
		return nil, errors.New(errors.CodeConfigMissingKey,
			"rules document: missing normalization.rating_bands.edibility")
	}
	if rb.Medicinal == nil {
		return nil, errors.New(errors.CodeConfigMissingKey,
			"rules document: missing normalization.rating_bands.medicinal")
	}

	edUnknown := rb.Unknown.Edibility
	if edUnknown == "" {
		edUnknown = defaultUnknownEdibilityBand
	}
	medUnknown := rb.Unknown.Medicinal
	if medUnknown == "" {
		medUnknown = defaultUnknownMedicinalBand
	}

	edBands, err := compileBandTable(rb.Edibility, edUnknown)
	if err != nil {
		return nil, err
	}
	medBands, err := compileBandTable(rb.Medicinal, medUnknown)
	if err != nil {
		return nil, err
	}

	if doc.QuadrantClassification.Quadrants == nil {
		return nil, errors.New(errors.CodeConfigMissingKey,
			"rules document: missing quadrant_classification.quadrants")
	}
	quadrants, err := compileQuadrantTable(doc.QuadrantClassification)
	if err != nil {
		return nil, err
	}

	tiers := doc.HazardExtraction.Tiers
	if tiers.H2 == nil || tiers.H2.Keywords == nil {
		return nil, errors.New(errors.CodeConfigMissingKey,
			"rules document: missing hazard_extraction.tiers.H2_high_severity.keywords")
	}
	if tiers.H1 == nil || tiers.H1.Keywords == nil {
		return nil, errors.New(errors.CodeConfigMissingKey,
			"rules document: missing hazard_extraction.tiers.H1_moderate_severity.keywords")
	}

	if doc.MedicinalPropertyRisk.High.Tokens == nil {
		return nil, errors.New(errors.CodeConfigMissingKey,
			"rules document: missing medicinal_property_risk.high_risk_bioactivities.tokens")
	}
	if doc.MedicinalPropertyRisk.Moderate.Tokens == nil {
		return nil, errors.New(errors.CodeConfigMissingKey,
			"rules document: missing medicinal_property_risk.moderate_risk_bioactivities.tokens")
	}

	labels := make(map[rtypes.Level]string, 3)
	for _, level := range rtypes.Levels() {
		spec, ok := doc.RiskEngine.RiskLevels[string(level)]
		if !ok || spec.Label == "" {
			return nil, errors.New(errors.CodeConfigMissingKey,
				fmt.Sprintf("rules document: risk_engine.risk_levels.%s.label is required", level))
		}
		labels[level] = spec.Label
	}

	medOnlyQuadrant := doc.RiskEngine.Escalation.MedicinalOnlyQuadrant
	if medOnlyQuadrant == "" {
		medOnlyQuadrant = defaultMedicinalOnlyQuadrant
	}
	topMedBand := doc.RiskEngine.Escalation.TopMedicinalBand
	if topMedBand == "" {
		topMedBand = defaultTopMedicinalBand
	}

	return &Ruleset{
		EdibilityBands:        edBands,
		MedicinalBands:        medBands,
		Quadrants:             quadrants,
		H2Keywords:            tiers.H2.Keywords,
		H1Keywords:            tiers.H1.Keywords,
		HighRiskTokens:        stringSet(doc.MedicinalPropertyRisk.High.Tokens),
		ModerateRiskTokens:    stringSet(doc.MedicinalPropertyRisk.Moderate.Tokens),
		RiskLabels:            labels,
		MedicinalOnlyQuadrant: medOnlyQuadrant,
		TopMedicinalBand:      topMedBand,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// YAML helpers
// ─────────────────────────────────────────────────────────────────────────────

// eachMappingEntry visits the key/value pairs of a YAML mapping node in
// document order.
func eachMappingEntry(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping at line %d", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func stringSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
