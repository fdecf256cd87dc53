package risk

import (
	"github.com/verdantlab/bdst/pkg/errors"
)

// QuadrantRule is one use-profile quadrant with its admission condition.
// A band pair matches when both sets contain the respective band.
type QuadrantRule struct {
	ID          string
	Label       string
	EdibilityIn map[string]struct{}
	MedicinalIn map[string]struct{}
}

// QuadrantTable assigns a use-profile quadrant from a pair of band ids.
// Rules are evaluated in configured order; the first whose condition admits
// both bands wins.
type QuadrantTable struct {
	Rules        []QuadrantRule
	Unknown      string
	UnknownLabel string
}

// Classify returns the quadrant id and display label for a band pair.
// Records with any unknown rating band short-circuit to the unknown quadrant,
// as does a pair no rule admits.
func (t *QuadrantTable) Classify(edBand, medBand string, ratingUnknown bool) (string, string) {
	if ratingUnknown {
		return t.Unknown, t.UnknownLabel
	}
	for _, q := range t.Rules {
		if _, ok := q.EdibilityIn[edBand]; !ok {
			continue
		}
		if _, ok := q.MedicinalIn[medBand]; !ok {
			continue
		}
		return q.ID, q.Label
	}
	return t.Unknown, t.UnknownLabel
}

// quadrantSpec is one quadrant entry as authored.
type quadrantSpec struct {
	Label     *string `yaml:"label"`
	Condition struct {
		EdibilityBandIn []string `yaml:"edibility_band_in"`
		MedicinalBandIn []string `yaml:"medicinal_band_in"`
	} `yaml:"condition"`
}

// quadrantSection is the quadrant_classification block of the rules document.
type quadrantSection struct {
	Order           []string                `yaml:"order"`
	UnknownQuadrant string                  `yaml:"unknown_quadrant"`
	Quadrants       map[string]quadrantSpec `yaml:"quadrants"`
}

// compileQuadrantTable resolves the evaluation order and the unknown
// sentinel, validating that every referenced quadrant exists and carries a
// display label.
func compileQuadrantTable(section quadrantSection) (QuadrantTable, error) {
	unknown := section.UnknownQuadrant
	if unknown == "" {
		unknown = defaultUnknownQuadrant
	}
	order := section.Order
	if len(order) == 0 {
		order = defaultQuadrantOrder
	}

	table := QuadrantTable{Rules: make([]QuadrantRule, 0, len(order)), Unknown: unknown}

	uq, ok := section.Quadrants[unknown]
	if !ok {
		return QuadrantTable{}, errors.New(errors.CodeConfigMissingKey,
			"quadrant_classification: unknown quadrant "+unknown+" is not defined")
	}
	if uq.Label == nil || *uq.Label == "" {
		return QuadrantTable{}, errors.New(errors.CodeConfigInvalid,
			"quadrant_classification: quadrant "+unknown+" needs a label")
	}
	table.UnknownLabel = *uq.Label

	for _, id := range order {
		q, ok := section.Quadrants[id]
		if !ok {
			return QuadrantTable{}, errors.New(errors.CodeConfigMissingKey,
				"quadrant_classification: ordered quadrant "+id+" is not defined")
		}
		if q.Label == nil || *q.Label == "" {
			return QuadrantTable{}, errors.New(errors.CodeConfigInvalid,
				"quadrant_classification: quadrant "+id+" needs a label")
		}
		table.Rules = append(table.Rules, QuadrantRule{
			ID:          id,
			Label:       *q.Label,
			EdibilityIn: stringSet(q.Condition.EdibilityBandIn),
			MedicinalIn: stringSet(q.Condition.MedicinalBandIn),
		})
	}
	return table, nil
}
