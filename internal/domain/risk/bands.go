package risk

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/verdantlab/bdst/pkg/errors"
)

// Band is one inclusive rating range of a band table.
type Band struct {
	ID  string
	Min int
	Max int
}

// BandTable classifies integer ratings into named bands.  Entries keep their
// document order and the first matching range wins.
type BandTable struct {
	Bands   []Band
	Unknown string
}

// Classify maps a rating to a band id.  A missing rating, or one that no
// range covers, yields the table's unknown band.
func (t *BandTable) Classify(rating *int) string {
	if rating == nil {
		return t.Unknown
	}
	r := *rating
	for _, b := range t.Bands {
		if b.Min <= r && r <= b.Max {
			return b.ID
		}
	}
	return t.Unknown
}

// bandSpec is one band entry as authored, before compilation.  Min and Max
// stay pointers so a declaration-only entry (no range) is distinguishable
// from min: 0, max: 0.
type bandSpec struct {
	id  string
	min *int
	max *int
}

// orderedBandSpecs decodes a band-table mapping while preserving document
// order, which is behaviorally significant for first-match-wins ranges.
type orderedBandSpecs []bandSpec

func (b *orderedBandSpecs) UnmarshalYAML(node *yaml.Node) error {
	out := make(orderedBandSpecs, 0, len(node.Content)/2)
	err := eachMappingEntry(node, func(key string, value *yaml.Node) error {
		var spec struct {
			Min *int `yaml:"min"`
			Max *int `yaml:"max"`
		}
		if value.Tag != "!!null" {
			if err := value.Decode(&spec); err != nil {
				return fmt.Errorf("band %q: %w", key, err)
			}
		}
		out = append(out, bandSpec{id: key, min: spec.Min, max: spec.Max})
		return nil
	})
	if err != nil {
		return err
	}
	*b = out
	return nil
}

// compileBandTable turns authored band entries into a BandTable.  The unknown
// band and entries without a full range can never match a rating and are
// dropped; an inverted range is a configuration error.
func compileBandTable(specs orderedBandSpecs, unknown string) (BandTable, error) {
	table := BandTable{Bands: make([]Band, 0, len(specs)), Unknown: unknown}
	for _, s := range specs {
		if s.id == unknown {
			continue
		}
		if s.min == nil || s.max == nil {
			continue
		}
		if *s.min > *s.max {
			return BandTable{}, errors.New(errors.CodeConfigInvalid,
				fmt.Sprintf("rating band %s: min %d exceeds max %d", s.id, *s.min, *s.max))
		}
		table.Bands = append(table.Bands, Band{ID: s.id, Min: *s.min, Max: *s.max})
	}
	return table, nil
}
