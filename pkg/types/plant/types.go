// Package plant defines the input record consumed by the BDST evaluator and
// the loose-map constructor used by fixture and ad-hoc JSON sources.
package plant

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/verdantlab/bdst/pkg/errors"
)

// Record is one botanical record to evaluate. The scientific name is the only
// required field; everything else degrades to unknown/empty classifications.
type Record struct {
	ScientificName      string
	Family              *string
	EdibilityRating     *int
	MedicinalRating     *int
	MedicinalProperties string
	KnownHazards        string
}

// nameKeys are the accepted source-field spellings for the scientific name,
// checked in order. Upstream exports have shipped all three.
var nameKeys = []string{"scientific_name", "Scientific name", "scientific name"}

// FromMap builds a Record from loosely-keyed data such as an acceptance
// fixture input or an ad-hoc JSON object. Ratings parse gracefully: integers,
// floats (truncated toward zero), and numeric strings are accepted; anything
// else is treated as missing. The only fatal condition is an absent or empty
// scientific name.
func FromMap(m map[string]any) (Record, error) {
	var rec Record
	for _, k := range nameKeys {
		if s := stringValue(m[k]); s != "" {
			rec.ScientificName = s
			break
		}
	}
	if rec.ScientificName == "" {
		return Record{}, errors.InvalidRecord("missing scientific_name in plant record")
	}

	if v, ok := m["family"]; ok && v != nil {
		f := stringValue(v)
		rec.Family = &f
	}
	rec.EdibilityRating = ParseRating(m["edibility_rating"])
	rec.MedicinalRating = ParseRating(m["medicinal_rating"])
	rec.MedicinalProperties = stringValue(m["medicinal_props_text"])
	rec.KnownHazards = stringValue(m["known_hazards_text"])
	return rec, nil
}

// Validate reports the invalid-record error for a Record constructed
// directly (for example from a tabular row) without going through FromMap.
func (r Record) Validate() error {
	if r.ScientificName == "" {
		return errors.InvalidRecord("missing scientific_name in plant record")
	}
	return nil
}

// ParseRating converts a loosely-typed rating value to an optional integer.
// nil, unparsable strings, and non-numeric types all map to missing; floats
// and float-formatted strings truncate toward zero, matching the behavior of
// the tabular ingestion path.
func ParseRating(v any) *int {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return intPtr(x)
	case int64:
		return intPtr(int(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return intPtr(int(x))
	case string:
		return parseRatingString(x)
	default:
		return nil
	}
}

func parseRatingString(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return intPtr(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return intPtr(int(f))
	}
	return nil
}

func intPtr(n int) *int {
	return &n
}

// stringValue renders a loose map value as a string; nil renders as "".
func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
