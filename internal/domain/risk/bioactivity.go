package risk

import (
	"sort"

	rtypes "github.com/verdantlab/bdst/pkg/types/risk"
)

// classifyBioactivity intersects canonical property tokens with the high and
// moderate risk token sets.  High wins over moderate; triggers are sorted.
func classifyBioactivity(tokens []string, high, moderate map[string]struct{}) (rtypes.BioactivityLevel, []string) {
	if hits := sortedIntersection(tokens, high); len(hits) > 0 {
		return rtypes.BioactivityHigh, hits
	}
	if hits := sortedIntersection(tokens, moderate); len(hits) > 0 {
		return rtypes.BioactivityModerate, hits
	}
	return rtypes.BioactivityNone, []string{}
}

func sortedIntersection(tokens []string, set map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(tokens))
	hits := make([]string, 0)
	for _, t := range tokens {
		if _, ok := set[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		hits = append(hits, t)
	}
	sort.Strings(hits)
	return hits
}
