package risk

import (
	rtypes "github.com/verdantlab/bdst/pkg/types/risk"
)

// ruleInput carries the derived facts the chain steps read.  It is fixed
// before the chain runs and never mutated by a step.
type ruleInput struct {
	tier             rtypes.HazardTier
	bioLevel         rtypes.BioactivityLevel
	medicinalOnlyTop bool
	uncategorized    bool
	anyRatingUnknown bool
}

// amberFloor reports whether any trigger condition forbids relaxing AMBER to
// GREEN.  It derives from source conditions, never from the rationale list;
// the two could diverge if rules are ever added asymmetrically.
func (in ruleInput) amberFloor() bool {
	return in.tier == rtypes.TierH2 || in.tier == rtypes.TierH1 ||
		in.uncategorized || in.medicinalOnlyTop ||
		in.bioLevel == rtypes.BioactivityHigh || in.anyRatingUnknown
}

// ruleFunc is one pure step of the chain: current (level, rationale) in,
// next (level, rationale) out.
type ruleFunc func(in ruleInput, level rtypes.Level, rationale []string) (rtypes.Level, []string)

// ruleStep pairs a chain step with a stable name for tests and tracing.
type ruleStep struct {
	name string
	fn   ruleFunc
}

// ruleChain is the evaluation order as a first-class artifact.  Steps fold
// left to right; reordering them changes card semantics.
var ruleChain = []ruleStep{
	{"base_risk_from_hazards", ruleBaseRisk},
	{"escalate_high_bioactivity", ruleEscalateHighBioactivity},
	{"escalate_medicinal_only", ruleEscalateMedicinalOnly},
	{"floor_uncategorized_hazards", ruleFloorUncategorizedHazards},
	{"floor_missing_ratings", ruleFloorMissingRatings},
	{"relax_unfloored_amber", ruleRelaxUnflooredAmber},
	{"assert_h2_terminal_red", ruleAssertH2TerminalRed},
	{"assert_unknown_ratings_floor", ruleAssertUnknownRatingsFloor},
}

// ruleBaseRisk sets the starting level from the hazard tier and records the
// single base-risk code every card carries.
func ruleBaseRisk(in ruleInput, _ rtypes.Level, rationale []string) (rtypes.Level, []string) {
	var level rtypes.Level
	switch in.tier {
	case rtypes.TierH2:
		level = rtypes.LevelRed
	case rtypes.TierH1:
		level = rtypes.LevelAmber
	default:
		level = rtypes.LevelGreen
	}
	return level, appendRule(rationale, RuleBaseHazardPrefix+string(in.tier))
}

// ruleEscalateHighBioactivity raises the level one rank, with AMBER as the
// minimum result, when high-risk bioactivity tokens were found.  The code is
// recorded whenever the condition holds, even if the level was already
// pinned at RED.
func ruleEscalateHighBioactivity(in ruleInput, level rtypes.Level, rationale []string) (rtypes.Level, []string) {
	if in.bioLevel != rtypes.BioactivityHigh {
		return level, rationale
	}
	level = rtypes.MaxLevel(level.Escalate(), rtypes.LevelAmber)
	return level, appendRule(rationale, RuleHighBioactivity)
}

// ruleEscalateMedicinalOnly raises the level one rank, with AMBER as the
// minimum result, for medicinal-only records in the top medicinal band.
func ruleEscalateMedicinalOnly(in ruleInput, level rtypes.Level, rationale []string) (rtypes.Level, []string) {
	if !in.medicinalOnlyTop {
		return level, rationale
	}
	level = rtypes.MaxLevel(level.Escalate(), rtypes.LevelAmber)
	return level, appendRule(rationale, RuleMedicinalOnlyTopBand)
}

// ruleFloorUncategorizedHazards keeps the level at AMBER or above when
// hazard text exists but matched no keyword in either tier.
func ruleFloorUncategorizedHazards(in ruleInput, level rtypes.Level, rationale []string) (rtypes.Level, []string) {
	if !in.uncategorized {
		return level, rationale
	}
	return rtypes.MaxLevel(level, rtypes.LevelAmber), appendRule(rationale, RuleUncategorizedHazards)
}

// ruleFloorMissingRatings keeps the level at AMBER or above when either
// rating banded to the unknown sentinel.
func ruleFloorMissingRatings(in ruleInput, level rtypes.Level, rationale []string) (rtypes.Level, []string) {
	if !in.anyRatingUnknown {
		return level, rationale
	}
	return rtypes.MaxLevel(level, rtypes.LevelAmber), appendRule(rationale, RuleMissingRatings)
}

// ruleRelaxUnflooredAmber lowers AMBER back to GREEN when no floor condition
// justifies it.  RED never relaxes.
func ruleRelaxUnflooredAmber(in ruleInput, level rtypes.Level, rationale []string) (rtypes.Level, []string) {
	if level != rtypes.LevelAmber || in.amberFloor() {
		return level, rationale
	}
	return rtypes.LevelGreen, appendRule(rationale, RuleAmberRelaxed)
}

// ruleAssertH2TerminalRed reasserts that an H2 hazard tier is terminal RED,
// whatever the earlier steps decided.
func ruleAssertH2TerminalRed(in ruleInput, level rtypes.Level, rationale []string) (rtypes.Level, []string) {
	if in.tier == rtypes.TierH2 {
		level = rtypes.LevelRed
	}
	return level, rationale
}

// ruleAssertUnknownRatingsFloor reasserts that unknown ratings never end
// below AMBER.
func ruleAssertUnknownRatingsFloor(in ruleInput, level rtypes.Level, rationale []string) (rtypes.Level, []string) {
	if in.anyRatingUnknown {
		level = rtypes.MaxLevel(level, rtypes.LevelAmber)
	}
	return level, rationale
}

// runChain folds the rule chain left to right and returns the final level
// with the accumulated rationale.
func runChain(in ruleInput) (rtypes.Level, []string) {
	level := rtypes.LevelGreen
	rationale := make([]string, 0, len(ruleChain))
	for _, step := range ruleChain {
		level, rationale = step.fn(in, level, rationale)
	}
	return level, rationale
}

// appendRule adds code to the rationale unless it is already present.
func appendRule(codes []string, code string) []string {
	for _, c := range codes {
		if c == code {
			return codes
		}
	}
	return append(codes, code)
}
