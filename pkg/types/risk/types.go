// Package risk defines the public vocabulary of the BDST classifier: risk
// levels with their total order, hazard tiers, bioactivity levels, and the
// risk-card DTO emitted for every evaluated record.
package risk

// Level is the three-value risk badge assigned to a card.
type Level string

const (
	LevelGreen Level = "GREEN"
	LevelAmber Level = "AMBER"
	LevelRed   Level = "RED"
)

// levelRank fixes the total order GREEN < AMBER < RED. It is constructed once
// at process start and never recomputed.
var levelRank = map[Level]int{
	LevelGreen: 0,
	LevelAmber: 1,
	LevelRed:   2,
}

// levelByRank is the inverse of levelRank.
var levelByRank = map[int]Level{
	0: LevelGreen,
	1: LevelAmber,
	2: LevelRed,
}

// Rank returns the position of l in the GREEN < AMBER < RED order.
// Unknown values rank as GREEN.
func (l Level) Rank() int {
	return levelRank[l]
}

// Valid reports whether l is one of the three defined levels.
func (l Level) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// Escalate returns the level one rank above l, clamped at RED.
func (l Level) Escalate() Level {
	r := levelRank[l] + 1
	if r > levelRank[LevelRed] {
		r = levelRank[LevelRed]
	}
	return levelByRank[r]
}

// MaxLevel returns whichever of a, b has the higher rank; ties return a.
func MaxLevel(a, b Level) Level {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// Levels returns the three levels in ascending rank order.
func Levels() []Level {
	return []Level{LevelGreen, LevelAmber, LevelRed}
}

// HazardTier is the severity class derived from keyword matches in hazard
// text. TierH2 is highest severity and forces a terminal RED.
type HazardTier string

const (
	TierH0 HazardTier = "H0"
	TierH1 HazardTier = "H1"
	TierH2 HazardTier = "H2"
)

// BioactivityLevel is the risk contribution from medicinal-property tokens
// matching the configured high/moderate-risk token sets.
type BioactivityLevel string

const (
	BioactivityNone     BioactivityLevel = "None"
	BioactivityModerate BioactivityLevel = "Moderate"
	BioactivityHigh     BioactivityLevel = "High"
)
