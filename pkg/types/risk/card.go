package risk

// Card is the structured output of one evaluation. Field names and nesting
// are stable: downstream curation tooling and the acceptance fixtures match
// on the exact JSON keys, so list-valued fields must serialize as [] rather
// than null.
type Card struct {
	Identity    Identity   `json:"identity"`
	UseProfile  UseProfile `json:"use_profile"`
	RiskBadge   Badge      `json:"risk_badge"`
	Rationale   Rationale  `json:"rationale"`
	Hazards     Hazards    `json:"hazards"`
	Bioactivity Bioflags   `json:"bioactivity_flags"`
	Debug       Debug      `json:"debug"`
	Disclaimers []string   `json:"uncertainty_and_disclaimer"`
}

// Identity names the evaluated plant. The scientific name is a case-sensitive
// pass-through from the source record.
type Identity struct {
	ScientificName string  `json:"scientific_name"`
	Family         *string `json:"family"`
}

// UseProfile carries the banded classification of the record's ratings.
// Missing ratings serialize as null.
type UseProfile struct {
	EdibilityRating *int   `json:"edibility_rating"`
	EdibilityBand   string `json:"edibility_band"`
	MedicinalRating *int   `json:"medicinal_rating"`
	MedicinalBand   string `json:"medicinal_band"`
	Quadrant        string `json:"quadrant"`
	QuadrantLabel   string `json:"quadrant_label"`
}

// Badge is the final risk level with its configured display label.
type Badge struct {
	Level Level  `json:"bdst_risk_level"`
	Label string `json:"risk_label"`
}

// Rationale is the audit trail: one code per rule that fired, in evaluation
// order, duplicates forbidden.
type Rationale struct {
	RulesTriggered []string `json:"rules_triggered"`
}

// Hazards details the hazard-text analysis behind the tier decision.
type Hazards struct {
	TextPresent    bool        `json:"hazard_text_present"`
	Tier           HazardTier  `json:"hazard_tier"`
	KeywordMatches TierMatches `json:"hazard_keyword_matches"`
	Uncategorized  bool        `json:"uncategorized_hazard_notes"`
	NotesExcerpt   string      `json:"hazard_notes_excerpt"`
}

// TierMatches lists the matched keywords per tier, deduplicated and sorted.
type TierMatches struct {
	H2 []string `json:"H2"`
	H1 []string `json:"H1"`
}

// Bioflags reports the bioactivity contribution from property tokens.
type Bioflags struct {
	Level    BioactivityLevel `json:"bioactivity_risk_level"`
	Triggers []string         `json:"bioactivity_triggers"`
}

// Debug exposes the intermediate normalized forms for fixture checks and
// curation review. Never shown to end users.
type Debug struct {
	NormalizedPropsTokens []string `json:"normalized_props_tokens"`
	NormalizedHazardsText string   `json:"normalized_hazards_text"`
}
