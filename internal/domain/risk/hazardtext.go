package risk

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verdantlab/bdst/pkg/errors"
)

// hazardStripRe blanks punctuation so only word characters and spaces remain.
var hazardStripRe = regexp.MustCompile(`[^a-z0-9_\s]`)

// spellingRule respells one whole word to its canonical form.
type spellingRule struct {
	re          *regexp.Regexp
	replacement string
}

// HazardNormalizer canonicalizes known-hazard prose so keyword matching sees
// one surface form.  Safe for concurrent use.
type HazardNormalizer struct {
	spellings   []spellingRule
	phraseRules []phraseRule
}

// hazardRulesFile is the top level of the hazard-normalization document.
type hazardRulesFile struct {
	HazardTextNormalization *hazardRulesDocument `yaml:"hazard_text_normalization"`
}

type hazardRulesDocument struct {
	SpellingVariants    orderedSpellings `yaml:"spelling_variants"`
	PhraseNormalization struct {
		Rules []phraseRuleSpec `yaml:"rules"`
	} `yaml:"phrase_normalization"`
}

type spellingPair struct {
	variant   string
	canonical string
}

// orderedSpellings preserves the document order of spelling_variants;
// substitutions apply in exactly that order.
type orderedSpellings []spellingPair

func (s *orderedSpellings) UnmarshalYAML(node *yaml.Node) error {
	out := make(orderedSpellings, 0, len(node.Content)/2)
	err := eachMappingEntry(node, func(key string, value *yaml.Node) error {
		var canonical string
		if err := value.Decode(&canonical); err != nil {
			return fmt.Errorf("spelling_variants.%s: %w", key, err)
		}
		out = append(out, spellingPair{variant: key, canonical: canonical})
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// ParseHazardRules decodes and compiles the hazard-normalization document.
// Spelling-variant regexes compile here, never during evaluation.
func ParseHazardRules(data []byte) (*HazardNormalizer, error) {
	var doc hazardRulesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigInvalid, "parse hazard normalization document")
	}
	if doc.HazardTextNormalization == nil {
		return nil, errors.New(errors.CodeConfigMissingKey,
			"hazard normalization document: missing hazard_text_normalization root key")
	}
	return compileHazardNormalizer(doc.HazardTextNormalization)
}

func compileHazardNormalizer(doc *hazardRulesDocument) (*HazardNormalizer, error) {
	spellings := make([]spellingRule, 0, len(doc.SpellingVariants))
	for _, p := range doc.SpellingVariants {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(fold(p.variant)) + `\b`)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeConfigBadPattern,
				"hazard_text_normalization.spelling_variants: compile pattern for "+p.variant)
		}
		spellings = append(spellings, spellingRule{re: re, replacement: fold(p.canonical)})
	}

	rules := make([]phraseRule, 0, len(doc.PhraseNormalization.Rules))
	for i, r := range doc.PhraseNormalization.Rules {
		if r.Pattern == nil || r.Canonical == nil {
			return nil, errors.New(errors.CodeConfigMissingKey,
				fmt.Sprintf("hazard_text_normalization.phrase_normalization.rules[%d]: pattern and canonical are required", i))
		}
		if *r.Pattern == "" {
			return nil, errors.New(errors.CodeConfigInvalid,
				fmt.Sprintf("hazard_text_normalization.phrase_normalization.rules[%d]: pattern must not be empty", i))
		}
		// Unlike token phrase rules, both sides fold here.
		rules = append(rules, phraseRule{pattern: fold(*r.Pattern), canonical: fold(*r.Canonical)})
	}

	return &HazardNormalizer{spellings: spellings, phraseRules: rules}, nil
}

// Normalize folds, collapses whitespace, de-hyphenates "contra-indicated",
// applies spelling and phrase substitutions, then strips punctuation.
func (n *HazardNormalizer) Normalize(text string) string {
	s := collapseWhitespace(fold(text))

	s = strings.ReplaceAll(s, "contra-indicated", "contraindicated")

	for _, r := range n.spellings {
		s = r.re.ReplaceAllLiteralString(s, r.replacement)
	}
	for _, r := range n.phraseRules {
		if r.pattern == "" {
			continue
		}
		s = strings.ReplaceAll(s, r.pattern, r.canonical)
	}

	s = hazardStripRe.ReplaceAllString(s, " ")
	return collapseWhitespace(s)
}

// FindKeywords returns the keywords whose folded form occurs in text.
// Hits keep their configured spelling and come back de-duplicated and
// lexicographically sorted.
func FindKeywords(text string, keywords []string) []string {
	seen := make(map[string]struct{})
	hits := make([]string, 0)
	for _, kw := range keywords {
		folded := fold(kw)
		if folded == "" {
			continue
		}
		if !strings.Contains(text, folded) {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		hits = append(hits, kw)
	}
	sort.Strings(hits)
	return hits
}
