package risk

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verdantlab/bdst/pkg/errors"
)

var (
	// tokenSeparatorRe rewrites list punctuation to commas before splitting.
	tokenSeparatorRe = regexp.MustCompile(`[;/|•]+`)
	// tokenStripRe blanks every character that cannot appear in a token.
	tokenStripRe = regexp.MustCompile(`[^a-z0-9_,\-\s]`)
)

// phraseRule rewrites one substring to a canonical form.
type phraseRule struct {
	pattern   string
	canonical string
}

// TokenNormalizer reduces free-form medicinal property prose to an ordered,
// de-duplicated list of canonical tokens.  Safe for concurrent use.
type TokenNormalizer struct {
	phraseRules   []phraseRule
	synonymLookup map[string]string
	stopset       map[string]struct{}
}

// tokenRulesFile is the top level of the token-normalization document.
type tokenRulesFile struct {
	TokenNormalization *tokenRulesDocument `yaml:"token_normalization"`
}

type tokenRulesDocument struct {
	PhraseRules []phraseRuleSpec `yaml:"phrase_rules"`
	SynonymMap  orderedSynonyms  `yaml:"synonym_map"`
	Stoplist    struct {
		Tokens []string `yaml:"tokens"`
	} `yaml:"stoplist"`
}

// phraseRuleSpec keeps both fields as pointers so a missing key is
// distinguishable from an empty string.
type phraseRuleSpec struct {
	Pattern   *string `yaml:"pattern"`
	Canonical *string `yaml:"canonical"`
}

type synonymEntry struct {
	canonical string
	variants  []string
}

// orderedSynonyms preserves the document order of synonym_map so that the
// later entry wins when two canonicals claim the same variant.
type orderedSynonyms []synonymEntry

func (s *orderedSynonyms) UnmarshalYAML(node *yaml.Node) error {
	out := make(orderedSynonyms, 0, len(node.Content)/2)
	err := eachMappingEntry(node, func(key string, value *yaml.Node) error {
		var variants []string
		if err := value.Decode(&variants); err != nil {
			return fmt.Errorf("synonym_map.%s: %w", key, err)
		}
		out = append(out, synonymEntry{canonical: key, variants: variants})
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// ParseTokenRules decodes and compiles the token-normalization document.
func ParseTokenRules(data []byte) (*TokenNormalizer, error) {
	var doc tokenRulesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigInvalid, "parse token normalization document")
	}
	if doc.TokenNormalization == nil {
		return nil, errors.New(errors.CodeConfigMissingKey,
			"token normalization document: missing token_normalization root key")
	}
	return compileTokenNormalizer(doc.TokenNormalization)
}

func compileTokenNormalizer(doc *tokenRulesDocument) (*TokenNormalizer, error) {
	rules := make([]phraseRule, 0, len(doc.PhraseRules))
	for i, r := range doc.PhraseRules {
		if r.Pattern == nil || r.Canonical == nil {
			return nil, errors.New(errors.CodeConfigMissingKey,
				fmt.Sprintf("token_normalization.phrase_rules[%d]: pattern and canonical are required", i))
		}
		if *r.Pattern == "" {
			return nil, errors.New(errors.CodeConfigInvalid,
				fmt.Sprintf("token_normalization.phrase_rules[%d]: pattern must not be empty", i))
		}
		// The canonical side is inserted verbatim; only the pattern is folded.
		rules = append(rules, phraseRule{pattern: fold(*r.Pattern), canonical: *r.Canonical})
	}

	lookup := make(map[string]string)
	for _, entry := range doc.SynonymMap {
		for _, v := range entry.variants {
			lookup[fold(v)] = entry.canonical
		}
	}

	stopset := make(map[string]struct{}, len(doc.Stoplist.Tokens))
	for _, t := range doc.Stoplist.Tokens {
		stopset[fold(t)] = struct{}{}
	}

	return &TokenNormalizer{phraseRules: rules, synonymLookup: lookup, stopset: stopset}, nil
}

// NormalizeToTokens runs the full token pipeline: fold, collapse whitespace,
// phrase rewrites, separator and punctuation cleanup, comma and " and "
// splitting, stopword removal, synonym mapping, then order-preserving
// de-duplication.
func (n *TokenNormalizer) NormalizeToTokens(text string) []string {
	s := collapseWhitespace(fold(text))

	for _, r := range n.phraseRules {
		if r.pattern == "" {
			continue
		}
		s = strings.ReplaceAll(s, r.pattern, r.canonical)
	}

	s = tokenSeparatorRe.ReplaceAllString(s, ",")
	s = tokenStripRe.ReplaceAllString(s, " ")
	s = collapseWhitespace(s)

	tokens := make([]string, 0)
	for _, chunk := range strings.Split(s, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		for _, part := range strings.Split(chunk, " and ") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, stop := n.stopset[part]; stop {
				continue
			}
			canonical, ok := n.synonymLookup[part]
			if !ok {
				canonical = part
			}
			if canonical == "" {
				continue
			}
			if _, stop := n.stopset[canonical]; stop {
				continue
			}
			tokens = append(tokens, canonical)
		}
	}

	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
