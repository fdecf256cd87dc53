// Package acceptance runs fixture-driven checks of the risk engine: each
// fixture pairs a plant input with the card facets it must produce, and the
// runner reports every mismatch with a machine-readable reason.
package acceptance

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/verdantlab/bdst/pkg/errors"
)

// fixtureRootKey is the document root the suite normally sits under. A
// document without it is treated as the root itself, so trimmed-down fixture
// files keep working.
const fixtureRootKey = "bdst_v1_acceptance_tests"

// Suite is a parsed fixture document.
type Suite struct {
	Meta  map[string]any
	Tests []Case
}

// Case is one fixture. Input and Expected stay loosely typed so the report
// can pass them through exactly as written.
type Case struct {
	ID       string
	Title    string
	Input    map[string]any
	Expected map[string]any
}

// LoadSuite reads and parses the fixture file at path.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIOFailure, "read fixtures "+path)
	}
	suite, err := ParseSuite(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFixtureInvalid, "parse fixtures "+path)
	}
	return suite, nil
}

// ParseSuite parses a fixture document. A missing tests list or one that is
// not a sequence yields an empty suite rather than an error.
func ParseSuite(data []byte) (*Suite, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	root := doc
	if sub, ok := doc[fixtureRootKey].(map[string]any); ok {
		root = sub
	}

	suite := &Suite{Meta: make(map[string]any)}
	if meta, ok := root["meta"].(map[string]any); ok {
		suite.Meta = meta
	}

	rawTests, _ := root["tests"].([]any)
	for _, raw := range rawTests {
		tc, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		suite.Tests = append(suite.Tests, parseCase(tc))
	}
	return suite, nil
}

func parseCase(tc map[string]any) Case {
	c := Case{
		ID:    stringOr(tc["id"], "unknown"),
		Title: stringOr(tc["title"], ""),
	}
	if in, ok := tc["input"].(map[string]any); ok {
		c.Input = in
	} else if in, ok := tc["plant"].(map[string]any); ok {
		c.Input = in
	} else {
		c.Input = make(map[string]any)
	}
	if exp, ok := tc["expected"].(map[string]any); ok {
		c.Expected = exp
	} else {
		c.Expected = make(map[string]any)
	}
	return c
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

// stringList converts a loosely-typed YAML sequence to strings, dropping
// non-string entries. Already-typed slices pass through.
func stringList(v any) []string {
	switch raw := v.(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
