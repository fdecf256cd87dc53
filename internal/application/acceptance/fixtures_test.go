package acceptance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlab/bdst/pkg/errors"
)

const fixtureDoc = `
bdst_v1_acceptance_tests:
  meta:
    version: "1.0"
    description: smoke fixtures
  tests:
    - id: T01
      title: toxic plant goes red
      input:
        scientific_name: Daphne demo
        edibility_rating: 1
        medicinal_rating: 3
        known_hazards_text: highly toxic berries
      expected:
        bdst_risk_level: RED
        hazard_tier: H2
    - id: T02
      title: plant key variant
      plant:
        scientific_name: Rosa demo
      expected:
        bdst_risk_level: AMBER
`

func TestParseSuite_FullDocument(t *testing.T) {
	suite, err := ParseSuite([]byte(fixtureDoc))
	require.NoError(t, err)

	assert.Equal(t, "1.0", suite.Meta["version"])
	require.Len(t, suite.Tests, 2)

	first := suite.Tests[0]
	assert.Equal(t, "T01", first.ID)
	assert.Equal(t, "toxic plant goes red", first.Title)
	assert.Equal(t, "Daphne demo", first.Input["scientific_name"])
	assert.Equal(t, "RED", first.Expected["bdst_risk_level"])

	// The "plant" spelling of the input key is accepted too.
	second := suite.Tests[1]
	assert.Equal(t, "Rosa demo", second.Input["scientific_name"])
}

func TestParseSuite_WholeDocumentFallback(t *testing.T) {
	doc := `
tests:
  - id: T10
    input: {scientific_name: Direct plantus}
`
	suite, err := ParseSuite([]byte(doc))
	require.NoError(t, err)
	require.Len(t, suite.Tests, 1)
	assert.Equal(t, "T10", suite.Tests[0].ID)
	assert.Empty(t, suite.Meta)
}

func TestParseSuite_MissingTestsIsEmpty(t *testing.T) {
	suite, err := ParseSuite([]byte("bdst_v1_acceptance_tests:\n  meta: {}\n"))
	require.NoError(t, err)
	assert.Empty(t, suite.Tests)
}

func TestParseSuite_TestsNotASequenceIsEmpty(t *testing.T) {
	suite, err := ParseSuite([]byte("bdst_v1_acceptance_tests:\n  tests: not a list\n"))
	require.NoError(t, err)
	assert.Empty(t, suite.Tests)
}

func TestParseSuite_DefaultsForMissingFields(t *testing.T) {
	doc := `
bdst_v1_acceptance_tests:
  tests:
    - expected: {bdst_risk_level: GREEN}
`
	suite, err := ParseSuite([]byte(doc))
	require.NoError(t, err)
	require.Len(t, suite.Tests, 1)

	tc := suite.Tests[0]
	assert.Equal(t, "unknown", tc.ID)
	assert.Empty(t, tc.Title)
	assert.NotNil(t, tc.Input)
	assert.Empty(t, tc.Input)
}

func TestParseSuite_NonMappingTestEntrySkipped(t *testing.T) {
	doc := `
bdst_v1_acceptance_tests:
  tests:
    - just a string
    - id: T20
      input: {scientific_name: Kept plantus}
`
	suite, err := ParseSuite([]byte(doc))
	require.NoError(t, err)
	require.Len(t, suite.Tests, 1)
	assert.Equal(t, "T20", suite.Tests[0].ID)
}

func TestParseSuite_InvalidYAML(t *testing.T) {
	_, err := ParseSuite([]byte("tests: [unclosed"))
	require.Error(t, err)
}

func TestLoadSuite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureDoc), 0o644))

	suite, err := LoadSuite(path)
	require.NoError(t, err)
	assert.Len(t, suite.Tests, 2)
}

func TestLoadSuite_MissingFile(t *testing.T) {
	_, err := LoadSuite(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIOFailure))
}

func TestLoadSuite_InvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tests: [unclosed"), 0o644))

	_, err := LoadSuite(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeFixtureInvalid))
}

func TestStringList_LooseAndTyped(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, stringList([]any{"a", 7, "b"}))
	assert.Equal(t, []string{"x"}, stringList([]string{"x"}))
	assert.Nil(t, stringList("not a list"))
	assert.Nil(t, stringList(nil))
}
