package tolerance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalogue = `
checks:
  - name: login-inactive-user
    bug: BUG-004
    description: soft-deleted users can still log in
    ideal: [401]
    tolerated: [200, 401]
  - name: stats-details-leak
    bug: BUG-010
    description: stats details expose emails and tokens
    ideal: [false]
    tolerated: [false, true]
  - name: user-not-found
    ideal: [404]
`

func parseSample(t *testing.T) *Catalogue {
	c, err := ParseCatalogue(strings.NewReader(sampleCatalogue))
	require.NoError(t, err)
	return c
}

func TestLookupIntOutcome(t *testing.T) {
	o, err := Lookup[int](parseSample(t), "login-inactive-user")
	require.NoError(t, err)
	assert.Equal(t, "BUG-004", o.BugID)
	assert.Equal(t, []int{401}, o.Ideal)
	assert.Equal(t, []int{200, 401}, o.Tolerated)
}

func TestLookupBoolOutcome(t *testing.T) {
	o, err := Lookup[bool](parseSample(t), "stats-details-leak")
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, o.Ideal)
	assert.Equal(t, []bool{false, true}, o.Tolerated)
}

func TestLookupStrictEntry(t *testing.T) {
	o, err := Lookup[int](parseSample(t), "user-not-found")
	require.NoError(t, err)
	assert.True(t, o.IsStrict())
	assert.Equal(t, "", o.BugID)
}

func TestLookupUnknownCheck(t *testing.T) {
	_, err := Lookup[int](parseSample(t), "nope")
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
}

func TestLookupWithWrongValueType(t *testing.T) {
	_, err := Lookup[int](parseSample(t), "stats-details-leak")
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
}

func TestCatalogueBugIDsAndNames(t *testing.T) {
	c := parseSample(t)
	assert.Equal(t, []string{"BUG-004", "BUG-010"}, c.BugIDs())
	assert.Equal(t, []string{"login-inactive-user", "stats-details-leak", "user-not-found"}, c.Names())

	bug, desc, ok := c.Describe("login-inactive-user")
	assert.True(t, ok)
	assert.Equal(t, "BUG-004", bug)
	assert.Equal(t, "soft-deleted users can still log in", desc)
}

func TestParseCatalogueRejectsDuplicates(t *testing.T) {
	doc := `
checks:
  - name: a
    ideal: [1]
  - name: a
    ideal: [2]
`
	_, err := ParseCatalogue(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestParseCatalogueRejectsScalarIdeal(t *testing.T) {
	doc := `
checks:
  - name: a
    ideal: 1
`
	_, err := ParseCatalogue(strings.NewReader(doc))
	assert.Error(t, err)
}
