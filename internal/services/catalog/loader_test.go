package catalog

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/utils"
)

func TestMain(m *testing.M) {
	if err := utils.InitLogger("error"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const sampleCatalog = `[
	{
		"id": "pm-kisan",
		"name": "  PM-KISAN  ",
		"description": "Income support for farmers",
		"ministry": "Ministry of Agriculture",
		"level": "central",
		"category": "Agriculture",
		"benefits": "₹6,000 per year",
		"documents": ["aadhaar", "land records"],
		"eligibility_rules": [
			{"field": "is_farmer", "operator": "flag"}
		]
	},
	{
		"id": "mk-awas",
		"name": "Mukhyamantri Awas Yojana",
		"category": "housing",
		"is_active": false
	},
	{
		"id": "open-scheme",
		"name": "Open Scheme"
	}
]`

func TestLoadBytesIndexesAndRepairs(t *testing.T) {
	c, err := LoadBytes([]byte(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 3, c.Report().Loaded)
	assert.Zero(t, c.Report().Skipped)

	scheme, err := c.ByID("pm-kisan")
	require.NoError(t, err)

	// Name trimmed, category lowercased.
	assert.Equal(t, "PM-KISAN", scheme.Name)
	assert.Equal(t, models.SchemeLevelCentral, scheme.Level)
	assert.Equal(t, "agriculture", scheme.Category)

	// Active by default unless the record disables it.
	assert.True(t, scheme.IsActive)
	inactive, err := c.ByID("mk-awas")
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	// Missing slices materialize as empty, never nil.
	open, err := c.ByID("open-scheme")
	require.NoError(t, err)
	assert.NotNil(t, open.Documents)
	assert.NotNil(t, open.EligibilityRules)
}

func TestLoadBytesSkipsInvalidRecords(t *testing.T) {
	data := `[
		{"id": "valid", "name": "Valid Scheme"},
		{"name": "Missing ID"},
		{"id": "bad-level", "name": "Bad Level", "level": "municipal"},
		{"id": "bad-rule", "name": "Bad Rule", "eligibility_rules": [{"field": "age", "operator": "approximately"}]}
	]`

	c, err := LoadBytes([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.Report().Skipped)
	assert.Len(t, c.Report().Issues, 3)

	_, err = c.ByID("valid")
	assert.NoError(t, err)
}

func TestLoadBytesSkipsDuplicateIDs(t *testing.T) {
	data := `[
		{"id": "dup", "name": "First"},
		{"id": "dup", "name": "Second"}
	]`

	c, err := LoadBytes([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.Report().Skipped)

	scheme, err := c.ByID("dup")
	require.NoError(t, err)
	assert.Equal(t, "First", scheme.Name)
}

func TestLoadBytesRejectsNonArray(t *testing.T) {
	_, err := LoadBytes([]byte(`{"id": "not-an-array"}`))
	assert.Error(t, err)
}

func TestCatalogLookupsAndSearch(t *testing.T) {
	c, err := LoadBytes([]byte(sampleCatalog))
	require.NoError(t, err)

	assert.Len(t, c.ByCategory("Agriculture"), 1)
	assert.Len(t, c.ByLevel(models.SchemeLevelCentral), 1)
	assert.Equal(t, []string{"agriculture", "housing"}, c.Categories())

	_, err = c.ByID("no-such-scheme")
	assert.ErrorIs(t, err, models.ErrSchemeNotFound)

	matches := c.Search("farmers", 0)
	require.Len(t, matches, 1)
	assert.Equal(t, "pm-kisan", matches[0].ID)

	assert.Empty(t, c.Search("", 0))
	assert.Empty(t, c.Search("nothing matches this", 0))

	limited := c.Search("scheme", 1)
	assert.Len(t, limited, 1)
}

func TestCatalogStats(t *testing.T) {
	c, err := LoadBytes([]byte(sampleCatalog))
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 3, stats.TotalSchemes)
	assert.Equal(t, 1, stats.ByLevel[models.SchemeLevelCentral])
	assert.Equal(t, 2, stats.ByLevel[models.SchemeLevelUnspecified])
	assert.Equal(t, 1, stats.ByCategory["agriculture"])
	assert.Equal(t, 2, stats.WithoutRules)
	assert.Equal(t, 3, stats.WithoutLink)
}

func TestStatsForPlainSchemeSlice(t *testing.T) {
	// Database-backed snapshots have no Catalog wrapper; StatsFor must
	// produce the same summary from a bare slice.
	schemes := []*models.Scheme{
		{ID: "a", Name: "A", Level: models.SchemeLevelCentral, Category: "pension", ApplyLink: "https://example.org"},
		{ID: "b", Name: "B", Level: models.SchemeLevelState, Category: "pension",
			EligibilityRules: []models.Rule{{Field: models.RuleFieldAge, Operator: models.RuleOperatorRange}}},
	}

	stats := StatsFor(schemes)
	assert.Equal(t, 2, stats.TotalSchemes)
	assert.Equal(t, 1, stats.ByLevel[models.SchemeLevelCentral])
	assert.Equal(t, 1, stats.ByLevel[models.SchemeLevelState])
	assert.Equal(t, 2, stats.ByCategory["pension"])
	assert.Equal(t, 1, stats.WithoutRules)
	assert.Equal(t, 1, stats.WithoutLink)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/does-not-exist.json")
	assert.Error(t, err)
}
