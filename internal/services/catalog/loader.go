package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/utils"
)

// RecordIssue describes why one catalog record was skipped or repaired
// during loading. Surfaced to catalog maintainers via the validation
// report and the logs.
type RecordIssue struct {
	Index    int      `json:"index"`
	SchemeID string   `json:"scheme_id,omitempty"`
	Problems []string `json:"problems"`
	Skipped  bool     `json:"skipped"`
}

// ValidationReport summarizes the outcome of a catalog load.
type ValidationReport struct {
	TotalRecords int           `json:"total_records"`
	Loaded       int           `json:"loaded"`
	Skipped      int           `json:"skipped"`
	Issues       []RecordIssue `json:"issues,omitempty"`
}

// Catalog is an immutable, indexed snapshot of the scheme catalog.
type Catalog struct {
	schemes    []*models.Scheme
	byID       map[string]*models.Scheme
	byCategory map[string][]*models.Scheme
	byLevel    map[models.SchemeLevel][]*models.Scheme
	report     ValidationReport
}

// rawScheme mirrors models.Scheme with a pointer IsActive so records that
// omit the flag default to active instead of Go's zero value.
type rawScheme struct {
	models.Scheme
	IsActive *bool `json:"is_active,omitempty"`
}

// LoadFile loads and validates a catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes loads and validates a catalog from raw JSON (an array of
// scheme records). Records that fail schema validation or reuse an ID are
// skipped and reported, never fatal.
func LoadBytes(data []byte) (*Catalog, error) {
	var rawRecords []json.RawMessage
	if err := json.Unmarshal(data, &rawRecords); err != nil {
		return nil, fmt.Errorf("catalog is not a JSON array: %w", err)
	}

	c := &Catalog{
		schemes:    make([]*models.Scheme, 0, len(rawRecords)),
		byID:       make(map[string]*models.Scheme, len(rawRecords)),
		byCategory: make(map[string][]*models.Scheme),
		byLevel:    make(map[models.SchemeLevel][]*models.Scheme),
	}
	c.report.TotalRecords = len(rawRecords)

	for i, raw := range rawRecords {
		problems, err := validateRecord(raw)
		if err != nil {
			return nil, err
		}
		if len(problems) > 0 {
			c.recordIssue(RecordIssue{Index: i, Problems: problems, Skipped: true})
			continue
		}

		var record rawScheme
		if err := json.Unmarshal(raw, &record); err != nil {
			c.recordIssue(RecordIssue{Index: i, Problems: []string{err.Error()}, Skipped: true})
			continue
		}

		scheme := repair(record)

		if _, exists := c.byID[scheme.ID]; exists {
			c.recordIssue(RecordIssue{
				Index:    i,
				SchemeID: scheme.ID,
				Problems: []string{models.ErrDuplicateSchemeID.Error()},
				Skipped:  true,
			})
			continue
		}

		c.add(scheme)
	}

	c.report.Loaded = len(c.schemes)

	utils.Logger.Info("catalog loaded",
		zap.Int("total_records", c.report.TotalRecords),
		zap.Int("loaded", c.report.Loaded),
		zap.Int("skipped", c.report.Skipped),
	)

	return c, nil
}

// repair normalizes a validated record: trimmed name, lowercased level
// and category, active unless explicitly disabled.
func repair(record rawScheme) *models.Scheme {
	scheme := record.Scheme
	scheme.Name = strings.TrimSpace(scheme.Name)
	scheme.Level = models.SchemeLevel(strings.ToLower(string(scheme.Level)))
	scheme.Category = strings.ToLower(strings.TrimSpace(scheme.Category))
	scheme.IsActive = record.IsActive == nil || *record.IsActive
	if scheme.Documents == nil {
		scheme.Documents = []string{}
	}
	if scheme.EligibilityRules == nil {
		scheme.EligibilityRules = []models.Rule{}
	}
	return &scheme
}

func (c *Catalog) add(scheme *models.Scheme) {
	c.schemes = append(c.schemes, scheme)
	c.byID[scheme.ID] = scheme
	if scheme.Category != "" {
		c.byCategory[scheme.Category] = append(c.byCategory[scheme.Category], scheme)
	}
	c.byLevel[scheme.Level] = append(c.byLevel[scheme.Level], scheme)
}

func (c *Catalog) recordIssue(issue RecordIssue) {
	if issue.Skipped {
		c.report.Skipped++
	}
	c.report.Issues = append(c.report.Issues, issue)
	utils.Logger.Warn("catalog record rejected",
		zap.Int("index", issue.Index),
		zap.String("scheme_id", issue.SchemeID),
		zap.Strings("problems", issue.Problems),
	)
}

// All returns every loaded scheme in catalog order.
func (c *Catalog) All() []*models.Scheme {
	return c.schemes
}

// Len returns the number of loaded schemes.
func (c *Catalog) Len() int {
	return len(c.schemes)
}

// ByID returns the scheme with the given catalog ID.
func (c *Catalog) ByID(id string) (*models.Scheme, error) {
	scheme, ok := c.byID[id]
	if !ok {
		return nil, models.ErrSchemeNotFound
	}
	return scheme, nil
}

// ByCategory returns schemes in the given category (case-insensitive).
func (c *Catalog) ByCategory(category string) []*models.Scheme {
	return c.byCategory[strings.ToLower(strings.TrimSpace(category))]
}

// ByLevel returns schemes with the given declared level.
func (c *Catalog) ByLevel(level models.SchemeLevel) []*models.Scheme {
	return c.byLevel[level]
}

// Categories returns the distinct catalog categories, sorted.
func (c *Catalog) Categories() []string {
	categories := make([]string, 0, len(c.byCategory))
	for category := range c.byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// Search performs a case-insensitive substring search over scheme names,
// descriptions, ministries and benefits. Results keep catalog order; a
// limit of 0 or less means no limit.
func (c *Catalog) Search(query string, limit int) []*models.Scheme {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	matches := make([]*models.Scheme, 0)
	for _, scheme := range c.schemes {
		haystack := strings.ToLower(strings.Join([]string{
			scheme.Name, scheme.Description, scheme.Ministry, scheme.Benefits,
		}, " "))
		if strings.Contains(haystack, needle) {
			matches = append(matches, scheme)
			if limit > 0 && len(matches) >= limit {
				break
			}
		}
	}
	return matches
}

// Stats summarizes the loaded catalog for the maintainers' dashboard.
type Stats struct {
	TotalSchemes int                        `json:"total_schemes"`
	ByLevel      map[models.SchemeLevel]int `json:"by_level"`
	ByCategory   map[string]int             `json:"by_category"`
	WithoutRules int                        `json:"without_rules"`
	WithoutLink  int                        `json:"without_link"`
}

// Stats computes catalog summary statistics.
func (c *Catalog) Stats() Stats {
	return StatsFor(c.schemes)
}

// StatsFor computes summary statistics for any scheme slice, catalog-backed
// or database-backed.
func StatsFor(schemes []*models.Scheme) Stats {
	stats := Stats{
		TotalSchemes: len(schemes),
		ByLevel:      make(map[models.SchemeLevel]int),
		ByCategory:   make(map[string]int),
	}

	for _, scheme := range schemes {
		stats.ByLevel[scheme.Level]++
		if scheme.Category != "" {
			stats.ByCategory[scheme.Category]++
		}
		if len(scheme.EligibilityRules) == 0 {
			stats.WithoutRules++
		}
		if scheme.ApplyLink == "" {
			stats.WithoutLink++
		}
	}

	return stats
}

// Report returns the validation report from the load.
func (c *Catalog) Report() ValidationReport {
	return c.report
}
