// Package models defines the data structures for the scheme recommendation engine.
package models

// SchemeOrigin labels which level of government administers a scheme.
type SchemeOrigin string

const (
	OriginCentral SchemeOrigin = "central"
	OriginState   SchemeOrigin = "state"
)

// RuleResult reports the outcome of evaluating one eligibility rule
// against a profile. Created fresh per evaluation, never mutated.
type RuleResult struct {
	Rule   Rule   `json:"rule"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

// EligibilityResult aggregates all rule results for one scheme.
// Eligible is true iff FailedCriteria is empty; Confidence is the
// fraction of rules passed, independent of the strict verdict.
type EligibilityResult struct {
	Eligible       bool         `json:"eligible"`
	Confidence     float64      `json:"confidence"`
	PassedCriteria []RuleResult `json:"passed_criteria"`
	FailedCriteria []RuleResult `json:"failed_criteria"`
	Explanation    string       `json:"explanation"`
}

// ScoredScheme pairs a scheme with its eligibility verdict, relevance
// score and origin label. Transient; exists only for the duration of a
// recommendation request.
type ScoredScheme struct {
	Scheme         Scheme            `json:"scheme"`
	Eligibility    EligibilityResult `json:"eligibility"`
	RelevanceScore float64           `json:"relevance_score"`
	Origin         SchemeOrigin      `json:"origin"`
}

// RecommendationResult is the outcome of one full recommendation pass.
// TotalMatches counts eligible schemes before top-K truncation so
// callers can display "showing 10 of 47".
type RecommendationResult struct {
	Schemes      []ScoredScheme `json:"schemes"`
	TotalMatches int            `json:"total_matches"`
}
