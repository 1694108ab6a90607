package engine

import (
	"strings"

	"scheme-recommendation-engine/internal/models"
)

// CheckEligibility evaluates every eligibility rule of a scheme against a
// profile and aggregates the results into a verdict.
//
// All rules are always evaluated, even after the first failure, so the
// explanation covers everything the citizen is missing. A scheme with no
// rules is universally eligible with confidence 1.0. The only errors are
// nil arguments; catalog data problems surface as failed rules.
func CheckEligibility(profile *models.Profile, scheme *models.Scheme) (*models.EligibilityResult, error) {
	if profile == nil {
		return nil, models.ErrNilProfile
	}
	if scheme == nil {
		return nil, models.ErrNilScheme
	}

	total := len(scheme.EligibilityRules)
	if total == 0 {
		return &models.EligibilityResult{
			Eligible:       true,
			Confidence:     1.0,
			PassedCriteria: []models.RuleResult{},
			FailedCriteria: []models.RuleResult{},
			Explanation:    "",
		}, nil
	}

	passed := make([]models.RuleResult, 0, total)
	failedResults := make([]models.RuleResult, 0)

	for _, rule := range scheme.EligibilityRules {
		result := EvaluateRule(profile, rule)
		if result.Passed {
			passed = append(passed, result)
		} else {
			failedResults = append(failedResults, result)
		}
	}

	confidence := float64(len(passed)) / float64(total)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &models.EligibilityResult{
		Eligible:       len(failedResults) == 0,
		Confidence:     confidence,
		PassedCriteria: passed,
		FailedCriteria: failedResults,
		Explanation:    buildExplanation(failedResults),
	}, nil
}

// buildExplanation joins failed-rule reasons in catalog rule order. The
// output is deterministic for identical input, which callers rely on for
// caching and re-display after a profile edit.
func buildExplanation(failures []models.RuleResult) string {
	if len(failures) == 0 {
		return ""
	}

	reasons := make([]string, len(failures))
	for i, f := range failures {
		reasons[i] = f.Reason
	}
	return strings.Join(reasons, "; ")
}
