package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-recommendation-engine/internal/models"
)

func TestCheckEligibilityAllRulesPass(t *testing.T) {
	profile := &models.Profile{
		Age:          65,
		AnnualIncome: intPtr(80000),
	}
	scheme := &models.Scheme{
		ID:   "old-age-pension",
		Name: "Old Age Pension",
		EligibilityRules: []models.Rule{
			{Field: models.RuleFieldAge, Operator: models.RuleOperatorRange, Min: intPtr(60)},
			{Field: models.RuleFieldAnnualIncome, Operator: models.RuleOperatorRange, Max: intPtr(100000)},
		},
	}

	result, err := CheckEligibility(profile, scheme)
	require.NoError(t, err)

	assert.True(t, result.Eligible)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Len(t, result.PassedCriteria, 2)
	assert.Empty(t, result.FailedCriteria)
	assert.Empty(t, result.Explanation)
}

func TestCheckEligibilitySingleRuleFails(t *testing.T) {
	profile := &models.Profile{
		Age:        30,
		Occupation: models.OccupationSalaried,
	}
	scheme := &models.Scheme{
		ID:   "kisan-credit",
		Name: "Kisan Credit",
		EligibilityRules: []models.Rule{
			{Field: models.RuleFieldOccupation, Operator: models.RuleOperatorEquals, Value: "farmer"},
		},
	}

	result, err := CheckEligibility(profile, scheme)
	require.NoError(t, err)

	assert.False(t, result.Eligible)
	assert.Equal(t, 0.0, result.Confidence)
	assert.NotEmpty(t, result.Explanation)
}

func TestCheckEligibilityStrictConjunction(t *testing.T) {
	profile := &models.Profile{
		Age:        65,
		Occupation: models.OccupationSalaried,
	}
	scheme := &models.Scheme{
		ID:   "s1",
		Name: "Partial Match",
		EligibilityRules: []models.Rule{
			{Field: models.RuleFieldAge, Operator: models.RuleOperatorRange, Min: intPtr(60)},
			{Field: models.RuleFieldOccupation, Operator: models.RuleOperatorEquals, Value: "farmer"},
		},
	}

	result, err := CheckEligibility(profile, scheme)
	require.NoError(t, err)

	// One failure is enough to be ineligible; confidence still reflects
	// how close the profile came.
	assert.False(t, result.Eligible)
	assert.Equal(t, 0.5, result.Confidence)
	assert.Len(t, result.PassedCriteria, 1)
	assert.Len(t, result.FailedCriteria, 1)
}

func TestCheckEligibilityEvaluatesEveryRule(t *testing.T) {
	profile := &models.Profile{Age: 10}
	scheme := &models.Scheme{
		ID:   "s1",
		Name: "Many Rules",
		EligibilityRules: []models.Rule{
			{Field: models.RuleFieldAge, Operator: models.RuleOperatorRange, Min: intPtr(18)},
			{Field: models.RuleFieldIsBPL, Operator: models.RuleOperatorFlag},
			{Field: models.RuleFieldIsFarmer, Operator: models.RuleOperatorFlag},
		},
	}

	result, err := CheckEligibility(profile, scheme)
	require.NoError(t, err)

	// No short-circuit: the explanation names every failed criterion.
	assert.Len(t, result.FailedCriteria, 3)
	assert.Contains(t, result.Explanation, "age")
	assert.Contains(t, result.Explanation, "is_bpl")
	assert.Contains(t, result.Explanation, "is_farmer")
}

func TestCheckEligibilityZeroRulesIsUniversallyEligible(t *testing.T) {
	profile := &models.Profile{Age: 25}
	scheme := &models.Scheme{ID: "open", Name: "Open Scheme"}

	result, err := CheckEligibility(profile, scheme)
	require.NoError(t, err)

	assert.True(t, result.Eligible)
	assert.Equal(t, 1.0, result.Confidence)
	assert.NotNil(t, result.PassedCriteria)
	assert.NotNil(t, result.FailedCriteria)
}

func TestCheckEligibilityNilArguments(t *testing.T) {
	scheme := &models.Scheme{ID: "s1", Name: "Scheme"}

	_, err := CheckEligibility(nil, scheme)
	assert.ErrorIs(t, err, models.ErrNilProfile)

	_, err = CheckEligibility(&models.Profile{}, nil)
	assert.ErrorIs(t, err, models.ErrNilScheme)
}

func TestCheckEligibilityExplanationIsDeterministic(t *testing.T) {
	profile := &models.Profile{Age: 10}
	scheme := &models.Scheme{
		ID:   "s1",
		Name: "Scheme",
		EligibilityRules: []models.Rule{
			{Field: models.RuleFieldAge, Operator: models.RuleOperatorRange, Min: intPtr(18)},
			{Field: models.RuleFieldIsStudent, Operator: models.RuleOperatorFlag},
		},
	}

	first, err := CheckEligibility(profile, scheme)
	require.NoError(t, err)
	second, err := CheckEligibility(profile, scheme)
	require.NoError(t, err)

	assert.Equal(t, first.Explanation, second.Explanation)
}
