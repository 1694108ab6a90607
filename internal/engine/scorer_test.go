package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scheme-recommendation-engine/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func fullConfidence() *models.EligibilityResult {
	return &models.EligibilityResult{Eligible: true, Confidence: 1.0}
}

func TestScoreStaysWithinBounds(t *testing.T) {
	scheme := &models.Scheme{
		ID:         "s1",
		Name:       "Scheme",
		Benefits:   "₹2 crore subsidy",
		Popularity: floatPtr(1.0),
	}
	scorer := NewScorer(BalancedWeights(), []*models.Scheme{scheme})

	score := scorer.Score(scheme, fullConfidence())
	assert.LessOrEqual(t, score, 100.0)
	assert.GreaterOrEqual(t, score, 0.0)
}

func TestScoreConfidenceComponent(t *testing.T) {
	scheme := &models.Scheme{ID: "s1", Name: "Scheme"}
	scorer := NewScorer(BalancedWeights(), []*models.Scheme{scheme})

	full := scorer.Score(scheme, fullConfidence())
	half := scorer.Score(scheme, &models.EligibilityResult{Confidence: 0.5})

	// Only the confidence component differs: 0.5 * 40 = 20 points.
	assert.InDelta(t, 20.0, full-half, 0.001)
}

func TestScoreBenefitMidpointWhenUnparseable(t *testing.T) {
	withAmount := &models.Scheme{ID: "a", Name: "A", Benefits: "₹1 crore loan subsidy"}
	noAmount := &models.Scheme{ID: "b", Name: "B", Benefits: "free training and placement support"}
	scorer := NewScorer(BalancedWeights(), []*models.Scheme{withAmount, noAmount})

	// One crore caps the log scale, earning the full 30-point band.
	// Unparseable benefits get the 15-point midpoint.
	diff := scorer.Score(withAmount, fullConfidence()) - scorer.Score(noAmount, fullConfidence())
	assert.InDelta(t, 15.0, diff, 0.001)
}

func TestScoreEaseInverseToDocumentCount(t *testing.T) {
	light := &models.Scheme{ID: "a", Name: "A", Documents: []string{"aadhaar"}}
	heavy := &models.Scheme{ID: "b", Name: "B", Documents: []string{"aadhaar", "income cert", "caste cert", "bank passbook"}}
	scorer := NewScorer(BalancedWeights(), []*models.Scheme{light, heavy})

	assert.Greater(t,
		scorer.Score(light, fullConfidence()),
		scorer.Score(heavy, fullConfidence()),
	)

	// The catalog-wide maximum gets zero ease points.
	heavyScore := scorer.Score(heavy, fullConfidence())
	none := &models.Scheme{ID: "c", Name: "C"}
	noneScore := scorer.Score(none, fullConfidence())
	assert.InDelta(t, 20.0, noneScore-heavyScore, 0.001)
}

func TestScoreEaseFullWhenNoSchemeRequiresDocuments(t *testing.T) {
	a := &models.Scheme{ID: "a", Name: "A"}
	scorer := NewScorer(BalancedWeights(), []*models.Scheme{a})

	b := &models.Scheme{ID: "b", Name: "B"}
	assert.Equal(t, scorer.Score(a, fullConfidence()), scorer.Score(b, fullConfidence()))
}

func TestScorePopularityDefaultsToMidpoint(t *testing.T) {
	popular := &models.Scheme{ID: "a", Name: "A", Popularity: floatPtr(1.0)}
	unknown := &models.Scheme{ID: "b", Name: "B"}
	unpopular := &models.Scheme{ID: "c", Name: "C", Popularity: floatPtr(0.0)}
	scorer := NewScorer(BalancedWeights(), []*models.Scheme{popular, unknown, unpopular})

	popularScore := scorer.Score(popular, fullConfidence())
	unknownScore := scorer.Score(unknown, fullConfidence())
	unpopularScore := scorer.Score(unpopular, fullConfidence())

	assert.InDelta(t, 5.0, popularScore-unknownScore, 0.001)
	assert.InDelta(t, 5.0, unknownScore-unpopularScore, 0.001)
}

func TestScorePopularityOutOfRangeIsClamped(t *testing.T) {
	over := &models.Scheme{ID: "a", Name: "A", Popularity: floatPtr(3.0)}
	max := &models.Scheme{ID: "b", Name: "B", Popularity: floatPtr(1.0)}
	scorer := NewScorer(BalancedWeights(), []*models.Scheme{over, max})

	assert.Equal(t, scorer.Score(max, fullConfidence()), scorer.Score(over, fullConfidence()))
}

func TestWeightsForProfile(t *testing.T) {
	assert.Equal(t, BalancedWeights(), WeightsForProfile("balanced"))
	assert.Equal(t, BalancedWeights(), WeightsForProfile("no-such-profile"))
	assert.Equal(t, BenefitPriorityWeights(), WeightsForProfile("benefit"))
	assert.Equal(t, EasePriorityWeights(), WeightsForProfile("ease_priority"))
}
