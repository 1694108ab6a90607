package engine

import (
	"math"
	"strings"

	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/utils"
)

// Weights controls how much each component contributes to the relevance
// score. The four weights must sum to 100; sub-scores are computed as a
// fraction in [0,1] and multiplied by their weight.
type Weights struct {
	Confidence float64
	Benefit    float64
	Ease       float64
	Popularity float64
}

// BalancedWeights is the default 40/30/20/10 split.
func BalancedWeights() Weights {
	return Weights{Confidence: 40, Benefit: 30, Ease: 20, Popularity: 10}
}

// BenefitPriorityWeights favors schemes with large declared benefits.
func BenefitPriorityWeights() Weights {
	return Weights{Confidence: 30, Benefit: 45, Ease: 15, Popularity: 10}
}

// EasePriorityWeights favors schemes that are simple to apply for.
func EasePriorityWeights() Weights {
	return Weights{Confidence: 35, Benefit: 20, Ease: 35, Popularity: 10}
}

// WeightsForProfile returns a named weight profile, falling back to
// balanced for unknown names.
func WeightsForProfile(name string) Weights {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "benefit", "benefit_priority":
		return BenefitPriorityWeights()
	case "ease", "ease_priority":
		return EasePriorityWeights()
	default:
		return BalancedWeights()
	}
}

// benefitLogCeiling bounds the log-scale benefit normalization: one crore
// per year or more earns the full benefit sub-score.
const benefitLogCeiling = 7.0

// Scorer computes the composite 0-100 relevance score for eligible
// schemes. maxDocuments is the catalog-wide maximum document count used
// to normalize the application-ease component; it is fixed per catalog
// snapshot so scoring stays deterministic within a request.
type Scorer struct {
	weights      Weights
	maxDocuments int
}

// NewScorer creates a scorer for one catalog snapshot.
func NewScorer(weights Weights, catalog []*models.Scheme) *Scorer {
	maxDocs := 0
	for _, scheme := range catalog {
		if scheme != nil && len(scheme.Documents) > maxDocs {
			maxDocs = len(scheme.Documents)
		}
	}
	return &Scorer{weights: weights, maxDocuments: maxDocs}
}

// Score computes the relevance score for one eligible scheme. The result
// is always within [0,100].
func (s *Scorer) Score(scheme *models.Scheme, eligibility *models.EligibilityResult) float64 {
	score := eligibility.Confidence * s.weights.Confidence
	score += s.benefitComponent(scheme)
	score += s.easeComponent(scheme)
	score += s.popularityComponent(scheme)

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// benefitComponent normalizes the declared benefit amount on a log scale
// so a 6,000/year pension and a 10 lakh loan subsidy both land inside the
// band without the latter flattening everything else. Records without a
// parseable amount get the midpoint rather than zero, to avoid penalizing
// incomplete catalog data.
func (s *Scorer) benefitComponent(scheme *models.Scheme) float64 {
	amount, ok := utils.ParseAnnualAmount(scheme.Benefits)
	if !ok || amount <= 0 {
		return s.weights.Benefit / 2
	}

	normalized := math.Log10(float64(amount)+1) / benefitLogCeiling
	if normalized > 1 {
		normalized = 1
	}
	return normalized * s.weights.Benefit
}

// easeComponent is inversely related to the number of required documents,
// normalized against the catalog-wide maximum.
func (s *Scorer) easeComponent(scheme *models.Scheme) float64 {
	if s.maxDocuments == 0 {
		return s.weights.Ease
	}

	ratio := float64(len(scheme.Documents)) / float64(s.maxDocuments)
	if ratio > 1 {
		ratio = 1
	}
	return (1 - ratio) * s.weights.Ease
}

// popularityComponent maps an optional [0,1] usage signal onto its band,
// defaulting to the neutral midpoint when the catalog has no signal.
func (s *Scorer) popularityComponent(scheme *models.Scheme) float64 {
	if scheme.Popularity == nil {
		return s.weights.Popularity / 2
	}

	p := *scheme.Popularity
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p * s.weights.Popularity
}
