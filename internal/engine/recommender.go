package engine

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/utils"
)

// DefaultTopK is the number of ranked schemes returned when the caller
// does not ask for a specific count.
const DefaultTopK = 10

// Recommender drives the full matching pipeline: eligibility filter,
// relevance scoring, origin tagging, deterministic sort and top-K
// truncation. It holds only immutable configuration, so a single instance
// is safe for concurrent use.
type Recommender struct {
	weights    Weights
	classifier *Classifier
}

// NewRecommender creates a recommender with the given scoring weights and
// classifier keyword configuration.
func NewRecommender(weights Weights, keywords KeywordConfig) *Recommender {
	return &Recommender{
		weights:    weights,
		classifier: NewClassifier(keywords),
	}
}

// NewDefaultRecommender creates a recommender with balanced weights and
// the stock keyword sets.
func NewDefaultRecommender() *Recommender {
	return NewRecommender(BalancedWeights(), DefaultKeywords())
}

// Recommend matches a profile against a materialized catalog snapshot and
// returns the ranked eligible schemes.
//
// The pipeline is a pure function of (profile, catalog, topK): identical
// inputs always produce the identical ordered result. An empty catalog or
// zero eligible schemes yields an empty result, not an error; topK <= 0
// yields an empty scheme list while still reporting TotalMatches.
func (r *Recommender) Recommend(profile *models.Profile, catalog []*models.Scheme, topK int) (*models.RecommendationResult, error) {
	if profile == nil {
		return nil, models.ErrNilProfile
	}

	startTime := time.Now()
	scorer := NewScorer(r.weights, catalog)

	scored := make([]models.ScoredScheme, 0, len(catalog))
	for _, scheme := range catalog {
		if scheme == nil || !scheme.IsActive {
			continue
		}

		eligibility, err := CheckEligibility(profile, scheme)
		if err != nil {
			return nil, err
		}
		if !eligibility.Eligible {
			continue
		}

		if len(scheme.EligibilityRules) == 0 {
			utils.Logger.Debug("scheme has no eligibility rules, treating as universally eligible",
				zap.String("scheme_id", scheme.ID),
				zap.String("scheme_name", scheme.Name),
			)
		}

		scored = append(scored, models.ScoredScheme{
			Scheme:         *scheme,
			Eligibility:    *eligibility,
			RelevanceScore: scorer.Score(scheme, eligibility),
			Origin:         r.classifier.Classify(scheme),
		})
	}

	sortScored(scored)

	totalMatches := len(scored)
	if topK <= 0 {
		scored = scored[:0]
	} else if topK < len(scored) {
		scored = scored[:topK]
	}

	utils.Logger.Info("recommendation pipeline complete",
		zap.Int("catalog_size", len(catalog)),
		zap.Int("total_matches", totalMatches),
		zap.Int("returned", len(scored)),
		zap.Int("top_k", topK),
		zap.Duration("processing_time", time.Since(startTime)),
	)

	return &models.RecommendationResult{
		Schemes:      scored,
		TotalMatches: totalMatches,
	}, nil
}

// sortScored orders schemes by relevance score descending, breaking ties
// by case-insensitive scheme name ascending. The explicit tie-break keeps
// the ordering reproducible across runs regardless of input order.
func sortScored(scored []models.ScoredScheme) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].RelevanceScore != scored[j].RelevanceScore {
			return scored[i].RelevanceScore > scored[j].RelevanceScore
		}
		return strings.ToLower(scored[i].Scheme.Name) < strings.ToLower(scored[j].Scheme.Name)
	})
}
