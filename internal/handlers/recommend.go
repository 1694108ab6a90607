// Package handlers provides Lambda handlers for the scheme recommendation engine.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	appConfig "scheme-recommendation-engine/internal/config"
	"scheme-recommendation-engine/internal/engine"
	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/services/database"
	"scheme-recommendation-engine/internal/utils"
)

// RecommendHandler serves recommendation requests behind API Gateway.
// loadCatalog abstracts the snapshot source so tests can supply a fixed
// catalog instead of a live database.
type RecommendHandler struct {
	db          *database.DB
	loadCatalog func(ctx context.Context) ([]*models.Scheme, error)
	recommender *engine.Recommender
	defaultTopK int
}

// RecommendRequest is the Lambda request payload. TopK is a pointer so an
// explicit 0 (count matches, return none) is distinguishable from an
// omitted field, which falls back to the configured default.
type RecommendRequest struct {
	Profile models.ProfileInput `json:"profile"`
	TopK    *int                `json:"top_k,omitempty"`
}

// RecommendResponse is the Lambda response payload.
type RecommendResponse struct {
	Success      bool                  `json:"success"`
	Schemes      []models.ScoredScheme `json:"schemes"`
	TotalMatches int                   `json:"total_matches"`
	Error        string                `json:"error,omitempty"`
}

// NewRecommendHandler creates a recommend handler with its own catalog
// connection.
func NewRecommendHandler() (*RecommendHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}

	repo := database.NewSchemeRepository(db)

	return &RecommendHandler{
		db:          db,
		loadCatalog: repo.GetAllActive,
		recommender: engine.NewRecommender(engine.WeightsForProfile(cfg.WeightProfile), engine.DefaultKeywords()),
		defaultTopK: cfg.TopK,
	}, nil
}

// Handle processes a recommendation request.
func (h *RecommendHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Access-Control-Allow-Origin": "*",
		"Content-Type":                "application/json",
	}

	var req RecommendRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return respond(http.StatusBadRequest, headers, RecommendResponse{
			Success: false,
			Error:   "invalid request body",
		})
	}

	profile := req.Profile.ToProfile()
	if err := models.ValidateProfile(profile); err != nil {
		return respond(http.StatusBadRequest, headers, RecommendResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	catalog, err := h.loadCatalog(ctx)
	if err != nil {
		utils.Logger.Error("failed to load catalog", zap.Error(err))
		return respond(http.StatusInternalServerError, headers, RecommendResponse{
			Success: false,
			Error:   "failed to load scheme catalog",
		})
	}

	topK := h.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	result, err := h.recommender.Recommend(profile, catalog, topK)
	if err != nil {
		return respond(http.StatusInternalServerError, headers, RecommendResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	return respond(http.StatusOK, headers, RecommendResponse{
		Success:      true,
		Schemes:      result.Schemes,
		TotalMatches: result.TotalMatches,
	})
}

// Close cleans up resources.
func (h *RecommendHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}

func respond(status int, headers map[string]string, payload RecommendResponse) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(payload)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}, nil
}
