package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-recommendation-engine/internal/engine"
	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/utils"
)

func TestMain(m *testing.M) {
	if err := utils.InitLogger("error"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestRecommendHandler(schemes []*models.Scheme) *RecommendHandler {
	return &RecommendHandler{
		loadCatalog: func(ctx context.Context) ([]*models.Scheme, error) {
			return schemes, nil
		},
		recommender: engine.NewDefaultRecommender(),
		defaultTopK: 10,
	}
}

func handlerSchemes() []*models.Scheme {
	return []*models.Scheme{
		{ID: "open-a", Name: "Open Scheme A", IsActive: true},
		{ID: "open-b", Name: "Open Scheme B", IsActive: true},
		{
			ID: "farmers", Name: "Farmer Support", IsActive: true,
			EligibilityRules: []models.Rule{
				{Field: models.RuleFieldIsFarmer, Operator: models.RuleOperatorFlag},
			},
		},
	}
}

func invoke(t *testing.T, h *RecommendHandler, body string) (int, RecommendResponse) {
	t.Helper()

	out, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: body})
	require.NoError(t, err)

	var resp RecommendResponse
	require.NoError(t, json.Unmarshal([]byte(out.Body), &resp))
	return out.StatusCode, resp
}

func TestHandleRecommendDefaultsTopKWhenOmitted(t *testing.T) {
	h := newTestRecommendHandler(handlerSchemes())

	status, resp := invoke(t, h, `{"profile": {"age": 30}}`)

	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.Success)
	assert.Equal(t, 2, resp.TotalMatches)
	assert.Len(t, resp.Schemes, 2)
}

func TestHandleRecommendExplicitTopKZero(t *testing.T) {
	h := newTestRecommendHandler(handlerSchemes())

	// Explicit zero means count matches, return none; it must not fall
	// back to the default.
	status, resp := invoke(t, h, `{"profile": {"age": 30}, "top_k": 0}`)

	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.Success)
	assert.Empty(t, resp.Schemes)
	assert.Equal(t, 2, resp.TotalMatches)
}

func TestHandleRecommendExplicitTopKLimits(t *testing.T) {
	h := newTestRecommendHandler(handlerSchemes())

	status, resp := invoke(t, h, `{"profile": {"age": 30, "is_farmer": true}, "top_k": 1}`)

	require.Equal(t, http.StatusOK, status)
	assert.Len(t, resp.Schemes, 1)
	assert.Equal(t, 3, resp.TotalMatches)
}

func TestHandleRecommendRejectsBadBody(t *testing.T) {
	h := newTestRecommendHandler(handlerSchemes())

	status, resp := invoke(t, h, `not json`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, resp.Success)
}

func TestHandleRecommendRejectsInvalidProfile(t *testing.T) {
	h := newTestRecommendHandler(handlerSchemes())

	status, resp := invoke(t, h, `{"profile": {"age": -5}}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}
