package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appConfig "scheme-recommendation-engine/internal/config"
	"scheme-recommendation-engine/internal/engine"
	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/services/catalog"
	"scheme-recommendation-engine/internal/utils"
)

func TestMain(m *testing.M) {
	if err := utils.InitLogger("error"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// newTestServer builds a server with an in-memory snapshot and no
// database, cache, or AWS clients, which is the file-fallback deployment.
func newTestServer(schemes ...*models.Scheme) *Server {
	s := &Server{
		config:      &appConfig.Config{TopK: 10},
		recommender: engine.NewDefaultRecommender(),
	}
	s.setCatalog(schemes, catalog.StatsFor(schemes))
	return s
}

func testSchemes() []*models.Scheme {
	pop := 0.5
	return []*models.Scheme{
		{
			ID: "pm-kisan", Name: "PM-KISAN", Level: models.SchemeLevelCentral,
			Category: "agriculture", Popularity: &pop, IsActive: true,
			EligibilityRules: []models.Rule{
				{Field: models.RuleFieldIsFarmer, Operator: models.RuleOperatorFlag},
			},
		},
		{
			ID: "mk-awas", Name: "Mukhyamantri Awas Yojana", Level: models.SchemeLevelState,
			Category: "housing", IsActive: true,
		},
		{
			ID: "open-scheme", Name: "Open Scheme", Category: "welfare", IsActive: true,
		},
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func recommendData(t *testing.T, resp Response) RecommendData {
	t.Helper()

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	var data RecommendData
	require.NoError(t, json.Unmarshal(raw, &data))
	return data
}

func TestRecommendHandlerDefaultsTopKWhenOmitted(t *testing.T) {
	s := newTestServer(testSchemes()...)

	rec, resp := postJSON(t, s.recommendHandler, "/api/recommend",
		`{"profile": {"age": 30}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)
	assert.NotEmpty(t, resp.RequestID)

	data := recommendData(t, resp)
	assert.Equal(t, 2, data.TotalMatches)
	assert.Len(t, data.Schemes, 2)
}

func TestRecommendHandlerExplicitTopKZero(t *testing.T) {
	s := newTestServer(testSchemes()...)

	// An explicit zero counts matches but returns none; it must not be
	// coerced to the default.
	rec, resp := postJSON(t, s.recommendHandler, "/api/recommend",
		`{"profile": {"age": 30}, "top_k": 0}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data := recommendData(t, resp)
	assert.Empty(t, data.Schemes)
	assert.Equal(t, 2, data.TotalMatches)
}

func TestRecommendHandlerExplicitTopKLimits(t *testing.T) {
	s := newTestServer(testSchemes()...)

	rec, resp := postJSON(t, s.recommendHandler, "/api/recommend",
		`{"profile": {"age": 30}, "top_k": 1}`)

	require.Equal(t, http.StatusOK, rec.Code)
	data := recommendData(t, resp)
	assert.Len(t, data.Schemes, 1)
	assert.Equal(t, 2, data.TotalMatches)
}

func TestRecommendHandlerRejectsInvalidProfile(t *testing.T) {
	s := newTestServer(testSchemes()...)

	rec, resp := postJSON(t, s.recommendHandler, "/api/recommend",
		`{"profile": {"age": 300}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestRecommendHandlerRejectsBadBody(t *testing.T) {
	s := newTestServer(testSchemes()...)

	rec, resp := postJSON(t, s.recommendHandler, "/api/recommend", `not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestEligibilityHandler(t *testing.T) {
	s := newTestServer(testSchemes()...)

	rec, resp := postJSON(t, s.eligibilityHandler, "/api/eligibility",
		`{"profile": {"age": 30, "is_farmer": true}, "scheme_id": "pm-kisan"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result models.EligibilityResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.True(t, result.Eligible)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestEligibilityHandlerUnknownScheme(t *testing.T) {
	s := newTestServer(testSchemes()...)

	rec, resp := postJSON(t, s.eligibilityHandler, "/api/eligibility",
		`{"profile": {"age": 30}, "scheme_id": "no-such"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
}

func listSchemes(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, []models.SchemeSummary) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.schemesHandler(rec, req)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var summaries []models.SchemeSummary
	require.NoError(t, json.Unmarshal(raw, &summaries))
	return rec, summaries
}

func TestSchemesHandlerFilters(t *testing.T) {
	s := newTestServer(testSchemes()...)

	rec, all := listSchemes(t, s, "/api/schemes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, all, 3)

	_, central := listSchemes(t, s, "/api/schemes?level=central")
	require.Len(t, central, 1)
	assert.Equal(t, "pm-kisan", central[0].ID)

	_, housing := listSchemes(t, s, "/api/schemes?category=housing")
	require.Len(t, housing, 1)
	assert.Equal(t, "mk-awas", housing[0].ID)

	_, searched := listSchemes(t, s, "/api/schemes?q=awas")
	require.Len(t, searched, 1)
	assert.Equal(t, "mk-awas", searched[0].ID)

	_, limited := listSchemes(t, s, "/api/schemes?limit=2")
	assert.Len(t, limited, 2)
}

func TestSchemeDetailHandler(t *testing.T) {
	s := newTestServer(testSchemes()...)

	req := httptest.NewRequest(http.MethodGet, "/api/schemes/pm-kisan", nil)
	rec := httptest.NewRecorder()
	s.schemeDetailHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/schemes/no-such", nil)
	rec = httptest.NewRecorder()
	s.schemeDetailHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchemeMutationsRequireDatabase(t *testing.T) {
	s := newTestServer(testSchemes()...)

	req := httptest.NewRequest(http.MethodDelete, "/api/schemes/pm-kisan", nil)
	rec := httptest.NewRecorder()
	s.schemeDetailHandler(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec2, resp := postJSON(t, s.schemesHandler, "/api/schemes",
		`{"id": "new-scheme", "name": "New Scheme"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec2.Code)
	assert.False(t, resp.Success)
}

func TestCatalogStatsHandler(t *testing.T) {
	s := newTestServer(testSchemes()...)

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/stats", nil)
	rec := httptest.NewRecorder()
	s.catalogStatsHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var stats catalog.Stats
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 3, stats.TotalSchemes)
	assert.Equal(t, 2, stats.WithoutRules)
}

func TestHandlersRejectWrongMethod(t *testing.T) {
	s := newTestServer(testSchemes()...)

	req := httptest.NewRequest(http.MethodGet, "/api/recommend", nil)
	rec := httptest.NewRecorder()
	s.recommendHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/api/schemes", nil)
	rec = httptest.NewRecorder()
	s.schemesHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
