// Package main provides the HTTP API server for the scheme
// recommendation engine: profile intake, recommendation and single-scheme
// eligibility endpoints backed by the matching pipeline, plus catalog
// browsing and maintenance endpoints.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"scheme-recommendation-engine/internal/config"
	"scheme-recommendation-engine/internal/engine"
	"scheme-recommendation-engine/internal/metrics"
	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/services/cache"
	"scheme-recommendation-engine/internal/services/catalog"
	"scheme-recommendation-engine/internal/services/database"
	s3service "scheme-recommendation-engine/internal/services/s3"
	"scheme-recommendation-engine/internal/services/ses"
	"scheme-recommendation-engine/internal/utils"
)

// Server holds all dependencies
type Server struct {
	db          *database.DB
	schemeRepo  *database.SchemeRepository
	recommender *engine.Recommender
	cache       *cache.RecommendationCache
	emailer     *ses.Service
	storage     *s3service.Service
	config      *config.Config

	mu      sync.RWMutex
	catalog []*models.Scheme
	stats   catalog.Stats
}

// Response represents a standard API response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// RecommendRequest is the body of POST /api/recommend. TopK is a pointer
// so an explicit 0 (valid: count matches, return none) is distinguishable
// from an omitted field, which falls back to the configured default.
type RecommendRequest struct {
	Profile models.ProfileInput `json:"profile"`
	TopK    *int                `json:"top_k,omitempty"`
}

// RecommendData is the payload of a successful recommendation response
type RecommendData struct {
	Schemes      []models.ScoredScheme `json:"schemes"`
	TotalMatches int                   `json:"total_matches"`
}

// EligibilityRequest is the body of POST /api/eligibility
type EligibilityRequest struct {
	Profile  models.ProfileInput `json:"profile"`
	SchemeID string              `json:"scheme_id"`
}

// NotifyRequest is the body of POST /api/notify
type NotifyRequest struct {
	Name    string              `json:"name"`
	Email   string              `json:"email"`
	Profile models.ProfileInput `json:"profile"`
	TopK    *int                `json:"top_k,omitempty"`
}

func main() {
	// Initialize logger first
	if err := utils.InitLogger(os.Getenv("LOG_LEVEL")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	server := &Server{
		config:      cfg,
		recommender: engine.NewRecommender(engine.WeightsForProfile(cfg.WeightProfile), engine.DefaultKeywords()),
	}

	// Database is optional: without it the server falls back to the
	// JSON catalog file.
	db, err := database.New(cfg)
	if err != nil {
		utils.Logger.Warn("could not connect to database, using catalog file", zap.Error(err))
	} else {
		server.db = db
		server.schemeRepo = database.NewSchemeRepository(db)
		defer db.Close()
	}

	if err := server.loadCatalog(context.Background()); err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// Redis is optional too; a cache outage must not block matching.
	recCache := cache.New(cfg)
	if err := recCache.Ping(context.Background()); err != nil {
		utils.Logger.Warn("recommendation cache unavailable", zap.Error(err))
	} else {
		server.cache = recCache
		defer recCache.Close()
	}

	if cfg.S3Bucket != "" {
		storage, err := s3service.NewService(context.Background())
		if err != nil {
			utils.Logger.Warn("could not initialize S3 catalog storage", zap.Error(err))
		} else {
			server.storage = storage
		}
	}

	if cfg.SESSenderEmail != "" {
		emailer, err := ses.NewService(context.Background())
		if err != nil {
			utils.Logger.Warn("could not initialize SES", zap.Error(err))
		} else {
			server.emailer = emailer
		}
	}

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/health", server.healthHandler)
	mux.HandleFunc("/api/recommend", server.recommendHandler)
	mux.HandleFunc("/api/eligibility", server.eligibilityHandler)
	mux.HandleFunc("/api/schemes", server.schemesHandler)
	mux.HandleFunc("/api/schemes/", server.schemeDetailHandler)
	mux.HandleFunc("/api/catalog/stats", server.catalogStatsHandler)
	mux.HandleFunc("/api/catalog/reload", server.catalogReloadHandler)
	mux.HandleFunc("/api/catalog/snapshot", server.catalogSnapshotHandler)
	mux.HandleFunc("/api/notify", server.notifyHandler)
	mux.Handle("/metrics", promhttp.Handler())

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	port := getEnvOrDefault("PORT", "8080")
	addr := fmt.Sprintf("0.0.0.0:%s", port)

	utils.Logger.Info("Scheme Recommendation Engine API server starting",
		zap.String("addr", addr),
		zap.Int("catalog_size", server.catalogSize()),
	)

	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadCatalog materializes the catalog snapshot, preferring the database
// and falling back to the JSON file on disk.
func (s *Server) loadCatalog(ctx context.Context) error {
	if s.schemeRepo != nil {
		schemes, err := s.schemeRepo.GetAllActive(ctx)
		if err == nil && len(schemes) > 0 {
			s.setCatalog(schemes, catalog.StatsFor(schemes))
			return nil
		}
		if err != nil {
			utils.Logger.Warn("could not load catalog from database", zap.Error(err))
		}
	}

	loaded, err := catalog.LoadFile(s.config.CatalogPath)
	if err != nil {
		return err
	}

	s.setCatalog(loaded.All(), loaded.Stats())
	return nil
}

// loadCatalogFromS3 pulls the published catalog snapshot from S3 and
// swaps it in.
func (s *Server) loadCatalogFromS3(ctx context.Context) error {
	if s.storage == nil {
		return fmt.Errorf("S3 catalog storage is not configured")
	}

	data, err := s.storage.FetchCatalog(ctx, s.config.CatalogS3Key)
	if err != nil {
		return err
	}

	loaded, err := catalog.LoadBytes(data)
	if err != nil {
		return err
	}

	s.setCatalog(loaded.All(), loaded.Stats())
	return nil
}

func (s *Server) setCatalog(schemes []*models.Scheme, stats catalog.Stats) {
	s.mu.Lock()
	s.catalog = schemes
	s.stats = stats
	s.mu.Unlock()
	metrics.CatalogSize.Set(float64(len(schemes)))
}

func (s *Server) snapshot() []*models.Scheme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

func (s *Server) catalogSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalog)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := "not configured"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err == nil {
			dbStatus = "connected"
		} else {
			dbStatus = "disconnected"
		}
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Scheme Recommendation Engine API is running",
		Data: map[string]interface{}{
			"status":       "healthy",
			"database":     dbStatus,
			"catalog_size": s.catalogSize(),
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
			"version":      getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		},
	})
}

func (s *Server) recommendHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.NewString()
	startTime := time.Now()

	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecommendationErrors.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, Response{
			Success:   false,
			Error:     "Invalid request body",
			RequestID: requestID,
		})
		return
	}

	profile := req.Profile.ToProfile()
	if err := models.ValidateProfile(profile); err != nil {
		metrics.RecommendationErrors.WithLabelValues("invalid_profile").Inc()
		writeJSON(w, http.StatusBadRequest, Response{
			Success:   false,
			Error:     err.Error(),
			RequestID: requestID,
		})
		return
	}

	topK := s.config.TopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	if s.cache != nil {
		if cached := s.cache.Get(r.Context(), profile, topK); cached != nil {
			metrics.RecommendationsServed.WithLabelValues("cache").Inc()
			writeJSON(w, http.StatusOK, Response{
				Success:   true,
				Data:      RecommendData{Schemes: cached.Schemes, TotalMatches: cached.TotalMatches},
				RequestID: requestID,
			})
			return
		}
	}

	result, err := s.recommender.Recommend(profile, s.snapshot(), topK)
	if err != nil {
		metrics.RecommendationErrors.WithLabelValues("engine").Inc()
		writeJSON(w, http.StatusInternalServerError, Response{
			Success:   false,
			Error:     err.Error(),
			RequestID: requestID,
		})
		return
	}

	if s.cache != nil {
		s.cache.Set(r.Context(), profile, topK, result)
	}

	metrics.RecommendationsServed.WithLabelValues("engine").Inc()
	metrics.RecommendationDuration.Observe(time.Since(startTime).Seconds())
	metrics.EligibleSchemes.Observe(float64(result.TotalMatches))

	writeJSON(w, http.StatusOK, Response{
		Success:   true,
		Data:      RecommendData{Schemes: result.Schemes, TotalMatches: result.TotalMatches},
		RequestID: requestID,
	})
}

// eligibilityHandler re-checks a single scheme against a profile,
// independent of the batch flow, so the UI can refresh one card after a
// profile edit.
func (s *Server) eligibilityHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	scheme := s.findScheme(req.SchemeID)
	if scheme == nil {
		writeJSON(w, http.StatusNotFound, Response{Success: false, Error: "Scheme not found"})
		return
	}

	profile := req.Profile.ToProfile()
	if err := models.ValidateProfile(profile); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	result, err := engine.CheckEligibility(profile, scheme)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

func (s *Server) findScheme(id string) *models.Scheme {
	for _, scheme := range s.snapshot() {
		if scheme.ID == id {
			return scheme
		}
	}
	return nil
}

func (s *Server) schemesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listSchemes(w, r)
	case http.MethodPost:
		s.createScheme(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listSchemes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	levelFilter := models.SchemeLevel(query.Get("level"))
	categoryFilter := query.Get("category")
	search := query.Get("q")
	limit, _ := strconv.Atoi(query.Get("limit"))

	schemes, err := s.schemesFor(r.Context(), levelFilter, categoryFilter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list schemes"})
		return
	}

	summaries := make([]models.SchemeSummary, 0)
	for _, scheme := range schemes {
		if levelFilter != models.SchemeLevelUnspecified && scheme.Level != levelFilter {
			continue
		}
		if categoryFilter != "" && scheme.Category != categoryFilter {
			continue
		}
		if search != "" && !matchesSearch(scheme, search) {
			continue
		}
		summaries = append(summaries, scheme.ToSummary())
		if limit > 0 && len(summaries) >= limit {
			break
		}
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: summaries})
}

// schemesFor picks the listing source: repository-backed level and
// category filters when the database is configured, the in-memory
// snapshot otherwise.
func (s *Server) schemesFor(ctx context.Context, level models.SchemeLevel, category string) ([]*models.Scheme, error) {
	if s.schemeRepo == nil {
		return s.snapshot(), nil
	}

	switch {
	case level != models.SchemeLevelUnspecified:
		return s.schemeRepo.GetByLevel(ctx, level)
	case category != "":
		return s.schemeRepo.GetByCategory(ctx, category)
	default:
		return s.snapshot(), nil
	}
}

// createScheme adds a new catalog record through the repository and
// refreshes the snapshot so it becomes matchable immediately.
func (s *Server) createScheme(w http.ResponseWriter, r *http.Request) {
	if s.schemeRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Scheme creation requires the database",
		})
		return
	}

	var req models.SchemeCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	if err := s.schemeRepo.Create(r.Context(), &req); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrEmptySchemeID) || errors.Is(err, models.ErrEmptySchemeName) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, Response{Success: false, Error: err.Error()})
		return
	}

	s.refreshAfterCatalogChange(r.Context())

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Scheme created",
		Data:    map[string]interface{}{"id": req.ID},
	})
}

func matchesSearch(scheme *models.Scheme, query string) bool {
	haystack := strings.ToLower(fmt.Sprintf("%s %s %s %s", scheme.Name, scheme.Description, scheme.Ministry, scheme.Benefits))
	return strings.Contains(haystack, strings.ToLower(query))
}

func (s *Server) schemeDetailHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/api/schemes/"):]

	switch r.Method {
	case http.MethodGet:
		s.getScheme(w, r, id)
	case http.MethodDelete:
		s.deactivateScheme(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) getScheme(w http.ResponseWriter, r *http.Request, id string) {
	if s.schemeRepo != nil {
		scheme, err := s.schemeRepo.GetByID(r.Context(), id)
		if errors.Is(err, models.ErrSchemeNotFound) {
			writeJSON(w, http.StatusNotFound, Response{Success: false, Error: "Scheme not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load scheme"})
			return
		}
		writeJSON(w, http.StatusOK, Response{Success: true, Data: scheme})
		return
	}

	scheme := s.findScheme(id)
	if scheme == nil {
		writeJSON(w, http.StatusNotFound, Response{Success: false, Error: "Scheme not found"})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: scheme})
}

// deactivateScheme soft-deletes a scheme and refreshes the snapshot so it
// stops matching immediately.
func (s *Server) deactivateScheme(w http.ResponseWriter, r *http.Request, id string) {
	if s.schemeRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Scheme deactivation requires the database",
		})
		return
	}

	if err := s.schemeRepo.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrSchemeNotFound) {
			writeJSON(w, http.StatusNotFound, Response{Success: false, Error: "Scheme not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to deactivate scheme"})
		return
	}

	s.refreshAfterCatalogChange(r.Context())

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Scheme deactivated"})
}

// refreshAfterCatalogChange reloads the snapshot and drops cached
// recommendations computed against the old catalog. Best effort: a failed
// refresh leaves the previous snapshot serving until the next reload.
func (s *Server) refreshAfterCatalogChange(ctx context.Context) {
	if err := s.loadCatalog(ctx); err != nil {
		utils.Logger.Warn("failed to refresh catalog snapshot", zap.Error(err))
	}
	if s.cache != nil {
		if err := s.cache.Flush(ctx); err != nil {
			utils.Logger.Warn("failed to flush recommendation cache", zap.Error(err))
		}
	}
}

func (s *Server) catalogStatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	stats := s.stats
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, Response{Success: true, Data: stats})
}

// catalogReloadHandler re-materializes the catalog snapshot and drops the
// recommendation cache, which would otherwise serve results computed
// against the old snapshot until TTL expiry.
func (s *Server) catalogReloadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var err error
	if r.URL.Query().Get("source") == "s3" {
		err = s.loadCatalogFromS3(r.Context())
	} else {
		err = s.loadCatalog(r.Context())
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to reload catalog: " + err.Error(),
		})
		return
	}

	if s.cache != nil {
		if err := s.cache.Flush(r.Context()); err != nil {
			utils.Logger.Warn("failed to flush recommendation cache after reload", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Catalog reloaded",
		Data:    map[string]interface{}{"catalog_size": s.catalogSize()},
	})
}

// catalogSnapshotHandler publishes the current catalog snapshot to S3 so
// Lambda deployments and other environments can reload from it.
func (s *Server) catalogSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.storage == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "S3 catalog storage is not configured",
		})
		return
	}

	data, err := json.Marshal(s.snapshot())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	if err := s.storage.UploadCatalog(r.Context(), s.config.CatalogS3Key, data); err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to upload catalog snapshot",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Catalog snapshot published",
		Data: map[string]interface{}{
			"key":          s.config.CatalogS3Key,
			"catalog_size": s.catalogSize(),
		},
	})
}

func (s *Server) notifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.emailer == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Email notifications are not configured",
		})
		return
	}

	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Email is required"})
		return
	}

	profile := req.Profile.ToProfile()
	if err := models.ValidateProfile(profile); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	topK := s.config.TopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	result, err := s.recommender.Recommend(profile, s.snapshot(), topK)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	if result.TotalMatches == 0 {
		writeJSON(w, http.StatusOK, Response{
			Success: false,
			Error:   "No matching schemes found for this profile",
		})
		return
	}

	params := ses.BuildDigestParams(req.Name, req.Email, result, getEnvOrDefault("PORTAL_URL", ""))
	sent, err := s.emailer.SendSchemeDigest(r.Context(), params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to send digest email"})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Digest email sent",
		Data: map[string]interface{}{
			"message_id":    sent.MessageID,
			"matched_count": result.TotalMatches,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
