// Package http exposes the search, ingestion and health endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	healthuc "github.com/kailas-cloud/matchmaker/internal/usecase/health"
	searchuc "github.com/kailas-cloud/matchmaker/internal/usecase/search"
)

// Searcher runs the query understanding and fusion pipeline.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (*searchuc.Response, error)
}

// Ingester validates and stores job postings.
type Ingester interface {
	Ingest(ctx context.Context, job *domain.Job) error
	Remove(ctx context.Context, jobID string) error
}

// JobReader fetches a single job for GET /jobs/{id}.
type JobReader interface {
	Get(ctx context.Context, jobID string) (*domain.Job, error)
}

// HealthChecker aggregates component readiness.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// sentinelStatus maps domain sentinels to HTTP status codes.
var sentinelStatus = []struct {
	err    error
	status int
}{
	{domain.ErrInvalidQuery, http.StatusBadRequest},
	{domain.ErrInvalidJob, http.StatusBadRequest},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway},
	{domain.ErrSearchUnavailable, http.StatusServiceUnavailable},
}

// Server wires the usecases to chi routes.
type Server struct {
	search Searcher
	ingest Ingester
	jobs   JobReader
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(
	search Searcher,
	ingest Ingester,
	jobs JobReader,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		search: search,
		ingest: ingest,
		jobs:   jobs,
		health: health,
		logger: logger,
	}
}

// Routes registers all endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.handleSearch)
	r.Post("/jobs", s.handleCreateJob)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleDeleteJob)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
}

// handleSearch handles GET /search?q=...&limit=...
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	resp, err := s.search.Search(r.Context(), q, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]resultItem, 0, len(resp.Results))
	for _, res := range resp.Results {
		items = append(items, resultItem{
			jobPayload: jobToPayload(res.Job),
			Origin:     string(res.Origin),
			MatchScore: res.MatchScore,
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:   resp.Query,
		Filters: resp.Filter,
		Results: items,
		Note:    resp.Note,
	})
}

// handleCreateJob handles POST /jobs. A missing job_id is generated.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var payload jobPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if payload.JobID == "" {
		payload.JobID = uuid.NewString()
	}

	job := payloadToJob(&payload)
	if err := s.ingest.Ingest(r.Context(), job); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, jobToPayload(job))
}

// handleGetJob handles GET /jobs/{jobID}.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := s.jobs.Get(r.Context(), jobID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobToPayload(job))
}

// handleDeleteJob handles DELETE /jobs/{jobID}.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	if err := s.ingest.Remove(r.Context(), jobID); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// handleDomainError maps sentinel errors to statuses; everything else is 500.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, m := range sentinelStatus {
		if errors.Is(err, m.err) {
			writeError(w, m.status, err.Error())
			return
		}
	}
	s.logger.Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
