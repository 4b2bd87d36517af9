// Package chi is the HTTP API: queue management, retrieval, and health.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/juristech/acervo/internal/domain"
	domsearch "github.com/juristech/acervo/internal/domain/search"
	healthuc "github.com/juristech/acervo/internal/usecase/health"
	jobsuc "github.com/juristech/acervo/internal/usecase/jobs"
	searchuc "github.com/juristech/acervo/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	jobs          *jobsuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler

	defaultLimit     int
	defaultThreshold float64
}

// NewServer creates an HTTP API server.
func NewServer(
	jobs *jobsuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		jobs:   jobs,
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrJobNotFound, http.StatusNotFound, CodeJobNotFound),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound),
		sentinelHandler(domain.ErrInvalidTransition, http.StatusConflict, CodeInvalidTransition),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, CodeEmbeddingUnavailable),
	}
	return s
}

// WithSearchDefaults fills limit and threshold when a search request omits
// them.
func (s *Server) WithSearchDefaults(limit int, threshold float64) *Server {
	s.defaultLimit = limit
	s.defaultThreshold = threshold
	return s
}

// Register mounts every route on the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/jobs", s.EnqueueJob)
		r.Get("/jobs", s.ListJobs)
		r.Get("/jobs/{id}", s.GetJob)
		r.Post("/jobs/{id}/reprocess", s.ReprocessJob)
		r.Post("/jobs/{id}/cancel", s.CancelJob)
		r.Post("/search", s.Search)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// EnqueueJob handles POST /v1/jobs.
func (s *Server) EnqueueJob(w http.ResponseWriter, r *http.Request) {
	var req EnqueueJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	job, err := s.jobs.Enqueue(r.Context(), req.DocumentID, req.BundleID, req.Priority)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, jobToResponse(job))
}

// ListJobs handles GET /v1/jobs.
func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request) {
	status := domain.JobStatus(r.URL.Query().Get("status"))

	jobs, err := s.jobs.List(r.Context(), status)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		items[i] = jobToResponse(j)
	}
	writeJSON(w, http.StatusOK, JobListResponse{Items: items, Total: len(items)})
}

// GetJob handles GET /v1/jobs/{id}.
func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	job, err := s.jobs.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobToResponse(job))
}

// ReprocessJob handles POST /v1/jobs/{id}/reprocess.
func (s *Server) ReprocessJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	job, err := s.jobs.Reprocess(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobToResponse(job))
}

// CancelJob handles POST /v1/jobs/{id}/cancel.
func (s *Server) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	if err := s.jobs.Cancel(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	limit := s.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	threshold := s.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	filter := domsearch.Filter{DocumentID: req.DocumentID, CaseNumber: req.CaseNumber}
	searchReq, err := domsearch.NewRequest(
		req.Query, domsearch.Mode(req.Mode), filter, limit, threshold)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	matches, err := s.search.Search(r.Context(), searchReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SearchResultItem, len(matches))
	for i, m := range matches {
		items[i] = matchToItem(m)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: items, Total: len(items)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthToResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid job id")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrJobNotFound,
		domain.ErrDocumentNotFound,
		domain.ErrInvalidTransition,
		domain.ErrEmbeddingUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
