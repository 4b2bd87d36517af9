package chi

import (
	"time"

	"github.com/google/uuid"

	"github.com/juristech/acervo/internal/domain"
	domsearch "github.com/juristech/acervo/internal/domain/search"
	healthuc "github.com/juristech/acervo/internal/usecase/health"
)

// ErrorCode is the machine-readable error discriminator.
type ErrorCode string

const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeValidationFailed     ErrorCode = "validation_failed"
	CodeJobNotFound          ErrorCode = "job_not_found"
	CodeDocumentNotFound     ErrorCode = "document_not_found"
	CodeInvalidTransition    ErrorCode = "invalid_transition"
	CodeEmbeddingUnavailable ErrorCode = "embedding_unavailable"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// EnqueueJobRequest creates an ingestion job for one document or one bundle.
type EnqueueJobRequest struct {
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	BundleID   *uuid.UUID `json:"bundle_id,omitempty"`
	Priority   int        `json:"priority,omitempty"`
}

// JobResponse is the API view of an ingestion job, with derived progress.
type JobResponse struct {
	ID           uuid.UUID  `json:"id"`
	DocumentID   *uuid.UUID `json:"document_id,omitempty"`
	BundleID     *uuid.UUID `json:"bundle_id,omitempty"`
	Status       string     `json:"status"`
	Priority     int        `json:"priority"`
	TotalChunks  int        `json:"total_chunks"`
	ChunksDone   int        `json:"chunks_done"`
	Progress     int        `json:"progress"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func jobToResponse(j *domain.IngestionJob) JobResponse {
	return JobResponse{
		ID:           j.ID,
		DocumentID:   j.DocumentID,
		BundleID:     j.BundleID,
		Status:       string(j.Status),
		Priority:     j.Priority,
		TotalChunks:  j.TotalChunks,
		ChunksDone:   j.ChunksDone,
		Progress:     j.Progress(),
		ErrorMessage: j.ErrorMessage,
		CreatedAt:    j.CreatedAt,
		StartedAt:    j.StartedAt,
		CompletedAt:  j.CompletedAt,
	}
}

// JobListResponse lists jobs newest first.
type JobListResponse struct {
	Items []JobResponse `json:"items"`
	Total int           `json:"total"`
}

// SearchRequest is the retrieval query body. Limit and Threshold are pointers
// so an explicit zero is distinguishable from an omitted field: threshold 0
// means accept every similarity, not "use the server default".
type SearchRequest struct {
	Query      string     `json:"query"`
	Mode       string     `json:"mode,omitempty"`
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	CaseNumber string     `json:"case_number,omitempty"`
	Limit      *int       `json:"limit,omitempty"`
	Threshold  *float64   `json:"threshold,omitempty"`
}

// SearchResultItem is one retrieval hit.
type SearchResultItem struct {
	ChunkID    uuid.UUID `json:"chunk_id"`
	DocumentID uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary,omitempty"`
	Section    string    `json:"section,omitempty"`
	CaseNumber string    `json:"case_number,omitempty"`
	Similarity float64   `json:"similarity"`
	Rank       float64   `json:"rank"`
	Score      float64   `json:"score"`
}

func matchToItem(m domsearch.Match) SearchResultItem {
	return SearchResultItem{
		ChunkID:    m.ChunkID,
		DocumentID: m.DocumentID,
		ChunkIndex: m.ChunkIndex,
		Content:    m.Content,
		Summary:    m.Summary,
		Section:    m.Section,
		CaseNumber: m.CaseNumber,
		Similarity: m.Similarity,
		Rank:       m.Rank,
		Score:      m.Score,
	}
}

// SearchResponse lists fused retrieval results, best first.
type SearchResponse struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
}

// HealthResponse reports aggregated component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func healthToResponse(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks}
}
