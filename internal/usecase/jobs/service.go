// Package jobs manages the ingestion queue from the API side: enqueueing,
// listing, cancelling, and reprocessing jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juristech/acervo/internal/domain"
)

// Service exposes queue management operations.
type Service struct {
	queue  Queue
	docs   Documents
	chunks Chunks
	logger *zap.Logger
}

// New creates the queue management service.
func New(queue Queue, docs Documents, chunks Chunks, logger *zap.Logger) *Service {
	return &Service{queue: queue, docs: docs, chunks: chunks, logger: logger}
}

// Enqueue creates a pending job for one document or one gazette bundle,
// after checking the target exists.
func (s *Service) Enqueue(
	ctx context.Context, documentID, bundleID *uuid.UUID, priority int,
) (*domain.IngestionJob, error) {
	if (documentID == nil) == (bundleID == nil) {
		return nil, fmt.Errorf("%w: exactly one of document_id or bundle_id is required",
			domain.ErrInvalidRequest)
	}

	if documentID != nil {
		if _, err := s.docs.Get(ctx, *documentID); err != nil {
			return nil, err
		}
	} else {
		docs, err := s.docs.ListByBundle(ctx, *bundleID)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, fmt.Errorf("%w: bundle %s has no documents",
				domain.ErrInvalidRequest, *bundleID)
		}
	}

	job, err := s.queue.Enqueue(ctx, documentID, bundleID, priority)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Job enqueued",
		zap.String("job_id", job.ID.String()),
		zap.Int("priority", job.Priority),
	)
	return job, nil
}

// Get returns one job by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.IngestionJob, error) {
	return s.queue.Get(ctx, id)
}

// List returns jobs, newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status domain.JobStatus) ([]*domain.IngestionJob, error) {
	switch status {
	case "", domain.JobPending, domain.JobProcessing, domain.JobConcluded, domain.JobError:
	default:
		return nil, fmt.Errorf("%w: unknown job status %q", domain.ErrInvalidRequest, status)
	}
	return s.queue.List(ctx, status)
}

// Cancel requests a cooperative stop. Pending jobs die immediately; a running
// sweep stops at the next chunk boundary.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	if err := s.queue.Cancel(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Job cancellation requested", zap.String("job_id", id.String()))
	return nil
}

// Reprocess re-runs an errored job from scratch: existing chunks of the target
// documents are deleted so the sweep never accumulates stale entries, counters
// are zeroed, and the job goes back to pending.
func (s *Service) Reprocess(ctx context.Context, id uuid.UUID) (*domain.IngestionJob, error) {
	job, err := s.queue.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobError {
		return nil, fmt.Errorf("job %s is %s: %w", id, job.Status, domain.ErrInvalidTransition)
	}

	if err := s.clearTarget(ctx, job); err != nil {
		return nil, err
	}
	if err := s.queue.Reset(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("Job requeued for reprocessing", zap.String("job_id", id.String()))
	return s.queue.Get(ctx, id)
}

func (s *Service) clearTarget(ctx context.Context, job *domain.IngestionJob) error {
	if job.DocumentID != nil {
		return s.clearDocument(ctx, *job.DocumentID)
	}

	docs, err := s.docs.ListByBundle(ctx, *job.BundleID)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.clearDocument(ctx, doc.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) clearDocument(ctx context.Context, id uuid.UUID) error {
	if err := s.chunks.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("clear chunks of document %s: %w", id, err)
	}
	return s.docs.SetStatus(ctx, id, domain.DocumentPending, "")
}
