package jobs

import (
	"context"

	"github.com/google/uuid"

	"github.com/juristech/acervo/internal/domain"
)

// Queue is the durable job store.
type Queue interface {
	Enqueue(ctx context.Context, documentID, bundleID *uuid.UUID, priority int) (*domain.IngestionJob, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.IngestionJob, error)
	List(ctx context.Context, status domain.JobStatus) ([]*domain.IngestionJob, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	Reset(ctx context.Context, id uuid.UUID) error
}

// Documents validates enqueue targets and records reprocess side effects.
type Documents interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListByBundle(ctx context.Context, bundleID uuid.UUID) ([]*domain.Document, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus, errMsg string) error
}

// Chunks clears stale chunks before a reprocess sweep.
type Chunks interface {
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
}
