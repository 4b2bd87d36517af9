package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/juristech/acervo/internal/chunker"
	"github.com/juristech/acervo/internal/domain"
)

// JobQueue is the durable work list the worker claims from and reports to.
type JobQueue interface {
	ClaimNext(ctx context.Context) (*domain.IngestionJob, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.IngestionJob, error)
	SetTotal(ctx context.Context, id uuid.UUID, total int) error
	SetProgress(ctx context.Context, id uuid.UUID, done int) error
	Conclude(ctx context.Context, id uuid.UUID, done int) error
	Fail(ctx context.Context, id uuid.UUID, msg string) error
	PendingCount(ctx context.Context) (int, error)
}

// DocumentStore reads documents and records their ingestion outcome.
type DocumentStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListByBundle(ctx context.Context, bundleID uuid.UUID) ([]*domain.Document, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus, errMsg string) error
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

// ChunkStore persists embedded chunks.
type ChunkStore interface {
	Insert(ctx context.Context, c *domain.Chunk) (uuid.UUID, error)
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
}

// Chunker splits normalized text into retrieval pieces.
type Chunker interface {
	Chunk(text string) []chunker.Piece
}
