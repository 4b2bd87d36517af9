// Package docstore reads documents and writes their ingestion side effects.
// Documents are owned by the acquisition subsystem; ingestion only flips
// status and embedding_processed.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juristech/acervo/internal/domain"
)

const documentColumns = `id, name, origin, raw_text, status, embedding_processed,
	tags, size_bytes, bundle_id, error_message, created_at, updated_at`

// Repo implements document reads and status writes over Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a document repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns a document by id.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

// ListByBundle returns the documents of a gazette bundle in creation order.
func (r *Repo) ListByBundle(ctx context.Context, bundleID uuid.UUID) ([]*domain.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+documentColumns+`
		 FROM documents WHERE bundle_id = $1
		 ORDER BY created_at ASC`, bundleID)
	if err != nil {
		return nil, fmt.Errorf("list bundle %s documents: %w", bundleID, err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// SetStatus updates the lifecycle status, optionally with an error message.
func (r *Repo) SetStatus(
	ctx context.Context, id uuid.UUID, status domain.DocumentStatus, errMsg string,
) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents
		 SET status = $2, error_message = $3, updated_at = now()
		 WHERE id = $1`,
		id, status, nullIfEmpty(errMsg))
	if err != nil {
		return fmt.Errorf("set document %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return nil
}

// MarkProcessed flips status to processed and sets embedding_processed.
func (r *Repo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents
		 SET status = 'processed', embedding_processed = true,
		     error_message = NULL, updated_at = now()
		 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark document %s processed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	err := row.Scan(
		&d.ID, &d.Name, &d.Origin, &d.RawText, &d.Status, &d.EmbeddingProcessed,
		&d.Tags, &d.SizeBytes, &d.BundleID, &d.ErrorMessage, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &d, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
