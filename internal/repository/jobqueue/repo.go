// Package jobqueue is the durable, priority-ordered ingestion work list.
package jobqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juristech/acervo/internal/domain"
)

const jobColumns = `id, document_id, bundle_id, status, priority,
	total_chunks, chunks_done, error_message, created_at, started_at, completed_at`

// Repo implements the ingestion queue over Postgres. All coordination between
// workers and observers goes through job rows, never in-memory state.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a job queue repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Enqueue inserts a pending job for exactly one of document or bundle.
func (r *Repo) Enqueue(
	ctx context.Context, documentID, bundleID *uuid.UUID, priority int,
) (*domain.IngestionJob, error) {
	if (documentID == nil) == (bundleID == nil) {
		return nil, fmt.Errorf("%w: exactly one of document_id or bundle_id is required",
			domain.ErrInvalidRequest)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO ingestion_jobs (document_id, bundle_id, priority)
		 VALUES ($1, $2, $3)
		 RETURNING `+jobColumns,
		documentID, bundleID, priority,
	)
	return scanJob(row)
}

// ClaimNext atomically claims the highest-priority pending job (FIFO within a
// priority band) and marks it processing. SKIP LOCKED makes the claim
// exactly-once across N concurrent workers. Returns nil when the queue is empty.
func (r *Repo) ClaimNext(ctx context.Context) (*domain.IngestionJob, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE ingestion_jobs
		 SET status = 'processing', started_at = now()
		 WHERE id = (
			SELECT id FROM ingestion_jobs
			WHERE status = 'pending'
			ORDER BY priority DESC, created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED)
		 RETURNING `+jobColumns,
	)
	job, err := scanJob(row)
	if errors.Is(err, domain.ErrJobNotFound) {
		return nil, nil
	}
	return job, err
}

// Get returns a job by id.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*domain.IngestionJob, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM ingestion_jobs WHERE id = $1`, id)
	return scanJob(row)
}

// List returns jobs, newest first, optionally filtered by status.
func (r *Repo) List(ctx context.Context, status domain.JobStatus) ([]*domain.IngestionJob, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+jobColumns+`
		 FROM ingestion_jobs
		 WHERE ($1::text IS NULL OR status = $1)
		 ORDER BY created_at DESC`,
		nullIfEmpty(string(status)),
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.IngestionJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// PendingCount returns the current queue depth.
func (r *Repo) PendingCount(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM ingestion_jobs WHERE status = 'pending'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending jobs: %w", err)
	}
	return n, nil
}

// SetTotal records the chunk count once the sweep has chunked the text.
func (r *Repo) SetTotal(ctx context.Context, id uuid.UUID, total int) error {
	return r.exec(ctx, id,
		`UPDATE ingestion_jobs SET total_chunks = $2 WHERE id = $1`, total)
}

// SetProgress records chunks_done. Never lowers it: progress is monotonic and
// capped at total_chunks.
func (r *Repo) SetProgress(ctx context.Context, id uuid.UUID, done int) error {
	return r.exec(ctx, id,
		`UPDATE ingestion_jobs
		 SET chunks_done = LEAST(GREATEST(chunks_done, $2), total_chunks)
		 WHERE id = $1`, done)
}

// Conclude marks a processing job finished with its final chunk count.
func (r *Repo) Conclude(ctx context.Context, id uuid.UUID, done int) error {
	return r.transition(ctx, id,
		`UPDATE ingestion_jobs
		 SET status = 'concluded',
		     chunks_done = LEAST(GREATEST(chunks_done, $2), total_chunks),
		     completed_at = now()
		 WHERE id = $1 AND status = 'processing'`, done)
}

// Fail marks a job errored with a human-readable message.
func (r *Repo) Fail(ctx context.Context, id uuid.UUID, msg string) error {
	return r.transition(ctx, id,
		`UPDATE ingestion_jobs
		 SET status = 'error', error_message = $2, completed_at = now()
		 WHERE id = $1 AND status IN ('pending', 'processing')`, msg)
}

// Cancel requests a cooperative stop: the job is marked error with the
// cancellation sentinel and the worker stops between chunks.
func (r *Repo) Cancel(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id,
		`UPDATE ingestion_jobs
		 SET status = 'error', error_message = $2, completed_at = now()
		 WHERE id = $1 AND status IN ('pending', 'processing')`,
		domain.CancelledMessage)
}

// Reset transitions an errored job back to pending and zeroes its counters,
// clearing the error message. Only valid from error status.
func (r *Repo) Reset(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id,
		`UPDATE ingestion_jobs
		 SET status = 'pending', total_chunks = 0, chunks_done = 0,
		     error_message = NULL, started_at = NULL, completed_at = NULL
		 WHERE id = $1 AND status = 'error'`)
}

func (r *Repo) exec(ctx context.Context, id uuid.UUID, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, domain.ErrJobNotFound)
	}
	return nil
}

// transition runs a guarded status update. Zero rows affected means the job is
// either missing or not in an allowed source status.
func (r *Repo) transition(ctx context.Context, id uuid.UUID, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.Get(ctx, id); errors.Is(getErr, domain.ErrJobNotFound) {
			return fmt.Errorf("job %s: %w", id, domain.ErrJobNotFound)
		}
		return fmt.Errorf("job %s: %w", id, domain.ErrInvalidTransition)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.IngestionJob, error) {
	var j domain.IngestionJob
	err := row.Scan(
		&j.ID, &j.DocumentID, &j.BundleID, &j.Status, &j.Priority,
		&j.TotalChunks, &j.ChunksDone, &j.ErrorMessage,
		&j.CreatedAt, &j.StartedAt, &j.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return &j, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
