// Package chunkstore persists chunks with dual vector and lexical indexing.
package chunkstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/juristech/acervo/internal/domain"
	"github.com/juristech/acervo/internal/domain/search"
)

// Repo implements the chunk store over Postgres. The lexical index is a
// generated tsvector column, so it can never drift from the content, and the
// FK cascade keeps both indexes free of dangling entries after delete.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a chunk repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Insert persists one chunk and returns its id.
func (r *Repo) Insert(ctx context.Context, c *domain.Chunk) (uuid.UUID, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	var emb *pgvector.Vector
	var dim *int
	if c.Embedding != nil {
		v := pgvector.NewVector(c.Embedding)
		emb = &v
		d := len(c.Embedding)
		dim = &d
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO chunks (
			id, document_id, chunk_index, content, context_summary,
			embedding, embedding_dim, case_number, section, token_estimate,
			parent_chunk_id, start_offset, end_offset)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.DocumentID, c.ChunkIndex, c.Content, nullIfEmpty(c.ContextSummary),
		emb, dim, nullIfEmpty(c.CaseNumber), nullIfEmpty(c.Section), c.TokenEstimate,
		c.ParentChunkID, c.StartOffset, c.EndOffset,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert chunk %d of document %s: %w: %w",
			c.ChunkIndex, c.DocumentID, domain.ErrStoreWriteFailed, err)
	}
	return c.ID, nil
}

// DeleteByDocument removes every chunk of a document. Called before a
// reprocess sweep so stale chunks never accumulate.
func (r *Repo) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM chunks WHERE document_id = $1`, documentID,
	); err != nil {
		return fmt.Errorf("delete chunks of document %s: %w", documentID, err)
	}
	return nil
}

// VectorSearch returns chunks by cosine similarity, best first. Matches below
// threshold are excluded here, before any fusion happens.
func (r *Repo) VectorSearch(
	ctx context.Context, embedding []float32, f search.Filter, limit int, threshold float64,
) ([]search.Match, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := r.pool.Query(ctx,
		`SELECT id, document_id, chunk_index, content,
		        COALESCE(context_summary, ''), COALESCE(section, ''),
		        COALESCE(case_number, ''),
		        1 - (embedding <=> $1) AS similarity
		 FROM chunks
		 WHERE embedding IS NOT NULL
		   AND ($2::uuid IS NULL OR document_id = $2)
		   AND ($3::text IS NULL OR case_number = $3)
		   AND 1 - (embedding <=> $1) >= $4
		 ORDER BY embedding <=> $1 ASC, chunk_index ASC
		 LIMIT $5`,
		vec, f.DocumentID, nullIfEmpty(f.CaseNumber), threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows, func(m *search.Match, score float64) {
		m.Similarity = score
	})
}

// LexicalSearch returns chunks by Portuguese full-text rank, best first. The
// query embedding gates the result set by the same similarity threshold the
// vector search applies, so a chunk below threshold cannot surface through its
// lexical rank alone.
func (r *Repo) LexicalSearch(
	ctx context.Context, query string, embedding []float32,
	f search.Filter, limit int, threshold float64,
) ([]search.Match, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.document_id, c.chunk_index, c.content,
		        COALESCE(c.context_summary, ''), COALESCE(c.section, ''),
		        COALESCE(c.case_number, ''),
		        ts_rank_cd(c.content_tsv, q) AS rank
		 FROM chunks c, plainto_tsquery('portuguese', $1) q
		 WHERE c.content_tsv @@ q
		   AND c.embedding IS NOT NULL
		   AND 1 - (c.embedding <=> $2) >= $3
		   AND ($4::uuid IS NULL OR c.document_id = $4)
		   AND ($5::text IS NULL OR c.case_number = $5)
		 ORDER BY rank DESC, c.chunk_index ASC
		 LIMIT $6`,
		query, vec, threshold, f.DocumentID, nullIfEmpty(f.CaseNumber), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows, func(m *search.Match, score float64) {
		m.Rank = score
	})
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMatches(rows rowScanner, assign func(*search.Match, float64)) ([]search.Match, error) {
	var matches []search.Match
	for rows.Next() {
		var m search.Match
		var score float64
		if err := rows.Scan(
			&m.ChunkID, &m.DocumentID, &m.ChunkIndex, &m.Content,
			&m.Summary, &m.Section, &m.CaseNumber, &score,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		assign(&m, score)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
