package search

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/juristech/acervo/internal/domain"
	domsearch "github.com/juristech/acervo/internal/domain/search"
)

type mockRepo struct {
	vectorFn  func(ctx context.Context, embedding []float32, f domsearch.Filter, limit int, threshold float64) ([]domsearch.Match, error)
	lexicalFn func(ctx context.Context, query string, embedding []float32, f domsearch.Filter, limit int, threshold float64) ([]domsearch.Match, error)

	vectorCalls  int
	lexicalCalls int
}

func (m *mockRepo) VectorSearch(
	ctx context.Context, embedding []float32,
	f domsearch.Filter, limit int, threshold float64,
) ([]domsearch.Match, error) {
	m.vectorCalls++
	if m.vectorFn == nil {
		return nil, nil
	}
	return m.vectorFn(ctx, embedding, f, limit, threshold)
}

func (m *mockRepo) LexicalSearch(
	ctx context.Context, query string, embedding []float32,
	f domsearch.Filter, limit int, threshold float64,
) ([]domsearch.Match, error) {
	m.lexicalCalls++
	if m.lexicalFn == nil {
		return nil, nil
	}
	return m.lexicalFn(ctx, query, embedding, f, limit, threshold)
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.embedFn == nil {
		return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}, nil
	}
	return m.embedFn(ctx, text)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func vecMatch(id uuid.UUID, index int, sim float64) domsearch.Match {
	return domsearch.Match{
		ChunkID:    id,
		DocumentID: uuid.New(),
		ChunkIndex: index,
		Content:    "chunk content",
		Similarity: sim,
	}
}

func lexMatch(id uuid.UUID, index int, rank float64) domsearch.Match {
	return domsearch.Match{
		ChunkID:    id,
		DocumentID: uuid.New(),
		ChunkIndex: index,
		Content:    "chunk content",
		Rank:       rank,
	}
}
