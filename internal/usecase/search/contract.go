package search

import (
	"context"

	"github.com/juristech/acervo/internal/domain"
	domsearch "github.com/juristech/acervo/internal/domain/search"
)

// Repository defines the storage contract for retrieval.
type Repository interface {
	VectorSearch(
		ctx context.Context, embedding []float32,
		f domsearch.Filter, limit int, threshold float64,
	) ([]domsearch.Match, error)

	LexicalSearch(
		ctx context.Context, query string, embedding []float32,
		f domsearch.Filter, limit int, threshold float64,
	) ([]domsearch.Match, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
