package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Summarizer is the generative capability used for contextual enrichment.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain. Any persisted vector records its dimension alongside the
// values so a model-version change is detectable.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Dimensions returns the vector dimension.
func (r EmbeddingResult) Dimensions() int { return len(r.Embedding) }
