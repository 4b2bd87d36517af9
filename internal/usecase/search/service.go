// Package search implements hybrid retrieval over the chunk store: semantic
// vector search fused with lexical full-text rank.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	domsearch "github.com/juristech/acervo/internal/domain/search"
)

// Service runs retrieval queries.
type Service struct {
	repo     Repository
	embedder Embedder
	weights  Weights
	cache    *ResultCache
	logger   *zap.Logger
}

// New creates the retrieval service. cache may be nil to disable result
// caching.
func New(
	repo Repository, embedder Embedder,
	weights Weights, cache *ResultCache, logger *zap.Logger,
) *Service {
	if weights.Vector <= 0 && weights.Lexical <= 0 {
		weights = DefaultWeights()
	}
	return &Service{
		repo:     repo,
		embedder: embedder,
		weights:  weights,
		cache:    cache,
		logger:   logger,
	}
}

// Search executes a retrieval request. Hybrid mode runs vector and lexical
// searches concurrently and fuses them; semantic mode is vector-only with
// Score = Similarity.
func (s *Service) Search(ctx context.Context, req domsearch.Request) ([]domsearch.Match, error) {
	key := cacheKey(req)
	if matches, ok := s.cache.Get(key); ok {
		s.logger.Debug("Search cache hit", zap.String("mode", string(req.Mode())))
		return matches, nil
	}

	start := time.Now()

	result, err := s.embedder.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var matches []domsearch.Match
	switch req.Mode() {
	case domsearch.Semantic:
		matches, err = s.semantic(ctx, req, result.Embedding)
	default:
		matches, err = s.hybrid(ctx, req, result.Embedding)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Search completed",
		zap.String("mode", string(req.Mode())),
		zap.Int("results", len(matches)),
		zap.Duration("duration", time.Since(start)),
	)

	s.cache.Put(key, matches)
	return matches, nil
}

func (s *Service) semantic(
	ctx context.Context, req domsearch.Request, embedding []float32,
) ([]domsearch.Match, error) {
	matches, err := s.repo.VectorSearch(ctx, embedding, req.Filter(), req.Limit(), req.Threshold())
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	for i := range matches {
		matches[i].Score = matches[i].Similarity
	}
	return matches, nil
}

func (s *Service) hybrid(
	ctx context.Context, req domsearch.Request, embedding []float32,
) ([]domsearch.Match, error) {
	var (
		wg         sync.WaitGroup
		vecMatches []domsearch.Match
		lexMatches []domsearch.Match
		vecErr     error
		lexErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		vecMatches, vecErr = s.repo.VectorSearch(
			ctx, embedding, req.Filter(), req.Limit(), req.Threshold())
	}()
	go func() {
		defer wg.Done()
		lexMatches, lexErr = s.repo.LexicalSearch(
			ctx, req.Query(), embedding, req.Filter(), req.Limit(), req.Threshold())
	}()
	wg.Wait()

	if vecErr != nil {
		return nil, fmt.Errorf("vector search: %w", vecErr)
	}
	if lexErr != nil {
		return nil, fmt.Errorf("lexical search: %w", lexErr)
	}

	return fuseWeighted(vecMatches, lexMatches, s.weights, req.Limit()), nil
}

// cacheKey identifies a request by everything that affects its result set.
func cacheKey(req domsearch.Request) string {
	docID := ""
	if f := req.Filter(); f.DocumentID != nil {
		docID = f.DocumentID.String()
	}
	return fmt.Sprintf("%s|%s|%s|%s|%d|%g",
		req.Mode(), req.Query(), docID, req.Filter().CaseNumber,
		req.Limit(), req.Threshold())
}
