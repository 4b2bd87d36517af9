package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/juristech/acervo/internal/db"
	"github.com/juristech/acervo/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	data     map[string][]byte
	counters map[string]int64
	expired  map[string]time.Duration
	getErr   error
	setErr   error
}

func newMockStore() *mockStore {
	return &mockStore{
		data:     make(map[string][]byte),
		counters: make(map[string]int64),
		expired:  make(map[string]time.Duration),
	}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	m.counters[key] += val
	return nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.expired[key] = ttl
	return nil
}

// mockEmbedder counts inner calls.
type mockEmbedder struct {
	vec    []float32
	err    error
	calls  int
	tokens int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: m.tokens}, nil
}

func newTestCache(t *testing.T, inner domain.Embedder) (*CachedEmbedder, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(inner, ms, time.Hour, nil, zap.NewNop()), ms
}
