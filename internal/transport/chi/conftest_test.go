package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juristech/acervo/internal/domain"
	domsearch "github.com/juristech/acervo/internal/domain/search"
	healthuc "github.com/juristech/acervo/internal/usecase/health"
	jobsuc "github.com/juristech/acervo/internal/usecase/jobs"
	searchuc "github.com/juristech/acervo/internal/usecase/search"
)

type stubQueue struct {
	enqueueFn func(ctx context.Context, documentID, bundleID *uuid.UUID, priority int) (*domain.IngestionJob, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*domain.IngestionJob, error)
	listFn    func(ctx context.Context, status domain.JobStatus) ([]*domain.IngestionJob, error)
	cancelFn  func(ctx context.Context, id uuid.UUID) error
	resetFn   func(ctx context.Context, id uuid.UUID) error
}

func (s *stubQueue) Enqueue(
	ctx context.Context, documentID, bundleID *uuid.UUID, priority int,
) (*domain.IngestionJob, error) {
	return s.enqueueFn(ctx, documentID, bundleID, priority)
}

func (s *stubQueue) Get(ctx context.Context, id uuid.UUID) (*domain.IngestionJob, error) {
	return s.getFn(ctx, id)
}

func (s *stubQueue) List(
	ctx context.Context, status domain.JobStatus,
) ([]*domain.IngestionJob, error) {
	return s.listFn(ctx, status)
}

func (s *stubQueue) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.cancelFn(ctx, id)
}

func (s *stubQueue) Reset(ctx context.Context, id uuid.UUID) error {
	if s.resetFn == nil {
		return nil
	}
	return s.resetFn(ctx, id)
}

type stubDocs struct{}

func (stubDocs) Get(_ context.Context, id uuid.UUID) (*domain.Document, error) {
	return &domain.Document{ID: id}, nil
}

func (stubDocs) ListByBundle(context.Context, uuid.UUID) ([]*domain.Document, error) {
	return nil, nil
}

func (stubDocs) SetStatus(context.Context, uuid.UUID, domain.DocumentStatus, string) error {
	return nil
}

type stubChunks struct{}

func (stubChunks) DeleteByDocument(context.Context, uuid.UUID) error { return nil }

type stubSearchRepo struct {
	vectorFn  func(ctx context.Context, embedding []float32, f domsearch.Filter, limit int, threshold float64) ([]domsearch.Match, error)
	lexicalFn func(ctx context.Context, query string, embedding []float32, f domsearch.Filter, limit int, threshold float64) ([]domsearch.Match, error)
}

func (s *stubSearchRepo) VectorSearch(
	ctx context.Context, embedding []float32,
	f domsearch.Filter, limit int, threshold float64,
) ([]domsearch.Match, error) {
	if s.vectorFn == nil {
		return nil, nil
	}
	return s.vectorFn(ctx, embedding, f, limit, threshold)
}

func (s *stubSearchRepo) LexicalSearch(
	ctx context.Context, query string, embedding []float32,
	f domsearch.Filter, limit int, threshold float64,
) ([]domsearch.Match, error) {
	if s.lexicalFn == nil {
		return nil, nil
	}
	return s.lexicalFn(ctx, query, embedding, f, limit, threshold)
}

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(context.Context) error { return s.err }

type serverFixture struct {
	queue  *stubQueue
	repo   *stubSearchRepo
	emb    *stubEmbedder
	db     *stubPinger
	router http.Handler
}

func newServerFixture() *serverFixture {
	return newServerFixtureWithDefaults(0, 0)
}

func newServerFixtureWithDefaults(limit int, threshold float64) *serverFixture {
	f := &serverFixture{
		queue: &stubQueue{},
		repo:  &stubSearchRepo{},
		emb:   &stubEmbedder{},
		db:    &stubPinger{},
	}

	logger := zap.NewNop()
	jobsSvc := jobsuc.New(f.queue, stubDocs{}, stubChunks{}, logger)
	searchSvc := searchuc.New(f.repo, f.emb, searchuc.DefaultWeights(), nil, logger)
	healthSvc := healthuc.New(f.db, nil, nil)

	server := NewServer(jobsSvc, searchSvc, healthSvc, logger).
		WithSearchDefaults(limit, threshold)
	r := chirouter.NewRouter()
	server.Register(r)
	f.router = r
	return f
}

func (f *serverFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}
