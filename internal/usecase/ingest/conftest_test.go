package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/juristech/acervo/internal/chunker"
	"github.com/juristech/acervo/internal/domain"
)

type fakeQueue struct {
	mu       sync.Mutex
	job      *domain.IngestionJob
	claimed  bool
	progress []int // every persisted chunks_done value
}

func (q *fakeQueue) ClaimNext(context.Context) (*domain.IngestionJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.job == nil || q.claimed {
		return nil, nil
	}
	q.claimed = true
	q.job.Status = domain.JobProcessing
	cp := *q.job
	return &cp, nil
}

func (q *fakeQueue) Get(context.Context, uuid.UUID) (*domain.IngestionJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.job == nil {
		return nil, domain.ErrJobNotFound
	}
	cp := *q.job
	return &cp, nil
}

func (q *fakeQueue) SetTotal(_ context.Context, _ uuid.UUID, total int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.job.TotalChunks = total
	return nil
}

func (q *fakeQueue) SetProgress(_ context.Context, _ uuid.UUID, done int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if done > q.job.ChunksDone {
		q.job.ChunksDone = done
	}
	q.progress = append(q.progress, done)
	return nil
}

func (q *fakeQueue) Conclude(_ context.Context, _ uuid.UUID, done int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.job.Status != domain.JobProcessing {
		return domain.ErrInvalidTransition
	}
	q.job.Status = domain.JobConcluded
	if done > q.job.ChunksDone {
		q.job.ChunksDone = done
	}
	return nil
}

func (q *fakeQueue) Fail(_ context.Context, _ uuid.UUID, msg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.job.Status = domain.JobError
	q.job.ErrorMessage = &msg
	return nil
}

func (q *fakeQueue) PendingCount(context.Context) (int, error) { return 0, nil }

// cancel flips the job to error with the cancellation sentinel, as the API
// handler would.
func (q *fakeQueue) cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()
	msg := domain.CancelledMessage
	q.job.Status = domain.JobError
	q.job.ErrorMessage = &msg
}

type fakeDocs struct {
	mu        sync.Mutex
	docs      map[uuid.UUID]*domain.Document
	bundles   map[uuid.UUID][]*domain.Document
	statuses  map[uuid.UUID]domain.DocumentStatus
	errMsgs   map[uuid.UUID]string
	processed map[uuid.UUID]bool
}

func newFakeDocs(docs ...*domain.Document) *fakeDocs {
	f := &fakeDocs{
		docs:      make(map[uuid.UUID]*domain.Document),
		bundles:   make(map[uuid.UUID][]*domain.Document),
		statuses:  make(map[uuid.UUID]domain.DocumentStatus),
		errMsgs:   make(map[uuid.UUID]string),
		processed: make(map[uuid.UUID]bool),
	}
	for _, d := range docs {
		f.docs[d.ID] = d
		if d.BundleID != nil {
			f.bundles[*d.BundleID] = append(f.bundles[*d.BundleID], d)
		}
	}
	return f
}

func (f *fakeDocs) Get(_ context.Context, id uuid.UUID) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (f *fakeDocs) ListByBundle(_ context.Context, bundleID uuid.UUID) ([]*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bundles[bundleID], nil
}

func (f *fakeDocs) SetStatus(
	_ context.Context, id uuid.UUID, status domain.DocumentStatus, errMsg string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	f.errMsgs[id] = errMsg
	return nil
}

func (f *fakeDocs) MarkProcessed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = domain.DocumentProcessed
	f.processed[id] = true
	return nil
}

type fakeChunks struct {
	mu        sync.Mutex
	inserted  []*domain.Chunk
	deleted   []uuid.UUID
	insertErr func(c *domain.Chunk) error
}

func (f *fakeChunks) Insert(_ context.Context, c *domain.Chunk) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		if err := f.insertErr(c); err != nil {
			return uuid.Nil, err
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	f.inserted = append(f.inserted, &cp)
	return c.ID, nil
}

func (f *fakeChunks) DeleteByDocument(_ context.Context, documentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, documentID)
	kept := f.inserted[:0]
	for _, c := range f.inserted {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	f.inserted = kept
	return nil
}

type countingEmbedder struct {
	mu     sync.Mutex
	calls  int
	inputs []string
	failOn map[int]bool   // 1-based call numbers that fail
	onCall func(call int) // fired before each embed
}

func (e *countingEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.mu.Lock()
	e.calls++
	call := e.calls
	e.inputs = append(e.inputs, text)
	e.mu.Unlock()

	if e.onCall != nil {
		e.onCall(call)
	}
	if e.failOn[call] {
		return domain.EmbeddingResult{}, domain.ErrEmbeddingUnavailable
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 7}, nil
}

type fakeSummarizer struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	summary string
	err     error
}

func (s *fakeSummarizer) Summarize(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

type fixedChunker struct {
	pieces []chunker.Piece
}

func (c fixedChunker) Chunk(string) []chunker.Piece { return c.pieces }

func makePieces(n int) []chunker.Piece {
	pieces := make([]chunker.Piece, n)
	offset := 0
	for i := range pieces {
		content := fmt.Sprintf("trecho %d do documento", i)
		pieces[i] = chunker.Piece{
			Content:       content,
			StartOffset:   offset,
			EndOffset:     offset + len(content),
			TokenEstimate: len(content) / 4,
		}
		offset += len(content) + 2
	}
	return pieces
}

func textDoc(text string) *domain.Document {
	return &domain.Document{
		ID:      uuid.New(),
		Name:    "sentenca.pdf",
		Origin:  domain.OriginUpload,
		RawText: &text,
		Status:  domain.DocumentPending,
	}
}

func pendingJob(doc *domain.Document) *domain.IngestionJob {
	id := doc.ID
	return &domain.IngestionJob{
		ID:         uuid.New(),
		DocumentID: &id,
		Status:     domain.JobPending,
	}
}
