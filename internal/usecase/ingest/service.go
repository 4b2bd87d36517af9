// Package ingest runs the background ingestion sweep: claim a job, chunk the
// document text, enrich and embed each chunk, and persist it to the store.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/juristech/acervo/internal/chunker"
	"github.com/juristech/acervo/internal/domain"
	"github.com/juristech/acervo/internal/metrics"
)

// Options tunes the worker loop and per-chunk behavior.
type Options struct {
	PollInterval  time.Duration // queue poll period when idle
	ChunkDelay    time.Duration // pause between chunks, throttles the provider
	ProgressEvery int           // persist chunks_done every N stored chunks
	EnrichEnabled bool
	EnrichTimeout time.Duration
	EmbedTimeout  time.Duration
	PreviewChars  int // document preview size fed to the enrichment prompt
}

// DefaultOptions returns the production worker tuning.
func DefaultOptions() Options {
	return Options{
		PollInterval:  5 * time.Second,
		ChunkDelay:    200 * time.Millisecond,
		ProgressEvery: 5,
		EnrichEnabled: true,
		EnrichTimeout: 30 * time.Second,
		EmbedTimeout:  30 * time.Second,
		PreviewChars:  2000,
	}
}

// enrichPromptTemplate situates a chunk within its document so the stored
// embedding carries document-level context.
const enrichPromptTemplate = `Documento: %s

Início do documento:
%s

Trecho a situar:
%s

Escreva uma única frase curta situando o trecho acima dentro do documento, para melhorar sua recuperação em buscas. Responda somente com a frase.`

// Service is the ingestion worker. One Service processes one job at a time;
// run several instances for parallelism, the queue claim is exactly-once.
type Service struct {
	jobs       JobQueue
	docs       DocumentStore
	chunks     ChunkStore
	chunker    Chunker
	embedder   domain.Embedder
	summarizer domain.Summarizer
	opts       Options
	logger     *zap.Logger
}

// New creates the ingestion worker. summarizer may be nil, which disables
// enrichment regardless of options.
func New(
	jobs JobQueue, docs DocumentStore, chunks ChunkStore, ck Chunker,
	embedder domain.Embedder, summarizer domain.Summarizer,
	opts Options, logger *zap.Logger,
) *Service {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultOptions().ProgressEvery
	}
	if opts.EnrichTimeout <= 0 {
		opts.EnrichTimeout = DefaultOptions().EnrichTimeout
	}
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = DefaultOptions().EmbedTimeout
	}
	if opts.PreviewChars <= 0 {
		opts.PreviewChars = DefaultOptions().PreviewChars
	}
	return &Service{
		jobs:       jobs,
		docs:       docs,
		chunks:     chunks,
		chunker:    ck,
		embedder:   embedder,
		summarizer: summarizer,
		opts:       opts,
		logger:     logger,
	}
}

// Run polls the queue until ctx is cancelled, draining all claimable jobs on
// each wake-up.
func (s *Service) Run(ctx context.Context) {
	s.logger.Info("Ingestion worker started",
		zap.Duration("poll_interval", s.opts.PollInterval),
		zap.Bool("enrichment", s.opts.EnrichEnabled && s.summarizer != nil),
	)

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		for ctx.Err() == nil {
			worked, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.Error("Queue claim failed", zap.Error(err))
				break
			}
			if !worked {
				break
			}
		}

		if depth, err := s.jobs.PendingCount(ctx); err == nil {
			metrics.QueueDepth.Set(float64(depth))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Ingestion worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce claims and processes at most one job. Returns false when the queue
// is empty.
func (s *Service) RunOnce(ctx context.Context) (bool, error) {
	job, err := s.jobs.ClaimNext(ctx)
	if err != nil {
		return false, fmt.Errorf("claim next job: %w", err)
	}
	if job == nil {
		return false, nil
	}
	s.processJob(ctx, job)
	return true, nil
}

type docPlan struct {
	doc    *domain.Document
	pieces []chunker.Piece
}

func (s *Service) processJob(ctx context.Context, job *domain.IngestionJob) {
	start := time.Now()
	logger := s.logger.With(zap.String("job_id", job.ID.String()))

	docs, err := s.resolveDocuments(ctx, job)
	if err != nil {
		logger.Error("Job failed before sweep", zap.Error(err))
		s.failJob(ctx, logger, job, err.Error())
		return
	}

	plans, total := s.planSweep(ctx, logger, docs)
	if len(plans) == 0 {
		// planSweep already recorded the per-document extraction errors.
		if err := s.jobs.Fail(ctx, job.ID, "no document text to ingest"); err != nil {
			logger.Error("Marking job errored failed", zap.Error(err))
		}
		metrics.IngestJobsTotal.WithLabelValues("error").Inc()
		return
	}

	if err := s.jobs.SetTotal(ctx, job.ID, total); err != nil {
		logger.Warn("Recording total chunks failed", zap.Error(err))
	}

	done := 0
	for _, plan := range plans {
		var cancelled bool
		done, cancelled, err = s.sweepDocument(ctx, logger, job, plan, done)
		if cancelled {
			logger.Info("Job cancelled between chunks",
				zap.Int("chunks_done", done), zap.Int("total_chunks", total))
			metrics.IngestJobsTotal.WithLabelValues("cancelled").Inc()
			return
		}
		if err != nil {
			logger.Warn("Sweep interrupted", zap.Error(err))
			s.releaseInterrupted(ctx, logger, job, done)
			return
		}
		if err := s.docs.MarkProcessed(ctx, plan.doc.ID); err != nil {
			logger.Warn("Marking document processed failed",
				zap.String("document_id", plan.doc.ID.String()), zap.Error(err))
		}
	}

	if err := s.jobs.Conclude(ctx, job.ID, done); err != nil {
		logger.Error("Concluding job failed", zap.Error(err))
		metrics.IngestJobsTotal.WithLabelValues("error").Inc()
		return
	}

	duration := time.Since(start)
	metrics.IngestJobsTotal.WithLabelValues("concluded").Inc()
	metrics.IngestJobDuration.Observe(duration.Seconds())

	logger.Info("Job concluded",
		zap.Int("total_chunks", total),
		zap.Int("chunks_done", done),
		zap.Int("documents", len(plans)),
		zap.Duration("duration", duration),
	)
}

// resolveDocuments loads the job's target: one document, or every document of
// a gazette bundle.
func (s *Service) resolveDocuments(
	ctx context.Context, job *domain.IngestionJob,
) ([]*domain.Document, error) {
	if job.DocumentID != nil {
		doc, err := s.docs.Get(ctx, *job.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("load document %s: %w", *job.DocumentID, err)
		}
		return []*domain.Document{doc}, nil
	}

	docs, err := s.docs.ListByBundle(ctx, *job.BundleID)
	if err != nil {
		return nil, fmt.Errorf("load bundle %s: %w", *job.BundleID, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("bundle %s has no documents", *job.BundleID)
	}
	return docs, nil
}

// planSweep chunks every document with extracted text and marks the rest
// errored. Chunking everything up front fixes total_chunks before the first
// embedding call, so progress is meaningful from the start.
func (s *Service) planSweep(
	ctx context.Context, logger *zap.Logger, docs []*domain.Document,
) ([]docPlan, int) {
	var plans []docPlan
	total := 0

	for _, doc := range docs {
		if doc.RawText == nil || strings.TrimSpace(*doc.RawText) == "" {
			msg := fmt.Sprintf("%s: document has no extracted text", domain.ErrExtractionFailed)
			logger.Warn("Document skipped",
				zap.String("document_id", doc.ID.String()), zap.String("reason", msg))
			if err := s.docs.SetStatus(ctx, doc.ID, domain.DocumentError, msg); err != nil {
				logger.Warn("Recording document error failed", zap.Error(err))
			}
			continue
		}

		if err := s.docs.SetStatus(ctx, doc.ID, domain.DocumentProcessing, ""); err != nil {
			logger.Warn("Marking document processing failed",
				zap.String("document_id", doc.ID.String()), zap.Error(err))
		}
		pieces := s.chunker.Chunk(*doc.RawText)
		plans = append(plans, docPlan{doc: doc, pieces: pieces})
		total += len(pieces)
	}
	return plans, total
}

// sweepDocument runs enrich→embed→store for every piece of one document.
// Chunks from an earlier sweep are cleared first, so re-ingesting a document
// replaces its chunks instead of colliding with them. A failed chunk is
// recorded and skipped; it is simply absent from the index until a reprocess.
// Cancellation is checked between chunks by re-reading the job row, so a
// cancel request takes effect without killing the worker.
func (s *Service) sweepDocument(
	ctx context.Context, logger *zap.Logger,
	job *domain.IngestionJob, plan docPlan, done int,
) (int, bool, error) {
	if err := s.chunks.DeleteByDocument(ctx, plan.doc.ID); err != nil {
		return done, false, fmt.Errorf("clear chunks of document %s: %w", plan.doc.ID, err)
	}

	var parentID *domain.Chunk

	for i, piece := range plan.pieces {
		if current, err := s.jobs.Get(ctx, job.ID); err == nil &&
			current.Status != domain.JobProcessing {
			return done, true, nil
		}

		chunk := &domain.Chunk{
			DocumentID:    plan.doc.ID,
			ChunkIndex:    i,
			Content:       piece.Content,
			CaseNumber:    piece.CaseNumber,
			Section:       piece.Section,
			TokenEstimate: piece.TokenEstimate,
			StartOffset:   piece.StartOffset,
			EndOffset:     piece.EndOffset,
		}
		if parentID != nil {
			id := parentID.ID
			chunk.ParentChunkID = &id
		}

		if s.opts.EnrichEnabled && s.summarizer != nil {
			summary, err := s.enrich(ctx, plan.doc, piece)
			if err != nil {
				metrics.EnrichmentTotal.WithLabelValues("failed").Inc()
				logger.Warn("Chunk enrichment failed, storing without summary",
					zap.Int("chunk_index", i), zap.Error(err))
			} else {
				chunk.ContextSummary = summary
				metrics.EnrichmentTotal.WithLabelValues("ok").Inc()
			}
		} else {
			metrics.EnrichmentTotal.WithLabelValues("skipped").Inc()
		}

		embedCtx, cancel := context.WithTimeout(ctx, s.opts.EmbedTimeout)
		result, err := s.embedder.Embed(embedCtx, chunk.EmbeddedText())
		cancel()
		if err != nil {
			metrics.IngestChunksTotal.WithLabelValues("embed_failed").Inc()
			logger.Warn("Chunk embedding failed",
				zap.Int("chunk_index", i), zap.Error(err))
			continue
		}
		chunk.Embedding = result.Embedding

		if _, err := s.chunks.Insert(ctx, chunk); err != nil {
			metrics.IngestChunksTotal.WithLabelValues("store_failed").Inc()
			logger.Warn("Chunk store failed",
				zap.Int("chunk_index", i), zap.Error(err))
			continue
		}
		metrics.IngestChunksTotal.WithLabelValues("stored").Inc()
		parentID = chunk
		done++

		if done%s.opts.ProgressEvery == 0 {
			if err := s.jobs.SetProgress(ctx, job.ID, done); err != nil {
				logger.Warn("Recording progress failed", zap.Error(err))
			}
		}

		if s.opts.ChunkDelay > 0 && i < len(plan.pieces)-1 {
			select {
			case <-ctx.Done():
				return done, false, ctx.Err()
			case <-time.After(s.opts.ChunkDelay):
			}
		}
	}
	return done, false, nil
}

func (s *Service) enrich(
	ctx context.Context, doc *domain.Document, piece chunker.Piece,
) (string, error) {
	preview := *doc.RawText
	if len(preview) > s.opts.PreviewChars {
		// Back off to the start of the rune so the prompt stays valid UTF-8.
		cut := s.opts.PreviewChars
		for cut > 0 && preview[cut]&0xC0 == 0x80 {
			cut--
		}
		preview = preview[:cut]
	}
	prompt := fmt.Sprintf(enrichPromptTemplate, doc.Name, preview, piece.Content)

	enrichCtx, cancel := context.WithTimeout(ctx, s.opts.EnrichTimeout)
	defer cancel()

	summary, err := s.summarizer.Summarize(enrichCtx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrEnrichmentFailed, err)
	}
	return summary, nil
}

// releaseInterrupted marks a half-swept job errored so it can be reprocessed.
// Without this a worker shutdown would strand the job in processing, which
// neither the queue claim nor reprocess can reach. Runs on a detached context
// because the worker context is usually already cancelled here.
func (s *Service) releaseInterrupted(
	ctx context.Context, logger *zap.Logger, job *domain.IngestionJob, done int,
) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.jobs.SetProgress(releaseCtx, job.ID, done); err != nil {
		logger.Warn("Recording progress of interrupted job failed", zap.Error(err))
	}
	if err := s.jobs.Fail(releaseCtx, job.ID, "worker stopped mid-sweep"); err != nil {
		logger.Error("Releasing interrupted job failed", zap.Error(err))
		return
	}
	metrics.IngestJobsTotal.WithLabelValues("error").Inc()
}

// failJob marks the job and its target documents errored with the same
// message.
func (s *Service) failJob(
	ctx context.Context, logger *zap.Logger, job *domain.IngestionJob, msg string,
) {
	if err := s.jobs.Fail(ctx, job.ID, msg); err != nil {
		logger.Error("Marking job errored failed", zap.Error(err))
	}
	if job.DocumentID != nil {
		if err := s.docs.SetStatus(ctx, *job.DocumentID, domain.DocumentError, msg); err != nil {
			logger.Warn("Recording document error failed", zap.Error(err))
		}
	}
	metrics.IngestJobsTotal.WithLabelValues("error").Inc()
}
