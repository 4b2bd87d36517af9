package domain

import "errors"

var (
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrJobNotFound signals a missing ingestion job.
	ErrJobNotFound = errors.New("ingestion job not found")
	// ErrInvalidRequest signals a malformed or out-of-range request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidTransition signals an ingestion job status change that the
	// state machine does not allow.
	ErrInvalidTransition = errors.New("invalid job status transition")

	// ErrExtractionFailed signals that a document has no usable text, so its
	// ingestion job cannot start.
	ErrExtractionFailed = errors.New("no extracted text available")
	// ErrEnrichmentFailed signals that contextual-summary generation failed.
	// Non-fatal: the chunk is embedded without a summary.
	ErrEnrichmentFailed = errors.New("contextual enrichment failed")
	// ErrEmbeddingUnavailable signals that the embedding provider is
	// unreachable or returned an error. Retryable; fails one chunk.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrStoreWriteFailed signals a failed chunk persistence. Retryable.
	ErrStoreWriteFailed = errors.New("chunk store write failed")
	// ErrJobCancelled signals a cooperative stop requested while a job was
	// processing. Not a fault; already-stored chunks are kept.
	ErrJobCancelled = errors.New("ingestion job cancelled")
)

// CancelledMessage is the sentinel error_message that marks a job as
// externally cancelled rather than failed.
const CancelledMessage = "cancelled by request"
