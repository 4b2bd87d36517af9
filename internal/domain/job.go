package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the ingestion job lifecycle state.
type JobStatus string

const (
	// JobPending means the job is queued and claimable.
	JobPending JobStatus = "pending"
	// JobProcessing means a worker has claimed the job.
	JobProcessing JobStatus = "processing"
	// JobConcluded means the sweep finished (individual chunk failures allowed).
	JobConcluded JobStatus = "concluded"
	// JobError means the sweep could not start or terminated abnormally,
	// or the job was cancelled.
	JobError JobStatus = "error"
)

// CanTransition reports whether the status change is allowed. Transitions are
// one-directional except error→pending on an explicit reprocess request.
func (s JobStatus) CanTransition(to JobStatus) bool {
	switch s {
	case JobPending:
		return to == JobProcessing || to == JobError
	case JobProcessing:
		return to == JobConcluded || to == JobError
	case JobError:
		return to == JobPending
	default:
		return false
	}
}

// IngestionJob is one unit of queued ingestion work. It references exactly one
// of {DocumentID, BundleID}; never both.
type IngestionJob struct {
	ID           uuid.UUID
	DocumentID   *uuid.UUID
	BundleID     *uuid.UUID
	Status       JobStatus
	Priority     int // higher processed first, FIFO within a priority band
	TotalChunks  int
	ChunksDone   int // monotonic, 0 <= done <= total
	ErrorMessage *string
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// Progress returns the derived completion percentage in [0,100].
func (j *IngestionJob) Progress() int {
	if j.Status == JobConcluded {
		return 100
	}
	if j.TotalChunks <= 0 {
		return 0
	}
	return j.ChunksDone * 100 / j.TotalChunks
}

// Cancelled reports whether the job was externally cancelled rather than failed.
func (j *IngestionJob) Cancelled() bool {
	return j.Status == JobError && j.ErrorMessage != nil && *j.ErrorMessage == CancelledMessage
}
