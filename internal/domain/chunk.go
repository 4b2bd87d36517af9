package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is a retrievable unit of document text. (document_id, chunk_index) is
// unique; the index is stable ordering within the document and never reused.
// A chunk is immutable once embedded except for re-embedding on reprocess.
type Chunk struct {
	ID             uuid.UUID
	DocumentID     uuid.UUID
	ChunkIndex     int
	Content        string
	ContextSummary string     // LLM situating summary, empty when enrichment was skipped
	Embedding      []float32  // nil until embedded
	CaseNumber     string     // CNJ process number extracted from content, if any
	Section        string     // legal-document section heading covering the chunk, if any
	TokenEstimate  int        // len(content)/4 heuristic
	ParentChunkID  *uuid.UUID // weak reference for surrounding-context lookups
	StartOffset    int
	EndOffset      int
	CreatedAt      time.Time
}

// EmbeddedText returns the text that is actually vectorized: the contextual
// summary (when present) followed by the chunk content.
func (c *Chunk) EmbeddedText() string {
	if c.ContextSummary == "" {
		return c.Content
	}
	return c.ContextSummary + "\n\n" + c.Content
}
