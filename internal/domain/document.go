// Package domain holds the core types shared between layers.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Origin tags where a document came from.
type Origin string

const (
	// OriginUpload marks a user-uploaded file.
	OriginUpload Origin = "upload"
	// OriginGazette marks a downloaded court-gazette publication.
	OriginGazette Origin = "gazette"
	// OriginManual marks manually entered text.
	OriginManual Origin = "manual"
)

// DocumentStatus is the document ingestion lifecycle state.
type DocumentStatus string

const (
	// DocumentPending means the document is awaiting ingestion.
	DocumentPending DocumentStatus = "pending"
	// DocumentProcessing means an ingestion sweep is running.
	DocumentProcessing DocumentStatus = "processing"
	// DocumentProcessed means chunking and embedding completed.
	DocumentProcessed DocumentStatus = "processed"
	// DocumentError means ingestion could not complete.
	DocumentError DocumentStatus = "error"
)

// Document is a legal document owned by the acquisition subsystem.
// Ingestion only flips Status and EmbeddingProcessed.
type Document struct {
	ID                 uuid.UUID
	Name               string
	Origin             Origin
	RawText            *string // nil until text extraction runs
	Status             DocumentStatus
	EmbeddingProcessed bool
	Tags               []string
	SizeBytes          int64
	BundleID           *uuid.UUID // gazette issue the document belongs to, if any
	ErrorMessage       *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
