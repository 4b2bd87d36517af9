package search

import "github.com/google/uuid"

// Match is a single retrieval hit. Similarity and Rank are the raw signals;
// Score is the fused relevance (equal to Similarity in semantic mode).
type Match struct {
	ChunkID    uuid.UUID
	DocumentID uuid.UUID
	ChunkIndex int
	Content    string
	Summary    string
	Section    string
	CaseNumber string
	Similarity float64 // cosine similarity in [0,1], 0 if lexical-only hit
	Rank       float64 // lexical rank score, 0 if vector-only hit
	Score      float64
}
