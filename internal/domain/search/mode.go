// Package search holds the validated query types for chunk retrieval.
package search

// Mode selects the retrieval strategy.
type Mode string

const (
	// Hybrid fuses vector similarity and lexical rank into one score.
	Hybrid Mode = "hybrid"
	// Semantic uses vector similarity only.
	Semantic Mode = "semantic"
)

// IsValid reports whether the mode is known.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic
}
