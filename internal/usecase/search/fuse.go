package search

import (
	"sort"

	"github.com/google/uuid"

	domsearch "github.com/juristech/acervo/internal/domain/search"
)

// Weights tunes the hybrid fusion. Both signals are max-normalized to [0,1]
// over their own result set before the weighted sum, so a chunk strong in only
// one signal can still rank while a chunk strong in both outranks either alone.
type Weights struct {
	Vector  float64
	Lexical float64
}

// DefaultWeights leans semantic but keeps lexical rank decisive for literal
// matches such as case numbers.
func DefaultWeights() Weights {
	return Weights{Vector: 0.6, Lexical: 0.4}
}

// fuseWeighted merges vector and lexical results into one ranking. Both input
// lists have already been threshold-filtered by the store, so a lexical-only
// hit is an above-threshold chunk outside the vector top-K, never a
// resurrected below-threshold match. Ordering is fully deterministic: fused
// score desc, similarity desc, chunk index asc, chunk id asc.
func fuseWeighted(
	vector, lexical []domsearch.Match, w Weights, limit int,
) []domsearch.Match {
	var maxSim, maxRank float64
	for _, m := range vector {
		if m.Similarity > maxSim {
			maxSim = m.Similarity
		}
	}
	for _, m := range lexical {
		if m.Rank > maxRank {
			maxRank = m.Rank
		}
	}

	merged := make(map[uuid.UUID]*domsearch.Match, len(vector)+len(lexical))
	for _, m := range vector {
		mm := m
		merged[mm.ChunkID] = &mm
	}
	for _, m := range lexical {
		if existing, ok := merged[m.ChunkID]; ok {
			existing.Rank = m.Rank
			continue
		}
		mm := m
		merged[mm.ChunkID] = &mm
	}

	fused := make([]domsearch.Match, 0, len(merged))
	for _, m := range merged {
		var score float64
		if maxSim > 0 {
			score += w.Vector * (m.Similarity / maxSim)
		}
		if maxRank > 0 {
			score += w.Lexical * (m.Rank / maxRank)
		}
		m.Score = score
		fused = append(fused, *m)
	}

	sort.Slice(fused, func(i, j int) bool {
		a, b := fused[i], fused[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.ChunkIndex != b.ChunkIndex {
			return a.ChunkIndex < b.ChunkIndex
		}
		return a.ChunkID.String() < b.ChunkID.String()
	})

	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}
