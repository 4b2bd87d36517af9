package search

import (
	"fmt"

	"github.com/juristech/acervo/internal/domain"
)

// Query parameter limits.
const (
	MaxQueryLength = 4096
	DefaultLimit   = 5
	MaxLimit       = 50
)

// Request is a validated retrieval query.
type Request struct {
	query     string
	mode      Mode
	filter    Filter
	limit     int
	threshold float64
}

// NewRequest validates and normalizes query parameters.
// Defaults: mode=hybrid, limit=5. threshold is the minimum vector similarity;
// vector matches below it are dropped before fusion.
func NewRequest(query string, m Mode, f Filter, limit int, threshold float64) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)",
			domain.ErrInvalidRequest, MaxQueryLength)
	}
	if m == "" {
		m = Hybrid
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search mode %q", domain.ErrInvalidRequest, m)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if threshold < 0 || threshold > 1 {
		return Request{}, fmt.Errorf("%w: threshold must be between 0 and 1",
			domain.ErrInvalidRequest)
	}

	return Request{
		query:     query,
		mode:      m,
		filter:    f,
		limit:     limit,
		threshold: threshold,
	}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// Mode returns the retrieval strategy.
func (r *Request) Mode() Mode { return r.mode }

// Filter returns the pre-filter.
func (r *Request) Filter() Filter { return r.filter }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Threshold returns the minimum vector similarity.
func (r *Request) Threshold() float64 { return r.threshold }
