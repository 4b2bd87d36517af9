package search

import "github.com/google/uuid"

// Filter narrows retrieval to one document and/or one CNJ case number.
// Zero value means no filtering.
type Filter struct {
	DocumentID *uuid.UUID
	CaseNumber string
}

// IsEmpty reports whether the filter narrows anything.
func (f Filter) IsEmpty() bool {
	return f.DocumentID == nil && f.CaseNumber == ""
}
