// Package db holds storage-level errors shared by the backends.
package db

import "errors"

// Sentinel errors for storage operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrNoRows      = errors.New("db: no rows")
)

// Op constants map to backend command names for error context.
const (
	OpGet    = "GET"
	OpSet    = "SET"
	OpIncrBy = "INCRBY"
	OpExpire = "EXPIRE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
