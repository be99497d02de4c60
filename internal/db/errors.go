package db

import "errors"

// ErrKeyNotFound is returned by Get for a missing or expired key.
var ErrKeyNotFound = errors.New("db: key not found")

// Op names recorded in Error for diagnostics. Redis command names double as op names for every backend.
const (
	OpPing = "PING"
	OpGet  = "GET"
	OpSet  = "SET"
	OpDel  = "DEL"
	OpOpen = "OPEN"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
