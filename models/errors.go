package models

import "errors"

var (
	// ErrDataUnavailable means the backing dataset is unreadable or
	// corrupt. Fatal for any catalog read until resolved.
	ErrDataUnavailable = errors.New("dataset unavailable")

	// ErrNotFound means the requested category, product or order has no
	// match.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable means durable client storage failed. Callers
	// degrade to in-memory behavior instead of failing.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError blocks a checkout step from advancing. Fields maps each
// offending field to its message so the client can surface them inline.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
