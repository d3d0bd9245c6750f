// Package apperr holds the sentinel errors shared across the notebook packages.
package apperr

import "errors"

var (
	// ErrNotFound is returned when an id does not match any note.
	ErrNotFound = errors.New("not found")
	// ErrSerialization is returned when a document cannot be encoded or decoded.
	ErrSerialization = errors.New("serialization failure")
	// ErrStorage is returned when the underlying database rejects a read or commit.
	ErrStorage = errors.New("storage failure")
	// ErrInvalidInput is returned for malformed requests.
	ErrInvalidInput = errors.New("invalid input")
)
