// Package store holds the in-memory job and conversation collections.
package store

import (
	"errors"
)

var (
	// ErrNotFound is returned when an id does not match any record.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a record with the same id already exists.
	ErrConflict = errors.New("already exists")
)
