package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a conditional write finds the row in
	// a different status than expected (a concurrent transition won).
	ErrConflict = errors.New("trip status changed concurrently")
)
