package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStaleWrite is returned when a conditional update matched no row
	// because the record changed since it was read.
	ErrStaleWrite = errors.New("record changed concurrently")
	// ErrInsufficientStock is returned by a strict depletion when the
	// listing holds less than the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("duplicate record")
)
