package errors

import "errors"

var (
	ErrNotFound = errors.New("ride not found")

	ErrInvalidID = errors.New("invalid ride ID format")

	// ErrVersionConflict means another writer updated the ride since it was read.
	ErrVersionConflict = errors.New("ride was modified concurrently")
)
