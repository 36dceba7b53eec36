package store

import "errors"

var (
	// ErrNotFound is returned when a record with the requested id does not exist.
	ErrNotFound = errors.New("docket: record not found")

	// ErrAlreadyExists is returned when attempting to put a record whose id is taken.
	ErrAlreadyExists = errors.New("docket: record already exists")

	// ErrConflict is returned when a conditional move lost a race: the source
	// record vanished or the destination was already occupied.
	ErrConflict = errors.New("docket: record was moved concurrently")
)
