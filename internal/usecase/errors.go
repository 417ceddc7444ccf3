package usecase

import "errors"

var (
	// ErrDuplicateID is returned when a record id already exists in the working set.
	ErrDuplicateID = errors.New("duplicate record id")
	// ErrNotFound is returned when a record id is unknown.
	ErrNotFound = errors.New("record not found")
)
