package database

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist or is
	// not visible to the requester.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the requester is not allowed to touch
	// the row.
	ErrForbidden = errors.New("forbidden")
)
