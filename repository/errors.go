package repository

import "errors"

var (
	// ErrNotFound is returned when a document with the requested id does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrStatusChanged is returned by a conditional status update when the document
	// exists but no longer has the expected status
	ErrStatusChanged = errors.New("status changed concurrently")
)
