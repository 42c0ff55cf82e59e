package core

import "errors"

// Common errors.
var (
	// ErrNotFound is returned when an operation targets an unknown note.
	ErrNotFound = errors.New("note not found")

	// ErrInvalidInput is returned for malformed create/update arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a fresh id still collides after one regeneration.
	ErrConflict = errors.New("id collision")

	// ErrStorageUnavailable marks a durable backend that failed its probe or a write.
	// Stores recover from it by falling back to memory; callers never see it.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrSerialization marks a root object that could not be encoded.
	ErrSerialization = errors.New("serialization failed")

	// ErrWatchUnsupported is returned by Watch on backends without change notification.
	ErrWatchUnsupported = errors.New("backend does not support watching")
)
