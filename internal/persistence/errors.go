package persistence

import "errors"

var (
	// ErrCollectionNotFound means the collection has never been saved.
	// Callers treat it as "seed defaults", not as a failure.
	ErrCollectionNotFound = errors.New("persistence: collection not found")

	// ErrWriterClosed is reported by writes submitted after Close.
	ErrWriterClosed = errors.New("persistence: writer closed")

	// ErrQueueFull is reported when too many distinct collections are pending.
	ErrQueueFull = errors.New("persistence: write queue full")
)
