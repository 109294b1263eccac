package queue

import "errors"

var (
	// ErrEmptyQueue is returned when an address resolves to no tracks or no
	// queue has been saved.
	ErrEmptyQueue = errors.New("queue is empty")

	// ErrStaleQueue is returned when a saved queue no longer matches the catalog.
	ErrStaleQueue = errors.New("saved queue is stale")
)
