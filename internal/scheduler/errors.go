package scheduler

import "errors"

var (
	// ErrQueueEmpty is returned when popping from a queue with no entries.
	ErrQueueEmpty = errors.New("queue is empty")
)
