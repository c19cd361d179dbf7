package queue

import "errors"

var (
	// ErrInvalidConcurrency is returned by Run when the executor is configured
	// with a concurrency limit below 1. Such a run could never admit a task.
	ErrInvalidConcurrency = errors.New("queue: max concurrency must be at least 1")

	// ErrTaskPanic wraps panics recovered from a task. The panic counts as a
	// failed attempt and is retried like any other error.
	ErrTaskPanic = errors.New("queue: task panicked")

	errSlotWritten = errors.New("queue: result slot written twice")
)
