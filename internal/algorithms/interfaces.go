package algorithms

import "time"

// BackoffStrategy decides how long a task waits between two attempts.
//
// Note: This interface is exported so the queue package can hold it in its
// configuration, but implementations remain internal.
type BackoffStrategy interface {
	// NextDelay returns the delay before the next attempt.
	// attemptNumber is 0-indexed (0 = first retry after the initial failure).
	NextDelay(attemptNumber int, lastError error) time.Duration
}
