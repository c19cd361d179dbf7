package algorithms

import "time"

// NewBackoffStrategy creates the retry delay strategy used by the executor.
// Every retry waits the same delay; negative delays are treated as zero.
func NewBackoffStrategy(delay time.Duration) BackoffStrategy {
	if delay <= 0 {
		return noDelay{}
	}
	return newFixedBackoff(delay)
}
