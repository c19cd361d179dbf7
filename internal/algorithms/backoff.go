package algorithms

import "time"

// fixedBackoff waits the same delay before every retry.
//
// Attempt 0: delay
// Attempt 1: delay
// Attempt 2: delay
// ...
type fixedBackoff struct {
	delay time.Duration
}

// newFixedBackoff creates a new fixed backoff strategy.
func newFixedBackoff(delay time.Duration) *fixedBackoff {
	return &fixedBackoff{delay: delay}
}

// NextDelay returns the configured delay for any non-negative attempt.
func (fb *fixedBackoff) NextDelay(attemptNumber int, lastError error) time.Duration {
	if attemptNumber < 0 {
		return 0
	}
	return fb.delay
}

// noDelay retries immediately.
type noDelay struct{}

func (noDelay) NextDelay(int, error) time.Duration { return 0 }
