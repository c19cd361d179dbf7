package queue

import (
	"fmt"
	"time"
)

// RunStats summarizes one completed run.
type RunStats struct {
	Total           int           // tasks in the run
	Succeeded       int           // tasks whose final attempt succeeded
	Failed          int           // tasks that exhausted their retries
	Skipped         int           // tasks never admitted because the context was cancelled
	Attempts        int           // task invocations, retries included
	PeakConcurrency int           // highest number of tasks in flight at once
	Elapsed         time.Duration // wall time of the run
}

// Retries returns the number of attempts beyond the first, across all tasks.
func (s RunStats) Retries() int {
	return s.Attempts - (s.Total - s.Skipped)
}

func (s RunStats) String() string {
	return fmt.Sprintf("total=%d ok=%d failed=%d skipped=%d attempts=%d peak=%d elapsed=%s",
		s.Total, s.Succeeded, s.Failed, s.Skipped, s.Attempts, s.PeakConcurrency, s.Elapsed.Round(time.Millisecond))
}
