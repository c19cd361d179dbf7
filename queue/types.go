package queue

import (
	"context"
	"time"
)

// Task is a zero-argument unit of work. Its identity inside a run is its
// position in submission order. The context is the one passed to Run; tasks
// may observe it, but the executor never cancels an admitted task.
//
// Type parameters:
//   - R: The type of value the task produces
type Task[R any] func(ctx context.Context) (R, error)

// Mapper turns one element of the executor's data list into a result.
// It receives the element and its index in the data list.
//
// Type parameters:
//   - T: The type of the data elements
//   - R: The type of result produced for each element
type Mapper[T any, R any] func(ctx context.Context, item T, index int) (R, error)

// Outcome is the final, settled result of a single task.
// It is tagged: a nil Err means Value holds the task's successful result,
// a non-nil Err is the error of the last failed attempt.
//
// Fields:
//   - Value: The task result (zero value if Err is non-nil)
//   - Err: The error of the final attempt, nil on success
//   - Index: The task's position in submission order
//   - Attempts: How many times the task was invoked (0 if it was never admitted)
//   - Elapsed: Wall time from admission to settle, including retry delays
type Outcome[R any] struct {
	Value    R
	Err      error
	Index    int
	Attempts int
	Elapsed  time.Duration
}

// OK reports whether the task succeeded.
func (o Outcome[R]) OK() bool {
	return o.Err == nil
}

// Settlement is the type-erased view of an Outcome handed to OnTaskEnd hooks.
type Settlement struct {
	Index    int
	Attempts int
	Elapsed  time.Duration
	Err      error
}
