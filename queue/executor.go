package queue

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Executor runs a list of independent tasks with bounded concurrency, fixed
// delay retries, and results aligned to submission order.
//
// An Executor is an immutable builder: SetMaxConcurrency, SetRetryTimes,
// SetRetryDelay, SetData and AddTask all return a new Executor and leave the
// receiver untouched. A run therefore works on the tasks and configuration
// the Executor held when Run was called, and nothing added afterwards can
// leak into it.
//
// Type parameters:
//   - T: The type of the data elements consumed by Every
//   - R: The result type produced by every task
type Executor[T any, R any] struct {
	conf  *config
	data  []T
	tasks []Task[R]

	mu    sync.Mutex
	stats RunStats
}

// New creates an Executor with the given options.
//
// Default configuration:
//   - maxConcurrency: 3
//   - retryTimes: 0 (one attempt per task)
//   - retryDelay: 1s
//   - logger: no-op
//
// Example:
//
//	exec := queue.New[string, int](queue.WithMaxConcurrency(2), queue.WithRetryTimes(1))
//	outcomes, err := exec.AddTask(fetchA, fetchB, fetchC).Run(ctx)
func New[T any, R any](opts ...Option) *Executor[T, R] {
	return &Executor[T, R]{
		conf: newConfig(opts...),
	}
}

func (e *Executor[T, R]) with(fn func(next *Executor[T, R])) *Executor[T, R] {
	next := &Executor[T, R]{
		conf:  e.conf.clone(),
		data:  e.data,
		tasks: e.tasks,
	}
	fn(next)
	return next
}

// SetMaxConcurrency returns a copy of the executor with the concurrency limit set to n.
func (e *Executor[T, R]) SetMaxConcurrency(n int) *Executor[T, R] {
	return e.with(func(next *Executor[T, R]) {
		WithMaxConcurrency(n)(next.conf)
	})
}

// SetRetryTimes returns a copy of the executor allowing n additional attempts per task.
func (e *Executor[T, R]) SetRetryTimes(n int) *Executor[T, R] {
	return e.with(func(next *Executor[T, R]) {
		WithRetryTimes(n)(next.conf)
	})
}

// SetRetryDelay returns a copy of the executor waiting d between attempts.
func (e *Executor[T, R]) SetRetryDelay(d time.Duration) *Executor[T, R] {
	return e.with(func(next *Executor[T, R]) {
		WithRetryDelay(d)(next.conf)
	})
}

// SetData returns a copy of the executor holding items for Every.
// The slice is copied.
func (e *Executor[T, R]) SetData(items []T) *Executor[T, R] {
	return e.with(func(next *Executor[T, R]) {
		next.data = slices.Clone(items)
	})
}

// AddTask returns a copy of the executor with tasks appended to its registry.
func (e *Executor[T, R]) AddTask(tasks ...Task[R]) *Executor[T, R] {
	return e.with(func(next *Executor[T, R]) {
		next.tasks = slices.Concat(e.tasks, tasks)
	})
}

// Len returns the number of registered tasks, i.e. the total of the next run.
func (e *Executor[T, R]) Len() int {
	return len(e.tasks)
}

// Every builds one task per element of the data list set with SetData, adds
// them after any already registered tasks, and runs everything.
// Each task calls mapper with its element and the element's index.
//
// Example:
//
//	outcomes, err := queue.New[int, int](queue.WithMaxConcurrency(4)).
//	    SetData([]int{1, 2, 3}).
//	    Every(ctx, func(ctx context.Context, n, i int) (int, error) {
//	        return n * 2, nil
//	    })
func (e *Executor[T, R]) Every(ctx context.Context, mapper Mapper[T, R]) ([]Outcome[R], error) {
	tasks := make([]Task[R], len(e.data))
	for i, item := range e.data {
		tasks[i] = func(ctx context.Context) (R, error) {
			return mapper(ctx, item, i)
		}
	}
	return e.AddTask(tasks...).runAndRecord(ctx, e)
}

// Run executes all registered tasks and returns one Outcome per task, in
// submission order, regardless of completion order.
//
// Task failures never make Run fail; inspect each Outcome's Err instead.
// Run returns an error only when the executor's concurrency limit is below 1
// (ErrInvalidConcurrency, nil outcomes) or when ctx is cancelled before every
// task was admitted (ctx's error, full outcomes with unadmitted tasks marked).
//
// Run may be called repeatedly; each call is an independent run.
func (e *Executor[T, R]) Run(ctx context.Context) ([]Outcome[R], error) {
	return e.runAndRecord(ctx, e)
}

// runAndRecord runs e and stores the run's stats on owner. Every runs a
// derived executor, so owner is the executor the caller holds.
func (e *Executor[T, R]) runAndRecord(ctx context.Context, owner *Executor[T, R]) ([]Outcome[R], error) {
	start := time.Now()
	s := newScheduler(e.conf, e.tasks)
	outcomes, err := s.run(ctx)
	stats := s.stats(time.Since(start))

	owner.mu.Lock()
	owner.stats = stats
	owner.mu.Unlock()

	e.conf.logger.Info("run complete",
		zap.Int("total", stats.Total),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("attempts", stats.Attempts),
		zap.Int("peak_concurrency", stats.PeakConcurrency),
		zap.Duration("elapsed", stats.Elapsed),
		zap.Error(err),
	)
	return outcomes, err
}

// Stats returns the statistics of the most recent run started from this
// executor. It is the zero value before the first run.
func (e *Executor[T, R]) Stats() RunStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}
