// Package queue runs batches of independent tasks with bounded concurrency,
// fixed-delay retries, and results aligned to submission order.
//
// The primary type is Executor[T, R]. Tasks are registered up front, then a
// run admits them in FIFO order into at most maxConcurrency slots, retries
// failures, and collects every outcome at its task's index no matter which
// task finishes first.
//
// # Basic Usage
//
//	ctx := context.Background()
//	exec := queue.New[any, string](queue.WithMaxConcurrency(2))
//	outcomes, err := exec.AddTask(
//	    func(ctx context.Context) (string, error) { return callA(ctx) },
//	    func(ctx context.Context) (string, error) { return callB(ctx) },
//	).Run(ctx)
//
// # Mapping Over Data
//
// For one task per element of a list, set the data and call Every:
//
//	outcomes, err := queue.New[int, int]().
//	    SetData([]int{1, 2, 3}).
//	    Every(ctx, func(ctx context.Context, n, i int) (int, error) {
//	        return n * 2, nil
//	    })
//
// Map does the same in one call.
//
// # Retry Logic
//
// A failing task is retried up to retryTimes more times, waiting the same
// fixed delay before each retry:
//
//	exec := queue.New[int, int](
//	    queue.WithRetryTimes(2),                     // 3 attempts in total
//	    queue.WithRetryDelay(100*time.Millisecond),  // 100ms between attempts
//	)
//
// When every attempt fails, the last error becomes the task's outcome. It is
// never returned from Run and never affects other tasks.
//
// # Outcomes
//
// Run returns one Outcome per task. Outcome.Err is nil on success; otherwise
// it is the error of the final attempt. Values, Errors, Join and Flatten
// reshape a result slice.
//
// # Builder Semantics
//
// Executors are immutable. Every setter and AddTask returns a new Executor,
// so configuration and task lists can be shared between goroutines and a
// running executor can never see tasks added after it started.
//
// # Configuration Options
//
//   - WithMaxConcurrency(n): Tasks in flight at once (default: 3)
//   - WithRetryTimes(n): Additional attempts after a failure (default: 0)
//   - WithRetryDelay(d): Fixed wait between attempts (default: 1s)
//   - WithRateLimit(tasksPerSecond, burst): Token bucket applied to every attempt
//   - WithLogger(logger): zap logger for run diagnostics
//   - WithCPUAffinity(enabled): Pin each slot to an OS thread and core
//   - WithBeforeTaskStart, WithOnRetry, WithOnTaskEnd: Lifecycle hooks
//
// # Cancellation
//
// Cancelling the context passed to Run stops admission. Admitted tasks run
// to completion, retries included; tasks never admitted settle with the
// context's error and zero attempts.
package queue
