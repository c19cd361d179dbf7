package queue

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// executeTask runs a single admitted task to its final outcome.
// It fires the start and end hooks around the retry loop and never returns
// an error: exhaustion is captured in the Outcome.
func executeTask[R any](ctx context.Context, conf *config, index int, task Task[R]) Outcome[R] {
	conf.fireBeforeTaskStart(index)

	start := time.Now()
	value, attempts, err := processWithRetry(ctx, conf, index, task)
	out := Outcome[R]{
		Value:    value,
		Err:      err,
		Index:    index,
		Attempts: attempts,
		Elapsed:  time.Since(start),
	}

	conf.fireOnTaskEnd(Settlement{
		Index:    out.Index,
		Attempts: out.Attempts,
		Elapsed:  out.Elapsed,
		Err:      out.Err,
	})
	return out
}

// processWithRetry invokes task up to 1 + retryTimes times, waiting the fixed
// retry delay between attempts. It stops at the first success.
// On exhaustion the last attempt's error is returned together with the
// number of attempts made.
//
// The delay between attempts is not cut short by ctx: once admitted, a task
// and its retries run to completion.
func processWithRetry[R any](
	ctx context.Context,
	conf *config,
	index int,
	task Task[R],
) (result R, attempts int, err error) {
	maxAttempts := conf.attempts()
	backoff := conf.backoff()

	for attempt := range maxAttempts {
		if attempt > 0 {
			if delay := backoff.NextDelay(attempt-1, err); delay > 0 {
				sleep(delay)
			}
		}

		attempts++
		result, err = attemptWithRecovery(ctx, conf, task)
		if err == nil {
			return result, attempts, nil
		}

		if attempt < maxAttempts-1 {
			conf.logger.Warn("task attempt failed, retrying",
				zap.Int("index", index),
				zap.Int("attempt", attempts),
				zap.Duration("delay", conf.retryDelay),
				zap.Error(err),
			)
			conf.fireOnRetry(index, attempts, err)
		}
	}

	conf.logger.Debug("task retries exhausted",
		zap.Int("index", index),
		zap.Int("attempts", attempts),
		zap.Error(err),
	)

	var zero R
	return zero, attempts, err
}

// attemptWithRecovery makes a single attempt. The rate limiter, when set, is
// waited on first. A panic inside the task is converted into an error
// wrapping ErrTaskPanic so a single bad task cannot take the slot down.
//
// The token wait ignores cancellation of ctx: the task is already admitted,
// so every attempt it is granted invokes it.
func attemptWithRecovery[R any](ctx context.Context, conf *config, task Task[R]) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("%w: %v\nstack trace:\n%s", ErrTaskPanic, r, buf[:n])
		}
	}()

	if conf.rateLimiter != nil {
		if err := conf.rateLimiter.Wait(context.WithoutCancel(ctx)); err != nil {
			// Only a burst below one token fails an uncancellable wait
			return result, fmt.Errorf("rate limiter: %w", err)
		}
	}

	return task(ctx)
}

// sleep blocks for d. Retry delays are not cancellable.
func sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	<-t.C
}
