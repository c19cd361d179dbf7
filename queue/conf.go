package queue

import (
	"slices"
	"time"

	"github.com/utkarsh5026/batchq/internal/algorithms"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultMaxConcurrency = 3
	defaultRetryTimes     = 0
	defaultRetryDelay     = time.Second
)

// Option is a functional option for configuring an Executor.
type Option func(*config)

// config is the executor configuration. A run reads it but never writes it;
// setters on Executor copy it before changing a field.
type config struct {
	maxConcurrency int
	retryTimes     int
	retryDelay     time.Duration
	rateLimiter    *rate.Limiter
	logger         *zap.Logger
	pinCPUs        bool

	beforeTaskStart []func(index int)
	onRetry         []func(index, attempt int, err error)
	onTaskEnd       []func(Settlement)
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		maxConcurrency: defaultMaxConcurrency,
		retryTimes:     defaultRetryTimes,
		retryDelay:     defaultRetryDelay,
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return cfg
}

func (c *config) clone() *config {
	cp := *c
	cp.beforeTaskStart = slices.Clone(c.beforeTaskStart)
	cp.onRetry = slices.Clone(c.onRetry)
	cp.onTaskEnd = slices.Clone(c.onTaskEnd)
	return &cp
}

func (c *config) fireBeforeTaskStart(index int) {
	for _, fn := range c.beforeTaskStart {
		fn(index)
	}
}

func (c *config) fireOnRetry(index, attempt int, err error) {
	for _, fn := range c.onRetry {
		fn(index, attempt, err)
	}
}

func (c *config) fireOnTaskEnd(s Settlement) {
	for _, fn := range c.onTaskEnd {
		fn(s)
	}
}

// attempts is the total number of invocations a task gets: 1 + retryTimes.
func (c *config) attempts() int {
	return 1 + max(c.retryTimes, 0)
}

func (c *config) backoff() algorithms.BackoffStrategy {
	return algorithms.NewBackoffStrategy(c.retryDelay)
}

// WithMaxConcurrency sets the maximum number of tasks in flight at once.
// Values below 1 are kept as given and make Run fail with ErrInvalidConcurrency.
// Defaults to 3.
func WithMaxConcurrency(n int) Option {
	return func(cfg *config) {
		cfg.maxConcurrency = n
	}
}

// WithRetryTimes sets how many additional attempts a failing task gets.
// 0 means exactly one attempt. Negative values are treated as 0.
// Defaults to 0.
func WithRetryTimes(n int) Option {
	return func(cfg *config) {
		cfg.retryTimes = n
	}
}

// WithRetryDelay sets the fixed wait between two attempts of the same task.
// 0 retries immediately. Defaults to one second.
func WithRetryDelay(d time.Duration) Option {
	return func(cfg *config) {
		cfg.retryDelay = max(d, 0)
	}
}

// WithRateLimit caps how fast attempts start across the whole executor.
// tasksPerSecond is the sustained rate and burst the bucket size. Every
// attempt, retries included, takes a token, since each one reaches the
// downstream resource. Non-positive values leave the executor unlimited.
//
// Example:
//
//	WithRateLimit(10, 5) // 10 attempts/sec with bursts of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithCPUAffinity pins every concurrency slot to its own OS thread and, where
// the platform supports it, to a CPU core. Only useful for CPU-bound tasks.
func WithCPUAffinity(enabled bool) Option {
	return func(cfg *config) {
		cfg.pinCPUs = enabled
	}
}

// WithBeforeTaskStart registers a hook called when a task is admitted,
// before its first attempt. Hooks accumulate across options and run in
// registration order; nil is ignored.
func WithBeforeTaskStart(fn func(index int)) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.beforeTaskStart = append(cfg.beforeTaskStart, fn)
		}
	}
}

// WithOnRetry registers a hook called after a failed attempt that will be
// retried. attempt is the 1-based number of the attempt that failed.
// Like every hook option it may be given several times.
func WithOnRetry(fn func(index, attempt int, err error)) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.onRetry = append(cfg.onRetry, fn)
		}
	}
}

// WithOnTaskEnd registers a hook called once per task after it settles,
// successfully or not. Hooks run on the slot goroutine, so they may be
// called concurrently for different tasks.
func WithOnTaskEnd(fn func(Settlement)) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.onTaskEnd = append(cfg.onTaskEnd, fn)
		}
	}
}
