package queue

import (
	"context"
	"sync"
	"time"

	"github.com/utkarsh5026/batchq/internal/cpu"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runState holds the counters of one run.
type runState struct {
	concurrency int // tasks admitted and not yet settled
	peak        int // highest value concurrency reached
	completed   int // tasks settled, including skipped ones
	total       int // tasks in the run, fixed at start
	attempts    int
	failed      int
	skipped     int
}

// scheduler drives a single run: it admits tasks from the pending queue into
// at most maxConcurrency slots, writes each settled outcome into the
// collector, and signals completion once nothing is in flight and every
// task has settled.
//
// Admission and settle both happen under mu, so the counters, the pending
// queue and the collector only ever change inside one critical section and
// the termination check can never miss a wakeup.
type scheduler[R any] struct {
	conf      *config
	logger    *zap.Logger
	pending   *pendingQueue[R]
	collector *resultCollector[R]

	mu     sync.Mutex
	state  runState
	done   chan struct{} // closed when the run is complete
	closed bool
}

func newScheduler[R any](conf *config, registry []Task[R]) *scheduler[R] {
	pending := newPendingQueue(registry)
	return &scheduler[R]{
		conf:      conf,
		logger:    conf.logger,
		pending:   pending,
		collector: newResultCollector[R](pending.total),
		state:     runState{total: pending.total},
		done:      make(chan struct{}),
	}
}

// run executes every task and returns the outcomes in submission order.
//
// A run with no tasks completes immediately. Cancelling ctx stops admission:
// tasks already admitted finish (retries included) and the rest settle with
// ctx's error and zero attempts. In that case the full outcome slice is
// returned together with ctx's error.
func (s *scheduler[R]) run(ctx context.Context) ([]Outcome[R], error) {
	if s.state.total == 0 {
		s.finish()
		return []Outcome[R]{}, nil
	}

	if s.conf.maxConcurrency < 1 {
		return nil, ErrInvalidConcurrency
	}

	slots := min(s.conf.maxConcurrency, s.state.total)
	s.logger.Debug("run starting",
		zap.Int("tasks", s.state.total),
		zap.Int("slots", slots),
		zap.Int("max_attempts", s.conf.attempts()),
	)

	var g errgroup.Group
	for slot := range slots {
		g.Go(func() error {
			s.slot(ctx, slot)
			return nil
		})
	}
	_ = g.Wait()

	var runErr error
	if skipped := s.skipPending(ctx); skipped > 0 {
		runErr = ctx.Err()
		s.logger.Debug("run cancelled before all tasks were admitted",
			zap.Int("skipped", skipped),
			zap.Error(runErr),
		)
	}

	<-s.done
	return s.collector.results(), runErr
}

// slot is one concurrency slot. It keeps admitting the head of the pending
// queue until the queue is empty or ctx is done.
func (s *scheduler[R]) slot(ctx context.Context, slot int) {
	if s.conf.pinCPUs {
		release, core, err := cpu.Pin(slot)
		defer release()
		if err != nil {
			s.logger.Debug("cpu pinning failed", zap.Int("slot", slot), zap.Error(err))
		} else {
			s.logger.Debug("slot pinned", zap.Int("slot", slot), zap.Int("core", core))
		}
	}

	for {
		if ctx.Err() != nil {
			return
		}

		task, index, ok := s.admit()
		if !ok {
			return
		}

		s.settle(executeTask(ctx, s.conf, index, task))
	}
}

// admit pops the head task and takes a concurrency slot for it in the same
// critical section.
func (s *scheduler[R]) admit() (Task[R], int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, index, ok := s.pending.pop()
	if !ok {
		return nil, 0, false
	}

	s.state.concurrency++
	s.state.peak = max(s.state.peak, s.state.concurrency)

	s.logger.Debug("task admitted",
		zap.Int("index", index),
		zap.Int("in_flight", s.state.concurrency),
		zap.Int("pending", s.pending.len()),
	)
	return task, index, true
}

// settle records a finished task: it writes the outcome, releases the
// concurrency slot, counts the task as completed and runs the termination
// check, all under one lock.
func (s *scheduler[R]) settle(out Outcome[R]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.collector.set(out); err != nil {
		s.logger.Error("dropping outcome", zap.Int("index", out.Index), zap.Error(err))
	}

	s.state.concurrency--
	s.state.completed++
	s.state.attempts += out.Attempts
	if out.Err != nil {
		s.state.failed++
	}

	s.logger.Debug("task settled",
		zap.Int("index", out.Index),
		zap.Int("attempts", out.Attempts),
		zap.Bool("ok", out.Err == nil),
		zap.Int("completed", s.state.completed),
	)
	s.checkDone()
}

// skipPending settles every task still queued with ctx's error.
// It returns how many tasks were skipped.
func (s *scheduler[R]) skipPending(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	indices := s.pending.drain()
	for _, idx := range indices {
		if err := s.collector.set(Outcome[R]{Index: idx, Err: ctx.Err()}); err != nil {
			s.logger.Error("dropping skipped outcome", zap.Int("index", idx), zap.Error(err))
		}
		s.state.completed++
		s.state.skipped++
	}
	s.checkDone()
	return len(indices)
}

// checkDone closes done when nothing is in flight and every task has
// settled. Callers must hold mu.
func (s *scheduler[R]) checkDone() {
	if s.closed || s.state.concurrency != 0 || s.state.completed != s.state.total {
		return
	}
	s.closed = true
	close(s.done)
}

func (s *scheduler[R]) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkDone()
}

// stats snapshots the run counters.
func (s *scheduler[R]) stats(elapsed time.Duration) RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return RunStats{
		Total:           s.state.total,
		Succeeded:       s.state.completed - s.state.failed - s.state.skipped,
		Failed:          s.state.failed,
		Skipped:         s.state.skipped,
		Attempts:        s.state.attempts,
		PeakConcurrency: s.state.peak,
		Elapsed:         elapsed,
	}
}
