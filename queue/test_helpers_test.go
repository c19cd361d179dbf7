package queue

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// concurrencyProbe tracks how many instrumented tasks run at once.
type concurrencyProbe struct {
	current atomic.Int32
	peak    atomic.Int32
}

func (p *concurrencyProbe) enter() {
	n := p.current.Add(1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			return
		}
	}
}

func (p *concurrencyProbe) exit() {
	p.current.Add(-1)
}

// attemptLog records attempt timestamps per task index.
type attemptLog struct {
	mu    sync.Mutex
	times map[int][]time.Time
}

func newAttemptLog() *attemptLog {
	return &attemptLog{times: make(map[int][]time.Time)}
}

func (l *attemptLog) record(index int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.times[index] = append(l.times[index], time.Now())
}

func (l *attemptLog) attempts(index int) []time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]time.Time(nil), l.times[index]...)
}

// doubling returns a task computing input*2 after a random 10-50ms delay.
func doubling(input int, probe *concurrencyProbe, rng *rand.Rand) Task[int] {
	delay := time.Duration(10+rng.Intn(41)) * time.Millisecond
	return func(ctx context.Context) (int, error) {
		probe.enter()
		defer probe.exit()
		time.Sleep(delay)
		return input * 2, nil
	}
}

// constant returns a task that succeeds immediately with v.
func constant[R any](v R) Task[R] {
	return func(ctx context.Context) (R, error) {
		return v, nil
	}
}
