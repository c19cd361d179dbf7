package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestHooks_BeforeTaskStartAndOnTaskEnd(t *testing.T) {
	var started, ended atomic.Int32
	var mu sync.Mutex
	settled := make(map[int]Settlement)

	exec := New[any, int](
		WithMaxConcurrency(2),
		WithRetryTimes(1),
		WithRetryDelay(0),
		WithBeforeTaskStart(func(index int) {
			started.Add(1)
		}),
		WithOnTaskEnd(func(s Settlement) {
			ended.Add(1)
			mu.Lock()
			settled[s.Index] = s
			mu.Unlock()
		}),
	).AddTask(
		constant(1),
		func(ctx context.Context) (int, error) { return 0, errors.New("bad") },
		constant(3),
	)

	if _, err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Start and end fire once per task, not once per attempt
	if started.Load() != 3 {
		t.Errorf("expected 3 start hooks, got %d", started.Load())
	}
	if ended.Load() != 3 {
		t.Errorf("expected 3 end hooks, got %d", ended.Load())
	}

	if s := settled[1]; s.Err == nil || s.Attempts != 2 {
		t.Errorf("expected failing settlement with 2 attempts, got %+v", s)
	}
	if s := settled[0]; s.Err != nil || s.Attempts != 1 {
		t.Errorf("expected successful settlement with 1 attempt, got %+v", s)
	}
}

func TestHooks_OnRetry(t *testing.T) {
	type retryCall struct {
		index   int
		attempt int
	}
	var mu sync.Mutex
	var calls []retryCall

	exec := New[any, int](
		WithRetryTimes(3),
		WithRetryDelay(time.Millisecond),
		WithOnRetry(func(index, attempt int, err error) {
			mu.Lock()
			calls = append(calls, retryCall{index, attempt})
			mu.Unlock()
		}),
	).AddTask(func(ctx context.Context) (int, error) {
		return 0, errors.New("always")
	})

	if _, err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 4 attempts, the last failure is not followed by a retry
	if len(calls) != 3 {
		t.Fatalf("expected 3 retry hooks, got %d: %v", len(calls), calls)
	}
	for i, c := range calls {
		if c.index != 0 || c.attempt != i+1 {
			t.Errorf("retry hook %d: got %+v", i, c)
		}
	}
}

func TestHooks_OnTaskEndNotCalledForSkippedTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ended atomic.Int32
	exec := New[any, int](
		WithMaxConcurrency(1),
		WithOnTaskEnd(func(Settlement) { ended.Add(1) }),
	).AddTask(
		func(ctx context.Context) (int, error) {
			cancel()
			return 1, nil
		},
		constant(2),
	)

	_, _ = exec.Run(ctx)
	if ended.Load() != 1 {
		t.Errorf("expected only the admitted task to fire OnTaskEnd, got %d", ended.Load())
	}
}

func TestHooks_Accumulate(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	exec := New[any, int](
		WithMaxConcurrency(1),
		WithBeforeTaskStart(func(int) { record("start-a") }),
		WithBeforeTaskStart(func(int) { record("start-b") }),
		WithOnTaskEnd(func(Settlement) { record("end-a") }),
		WithOnTaskEnd(nil),
		WithOnTaskEnd(func(Settlement) { record("end-b") }),
	).AddTask(constant(1))

	if _, err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"start-a", "start-b", "end-a", "end-b"}
	if len(order) != len(want) {
		t.Fatalf("expected hooks %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("hook %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestHooks_SetterCopiesDoNotShareHooks(t *testing.T) {
	var calls atomic.Int32
	base := New[any, int](WithOnTaskEnd(func(Settlement) { calls.Add(1) }))
	derived := base.SetMaxConcurrency(1)

	// Appending to the derived copy's config must not leak into base
	WithOnTaskEnd(func(Settlement) { calls.Add(100) })(derived.conf)

	if _, err := base.AddTask(constant(1)).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected only the base hook to fire, got %d", calls.Load())
	}
}
