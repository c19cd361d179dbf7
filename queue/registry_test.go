package queue

import (
	"context"
	"testing"
)

func TestPendingQueue_Pop(t *testing.T) {
	q := newPendingQueue([]Task[int]{constant(10), constant(11), constant(12)})

	for want := range 3 {
		task, idx, ok := q.pop()
		if !ok {
			t.Fatalf("pop %d: unexpectedly empty", want)
		}
		if idx != want {
			t.Errorf("pop %d: got index %d", want, idx)
		}
		if v, _ := task(context.Background()); v != 10+want {
			t.Errorf("pop %d: got task producing %d", want, v)
		}
		if q.len() != 2-want {
			t.Errorf("pop %d: expected %d remaining, got %d", want, 2-want, q.len())
		}
	}

	if _, _, ok := q.pop(); ok {
		t.Error("expected pop on empty queue to fail")
	}
}

func TestPendingQueue_Drain(t *testing.T) {
	q := newPendingQueue([]Task[int]{constant(1), constant(2), constant(3), constant(4)})
	_, _, _ = q.pop()

	got := q.drain()
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
	if q.len() != 0 {
		t.Errorf("expected empty queue after drain, got %d", q.len())
	}
}
