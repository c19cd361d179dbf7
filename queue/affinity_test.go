package queue

import (
	"context"
	"testing"
)

func TestExecutor_CPUAffinity(t *testing.T) {
	exec := New[int, int](WithCPUAffinity(true), WithMaxConcurrency(2)).SetData([]int{1, 2, 3, 4})

	outcomes, err := exec.Every(context.Background(), func(ctx context.Context, n, i int) (int, error) {
		sum := 0
		for k := range n * 1000 {
			sum += k
		}
		return sum, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, o := range outcomes {
		n := i + 1
		want := (n*1000 - 1) * n * 1000 / 2
		if o.Value != want {
			t.Errorf("slot %d: expected %d, got %d", i, want, o.Value)
		}
	}
}
