package benchmarks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/utkarsh5026/batchq/queue"
)

// =============================================================================
// Workload Generators
// =============================================================================

// cpuBound simulates a CPU-intensive mapper
func cpuBound(iterations int) queue.Mapper[int, int] {
	return func(ctx context.Context, n, _ int) (int, error) {
		result := 0
		for i := range iterations {
			result += i * n
		}
		return result, nil
	}
}

// ioBound simulates a call to a slow downstream service
func ioBound(delay time.Duration) queue.Mapper[int, int] {
	return func(ctx context.Context, n, _ int) (int, error) {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return n * 2, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// flaky fails the first attempt of every failEvery-th task
func flaky(failEvery int) queue.Mapper[int, int] {
	var attempts sync.Map
	return func(ctx context.Context, n, index int) (int, error) {
		val, _ := attempts.LoadOrStore(index, new(atomic.Int32))
		if val.(*atomic.Int32).Add(1) == 1 && index%failEvery == 0 {
			return 0, errors.New("transient failure")
		}
		return n * 2, nil
	}
}

func items(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func reportThroughput(b *testing.B, taskCount int) {
	nsPerOp := float64(b.Elapsed().Nanoseconds()) / float64(b.N)
	b.ReportMetric(float64(taskCount)/nsPerOp*1e9, "tasks/sec")
}

// =============================================================================
// Throughput
// =============================================================================

func BenchmarkThroughput_ConcurrencyScaling(b *testing.B) {
	const taskCount = 10000
	data := items(taskCount)

	for _, limit := range []int{1, 2, 4, 8, 16, 32, 64} {
		b.Run(fmt.Sprintf("slots_%d", limit), func(b *testing.B) {
			for b.Loop() {
				_, err := queue.Map(context.Background(), data, cpuBound(100), queue.WithMaxConcurrency(limit))
				if err != nil {
					b.Fatal(err)
				}
			}
			reportThroughput(b, taskCount)
		})
	}
}

func BenchmarkThroughput_BatchSize(b *testing.B) {
	for _, taskCount := range []int{10, 100, 1000, 10000} {
		b.Run(fmt.Sprintf("tasks_%d", taskCount), func(b *testing.B) {
			data := items(taskCount)
			for b.Loop() {
				_, err := queue.Map(context.Background(), data, cpuBound(100), queue.WithMaxConcurrency(8))
				if err != nil {
					b.Fatal(err)
				}
			}
			reportThroughput(b, taskCount)
		})
	}
}

func BenchmarkThroughput_IOBound(b *testing.B) {
	const taskCount = 200
	data := items(taskCount)

	for _, limit := range []int{4, 16, 64} {
		b.Run(fmt.Sprintf("slots_%d", limit), func(b *testing.B) {
			for b.Loop() {
				_, err := queue.Map(context.Background(), data, ioBound(time.Millisecond), queue.WithMaxConcurrency(limit))
				if err != nil {
					b.Fatal(err)
				}
			}
			reportThroughput(b, taskCount)
		})
	}
}

// =============================================================================
// Features
// =============================================================================

func BenchmarkFeatures_Baseline(b *testing.B) {
	data := items(10000)
	for b.Loop() {
		if _, err := queue.Map(context.Background(), data, cpuBound(100), queue.WithMaxConcurrency(8)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFeatures_WithRetry(b *testing.B) {
	data := items(10000)
	for b.Loop() {
		_, err := queue.Map(context.Background(), data, flaky(10),
			queue.WithMaxConcurrency(8),
			queue.WithRetryTimes(1),
			queue.WithRetryDelay(0),
		)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFeatures_WithRateLimit(b *testing.B) {
	data := items(500)

	for _, tps := range []int{1000, 5000, 20000} {
		b.Run(fmt.Sprintf("rate_%d_per_sec", tps), func(b *testing.B) {
			for b.Loop() {
				_, err := queue.Map(context.Background(), data, cpuBound(100),
					queue.WithMaxConcurrency(8),
					queue.WithRateLimit(float64(tps), tps/10),
				)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFeatures_WithHooks(b *testing.B) {
	data := items(10000)
	var hookCalls atomic.Int64

	for b.Loop() {
		_, err := queue.Map(context.Background(), data, cpuBound(100),
			queue.WithMaxConcurrency(8),
			queue.WithBeforeTaskStart(func(int) { hookCalls.Add(1) }),
			queue.WithOnTaskEnd(func(queue.Settlement) { hookCalls.Add(1) }),
		)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFeatures_WithCPUAffinity(b *testing.B) {
	data := items(10000)
	for b.Loop() {
		_, err := queue.Map(context.Background(), data, cpuBound(1000),
			queue.WithMaxConcurrency(4),
			queue.WithCPUAffinity(true),
		)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// =============================================================================
// Memory
// =============================================================================

func BenchmarkMemory_PerTask(b *testing.B) {
	const taskCount = 1000
	data := items(taskCount)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := queue.Map(context.Background(), data, cpuBound(1), queue.WithMaxConcurrency(8)); err != nil {
			b.Fatal(err)
		}
	}
	b.ReportMetric(float64(testing.AllocsPerRun(1, func() {
		_, _ = queue.Map(context.Background(), data, cpuBound(1), queue.WithMaxConcurrency(8))
	}))/taskCount, "allocs/task")
}
