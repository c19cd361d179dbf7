package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/utkarsh5026/batchq/internal/logging"
	"github.com/utkarsh5026/batchq/queue"
	"go.uber.org/zap"
)

var errSimulated = errors.New("simulated failure")

type simulateOptions struct {
	tasks    int
	minDelay time.Duration
	maxDelay time.Duration
	failRate float64
	seed     uint64
	progress bool
}

func newSimulateCmd(a *app) *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run synthetic tasks with random latency and failures",
		Long: `simulate runs --tasks synthetic tasks. Each attempt sleeps a random
delay between --min-delay and --max-delay and fails with probability
--fail-rate. A successful task returns twice its index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSimulate(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.tasks, "tasks", 20, "number of tasks")
	cmd.Flags().DurationVar(&opts.minDelay, "min-delay", 10*time.Millisecond, "minimum task latency")
	cmd.Flags().DurationVar(&opts.maxDelay, "max-delay", 200*time.Millisecond, "maximum task latency")
	cmd.Flags().Float64Var(&opts.failRate, "fail-rate", 0.2, "probability that an attempt fails, in [0, 1]")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "random seed")
	cmd.Flags().BoolVar(&opts.progress, "progress", true, "show a progress bar on stderr")
	return cmd
}

func (o simulateOptions) validate() error {
	if o.tasks < 0 {
		return fmt.Errorf("--tasks must not be negative, got %d", o.tasks)
	}
	if o.minDelay < 0 || o.maxDelay < o.minDelay {
		return fmt.Errorf("delays must satisfy 0 <= --min-delay <= --max-delay, got %s and %s", o.minDelay, o.maxDelay)
	}
	if o.failRate < 0 || o.failRate > 1 {
		return fmt.Errorf("--fail-rate must be in [0, 1], got %v", o.failRate)
	}
	return nil
}

// mapper builds the synthetic task body. Attempts of a task run one
// after another, so each task owns its random source and a run is
// reproducible for a given seed.
func (o simulateOptions) mapper() queue.Mapper[int, int] {
	sources := make([]*rand.Rand, o.tasks)
	for i := range sources {
		sources[i] = rand.New(rand.NewPCG(o.seed, uint64(i)))
	}

	return func(ctx context.Context, n, index int) (int, error) {
		rng := sources[index]

		delay := o.minDelay
		if spread := o.maxDelay - o.minDelay; spread > 0 {
			delay += time.Duration(rng.Int64N(int64(spread) + 1))
		}
		fail := rng.Float64() < o.failRate

		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return 0, ctx.Err()
		}

		if fail {
			logging.FromContext(ctx).Debug("simulated failure",
				zap.Int("index", index),
				zap.Duration("delay", delay),
			)
			return 0, fmt.Errorf("task %d: %w", index, errSimulated)
		}
		return n * 2, nil
	}
}

func (a *app) runSimulate(cmd *cobra.Command, opts simulateOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	items := make([]int, opts.tasks)
	inputs := make([]string, opts.tasks)
	for i := range items {
		items[i] = i
		inputs[i] = "task-" + strconv.Itoa(i)
	}

	bar := a.progressBar(cmd, opts.progress, opts.tasks, "simulate")
	qopts, err := a.executorOptions("simulate", bar)
	if err != nil {
		return err
	}

	exec := queue.New[int, int](qopts...).SetData(items)
	outcomes, runErr := exec.Every(cmd.Context(), opts.mapper())
	if bar != nil {
		_ = bar.Finish()
	}
	if errors.Is(runErr, queue.ErrInvalidConcurrency) {
		return runErr
	}

	out := cmd.OutOrStdout()
	renderResults(out, buildRows(inputs, outcomes, strconv.Itoa))
	renderStats(out, exec.Stats())
	return runErr
}
