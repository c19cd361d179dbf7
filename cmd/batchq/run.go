package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/utkarsh5026/batchq/internal/metrics"
	"github.com/utkarsh5026/batchq/queue"
	"go.uber.org/zap"
)

// executorOptions turns the loaded configuration into executor options and
// wires the metrics and the progress bar into the task hooks.
func (a *app) executorOptions(batch string, bar *progressbar.ProgressBar) ([]queue.Option, error) {
	m := metrics.New(batch)
	if err := m.Register(a.registry); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	logger := a.logger.With(zap.String("batch", batch))

	opts := append(m.Options(),
		queue.WithMaxConcurrency(a.cfg.Concurrency),
		queue.WithRetryTimes(a.cfg.Retries),
		queue.WithRetryDelay(a.cfg.RetryDelay),
		queue.WithLogger(logger),
		queue.WithCPUAffinity(a.cfg.PinCPUs),
	)
	if bar != nil {
		opts = append(opts, queue.WithOnTaskEnd(func(queue.Settlement) {
			_ = bar.Add(1)
		}))
	}
	if a.cfg.Rate > 0 {
		opts = append(opts, queue.WithRateLimit(a.cfg.Rate, a.cfg.Burst))
	}
	return opts, nil
}

// progressBar returns a bar on the command's stderr, or nil when disabled.
func (a *app) progressBar(cmd *cobra.Command, enabled bool, total int, description string) *progressbar.ProgressBar {
	if !enabled || total == 0 {
		return nil
	}
	return newProgressBar(cmd.ErrOrStderr(), total, description)
}

// newProgressBar draws task progress on w.
func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("tasks"),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
	)
}
