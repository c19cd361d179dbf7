// Package metrics exposes executor activity as Prometheus metrics.
// A Metrics value plugs into an executor through the hook options it returns.
package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/utkarsh5026/batchq/queue"
)

const namespace = "batchq"

// Metrics contains the executor metrics for one named batch.
type Metrics struct {
	batch string

	TasksAdmitted prometheus.Counter
	TasksSettled  *prometheus.CounterVec
	Retries       prometheus.Counter
	Attempts      prometheus.Counter
	InFlight      prometheus.Gauge
	TaskDuration  *prometheus.HistogramVec
	Panics        prometheus.Counter
}

// New creates the metrics for a batch. batch becomes a constant label so
// several executors can share a registry.
func New(batch string) *Metrics {
	labels := prometheus.Labels{"batch": batch}

	return &Metrics{
		batch: batch,

		TasksAdmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "tasks",
				Name:        "admitted_total",
				Help:        "Total number of tasks admitted into a concurrency slot",
				ConstLabels: labels,
			},
		),

		TasksSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "tasks",
				Name:        "settled_total",
				Help:        "Total number of settled tasks by final status",
				ConstLabels: labels,
			},
			[]string{"status"},
		),

		Retries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "tasks",
				Name:        "retries_total",
				Help:        "Total number of retries scheduled after a failed attempt",
				ConstLabels: labels,
			},
		),

		Attempts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "tasks",
				Name:        "attempts_total",
				Help:        "Total number of task invocations, retries included",
				ConstLabels: labels,
			},
		),

		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "tasks",
				Name:        "in_flight",
				Help:        "Number of tasks currently admitted and not yet settled",
				ConstLabels: labels,
			},
		),

		TaskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "tasks",
				Name:        "duration_seconds",
				Help:        "Time from admission to settle in seconds, retry delays included",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"status", "attempts"},
		),

		Panics: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "tasks",
				Name:        "panics_total",
				Help:        "Total number of tasks whose final attempt panicked",
				ConstLabels: labels,
			},
		),
	}
}

// Register registers every metric with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.TasksAdmitted,
		m.TasksSettled,
		m.Retries,
		m.Attempts,
		m.InFlight,
		m.TaskDuration,
		m.Panics,
	}
}

// Options returns the executor hooks that feed these metrics.
func (m *Metrics) Options() []queue.Option {
	return []queue.Option{
		queue.WithBeforeTaskStart(m.RecordAdmitted),
		queue.WithOnRetry(m.RecordRetry),
		queue.WithOnTaskEnd(m.RecordSettled),
	}
}

// RecordAdmitted counts an admission and raises the in-flight gauge.
func (m *Metrics) RecordAdmitted(index int) {
	m.TasksAdmitted.Inc()
	m.InFlight.Inc()
}

// RecordRetry counts a scheduled retry.
func (m *Metrics) RecordRetry(index, attempt int, err error) {
	m.Retries.Inc()
}

// RecordSettled records the final state of a task.
func (m *Metrics) RecordSettled(s queue.Settlement) {
	status := "ok"
	if s.Err != nil {
		status = "failed"
	}

	m.InFlight.Dec()
	m.Attempts.Add(float64(s.Attempts))
	m.TasksSettled.WithLabelValues(status).Inc()
	m.TaskDuration.WithLabelValues(status, strconv.Itoa(s.Attempts)).Observe(s.Elapsed.Seconds())

	if errors.Is(s.Err, queue.ErrTaskPanic) {
		m.Panics.Inc()
	}
}
