// Package metrics records per-job counters for the node exporter textfile collector.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ashtadhyayi"

// Metrics holds the collectors of one CLI run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Sutras processed by a job, labelled by outcome
	ItemsTotal *prometheus.CounterVec

	JobDuration    *prometheus.HistogramVec
	JobLastSuccess *prometheus.GaugeVec
	JobFailures    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_total",
				Help:      "Sutras processed by a job",
			},
			[]string{"job", "vritti", "result"},
		),

		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "Duration of a job in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"job"},
		),

		JobLastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "job_last_success_timestamp_seconds",
				Help:      "Unix time of the last successful job",
			},
			[]string{"job"},
		),

		JobFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_failures_total",
				Help:      "Jobs that ended with an error",
			},
			[]string{"job"},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordItems adds ok successes and failed failures for a job.
func (m *Metrics) RecordItems(job, vritti string, ok, failed int) {
	m.ItemsTotal.WithLabelValues(job, vritti, "ok").Add(float64(ok))
	m.ItemsTotal.WithLabelValues(job, vritti, "failed").Add(float64(failed))
}

// Finish observes how long a job ran and whether it succeeded.
func (m *Metrics) Finish(job string, start time.Time, err error) {
	m.JobDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
	if err != nil {
		m.JobFailures.WithLabelValues(job).Inc()
		return
	}
	m.JobLastSuccess.WithLabelValues(job).SetToCurrentTime()
}

// WriteTextfile atomically replaces path with the current metrics in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create metrics directory for %s", path)
	}
	return errors.Wrapf(prometheus.WriteToTextfile(path, m.registry), "write metrics %s", path)
}
