// Package metrics holds the prometheus collectors of the service. They are
// registered on the default registry served by /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "medicoes"

var (
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_runs_total",
		Help:      "Synchronization cycles by result (ok, partial, failed, not_configured).",
	}, []string{"result"})

	SyncSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_skipped_total",
		Help:      "Triggers dropped because a cycle was already running.",
	})

	SyncEventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_events_ingested_total",
		Help:      "Consumption events created from sheet rows.",
	})

	SyncErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_errors_total",
		Help:      "Soft errors (unmatched materials, failed inserts) during synchronization.",
	})

	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sync_duration_seconds",
		Help:      "Duration of synchronization cycles.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	MirrorWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mirror_writes_total",
		Help:      "Outbound sheet writes by result (ok, failed, aborted, not_configured).",
	}, []string{"result"})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consumption_submissions_total",
		Help:      "Manual consumption submissions by result (ok, invalid, not_found, error).",
	}, []string{"result"})
)
