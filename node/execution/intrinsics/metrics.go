package intrinsics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "quilibrium"
	subsystem        = "intrinsics"
)

var (
	// Process operation metrics
	ProcessDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "process_duration_seconds",
			Help:      "Time taken to process a program instruction",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"program"},
	)

	ProcessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "process_total",
			Help:      "Total number of successful instructions",
		},
		[]string{"program", "instruction"},
	)

	ProcessErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "process_errors_total",
			Help:      "Total number of failed instructions",
		},
		[]string{"program", "instruction"},
	)

	// Commit operation metrics
	CommitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "commit_duration_seconds",
			Help:      "Time taken to commit program state",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"program"},
	)

	CommitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "commit_total",
			Help:      "Total number of successful commit operations",
		},
		[]string{"program"},
	)

	CommitErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "commit_errors_total",
			Help:      "Total number of failed commit operations",
		},
		[]string{"program"},
	)
)
