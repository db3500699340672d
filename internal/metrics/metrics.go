// Package metrics exposes Prometheus instruments for reading sessions, the
// statistics recompute job, authentication and HTTP traffic.
//
// Usage:
//
//	metrics.RecordSessionOutcome("start", "switched")
//	metrics.RecordReadingTime(2 * time.Hour)
//	metrics.RecordRecompute(report.Processed, report.Failed, report.Took, err)
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "readtrack"

var (
	// SessionOutcomesTotal counts start/end calls by their outcome.
	SessionOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reading_session_outcomes_total",
			Help:      "Reading session start and end calls by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// ReadingSecondsTotal accumulates the reading time folded into statistics.
	ReadingSecondsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reading_seconds_total",
			Help:      "Total reading time recorded from ended sessions",
		},
	)

	// RecomputeRunsTotal counts rolling window recompute runs by status.
	RecomputeRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_recompute_runs_total",
			Help:      "Rolling window recompute runs",
		},
		[]string{"status"},
	)

	// RecomputeUsersTotal counts users visited by the recompute job.
	RecomputeUsersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_recompute_users_total",
			Help:      "Users processed by the rolling window recompute",
		},
		[]string{"result"},
	)

	// RecomputeDuration tracks how long a full recompute takes.
	RecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stats_recompute_duration_seconds",
			Help:      "Duration of rolling window recompute runs",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)

	// AuthAttemptsTotal counts registration and login attempts.
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Registration and login attempts by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// HTTPRequestDuration tracks request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordSessionOutcome increments the outcome counter for a session operation.
func RecordSessionOutcome(operation, outcome string) {
	SessionOutcomesTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordReadingTime adds an ended session's duration.
func RecordReadingTime(d time.Duration) {
	if d > 0 {
		ReadingSecondsTotal.Add(d.Seconds())
	}
}

// RecordRecompute records one recompute run.
func RecordRecompute(processed, failed int, took time.Duration, err error) {
	status := "success"
	switch {
	case err != nil:
		status = "error"
	case failed > 0:
		status = "partial"
	}
	RecomputeRunsTotal.WithLabelValues(status).Inc()
	RecomputeUsersTotal.WithLabelValues("processed").Add(float64(processed))
	RecomputeUsersTotal.WithLabelValues("failed").Add(float64(failed))
	RecomputeDuration.Observe(took.Seconds())
}

// RecordAuthAttempt increments the auth attempt counter.
func RecordAuthAttempt(operation string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordHTTPRequest observes a finished request.
func RecordHTTPRequest(method, route string, status int, took time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(took.Seconds())
}
