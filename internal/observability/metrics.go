// Package observability holds the Prometheus collectors exported on /metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tritrack",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tritrack",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	workoutsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tritrack",
		Subsystem: "workouts",
		Name:      "written_total",
		Help:      "Planned and completed workouts written, by kind, action and discipline.",
	}, []string{"kind", "action", "discipline"})
	viewFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tritrack",
		Subsystem: "views",
		Name:      "load_fallbacks_total",
		Help:      "View reads that failed and were replaced by empty data, by source.",
	}, []string{"source"})
	eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tritrack",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Workout events handed to the broker, by type and outcome.",
	}, []string{"type", "outcome"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, workoutsWritten, viewFallbacks, eventsPublished)
}

// RecordRequest counts one served request.
func RecordRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// RecordWorkoutWrite counts a planned or completed workout insert, update or delete.
func RecordWorkoutWrite(kind, action, discipline string) {
	workoutsWritten.WithLabelValues(kind, action, discipline).Inc()
}

// RecordViewFallback counts a failed view read.
func RecordViewFallback(source string) {
	viewFallbacks.WithLabelValues(source).Inc()
}

// RecordEventPublished counts a publish attempt.
func RecordEventPublished(eventType string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	eventsPublished.WithLabelValues(eventType, outcome).Inc()
}
