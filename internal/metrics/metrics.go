// Package metrics exposes Prometheus instrumentation for the API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "atelier"

var (
	// HTTPRequests counts requests by method, route pattern, and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// HTTPDuration observes request latency by method and route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// JobsQueued counts background jobs accepted into the queue.
	JobsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "jobs",
		Name:      "queued_total",
		Help:      "Background jobs submitted.",
	})

	// JobsInFlight gauges jobs currently executing.
	JobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "jobs",
		Name:      "in_flight",
		Help:      "Background jobs currently executing.",
	})

	// JobsCompleted counts finished jobs by kind and terminal status.
	JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "jobs",
		Name:      "completed_total",
		Help:      "Background jobs finished.",
	}, []string{"kind", "status"})

	// WorkflowExecutions counts workflow runs by terminal status.
	WorkflowExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "workflows",
		Name:      "executions_total",
		Help:      "Workflow executions finished.",
	}, []string{"status"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one completed HTTP request.
func ObserveRequest(method, path string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
