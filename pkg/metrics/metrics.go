package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "libraryapp"

// Divergence kinds
const (
	DivergenceBackendOnly        = "backend_only"
	DivergenceCatalogWriteFailed = "catalog_write_failed"
	DivergenceBackendWriteFailed = "backend_write_failed"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	lifecycleOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_total",
			Help:      "Create/delete requests by scheme and result.",
		},
		[]string{"scheme", "op", "result"},
	)
	divergences = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "divergence_total",
			Help:      "Detected or introduced catalog/backend divergences.",
		},
		[]string{"scheme", "kind"},
	)
)

// Register registers all collectors with the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, lifecycleOps, divergences)
	})
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	Register()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, route, statusLabel).Inc()
	httpDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}

func RecordLifecycle(scheme, op, result string) {
	Register()
	lifecycleOps.WithLabelValues(scheme, op, result).Inc()
}

func RecordDivergence(scheme, kind string) {
	Register()
	divergences.WithLabelValues(scheme, kind).Inc()
}
