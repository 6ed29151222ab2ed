package metrics

import (
	"time"

	"parking-hold-engine/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parking"

// Prometheus metrics for the reservation ledger and its HTTP surface
var (
	// holdOperationsTotal counts ledger operations by outcome.
	holdOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "hold_operations_total",
		Help:      "Total number of hold operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// holdOperationLatency measures ledger operation latency including transaction retries.
	holdOperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "hold_operation_latency_seconds",
		Help:      "Hold operation latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// holdsExpiredTotal counts holds persisted as expired, by the path that noticed.
	holdsExpiredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "holds_expired_total",
		Help:      "Total number of holds persisted as expired",
	}, []string{"source"})

	sweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sweeper",
		Name:      "runs_total",
		Help:      "Total number of expiry sweep runs by outcome",
	}, []string{"outcome"})

	occupancyUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "occupancy",
		Name:      "updates_total",
		Help:      "Total number of occupancy writes by kind and whether the observable state changed",
	}, []string{"kind", "changed"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_latency_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Outcome maps an error onto the low-cardinality label used by the ledger metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errs.Is(err, errs.ErrNotFound):
		return "not_found"
	case errs.Is(err, errs.ErrInvalidArgument):
		return "invalid_argument"
	case errs.Is(err, errs.ErrConflict):
		return "conflict"
	case errs.Is(err, errs.ErrInvalidState):
		return "invalid_state"
	case errs.Is(err, errs.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func ObserveHoldOperation(operation string, start time.Time, err error) {
	holdOperationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	holdOperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func AddHoldsExpired(source string, n int) {
	if n > 0 {
		holdsExpiredTotal.WithLabelValues(source).Add(float64(n))
	}
}

func IncSweepRun(err error) {
	sweepRunsTotal.WithLabelValues(Outcome(err)).Inc()
}

func IncOccupancyUpdate(kind string, changed bool) {
	label := "false"
	if changed {
		label = "true"
	}
	occupancyUpdatesTotal.WithLabelValues(kind, label).Inc()
}

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	httpRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
