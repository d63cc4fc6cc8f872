// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Budget sync outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeNoBudget = "no_budget"
	OutcomeFailed   = "failed"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "How many HTTP requests processed, partitioned by status code, HTTP method and route.",
		},
		[]string{"code", "method", "url"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "request_duration_seconds",
			Help: "The HTTP request latencies in seconds.",
		},
		[]string{"code", "method", "url"},
	)

	BudgetSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "budget_sync_total",
			Help: "Budget spent-total adjustments, partitioned by transaction operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
)

var collectors = []prometheus.Collector{
	RequestCount,
	RequestDuration,
	BudgetSyncs,
}

// Register registers all collectors with reg. Collectors that are already
// registered are accepted, so tests can build several routers per process.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return fmt.Errorf("could not register collector with Prometheus: %w", err)
		}
	}
	return nil
}

// RecordSync counts one budget sync attempt.
func RecordSync(operation, outcome string) {
	BudgetSyncs.WithLabelValues(operation, outcome).Inc()
}
