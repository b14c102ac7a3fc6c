// Package metrics holds the Prometheus metrics for the insurance core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts core insurance operations.
type Metrics struct {
	ValidityChecks   prometheus.Counter
	ClaimsRegistered prometheus.Counter
	ClaimsRejected   prometheus.Counter
	HistoryRequests  prometheus.Counter
}

// New creates and registers the metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on the given registerer. Tests pass a fresh
// registry to avoid duplicate-registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ValidityChecks: factory.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_validity_checks_total",
			Help: "Total number of insurance validity checks evaluated",
		}),
		ClaimsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_claims_registered_total",
			Help: "Total number of claims successfully registered",
		}),
		ClaimsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_claims_rejected_total",
			Help: "Total number of claims rejected for lack of an eligible policy",
		}),
		HistoryRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_history_requests_total",
			Help: "Total number of car history timelines built",
		}),
	}
}
