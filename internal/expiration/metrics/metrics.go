// Package metrics holds the Prometheus metrics for the expiration scanner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts scanner activity.
type Metrics struct {
	PoliciesExpired prometheus.Counter
	ScanCycles      prometheus.Counter
	ScanErrors      prometheus.Counter
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
		PoliciesExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_policies_expired_total",
			Help: "Total number of lapsed policies flagged by the scanner",
		}),
		ScanCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_expiration_scan_cycles_total",
			Help: "Total number of expiration scan cycles completed",
		}),
		ScanErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_expiration_scan_errors_total",
			Help: "Total number of expiration scan cycles that failed",
		}),
	}
}
