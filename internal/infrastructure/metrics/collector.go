// Package metrics provides the Prometheus collector for authorization
// decisions. It implements the application layer's Metrics interface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the authorization core.
// Metrics register with the default registry via promauto; construct at
// most one Collector per process.
type Collector struct {
	checksTotal *prometheus.CounterVec
	bansTotal   *prometheus.CounterVec
}

// NewCollector creates and registers the core's metrics.
//
// Metrics:
//   - authcore_checks_total{permission, result}: detailed permission
//     checks by outcome variant
//   - authcore_bans_total{kind}: ban lifecycle operations (ban, auto_ban,
//     unban)
func NewCollector() *Collector {
	return &Collector{
		checksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "authcore",
				Name:      "checks_total",
				Help:      "Total number of detailed permission checks, labeled by permission and outcome variant",
			},
			[]string{"permission", "result"},
		),

		bansTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "authcore",
				Name:      "bans_total",
				Help:      "Total number of ban lifecycle operations, labeled by kind",
			},
			[]string{"kind"},
		),
	}
}

// ObserveCheck counts one detailed permission check.
func (c *Collector) ObserveCheck(permission, result string) {
	c.checksTotal.WithLabelValues(permission, result).Inc()
}

// ObserveBan counts one ban lifecycle operation.
func (c *Collector) ObserveBan(kind string) {
	c.bansTotal.WithLabelValues(kind).Inc()
}
