package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector bundles the Prometheus metrics describing routing
// outcomes across the run: admissions, blocks (with reason), disaster
// disruptions, reroutes, and migration traffic volume, all labeled by
// owning ISP; the block-reason counter is further labeled by reason,
// the migration-volume counter by ISP alone, and the rest by request
// class.
type MetricsCollector struct {
	gatherer prometheus.Gatherer

	Admitted        *prometheus.CounterVec
	Blocked         *prometheus.CounterVec
	BlockedByReason *prometheus.CounterVec
	Disrupted       *prometheus.CounterVec
	Rerouted        *prometheus.CounterVec
	MigrationBytes  *prometheus.CounterVec
}

// NewMetricsCollector registers the simulator's Prometheus metrics
// against the provided registerer, defaulting to the global registry
// when nil.
func NewMetricsCollector(reg prometheus.Registerer) (*MetricsCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	admitted, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eon_requests_admitted_total",
		Help: "Total number of requests admitted, labeled by ISP and request class.",
	}, []string{"isp", "class"}), "eon_requests_admitted_total")
	if err != nil {
		return nil, err
	}

	blocked, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eon_requests_blocked_total",
		Help: "Total number of requests blocked, labeled by ISP and request class.",
	}, []string{"isp", "class"}), "eon_requests_blocked_total")
	if err != nil {
		return nil, err
	}

	blockedByReason, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eon_requests_blocked_reason_total",
		Help: "Total number of requests blocked, labeled by ISP and block reason.",
	}, []string{"isp", "reason"}), "eon_requests_blocked_reason_total")
	if err != nil {
		return nil, err
	}

	disrupted, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eon_requests_disrupted_total",
		Help: "Total number of active requests disrupted by a disaster failure, labeled by ISP and request class.",
	}, []string{"isp", "class"}), "eon_requests_disrupted_total")
	if err != nil {
		return nil, err
	}

	rerouted, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eon_requests_rerouted_total",
		Help: "Total number of disrupted requests successfully rerouted, labeled by ISP and request class.",
	}, []string{"isp", "class"}), "eon_requests_rerouted_total")
	if err != nil {
		return nil, err
	}

	migrationBytes, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eon_migration_bytes_total",
		Help: "Cumulative datacenter migration data volume admitted, labeled by ISP.",
	}, []string{"isp"}), "eon_migration_bytes_total")
	if err != nil {
		return nil, err
	}

	return &MetricsCollector{
		gatherer:        gatherer,
		Admitted:        admitted,
		Blocked:         blocked,
		BlockedByReason: blockedByReason,
		Disrupted:       disrupted,
		Rerouted:        rerouted,
		MigrationBytes:  migrationBytes,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *MetricsCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
