package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerCollector exposes scheduler and topology Prometheus metrics:
// how long routing decisions take, how many events remain queued, and
// the live state of the spectrum grid.
type SchedulerCollector struct {
	gatherer prometheus.Gatherer

	RouteDuration      prometheus.Histogram
	EventsQueued       prometheus.Gauge
	DisasterEvents     prometheus.Counter
	SpectrumUtilization prometheus.Gauge
	FailedResources    prometheus.Gauge
}

// NewSchedulerCollector registers scheduler metrics against the provided registerer.
func NewSchedulerCollector(reg prometheus.Registerer) (*SchedulerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	routeHistogram, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "eon_route_duration_seconds",
		Help:    "Wall-clock duration of routing decisions (path selection plus window search).",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	}), "eon_route_duration_seconds")
	if err != nil {
		return nil, err
	}

	queueGauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eon_events_queued",
		Help: "Number of events currently pending in the scheduler's event queue.",
	}), "eon_events_queued")
	if err != nil {
		return nil, err
	}

	disasterEvents, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eon_disaster_events_total",
		Help: "Cumulative number of disaster failure events applied to the topology.",
	}), "eon_disaster_events_total")
	if err != nil {
		return nil, err
	}

	utilization, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eon_spectrum_utilization_ratio",
		Help: "Fraction of (link, slot) pairs currently occupied across the topology.",
	}), "eon_spectrum_utilization_ratio")
	if err != nil {
		return nil, err
	}

	failedResources, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eon_failed_resources",
		Help: "Number of links plus nodes currently marked failed by the active disaster.",
	}), "eon_failed_resources")
	if err != nil {
		return nil, err
	}

	return &SchedulerCollector{
		gatherer:            gatherer,
		RouteDuration:       routeHistogram,
		EventsQueued:        queueGauge,
		DisasterEvents:      disasterEvents,
		SpectrumUtilization: utilization,
		FailedResources:     failedResources,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SchedulerCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveRouteDuration records a routing decision duration measurement.
func (c *SchedulerCollector) ObserveRouteDuration(d time.Duration) {
	if c == nil || c.RouteDuration == nil {
		return
	}
	c.RouteDuration.Observe(d.Seconds())
}

// SetEventsQueued updates the pending-event-count gauge.
func (c *SchedulerCollector) SetEventsQueued(count int) {
	if c == nil || c.EventsQueued == nil {
		return
	}
	c.EventsQueued.Set(float64(count))
}

// IncDisasterEvents increments the applied-disaster-event counter.
func (c *SchedulerCollector) IncDisasterEvents() {
	if c == nil || c.DisasterEvents == nil {
		return
	}
	c.DisasterEvents.Inc()
}

// SetSpectrumUtilization sets the spectrum utilization gauge.
func (c *SchedulerCollector) SetSpectrumUtilization(ratio float64) {
	if c == nil || c.SpectrumUtilization == nil {
		return
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	c.SpectrumUtilization.Set(ratio)
}

// SetFailedResources sets the failed-resource-count gauge.
func (c *SchedulerCollector) SetFailedResources(count int) {
	if c == nil || c.FailedResources == nil {
		return
	}
	c.FailedResources.Set(float64(count))
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
