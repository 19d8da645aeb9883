package core

import (
	"sync"
	"time"

	"github.com/signalsfoundry/eon-disaster-sim/internal/observability"
	"github.com/signalsfoundry/eon-disaster-sim/model"
)

// Metrics accumulates per-ISP outcome counters over the course of a
// run and mirrors every per-ISP counter increment into the process's
// Prometheus collector, if one is attached (the total arrival count is
// kept in memory only). There is no package-level global:
// each Scheduler owns exactly one Metrics instance, so concurrent
// simulation runs (as in a table-driven test) never share state.
type Metrics struct {
	mu            sync.Mutex
	totalArrivals uint64
	perISP        map[string]model.PerISPCounters

	collector *observability.MetricsCollector
}

// NewMetrics constructs an empty Metrics. collector may be nil, in
// which case Prometheus mirroring is skipped.
func NewMetrics(collector *observability.MetricsCollector) *Metrics {
	return &Metrics{
		perISP:    make(map[string]model.PerISPCounters),
		collector: collector,
	}
}

func (m *Metrics) ensure(isp string) model.PerISPCounters {
	c, ok := m.perISP[isp]
	if !ok {
		c = model.NewPerISPCounters()
		m.perISP[isp] = c
	}
	return c
}

// RecordArrival counts one more arrival, regardless of outcome.
func (m *Metrics) RecordArrival() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalArrivals++
}

// RecordAdmitted records a successful admission for the given ISP and
// request class.
func (m *Metrics) RecordAdmitted(isp string, class model.RequestClass) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.ensure(isp)
	c.Admitted[class]++
	if m.collector != nil {
		m.collector.Admitted.WithLabelValues(isp, class.String()).Inc()
	}
}

// RecordBlocked records a blocked request for the given ISP, class,
// and reason.
func (m *Metrics) RecordBlocked(isp string, class model.RequestClass, reason model.BlockReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.ensure(isp)
	c.Blocked[class]++
	c.BlockReasonCounts[reason]++
	if m.collector != nil {
		m.collector.Blocked.WithLabelValues(isp, class.String()).Inc()
		m.collector.BlockedByReason.WithLabelValues(isp, reason.String()).Inc()
	}
}

// RecordDisrupted records an active allocation invalidated by a
// disaster failure.
func (m *Metrics) RecordDisrupted(isp string, class model.RequestClass) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.ensure(isp)
	c.Disrupted[class]++
	if m.collector != nil {
		m.collector.Disrupted.WithLabelValues(isp, class.String()).Inc()
	}
}

// RecordRerouted records a disrupted request that was successfully
// rerouted onto a new path/window.
func (m *Metrics) RecordRerouted(isp string, class model.RequestClass) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.ensure(isp)
	c.Rerouted[class]++
	if m.collector != nil {
		m.collector.Rerouted.WithLabelValues(isp, class.String()).Inc()
	}
}

// RecordMigrationBytes adds to an ISP's cumulative migration data
// volume once its migration request is admitted.
func (m *Metrics) RecordMigrationBytes(isp string, bytes float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.ensure(isp)
	c.MigrationBytes += bytes
	if m.collector != nil {
		m.collector.MigrationBytes.WithLabelValues(isp).Add(bytes)
	}
}

// Snapshot returns a point-in-time, serializable copy of the
// accumulated counters, stamped with at (the simulation time the
// snapshot was taken).
func (m *Metrics) Snapshot(at time.Duration) model.MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := model.MetricsSnapshot{
		At:            at.String(),
		TotalArrivals: m.totalArrivals,
		PerISP:        make(map[string]model.PerISPCounters, len(m.perISP)),
	}
	for isp, c := range m.perISP {
		out.PerISP[isp] = copyCounters(c)
	}
	return out
}

func copyCounters(c model.PerISPCounters) model.PerISPCounters {
	cp := model.NewPerISPCounters()
	for k, v := range c.Admitted {
		cp.Admitted[k] = v
	}
	for k, v := range c.Blocked {
		cp.Blocked[k] = v
	}
	for k, v := range c.Disrupted {
		cp.Disrupted[k] = v
	}
	for k, v := range c.Rerouted {
		cp.Rerouted[k] = v
	}
	for k, v := range c.BlockReasonCounts {
		cp.BlockReasonCounts[k] = v
	}
	cp.MigrationBytes = c.MigrationBytes
	return cp
}
