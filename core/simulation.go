package core

import (
	"fmt"

	"github.com/signalsfoundry/eon-disaster-sim/internal/logging"
	"github.com/signalsfoundry/eon-disaster-sim/internal/observability"
	"github.com/signalsfoundry/eon-disaster-sim/model"
)

// NewSimulation validates scenario, wires a Topology, Disaster
// timeline, and one core.ISP per configured ISPConfig (each bound to
// its normal and disaster routing policies), and returns a Scheduler
// ready to Run. It is the single validation and wiring path: whether a
// scenario was loaded from JSON or assembled in memory by a test, it
// goes through here before a simulation starts.
func NewSimulation(scenario *model.Scenario, mc *observability.MetricsCollector, sc *observability.SchedulerCollector, log logging.Logger) (*Scheduler, error) {
	if log == nil {
		log = logging.Noop()
	}
	if scenario == nil || len(scenario.ISPs) == 0 {
		return nil, ErrEmptyScenario
	}

	slots := scenario.Slots
	if slots <= 0 {
		slots = 128 // default per-link grid size when the scenario leaves it unset
	}
	topo, err := NewTopology(scenario.Graph, slots, scenario.KShortest)
	if err != nil {
		return nil, err
	}

	isps := AssignDefaultZones(scenario.ISPs, topo.Slots())
	if err := validatePartition(isps, topo.Graph().Nodes()); err != nil {
		return nil, err
	}

	ispByID := make(map[string]*ISP, len(isps))
	for _, cfg := range isps {
		if !topo.Graph().HasNode(cfg.DatacenterNode) {
			return nil, fmt.Errorf("%w: isp %s datacenter node %s", ErrUnknownNode, cfg.ID, cfg.DatacenterNode)
		}
		normal, err := NewPolicy(cfg.NormalPolicy, cfg, topo, len(isps), isps)
		if err != nil {
			return nil, fmt.Errorf("isp %s normal policy: %w", cfg.ID, err)
		}
		disasterPolicy, err := NewPolicy(cfg.DisasterPolicy, cfg, topo, len(isps), isps)
		if err != nil {
			return nil, fmt.Errorf("isp %s disaster policy: %w", cfg.ID, err)
		}
		ispByID[cfg.ID] = NewISP(cfg, normal, disasterPolicy, log)
	}

	disaster := NewDisaster(scenario.Disaster, topo.Graph())
	metrics := NewMetrics(mc)

	return NewScheduler(scenario, topo, disaster, ispByID, metrics, sc, log), nil
}

// validatePartition checks that every ISP's member set is non-empty,
// that member sets are pairwise disjoint, and that their union covers
// every graph node — the topological partition disaster-aware and
// subnet-scoped policies assume holds.
func validatePartition(isps []model.ISPConfig, nodes []string) error {
	nodeSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		nodeSet[n] = true
	}

	owner := make(map[string]string, len(nodes))
	for _, isp := range isps {
		if len(isp.Members) == 0 {
			return fmt.Errorf("%w: isp %s has no members", ErrBadISPMembers, isp.ID)
		}
		for _, m := range isp.Members {
			if !nodeSet[m] {
				return fmt.Errorf("%w: isp %s member %s", ErrUnknownNode, isp.ID, m)
			}
			if prior, ok := owner[m]; ok {
				return fmt.Errorf("%w: node %s claimed by both %s and %s", ErrBadISPMembers, m, prior, isp.ID)
			}
			owner[m] = isp.ID
		}
	}
	for _, n := range nodes {
		if _, ok := owner[n]; !ok {
			return fmt.Errorf("%w: node %s is not a member of any ISP", ErrBadISPMembers, n)
		}
	}
	return nil
}
