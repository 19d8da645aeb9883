package core

import (
	"context"
	"testing"
	"time"

	"github.com/signalsfoundry/eon-disaster-sim/internal/logging"
	"github.com/signalsfoundry/eon-disaster-sim/model"
)

func TestISPReactionSwitchesPolicyIrrevocably(t *testing.T) {
	g, err := NewGraph(map[string]map[string]float64{
		"epi": {"A": 1},
		"A":   {"B": 1, "C": 10},
	})
	if err != nil {
		t.Fatalf("NewGraph error: %v", err)
	}
	disaster := NewDisaster(model.DisasterConfig{Epicenter: "epi", RadiusKm: 0}, g)

	cfg := model.ISPConfig{
		ID:                       "isp1",
		Members:                  []string{"A", "B", "C"},
		DatacenterNode:           "A",
		MigrationSlotDemand:      1,
		MigrationDataVolumeBytes: 1000,
		PerSlotThroughputBps:     500,
	}
	isp := NewISP(cfg, NewFirstFit(), NewFirstFitDisasterAware(), logging.Noop())

	if isp.ActivePolicyName() != "first_fit" {
		t.Fatalf("expected normal policy active before reaction, got %s", isp.ActivePolicyName())
	}

	req := isp.OnReaction(context.Background(), disaster)
	if req == nil {
		t.Fatalf("expected a migration request on first reaction")
	}
	if !isp.Reacted() {
		t.Fatalf("expected Reacted() true after OnReaction")
	}
	if isp.ActivePolicyName() != "first_fit_da" {
		t.Fatalf("expected disaster policy active after reaction, got %s", isp.ActivePolicyName())
	}
	if req.Class != model.Migration {
		t.Fatalf("expected migration request class, got %v", req.Class)
	}
	if req.Src != "A" {
		t.Fatalf("expected migration to originate at the datacenter node, got %s", req.Src)
	}
	// C (graph distance 1+10=11 from epi via A) is farther than B
	// (distance 1+1=2), so C is the argmax destination.
	if req.Dst != "C" {
		t.Fatalf("expected migration to target the farthest member C, got %s", req.Dst)
	}
	if req.HoldingTime != 2*time.Second {
		t.Fatalf("expected holding time of data_volume/throughput = 2s, got %v", req.HoldingTime)
	}

	if again := isp.OnReaction(context.Background(), disaster); again != nil {
		t.Fatalf("expected OnReaction to be a no-op after the first call, got %+v", again)
	}
}

func TestISPMigrationTargetFallsBackWhenNoOtherMembers(t *testing.T) {
	g, err := NewGraph(map[string]map[string]float64{"epi": {"A": 1}})
	if err != nil {
		t.Fatalf("NewGraph error: %v", err)
	}
	disaster := NewDisaster(model.DisasterConfig{Epicenter: "epi", RadiusKm: 0}, g)
	cfg := model.ISPConfig{ID: "isp1", Members: []string{"A"}, DatacenterNode: "A"}
	isp := NewISP(cfg, NewFirstFit(), NewFirstFitDisasterAware(), logging.Noop())

	req := isp.OnReaction(context.Background(), disaster)
	if req.Dst != "A" {
		t.Fatalf("expected fallback to the datacenter node itself, got %s", req.Dst)
	}
}

func TestISPOnDisruptedReroutesOrBlocks(t *testing.T) {
	topo, err := NewTopology(map[string]map[string]float64{
		"A": {"B": 1, "C": 1},
		"B": {"D": 1},
		"C": {"D": 1},
	}, 4, 3)
	if err != nil {
		t.Fatalf("NewTopology error: %v", err)
	}
	cfg := model.ISPConfig{ID: "isp1", Members: []string{"A", "B", "C", "D"}}
	isp := NewISP(cfg, NewFirstFitDisasterAware(), NewFirstFitDisasterAware(), logging.Noop())

	req := &model.Request{ID: "r1", Src: "A", Dst: "D", SlotDemand: 1, HoldingTime: time.Second}
	outcome := isp.Route(req, topo)
	if !outcome.Accepted {
		t.Fatalf("setup route failed: %+v", outcome)
	}
	req.Allocation.Path = outcome.Path
	req.Allocation.Window = outcome.Window

	if err := topo.Release(outcome.Path, outcome.Window); err != nil {
		t.Fatalf("Release error: %v", err)
	}

	// Fail the first hop of the admitted path and of its alternative
	// (A-B and A-C) so no reroute survives.
	topo.FailLink("A", "B")
	topo.FailLink("A", "C")

	reroute := isp.OnDisrupted(context.Background(), req, topo)
	if reroute.Accepted {
		t.Fatalf("expected no surviving path once both A-links are down, got %+v", reroute)
	}
}
