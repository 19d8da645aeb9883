package core

import (
	"errors"
	"testing"

	"github.com/signalsfoundry/eon-disaster-sim/model"
)

func lineTopology(t *testing.T, slots int) *Topology {
	t.Helper()
	topo, err := NewTopology(map[string]map[string]float64{
		"A": {"B": 1},
		"B": {"C": 1},
	}, slots, 3)
	if err != nil {
		t.Fatalf("NewTopology error: %v", err)
	}
	return topo
}

func TestTryAllocateHoldsContinuityAcrossLinks(t *testing.T) {
	topo := lineTopology(t, 8)
	path := model.Path{Nodes: []string{"A", "B", "C"}}
	win := model.Window{Start: 2, Width: 2}

	if !topo.TryAllocate(path, win) {
		t.Fatalf("expected allocation to succeed on a free path")
	}
	for _, link := range path.Links() {
		if topo.IsFree(model.Path{Nodes: []string{link.A, link.B}}, win) {
			t.Fatalf("expected slots 2-3 occupied on link %v", link)
		}
	}
}

func TestTryAllocateIsAtomicOnPartialConflict(t *testing.T) {
	topo := lineTopology(t, 8)
	// Occupy slots 2-3 on B-C only.
	if !topo.TryAllocate(model.Path{Nodes: []string{"B", "C"}}, model.Window{Start: 2, Width: 2}) {
		t.Fatalf("setup allocation failed")
	}

	full := model.Path{Nodes: []string{"A", "B", "C"}}
	if topo.TryAllocate(full, model.Window{Start: 2, Width: 2}) {
		t.Fatalf("expected allocation to fail: B-C already occupied at that window")
	}
	// A-B must be untouched by the failed attempt.
	if !topo.IsFree(model.Path{Nodes: []string{"A", "B"}}, model.Window{Start: 2, Width: 2}) {
		t.Fatalf("partial allocation leaked onto A-B after a failed TryAllocate")
	}
}

func TestReleaseFreesHeldSlots(t *testing.T) {
	topo := lineTopology(t, 8)
	path := model.Path{Nodes: []string{"A", "B", "C"}}
	win := model.Window{Start: 0, Width: 3}
	if !topo.TryAllocate(path, win) {
		t.Fatalf("setup allocation failed")
	}
	if err := topo.Release(path, win); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	if !topo.IsFree(path, win) {
		t.Fatalf("expected slots free after release")
	}
}

func TestReleaseNotHeldIsInvariantViolation(t *testing.T) {
	topo := lineTopology(t, 8)
	path := model.Path{Nodes: []string{"A", "B", "C"}}
	err := topo.Release(path, model.Window{Start: 0, Width: 2})
	if !errors.Is(err, ErrReleaseNotHeld) {
		t.Fatalf("expected ErrReleaseNotHeld, got %v", err)
	}
}

func TestFreeRunsAcrossCombinedOccupancy(t *testing.T) {
	topo := lineTopology(t, 8)
	path := model.Path{Nodes: []string{"A", "B", "C"}}
	if !topo.TryAllocate(model.Path{Nodes: []string{"A", "B"}}, model.Window{Start: 0, Width: 2}) {
		t.Fatalf("setup allocation on A-B failed")
	}
	if !topo.TryAllocate(model.Path{Nodes: []string{"B", "C"}}, model.Window{Start: 6, Width: 2}) {
		t.Fatalf("setup allocation on B-C failed")
	}
	runs := topo.FreeRuns(path)
	if len(runs) != 1 || runs[0].Start != 2 || runs[0].Width != 4 {
		t.Fatalf("expected single free run [2,6), got %v", runs)
	}
}

func TestFailNodeFailsIncidentLinks(t *testing.T) {
	topo := lineTopology(t, 8)
	topo.FailNode("B")
	if !topo.LinkFailed("A", "B") || !topo.LinkFailed("B", "C") {
		t.Fatalf("expected both links incident to B to be marked failed")
	}
	path := model.Path{Nodes: []string{"A", "B", "C"}}
	if topo.IsUsable(path) {
		t.Fatalf("expected path through failed node to be unusable")
	}
}
