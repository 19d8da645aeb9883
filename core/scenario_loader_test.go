package core

import (
	"strings"
	"testing"
	"time"

	"github.com/signalsfoundry/eon-disaster-sim/model"
)

const validScenarioJSON = `{
	"graph": {"A": {"B": 1}, "B": {"C": 1}},
	"slots": 8,
	"isps": [
		{
			"id": "isp1",
			"members": ["A", "B", "C"],
			"datacenter_node": "A",
			"reaction_delay_seconds": 2.5,
			"normal_policy": "first_fit",
			"disaster_policy": "first_fit_da",
			"migration_slot_demand": 1
		}
	],
	"disaster": {
		"epicenter": "B",
		"radius_km": 5,
		"start_time_seconds": 1,
		"end_time_seconds": 3,
		"failure_seed": 7
	},
	"traffic": {"lambda": 0.5, "mu": 0.1, "min_slot_demand": 1, "max_slot_demand": 4, "nodes": ["A", "B", "C"], "num_requests": 10, "seed": 3},
	"requests": [
		{"id": "r1", "src": "A", "dst": "C", "slot_demand": 2, "holding_time_seconds": 4, "owning_isp": "isp1", "arrival_time_seconds": 0.5}
	]
}`

func TestLoadScenarioDecodesValidDocument(t *testing.T) {
	scenario, err := LoadScenario(strings.NewReader(validScenarioJSON))
	if err != nil {
		t.Fatalf("LoadScenario error: %v", err)
	}
	if scenario.Slots != 8 {
		t.Fatalf("expected 8 slots, got %d", scenario.Slots)
	}
	if len(scenario.ISPs) != 1 || scenario.ISPs[0].ID != "isp1" {
		t.Fatalf("expected one ISP named isp1, got %+v", scenario.ISPs)
	}
	if scenario.ISPs[0].ReactionDelay != 2500*time.Millisecond {
		t.Fatalf("expected reaction delay of 2.5s, got %v", scenario.ISPs[0].ReactionDelay)
	}
	if scenario.Disaster.Epicenter != "B" || scenario.Disaster.StartTime != time.Second {
		t.Fatalf("unexpected disaster config: %+v", scenario.Disaster)
	}
	if len(scenario.Requests) != 1 || scenario.Requests[0].Class != model.Datapath {
		t.Fatalf("expected one decoded datapath request, got %+v", scenario.Requests)
	}
	if scenario.Requests[0].ArrivalTime != 500*time.Millisecond {
		t.Fatalf("expected arrival time 500ms, got %v", scenario.Requests[0].ArrivalTime)
	}
}

func TestLoadScenarioRejectsMalformedJSON(t *testing.T) {
	if _, err := LoadScenario(strings.NewReader("{not valid json")); err == nil {
		t.Fatalf("expected an error decoding malformed JSON")
	}
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	body := `{"graph": {}, "slots": 4, "isps": [], "unexpected_field": true}`
	if _, err := LoadScenario(strings.NewReader(body)); err == nil {
		t.Fatalf("expected DisallowUnknownFields to reject an unrecognized top-level field")
	}
}

func TestLoadScenarioRejectsEmptyISPID(t *testing.T) {
	body := `{"graph": {"A": {"B": 1}}, "slots": 4, "isps": [{"id": "", "members": ["A", "B"]}]}`
	if _, err := LoadScenario(strings.NewReader(body)); err == nil {
		t.Fatalf("expected an error for an ISP with an empty id")
	}
}

func TestAssignDefaultZonesEvenlyPartitionsSlots(t *testing.T) {
	isps := []model.ISPConfig{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	out := AssignDefaultZones(isps, 10)
	if out[0].SpectrumZone != (model.Window{Start: 0, Width: 3}) {
		t.Fatalf("unexpected zone for isp a: %+v", out[0].SpectrumZone)
	}
	if out[1].SpectrumZone != (model.Window{Start: 3, Width: 3}) {
		t.Fatalf("unexpected zone for isp b: %+v", out[1].SpectrumZone)
	}
	// Last ISP absorbs the remainder.
	if out[2].SpectrumZone != (model.Window{Start: 6, Width: 4}) {
		t.Fatalf("unexpected zone for isp c (should absorb remainder): %+v", out[2].SpectrumZone)
	}
}

func TestAssignDefaultZonesLeavesExplicitZonesAlone(t *testing.T) {
	isps := []model.ISPConfig{{ID: "a", SpectrumZone: model.Window{Start: 2, Width: 6}}}
	out := AssignDefaultZones(isps, 10)
	if out[0].SpectrumZone != (model.Window{Start: 2, Width: 6}) {
		t.Fatalf("expected explicit zone to be preserved, got %+v", out[0].SpectrumZone)
	}
}
