package core

import (
	"errors"
	"testing"

	"github.com/signalsfoundry/eon-disaster-sim/model"
)

func validScenario() *model.Scenario {
	return &model.Scenario{
		Graph: map[string]map[string]float64{"A": {"B": 1}},
		Slots: 4,
		ISPs: []model.ISPConfig{
			{ID: "isp1", Members: []string{"A", "B"}, DatacenterNode: "A", NormalPolicy: "first_fit", DisasterPolicy: "first_fit_da"},
		},
	}
}

func TestNewSimulationRejectsEmptyScenario(t *testing.T) {
	if _, err := NewSimulation(&model.Scenario{}, nil, nil, nil); !errors.Is(err, ErrEmptyScenario) {
		t.Fatalf("expected ErrEmptyScenario, got %v", err)
	}
	if _, err := NewSimulation(nil, nil, nil, nil); !errors.Is(err, ErrEmptyScenario) {
		t.Fatalf("expected ErrEmptyScenario for a nil scenario, got %v", err)
	}
}

func TestNewSimulationRejectsEmptyMembers(t *testing.T) {
	s := validScenario()
	s.ISPs[0].Members = nil
	if _, err := NewSimulation(s, nil, nil, nil); !errors.Is(err, ErrBadISPMembers) {
		t.Fatalf("expected ErrBadISPMembers, got %v", err)
	}
}

func TestNewSimulationRejectsOverlappingMembers(t *testing.T) {
	s := validScenario()
	s.Graph = map[string]map[string]float64{"A": {"B": 1, "C": 1}}
	s.ISPs = []model.ISPConfig{
		{ID: "isp1", Members: []string{"A", "B"}, DatacenterNode: "A", NormalPolicy: "first_fit", DisasterPolicy: "first_fit_da"},
		{ID: "isp2", Members: []string{"B", "C"}, DatacenterNode: "C", NormalPolicy: "first_fit", DisasterPolicy: "first_fit_da"},
	}
	if _, err := NewSimulation(s, nil, nil, nil); !errors.Is(err, ErrBadISPMembers) {
		t.Fatalf("expected ErrBadISPMembers for overlapping members, got %v", err)
	}
}

func TestNewSimulationRejectsUncoveredNode(t *testing.T) {
	s := validScenario()
	s.Graph = map[string]map[string]float64{"A": {"B": 1, "C": 1}}
	// isp1 claims only A and B, leaving C uncovered.
	if _, err := NewSimulation(s, nil, nil, nil); !errors.Is(err, ErrBadISPMembers) {
		t.Fatalf("expected ErrBadISPMembers for an uncovered node, got %v", err)
	}
}

func TestNewSimulationRejectsUnknownMemberNode(t *testing.T) {
	s := validScenario()
	s.ISPs[0].Members = []string{"A", "B", "Z"}
	if _, err := NewSimulation(s, nil, nil, nil); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestNewSimulationRejectsUnknownDatacenterNode(t *testing.T) {
	s := validScenario()
	s.ISPs[0].DatacenterNode = "Z"
	if _, err := NewSimulation(s, nil, nil, nil); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode for a bad datacenter node, got %v", err)
	}
}

func TestNewSimulationRejectsUnknownPolicy(t *testing.T) {
	s := validScenario()
	s.ISPs[0].NormalPolicy = "not_a_real_policy"
	if _, err := NewSimulation(s, nil, nil, nil); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestNewSimulationAcceptsValidScenario(t *testing.T) {
	scheduler, err := NewSimulation(validScenario(), nil, nil, nil)
	if err != nil {
		t.Fatalf("expected a valid scenario to wire cleanly, got %v", err)
	}
	if scheduler == nil {
		t.Fatalf("expected a non-nil scheduler")
	}
}
