package core

import "testing"

func TestNewGraphSymmetrizesEdges(t *testing.T) {
	g, err := NewGraph(map[string]map[string]float64{
		"a": {"b": 1.0},
	})
	if err != nil {
		t.Fatalf("NewGraph error: %v", err)
	}
	if w, ok := g.Weight("b", "a"); !ok || w != 1.0 {
		t.Fatalf("expected symmetric edge b->a weight 1.0, got %v %v", w, ok)
	}
}

func TestNewGraphEmptyAdjacencyErrors(t *testing.T) {
	if _, err := NewGraph(nil); err == nil {
		t.Fatalf("expected error for empty adjacency")
	}
}

func TestGraphNodesSorted(t *testing.T) {
	g, err := NewGraph(map[string]map[string]float64{
		"c": {"a": 1},
		"a": {"b": 1},
	})
	if err != nil {
		t.Fatalf("NewGraph error: %v", err)
	}
	nodes := g.Nodes()
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1] > nodes[i] {
			t.Fatalf("nodes not sorted: %v", nodes)
		}
	}
}
