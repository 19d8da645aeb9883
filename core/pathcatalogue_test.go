package core

import "testing"

func TestYenKShortestDiamond(t *testing.T) {
	g, err := NewGraph(map[string]map[string]float64{
		"A": {"B": 1, "C": 1, "D": 5},
		"B": {"D": 1},
		"C": {"D": 1},
	})
	if err != nil {
		t.Fatalf("NewGraph error: %v", err)
	}

	pc := NewPathCatalogue(g, 3)
	paths := pc.KShortest("A", "D")
	if len(paths) != 3 {
		t.Fatalf("expected 3 paths, got %d: %v", len(paths), paths)
	}

	if paths[0].Key() != "A>B>D" {
		t.Fatalf("expected first path A>B>D (weight tie broken lexicographically), got %s", paths[0].Key())
	}
	if paths[1].Key() != "A>C>D" {
		t.Fatalf("expected second path A>C>D, got %s", paths[1].Key())
	}
	if paths[2].Key() != "A>D" {
		t.Fatalf("expected third (heaviest) path A>D, got %s", paths[2].Key())
	}
	if paths[0].Weight != 2 || paths[1].Weight != 2 {
		t.Fatalf("expected the two 2-hop paths to have weight 2, got %v %v", paths[0].Weight, paths[1].Weight)
	}
	if paths[2].Weight != 5 {
		t.Fatalf("expected direct path weight 5, got %v", paths[2].Weight)
	}
}

func TestYenKShortestUnreachable(t *testing.T) {
	g, err := NewGraph(map[string]map[string]float64{
		"A": {"B": 1},
		"C": {"D": 1},
	})
	if err != nil {
		t.Fatalf("NewGraph error: %v", err)
	}
	pc := NewPathCatalogue(g, 3)
	if paths := pc.KShortest("A", "D"); paths != nil {
		t.Fatalf("expected nil paths for disconnected pair, got %v", paths)
	}
}

func TestYenKShortestFewerThanK(t *testing.T) {
	g, err := NewGraph(map[string]map[string]float64{
		"A": {"B": 1},
		"B": {"C": 1},
	})
	if err != nil {
		t.Fatalf("NewGraph error: %v", err)
	}
	pc := NewPathCatalogue(g, 5)
	paths := pc.KShortest("A", "C")
	if len(paths) != 1 {
		t.Fatalf("expected exactly 1 simple path A-B-C, got %d", len(paths))
	}
}
