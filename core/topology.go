package core

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/eon-disaster-sim/model"
)

// Topology owns the graph, its path catalogue, and the per-link
// spectrum grid. All mutation is expected to happen from the
// Scheduler's single goroutine; the internal mutex exists for
// API-level safety (matching the teacher knowledge base's convention)
// and to let a concurrent Prometheus scrape read consistent state.
type Topology struct {
	mu sync.RWMutex

	graph     *Graph
	catalogue *PathCatalogue
	slots     int

	// occupied[link][slot] == true means the slot is held by some
	// active allocation on that link.
	occupied map[model.LinkKey][]bool

	failedLinks map[model.LinkKey]bool
	failedNodes map[string]bool
}

// NewTopology builds a Topology over the given adjacency, with slots
// contiguous slots per link and a path catalogue caching k shortest
// paths per pair (k <= 0 uses DefaultK).
func NewTopology(adjacency map[string]map[string]float64, slots, k int) (*Topology, error) {
	if slots <= 0 {
		return nil, fmt.Errorf("topology: slots must be positive, got %d", slots)
	}
	g, err := NewGraph(adjacency)
	if err != nil {
		return nil, err
	}
	t := &Topology{
		graph:       g,
		catalogue:   NewPathCatalogue(g, k),
		slots:       slots,
		occupied:    make(map[model.LinkKey][]bool),
		failedLinks: make(map[model.LinkKey]bool),
		failedNodes: make(map[string]bool),
	}
	for _, node := range g.Nodes() {
		for neighbor := range g.Neighbors(node) {
			key := model.CanonicalLinkKey(node, neighbor)
			if _, ok := t.occupied[key]; !ok {
				t.occupied[key] = make([]bool, slots)
			}
		}
	}
	return t, nil
}

// Graph exposes the underlying read-only graph.
func (t *Topology) Graph() *Graph { return t.graph }

// Slots returns the number of contiguous slots per link.
func (t *Topology) Slots() int { return t.slots }

// Paths delegates to the path catalogue.
func (t *Topology) Paths(src, dst string) []model.Path {
	return t.catalogue.KShortest(src, dst)
}

// TryAllocate returns true and occupies every slot in window on every
// link of path iff no node or link of path is marked failed and all of
// those slots were free beforehand. On failure the topology is left
// unchanged (atomic w.r.t. partial allocation).
func (t *Topology) TryAllocate(path model.Path, window model.Window) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isUsableLocked(path) {
		return false
	}
	links := path.Links()
	for _, link := range links {
		grid, ok := t.occupied[link]
		if !ok {
			return false
		}
		for s := window.Start; s < window.End(); s++ {
			if s < 0 || s >= len(grid) || grid[s] {
				return false
			}
		}
	}
	for _, link := range links {
		grid := t.occupied[link]
		for s := window.Start; s < window.End(); s++ {
			grid[s] = true
		}
	}
	return true
}

// Release frees every slot in window on every link of path. It is a
// fatal invariant violation to release slots that were not held.
func (t *Topology) Release(path model.Path, window model.Window) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	links := path.Links()
	for _, link := range links {
		grid, ok := t.occupied[link]
		if !ok {
			return fmt.Errorf("%w: unknown link %v", ErrInvariantViolation, link)
		}
		for s := window.Start; s < window.End(); s++ {
			if s < 0 || s >= len(grid) || !grid[s] {
				return fmt.Errorf("%w: %v", ErrReleaseNotHeld, link)
			}
		}
	}
	for _, link := range links {
		grid := t.occupied[link]
		for s := window.Start; s < window.End(); s++ {
			grid[s] = false
		}
	}
	return nil
}

// IsFree reports whether every slot in window is free on every link
// of path, without mutating state.
func (t *Topology) IsFree(path model.Path, window model.Window) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.isFreeLocked(path, window)
}

func (t *Topology) isFreeLocked(path model.Path, window model.Window) bool {
	for _, link := range path.Links() {
		grid, ok := t.occupied[link]
		if !ok {
			return false
		}
		for s := window.Start; s < window.End(); s++ {
			if s < 0 || s >= len(grid) || grid[s] {
				return false
			}
		}
	}
	return true
}

// FreeRuns returns the contiguous runs of slots that are free on every
// link of path at once (the spectrum-continuous view), as a list of
// (start, width) pairs sorted ascending by start. Used by the window
// search of every policy, including DisasterAwareWithBlocking.
func (t *Topology) FreeRuns(path model.Path) []model.Window {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.freeRunsLocked(path)
}

func (t *Topology) freeRunsLocked(path model.Path) []model.Window {
	combined := make([]bool, t.slots)
	for _, link := range path.Links() {
		grid, ok := t.occupied[link]
		if !ok {
			for i := range combined {
				combined[i] = true
			}
			break
		}
		for i, occ := range grid {
			combined[i] = combined[i] || occ
		}
	}

	var runs []model.Window
	start := -1
	for i := 0; i <= t.slots; i++ {
		free := i < t.slots && !combined[i]
		if free && start == -1 {
			start = i
		} else if !free && start != -1 {
			runs = append(runs, model.Window{Start: start, Width: i - start})
			start = -1
		}
	}
	return runs
}

// IsUsable reports whether no node or link of path is currently
// marked failed.
func (t *Topology) IsUsable(path model.Path) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.isUsableLocked(path)
}

func (t *Topology) isUsableLocked(path model.Path) bool {
	for _, n := range path.Nodes {
		if t.failedNodes[n] {
			return false
		}
	}
	for _, l := range path.Links() {
		if t.failedLinks[l] {
			return false
		}
	}
	return true
}

// FailLink marks a link as failed. Subsequent TryAllocate calls on any
// path crossing it return false. Existing allocations are not
// released; the Disaster component handles disruption accounting.
func (t *Topology) FailLink(a, b string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failedLinks[model.CanonicalLinkKey(a, b)] = true
}

// FailNode marks a node as failed, in addition to every link incident
// to it.
func (t *Topology) FailNode(node string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failedNodes[node] = true
	for neighbor := range t.graph.Neighbors(node) {
		t.failedLinks[model.CanonicalLinkKey(node, neighbor)] = true
	}
}

// LinkFailed reports whether the given link is currently marked failed.
func (t *Topology) LinkFailed(a, b string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.failedLinks[model.CanonicalLinkKey(a, b)]
}

// NodeFailed reports whether the given node is currently marked failed.
func (t *Topology) NodeFailed(node string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.failedNodes[node]
}

// Utilization returns the fraction of all (link, slot) pairs currently
// occupied, for the TopologyCollector gauge.
func (t *Topology) Utilization() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	total, occ := 0, 0
	for _, grid := range t.occupied {
		total += len(grid)
		for _, b := range grid {
			if b {
				occ++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(occ) / float64(total)
}

// FailedResourceCount returns the number of failed links plus failed
// nodes, for the TopologyCollector gauge.
func (t *Topology) FailedResourceCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.failedLinks) + len(t.failedNodes)
}
