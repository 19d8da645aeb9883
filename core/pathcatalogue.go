package core

import (
	"container/heap"
	"sort"
	"strings"

	"github.com/signalsfoundry/eon-disaster-sim/model"
)

// DefaultK is the default number of shortest paths cached per (src,dst)
// pair when a scenario does not override it.
const DefaultK = 5

// PathCatalogue pre-computes and caches the K shortest simple paths for
// every ordered pair of vertices in a Graph, using Yen's algorithm with
// Dijkstra as the inner shortest-path routine. It is built once and is
// never mutated afterward, even once a Disaster starts invalidating
// resources — disaster-aware policies filter the cached paths at
// routing time instead (see policy_disaster_aware.go).
type PathCatalogue struct {
	k     int
	paths map[string]map[string][]model.Path
}

// NewPathCatalogue builds a dense catalogue over every ordered pair of
// vertices in g. k <= 0 selects DefaultK.
func NewPathCatalogue(g *Graph, k int) *PathCatalogue {
	if k <= 0 {
		k = DefaultK
	}
	pc := &PathCatalogue{k: k, paths: make(map[string]map[string][]model.Path)}

	nodes := g.Nodes()
	for _, src := range nodes {
		pc.paths[src] = make(map[string][]model.Path)
		for _, dst := range nodes {
			if src == dst {
				pc.paths[src][dst] = nil
				continue
			}
			pc.paths[src][dst] = yenKShortest(g, src, dst, k)
		}
	}
	return pc
}

// K reports the catalogue's configured K.
func (pc *PathCatalogue) K() int { return pc.k }

// KShortest returns the cached, ascending-weight ordered paths for
// (src, dst). The returned slice must not be mutated by callers.
func (pc *PathCatalogue) KShortest(src, dst string) []model.Path {
	byDst, ok := pc.paths[src]
	if !ok {
		return nil
	}
	return byDst[dst]
}

// --- Dijkstra ---

type dijkstraItem struct {
	node string
	dist float64
}

type dijkstraHeap []dijkstraItem

func (h dijkstraHeap) Len() int            { return len(h) }
func (h dijkstraHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h dijkstraHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *dijkstraHeap) Push(x interface{}) { *h = append(*h, x.(dijkstraItem)) }
func (h *dijkstraHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// dijkstra computes shortest-path distances and predecessor lists from
// src to every reachable node, skipping any node in removedNodes and
// any edge in removedEdges (both keyed canonically). Each node keeps a
// single predecessor; on an equal-distance tie the lexicographically
// smaller predecessor wins (see lessNodeSeq), so the reconstructed
// path is deterministic.
func dijkstra(g *Graph, src string, removedNodes map[string]bool, removedEdges map[model.LinkKey]bool) (dist map[string]float64, prev map[string]string) {
	dist = map[string]float64{src: 0}
	prev = map[string]string{}
	visited := map[string]bool{}

	h := &dijkstraHeap{{node: src, dist: 0}}
	heap.Init(h)

	for h.Len() > 0 {
		cur := heap.Pop(h).(dijkstraItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		neighbors := make([]string, 0, len(g.Neighbors(cur.node)))
		for n := range g.Neighbors(cur.node) {
			neighbors = append(neighbors, n)
		}
		sort.Strings(neighbors)

		for _, next := range neighbors {
			if removedNodes[next] {
				continue
			}
			if removedEdges[model.CanonicalLinkKey(cur.node, next)] {
				continue
			}
			w, _ := g.Weight(cur.node, next)
			nd := cur.dist + w
			if existing, ok := dist[next]; !ok || nd < existing ||
				(nd == existing && lessNodeSeq(cur.node, prev[next])) {
				dist[next] = nd
				prev[next] = cur.node
				heap.Push(h, dijkstraItem{node: next, dist: nd})
			}
		}
	}
	return dist, prev
}

// lessNodeSeq breaks Dijkstra predecessor ties by preferring the
// lexicographically smaller candidate predecessor; a missing existing
// predecessor (empty string) always loses.
func lessNodeSeq(candidate, existing string) bool {
	if existing == "" {
		return true
	}
	return candidate < existing
}

func reconstructPath(g *Graph, prev map[string]string, src, dst string) (model.Path, bool) {
	if src == dst {
		return model.Path{}, false
	}
	nodes := []string{dst}
	cur := dst
	for cur != src {
		p, ok := prev[cur]
		if !ok {
			return model.Path{}, false
		}
		nodes = append(nodes, p)
		cur = p
	}
	// reverse
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return pathFromNodes(g, nodes), true
}

func pathFromNodes(g *Graph, nodes []string) model.Path {
	weight := 0.0
	for i := 0; i+1 < len(nodes); i++ {
		w, _ := g.Weight(nodes[i], nodes[i+1])
		weight += w
	}
	cp := make([]string, len(nodes))
	copy(cp, nodes)
	return model.Path{Nodes: cp, Weight: weight}
}

// yenKShortest returns up to k loopless simple paths from src to dst,
// ascending by weight, with equal-weight paths ordered by
// lexicographic node-sequence. Returns nil if src == dst or the pair
// is disconnected.
func yenKShortest(g *Graph, src, dst string, k int) []model.Path {
	if src == dst {
		return nil
	}

	dist, prev := dijkstra(g, src, nil, nil)
	if _, ok := dist[dst]; !ok {
		return nil
	}
	first, ok := reconstructPath(g, prev, src, dst)
	if !ok {
		return nil
	}

	A := []model.Path{first}
	var B []model.Path
	seen := map[string]bool{first.Key(): true}

	for len(A) < k {
		last := A[len(A)-1]
		for i := 0; i < len(last.Nodes)-1; i++ {
			spurNode := last.Nodes[i]
			rootPath := last.Nodes[:i+1]

			removedEdges := map[model.LinkKey]bool{}
			for _, p := range A {
				if len(p.Nodes) > i && sameRoot(p.Nodes[:i+1], rootPath) {
					removedEdges[model.CanonicalLinkKey(p.Nodes[i], p.Nodes[i+1])] = true
				}
			}
			removedNodes := map[string]bool{}
			for _, n := range rootPath[:len(rootPath)-1] {
				removedNodes[n] = true
			}

			spurDist, spurPrev := dijkstra(g, spurNode, removedNodes, removedEdges)
			if _, ok := spurDist[dst]; !ok {
				continue
			}
			spurPath, ok := reconstructPath(g, spurPrev, spurNode, dst)
			if !ok {
				continue
			}

			totalNodes := append(append([]string{}, rootPath[:len(rootPath)-1]...), spurPath.Nodes...)
			candidate := pathFromNodes(g, totalNodes)
			if seen[candidate.Key()] {
				continue
			}
			if !containsPathKey(B, candidate.Key()) {
				B = append(B, candidate)
			}
		}

		if len(B) == 0 {
			break
		}
		sort.SliceStable(B, func(i, j int) bool {
			if B[i].Weight != B[j].Weight {
				return B[i].Weight < B[j].Weight
			}
			return strings.Compare(B[i].Key(), B[j].Key()) < 0
		})
		next := B[0]
		B = B[1:]
		seen[next.Key()] = true
		A = append(A, next)
	}

	sort.SliceStable(A, func(i, j int) bool {
		if A[i].Weight != A[j].Weight {
			return A[i].Weight < A[j].Weight
		}
		return strings.Compare(A[i].Key(), A[j].Key()) < 0
	})
	return A
}

func sameRoot(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsPathKey(paths []model.Path, key string) bool {
	for _, p := range paths {
		if p.Key() == key {
			return true
		}
	}
	return false
}
