package core

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/signalsfoundry/eon-disaster-sim/model"
)

// Disaster precomputes the full failure timeline for a scenario's
// DisasterConfig at construction time. The topology has no concept of
// geographic radius, so "radius" is interpreted as graph distance
// (sum of edge weights) from the epicenter, computed with the same
// Dijkstra routine the path catalogue uses. Failures within the radius
// are spread across [StartTime, EndTime] proportional to distance from
// the epicenter — nearby infrastructure goes first — with a small
// deterministic jitter drawn from FailureSeed so that two nodes at
// equal distance don't fail in an artificially fixed order.
type Disaster struct {
	cfg    model.DisasterConfig
	events []model.FailureEvent

	// dist holds graph distance from the epicenter to every node
	// reachable from it, computed once at construction. FarthestMember
	// serves it to ISP.OnReaction for migration-destination selection.
	dist map[string]float64
}

// NewDisaster builds a Disaster over g. If the epicenter is unknown to
// g, or no node falls within RadiusKm, the timeline is empty and the
// run proceeds with no failures.
func NewDisaster(cfg model.DisasterConfig, g *Graph) *Disaster {
	d := &Disaster{cfg: cfg}
	if !g.HasNode(cfg.Epicenter) {
		return d
	}

	dist, _ := dijkstra(g, cfg.Epicenter, nil, nil)
	d.dist = dist
	rng := rand.New(rand.NewSource(cfg.FailureSeed))

	type affected struct {
		node string
		dist float64
	}
	var nodes []affected
	maxDist := 0.0
	for _, n := range g.Nodes() {
		nd, ok := dist[n]
		if !ok || nd > cfg.RadiusKm {
			continue
		}
		nodes = append(nodes, affected{node: n, dist: nd})
		if nd > maxDist {
			maxDist = nd
		}
	}
	if len(nodes) == 0 {
		return d
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].dist != nodes[j].dist {
			return nodes[i].dist < nodes[j].dist
		}
		return nodes[i].node < nodes[j].node
	})

	span := cfg.EndTime - cfg.StartTime
	nodeTime := make(map[string]time.Duration, len(nodes))
	for _, a := range nodes {
		frac := 0.0
		if maxDist > 0 {
			frac = a.dist / maxDist
		}
		frac = clampFraction(frac + jitterFraction(rng))
		t := cfg.StartTime + time.Duration(frac*float64(span))
		nodeTime[a.node] = t
		d.events = append(d.events, model.FailureEvent{
			Kind: model.NodeResource,
			Node: a.node,
			At:   t,
		})
	}

	affectedSet := make(map[string]bool, len(nodes))
	for _, a := range nodes {
		affectedSet[a.node] = true
	}
	seenLinks := make(map[model.LinkKey]bool)
	for _, a := range nodes {
		for neighbor := range g.Neighbors(a.node) {
			if !affectedSet[neighbor] {
				continue
			}
			key := model.CanonicalLinkKey(a.node, neighbor)
			if seenLinks[key] {
				continue
			}
			seenLinks[key] = true
			t := nodeTime[a.node]
			if other := nodeTime[neighbor]; other > t {
				t = other
			}
			d.events = append(d.events, model.FailureEvent{
				Kind: model.LinkResource,
				Link: key,
				At:   t,
			})
		}
	}

	sort.SliceStable(d.events, func(i, j int) bool {
		if d.events[i].At != d.events[j].At {
			return d.events[i].At < d.events[j].At
		}
		// Node failures precede the link failures they cause at the
		// same timestamp: model.NodeResource > model.LinkResource, so
		// this sorts node before link on a tie.
		return d.events[i].Kind > d.events[j].Kind
	})
	return d
}

// Events returns the full precomputed failure timeline, ascending by
// time. The Scheduler enqueues one disaster_step event per entry.
func (d *Disaster) Events() []model.FailureEvent { return d.events }

// FarthestMember returns the member of members with the greatest graph
// distance from the epicenter — the argmax selection spec.md §4.4's
// migration-destination rule and
// original_source/simulador/generators/datacenter_generator.py's
// max(node_distances, key=...) both specify. A member unreachable from
// the epicenter is treated as infinitely far (the safest possible
// destination). Ties are broken by lowest node name for determinism.
// Returns "" if members is empty.
func (d *Disaster) FarthestMember(members []string) string {
	best := ""
	bestDist := math.Inf(-1)
	for _, m := range members {
		dist, ok := d.dist[m]
		if !ok {
			dist = math.Inf(1)
		}
		if dist > bestDist || (dist == bestDist && (best == "" || m < best)) {
			bestDist = dist
			best = m
		}
	}
	return best
}

// Apply materializes a single failure event against topo.
func (d *Disaster) Apply(ev model.FailureEvent, topo *Topology) {
	switch ev.Kind {
	case model.NodeResource:
		topo.FailNode(ev.Node)
	case model.LinkResource:
		topo.FailLink(ev.Link.A, ev.Link.B)
	}
}

func jitterFraction(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 0.1
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
