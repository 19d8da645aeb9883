package core

import "github.com/signalsfoundry/eon-disaster-sim/model"

// Subnet routes intra-ISP traffic (both endpoints members) first-fit
// within the ISP's own subgraph and spectrum zone, refusing to spill
// onto a peer's infrastructure even when a shorter cross-network path
// exists. A cross-ISP request (either endpoint not a member) falls
// through to plain FirstFit over the whole graph, since the subnet
// restriction has nothing meaningful to say about traffic that isn't
// this ISP's own.
type Subnet struct {
	members map[string]bool
	zone    model.Window
}

// NewSubnet constructs a Subnet policy bound to isp's member set and
// spectrum zone. An ISP with no configured zone falls back to the
// whole grid.
func NewSubnet(isp model.ISPConfig, topo *Topology) *Subnet {
	members := make(map[string]bool, len(isp.Members))
	for _, m := range isp.Members {
		members[m] = true
	}
	zone := isp.SpectrumZone
	if zone.Width <= 0 {
		zone = model.Window{Start: 0, Width: topo.Slots()}
	}
	return &Subnet{members: members, zone: zone}
}

func (p *Subnet) withinSubnet(path model.Path) bool {
	for _, n := range path.Nodes {
		if !p.members[n] {
			return false
		}
	}
	return true
}

// candidates returns the catalogue paths between src and dst that stay
// entirely within the ISP's member nodes.
func (p *Subnet) candidates(topo *Topology, src, dst string) []model.Path {
	all := topo.Paths(src, dst)
	out := make([]model.Path, 0, len(all))
	for _, path := range all {
		if p.withinSubnet(path) {
			out = append(out, path)
		}
	}
	return out
}

func (p *Subnet) Name() string { return "subnet" }

func (p *Subnet) Route(req *model.Request, topo *Topology) Outcome {
	if !p.members[req.Src] || !p.members[req.Dst] {
		return firstFitOnPaths(topo.Paths(req.Src, req.Dst), req.SlotDemand, topo)
	}
	return p.routeWithinSubnet(req, topo)
}

func (p *Subnet) routeWithinSubnet(req *model.Request, topo *Topology) Outcome {
	paths := p.candidates(topo, req.Src, req.Dst)
	if len(paths) == 0 {
		return Blocked(model.NoPath)
	}
	for _, path := range paths {
		if w, ok := firstFitWindowInZone(topo, path, req.SlotDemand, p.zone); ok {
			if topo.TryAllocate(path, w) {
				return Accept(path, w)
			}
		}
	}
	return Blocked(model.NoWindow)
}

func (p *Subnet) Reroute(req *model.Request, topo *Topology) Outcome {
	return p.Route(req, topo)
}
