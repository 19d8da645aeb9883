package core

import "github.com/signalsfoundry/eon-disaster-sim/model"

// routeSafely is the shared shape of every disaster-aware variant:
// filter the catalogue down to paths with no failed node or link, then
// hand the survivors to fit for window selection. It distinguishes
// NoPath (the pair has no catalogue path at all) from NoSafePath (paths
// exist but a disaster has invalidated all of them) so metrics and
// tests can tell the two failure modes apart.
func routeSafely(paths []model.Path, demand int, topo *Topology, fit func([]model.Path, int, *Topology) Outcome) Outcome {
	if len(paths) == 0 {
		return Blocked(model.NoPath)
	}
	safe := filterSafePaths(paths, topo)
	if len(safe) == 0 {
		return Blocked(model.NoSafePath)
	}
	return fit(safe, demand, topo)
}

// FirstFitDisasterAware is FirstFit restricted to currently usable
// paths.
type FirstFitDisasterAware struct{}

func NewFirstFitDisasterAware() *FirstFitDisasterAware { return &FirstFitDisasterAware{} }

func (p *FirstFitDisasterAware) Name() string { return "first_fit_da" }

func (p *FirstFitDisasterAware) Route(req *model.Request, topo *Topology) Outcome {
	return routeSafely(topo.Paths(req.Src, req.Dst), req.SlotDemand, topo, firstFitOnPaths)
}

func (p *FirstFitDisasterAware) Reroute(req *model.Request, topo *Topology) Outcome {
	return p.Route(req, topo)
}

// BestFitDisasterAware is BestFit restricted to currently usable paths.
type BestFitDisasterAware struct{}

func NewBestFitDisasterAware() *BestFitDisasterAware { return &BestFitDisasterAware{} }

func (p *BestFitDisasterAware) Name() string { return "best_fit_da" }

func (p *BestFitDisasterAware) Route(req *model.Request, topo *Topology) Outcome {
	return routeSafely(topo.Paths(req.Src, req.Dst), req.SlotDemand, topo, bestFitOnPaths)
}

func (p *BestFitDisasterAware) Reroute(req *model.Request, topo *Topology) Outcome {
	return p.Route(req, topo)
}

// BestFitSlidingWindowDisasterAware combines the per-ISP spectrum zone
// of SlidingWindow with BestFit's tightest-fit window choice, and
// additionally restricts candidates to currently usable paths.
type BestFitSlidingWindowDisasterAware struct {
	zone model.Window
}

func NewBestFitSlidingWindowDisasterAware(isp model.ISPConfig, topo *Topology, numISPs int) *BestFitSlidingWindowDisasterAware {
	zone := isp.SpectrumZone
	if zone.Width <= 0 {
		zone = model.Window{Start: 0, Width: topo.Slots()}
	}
	return &BestFitSlidingWindowDisasterAware{zone: zone}
}

func (p *BestFitSlidingWindowDisasterAware) Name() string { return "best_fit_sw_da" }

func (p *BestFitSlidingWindowDisasterAware) Route(req *model.Request, topo *Topology) Outcome {
	paths := topo.Paths(req.Src, req.Dst)
	if len(paths) == 0 {
		return Blocked(model.NoPath)
	}
	safe := filterSafePaths(paths, topo)
	if len(safe) == 0 {
		return Blocked(model.NoSafePath)
	}
	for _, path := range safe {
		if w, ok := bestFitWindowInZone(topo, path, req.SlotDemand, p.zone); ok {
			if topo.TryAllocate(path, w) {
				return Accept(path, w)
			}
		}
	}
	return Blocked(model.NoWindow)
}

func (p *BestFitSlidingWindowDisasterAware) Reroute(req *model.Request, topo *Topology) Outcome {
	return p.Route(req, topo)
}

// SubnetDisasterAware is Subnet restricted to currently usable paths:
// intra-ISP traffic stays within the subnet and zone, cross-ISP traffic
// falls through to plain disaster-aware FirstFit over the whole graph.
type SubnetDisasterAware struct {
	*Subnet
}

func NewSubnetDisasterAware(isp model.ISPConfig, topo *Topology) *SubnetDisasterAware {
	return &SubnetDisasterAware{Subnet: NewSubnet(isp, topo)}
}

func (p *SubnetDisasterAware) Name() string { return "subnet_da" }

func (p *SubnetDisasterAware) Route(req *model.Request, topo *Topology) Outcome {
	if !p.members[req.Src] || !p.members[req.Dst] {
		return routeSafely(topo.Paths(req.Src, req.Dst), req.SlotDemand, topo, firstFitOnPaths)
	}

	paths := p.candidates(topo, req.Src, req.Dst)
	if len(paths) == 0 {
		return Blocked(model.NoPath)
	}
	safe := filterSafePaths(paths, topo)
	if len(safe) == 0 {
		return Blocked(model.NoSafePath)
	}
	for _, path := range safe {
		if w, ok := firstFitWindowInZone(topo, path, req.SlotDemand, p.zone); ok {
			if topo.TryAllocate(path, w) {
				return Accept(path, w)
			}
		}
	}
	return Blocked(model.NoWindow)
}

func (p *SubnetDisasterAware) Reroute(req *model.Request, topo *Topology) Outcome {
	return p.Route(req, topo)
}
