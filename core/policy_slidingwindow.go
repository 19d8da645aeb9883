package core

import "github.com/signalsfoundry/eon-disaster-sim/model"

// SlidingWindow confines its window search to the ISP's configured
// spectrum zone (a contiguous band of the shared grid) so that
// multiple ISPs sharing a link tend to land in disjoint slot ranges
// instead of colliding at the low end of the grid the way plain
// FirstFit does. Within the zone it behaves like FirstFit. An ISP
// with no configured zone falls back to the whole grid.
type SlidingWindow struct {
	zone model.Window
}

// NewSlidingWindow constructs a SlidingWindow policy bound to isp's
// configured spectrum zone. numISPs is accepted for symmetry with the
// other zone-aware constructors and reserved for future auto-partition
// support.
func NewSlidingWindow(isp model.ISPConfig, topo *Topology, numISPs int) *SlidingWindow {
	zone := isp.SpectrumZone
	if zone.Width <= 0 {
		zone = model.Window{Start: 0, Width: topo.Slots()}
	}
	return &SlidingWindow{zone: zone}
}

func (p *SlidingWindow) Name() string { return "sliding_window" }

func (p *SlidingWindow) Route(req *model.Request, topo *Topology) Outcome {
	paths := topo.Paths(req.Src, req.Dst)
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

func (p *SlidingWindow) Reroute(req *model.Request, topo *Topology) Outcome {
	return p.Route(req, topo)
}
