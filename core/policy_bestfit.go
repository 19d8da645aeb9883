package core

import "github.com/signalsfoundry/eon-disaster-sim/model"

// BestFit enumerates catalogue paths in ascending-weight order and, for
// each, accepts the window that leaves the tightest fit (minimizes the
// largest adjacent free run), tie-broken by lowest slot index.
type BestFit struct{}

// NewBestFit constructs the BestFit routing policy.
func NewBestFit() *BestFit { return &BestFit{} }

func (p *BestFit) Name() string { return "best_fit" }

func (p *BestFit) Route(req *model.Request, topo *Topology) Outcome {
	return bestFitOnPaths(topo.Paths(req.Src, req.Dst), req.SlotDemand, topo)
}

func (p *BestFit) Reroute(req *model.Request, topo *Topology) Outcome {
	return p.Route(req, topo)
}
