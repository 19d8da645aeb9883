package core

import "github.com/signalsfoundry/eon-disaster-sim/model"

// FirstFit enumerates catalogue paths in ascending-weight order and, for
// each, accepts the first window (ascending slot index) that fits.
type FirstFit struct{}

// NewFirstFit constructs the FirstFit routing policy.
func NewFirstFit() *FirstFit { return &FirstFit{} }

func (p *FirstFit) Name() string { return "first_fit" }

func (p *FirstFit) Route(req *model.Request, topo *Topology) Outcome {
	return firstFitOnPaths(topo.Paths(req.Src, req.Dst), req.SlotDemand, topo)
}

func (p *FirstFit) Reroute(req *model.Request, topo *Topology) Outcome {
	return p.Route(req, topo)
}
