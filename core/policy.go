package core

import "github.com/signalsfoundry/eon-disaster-sim/model"

// Outcome is the result of a routing or rerouting attempt: either an
// accepted (path, window) pair, or a block with a reason code. Outcome
// is never an error — routing blocks are an ordinary, expected result
// per spec.md §7.
type Outcome struct {
	Accepted bool
	Path     model.Path
	Window   model.Window
	Reason   model.BlockReason
}

// Blocked constructs a rejected Outcome with the given reason.
func Blocked(reason model.BlockReason) Outcome {
	return Outcome{Accepted: false, Reason: reason}
}

// Accept constructs an accepted Outcome.
func Accept(path model.Path, window model.Window) Outcome {
	return Outcome{Accepted: true, Path: path, Window: window}
}

// RoutingPolicy decides the path and spectrum window for a request
// against a Topology. Every variant must honor spectrum continuity and
// return the first acceptable result under its own ordering.
type RoutingPolicy interface {
	// Name identifies the policy for logging/metrics.
	Name() string
	// Route selects a path and window for a fresh request.
	Route(req *model.Request, topo *Topology) Outcome
	// Reroute selects a path and window for a request whose previous
	// allocation was already released by the caller.
	Reroute(req *model.Request, topo *Topology) Outcome
}

// PolicyFactory builds a RoutingPolicy bound to a specific ISP
// configuration (needed by zone/subnet-aware variants).
type PolicyFactory func(isp model.ISPConfig, topo *Topology, numISPs int, isps []model.ISPConfig) RoutingPolicy

// PolicyRegistry maps the closed set of policy identifier strings from
// spec.md §6 to constructor functions.
var PolicyRegistry = map[string]PolicyFactory{
	"first_fit": func(isp model.ISPConfig, topo *Topology, n int, all []model.ISPConfig) RoutingPolicy {
		return NewFirstFit()
	},
	"best_fit": func(isp model.ISPConfig, topo *Topology, n int, all []model.ISPConfig) RoutingPolicy {
		return NewBestFit()
	},
	"sliding_window": func(isp model.ISPConfig, topo *Topology, n int, all []model.ISPConfig) RoutingPolicy {
		return NewSlidingWindow(isp, topo, n)
	},
	"subnet": func(isp model.ISPConfig, topo *Topology, n int, all []model.ISPConfig) RoutingPolicy {
		return NewSubnet(isp, topo)
	},
	"first_fit_da": func(isp model.ISPConfig, topo *Topology, n int, all []model.ISPConfig) RoutingPolicy {
		return NewFirstFitDisasterAware()
	},
	"best_fit_da": func(isp model.ISPConfig, topo *Topology, n int, all []model.ISPConfig) RoutingPolicy {
		return NewBestFitDisasterAware()
	},
	"best_fit_sw_da": func(isp model.ISPConfig, topo *Topology, n int, all []model.ISPConfig) RoutingPolicy {
		return NewBestFitSlidingWindowDisasterAware(isp, topo, n)
	},
	"subnet_da": func(isp model.ISPConfig, topo *Topology, n int, all []model.ISPConfig) RoutingPolicy {
		return NewSubnetDisasterAware(isp, topo)
	},
	"da_with_blocking": func(isp model.ISPConfig, topo *Topology, n int, all []model.ISPConfig) RoutingPolicy {
		return NewDisasterAwareWithBlocking(isp, all)
	},
}

// NewPolicy looks up id in PolicyRegistry and constructs a policy bound
// to isp. Returns ErrUnknownPolicy for identifiers outside the closed
// set.
func NewPolicy(id string, isp model.ISPConfig, topo *Topology, numISPs int, allISPs []model.ISPConfig) (RoutingPolicy, error) {
	factory, ok := PolicyRegistry[id]
	if !ok {
		return nil, ErrUnknownPolicy
	}
	return factory(isp, topo, numISPs, allISPs), nil
}
