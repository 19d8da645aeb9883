package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/signalsfoundry/eon-disaster-sim/internal/logging"
	"github.com/signalsfoundry/eon-disaster-sim/model"
)

// ISP wraps a static ISPConfig with the mutable routing state a
// scheduler drives over the course of a run: which policy is active and
// whether the disaster reaction has already fired. Active requests are
// tracked by the Scheduler, not here.
type ISP struct {
	Config model.ISPConfig

	normal RoutingPolicy
	dis    RoutingPolicy
	active RoutingPolicy

	reacted bool

	log logging.Logger
}

// NewISP constructs an ISP bound to its normal and disaster routing
// policies. Both must resolve against PolicyRegistry; the caller is
// expected to have validated the scenario's policy identifiers already
// (see NewPolicy / ErrUnknownPolicy).
func NewISP(cfg model.ISPConfig, normal, disaster RoutingPolicy, log logging.Logger) *ISP {
	if log == nil {
		log = logging.Noop()
	}
	return &ISP{
		Config: cfg,
		normal: normal,
		dis:    disaster,
		active: normal,
		log:    log.With(logging.String("isp", cfg.ID)),
	}
}

// Reacted reports whether this ISP has switched to its disaster policy.
func (isp *ISP) Reacted() bool { return isp.reacted }

// ActivePolicyName reports the identifier of the currently active
// routing policy, for metrics labeling.
func (isp *ISP) ActivePolicyName() string { return isp.active.Name() }

// Route hands req to the currently active policy. Route never switches
// policy itself — that only happens via OnReaction, which is
// irrevocable per the normal-to-disaster transition.
func (isp *ISP) Route(req *model.Request, topo *Topology) Outcome {
	return isp.active.Route(req, topo)
}

// Reroute hands req to the currently active policy's Reroute path,
// used after a disruption has released req's prior allocation.
func (isp *ISP) Reroute(req *model.Request, topo *Topology) Outcome {
	return isp.active.Reroute(req, topo)
}

// OnReaction fires exactly once per ISP: it switches the active policy
// from normal to disaster (irrevocably — a later call is a no-op) and
// constructs the migration request that carries this ISP's datacenter
// traffic to safety, routed to the member node farthest (in graph
// distance) from the disaster's epicenter. The caller (Scheduler) is
// responsible for injecting the returned request as an immediate
// arrival event.
func (isp *ISP) OnReaction(ctx context.Context, disaster *Disaster) *model.Request {
	if isp.reacted {
		return nil
	}
	isp.reacted = true
	isp.active = isp.dis
	isp.log.Info(ctx, "isp reacted to disaster", logging.String("disaster_policy", isp.dis.Name()))

	return &model.Request{
		ID:          uuid.NewString(),
		Src:         isp.Config.DatacenterNode,
		Dst:         isp.migrationTarget(disaster),
		SlotDemand:  isp.Config.MigrationSlotDemand,
		HoldingTime: isp.migrationHoldingTime(),
		Class:       model.Migration,
		OwningISP:   isp.Config.ID,
	}
}

// migrationTarget picks the destination for this ISP's migration
// traffic: the member node farthest from the disaster's epicenter,
// per spec.md §4.4's argmax-distance rule (and
// original_source/simulador/generators/datacenter_generator.py's
// max(node_distances, key=...)). Falls back to the datacenter node
// itself if it has no other members.
func (isp *ISP) migrationTarget(disaster *Disaster) string {
	var candidates []string
	for _, m := range isp.Config.Members {
		if m != isp.Config.DatacenterNode {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return isp.Config.DatacenterNode
	}
	return disaster.FarthestMember(candidates)
}

// migrationHoldingTime derives how long the migration transfer occupies
// its allocated slots from the configured data volume and per-slot
// throughput (spec.md §4.4: holding_time = data_volume / throughput).
// A zero or unset throughput has no well-defined holding time; treated
// as instantaneous rather than dividing by zero.
func (isp *ISP) migrationHoldingTime() time.Duration {
	if isp.Config.PerSlotThroughputBps <= 0 {
		return 0
	}
	seconds := isp.Config.MigrationDataVolumeBytes / isp.Config.PerSlotThroughputBps
	return time.Duration(seconds * float64(time.Second))
}

// OnDisrupted handles a request whose allocation crossed a link or
// node the Disaster component just failed. The caller has already
// released the stale allocation; OnDisrupted attempts a reroute under
// the currently active policy and reports whether the request survived.
func (isp *ISP) OnDisrupted(ctx context.Context, req *model.Request, topo *Topology) Outcome {
	outcome := isp.Reroute(req, topo)
	if !outcome.Accepted {
		isp.log.Warn(ctx, "disrupted request could not be rerouted",
			logging.String("request_id", req.ID),
			logging.Any("reason", outcome.Reason))
		return Blocked(model.DisruptedNoAlternative)
	}
	isp.log.Debug(ctx, "disrupted request rerouted",
		logging.String("request_id", req.ID))
	return outcome
}

// String implements fmt.Stringer for log/debug convenience.
func (isp *ISP) String() string {
	return fmt.Sprintf("ISP(%s, active=%s, reacted=%v)", isp.Config.ID, isp.active.Name(), isp.reacted)
}
