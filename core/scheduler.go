package core

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/eon-disaster-sim/internal/logging"
	"github.com/signalsfoundry/eon-disaster-sim/internal/observability"
	"github.com/signalsfoundry/eon-disaster-sim/model"
)

var tracer = otel.Tracer("github.com/signalsfoundry/eon-disaster-sim/core")

// eventKind orders events that land on the same timestamp. Disaster
// failures are applied before any ISP has a chance to react to them;
// reactions happen before the arrivals/departures they might affect;
// departures free spectrum before arrivals contend for it, so a
// request that frees up at the same instant another arrives has a
// chance at the newly freed capacity.
type eventKind int

const (
	eventDisasterStep eventKind = iota
	eventISPReaction
	eventDeparture
	eventArrival
)

type event struct {
	at   time.Duration
	kind eventKind
	seq  uint64

	failure model.FailureEvent // eventDisasterStep
	ispID   string             // eventISPReaction

	req      *model.Request // eventArrival, eventDeparture
	holdPath model.Path     // snapshot of Allocation.Path when this departure was scheduled
	holdWin  model.Window   // snapshot of Allocation.Window when this departure was scheduled
}

type eventQueue []event

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	if q[i].kind != q[j].kind {
		return q[i].kind < q[j].kind
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x interface{}) { *q = append(*q, x.(event)) }
func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

// Scheduler drives the discrete-event simulation: it owns the event
// queue and is the only component that mutates Topology, the ISP set,
// and Metrics, so none of those types need their own synchronization
// beyond what a concurrent Prometheus scrape requires.
type Scheduler struct {
	topo     *Topology
	disaster *Disaster
	isps     map[string]*ISP
	metrics  *Metrics
	collector *observability.SchedulerCollector
	log      logging.Logger

	queue  eventQueue
	seq    uint64
	now    time.Duration
	active map[string]*model.Request
}

// NewScheduler builds a Scheduler and seeds its event queue with the
// scenario's disaster timeline and request arrivals (materialized if
// scenario.Requests is set, generated from scenario.Traffic otherwise).
func NewScheduler(scenario *model.Scenario, topo *Topology, disaster *Disaster, isps map[string]*ISP, metrics *Metrics, collector *observability.SchedulerCollector, log logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Noop()
	}
	s := &Scheduler{
		topo:      topo,
		disaster:  disaster,
		isps:      isps,
		metrics:   metrics,
		collector: collector,
		log:       log,
		active:    make(map[string]*model.Request),
	}

	for _, fe := range disaster.Events() {
		s.push(event{at: fe.At, kind: eventDisasterStep, failure: fe})
	}

	requests := scenario.Requests
	if requests == nil {
		requests = GenerateArrivals(scenario, isps)
	}
	for _, req := range requests {
		s.push(event{at: req.ArrivalTime, kind: eventArrival, req: req})
	}

	return s
}

func (s *Scheduler) push(e event) {
	e.seq = s.seq
	s.seq++
	heap.Push(&s.queue, e)
}

// Run drains the event queue in (timestamp, kind, arrival-order)
// order until empty or ctx is cancelled, and returns the final metrics
// snapshot.
func (s *Scheduler) Run(ctx context.Context) model.MetricsSnapshot {
	for s.queue.Len() > 0 {
		select {
		case <-ctx.Done():
			return s.metrics.Snapshot(s.now)
		default:
		}

		e := heap.Pop(&s.queue).(event)
		s.now = e.at
		if s.collector != nil {
			s.collector.SetEventsQueued(s.queue.Len())
		}

		switch e.kind {
		case eventDisasterStep:
			s.handleDisasterStep(ctx, e)
		case eventISPReaction:
			s.handleISPReaction(ctx, e)
		case eventArrival:
			s.handleArrival(ctx, e)
		case eventDeparture:
			s.handleDeparture(ctx, e)
		}
	}
	return s.metrics.Snapshot(s.now)
}

func (s *Scheduler) handleDisasterStep(ctx context.Context, e event) {
	_, span := tracer.Start(ctx, "sim.disaster_step", trace.WithAttributes(
		attribute.String("kind", failureKindLabel(e.failure.Kind)),
	))
	defer span.End()

	s.disaster.Apply(e.failure, s.topo)
	if s.collector != nil {
		s.collector.IncDisasterEvents()
		s.collector.SetSpectrumUtilization(s.topo.Utilization())
		s.collector.SetFailedResources(s.topo.FailedResourceCount())
	}

	for _, req := range s.disruptedByFailure(e.failure) {
		s.disrupt(ctx, req)
	}

	for _, ispID := range s.affectedISPs(e.failure) {
		isp := s.isps[ispID]
		if isp == nil || isp.Reacted() {
			continue
		}
		s.push(event{at: s.now + isp.Config.ReactionDelay, kind: eventISPReaction, ispID: ispID})
	}
}

// disruptedByFailure returns the active requests whose current
// allocation crosses the resource that just failed, in ascending
// arrival-time order (ties broken by request ID) so notification order
// is deterministic.
func (s *Scheduler) disruptedByFailure(fe model.FailureEvent) []*model.Request {
	var hit []*model.Request
	for _, req := range s.active {
		crossed := false
		switch fe.Kind {
		case model.NodeResource:
			crossed = req.Allocation.Path.ContainsNode(fe.Node)
		case model.LinkResource:
			crossed = req.Allocation.Path.ContainsLink(fe.Link)
		}
		if crossed {
			hit = append(hit, req)
		}
	}
	sort.Slice(hit, func(i, j int) bool {
		if hit[i].ArrivalTime != hit[j].ArrivalTime {
			return hit[i].ArrivalTime < hit[j].ArrivalTime
		}
		return hit[i].ID < hit[j].ID
	})
	return hit
}

// affectedISPs returns, in a deterministic order, the ISPs whose
// member set includes the resource that just failed.
func (s *Scheduler) affectedISPs(fe model.FailureEvent) []string {
	var ids []string
	for id, isp := range s.isps {
		switch fe.Kind {
		case model.NodeResource:
			if isp.Config.HasMember(fe.Node) {
				ids = append(ids, id)
			}
		case model.LinkResource:
			if isp.Config.HasMember(fe.Link.A) || isp.Config.HasMember(fe.Link.B) {
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

func (s *Scheduler) disrupt(ctx context.Context, req *model.Request) {
	isp := s.isps[req.OwningISP]
	if isp == nil {
		return
	}

	deadline := req.Allocation.AdmittedAt + req.HoldingTime
	remaining := deadline - s.now
	if remaining < 0 {
		// A disruption can only ever be handled between admission and
		// departure; a negative remainder means some earlier step
		// admitted or scheduled this request with a deadline already in
		// the past, which would silently corrupt the departure timeline
		// if allowed through.
		panic(fmt.Errorf("%w: request %s deadline %s precedes disruption at %s", ErrNegativeTime, req.ID, deadline, s.now))
	}

	if err := s.topo.Release(req.Allocation.Path, req.Allocation.Window); err != nil {
		s.log.Error(ctx, "release on disruption failed", logging.String("request_id", req.ID), logging.String("error", err.Error()))
		panic(fmt.Errorf("release on disruption of request %s: %w", req.ID, err))
	}
	s.metrics.RecordDisrupted(req.OwningISP, req.Class)
	delete(s.active, req.ID)

	outcome := isp.OnDisrupted(ctx, req, s.topo)
	if !outcome.Accepted {
		req.Allocation.Status = model.Disrupted
		req.Allocation.Reason = model.DisruptedNoAlternative
		s.metrics.RecordBlocked(req.OwningISP, req.Class, model.DisruptedNoAlternative)
		return
	}

	req.Allocation.Path = outcome.Path
	req.Allocation.Window = outcome.Window
	req.Allocation.AdmittedAt = s.now
	req.Allocation.Status = model.Rerouted
	req.Allocation.Reason = model.NoBlock
	s.metrics.RecordRerouted(req.OwningISP, req.Class)
	s.active[req.ID] = req
	s.push(event{
		at:       s.now + remaining,
		kind:     eventDeparture,
		req:      req,
		holdPath: outcome.Path,
		holdWin:  outcome.Window,
	})
}

func (s *Scheduler) handleISPReaction(ctx context.Context, e event) {
	isp := s.isps[e.ispID]
	if isp == nil {
		return
	}
	_, span := tracer.Start(ctx, "sim.isp_reaction", trace.WithAttributes(attribute.String("isp", e.ispID)))
	defer span.End()

	migration := isp.OnReaction(ctx, s.disaster)
	if migration == nil {
		return
	}
	migration.ArrivalTime = s.now
	s.push(event{at: s.now, kind: eventArrival, req: migration})
}

func (s *Scheduler) handleArrival(ctx context.Context, e event) {
	req := e.req
	isp := s.isps[req.OwningISP]
	if isp == nil {
		s.metrics.RecordArrival()
		s.metrics.RecordBlocked(req.OwningISP, req.Class, model.NoPath)
		return
	}

	ctx, span := tracer.Start(ctx, "sim.route", trace.WithAttributes(
		attribute.String("isp", req.OwningISP),
		attribute.String("class", req.Class.String()),
	))
	defer span.End()

	s.metrics.RecordArrival()
	start := time.Now()
	outcome := isp.Route(req, s.topo)
	if s.collector != nil {
		s.collector.ObserveRouteDuration(time.Since(start))
		s.collector.SetSpectrumUtilization(s.topo.Utilization())
	}

	if !outcome.Accepted {
		req.Allocation.Status = model.Blocked
		req.Allocation.Reason = outcome.Reason
		s.metrics.RecordBlocked(req.OwningISP, req.Class, outcome.Reason)
		return
	}

	req.Allocation.Path = outcome.Path
	req.Allocation.Window = outcome.Window
	req.Allocation.AdmittedAt = s.now
	req.Allocation.Status = model.Active
	req.Allocation.Reason = model.NoBlock
	s.active[req.ID] = req
	s.metrics.RecordAdmitted(req.OwningISP, req.Class)
	if req.IsMigration() {
		s.metrics.RecordMigrationBytes(req.OwningISP, isp.Config.MigrationDataVolumeBytes)
	}

	s.push(event{
		at:       s.now + req.HoldingTime,
		kind:     eventDeparture,
		req:      req,
		holdPath: outcome.Path,
		holdWin:  outcome.Window,
	})
}

func (s *Scheduler) handleDeparture(ctx context.Context, e event) {
	req := e.req
	// Stale departure: the request was already disrupted/rerouted and
	// a fresh departure was scheduled for its new allocation.
	if (req.Allocation.Status != model.Active && req.Allocation.Status != model.Rerouted) || req.Allocation.Path.Key() != e.holdPath.Key() || req.Allocation.Window != e.holdWin {
		return
	}
	if err := s.topo.Release(e.holdPath, e.holdWin); err != nil {
		s.log.Error(ctx, "release on departure failed", logging.String("request_id", req.ID), logging.String("error", err.Error()))
		panic(fmt.Errorf("release on departure of request %s: %w", req.ID, err))
	}
	now := s.now
	req.Allocation.ReleasedAt = &now
	req.Allocation.Status = model.Completed
	delete(s.active, req.ID)
	if s.collector != nil {
		s.collector.SetSpectrumUtilization(s.topo.Utilization())
	}
}

// GenerateArrivals draws a Poisson-arrival, exponential-holding-time
// traffic pattern from scenario.Traffic when the scenario does not
// supply a materialized request list.
func GenerateArrivals(scenario *model.Scenario, isps map[string]*ISP) []*model.Request {
	tc := scenario.Traffic
	if tc.NumRequests <= 0 || len(tc.Nodes) < 2 {
		return nil
	}
	rng := rand.New(rand.NewSource(tc.Seed))
	minDemand, maxDemand := tc.MinSlotDemand, tc.MaxSlotDemand
	if maxDemand < minDemand {
		maxDemand = minDemand
	}

	requests := make([]*model.Request, 0, tc.NumRequests)
	t := time.Duration(0)
	for i := 0; i < tc.NumRequests; i++ {
		t += expDuration(rng, tc.Lambda)
		src, dst := randomDistinctPair(rng, tc.Nodes)
		demand := minDemand
		if maxDemand > minDemand {
			demand = minDemand + rng.Intn(maxDemand-minDemand+1)
		}
		hold := expDuration(rng, tc.Mu)
		req := &model.Request{
			ID:          uuid.NewString(),
			Src:         src,
			Dst:         dst,
			SlotDemand:  demand,
			HoldingTime: hold,
			Class:       model.Datapath,
			ArrivalTime: t,
			OwningISP:   ownerOf(src, isps),
		}
		requests = append(requests, req)
	}
	return requests
}

func failureKindLabel(kind model.ResourceKind) string {
	if kind == model.NodeResource {
		return "node"
	}
	return "link"
}

func expDuration(rng *rand.Rand, rate float64) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(-math.Log(1-rng.Float64()) / rate * float64(time.Second))
}

func randomDistinctPair(rng *rand.Rand, nodes []string) (string, string) {
	a := nodes[rng.Intn(len(nodes))]
	b := a
	for b == a && len(nodes) > 1 {
		b = nodes[rng.Intn(len(nodes))]
	}
	return a, b
}

func ownerOf(node string, isps map[string]*ISP) string {
	ids := make([]string, 0, len(isps))
	for id := range isps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if isps[id].Config.HasMember(node) {
			return id
		}
	}
	return ""
}

