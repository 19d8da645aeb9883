package model

// TrafficConfig parameterizes the on-the-fly arrival generator used
// when a scenario does not supply a materialized request list.
type TrafficConfig struct {
	Lambda float64 // arrivals per unit simulation time (Poisson rate)
	Mu     float64 // 1/mean holding time (Exp(Mu))

	MinSlotDemand int
	MaxSlotDemand int

	// Nodes lists the vertex ids eligible as request src/dst when
	// drawing traffic uniformly at random.
	Nodes []string

	// NumRequests bounds how many arrivals the generator emits before
	// the Scheduler considers arrival generation complete.
	NumRequests int

	Seed int64
}

// Scenario is the external, opaque input structure described in
// spec.md §6: graph adjacency, per-link slot count, the ISP set, the
// disaster descriptor, traffic parameters, and either a materialized
// request list or a generator configuration.
type Scenario struct {
	// Graph maps node id -> neighbor node id -> edge weight. Adjacency
	// is expected to be supplied symmetrically; the loader also
	// accepts a one-directional declaration and mirrors it.
	Graph map[string]map[string]float64
	Slots int

	ISPs     []ISPConfig
	Disaster DisasterConfig
	Traffic  TrafficConfig

	// Requests is the pre-materialized arrival list for replayable
	// scenarios. Nil means "use Traffic to generate arrivals".
	Requests []*Request

	KShortest int // K for the path catalogue; 0 means "use default (5)"
}
