package model

// PerISPCounters holds the accumulated outcome counts for a single ISP,
// broken down per request class.
type PerISPCounters struct {
	Admitted          map[RequestClass]uint64
	Blocked           map[RequestClass]uint64
	Disrupted         map[RequestClass]uint64
	Rerouted          map[RequestClass]uint64
	BlockReasonCounts map[BlockReason]uint64
	MigrationBytes    float64
}

// NewPerISPCounters returns a zero-valued counters block with its maps
// initialized.
func NewPerISPCounters() PerISPCounters {
	return PerISPCounters{
		Admitted:          make(map[RequestClass]uint64),
		Blocked:           make(map[RequestClass]uint64),
		Disrupted:         make(map[RequestClass]uint64),
		Rerouted:          make(map[RequestClass]uint64),
		BlockReasonCounts: make(map[BlockReason]uint64),
	}
}

// MetricsSnapshot is a point-in-time, serializable view of the
// simulation's accumulated Metrics, keyed by ISP id.
type MetricsSnapshot struct {
	At           string `json:"at"`
	TotalArrivals uint64 `json:"total_arrivals"`
	PerISP       map[string]PerISPCounters `json:"per_isp"`
}
