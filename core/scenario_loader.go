package core

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/signalsfoundry/eon-disaster-sim/model"
)

// scenarioJSON mirrors model.Scenario's shape on the wire. Fields are
// kept close to the Go struct names so the JSON stays legible; we
// deliberately do not re-validate everything here (e.g. that ISP
// member sets partition the node set) — NewSimulation does that once,
// against the fully decoded model.Scenario, so callers get one
// consistent error path regardless of how the scenario was built.
type scenarioJSON struct {
	Graph map[string]map[string]float64 `json:"graph"`
	Slots int                           `json:"slots"`

	ISPs      []ispJSON     `json:"isps"`
	Disaster  disasterJSON  `json:"disaster"`
	Traffic   trafficJSON   `json:"traffic"`
	Requests  []requestJSON `json:"requests,omitempty"`
	KShortest int           `json:"k_shortest,omitempty"`
}

type ispJSON struct {
	ID                       string  `json:"id"`
	Members                  []string `json:"members"`
	DatacenterNode           string  `json:"datacenter_node"`
	ReactionDelaySeconds     float64 `json:"reaction_delay_seconds"`
	NormalPolicy             string  `json:"normal_policy"`
	DisasterPolicy           string  `json:"disaster_policy"`
	MigrationSlotDemand      int     `json:"migration_slot_demand"`
	MigrationDataVolumeBytes float64 `json:"migration_data_volume_bytes"`
	PerSlotThroughputBps     float64 `json:"per_slot_throughput_bps"`
	SpectrumZoneStart        int     `json:"spectrum_zone_start,omitempty"`
	SpectrumZoneWidth        int     `json:"spectrum_zone_width,omitempty"`
	AdmissionTheta           int     `json:"admission_theta,omitempty"`
}

type disasterJSON struct {
	Epicenter          string  `json:"epicenter"`
	RadiusKm           float64 `json:"radius_km"`
	StartTimeSeconds   float64 `json:"start_time_seconds"`
	EndTimeSeconds     float64 `json:"end_time_seconds"`
	FailureSeed        int64   `json:"failure_seed"`
}

type trafficJSON struct {
	Lambda        float64  `json:"lambda"`
	Mu            float64  `json:"mu"`
	MinSlotDemand int      `json:"min_slot_demand"`
	MaxSlotDemand int      `json:"max_slot_demand"`
	Nodes         []string `json:"nodes"`
	NumRequests   int      `json:"num_requests"`
	Seed          int64    `json:"seed"`
}

type requestJSON struct {
	ID                  string  `json:"id"`
	Src                 string  `json:"src"`
	Dst                 string  `json:"dst"`
	SlotDemand          int     `json:"slot_demand"`
	HoldingTimeSeconds  float64 `json:"holding_time_seconds"`
	OwningISP           string  `json:"owning_isp"`
	ArrivalTimeSeconds  float64 `json:"arrival_time_seconds"`
}

// LoadScenario decodes a JSON scenario document from r into a
// model.Scenario. It fails on structural/JSON errors and on an ISP or
// request with an empty id; all other semantic
// validation (unknown policy identifiers, non-partitioning ISP member
// sets, references to unknown nodes) happens in NewSimulation so every
// caller gets the same validation regardless of how the scenario was
// assembled in memory versus loaded from disk.
func LoadScenario(r io.Reader) (*model.Scenario, error) {
	var payload scenarioJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	scenario := &model.Scenario{
		Graph:     payload.Graph,
		Slots:     payload.Slots,
		KShortest: payload.KShortest,
		Disaster: model.DisasterConfig{
			Epicenter:   payload.Disaster.Epicenter,
			RadiusKm:    payload.Disaster.RadiusKm,
			StartTime:   secondsToDuration(payload.Disaster.StartTimeSeconds),
			EndTime:     secondsToDuration(payload.Disaster.EndTimeSeconds),
			FailureSeed: payload.Disaster.FailureSeed,
		},
		Traffic: model.TrafficConfig{
			Lambda:        payload.Traffic.Lambda,
			Mu:            payload.Traffic.Mu,
			MinSlotDemand: payload.Traffic.MinSlotDemand,
			MaxSlotDemand: payload.Traffic.MaxSlotDemand,
			Nodes:         payload.Traffic.Nodes,
			NumRequests:   payload.Traffic.NumRequests,
			Seed:          payload.Traffic.Seed,
		},
	}

	scenario.ISPs = make([]model.ISPConfig, 0, len(payload.ISPs))
	for _, j := range payload.ISPs {
		if j.ID == "" {
			return nil, fmt.Errorf("LoadScenario: ISP with empty id")
		}
		scenario.ISPs = append(scenario.ISPs, model.ISPConfig{
			ID:                       j.ID,
			Members:                  j.Members,
			DatacenterNode:           j.DatacenterNode,
			ReactionDelay:            secondsToDuration(j.ReactionDelaySeconds),
			NormalPolicy:             j.NormalPolicy,
			DisasterPolicy:           j.DisasterPolicy,
			MigrationSlotDemand:      j.MigrationSlotDemand,
			MigrationDataVolumeBytes: j.MigrationDataVolumeBytes,
			PerSlotThroughputBps:     j.PerSlotThroughputBps,
			SpectrumZone:             model.Window{Start: j.SpectrumZoneStart, Width: j.SpectrumZoneWidth},
			AdmissionTheta:           j.AdmissionTheta,
		})
	}

	if len(payload.Requests) > 0 {
		scenario.Requests = make([]*model.Request, 0, len(payload.Requests))
		for _, j := range payload.Requests {
			if j.ID == "" {
				return nil, fmt.Errorf("LoadScenario: request with empty id")
			}
			scenario.Requests = append(scenario.Requests, &model.Request{
				ID:          j.ID,
				Src:         j.Src,
				Dst:         j.Dst,
				SlotDemand:  j.SlotDemand,
				HoldingTime: secondsToDuration(j.HoldingTimeSeconds),
				Class:       model.Datapath,
				OwningISP:   j.OwningISP,
				ArrivalTime: secondsToDuration(j.ArrivalTimeSeconds),
			})
		}
	}

	return scenario, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// AssignDefaultZones evenly divides the topology's slot grid among
// isps in declaration order, for any ISP whose scenario definition
// left SpectrumZone unset (zero width). Zone-partitioned policies
// (sliding_window, best_fit_sw_da) fall back to the whole grid on a
// zero-width zone, so calling this is optional but keeps their
// partitions from silently overlapping.
func AssignDefaultZones(isps []model.ISPConfig, slots int) []model.ISPConfig {
	n := len(isps)
	if n == 0 || slots <= 0 {
		return isps
	}
	band := slots / n
	out := make([]model.ISPConfig, n)
	for i, isp := range isps {
		if isp.SpectrumZone.Width <= 0 {
			start := i * band
			width := band
			if i == n-1 {
				width = slots - start
			}
			isp.SpectrumZone = model.Window{Start: start, Width: width}
		}
		out[i] = isp
	}
	return out
}
