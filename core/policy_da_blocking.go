package core

import "github.com/signalsfoundry/eon-disaster-sim/model"

// DisasterAwareWithBlocking is FirstFitDisasterAware plus a proactive
// admission control rule: for each candidate (path, window), it
// estimates admission's effect on the path's future capacity to carry
// a migration-class burst by summing, over every link the path
// crosses, the decrease in that link's count of contiguous free runs
// wide enough to hold one migration_slot_demand-sized transfer. A
// candidate whose total decrease exceeds theta is rejected and the
// next candidate is tried. If every candidate is rejected under this
// criterion, the policy falls back to plain disaster-aware best-fit (a
// second chance) rather than blocking outright, to avoid pathological
// starvation. Migration-class requests bypass the rule entirely — they
// are the traffic the reservation exists to protect.
type DisasterAwareWithBlocking struct {
	theta           int
	migrationDemand int
}

// NewDisasterAwareWithBlocking constructs the admission-control policy
// bound to isp's configured theta and migration_slot_demand. allISPs
// is accepted for symmetry with the other zone-aware constructors; the
// rule as specified is purely local to the requesting ISP's own path,
// so it is unused here.
func NewDisasterAwareWithBlocking(isp model.ISPConfig, allISPs []model.ISPConfig) *DisasterAwareWithBlocking {
	theta := isp.AdmissionTheta
	if theta <= 0 {
		theta = 1
	}
	demand := isp.MigrationSlotDemand
	if demand <= 0 {
		demand = 1
	}
	return &DisasterAwareWithBlocking{theta: theta, migrationDemand: demand}
}

func (p *DisasterAwareWithBlocking) Name() string { return "da_with_blocking" }

func (p *DisasterAwareWithBlocking) Route(req *model.Request, topo *Topology) Outcome {
	paths := topo.Paths(req.Src, req.Dst)
	if len(paths) == 0 {
		return Blocked(model.NoPath)
	}
	safe := filterSafePaths(paths, topo)
	if len(safe) == 0 {
		return Blocked(model.NoSafePath)
	}

	if req.IsMigration() {
		return firstFitOnPaths(safe, req.SlotDemand, topo)
	}

	for _, path := range safe {
		runs := topo.FreeRuns(path)
		for _, run := range runs {
			if run.Width < req.SlotDemand {
				continue
			}
			w := model.Window{Start: run.Start, Width: req.SlotDemand}
			if p.decreaseAcrossPath(topo, path, w) > p.theta {
				continue
			}
			if topo.TryAllocate(path, w) {
				return Accept(path, w)
			}
		}
	}

	// Second chance: every candidate would have harmed future migration
	// capacity too much, or none allocated cleanly. Fall back to plain
	// disaster-aware best-fit rather than blocking outright.
	if out := routeSafely(paths, req.SlotDemand, topo, bestFitOnPaths); out.Accepted {
		return out
	}
	return Blocked(model.AdmissionControl)
}

func (p *DisasterAwareWithBlocking) Reroute(req *model.Request, topo *Topology) Outcome {
	return p.Route(req, topo)
}

// decreaseAcrossPath sums, over every link path crosses, the decrease
// in that link's own count of free runs wide enough to carry a
// migration_slot_demand-sized transfer that admitting w would cause.
// Summing across links (rather than checking the path's already
// spectrum-continuous combined view once) is what lets theta scale
// with path length: a long, thin candidate can rack up decrease on
// several links even though no single link's decrease exceeds 1.
func (p *DisasterAwareWithBlocking) decreaseAcrossPath(topo *Topology, path model.Path, w model.Window) int {
	total := 0
	for _, link := range path.Links() {
		linkPath := model.Path{Nodes: []string{link.A, link.B}}
		runs := topo.FreeRuns(linkPath)
		before := countRunsAtLeast(runs, p.migrationDemand)
		consumed, ok := runContaining(runs, w)
		if !ok {
			continue
		}
		after := freeRunCountAfterAdmission(runs, consumed, w, p.migrationDemand)
		total += before - after
	}
	return total
}

// countRunsAtLeast counts the free runs wide enough to carry a
// migration of the given demand.
func countRunsAtLeast(runs []model.Window, demand int) int {
	n := 0
	for _, r := range runs {
		if r.Width >= demand {
			n++
		}
	}
	return n
}

// runContaining returns the run in runs that fully contains win, if any.
func runContaining(runs []model.Window, win model.Window) (model.Window, bool) {
	for _, r := range runs {
		if win.Start >= r.Start && win.End() <= r.End() {
			return r, true
		}
	}
	return model.Window{}, false
}

// freeRunCountAfterAdmission recomputes countRunsAtLeast as it would
// read immediately after hypothetically admitting win, which is
// carved out of consumed (one of runs). consumed splits into a left
// and right remainder around win; every other run is unaffected.
func freeRunCountAfterAdmission(runs []model.Window, consumed, win model.Window, demand int) int {
	count := 0
	for _, r := range runs {
		if r == consumed {
			continue
		}
		if r.Width >= demand {
			count++
		}
	}
	left := model.Window{Start: consumed.Start, Width: win.Start - consumed.Start}
	right := model.Window{Start: win.End(), Width: consumed.End() - win.End()}
	if left.Width >= demand {
		count++
	}
	if right.Width >= demand {
		count++
	}
	return count
}
