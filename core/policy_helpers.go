package core

import "github.com/signalsfoundry/eon-disaster-sim/model"

// firstFitOnPaths enumerates paths in the given order and, for each,
// scans slot indices ascending for the first window where an
// allocation succeeds. Blocks with NoPath if paths is empty, or
// NoWindow if no path yields an allocatable window.
func firstFitOnPaths(paths []model.Path, demand int, topo *Topology) Outcome {
	if len(paths) == 0 {
		return Blocked(model.NoPath)
	}
	for _, path := range paths {
		if w, ok := firstFitWindow(topo, path, demand); ok {
			if topo.TryAllocate(path, w) {
				return Accept(path, w)
			}
		}
	}
	return Blocked(model.NoWindow)
}

func firstFitWindow(topo *Topology, path model.Path, demand int) (model.Window, bool) {
	for _, run := range topo.FreeRuns(path) {
		if run.Width >= demand {
			return model.Window{Start: run.Start, Width: demand}, true
		}
	}
	return model.Window{}, false
}

// bestFitOnPaths enumerates paths in the given order and, for each,
// picks the tightest-fitting window per bestFitWindow.
func bestFitOnPaths(paths []model.Path, demand int, topo *Topology) Outcome {
	if len(paths) == 0 {
		return Blocked(model.NoPath)
	}
	for _, path := range paths {
		if w, ok := bestFitWindow(topo, path, demand); ok {
			if topo.TryAllocate(path, w) {
				return Accept(path, w)
			}
		}
	}
	return Blocked(model.NoWindow)
}

// bestFitWindow selects, among all free runs on path wide enough for
// demand, the window whose placement minimizes the size of the
// largest adjacent free sub-run it leaves behind (i.e. the tightest
// fit), tie-broken by the lowest starting slot index.
func bestFitWindow(topo *Topology, path model.Path, demand int) (model.Window, bool) {
	type candidate struct {
		window  model.Window
		leftover int
	}
	var best *candidate

	for _, run := range topo.FreeRuns(path) {
		if run.Width < demand {
			continue
		}
		leftover := run.Width - demand
		consider := func(start int) {
			c := candidate{window: model.Window{Start: start, Width: demand}, leftover: leftover}
			if best == nil ||
				c.leftover < best.leftover ||
				(c.leftover == best.leftover && c.window.Start < best.window.Start) {
				best = &c
			}
		}
		consider(run.Start)
		if leftover > 0 {
			consider(run.Start + leftover)
		}
	}
	if best == nil {
		return model.Window{}, false
	}
	return best.window, true
}

// filterSafePaths returns the subset of paths that are currently
// usable (no failed node or link), preserving catalogue order.
func filterSafePaths(paths []model.Path, topo *Topology) []model.Path {
	safe := make([]model.Path, 0, len(paths))
	for _, p := range paths {
		if topo.IsUsable(p) {
			safe = append(safe, p)
		}
	}
	return safe
}

// filterRunsToZone restricts a window search to a fixed [Start,Start+Width)
// spectrum zone by returning the free runs intersected with the zone.
func filterRunsToZone(runs []model.Window, zone model.Window) []model.Window {
	var out []model.Window
	for _, r := range runs {
		start := max(r.Start, zone.Start)
		end := min(r.End(), zone.End())
		if end > start {
			out = append(out, model.Window{Start: start, Width: end - start})
		}
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// firstFitWindowInZone / bestFitWindowInZone mirror the plain variants but confine
// candidate windows to zone.
func firstFitWindowInZone(topo *Topology, path model.Path, demand int, zone model.Window) (model.Window, bool) {
	runs := filterRunsToZone(topo.FreeRuns(path), zone)
	for _, run := range runs {
		if run.Width >= demand {
			return model.Window{Start: run.Start, Width: demand}, true
		}
	}
	return model.Window{}, false
}

func bestFitWindowInZone(topo *Topology, path model.Path, demand int, zone model.Window) (model.Window, bool) {
	runs := filterRunsToZone(topo.FreeRuns(path), zone)
	type candidate struct {
		window   model.Window
		leftover int
	}
	var best *candidate
	for _, run := range runs {
		if run.Width < demand {
			continue
		}
		leftover := run.Width - demand
		consider := func(start int) {
			c := candidate{window: model.Window{Start: start, Width: demand}, leftover: leftover}
			if best == nil ||
				c.leftover < best.leftover ||
				(c.leftover == best.leftover && c.window.Start < best.window.Start) {
				best = &c
			}
		}
		consider(run.Start)
		if leftover > 0 {
			consider(run.Start + leftover)
		}
	}
	if best == nil {
		return model.Window{}, false
	}
	return best.window, true
}
