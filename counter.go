package traj2lanes

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const progressEvery = 5000

// cellKey addresses one (lane, hour) accumulator cell
type cellKey struct {
	lane int
	hour int
}

type groupSet map[string]struct{}

// hourAccumulator Intermediate counting state: for every (lane, hour) cell the
// set of distinct group identifiers observed crossing that lane. Set insertion
// is idempotent, which is what makes the counting trajectory-based instead of
// record-based: however many records or legs of one trip hit the same lane in
// the same hour, the trip contributes a single unit.
type hourAccumulator map[cellKey]groupSet

func (acc hourAccumulator) add(lane, hour int, groupID string) {
	key := cellKey{lane: lane, hour: hour}
	groups, ok := acc[key]
	if !ok {
		groups = groupSet{}
		acc[key] = groups
	}
	groups[groupID] = struct{}{}
}

// merge folds another accumulator into this one (set union per cell).
// Union is commutative and associative, so worker merge order is immaterial.
func (acc hourAccumulator) merge(other hourAccumulator) {
	for key, groups := range other {
		target, ok := acc[key]
		if !ok {
			acc[key] = groups
			continue
		}
		for groupID := range groups {
			target[groupID] = struct{}{}
		}
	}
}

// RunStats Per-record outcomes of a counting pass
type RunStats struct {
	Processed          int
	SkippedEmptyGeom   int
	SkippedOutOfRange  int
	SampledForBuilding int
	Lanes              int
}

// String returns pretty printed value for RunStats
func (stats RunStats) String() string {
	return fmt.Sprintf(
		"processed: %d | skipped (empty geometry): %d | skipped (hour out of range): %d | sampled for lane building: %d | lanes: %d",
		stats.Processed,
		stats.SkippedEmptyGeom,
		stats.SkippedOutOfRange,
		stats.SampledForBuilding,
		stats.Lanes,
	)
}

// countTrajectories runs the full (unsampled) collection against the lane set:
// coarse candidate retrieval through the bounding-box index, then the exact
// polyline-polygon test per candidate. Trajectories are partitioned across
// workers; every worker fills its own accumulator and the results are merged
// after all workers have joined, so the hot loop shares no mutable state.
func countTrajectories(trajectories []Trajectory, lanes []LaneSegment, index *laneIndex, workers int, verbose bool) (hourAccumulator, RunStats) {
	if workers < 1 {
		workers = 1
	}
	st := time.Now()

	accs := make([]hourAccumulator, workers)
	workerStats := make([]RunStats, workers)
	var processed int64

	var wg sync.WaitGroup
	jobs := make(chan int, 8192)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			acc := hourAccumulator{}
			accs[w] = acc
			for i := range jobs {
				traj := trajectories[i]
				done := atomic.AddInt64(&processed, 1)
				if verbose && done%progressEvery == 0 {
					fmt.Printf("\tProcessed %d/%d trajectories...\n", done, len(trajectories))
				}
				if len(traj.Geom) == 0 {
					workerStats[w].SkippedEmptyGeom++
					continue
				}
				hour := traj.StartHour()
				if hour < 0 {
					workerStats[w].SkippedOutOfRange++
					continue
				}
				for _, laneIdx := range index.query(traj.Geom.Bound()) {
					if lineIntersectsPolygon(traj.Geom, lanes[laneIdx].Geom) {
						acc.add(laneIdx, hour, traj.GroupID)
					}
				}
				workerStats[w].Processed++
			}
		}(w)
	}
	for i := range trajectories {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	merged := hourAccumulator{}
	stats := RunStats{Lanes: len(lanes)}
	for w := 0; w < workers; w++ {
		merged.merge(accs[w])
		stats.Processed += workerStats[w].Processed
		stats.SkippedEmptyGeom += workerStats[w].SkippedEmptyGeom
		stats.SkippedOutOfRange += workerStats[w].SkippedOutOfRange
	}
	if verbose {
		fmt.Printf("\tProcessed %d/%d trajectories. Done in %v\n", atomic.LoadInt64(&processed), len(trajectories), time.Since(st))
	}
	return merged, stats
}
