package traj2lanes

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// laneIndex Bounding-box index over finalized lane geometries. Built once
// after the lane builder completes, queried concurrently by the counting
// workers and never mutated afterwards.
type laneIndex struct {
	tree rtree.RTree
}

func newLaneIndex(lanes []LaneSegment) *laneIndex {
	index := &laneIndex{}
	for i := range lanes {
		b := lanes[i].Geom.Bound()
		index.tree.Insert(
			[2]float64{b.Min[0], b.Min[1]},
			[2]float64{b.Max[0], b.Max[1]},
			i,
		)
	}
	return index
}

// query returns indices of lanes whose bounding boxes overlap the given one.
// The result is sorted so that repeated queries yield identical slices.
func (index *laneIndex) query(b orb.Bound) []int {
	candidates := []int{}
	index.tree.Search(
		[2]float64{b.Min[0], b.Min[1]},
		[2]float64{b.Max[0], b.Max[1]},
		func(_, _ [2]float64, value interface{}) bool {
			candidates = append(candidates, value.(int))
			return true
		},
	)
	sort.Ints(candidates)
	return candidates
}
