package traj2lanes

import (
	"fmt"

	"github.com/paulmach/orb"
)

// LaneSegment Polygon approximating one travel corridor between two adjacent
// road-network junctions, carrying the per-hour deduplicated trajectory counts.
// Geometry is produced once by the lane builder; the counters are written once
// by the finalization stage.
type LaneSegment struct {
	ID           string
	Geom         orb.Polygon
	HourlyCounts [24]int
	TotalCount   int
}

// formatLaneID returns stable zero-padded identifier for n-th lane (1-based)
func formatLaneID(n int) string {
	return fmt.Sprintf("%06d", n+1)
}
