package traj2lanes

import (
	"fmt"

	"github.com/paulmach/orb"
)

// CRS Describes the coordinate reference system of an input collection.
// The pipeline works with planar distances (buffer radii, simplification
// tolerances are given in CRS units), therefore geographic (angular) systems
// are rejected before any geometry is built.
type CRS struct {
	Name       string
	Geographic bool
}

// String returns pretty printed value for CRS
func (crs CRS) String() string {
	if crs.Geographic {
		return fmt.Sprintf("%s (geographic)", crs.Name)
	}
	return fmt.Sprintf("%s (projected)", crs.Name)
}

// Trajectory Single movement record: an ordered polyline plus its start time
// (seconds since local midnight) and the identifier of the logical trip it
// belongs to. Multiple records may share one GroupID when they are legs or
// point-samples of the same real-world movement.
type Trajectory struct {
	Geom         orb.LineString
	StartSeconds int
	GroupID      string
}

// StartHour returns the hour-of-day bucket for the trajectory start.
// Returns -1 when the start time falls outside a single day.
func (t Trajectory) StartHour() int {
	if t.StartSeconds < 0 || t.StartSeconds > 86399 {
		return -1
	}
	return t.StartSeconds / 3600
}

// TrajectoryCollection Read-only set of trajectories sharing one CRS
type TrajectoryCollection struct {
	CRS          CRS
	Trajectories []Trajectory
}

// IntersectionCollection Road-network junction points used to split the
// dissolved lane footprint. Must share the (projected) CRS frame of the
// trajectory layer the lanes are built from.
type IntersectionCollection struct {
	CRS    CRS
	Points []orb.Point
}
