package traj2lanes

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// TrajectoriesFromGeoJSON builds a trajectory collection from a GeoJSON
// feature collection. Every feature must be a LineString carrying integer
// 'seconds_start' and string 'group_id' properties; a missing required
// attribute is a fatal input error, not a skippable one.
func TrajectoriesFromGeoJSON(data []byte, crs CRS) (*TrajectoryCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't unmarshal feature collection")
	}
	collection := &TrajectoryCollection{
		CRS:          crs,
		Trajectories: make([]Trajectory, 0, len(fc.Features)),
	}
	for i, feature := range fc.Features {
		if feature.Geometry == nil || !feature.Geometry.IsLineString() {
			// Empty or non-polyline geometry is a per-record problem, keep the
			// record so the counting stage can tally the skip
			collection.Trajectories = append(collection.Trajectories, Trajectory{})
			continue
		}
		secondsStart, err := feature.PropertyInt("seconds_start")
		if err != nil {
			return nil, errors.Wrapf(err, "Feature #%d has no valid 'seconds_start' property", i)
		}
		groupID, err := feature.PropertyString("group_id")
		if err != nil {
			return nil, errors.Wrapf(err, "Feature #%d has no valid 'group_id' property", i)
		}
		line := make(orb.LineString, 0, len(feature.Geometry.LineString))
		for _, coord := range feature.Geometry.LineString {
			if len(coord) < 2 {
				return nil, errors.Errorf("Feature #%d has a malformed coordinate", i)
			}
			line = append(line, orb.Point{coord[0], coord[1]})
		}
		collection.Trajectories = append(collection.Trajectories, Trajectory{
			Geom:         line,
			StartSeconds: secondsStart,
			GroupID:      groupID,
		})
	}
	return collection, nil
}
