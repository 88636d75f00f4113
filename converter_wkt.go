package traj2lanes

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// PrepareWKTPolygon returns WKT representation of Polygon
func PrepareWKTPolygon(p orb.Polygon) string {
	return wkt.MarshalString(p)
}
