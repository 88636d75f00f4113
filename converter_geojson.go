package traj2lanes

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
)

func polygonCoordinates(p orb.Polygon) [][][]float64 {
	coords := make([][][]float64, 0, len(p))
	for _, ring := range p {
		ringCoords := make([][]float64, 0, len(ring))
		for _, pt := range ring {
			ringCoords = append(ringCoords, []float64{pt[0], pt[1]})
		}
		coords = append(coords, ringCoords)
	}
	return coords
}

// PrepareGeoJSONPolygon returns GeoJSON representation of Polygon
func PrepareGeoJSONPolygon(p orb.Polygon) string {
	b, err := geojson.NewPolygonGeometry(polygonCoordinates(p)).MarshalJSON()
	if err != nil {
		fmt.Printf("Warning. Can not convert geometry to geojson format: %s", err.Error())
		return ""
	}
	return string(b)
}

// LanesToGeoJSON returns GeoJSON feature collection for finalized lane
// segments: ENVIID, the 24 hourly counters h_0..h_23 and total_cnt.
func LanesToGeoJSON(lanes []LaneSegment) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for i := range lanes {
		feature := geojson.NewPolygonFeature(polygonCoordinates(lanes[i].Geom))
		feature.SetProperty("ENVIID", lanes[i].ID)
		for hour := 0; hour < 24; hour++ {
			feature.SetProperty(fmt.Sprintf("h_%d", hour), lanes[i].HourlyCounts[hour])
		}
		feature.SetProperty("total_cnt", lanes[i].TotalCount)
		fc.AddFeature(feature)
	}
	return fc.MarshalJSON()
}
