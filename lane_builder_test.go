package traj2lanes

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func TestBuildLanesSingleCorridor(t *testing.T) {
	sampled := []Trajectory{
		{Geom: orb.LineString{{0, 0}, {100, 0}}, StartSeconds: 7 * 3600, GroupID: "a"},
	}
	lanes, err := BuildLanes(sampled, nil, 0.75, 0.5, 20.0, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(lanes) != 1 {
		t.Fatalf("Lane count must be %d, but got %d", 1, len(lanes))
	}
	if lanes[0].ID != "000001" {
		t.Errorf("Lane id must be '000001', but got '%s'", lanes[0].ID)
	}
	area := math.Abs(planar.Area(lanes[0].Geom))
	want := 100.0 * 2 * 0.75
	if math.Abs(area-want)/want > 0.05 {
		t.Errorf("Lane area must be close to %f, but got %f", want, area)
	}
	for hour := 0; hour < 24; hour++ {
		if lanes[0].HourlyCounts[hour] != 0 {
			t.Errorf("Fresh lane must have zero count for hour %d, but got %d", hour, lanes[0].HourlyCounts[hour])
		}
	}
}

func TestBuildLanesDissolve(t *testing.T) {
	// Two overlapping parallel passes over the same corridor merge into one lane
	sampled := []Trajectory{
		{Geom: orb.LineString{{0, 0}, {100, 0}}, GroupID: "a"},
		{Geom: orb.LineString{{0, 0.5}, {100, 0.5}}, GroupID: "b"},
	}
	lanes, err := BuildLanes(sampled, nil, 0.75, 0.5, 20.0, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(lanes) != 1 {
		t.Fatalf("Dissolved lane count must be %d, but got %d", 1, len(lanes))
	}
}

func TestBuildLanesSplitAtJunction(t *testing.T) {
	sampled := []Trajectory{
		{Geom: orb.LineString{{0, 0}, {100, 0}}, GroupID: "a"},
	}
	junctions := []orb.Point{{50, 0}}
	lanes, err := BuildLanes(sampled, junctions, 0.75, 0.5, 5.0, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(lanes) != 2 {
		t.Fatalf("Junction must split the corridor into %d lanes, but got %d", 2, len(lanes))
	}
	if lanes[0].ID != "000001" || lanes[1].ID != "000002" {
		t.Errorf("Lane ids must be sequential '000001','000002', but got '%s','%s'", lanes[0].ID, lanes[1].ID)
	}
	// The cut-out junction area must not belong to any lane
	for i := range lanes {
		if planar.PolygonContains(lanes[i].Geom, orb.Point{50, 0}) {
			t.Errorf("Junction center must be cut out of lane '%s'", lanes[i].ID)
		}
	}
}

func TestBuildLanesRejectsDisjointJunctions(t *testing.T) {
	// Junctions projected into an unrelated frame land nowhere near the lane
	// footprint; the split must fail loudly instead of silently not cutting
	sampled := []Trajectory{
		{Geom: orb.LineString{{457000, 5776000}, {457100, 5776000}}, GroupID: "a"},
	}
	junctions := []orb.Point{{0, 0}, {12, -7}}
	_, err := BuildLanes(sampled, junctions, 0.75, 0.5, 20.0, false)
	if err == nil {
		t.Fatalf("Junctions outside the lane footprint must abort the build")
	}
}

func TestBuildLanesKeepsOutOfAreaJunctions(t *testing.T) {
	// A junction outside the study area is fine as long as at least one
	// junction touches the footprint (extracts are often larger than the area)
	sampled := []Trajectory{
		{Geom: orb.LineString{{0, 0}, {100, 0}}, GroupID: "a"},
	}
	junctions := []orb.Point{{50, 0}, {5000, 5000}}
	lanes, err := BuildLanes(sampled, junctions, 0.75, 0.5, 5.0, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(lanes) != 2 {
		t.Errorf("In-area junction must still split the corridor into %d lanes, but got %d", 2, len(lanes))
	}
}

func TestBuildLanesEmptySample(t *testing.T) {
	if _, err := BuildLanes(nil, nil, 0.75, 0.5, 20.0, false); err != ErrEmptySample {
		t.Errorf("Error must be ErrEmptySample, but got %v", err)
	}
}

func TestBuildLanesDegenerateOnly(t *testing.T) {
	sampled := []Trajectory{
		{Geom: orb.LineString{{1, 1}}, GroupID: "a"},
	}
	if _, err := BuildLanes(sampled, nil, 0.75, 0.5, 20.0, false); err == nil {
		t.Errorf("Sample without bufferable geometries must be rejected")
	}
}
