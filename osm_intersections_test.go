package traj2lanes

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

func TestJunctionNodes(t *testing.T) {
	ways := []roadWay{
		{id: 1, name: "Main Street", nodes: []osm.NodeID{1, 2, 3}},
		{id: 2, name: "Oak Avenue", nodes: []osm.NodeID{3, 4, 5}},
		{id: 3, name: "Main Street", nodes: []osm.NodeID{5, 6}},
	}
	junctions := junctionNodes(ways)
	// Node 3 is shared by two different roads, node 5 as well; nodes within one
	// road (or two legs of the same named road) are not junctions
	if len(junctions) != 2 {
		t.Fatalf("Junction count must be %d, but got %v", 2, junctions)
	}
	if junctions[0] != 3 || junctions[1] != 5 {
		t.Errorf("Junctions must be [3 5], but got %v", junctions)
	}
}

func TestJunctionNodesSameRoad(t *testing.T) {
	ways := []roadWay{
		{id: 1, name: "Ring Road", nodes: []osm.NodeID{1, 2, 3}},
		{id: 2, name: "Ring Road", nodes: []osm.NodeID{3, 4, 1}},
	}
	if junctions := junctionNodes(ways); len(junctions) != 0 {
		t.Errorf("Legs of one named road must not form junctions, but got %v", junctions)
	}
}

func TestJunctionNodesUnnamed(t *testing.T) {
	// Unnamed ways get synthetic per-way names inside readRoadNetwork; emulate that here
	ways := []roadWay{
		{id: 1, name: "way:1", nodes: []osm.NodeID{1, 2}},
		{id: 2, name: "way:2", nodes: []osm.NodeID{2, 3}},
	}
	junctions := junctionNodes(ways)
	if len(junctions) != 1 || junctions[0] != 2 {
		t.Errorf("Two unnamed ways sharing a node must form one junction, but got %v", junctions)
	}
}

func TestEquirectangular(t *testing.T) {
	// Two points 0.001 degrees of longitude apart on the equator are ~111 m apart
	project := Equirectangular(orb.Point{10, 0})
	a := project(orb.Point{10, 0})
	b := project(orb.Point{10.001, 0})
	if math.Abs(a[0]) > 1e-9 || math.Abs(a[1]) > 1e-9 {
		t.Errorf("Origin must project to (0,0), but got %v", a)
	}
	dx := b[0] - a[0]
	want := earthRadius * 1000.0 * pi180 * 0.001
	if math.Abs(dx-want) > 0.01 {
		t.Errorf("Projected longitude span must be %f m, but got %f m", want, dx)
	}
}

func TestEquirectangularSharedFrame(t *testing.T) {
	// Two layers projected with the same anchor land in one frame: the same
	// lon/lat maps to the same metric point
	project := Equirectangular(orb.Point{13.4, 52.5})
	first := project(orb.Point{13.41, 52.51})
	second := project(orb.Point{13.41, 52.51})
	if first != second {
		t.Errorf("Projection must be deterministic, got %v and %v", first, second)
	}
}

func TestIntersectionsRequireProjection(t *testing.T) {
	// OSM extracts are WGS84, feeding them to a metric pipeline without a
	// projection must be rejected up front
	if _, err := IntersectionsFromOSMFile("whatever.pbf", CRS{Name: "EPSG:32633"}, nil, false); err == nil {
		t.Errorf("Missing projection must be rejected")
	}
}
