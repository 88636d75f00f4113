package traj2lanes

import (
	"testing"

	"github.com/paulmach/orb"
)

func squareLane(n int, minX, minY, maxX, maxY float64) LaneSegment {
	return LaneSegment{
		ID: formatLaneID(n),
		Geom: orb.Polygon{orb.Ring{
			{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
		}},
	}
}

func TestLaneIndexQuery(t *testing.T) {
	lanes := []LaneSegment{
		squareLane(0, 0, 0, 10, 10),
		squareLane(1, 20, 0, 30, 10),
		squareLane(2, 40, 0, 50, 10),
	}
	index := newLaneIndex(lanes)

	candidates := index.query(orb.Bound{Min: orb.Point{19, 1}, Max: orb.Point{31, 9}})
	if len(candidates) != 1 || candidates[0] != 1 {
		t.Errorf("Candidates must be [1], but got %v", candidates)
	}

	all := index.query(orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{51, 11}})
	if len(all) != 3 {
		t.Errorf("Candidates must cover all %d lanes, but got %v", 3, all)
	}

	none := index.query(orb.Bound{Min: orb.Point{100, 100}, Max: orb.Point{110, 110}})
	if len(none) != 0 {
		t.Errorf("Candidates must be empty, but got %v", none)
	}
}

func TestLaneIndexIdempotentQuery(t *testing.T) {
	lanes := []LaneSegment{
		squareLane(0, 0, 0, 10, 10),
		squareLane(1, 5, 5, 15, 15),
		squareLane(2, 20, 20, 30, 30),
	}
	index := newLaneIndex(lanes)
	b := orb.Bound{Min: orb.Point{4, 4}, Max: orb.Point{12, 12}}

	first := index.query(b)
	second := index.query(b)
	if len(first) != len(second) {
		t.Fatalf("Repeated query must return the same candidate count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Repeated query must return identical candidates, position %d differs: %d vs %d", i, first[i], second[i])
		}
	}
}
