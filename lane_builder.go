package traj2lanes

import (
	"fmt"
	"math"
	"time"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	"github.com/pkg/errors"
)

// ErrGeographicCRS Input geometries are in angular units, buffer distances are meaningless
var ErrGeographicCRS = errors.New("input layers must be in a metric CRS (e.g. UTM), not a geographic one")

// footprintBound returns the bounding box of a multipolygon coordinate set
func footprintBound(g [][][][]float64) orb.Bound {
	b := orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
	for _, poly := range g {
		for _, ring := range poly {
			for _, c := range ring {
				b.Min[0] = math.Min(b.Min[0], c[0])
				b.Min[1] = math.Min(b.Min[1], c[1])
				b.Max[0] = math.Max(b.Max[0], c[0])
				b.Max[1] = math.Max(b.Max[1], c[1])
			}
		}
	}
	return b
}

// diskTouchesBound reports whether a disk of the given radius around the center overlaps the bounding box
func diskTouchesBound(b orb.Bound, center orb.Point, radius float64) bool {
	return center[0]+radius >= b.Min[0] && center[0]-radius <= b.Max[0] &&
		center[1]+radius >= b.Min[1] && center[1]-radius <= b.Max[1]
}

// polyToGeom converts a single polygon to the multipolygon coordinate form used by boolean operations
func polyToGeom(p orb.Polygon) [][][][]float64 {
	poly := make([][][]float64, 0, len(p))
	for _, ring := range p {
		coords := make([][]float64, 0, len(ring))
		for _, pt := range ring {
			coords = append(coords, []float64{pt[0], pt[1]})
		}
		poly = append(poly, coords)
	}
	return [][][][]float64{poly}
}

// geomToPolys converts a multipolygon coordinate form back to polygons, dropping degenerate rings
func geomToPolys(g [][][][]float64) []orb.Polygon {
	polys := make([]orb.Polygon, 0, len(g))
	for _, poly := range g {
		out := orb.Polygon{}
		for _, ring := range poly {
			if len(ring) < 4 {
				continue
			}
			r := make(orb.Ring, 0, len(ring))
			for _, c := range ring {
				r = append(r, orb.Point{c[0], c[1]})
			}
			if !r.Closed() {
				r = append(r, r[0])
			}
			out = append(out, r)
		}
		if len(out) == 0 || len(out[0]) < 4 {
			continue
		}
		polys = append(polys, out)
	}
	return polys
}

// BuildLanes derives the finite set of lane segment polygons from the sampled
// trajectories. Each sampled polyline is buffered with a flat cap, the buffers
// are simplified to bound vertex count, dissolved into a single union
// footprint, and finally cut apart at the supplied road-network junction
// points (each junction is buffered by junctionRadius and subtracted, breaking
// the footprint into per-lane polygons). The subtracted junction disks are
// not part of any lane: a crossing that happens only inside a junction area is
// attributed to no lane segment. Junction points must be in the same CRS frame
// as the trajectories; if none of the junction buffers overlaps the lane
// footprint the run is aborted instead of silently skipping the split.
// Segment identifiers are assigned sequentially in encounter order.
func BuildLanes(sampled []Trajectory, junctions []orb.Point, bufferDist, simplifyTolerance, junctionRadius float64, verbose bool) ([]LaneSegment, error) {
	if len(sampled) == 0 {
		return nil, ErrEmptySample
	}

	if verbose {
		fmt.Printf("Buffer %d sampled trajectories...", len(sampled))
	}
	st := time.Now()
	simplifier := simplify.DouglasPeucker(simplifyTolerance)
	buffered := make([]orb.Polygon, 0, len(sampled))
	for _, traj := range sampled {
		poly := bufferLine(traj.Geom, bufferDist)
		if poly == nil {
			if verbose {
				fmt.Printf("\n\t[WARNING]: Can't buffer degenerate trajectory geometry. Group ID: '%s'\n", traj.GroupID)
			}
			continue
		}
		simplified, ok := simplifier.Simplify(poly.Clone()).(orb.Polygon)
		if !ok || len(simplified) == 0 || len(simplified[0]) < 4 {
			// Tolerance collapsed the buffer, fall back to the unsimplified one
			simplified = poly
		}
		buffered = append(buffered, simplified)
	}
	if len(buffered) == 0 {
		return nil, errors.New("none of the sampled trajectories produced a bufferable geometry")
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if verbose {
		fmt.Printf("Dissolve %d lane buffers...", len(buffered))
	}
	st = time.Now()
	dissolved := polyToGeom(buffered[0])
	for _, p := range buffered[1:] {
		var err error
		dissolved, err = polygol.Union(dissolved, polyToGeom(p))
		if err != nil {
			return nil, errors.Wrap(err, "Can't dissolve lane buffers")
		}
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if len(junctions) > 0 {
		footprint := footprintBound(dissolved)
		touching := false
		for _, junction := range junctions {
			if diskTouchesBound(footprint, junction, junctionRadius) {
				touching = true
				break
			}
		}
		if !touching {
			return nil, errors.New("none of the junction buffers overlaps the lane footprint, trajectories and intersections are probably in different CRS frames")
		}
		if verbose {
			fmt.Printf("Split lanes at %d junctions...", len(junctions))
		}
		st = time.Now()
		for _, junction := range junctions {
			var err error
			dissolved, err = polygol.Difference(dissolved, polyToGeom(bufferPoint(junction, junctionRadius, 32)))
			if err != nil {
				return nil, errors.Wrap(err, "Can't split lanes at junctions")
			}
		}
		if verbose {
			fmt.Printf("Done in %v\n", time.Since(st))
		}
	}

	lanes := []LaneSegment{}
	for _, poly := range geomToPolys(dissolved) {
		lanes = append(lanes, LaneSegment{
			ID:   formatLaneID(len(lanes)),
			Geom: poly,
		})
	}
	if len(lanes) == 0 {
		return nil, errors.New("lane building produced no polygons")
	}
	return lanes, nil
}
