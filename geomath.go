package traj2lanes

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	earthRadius = 6370.986884258304
	pi180       = math.Pi / 180.0
)

// cross returns z-component of cross product (q-p) x (r-p).
// Positive when r lies to the left of the directed segment p->q.
func cross(p, q, r orb.Point) float64 {
	return (q[0]-p[0])*(r[1]-p[1]) - (q[1]-p[1])*(r[0]-p[0])
}

// onSegment reports whether point r (known to be collinear with p-q) lies within the bounding interval of p-q
func onSegment(p, q, r orb.Point) bool {
	return math.Min(p[0], q[0]) <= r[0] && r[0] <= math.Max(p[0], q[0]) &&
		math.Min(p[1], q[1]) <= r[1] && r[1] <= math.Max(p[1], q[1])
}

// segmentsIntersect reports whether segments p1-p2 and p3-p4 share at least one point.
// Touching endpoints and collinear overlaps count as intersections.
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

// Check if two segments intersects and returns intersections Point
// p1, p2 - first segment
// p3, p4 - second segment
// Note: Euclidean space
func intersect(p1, p2, p3, p4 orb.Point) (orb.Point, error) {
	// Calculate the coefficients of the linear equations
	a1 := p2[1] - p1[1]
	b1 := p1[0] - p2[0]
	c1 := a1*p1[0] + b1*p1[1]
	a2 := p4[1] - p3[1]
	b2 := p3[0] - p4[0]
	c2 := a2*p3[0] + b2*p3[1]

	// Calculate the determinant
	det := a1*b2 - a2*b1
	if det == 0 {
		return orb.Point{}, fmt.Errorf("The lines are parallel")
	}

	// Calculate the intersection point
	x := (b2*c1 - b1*c2) / det
	y := (a1*c2 - a2*c1) / det
	return orb.Point{x, y}, nil
}

// dropRepeatedPoints removes consecutive duplicate vertices to keep offset math stable
func dropRepeatedPoints(line orb.LineString) orb.LineString {
	if len(line) < 2 {
		return line
	}
	cleaned := orb.LineString{line[0]}
	for i := 1; i < len(line); i++ {
		prev := cleaned[len(cleaned)-1]
		if line[i][0] == prev[0] && line[i][1] == prev[1] {
			continue
		}
		cleaned = append(cleaned, line[i])
	}
	return cleaned
}

func offsetCurve(line orb.LineString, distance float64) orb.LineString {
	// Initialize result list and segment list
	var result orb.LineString
	var segments [][2]orb.Point

	// Iterate over line segments and calculate offset segments
	for i := 1; i < len(line); i++ {
		// Get current and previous points
		p1 := line[i-1]
		p2 := line[i]

		// Calculate the vector between the points
		vec := [2]float64{p2[0] - p1[0], p2[1] - p1[1]}

		// Normalize the vector
		vecLen := math.Sqrt(vec[0]*vec[0] + vec[1]*vec[1])
		vec = [2]float64{vec[0] / vecLen, vec[1] / vecLen}

		// Rotate the vector by 90 degrees
		rotated := [2]float64{-vec[1], vec[0]}

		// Scale the rotated vector by the distance
		offset := [2]float64{rotated[0] * distance, rotated[1] * distance}

		// Calculate the offset points
		op1 := [2]float64{p1[0] + offset[0], p1[1] + offset[1]}
		op2 := [2]float64{p2[0] + offset[0], p2[1] + offset[1]}

		// Add the offset segment to the list of segments
		segments = append(segments, [2]orb.Point{op1, op2})
	}

	result = append(result, segments[0][0])
	// Iterate over the segments and calculate the intersections
	for i := 1; i < len(segments); i++ {
		// Get the current and previous segments
		seg1 := segments[i-1]
		seg2 := segments[i]
		// Calculate the intersection point
		intersection, err := intersect(seg1[0], seg1[1], seg2[0], seg2[1])
		if err != nil {
			continue
		}
		// If there is an intersection, add the intersection and the current segment to the result
		result = append(result, intersection)
	}
	result = append(result, segments[len(segments)-1][1])
	return result
}

// bufferLine builds a flat-capped buffer polygon around a polyline: both sides
// are offset by the given distance and joined into a single closed ring.
// Returns nil for degenerate (shorter than one segment) polylines.
func bufferLine(line orb.LineString, distance float64) orb.Polygon {
	cleaned := dropRepeatedPoints(line)
	if len(cleaned) < 2 || distance <= 0 {
		return nil
	}
	left := offsetCurve(cleaned, distance)
	right := offsetCurve(cleaned, -distance)

	ring := make(orb.Ring, 0, len(left)+len(right)+1)
	ring = append(ring, left...)
	for i := len(right) - 1; i >= 0; i-- {
		ring = append(ring, right[i])
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// bufferPoint builds a circular buffer polygon (regular n-gon) around a point
func bufferPoint(pt orb.Point, radius float64, segments int) orb.Polygon {
	if segments < 3 {
		segments = 32
	}
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{
			pt[0] + radius*math.Cos(angle),
			pt[1] + radius*math.Sin(angle),
		})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// lineIntersectsPolygon reports whether a polyline shares at least one point
// with a polygon: either a vertex lies inside (holes respected) or any
// polyline segment crosses or touches any ring edge.
func lineIntersectsPolygon(line orb.LineString, poly orb.Polygon) bool {
	if len(line) == 0 || len(poly) == 0 {
		return false
	}
	for _, pt := range line {
		if planar.PolygonContains(poly, pt) {
			return true
		}
	}
	for i := 1; i < len(line); i++ {
		for _, ring := range poly {
			for j := 1; j < len(ring); j++ {
				if segmentsIntersect(line[i-1], line[i], ring[j-1], ring[j]) {
					return true
				}
			}
		}
	}
	return false
}
