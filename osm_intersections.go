package traj2lanes

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

// OSMScanner Unified interface for both XML and PBF scanners
type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// junctionRoadClasses Road classes considered when deriving junctions.
// Matches the classes a lane-level trajectory survey covers; footways,
// motorways and service roads are left out.
var junctionRoadClasses = map[string]struct{}{
	"primary":        {},
	"secondary":      {},
	"tertiary":       {},
	"secondary_link": {},
	"residential":    {},
	"living_street":  {},
}

// roadWay Minimal way representation needed for junction detection
type roadWay struct {
	id    osm.WayID
	name  string
	nodes []osm.NodeID
}

func newScanner(filename string, file *os.File) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(context.Background(), file), nil
	case ".pbf":
		return osmpbf.New(context.Background(), file, 4), nil
	}
	return nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
}

// readRoadNetwork extracts the allowed road-class ways and the coordinates of their nodes
func readRoadNetwork(filename string, verbose bool) ([]roadWay, map[osm.NodeID]orb.Point, error) {
	if verbose {
		fmt.Printf("Opening file: '%s'...\n", filename)
	}

	/* Process ways */
	if verbose {
		fmt.Printf("\tProcessing ways... ")
	}
	st := time.Now()
	ways := []roadWay{}
	nodesSeen := make(map[osm.NodeID]struct{})
	{
		file, err := os.Open(filename)
		if err != nil {
			return nil, nil, err
		}
		scannerWays, err := newScanner(filename, file)
		if err != nil {
			file.Close()
			return nil, nil, err
		}
		for scannerWays.Scan() {
			obj := scannerWays.Object()
			if obj.ObjectID().Type() != "way" {
				continue
			}
			way := obj.(*osm.Way)
			highway := way.Tags.Find("highway")
			if _, ok := junctionRoadClasses[highway]; !ok {
				continue
			}
			name := way.Tags.Find("name")
			if name == "" {
				// Unnamed roads can't be dissolved together, each one stays its own road
				name = fmt.Sprintf("way:%d", way.ID)
			}
			prepared := roadWay{
				id:    way.ID,
				name:  name,
				nodes: make([]osm.NodeID, 0, len(way.Nodes)),
			}
			for _, node := range way.Nodes {
				prepared.nodes = append(prepared.nodes, node.ID)
				nodesSeen[node.ID] = struct{}{}
			}
			ways = append(ways, prepared)
		}
		scannerWays.Close()
		if err := scannerWays.Err(); err != nil {
			file.Close()
			return nil, nil, err
		}
		file.Close()
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	/* Process nodes */
	if verbose {
		fmt.Printf("\tProcessing nodes... ")
	}
	st = time.Now()
	nodes := make(map[osm.NodeID]orb.Point, len(nodesSeen))
	{
		file, err := os.Open(filename)
		if err != nil {
			return nil, nil, err
		}
		scannerNodes, err := newScanner(filename, file)
		if err != nil {
			file.Close()
			return nil, nil, err
		}
		for scannerNodes.Scan() {
			obj := scannerNodes.Object()
			if obj.ObjectID().Type() != "node" {
				continue
			}
			node := obj.(*osm.Node)
			if _, ok := nodesSeen[node.ID]; !ok {
				continue
			}
			nodes[node.ID] = orb.Point{node.Lon, node.Lat}
		}
		scannerNodes.Close()
		if err := scannerNodes.Err(); err != nil {
			file.Close()
			return nil, nil, err
		}
		file.Close()
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}
	return ways, nodes, nil
}

// junctionNodes returns nodes shared by at least two differently named roads,
// sorted by node id for deterministic downstream splitting
func junctionNodes(ways []roadWay) []osm.NodeID {
	roadsPerNode := make(map[osm.NodeID]map[string]struct{})
	for _, way := range ways {
		for _, nodeID := range way.nodes {
			roads, ok := roadsPerNode[nodeID]
			if !ok {
				roads = make(map[string]struct{})
				roadsPerNode[nodeID] = roads
			}
			roads[way.name] = struct{}{}
		}
	}
	junctions := []osm.NodeID{}
	for nodeID, roads := range roadsPerNode {
		if len(roads) >= 2 {
			junctions = append(junctions, nodeID)
		}
	}
	sort.Slice(junctions, func(i, j int) bool { return junctions[i] < junctions[j] })
	return junctions
}

// Projection maps WGS84 longitude/latitude to the metric frame the trajectory
// layer was exported in
type Projection func(pt orb.Point) orb.Point

// Equirectangular returns a projection anchored at the given lon/lat origin.
// Anchor it at the same reference the trajectory layer was projected with,
// otherwise junctions and trajectories end up in unrelated frames and the
// junction split can't touch the lane footprint. Good enough over a study
// area of a few kilometers.
func Equirectangular(origin orb.Point) Projection {
	metersPerDegree := earthRadius * 1000.0 * pi180
	cosLat := math.Cos(origin[1] * pi180)
	return func(pt orb.Point) orb.Point {
		return orb.Point{
			(pt[0] - origin[0]) * metersPerDegree * cosLat,
			(pt[1] - origin[1]) * metersPerDegree,
		}
	}
}

// IntersectionsFromOSMFile derives road-network junction points from an OSM
// extract (*.pbf or *.osm): ways of the allowed road classes are scanned, a
// node used by two differently named roads is a junction. OSM coordinates are
// WGS84 lon/lat, so a projection into the trajectory frame is required; the
// returned collection carries the target CRS and is meant to be fed to the
// lane builder through WithIntersections.
func IntersectionsFromOSMFile(filename string, crs CRS, project Projection, verbose bool) (*IntersectionCollection, error) {
	if project == nil {
		return nil, errors.New("a projection into the trajectory CRS frame is required")
	}
	ways, nodes, err := readRoadNetwork(filename, verbose)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read road network")
	}
	if len(ways) == 0 {
		return nil, errors.Errorf("no ways of allowed road classes found in '%s'", filename)
	}
	junctionIDs := junctionNodes(ways)
	points := make([]orb.Point, 0, len(junctionIDs))
	for _, nodeID := range junctionIDs {
		pt, ok := nodes[nodeID]
		if !ok {
			if verbose {
				fmt.Printf("\t[WARNING]: Junction node has no coordinates. Node ID: '%d'\n", nodeID)
			}
			continue
		}
		points = append(points, project(pt))
	}
	if verbose {
		fmt.Printf("Found %d junctions among %d ways\n", len(points), len(ways))
	}
	return &IntersectionCollection{CRS: crs, Points: points}, nil
}
