package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lanemetrics/traj2lanes"
	"github.com/paulmach/orb"
)

var (
	trajFileName  = flag.String("trajectories", "trajectories.geojson", "Filename of GeoJSON file with trajectory LineStrings (every feature needs 'seconds_start' and 'group_id' properties)")
	interFileName = flag.String("intersections", "", "Filename of *.osm.pbf / *.osm roads extract used to derive junctions. Leave empty to skip splitting at junctions")
	originStr     = flag.String("origin", "", "Reference origin 'lon,lat' the trajectory layer was projected around; junctions from the OSM extract are projected into the same frame. Required with -intersections")
	out           = flag.String("out", "trajectory_counts", "Base name of output files. E.g.: if base name is 'counts' then 'counts.geojson' and 'counts.csv' will be produced (a numeric suffix is added when a file already exists)")
	geomFormat    = flag.String("geomf", "wkt", "Format of geometry column in CSV output. Expected values: wkt / geojson")
	crsName       = flag.String("crs", "metric", "Name of the (projected) CRS the trajectories are in. Informational")
	geographic    = flag.Bool("geographic", false, "Declare the trajectory CRS as geographic (the run will be rejected, buffer distances need metric units)")
	bufferDist    = flag.Float64("buffer", 0.75, "Lane buffer radius in CRS units")
	simplifyTol   = flag.Float64("simplify", 0.5, "Simplify geometries tolerance in CRS units")
	junctionRad   = flag.Float64("jradius", 20.0, "Radius of junction buffers cut out of the lane footprint")
	stride        = flag.Int("stride", 6, "Every x-th trajectory within the time windows is selected for lane buffer creation")
	windowsStr    = flag.String("windows", "6-9,16-19", "Peak-hour windows for the lane construction sample (separated by commas)")
	scale         = flag.Bool("scale", true, "Multiply counts by the scaling factor?")
	factor        = flag.Int("factor", 5, "Scaling factor (5 for 20% sample data)")
	workers       = flag.Int("workers", 0, "Number of counting workers (0 = number of CPUs)")
	verbose       = flag.Bool("verbose", true, "Print progress")
)

func parseWindows(s string) ([]traj2lanes.TimeWindow, error) {
	windows := []traj2lanes.TimeWindow{}
	for _, part := range strings.Split(s, ",") {
		bounds := strings.Split(strings.TrimSpace(part), "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("bad time window '%s', expected 'start-end'", part)
		}
		start, err := strconv.Atoi(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("bad start hour in window '%s'", part)
		}
		end, err := strconv.Atoi(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("bad end hour in window '%s'", part)
		}
		windows = append(windows, traj2lanes.TimeWindow{StartHour: start, EndHour: end})
	}
	return windows, nil
}

func parseOrigin(s string) (orb.Point, error) {
	if s == "" {
		return orb.Point{}, fmt.Errorf("-origin 'lon,lat' is required when -intersections is set, use the reference the trajectory layer was projected around")
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("bad origin '%s', expected 'lon,lat'", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("bad longitude in origin '%s'", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("bad latitude in origin '%s'", s)
	}
	return orb.Point{lon, lat}, nil
}

// uniqueFilepath appends a counter to the base name until the path is free
func uniqueFilepath(basename, extension string) string {
	fname := fmt.Sprintf("%s.%s", basename, extension)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(fname); os.IsNotExist(err) {
			return fname
		}
		fname = fmt.Sprintf("%s_%d.%s", basename, counter, extension)
	}
}

func writeCSV(fname string, lanes []traj2lanes.LaneSegment, geomf string) error {
	file, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	header := []string{"ENVIID"}
	for hour := 0; hour < 24; hour++ {
		header = append(header, fmt.Sprintf("h_%d", hour))
	}
	header = append(header, "total_cnt", "geom")
	if err := writer.Write(header); err != nil {
		return err
	}
	for i := range lanes {
		record := []string{lanes[i].ID}
		for hour := 0; hour < 24; hour++ {
			record = append(record, strconv.Itoa(lanes[i].HourlyCounts[hour]))
		}
		record = append(record, strconv.Itoa(lanes[i].TotalCount))
		if geomf == "geojson" {
			record = append(record, traj2lanes.PrepareGeoJSONPolygon(lanes[i].Geom))
		} else {
			record = append(record, traj2lanes.PrepareWKTPolygon(lanes[i].Geom))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func main() {

	flag.Parse()

	windows, err := parseWindows(*windowsStr)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*trajFileName)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	collection, err := traj2lanes.TrajectoriesFromGeoJSON(data, traj2lanes.CRS{Name: *crsName, Geographic: *geographic})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var intersections *traj2lanes.IntersectionCollection
	if *interFileName != "" {
		origin, err := parseOrigin(*originStr)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		intersections, err = traj2lanes.IntersectionsFromOSMFile(
			*interFileName,
			traj2lanes.CRS{Name: *crsName},
			traj2lanes.Equirectangular(origin),
			*verbose,
		)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	options := []func(*traj2lanes.Processor){
		traj2lanes.WithIntersections(intersections),
		traj2lanes.WithBufferDistance(*bufferDist),
		traj2lanes.WithSimplifyTolerance(*simplifyTol),
		traj2lanes.WithJunctionRadius(*junctionRad),
		traj2lanes.WithSamplingStride(*stride),
		traj2lanes.WithTimeWindows(windows),
		traj2lanes.WithScaling(*scale),
		traj2lanes.WithScalingFactor(*factor),
		traj2lanes.WithVerbose(*verbose),
	}
	if *workers > 0 {
		options = append(options, traj2lanes.WithWorkers(*workers))
	}
	processor := traj2lanes.NewProcessor(collection, options...)
	if *verbose {
		fmt.Println(processor)
	}

	lanes, stats, err := processor.Run()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Println(stats)
	}

	geojsonName := uniqueFilepath(*out, "geojson")
	geojsonData, err := traj2lanes.LanesToGeoJSON(lanes)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := os.WriteFile(geojsonName, geojsonData, 0644); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	csvName := uniqueFilepath(*out, "csv")
	if err := writeCSV(csvName, lanes, *geomFormat); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Printf("Created:\n%s\n%s\n", geojsonName, csvName)
}
