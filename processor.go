package traj2lanes

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ErrNoTrajectories Required trajectory collection is missing or empty
var ErrNoTrajectories = errors.New("trajectory collection is missing or empty")

// Processor Single batch run over one trajectory collection: sample, build
// lane polygons, index them, count every trajectory, scale and finalize.
type Processor struct {
	trajectories      *TrajectoryCollection
	intersections     *IntersectionCollection
	bufferDistance    float64
	simplifyTolerance float64
	junctionRadius    float64
	samplingStride    int
	timeWindows       []TimeWindow
	scalingEnabled    bool
	scalingFactor     int
	workers           int
	verbose           bool
}

// String returns pretty printed value for Processor
func (processor *Processor) String() string {
	windows := make([]string, 0, len(processor.timeWindows))
	for _, w := range processor.timeWindows {
		windows = append(windows, w.String())
	}
	return fmt.Sprintf(`
Trajectory counting parameters:
	trajectories: %d
	intersections: %d
	buffer_distance: %f
	simplify_tolerance: %f
	junction_radius: %f
	sampling_stride: %d
	time_windows: '%s'
	scaling enabled?: %t
	scaling_factor: %d
	workers: %d
	`,
		len(processor.trajectories.Trajectories),
		len(processor.junctionPoints()),
		processor.bufferDistance,
		processor.simplifyTolerance,
		processor.junctionRadius,
		processor.samplingStride,
		strings.Join(windows, ","),
		processor.scalingEnabled,
		processor.scalingFactor,
		processor.workers,
	)
}

func (processor *Processor) junctionPoints() []orb.Point {
	if processor.intersections == nil {
		return nil
	}
	return processor.intersections.Points
}

// NewProcessor returns processor for given trajectory collection with default
// parameters (those match a 20% sample of source data and peak windows 6-9
// and 16-19) unless overridden by options.
func NewProcessor(trajectories *TrajectoryCollection, options ...func(*Processor)) *Processor {
	processor := &Processor{
		trajectories:      trajectories,
		bufferDistance:    0.75,
		simplifyTolerance: 0.5,
		junctionRadius:    20.0,
		samplingStride:    6,
		timeWindows:       []TimeWindow{{6, 9}, {16, 19}},
		scalingEnabled:    true,
		scalingFactor:     5,
		workers:           runtime.NumCPU(),
	}
	for _, option := range options {
		option(processor)
	}
	return processor
}

// WithIntersections sets road-network junction points used to split the dissolved lane footprint
func WithIntersections(intersections *IntersectionCollection) func(*Processor) {
	return func(processor *Processor) {
		processor.intersections = intersections
	}
}

// WithBufferDistance sets lane buffer radius (CRS units)
func WithBufferDistance(bufferDistance float64) func(*Processor) {
	return func(processor *Processor) {
		processor.bufferDistance = bufferDistance
	}
}

// WithSimplifyTolerance sets geometry simplification tolerance (CRS units)
func WithSimplifyTolerance(simplifyTolerance float64) func(*Processor) {
	return func(processor *Processor) {
		processor.simplifyTolerance = simplifyTolerance
	}
}

// WithJunctionRadius sets the radius of the junction buffers cut out of the lane footprint
func WithJunctionRadius(junctionRadius float64) func(*Processor) {
	return func(processor *Processor) {
		processor.junctionRadius = junctionRadius
	}
}

// WithSamplingStride sets which fraction of in-window trajectories feeds lane construction (every k-th)
func WithSamplingStride(samplingStride int) func(*Processor) {
	return func(processor *Processor) {
		processor.samplingStride = samplingStride
	}
}

// WithTimeWindows sets peak-hour windows for the lane construction sample
func WithTimeWindows(timeWindows []TimeWindow) func(*Processor) {
	return func(processor *Processor) {
		processor.timeWindows = timeWindows
	}
}

// WithScaling enables or disables multiplying deduplicated counts by the scaling factor
func WithScaling(scalingEnabled bool) func(*Processor) {
	return func(processor *Processor) {
		processor.scalingEnabled = scalingEnabled
	}
}

// WithScalingFactor sets the sampling-correction multiplier
func WithScalingFactor(scalingFactor int) func(*Processor) {
	return func(processor *Processor) {
		processor.scalingFactor = scalingFactor
	}
}

// WithWorkers sets the number of counting workers
func WithWorkers(workers int) func(*Processor) {
	return func(processor *Processor) {
		processor.workers = workers
	}
}

// WithVerbose enables progress output
func WithVerbose(verbose bool) func(*Processor) {
	return func(processor *Processor) {
		processor.verbose = verbose
	}
}

// Run executes the whole pipeline and returns the finalized lane segments.
// Fatal input problems (empty collection, geographic CRS, empty sample) abort
// before any counting; no partial result is ever returned alongside an error.
func (processor *Processor) Run() ([]LaneSegment, RunStats, error) {
	if processor.trajectories == nil || len(processor.trajectories.Trajectories) == 0 {
		return nil, RunStats{}, ErrNoTrajectories
	}
	if processor.trajectories.CRS.Geographic {
		return nil, RunStats{}, errors.Wrapf(ErrGeographicCRS, "trajectories CRS is '%s'", processor.trajectories.CRS.Name)
	}
	if processor.intersections != nil && processor.intersections.CRS.Geographic {
		return nil, RunStats{}, errors.Wrapf(ErrGeographicCRS, "intersections CRS is '%s'", processor.intersections.CRS.Name)
	}

	if processor.verbose {
		fmt.Printf("Sample trajectories for lane building...")
	}
	st := time.Now()
	sampled, err := SampleTrajectories(processor.trajectories.Trajectories, processor.timeWindows, processor.samplingStride)
	if err != nil {
		return nil, RunStats{}, errors.Wrap(err, "Can't sample trajectories")
	}
	if processor.verbose {
		fmt.Printf("Done in %v (%d selected)\n", time.Since(st), len(sampled))
	}

	lanes, err := BuildLanes(sampled, processor.junctionPoints(), processor.bufferDistance, processor.simplifyTolerance, processor.junctionRadius, processor.verbose)
	if err != nil {
		return nil, RunStats{}, errors.Wrap(err, "Can't build lane polygons")
	}

	if processor.verbose {
		fmt.Printf("Count trajectories over %d lanes...\n", len(lanes))
	}
	index := newLaneIndex(lanes)
	acc, stats := countTrajectories(processor.trajectories.Trajectories, lanes, index, processor.workers, processor.verbose)
	stats.SampledForBuilding = len(sampled)

	finalizeLanes(lanes, acc, processor.scalingEnabled, processor.scalingFactor)
	return lanes, stats, nil
}
