package traj2lanes

import (
	"fmt"

	"github.com/pkg/errors"
)

// TimeWindow Half-open hour range [StartHour, EndHour) used for peak-hour sampling
type TimeWindow struct {
	StartHour int
	EndHour   int
}

// String returns pretty printed value for TimeWindow
func (w TimeWindow) String() string {
	return fmt.Sprintf("%d-%d", w.StartHour, w.EndHour)
}

func (w TimeWindow) contains(startSeconds int) bool {
	return startSeconds >= w.StartHour*3600 && startSeconds < w.EndHour*3600
}

func inAnyWindow(startSeconds int, windows []TimeWindow) bool {
	for _, w := range windows {
		if w.contains(startSeconds) {
			return true
		}
	}
	return false
}

// ErrEmptySample No trajectory matched the sampling predicate. Distinct from
// configuration errors so callers can tell "no data in peak windows" apart from
// a misconfigured run.
var ErrEmptySample = errors.New("no trajectories matched the sampling windows")

// SampleTrajectories selects the subset used for lane geometry construction:
// trajectories starting inside any of the given time windows, thinned to every
// stride-th one (0-based positional modulo). Peak-hour traffic is assumed to
// exercise nearly every real lane, so a small fraction keeps the dissolve stage
// tractable without losing coverage.
func SampleTrajectories(trajectories []Trajectory, windows []TimeWindow, stride int) ([]Trajectory, error) {
	if stride <= 0 {
		return nil, errors.Errorf("sampling stride must be positive, got %d", stride)
	}
	if len(windows) == 0 {
		return nil, errors.New("at least one time window is required")
	}
	sampled := []Trajectory{}
	for i, traj := range trajectories {
		if i%stride != 0 {
			continue
		}
		if !inAnyWindow(traj.StartSeconds, windows) {
			continue
		}
		sampled = append(sampled, traj)
	}
	if len(sampled) == 0 {
		return nil, ErrEmptySample
	}
	return sampled, nil
}
