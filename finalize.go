package traj2lanes

// finalizeLanes collapses the accumulated group sets into the per-lane hourly
// counters, applying the sampling-correction factor when enabled. The daily
// total is the cardinality of the union of the 24 raw (unscaled) hour sets:
// a trip crossing the same lane in two different hours adds one unit to each
// hour but only one to the total, so the total is not the sum of the hours.
func finalizeLanes(lanes []LaneSegment, acc hourAccumulator, scalingEnabled bool, scalingFactor int) {
	for i := range lanes {
		daily := groupSet{}
		for hour := 0; hour < 24; hour++ {
			groups := acc[cellKey{lane: i, hour: hour}]
			count := len(groups)
			if scalingEnabled {
				count *= scalingFactor
			}
			lanes[i].HourlyCounts[hour] = count
			for groupID := range groups {
				daily[groupID] = struct{}{}
			}
		}
		total := len(daily)
		if scalingEnabled {
			total *= scalingFactor
		}
		lanes[i].TotalCount = total
	}
}
