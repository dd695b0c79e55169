package core

// PoolStats is a point-in-time snapshot of scheduler-wide queue occupancy,
// for dashboards and tests that prefer polling over push-style
// counters/histograms — adapted from the teacher's PoolStats/RunnerStats
// pair, trimmed to this scheduler's actual state.
type PoolStats struct {
	Workers     int
	SharedDepth int
	LocalDepths []int
	Terminating bool
}

// Stats returns a snapshot of the scheduler's current queue depths.
func (s *Scheduler) Stats() PoolStats {
	depths := make([]int, len(s.workers))
	for i, w := range s.workers {
		depths[i] = w.local.Len()
	}
	return PoolStats{
		Workers:     len(s.workers),
		SharedDepth: s.shared.Len(),
		LocalDepths: depths,
		Terminating: s.terminating.Load(),
	}
}
