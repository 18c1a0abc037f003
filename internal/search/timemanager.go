package search

import "time"

// TimeManagerOptions mirrors time_manager.py's TimeManagerConfig: a linear
// allocation of tw * time + iw * increment, kept as a separate typed record
// from search.Options since a driver can reasonably want to retune time
// management without touching search heuristics.
type TimeManagerOptions struct {
	TimeWeight      float64 `yaml:"time_weight"`
	IncrementWeight float64 `yaml:"increment_weight"`
	// SafetyMargin is held back from remaining unconditionally (spec §4.8),
	// so a slow move (GC pause, a deep quiescence burst) doesn't run the
	// clock past zero even if Allocate's linear estimate is optimistic.
	SafetyMargin time.Duration `yaml:"safety_margin_ms"`
}

// DefaultTimeManagerOptions matches time_manager.py's defaults.
func DefaultTimeManagerOptions() TimeManagerOptions {
	return TimeManagerOptions{TimeWeight: 0.1, IncrementWeight: 0.01, SafetyMargin: 200 * time.Millisecond}
}

// minAllocation is the spec §4.8 lower clamp bound: never allocate less than
// 10ms, since a budget that small isn't enough to complete even depth 1.
const minAllocation = 10 * time.Millisecond

// TimeManager allocates a per-move time budget from the remaining clock
// time and increment (spec §4.8).
type TimeManager struct {
	opts TimeManagerOptions
}

// NewTimeManager builds a TimeManager from opts.
func NewTimeManager(opts TimeManagerOptions) *TimeManager {
	return &TimeManager{opts: opts}
}

// Allocate computes how long the next search should run for, given the
// time and increment remaining for the side to move. The formula is
// deliberately simple (spec §4.8's design note: "a linear budget is
// adequate; sudden-death time scrambles are Non-goals"): assuming a game of
// S seconds and spending TimeWeight of what's left every move, (1 -
// TimeWeight)^n * S trends to zero, so the clock is never fully consumed
// even without an explicit move-count estimate.
func (tm *TimeManager) Allocate(remaining, increment time.Duration) time.Duration {
	budgetSeconds := tm.opts.TimeWeight*remaining.Seconds() + tm.opts.IncrementWeight*increment.Seconds()
	if budgetSeconds < 0 {
		budgetSeconds = 0
	}
	budget := time.Duration(budgetSeconds * float64(time.Second))

	ceiling := remaining - tm.opts.SafetyMargin
	if ceiling < minAllocation {
		ceiling = minAllocation
	}
	if budget > ceiling {
		budget = ceiling
	}
	if budget < minAllocation {
		budget = minAllocation
	}
	return budget
}
