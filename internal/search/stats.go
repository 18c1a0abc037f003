package search

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Stats accumulates counters for one iterative-deepening depth of a search
// call (spec §4's "search statistics" component; Search resets it before
// each depth), trimmed down from the teacher's SearchStatsT to the counters
// spec §4.7's iterative-deepening log line and UCI "info" output actually
// need. All fields are atomics, so a Stats value is safe to share between
// goroutines; Lazy SMP (spec §4.9) still gives each worker its own.
type Stats struct {
	Nodes       atomic.Uint64
	QNodes      atomic.Uint64
	TTHits      atomic.Uint64
	TTCutoffs   atomic.Uint64
	NullMoveCuts atomic.Uint64
	FutilityPrunes atomic.Uint64
	BetaCutoffs atomic.Uint64
	FirstMoveCutoffs atomic.Uint64
}

// Reset zeroes every counter, called at the start of each iterative
// deepening depth the way the Python Statistics.reset does.
func (s *Stats) Reset() {
	s.Nodes.Store(0)
	s.QNodes.Store(0)
	s.TTHits.Store(0)
	s.TTCutoffs.Store(0)
	s.NullMoveCuts.Store(0)
	s.FutilityPrunes.Store(0)
	s.BetaCutoffs.Store(0)
	s.FirstMoveCutoffs.Store(0)
}

// MoveOrderingEfficiency is the fraction of beta cutoffs that happened on
// the first move tried, a standard proxy for how good move ordering is: a
// well-ordered search should cut on the first move the vast majority of the
// time.
func (s *Stats) MoveOrderingEfficiency() float64 {
	cuts := s.BetaCutoffs.Load()
	if cuts == 0 {
		return 0
	}
	return float64(s.FirstMoveCutoffs.Load()) / float64(cuts)
}

// LogDepth emits one structured log line per completed iterative-deepening
// depth, the Go/zerolog equivalent of the teacher's Dump and the Python
// Statistics.log_info.
func LogDepth(logger zerolog.Logger, depth int, score Score, nodes uint64, elapsed time.Duration, pv []string) {
	logger.Info().
		Int("depth", depth).
		Int32("score_cp", int32(score)).
		Uint64("nodes", nodes).
		Dur("elapsed", elapsed).
		Strs("pv", pv).
		Msg("completed iterative deepening depth")
}
