package search

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/KYLChiu/sporkfish/internal/position"
	"github.com/KYLChiu/sporkfish/internal/zobrist"
)

// Result is what a completed (or timed-out) search call returns: the best
// move found, its score, and how deep the search actually completed to.
type Result struct {
	Move      position.Move
	Score     Score
	Depth     int
	Nodes     uint64
	Completed bool // false if the deadline hit before depth 1 finished
}

// Search runs iterative deepening with aspiration windows (spec §4.7) from
// pos, up to Opts.MaxDepth or until the Searcher's context is done,
// whichever is first. It mirrors negamax.py's _iterative_deepening, adding
// aspiration windows the reference implementation does not have: each
// depth after the first is searched inside a narrow window centred on the
// previous depth's score, widening twice on a fail-high/low before falling
// back to a full window (spec §9 open question (c)).
func (s *Searcher) Search(pos *position.Position, logger zerolog.Logger) Result {
	key := s.Hasher.Hash(pos)

	var result Result
	score := Score(0)

	searchStart := time.Now()
	var budget time.Duration
	if !s.deadline.IsZero() {
		budget = s.deadline.Sub(searchStart)
	}

	for depth := 1; depth <= s.Opts.MaxDepth; depth++ {
		if s.aborted() {
			break
		}
		// Spec §4.8: don't start a depth that has less than even odds of
		// finishing inside the budget. A depth typically costs several times
		// its predecessor, so once half the budget is spent there usually
		// isn't time left for the next one anyway; better to keep the
		// completed result than burn the remainder on a doomed iteration.
		if budget > 0 && depth > 1 && time.Since(searchStart) > budget/2 {
			break
		}
		s.Stats.Reset()
		start := time.Now()

		depthScore, ok := s.searchDepthWithAspiration(pos, key, depth, score)
		if !ok {
			break // aborted mid-depth; keep the previous depth's result
		}
		score = depthScore

		result = Result{
			Move:      firstOr(s.PV(), position.NoMove),
			Score:     score,
			Depth:     depth,
			Nodes:     s.Stats.Nodes.Load() + s.Stats.QNodes.Load(),
			Completed: true,
		}

		LogDepth(logger, depth, score, result.Nodes, time.Since(start), moveStrings(s.PV()))

		if IsMateScore(score) {
			break // no point searching deeper once a forced mate is found
		}
	}

	return result
}

// searchDepthWithAspiration runs one iterative-deepening depth inside a
// window around prevScore, widening on fail-high/low per spec §9 open
// question (c): two successive widenings, then a full (-Inf, Inf) window.
// ok is false only when the search aborted before producing any usable
// score at this depth.
func (s *Searcher) searchDepthWithAspiration(pos *position.Position, key zobrist.Key, depth int, prevScore Score) (Score, bool) {
	window := s.Opts.AspirationWindow
	if !s.Opts.EnableAspiration || depth <= 1 || window <= 0 {
		score := s.negamax(pos, key, depth, 0, -Inf, Inf, true)
		return score, !s.aborted()
	}

	alpha, beta := prevScore-window, prevScore+window
	for attempt := 0; attempt < 3; attempt++ {
		score := s.negamax(pos, key, depth, 0, alpha, beta, true)
		if s.aborted() {
			return 0, false
		}
		if score <= alpha {
			alpha = prevScore - window*Score(1<<(attempt+2))
			if alpha < -Inf {
				alpha = -Inf
			}
			continue
		}
		if score >= beta {
			beta = prevScore + window*Score(1<<(attempt+2))
			if beta > Inf {
				beta = Inf
			}
			continue
		}
		return score, true
	}

	// Two widenings still failed to bracket the true score: fall back to a
	// full window so this depth is guaranteed to produce a usable result.
	score := s.negamax(pos, key, depth, 0, -Inf, Inf, true)
	return score, !s.aborted()
}

func firstOr(moves []position.Move, fallback position.Move) position.Move {
	if len(moves) == 0 {
		return fallback
	}
	return moves[0]
}

func moveStrings(moves []position.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = position.MoveString(m)
	}
	return out
}
