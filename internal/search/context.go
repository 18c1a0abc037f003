package search

import (
	"context"
	"time"

	"github.com/KYLChiu/sporkfish/internal/order"
	"github.com/KYLChiu/sporkfish/internal/position"
	"github.com/KYLChiu/sporkfish/internal/tt"
	"github.com/KYLChiu/sporkfish/internal/zobrist"
)

// Searcher bundles everything a single search call needs but that outlives
// any one node: the shared transposition table, the zobrist hasher, per-ply
// killer moves, accumulated statistics, and the deadline. One Searcher is
// built per top-level search.Search call; internal/search/smp.go shares its
// TT and Hasher (both safe for concurrent use) across several Searcher
// values for Lazy SMP, but each goroutine gets its own Killers and Stats to
// avoid contending on those.
type Searcher struct {
	Opts    Options
	TT      *tt.Table
	Hasher  *zobrist.Hasher
	Killers *order.Killers
	Stats   *Stats

	ctx      context.Context
	deadline time.Time

	pv [MaxPly + 1][MaxPly + 1]position.Move
	pvLen [MaxPly + 1]int
}

// NewSearcher builds a Searcher around a shared table and hasher, for one
// search call bounded by ctx (spec §4.8: the caller's context.Context
// carries the time budget the time manager computed).
func NewSearcher(ctx context.Context, opts Options, table *tt.Table, hasher *zobrist.Hasher) *Searcher {
	s := &Searcher{
		Opts:    opts,
		TT:      table,
		Hasher:  hasher,
		Killers: order.NewKillers(),
		Stats:   &Stats{},
		ctx:     ctx,
	}
	if dl, ok := ctx.Deadline(); ok {
		s.deadline = dl
	}
	return s
}

// aborted reports whether the search's context has been cancelled or its
// deadline has passed. Checked at the top of every negamax/qsearch node,
// mirroring the teacher's isTimedOut(s.timeout) checks.
func (s *Searcher) aborted() bool {
	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}

// recordPV stashes move as the best move at ply and appends the child's PV,
// the Go equivalent of the teacher's triangular pvLine copy in updateEval.
func (s *Searcher) recordPV(ply int, move position.Move) {
	s.pv[ply][0] = move
	childLen := s.pvLen[ply+1]
	copy(s.pv[ply][1:], s.pv[ply+1][:childLen])
	s.pvLen[ply] = childLen + 1
}

// clearPV truncates the PV at ply, used when a node fails low and its
// previous child's line should not leak into the parent's recorded line.
func (s *Searcher) clearPV(ply int) {
	s.pvLen[ply] = 0
}

// PV returns the principal variation found by the most recent Search call
// from the root.
func (s *Searcher) PV() []position.Move {
	out := make([]position.Move, s.pvLen[0])
	copy(out, s.pv[0][:s.pvLen[0]])
	return out
}
