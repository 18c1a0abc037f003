// Lazy SMP (spec §4.9): several goroutines run the same iterative-deepening
// search independently against one shared transposition table, each with
// its own killer table and statistics so they don't contend for a lock on
// per-node state; only the table (and, through it, discovered lines) is
// shared. This mirrors errgroup-based worker-pool concurrency the way
// domino14-macondo's solver.go and the teacher's UCI loop both start
// goroutines against a context deadline (the teacher single-threaded, the
// macondo example concurrent).
package search

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/KYLChiu/sporkfish/internal/position"
	"github.com/KYLChiu/sporkfish/internal/tt"
	"github.com/KYLChiu/sporkfish/internal/zobrist"
)

// SearchLazySMP runs Opts.Workers independent Searcher instances against a
// shared table and hasher, each searching a cloned Position, and returns
// the result from whichever worker reached the greatest completed depth,
// ties broken by the higher score (spec §4.9): depth is the primary signal
// since a deeper search is strictly more informed, but two workers finishing
// the same depth have equally trustworthy results, so the better one wins
// rather than an arbitrary worker index.
func SearchLazySMP(ctx context.Context, pos *position.Position, opts Options, table *tt.Table, hasher *zobrist.Hasher, logger zerolog.Logger) Result {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			workerPos := pos.Clone()
			workerOpts := opts
			if w > 0 {
				// Vary the null-move reduction slightly across helper
				// threads so they explore the tree differently rather than
				// racing the exact same search, the cheap way Lazy SMP
				// gets value from extra workers without split-search
				// bookkeeping.
				workerOpts.NullMoveReduction = opts.NullMoveReduction + (w % 2)
			}
			s := NewSearcher(gctx, workerOpts, table, hasher)
			results[w] = s.Search(workerPos, logger.With().Int("worker", w).Logger())
			return nil
		})
	}
	_ = g.Wait() // workers never return an error; they just stop at ctx.Done()

	best := results[0]
	for _, r := range results[1:] {
		if r.Depth > best.Depth || (r.Depth == best.Depth && r.Score > best.Score) {
			best = r
		}
	}
	return best
}
