// Package engine wraps the opening book, endgame tablebase, and searcher
// into the single driver-facing API (spec §6): the same role engine.py's
// Engine class plays, generalised into a Go type with typed sentinel errors
// instead of returning None for "nothing found". Every driver in this
// repository — the UCI adapter and the Lichess bot — talks to a *Engine and
// never touches internal/search directly.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/KYLChiu/sporkfish/internal/book"
	"github.com/KYLChiu/sporkfish/internal/config"
	"github.com/KYLChiu/sporkfish/internal/eval"
	"github.com/KYLChiu/sporkfish/internal/position"
	"github.com/KYLChiu/sporkfish/internal/search"
	"github.com/KYLChiu/sporkfish/internal/tablebase"
	"github.com/KYLChiu/sporkfish/internal/tt"
	"github.com/KYLChiu/sporkfish/internal/zobrist"
)

// Sentinel errors (spec §7): wrapped with fmt.Errorf("%w", ...) at each call
// site so callers can errors.Is against a stable set while still getting a
// position- or move-specific message.
var (
	// ErrInvalidPosition is returned when a driver supplies a FEN or move
	// sequence that doesn't describe a legal chess position.
	ErrInvalidPosition = errors.New("engine: invalid position")
	// ErrNoLegalMoves is returned by BestMove when the position is already
	// checkmate or stalemate.
	ErrNoLegalMoves = errors.New("engine: no legal moves available")
	// ErrTimeExhausted marks a search context that expired before even a
	// depth-1 result was available. BestMove does not return it: it logs it
	// and returns the static-evaluation fallback move instead.
	ErrTimeExhausted = errors.New("engine: search timed out before any move was found")
	// ErrInternalInvariantViolation marks a bug (an invariant spec §8
	// documents as always holding was violated), as opposed to ordinary
	// input or environment errors. See errors_debug.go / errors_release.go
	// for how it behaves differently in debug versus release builds.
	ErrInternalInvariantViolation = errors.New("engine: internal invariant violation")
)

// Engine bundles book, tablebase, and search components behind one API.
type Engine struct {
	table     *tt.Table
	hasher    *zobrist.Hasher
	opts      search.Options
	timeOpts  search.TimeManagerOptions
	book      *book.Book
	tablebase tablebase.Probe
	logger    zerolog.Logger
}

// New builds an Engine from a fully-resolved Config. A configured but
// unreadable opening book is a startup error; a configured-off book or
// tablebase is represented as nil/tablebase.Null{} so BestMove never has to
// special-case "not configured" at call time.
func New(cfg config.Config, logger zerolog.Logger) (*Engine, error) {
	e := &Engine{
		table:     tt.New(cfg.Search.TranspositionTableSizeMB),
		hasher:    zobrist.NewHasher(),
		opts:      cfg.Search,
		timeOpts:  cfg.TimeManager,
		tablebase: tablebase.Null{},
		logger:    logger,
	}

	if cfg.Book.Enabled {
		b, err := book.Open(cfg.Book.Path)
		if err != nil {
			return nil, fmt.Errorf("engine: loading opening book: %w", err)
		}
		e.book = b
	}

	if cfg.Tablebase.Mode == config.TablebaseModeLila {
		e.tablebase = tablebase.NewLilaTablebase(logger)
	}

	return e, nil
}

// NewGame resets state that must not leak between games: the transposition
// table's generation (spec §4.3) and, indirectly through it, effective
// replacement priority for a fresh search tree.
func (e *Engine) NewGame() {
	e.table.NewGame()
}

// BestMove finds the best move for pos, trying the opening book, then the
// endgame tablebase, then a full search — engine.py's best_move flow,
// generalised with typed errors and a context-based time budget (spec §4.8)
// instead of an optional float timeout.
func (e *Engine) BestMove(ctx context.Context, pos *position.Position) (position.Move, search.Score, error) {
	if outcome, over := pos.IsGameOver(); over {
		switch outcome {
		case position.OutcomeCheckmate, position.OutcomeStalemate:
			return position.NoMove, 0, ErrNoLegalMoves
		default:
			// A material or fifty-move draw still has legal moves on the
			// board; report it as a draw (score 0) rather than as
			// ErrNoLegalMoves, which is reserved for checkmate/stalemate.
			move, _ := staticEvalBestMove(pos)
			return move, 0, nil
		}
	}

	if e.book != nil {
		if move, err := e.book.Query(pos); err == nil {
			return move, 0, nil
		}
	}

	if tablebase.PieceCount(pos) <= tablebase.PieceCountThreshold {
		if result, ok := e.tablebase.Query(ctx, pos); ok && result.Move != position.NoMove {
			return result.Move, 0, nil
		}
	}

	result := e.search(ctx, pos)
	if result.Move == position.NoMove {
		if !result.Completed {
			// The deadline hit before depth 1 finished: fall back to the
			// highest-ranked legal move by the static evaluator rather than
			// surfacing ErrTimeExhausted as the sole result (spec §7 requires
			// a driver always get a legal move to play, never a bare error).
			move, score := staticEvalBestMove(pos)
			e.logger.Warn().Err(ErrTimeExhausted).Str("fen", pos.FEN()).Str("move", position.MoveString(move)).
				Msg("search timed out before completing depth 1; falling back to static evaluation")
			return move, score, nil
		}
		err := fmt.Errorf("%w: search completed but produced no move for %s", ErrInternalInvariantViolation, pos.FEN())
		if panicOnInvariantViolation {
			panic(err)
		}
		move, score := staticEvalBestMove(pos)
		e.logger.Error().Err(err).Str("move", position.MoveString(move)).
			Msg("falling back to static evaluation")
		return move, score, nil
	}
	return result.Move, result.Score, nil
}

// staticEvalBestMove picks the legal move that maximises the static
// evaluator's judgement one ply deep, used as the safety-net move whenever a
// full search cannot be run to completion. It assumes pos has at least one
// legal move.
func staticEvalBestMove(pos *position.Position) (position.Move, search.Score) {
	moves := pos.LegalMoves()
	bestMove := position.NoMove
	bestScore := -search.Inf
	for _, m := range moves {
		unmake := pos.Make(m)
		score := -search.Score(eval.Evaluate(pos))
		unmake()
		if bestMove == position.NoMove || score > bestScore {
			bestScore = score
			bestMove = m
		}
	}
	return bestMove, bestScore
}

// Score runs a search and reports only its evaluation, mirroring
// engine.py's score method. Nothing in this repository calls it; UCI's
// "info score" line uses the score BestMove returns.
func (e *Engine) Score(ctx context.Context, pos *position.Position) search.Score {
	return e.search(ctx, pos).Score
}

func (e *Engine) search(ctx context.Context, pos *position.Position) search.Result {
	if (e.opts.EnableLazySMP || e.opts.SearchMode == search.SearchModeNegamaxSMP) && e.opts.Workers > 1 {
		return search.SearchLazySMP(ctx, pos, e.opts, e.table, e.hasher, e.logger)
	}
	s := search.NewSearcher(ctx, e.opts, e.table, e.hasher)
	return s.Search(pos, e.logger)
}

// ParsePosition validates and parses a FEN, wrapping dragontoothmg's panic
// recovery into the engine's own sentinel error space.
func ParsePosition(fen string) (*position.Position, error) {
	pos, err := position.FromFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	return pos, nil
}
