package search

import "github.com/KYLChiu/sporkfish/internal/order"

// SearchMode selects which of the search core's algorithms the iterative
// deepening driver runs at each depth (spec §6).
type SearchMode string

const (
	// SearchModeNegamaxSingle is plain fail-soft negamax with a full window
	// for every move, single-threaded — the baseline algorithm before PVS's
	// null-window re-search or Lazy SMP are layered on top.
	SearchModeNegamaxSingle SearchMode = "NEGAMAX_SINGLE"
	// SearchModeNegamaxSMP is plain negamax run by several Lazy SMP workers
	// searching the same position concurrently (spec §4.9).
	SearchModeNegamaxSMP SearchMode = "NEGAMAX_SMP"
	// SearchModePVSSingle is single-threaded principal-variation search: a
	// full window for the first move at each node, a null-window probe with
	// re-search for the rest. This is the default.
	SearchModePVSSingle SearchMode = "PVS_SINGLE"
)

// Options is the typed configuration record the search core is built from
// (spec §6, §9): a Go struct with defaults, replacing the teacher's package
// level mutable var config.go (SearchDepth, UseTT, HeurUseNullMove, ...) and
// the Python engine's dynamically-typed SearcherConfig dict. It is
// unmarshalled from YAML by internal/config and is otherwise immutable for
// the lifetime of a search.
type Options struct {
	// MaxDepth caps iterative deepening (plies), independent of time.
	MaxDepth int `yaml:"max_depth"`

	// TranspositionTableSizeMB sizes internal/tt.New.
	TranspositionTableSizeMB int `yaml:"tt_size_mb"`
	// TTEnabled toggles the transposition table probe/store entirely (spec
	// §8 invariant 6: "TT on/off must produce an identical best move", which
	// requires an actual off switch to test against).
	TTEnabled bool `yaml:"tt_enabled"`

	// SearchMode selects which of NEGAMAX_SINGLE, NEGAMAX_SMP, or
	// PVS_SINGLE the iterative deepening driver runs.
	SearchMode SearchMode `yaml:"search_mode"`

	// MoveOrder selects the move-ordering source(s) internal/order.Order
	// applies: MVV_LVA alone, KILLER alone, or COMPOSITE (both, weighted).
	MoveOrder order.Mode `yaml:"move_order"`
	// MVVLVAWeight and KillerWeight scale each ordering source's
	// contribution to a move's composite score; a weight of zero disables
	// that source without needing a separate mode switch (spec §4.4).
	MVVLVAWeight int `yaml:"mvv_lva_weight"`
	KillerWeight int `yaml:"killer_weight"`

	// EnableNullMove toggles null-move pruning. Spec §9 open question (a):
	// disabled whenever the side to move is in check (a null move would
	// leave its own king en prise, and the shortened subtree can hide a
	// mate) OR the side to move has only pawns and a king (zugzwang-prone:
	// passing is not obviously safe when there's no spare non-pawn move) —
	// see internal/search/negamax.go's nullMoveAllowed.
	EnableNullMove bool `yaml:"enable_null_move"`
	// NullMoveReduction is R in "search at depth - 1 - R" for the reduced
	// null-move probe, mirroring the teacher's nullMoveDepthSkip=3 (kept
	// odd there to dodge even/odd TT parity effects that don't apply to
	// this table's design; R=2 here is the conventional value this table's
	// depth accounting expects).
	NullMoveReduction int `yaml:"null_move_reduction"`

	// EnableFutilityPruning toggles the depth 1-2 futility cutoffs.
	EnableFutilityPruning bool `yaml:"enable_futility_pruning"`
	// FutilityMarginDepth1/2 are spec §9 open question (b)'s recommended
	// margins: at one ply from the horizon a quiet move is assumed to swing
	// the score by at most 150cp (a pawn and a half) before it's worth
	// searching; at two plies, 300cp (about a minor piece).
	FutilityMarginDepth1 Score `yaml:"futility_margin_depth1"`
	FutilityMarginDepth2 Score `yaml:"futility_margin_depth2"`

	// QuiescenceMaxPly caps quiescence recursion the way the Python
	// implementation caps it at 4 captures deep, preventing runaway capture
	// chains in the rare position with many recaptures.
	QuiescenceMaxPly int `yaml:"quiescence_max_ply"`
	// EnableDeltaPruning toggles quiescence delta pruning: a capture whose
	// best case (biggest remaining material swing plus a safety margin)
	// still can't reach alpha is skipped without being searched.
	EnableDeltaPruning bool  `yaml:"enable_delta_pruning"`
	DeltaMargin        Score `yaml:"delta_margin"`

	// AspirationWindow is the initial +/- centipawn window drawn around the
	// previous iteration's score. Spec §9 open question (c): if the search
	// fails high or low, the window is widened twice (successively wider)
	// before falling back to a full (-Inf, +Inf) window, matching the
	// re-search policy in internal/search/iterative.go.
	AspirationWindow Score `yaml:"aspiration_window"`
	// EnableAspiration is the master on/off switch for aspiration windows;
	// when false every depth is searched with a full (-Inf, +Inf) window
	// regardless of AspirationWindow, matching negamax.py's un-windowed
	// iterative deepening loop.
	EnableAspiration bool `yaml:"aspiration"`

	// EnableLazySMP toggles multi-goroutine search (spec §4.9); Workers is
	// how many searcher goroutines run concurrently, sharing one
	// transposition table.
	EnableLazySMP bool `yaml:"enable_lazy_smp"`
	Workers        int  `yaml:"workers"`
}

// DefaultOptions returns the recommended configuration from spec §9's
// resolved open questions.
func DefaultOptions() Options {
	return Options{
		MaxDepth:                 64,
		TranspositionTableSizeMB: 64,
		TTEnabled:                true,
		SearchMode:               SearchModePVSSingle,
		MoveOrder:                order.ModeComposite,
		MVVLVAWeight:             1,
		KillerWeight:             5,
		EnableNullMove:           true,
		NullMoveReduction:        2,
		EnableFutilityPruning:    true,
		FutilityMarginDepth1:     150,
		FutilityMarginDepth2:     300,
		QuiescenceMaxPly:         8,
		EnableDeltaPruning:       true,
		DeltaMargin:              200,
		AspirationWindow:         50,
		EnableAspiration:         true,
		EnableLazySMP:            true,
		Workers:                  4,
	}
}
