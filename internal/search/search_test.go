package search

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/KYLChiu/sporkfish/internal/position"
	"github.com/KYLChiu/sporkfish/internal/tt"
	"github.com/KYLChiu/sporkfish/internal/zobrist"
)

func newTestSearcher(t *testing.T, ctx context.Context, opts Options) *Searcher {
	t.Helper()
	return NewSearcher(ctx, opts, tt.New(1), zobrist.NewHasher())
}

func quietLogger() zerolog.Logger {
	return zerolog.Nop()
}

// TestFindsMateInOne exercises the literal end-to-end scenario spec §8
// requires: a position with a forced mate in one must be found with a mate
// score, at any reasonable depth budget.
func TestFindsMateInOne(t *testing.T) {
	pos, err := position.FromFEN("6k1/5ppp/8/8/8/8/8/R6K w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	opts := DefaultOptions()
	opts.MaxDepth = 4
	s := newTestSearcher(t, ctx, opts)
	result := s.Search(pos, quietLogger())

	if !IsMateScore(result.Score) || result.Score < 0 {
		t.Fatalf("expected a winning mate score, got %d", result.Score)
	}
	if result.Move == position.NoMove {
		t.Fatal("expected a concrete mating move, got NoMove")
	}
	if !pos.GivesCheck(result.Move) {
		t.Fatalf("expected the found move %s to deliver check", position.MoveString(result.Move))
	}
}

// TestFailSoftBoundsRespected exercises spec §8's fail-soft invariant: a
// search bounded by a very tight window can still return a value outside
// that window (fail-soft), never silently clamped to it.
func TestFailSoftBoundsRespected(t *testing.T) {
	// A position where white has a large material edge, searched through a
	// window pinned at (-1, 1): a fail-hard search would clamp the return
	// value to that window, but fail-soft must report the true (much larger)
	// score it found while failing high.
	pos, err := position.FromFEN("6k1/8/8/8/8/8/8/QQQQKQQQ w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	opts := DefaultOptions()
	s := newTestSearcher(t, ctx, opts)
	key := s.Hasher.Hash(pos)

	score := s.negamax(pos, key, 3, 0, -1, 1, true)
	if score <= 1 {
		t.Fatalf("expected a fail-soft score well above the (-1, 1) window given white's material edge, got %d", score)
	}
}

// TestDeadlineHonored exercises spec §8: a search given an already-expired
// deadline must return promptly without panicking, even if it can't
// complete depth 1.
func TestDeadlineHonored(t *testing.T) {
	pos := position.New()
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	opts := DefaultOptions()
	opts.MaxDepth = 20
	s := newTestSearcher(t, ctx, opts)

	done := make(chan Result, 1)
	go func() { done <- s.Search(pos, quietLogger()) }()

	select {
	case result := <-done:
		if result.Completed {
			t.Fatalf("expected an already-expired deadline to prevent any depth from completing, got %+v", result)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("search did not honour an already-expired deadline")
	}
}

// TestTranspositionTableDoesNotChangeScore exercises spec §8: searching
// the same position with the table cold versus warm must agree on the
// score, since the table is a pure cache that must never change the
// minimax value.
func TestTranspositionTableDoesNotChangeScore(t *testing.T) {
	pos := position.New()
	hasher := zobrist.NewHasher()
	opts := DefaultOptions()
	opts.MaxDepth = 3
	opts.EnableNullMove = false

	ctx := context.Background()

	coldTable := tt.New(1)
	coldSearcher := NewSearcher(ctx, opts, coldTable, hasher)
	coldResult := coldSearcher.Search(pos.Clone(), quietLogger())

	warmTable := tt.New(1)
	warmSearcher := NewSearcher(ctx, opts, warmTable, hasher)
	_ = warmSearcher.Search(pos.Clone(), quietLogger()) // warm the table
	warmSearcher2 := NewSearcher(ctx, opts, warmTable, hasher)
	warmResult := warmSearcher2.Search(pos.Clone(), quietLogger())

	if coldResult.Score != warmResult.Score {
		t.Fatalf("TT changed the search value: cold=%d warm=%d", coldResult.Score, warmResult.Score)
	}
}

// TestPVSAgreesWithFullWindowNegamax exercises spec §8: the PVS null-window
// re-search optimisation must never change the root value versus a plain
// full-window negamax at the same depth (it is a speed optimisation only).
func TestPVSAgreesWithFullWindowNegamax(t *testing.T) {
	pos, err := position.FromFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	hasher := zobrist.NewHasher()
	ctx := context.Background()
	baseOpts := DefaultOptions()
	baseOpts.EnableNullMove = false
	baseOpts.EnableFutilityPruning = false
	baseOpts.TTEnabled = false // an independent table per run would otherwise let TT hits mask the comparison

	negamaxOpts := baseOpts
	negamaxOpts.SearchMode = SearchModeNegamaxSingle
	negamaxSearcher := NewSearcher(ctx, negamaxOpts, tt.New(1), hasher)
	negamaxKey := negamaxSearcher.Hasher.Hash(pos)
	negamaxScore := negamaxSearcher.negamax(pos.Clone(), negamaxKey, 3, 0, -Inf, Inf, true)

	pvsOpts := baseOpts
	pvsOpts.SearchMode = SearchModePVSSingle
	pvsSearcher := NewSearcher(ctx, pvsOpts, tt.New(1), hasher)
	pvsKey := pvsSearcher.Hasher.Hash(pos)
	pvsScore := pvsSearcher.negamax(pos.Clone(), pvsKey, 3, 0, -Inf, Inf, true)

	if pvsScore != negamaxScore {
		t.Fatalf("PVS null-window re-search changed the root value: pvs=%d negamax=%d", pvsScore, negamaxScore)
	}
}

// TestQuiescenceReturnsStaticEvalWithNoCaptures exercises the
// fail-soft property of quiescence search specifically: with no captures
// available, the returned score is exactly the static evaluation.
func TestQuiescenceReturnsStaticEvalWithNoCaptures(t *testing.T) {
	pos, err := position.FromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	ctx := context.Background()
	s := newTestSearcher(t, ctx, DefaultOptions())
	got := s.quiesce(pos, 0, 0, -Inf, Inf)
	if got != 0 {
		t.Fatalf("bare kings should evaluate to 0, got %d", got)
	}
}

func TestMateInHelpers(t *testing.T) {
	if !IsMateScore(MateIn(3)) {
		t.Fatal("MateIn(3) should be a mate score")
	}
	if IsMateScore(150) {
		t.Fatal("an ordinary material score should not be classified as mate")
	}
	if PliesToMate(MateIn(5)) != 5 {
		t.Fatalf("PliesToMate(MateIn(5)) = %d, want 5", PliesToMate(MateIn(5)))
	}
}
