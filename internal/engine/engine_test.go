package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/KYLChiu/sporkfish/internal/config"
	"github.com/KYLChiu/sporkfish/internal/position"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Search.MaxDepth = 3
	cfg.Search.EnableLazySMP = false
	e, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestBestMoveOnStartPosition(t *testing.T) {
	e := newTestEngine(t)
	pos := position.New()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	move, _, err := e.BestMove(ctx, pos)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if move == position.NoMove {
		t.Fatal("expected a concrete move from the start position")
	}
}

func TestBestMoveReturnsErrNoLegalMovesOnCheckmate(t *testing.T) {
	e := newTestEngine(t)
	// Fool's mate: white to move is checkmated.
	pos, err := position.FromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	_, _, err = e.BestMove(context.Background(), pos)
	if !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("expected ErrNoLegalMoves, got %v", err)
	}
}

func TestParsePositionRejectsGarbage(t *testing.T) {
	if _, err := ParsePosition("not a fen"); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestBestMoveFallsBackToStaticEvalOnExpiredDeadline(t *testing.T) {
	e := newTestEngine(t)
	e.opts.MaxDepth = 40
	pos := position.New()
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	move, _, err := e.BestMove(ctx, pos)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if move == position.NoMove {
		t.Fatal("expected a static-eval fallback move, got NoMove")
	}
}

func TestBestMoveReportsDrawByInsufficientMaterial(t *testing.T) {
	e := newTestEngine(t)
	pos, err := position.FromFEN("8/8/4k3/8/8/4K3/8/8 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	move, score, err := e.BestMove(context.Background(), pos)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if move == position.NoMove {
		t.Fatal("expected a legal king move, got NoMove")
	}
	if score != 0 {
		t.Fatalf("expected a drawn score of 0, got %d", score)
	}
}
