package uci

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/KYLChiu/sporkfish/internal/config"
	"github.com/KYLChiu/sporkfish/internal/engine"
	"github.com/KYLChiu/sporkfish/internal/search"
)

func newTestLoop(t *testing.T, out *bytes.Buffer) *Loop {
	t.Helper()
	cfg := config.Default()
	cfg.Search.MaxDepth = 2
	cfg.Search.EnableLazySMP = false
	e, err := engine.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	tm := search.NewTimeManager(cfg.TimeManager)
	return NewLoop(e, tm, zerolog.Nop(), out)
}

func TestUCIHandshake(t *testing.T) {
	var out bytes.Buffer
	loop := newTestLoop(t, &out)
	loop.Run(strings.NewReader("uci\nisready\nquit\n"))

	got := out.String()
	if !strings.Contains(got, "uciok") || !strings.Contains(got, "readyok") {
		t.Fatalf("expected uciok and readyok, got %q", got)
	}
}

func TestPositionAndGoProducesBestMove(t *testing.T) {
	var out bytes.Buffer
	loop := newTestLoop(t, &out)
	loop.Run(strings.NewReader("position startpos\ngo infinite\nquit\n"))

	got := out.String()
	if !strings.Contains(got, "bestmove ") {
		t.Fatalf("expected a bestmove line, got %q", got)
	}
}

func TestPositionWithMoves(t *testing.T) {
	var out bytes.Buffer
	loop := newTestLoop(t, &out)
	loop.Run(strings.NewReader("position startpos moves e2e4 e7e5\ngo infinite\nquit\n"))

	got := out.String()
	if !strings.Contains(got, "bestmove ") {
		t.Fatalf("expected a bestmove line after replaying moves, got %q", got)
	}
}
