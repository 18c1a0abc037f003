package order

import (
	"testing"

	"github.com/KYLChiu/sporkfish/internal/position"
)

func TestOrderPutsTTMoveFirst(t *testing.T) {
	pos := position.New()
	moves := pos.LegalMoves()
	ttMove, err := pos.ParseMove("g1f3")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	Order(pos, moves, ttMove, nil, 0, ModeComposite, Weights{MVVLVA: 1, Killer: 5})
	if moves[0] != ttMove {
		t.Fatalf("expected TT move first, got %s", position.MoveString(moves[0]))
	}
}

func TestOrderRanksCapturesByMVVLVA(t *testing.T) {
	// White pawn on e3, black knight hanging on d4.
	pos, err := position.FromFEN("4k3/8/8/8/3n4/4P3/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	moves := pos.LegalMoves()
	Order(pos, moves, position.NoMove, nil, 0, ModeComposite, Weights{MVVLVA: 1, Killer: 5})

	// exd4 (pawn takes knight) should be ordered ahead of any non-capture.
	first := moves[0]
	if !pos.IsCapture(first) {
		t.Fatalf("expected the highest-value capture first, got non-capture %s", position.MoveString(first))
	}
}

func TestKillersAddAndOrder(t *testing.T) {
	k := NewKillers()
	pos := position.New()
	moves := pos.LegalMoves()
	quiet, err := pos.ParseMove("g1f3")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	k.Add(3, quiet)
	if !k.IsKiller(3, quiet) {
		t.Fatal("expected quiet move to be recorded as a killer")
	}
	if k.IsKiller(4, quiet) {
		t.Fatal("killer at ply 3 should not leak into ply 4")
	}

	Order(pos, moves, position.NoMove, k, 3, ModeComposite, Weights{MVVLVA: 1, Killer: 5})
	if moves[0] != quiet {
		t.Fatalf("expected killer move first among quiets, got %s", position.MoveString(moves[0]))
	}
}

func TestKillersEvictOldestOnOverflow(t *testing.T) {
	k := NewKillers()
	pos := position.New()
	a, _ := pos.ParseMove("g1f3")
	b, _ := pos.ParseMove("b1c3")
	c, _ := pos.ParseMove("g2g3")

	k.Add(0, a)
	k.Add(0, b)
	k.Add(0, c) // KillersPerPly is 2, so a should be evicted.

	if k.IsKiller(0, a) {
		t.Fatal("expected oldest killer to be evicted once the table is full")
	}
	if !k.IsKiller(0, b) || !k.IsKiller(0, c) {
		t.Fatal("expected the two most recent killers to remain")
	}
}
