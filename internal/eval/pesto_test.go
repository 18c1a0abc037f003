package eval

import (
	"testing"

	"github.com/KYLChiu/sporkfish/internal/position"
)

// TestEvaluateStartPositionIsZero exercises the simplest tapered case: a
// materially and positionally symmetric position must evaluate to exactly 0
// for the side to move.
func TestEvaluateStartPositionIsZero(t *testing.T) {
	pos := position.New()
	if got := Evaluate(pos); got != 0 {
		t.Fatalf("start position: got %d, want 0", got)
	}
}

// TestEvaluateSymmetry exercises spec §8 invariant 3: evaluating a position
// and evaluating its color-and-rank mirror (same structure, colors swapped)
// must agree, since Evaluate always scores from the mover's perspective.
func TestEvaluateSymmetry(t *testing.T) {
	cases := []struct {
		fen, mirrorFEN string
	}{
		{
			fen:       "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			mirrorFEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1",
		},
		{
			// An asymmetric middlegame, mirrored vertically with colors
			// swapped: White's queen on e2 becomes Black's on e7.
			fen:       "r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/2N2N2/PPPPQPPP/R1B1K2R w KQkq - 4 6",
			mirrorFEN: "r1b1k2r/ppppqppp/2n2n2/2b1p3/2B1P3/2N2N2/PPPP1PPP/R1BQK2R b KQkq - 4 6",
		},
	}

	for _, c := range cases {
		pos, err := position.FromFEN(c.fen)
		if err != nil {
			t.Fatalf("FromFEN(%q): %v", c.fen, err)
		}
		mirror, err := position.FromFEN(c.mirrorFEN)
		if err != nil {
			t.Fatalf("FromFEN(%q): %v", c.mirrorFEN, err)
		}
		got, want := Evaluate(pos), Evaluate(mirror)
		if got != want {
			t.Errorf("fen %q: eval %d, mirror %q: eval %d, want equal", c.fen, got, c.mirrorFEN, want)
		}
	}
}

// TestEvaluateMaterialDominates sanity-checks that a position with an extra
// queen is scored decisively in favour of the side that has it, rather than
// e.g. the PSQT terms swamping material.
func TestEvaluateMaterialDominates(t *testing.T) {
	pos, err := position.FromFEN("4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if got := Evaluate(pos); got < 800 {
		t.Fatalf("lone queen vs lone king: got %d, want a decisive positive score", got)
	}
}
