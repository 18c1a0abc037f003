package search

import (
	"github.com/KYLChiu/sporkfish/internal/eval"
	"github.com/KYLChiu/sporkfish/internal/order"
	"github.com/KYLChiu/sporkfish/internal/position"
)

// quiesce extends the search along capture sequences past the nominal
// horizon to avoid the horizon effect (spec §4.5), mirroring
// minimax.py's _quiescence: stand-pat cutoff, then search only captures,
// fail-soft. It additionally applies delta pruning (spec §4.5's addition
// over the reference implementation's plain quiescence) and caps recursion
// at Opts.QuiescenceMaxPly, matching the Python implementation's
// hard-coded depth of 4 generalised into a config knob.
func (s *Searcher) quiesce(pos *position.Position, ply, qply int, alpha, beta Score) Score {
	s.Stats.QNodes.Add(1)

	if s.aborted() {
		return alpha
	}

	inCheck := pos.IsCheck()
	var standPat Score
	if !inCheck {
		standPat = Score(eval.Evaluate(pos))
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	} else {
		// In check: standing pat isn't valid (we might be mated), so every
		// evasion must be considered rather than only captures.
		standPat = -Mate + Score(ply)
	}

	if qply >= s.Opts.QuiescenceMaxPly {
		return alpha
	}

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if inCheck {
			return -MateIn(ply)
		}
		return 0 // stalemate
	}

	candidates := moves
	if !inCheck {
		candidates = candidates[:0]
		for _, m := range moves {
			if pos.IsCapture(m) || pos.IsQueenPromotion(m) {
				candidates = append(candidates, m)
			}
		}
	}
	order.Order(pos, candidates, position.NoMove, nil, 0, order.ModeMVVLVA, order.Weights{MVVLVA: 1})

	best := standPat
	for _, m := range candidates {
		if !inCheck && s.Opts.EnableDeltaPruning {
			if capturedValue(pos, m)+s.Opts.DeltaMargin+standPat < alpha {
				continue
			}
		}

		unmake := pos.Make(m)
		score := -s.quiesce(pos, ply+1, qply+1, -beta, -alpha)
		unmake()

		if score > best {
			best = score
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// capturedValue is a cheap material estimate of a capture used only for
// delta pruning's best-case bound, not for move ordering (that's
// order.MVVLVA).
func capturedValue(pos *position.Position, m position.Move) Score {
	if pos.IsPromotion(m) {
		return 800 // a queen promotion swings material by roughly this much
	}
	kind, _, ok := pos.PieceAt(m.To())
	if !ok {
		return 100 // en-passant: captured pawn isn't on the destination square
	}
	switch kind {
	case position.Pawn:
		return 100
	case position.Knight, position.Bishop:
		return 300
	case position.Rook:
		return 500
	case position.Queen:
		return 900
	default:
		return 0
	}
}
