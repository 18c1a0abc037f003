package search

import (
	"github.com/KYLChiu/sporkfish/internal/eval"
	"github.com/KYLChiu/sporkfish/internal/order"
	"github.com/KYLChiu/sporkfish/internal/position"
	"github.com/KYLChiu/sporkfish/internal/tt"
	"github.com/KYLChiu/sporkfish/internal/zobrist"
)

// negamax is the fail-soft principal-variation search core (spec §4.6):
// negamax with alpha-beta pruning, a transposition table probe/store,
// null-move pruning, futility pruning at shallow depth, and a PVS-style
// null-window re-search for non-first moves. It generalises negamax.py's
// plain _negamax (which searches every move with the full window) the way
// the teacher's negalphabeta.go does, since a null-window re-search is
// cheap insurance once move ordering is good enough that later moves are
// usually not better than the first.
func (s *Searcher) negamax(pos *position.Position, key zobrist.Key, depth, ply int, alpha, beta Score, nullMoveAllowed bool) Score {
	s.clearPV(ply)

	if s.aborted() {
		return alpha
	}

	if ply > 0 {
		if outcome, over := pos.IsGameOver(); over {
			return terminalScore(outcome, ply)
		}
	}

	if depth <= 0 {
		return s.quiesce(pos, ply, 0, alpha, beta)
	}

	s.Stats.Nodes.Add(1)

	origAlpha := alpha
	var ttMove position.Move
	if s.Opts.TTEnabled {
		if entry := s.TT.Load(key, ply); entry.Hit {
			s.Stats.TTHits.Add(1)
			ttMove = position.Move(entry.Move)
			if int(entry.Depth) >= depth {
				score := Score(entry.Score)
				switch entry.Bound {
				case tt.BoundExact:
					s.Stats.TTCutoffs.Add(1)
					return score
				case tt.BoundLower:
					if score > alpha {
						alpha = score
					}
				case tt.BoundUpper:
					if score < beta {
						beta = score
					}
				}
				if alpha >= beta {
					s.Stats.TTCutoffs.Add(1)
					return score
				}
			}
		}
	}

	inCheck := pos.IsCheck()

	// Null-move pruning (spec §9 open question (a)): skip our own move and
	// see if the opponent, given a free tempo, still can't beat beta. Never
	// tried while in check (illegal, and unreliable near mate) nor when the
	// side to move has only pawns and a king (zugzwang: passing is not a safe
	// baseline when there is no spare non-pawn move).
	if s.Opts.EnableNullMove && nullMoveAllowed && !inCheck && depth >= s.Opts.NullMoveReduction+1 &&
		beta < Inf && pos.HasNonPawnMaterial(pos.SideToMove()) {
		_, hadEP := pos.EnPassantFile()
		unmake := pos.MakeNull()
		nullKey := s.Hasher.ToggleSideToMove(key)
		if hadEP {
			// The null move also cleared the en-passant file, which the
			// side-to-move toggle alone does not account for.
			nullKey = s.Hasher.Hash(pos)
		}
		nullScore := -s.negamax(pos, nullKey, depth-1-s.Opts.NullMoveReduction, ply+1, -beta, -beta+1, false)
		unmake()
		if !s.aborted() && nullScore >= beta {
			s.Stats.NullMoveCuts.Add(1)
			return nullScore
		}
	}

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if inCheck {
			return -MateIn(ply)
		}
		return 0
	}
	order.Order(pos, moves, ttMove, s.Killers, ply, s.Opts.MoveOrder, order.Weights{MVVLVA: s.Opts.MVVLVAWeight, Killer: s.Opts.KillerWeight})

	// Futility pruning (spec §9 open question (b); spec §4.6 step 7): at one
	// or two ply from the horizon, a quiet move that can't plausibly close
	// the gap to alpha even with a generous material margin is skipped
	// without being searched, since PeSTO's PSQT terms rarely swing a
	// position by more than the 150-300 centipawn margins in one ply. Never applied at a PV node (a full, non-null window: beta-alpha
	// > 1) — the search there is trying to establish the true score of the
	// principal line, not just a bound, so pruning a quiet move on
	// unverified static judgement risks losing the actual best line.
	isPVNode := beta-alpha > 1
	futilityMargin, futilityApplies := Score(0), false
	if s.Opts.EnableFutilityPruning && !inCheck && !isPVNode && depth <= 2 && alpha > -MateThreshold {
		switch depth {
		case 1:
			futilityMargin = s.Opts.FutilityMarginDepth1
		case 2:
			futilityMargin = s.Opts.FutilityMarginDepth2
		}
		futilityApplies = true
	}
	var staticEval Score
	if futilityApplies {
		staticEval = Score(eval.Evaluate(pos))
	}

	best := -Inf
	var bestMove position.Move
	bound := tt.BoundUpper

	for i, m := range moves {
		if futilityApplies && i > 0 && pos.IsQuiet(m) && !pos.GivesCheck(m) {
			if staticEval+futilityMargin <= alpha {
				s.Stats.FutilityPrunes.Add(1)
				continue
			}
		}

		childDelta := zobrist.ComputeMoveDelta(pos, m)
		unmake := pos.Make(m)
		childKey := s.Hasher.Update(key, childDelta)

		var score Score
		if i == 0 || !s.usesPVS() {
			score = -s.negamax(pos, childKey, depth-1, ply+1, -beta, -alpha, true)
		} else {
			// PVS null-window probe: assume move i is not better than the
			// best found so far, and only pay for a full re-search if it
			// proves that assumption wrong.
			score = -s.negamax(pos, childKey, depth-1, ply+1, -alpha-1, -alpha, true)
			if score > alpha && score < beta {
				score = -s.negamax(pos, childKey, depth-1, ply+1, -beta, -alpha, true)
			}
		}
		unmake()

		if score > best {
			best = score
			bestMove = m
		}
		if best > alpha {
			alpha = best
			bound = tt.BoundExact
			s.recordPV(ply, m)
		}
		if alpha >= beta {
			s.Stats.BetaCutoffs.Add(1)
			if i == 0 {
				s.Stats.FirstMoveCutoffs.Add(1)
			}
			if pos.IsQuiet(m) {
				s.Killers.Add(ply, m)
			}
			bound = tt.BoundLower
			break
		}
	}

	if s.Opts.TTEnabled && !s.aborted() {
		if best <= origAlpha {
			bound = tt.BoundUpper
		}
		s.TT.Store(key, ply, uint16(bestMove), int32(best), int8(depth), bound)
	}

	return best
}

// usesPVS reports whether the move loop should treat move 0 differently from
// the rest via a null-window probe. NEGAMAX_SINGLE and NEGAMAX_SMP search
// every move with the full window, the way negamax.py's plain _negamax does;
// only PVS_SINGLE narrows the window for moves after the first.
func (s *Searcher) usesPVS() bool {
	return s.Opts.SearchMode != SearchModeNegamaxSingle && s.Opts.SearchMode != SearchModeNegamaxSMP
}

func terminalScore(outcome position.Outcome, ply int) Score {
	switch outcome {
	case position.OutcomeCheckmate:
		return -MateIn(ply)
	default:
		return 0
	}
}
