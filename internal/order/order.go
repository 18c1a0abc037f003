// Package order implements move ordering (spec §4.4): MVV-LVA scoring for
// captures, a killer-move table for quiet moves that caused a beta cutoff at
// a given ply, and the composite ordering that ranks the TT move first,
// then captures by MVV-LVA, then killers, then the rest.
package order

import (
	"sort"

	"github.com/KYLChiu/sporkfish/internal/position"
)

// mvvLva[victim][attacker] mirrors move_ordering.py's MvvLvaHeuristic table:
// rows are the captured piece, columns the capturing piece, both indexed
// Pawn..King as 0..5. A king is never a legal capture target, so its row is
// all zero.
var mvvLva = [6][6]int{
	{15, 14, 13, 12, 11, 10}, // victim pawn
	{25, 24, 23, 22, 21, 20}, // victim knight
	{35, 34, 33, 32, 31, 30}, // victim bishop
	{45, 44, 43, 42, 41, 40}, // victim rook
	{55, 54, 53, 52, 51, 50}, // victim queen
	{0, 0, 0, 0, 0, 0},       // victim king (unreachable)
}

func pieceIndex(k position.Piece) int {
	return int(k) - int(position.Pawn)
}

// MVVLVA scores a capture by (victim value, attacker value), preferring
// capturing a valuable piece with a cheap one. It returns 0 for non-captures.
func MVVLVA(pos *position.Position, m position.Move) int {
	if !pos.IsCapture(m) {
		return 0
	}
	attacker, _, ok := pos.PieceAt(m.From())
	if !ok {
		return 0
	}
	victim, _, ok := pos.PieceAt(m.To())
	if !ok {
		// En-passant: the captured pawn isn't on the destination square.
		victim = position.Pawn
	}
	vi, ai := pieceIndex(victim), pieceIndex(attacker)
	if vi < 0 || vi > 5 || ai < 0 || ai > 5 {
		return 0
	}
	return mvvLva[vi][ai]
}

// KillersPerPly mirrors the teacher's NKillersPerDepth: how many quiet
// cutoff moves are remembered per ply, most-recently-useful first.
const KillersPerPly = 2

// MaxPly bounds how deep the killer table (and search recursion generally)
// goes, matching the teacher's MaxDepth-sized KillerMoveTableT.
const MaxPly = 128

// Killers is a per-ply table of recently successful quiet moves, used to
// order quiet moves that previously caused a beta cutoff at the same ply
// ahead of untried quiet moves, without the cost of a full history table.
type Killers struct {
	moves [MaxPly][KillersPerPly]position.Move
}

// NewKillers returns an empty killer table.
func NewKillers() *Killers { return &Killers{} }

// Add records move as a killer at ply, shifting older killers down and
// dropping duplicates, mirroring the teacher's addKillerMove. Slot 1 (index
// 0) always holds the most recently recorded killer, per spec §4.4.
func (k *Killers) Add(ply int, move position.Move) {
	if ply < 0 || ply >= MaxPly || move == position.NoMove {
		return
	}
	slots := &k.moves[ply]
	if slots[0] == move {
		return
	}
	for i := KillersPerPly - 1; i > 0; i-- {
		slots[i] = slots[i-1]
	}
	slots[0] = move
}

// At returns the killer moves for ply, most useful (slot 1, index 0) first.
func (k *Killers) At(ply int) [KillersPerPly]position.Move {
	if ply < 0 || ply >= MaxPly {
		return [KillersPerPly]position.Move{}
	}
	return k.moves[ply]
}

// IsKiller reports whether move is a remembered killer at ply.
func (k *Killers) IsKiller(ply int, move position.Move) bool {
	return k.Slot(ply, move) >= 0
}

// Slot returns the killer table slot (0-based; 0 is the newest, matching
// spec §4.4's "slot 1 is newest") move occupies at ply, or -1 if it isn't a
// remembered killer there. Callers weight slot 0 above slot 1 (spec §4.4
// point 3): a more recently useful killer is a better ordering signal than
// one that hasn't caused a cutoff since.
func (k *Killers) Slot(ply int, move position.Move) int {
	for i, km := range k.At(ply) {
		if km != position.NoMove && km == move {
			return i
		}
	}
	return -1
}

// Mode selects which ordering source(s) contribute to a move's score
// (spec §4.4 points 3-4), matching the §6 option vocabulary verbatim so
// internal/config can unmarshal it directly.
type Mode string

const (
	// ModeMVVLVA ranks captures by MVV-LVA value alone; quiet moves and
	// killers all score 0 and keep their generated order.
	ModeMVVLVA Mode = "MVV_LVA"
	// ModeKiller ranks killer moves ahead of other quiets; captures are not
	// specially favoured over other quiets beyond being non-killers.
	ModeKiller Mode = "KILLER"
	// ModeComposite combines both sources, each scaled by its own Weights
	// field, and is the default: it subsumes ModeMVVLVA and ModeKiller when
	// one of the two weights is zero.
	ModeComposite Mode = "COMPOSITE"
)

// Weights scales each ordering source's contribution to a move's composite
// score. A weight of zero disables that source without needing a separate
// Mode (spec §4.4 point 4).
type Weights struct {
	MVVLVA int
	Killer int
}

// ttSentinel is added to the TT move's score so it always sorts first
// regardless of mode or weights, mirroring the fixed "TT move first" band
// the teacher's move ordering always keeps ahead of any heuristic score.
const ttSentinel = 1 << 30

// killerScore weights slot 0 (the newest killer) above slot 1, rather than
// treating every remembered killer as equally useful (spec §4.4 point 3).
func killerScore(killers *Killers, ply int, m position.Move, weight int) int {
	if killers == nil {
		return 0
	}
	switch killers.Slot(ply, m) {
	case 0:
		return weight
	case 1:
		return weight / 2
	default:
		return 0
	}
}

// Order sorts moves in place for search at the given ply: the transposition
// table's suggested move first (if present among moves), then by the
// weighted combination of MVV-LVA and killer scores that mode selects.
func Order(pos *position.Position, moves []position.Move, ttMove position.Move, killers *Killers, ply int, mode Mode, weights Weights) {
	type scored struct {
		move  position.Move
		value int
	}
	scoredMoves := make([]scored, len(moves))
	for i, m := range moves {
		if ttMove != position.NoMove && m == ttMove {
			scoredMoves[i] = scored{m, ttSentinel}
			continue
		}
		var value int
		switch mode {
		case ModeMVVLVA:
			value = weights.MVVLVA * MVVLVA(pos, m)
		case ModeKiller:
			value = killerScore(killers, ply, m, weights.Killer)
		default: // ModeComposite and any unrecognised mode fall back to it.
			value = weights.MVVLVA*MVVLVA(pos, m) + killerScore(killers, ply, m, weights.Killer)
		}
		scoredMoves[i] = scored{m, value}
	}
	sort.SliceStable(scoredMoves, func(i, j int) bool {
		return scoredMoves[i].value > scoredMoves[j].value
	})
	for i, sm := range scoredMoves {
		moves[i] = sm.move
	}
}
