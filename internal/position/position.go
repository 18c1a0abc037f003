// Package position adapts github.com/dylhunn/dragontoothmg's bitboard board
// representation to the Position service contract that the search core
// consumes: legal move generation, make/unmake with stack discipline, check
// and game-over detection, capture/quiet/check classification of moves, and
// FEN interchange. Everything under internal/search treats *Position as an
// opaque service and never reaches into dragontoothmg directly.
package position

import (
	"fmt"
	"math/bits"

	dragon "github.com/dylhunn/dragontoothmg"
)

// Move is the engine-wide move representation: dragontoothmg's packed
// from/to/promotion/flags encoding. Equality is native Go ==.
type Move = dragon.Move

// NoMove is the zero value of Move, used as a sentinel "no move" the way the
// teacher engine uses it throughout its search stack.
const NoMove Move = 0

// UnmakeFunc restores a Position to the state it had before the
// corresponding Make/MakeNull call. It must be called exactly once, in
// reverse order of Make calls (stack discipline).
type UnmakeFunc func()

// Color identifies a side. dragontoothmg has no Color type of its own — a
// Board just tracks Wtomove and keeps a separate Bitboards value per side —
// so this is a thin enum introduced at the Position boundary for every
// caller that needs to name "the other side" or index into per-side state.
type Color int

const (
	White Color = iota
	Black
)

// Outcome classifies a terminal position.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCheckmate
	OutcomeStalemate
	OutcomeDrawInsufficientMaterial
	OutcomeDrawFiftyMove
)

// Position wraps a dragontoothmg.Board and is owned by exactly one driver at
// a time; the search core borrows it for the duration of one search call and
// must leave it balanced (every Make paired with its returned unmake).
type Position struct {
	board dragon.Board
}

// New returns the standard starting position.
func New() *Position {
	return &Position{board: dragon.ParseFen(dragon.Startpos)}
}

// FromFEN parses a FEN string into a Position. dragontoothmg panics on
// malformed input; we recover that into a plain error so InvalidPosition
// (spec §7) never crashes the driver.
func FromFEN(fen string) (pos *Position, err error) {
	defer func() {
		if r := recover(); r != nil {
			pos = nil
			err = fmt.Errorf("position: invalid FEN %q: %v", fen, r)
		}
	}()
	b := dragon.ParseFen(fen)
	return &Position{board: b}, nil
}

// FEN renders the current position back to FEN.
func (p *Position) FEN() string {
	return p.board.ToFen()
}

// SideToMove reports which color is to move.
func (p *Position) SideToMove() Color {
	if p.board.Wtomove {
		return White
	}
	return Black
}

// Hash returns dragontoothmg's own incremental Zobrist-style key. This is
// distinct from internal/zobrist's key (spec §6 notes the PolyGlot book key
// and the engine's internal key are different spaces). Nothing in this
// repository calls it: the opening book computes its own PolyGlot key and
// the search core uses internal/zobrist.
func (p *Position) Hash() uint64 {
	return p.board.Hash()
}

// LegalMoves returns every legal move from the current position, in
// arbitrary (engine-generated) order; move ordering is a search concern, not
// a Position concern.
func (p *Position) LegalMoves() []Move {
	return p.board.GenerateLegalMoves()
}

// Make plays m and returns a closure that undoes it. Callers must call the
// closure before making any further move from an ancestor position.
func (p *Position) Make(m Move) UnmakeFunc {
	return p.board.Apply(m)
}

// MakeNull plays a null move (side-to-move flip, en-passant cleared, no
// piece movement) for use by null-move pruning (spec §4.6 step 6).
func (p *Position) MakeNull() UnmakeFunc {
	return p.board.ApplyNullMove()
}

// IsCheck reports whether the side to move is in check.
func (p *Position) IsCheck() bool {
	return p.board.OurKingInCheck()
}

// IsGameOver reports the terminal outcome, if any, of the current position.
// It performs move generation, so callers that already generated moves this
// node should prefer checking len(moves) == 0 themselves and only call this
// to distinguish stalemate from checkmate.
func (p *Position) IsGameOver() (Outcome, bool) {
	if len(p.LegalMoves()) == 0 {
		if p.IsCheck() {
			return OutcomeCheckmate, true
		}
		return OutcomeStalemate, true
	}
	if p.board.Halfmoveclock >= 100 {
		return OutcomeDrawFiftyMove, true
	}
	if p.isInsufficientMaterial() {
		return OutcomeDrawInsufficientMaterial, true
	}
	return OutcomeNone, false
}

// bitboardsFor returns dragontoothmg's per-side Bitboards value, the way
// evaluation_util.go's helpers in the pack index a Board's White/Black
// fields directly rather than through a color-indexed array.
func (p *Position) bitboardsFor(c Color) dragon.Bitboards {
	if c == White {
		return p.board.White
	}
	return p.board.Black
}

// HasNonPawnMaterial reports whether the given side has any piece other than
// pawns and its king; used to gate null-move pruning away from zugzwang-prone
// king-and-pawn endgames (spec §9 open question (b)).
func (p *Position) HasNonPawnMaterial(c Color) bool {
	bb := p.bitboardsFor(c)
	return (bb.Knights | bb.Bishops | bb.Rooks | bb.Queens) != 0
}

// nonPawnCount counts both sides' non-pawn pieces, kings included, the
// quantity the teacher's "at least 4 non-pawn pieces (incl. both kings)"
// null-move rule in negalphabeta.go uses. This repository's null-move gate
// uses HasNonPawnMaterial instead, and nothing calls NonPawnCount.
func (p *Position) nonPawnCount() int {
	whiteNonPawn := p.board.White.All &^ p.board.White.Pawns
	blackNonPawn := p.board.Black.All &^ p.board.Black.Pawns
	return bits.OnesCount64(whiteNonPawn | blackNonPawn)
}

// NonPawnCount exposes nonPawnCount to the search package.
func (p *Position) NonPawnCount() int { return p.nonPawnCount() }

func (p *Position) isInsufficientMaterial() bool {
	pawnsRooksQueens := p.board.White.Pawns | p.board.Black.Pawns |
		p.board.White.Rooks | p.board.Black.Rooks |
		p.board.White.Queens | p.board.Black.Queens
	if pawnsRooksQueens != 0 {
		return false
	}
	minors := p.board.White.Knights | p.board.White.Bishops |
		p.board.Black.Knights | p.board.Black.Bishops
	return bits.OnesCount64(minors) <= 1
}

// Piece identifies a piece kind, independent of color.
type Piece = dragon.Piece

const (
	Pawn   Piece = dragon.Pawn
	Knight Piece = dragon.Knight
	Bishop Piece = dragon.Bishop
	Rook   Piece = dragon.Rook
	Queen  Piece = dragon.Queen
	King   Piece = dragon.King
)

// PieceAt returns the piece occupying sq (0-63) and its color, and whether
// any piece is there.
func (p *Position) PieceAt(sq uint8) (kind Piece, color Color, occupied bool) {
	mask := uint64(1) << sq
	for _, c := range [2]Color{White, Black} {
		bb := p.bitboardsFor(c)
		switch {
		case bb.Pawns&mask != 0:
			return dragon.Pawn, c, true
		case bb.Knights&mask != 0:
			return dragon.Knight, c, true
		case bb.Bishops&mask != 0:
			return dragon.Bishop, c, true
		case bb.Rooks&mask != 0:
			return dragon.Rook, c, true
		case bb.Queens&mask != 0:
			return dragon.Queen, c, true
		case bb.Kings&mask != 0:
			return dragon.King, c, true
		}
	}
	return 0, 0, false
}

// IsCapture reports whether m captures a piece, including en-passant, using
// dragontoothmg's own IsCapture helper (the same one GooseEngine's search
// calls before applying a move) rather than re-deriving it from PieceAt.
func (p *Position) IsCapture(m Move) bool {
	return dragon.IsCapture(m, &p.board)
}

// IsPromotion reports whether m promotes a pawn.
func (p *Position) IsPromotion(m Move) bool {
	return m.Promote() != dragon.Nothing
}

// IsQueenPromotion reports whether m promotes a pawn to a queen, the only
// promotion quiescence search considers (spec §4.5 point 3): an
// under-promotion is essentially never the best move in a position quiet
// enough that only its captures and queen promotions need resolving.
func (p *Position) IsQueenPromotion(m Move) bool {
	return m.Promote() == dragon.Queen
}

// GivesCheck reports whether playing m leaves the opponent in check. This
// makes the move, probes, and unmakes it, so callers on a hot path should
// cache the result per move rather than calling this repeatedly.
func (p *Position) GivesCheck(m Move) bool {
	unmake := p.Make(m)
	defer unmake()
	return p.board.OurKingInCheck()
}

// IsQuiet reports whether m is neither a capture nor a promotion. Spec §4.4
// and §4.6 use "quiet" purely in this material sense; check status is
// tracked separately.
func (p *Position) IsQuiet(m Move) bool {
	return !p.IsCapture(m) && !p.IsPromotion(m)
}

// MoveString renders long algebraic notation, e.g. "e2e4" or "e7e8q".
func MoveString(m Move) string {
	return m.String()
}

// ParseMove parses a long-algebraic move string against the current
// position's legal moves, falling back to context-free parsing if it is not
// found (mirrors the teacher's UCI "position ... moves" handling).
func (p *Position) ParseMove(s string) (Move, error) {
	for _, mv := range p.LegalMoves() {
		if mv.String() == s {
			return mv, nil
		}
	}
	mv, err := dragon.ParseMove(s)
	if err != nil {
		return NoMove, fmt.Errorf("position: could not parse move %q: %w", s, err)
	}
	return mv, nil
}

// CastlingRights returns dragontoothmg's raw castling-rights bitmask (one
// bit per side/wing), used by internal/zobrist to fold castling state into
// the hash.
func (p *Position) CastlingRights() uint8 {
	return uint8(p.board.Castlerights)
}

// EnPassantFile returns the file (0-7) open to en-passant capture, if any.
func (p *Position) EnPassantFile() (file uint8, ok bool) {
	ep := p.board.Enpassant
	if ep == 0 {
		return 0, false
	}
	return ep % 8, true
}

// Clone returns a deep, independent copy of the position for use by drivers
// that need to search from a position while retaining their own copy (e.g.
// the UCI adapter handing its search goroutine a copy, or each Lazy SMP
// worker).
func (p *Position) Clone() *Position {
	cp := *p
	return &cp
}
