// Package zobrist implements the engine's own 64-bit Zobrist hasher (spec
// §4.1), independent of any hash the underlying position service maintains
// for its own purposes (e.g. a PolyGlot-compatible key for opening book
// lookups — see internal/book). It is built once at process start from a
// fixed seed so that hashes are reproducible across runs, and it supports
// both full recomputation and incremental update from a move delta; the two
// must always agree (spec §8 invariant 1).
package zobrist

import (
	"math/rand"

	"github.com/KYLChiu/sporkfish/internal/position"
)

// Key is a 64-bit Zobrist hash.
type Key = uint64

// seed is fixed so that Hasher construction is fully reproducible: the same
// seed must always produce the same 781 random values, per spec §4.1.
const seed = 0x53706f726b // "Spork" in hex, arbitrary but fixed

const numPieceKinds = 7 // dragontoothmg.Nothing=0 plus Pawn..King=1..6; index 0 is never used

// Hasher holds the 781 random values spec §4.1 requires: 768 piece/square
// keys (12 pieces × 64 squares), 1 side-to-move key, 4 castling-right keys,
// and 8 en-passant-file keys.
type Hasher struct {
	pieceSquare [2][numPieceKinds][64]uint64
	sideToMove  uint64
	castling    [4]uint64
	epFile      [8]uint64
}

// NewHasher builds a Hasher from the fixed seed. It is safe to share a
// single Hasher across every search and every goroutine: it is immutable
// after construction (spec §5 "Shared resources").
func NewHasher() *Hasher {
	r := rand.New(rand.NewSource(seed))
	h := &Hasher{}
	for c := 0; c < 2; c++ {
		for k := 1; k < numPieceKinds; k++ {
			for sq := 0; sq < 64; sq++ {
				h.pieceSquare[c][k][sq] = r.Uint64()
			}
		}
	}
	h.sideToMove = r.Uint64()
	for i := range h.castling {
		h.castling[i] = r.Uint64()
	}
	for i := range h.epFile {
		h.epFile[i] = r.Uint64()
	}
	return h
}

// ToggleSideToMove flips the side-to-move bit of a key, used by null-move
// pruning where no piece moves but the mover still changes.
func (h *Hasher) ToggleSideToMove(key Key) Key {
	return key ^ h.sideToMove
}

// Hash computes the full Zobrist key for pos from scratch.
func (h *Hasher) Hash(pos *position.Position) Key {
	var key Key
	for sq := uint8(0); sq < 64; sq++ {
		kind, color, occupied := pos.PieceAt(sq)
		if !occupied {
			continue
		}
		key ^= h.pieceSquare[colorIndex(color)][kind][sq]
	}
	if pos.SideToMove() == position.Black {
		key ^= h.sideToMove
	}
	rights := pos.CastlingRights()
	for i := 0; i < 4; i++ {
		if rights&(1<<uint(i)) != 0 {
			key ^= h.castling[i]
		}
	}
	if file, ok := pos.EnPassantFile(); ok {
		key ^= h.epFile[file]
	}
	return key
}

// PieceSquare identifies one piece occupying one square, used to describe
// what a move added or removed for incremental hashing.
type PieceSquare struct {
	Square uint8
	Kind   position.Piece
	Color  position.Color
}

// MoveDelta captures everything a move changes that the hash depends on:
// which (piece, square) pairs left the board, which arrived, and how
// castling rights and the en-passant file changed. ComputeMoveDelta builds
// one from a Position immediately before Make is called.
type MoveDelta struct {
	Removed, Added            []PieceSquare
	PrevCastling, NewCastling uint8
	PrevEPFile, NewEPFile     uint8
	PrevEPOk, NewEPOk         bool
}

// ComputeMoveDelta plays m on pos (and unmakes it before returning) to
// observe exactly which squares and rights the move touches, including the
// non-local effects of en-passant captures and castling rook moves.
func ComputeMoveDelta(pos *position.Position, m position.Move) MoveDelta {
	fromSq, toSq := m.From(), m.To()
	movingKind, movingColor, _ := pos.PieceAt(fromSq)
	capturedKind, capturedColor, captured := pos.PieceAt(toSq)
	isEnPassant := movingKind == position.Pawn && !captured && fromSq%8 != toSq%8

	prevCastling := pos.CastlingRights()
	prevEPFile, prevEPOk := pos.EnPassantFile()

	var removed, added []PieceSquare
	removed = append(removed, PieceSquare{fromSq, movingKind, movingColor})
	if captured {
		removed = append(removed, PieceSquare{toSq, capturedKind, capturedColor})
	}
	if isEnPassant {
		epCapturedSquare := (fromSq/8)*8 + toSq%8
		removed = append(removed, PieceSquare{epCapturedSquare, position.Pawn, opposite(movingColor)})
	}

	var rookFrom, rookTo uint8
	isCastle := movingKind == position.King && absDiff(fromSq, toSq) == 2
	if isCastle {
		rookFrom, rookTo = castlingRookSquares(movingColor, toSq)
		removed = append(removed, PieceSquare{rookFrom, position.Rook, movingColor})
	}

	unmake := pos.Make(m)
	newCastling := pos.CastlingRights()
	newEPFile, newEPOk := pos.EnPassantFile()
	finalKind, finalColor, _ := pos.PieceAt(toSq) // reflects promotion, if any
	added = append(added, PieceSquare{toSq, finalKind, finalColor})
	if isCastle {
		added = append(added, PieceSquare{rookTo, position.Rook, movingColor})
	}
	unmake()

	return MoveDelta{
		Removed:      removed,
		Added:        added,
		PrevCastling: prevCastling,
		NewCastling:  newCastling,
		PrevEPFile:   prevEPFile,
		NewEPFile:    newEPFile,
		PrevEPOk:     prevEPOk,
		NewEPOk:      newEPOk,
	}
}

// Update folds a MoveDelta into key without recomputing the whole hash.
func (h *Hasher) Update(key Key, d MoveDelta) Key {
	for _, ps := range d.Removed {
		key ^= h.pieceSquare[colorIndex(ps.Color)][ps.Kind][ps.Square]
	}
	for _, ps := range d.Added {
		key ^= h.pieceSquare[colorIndex(ps.Color)][ps.Kind][ps.Square]
	}
	key ^= h.sideToMove
	for i := 0; i < 4; i++ {
		bit := uint8(1) << uint(i)
		if d.PrevCastling&bit != d.NewCastling&bit {
			key ^= h.castling[i]
		}
	}
	if d.PrevEPOk {
		key ^= h.epFile[d.PrevEPFile]
	}
	if d.NewEPOk {
		key ^= h.epFile[d.NewEPFile]
	}
	return key
}

func colorIndex(c position.Color) int {
	if c == position.White {
		return 0
	}
	return 1
}

func opposite(c position.Color) position.Color {
	if c == position.White {
		return position.Black
	}
	return position.White
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// castlingRookSquares returns the rook's from/to squares for a king move of
// two files, keyed by which side castled and which square the king landed
// on (file c => queenside, file g => kingside).
func castlingRookSquares(c position.Color, kingTo uint8) (from, to uint8) {
	kingside := kingTo%8 == 6
	rank := uint8(0)
	if c == position.Black {
		rank = 7
	}
	if kingside {
		return rank*8 + 7, rank*8 + 5
	}
	return rank * 8, rank*8 + 3
}
