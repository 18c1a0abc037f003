// Package tt implements the search core's transposition table (spec §4.3):
// a fixed-size, power-of-two-sized open-addressed cache keyed by a
// zobrist.Key, storing a bound type (exact/lower/upper), a best move, a
// depth, and a score, with a generation-based replacement policy so a new
// search doesn't get starved by stale deep entries from an old one.
//
// The teacher's tt.go (src_teacher/src/clanpj/lisao/engine/tt.go) keeps two
// full Go-struct entries per slot behind an ordinary slice, replaced under
// the search goroutine's exclusive ownership. Lazy SMP (spec §4.9) means
// several goroutines probe and store into the same table concurrently, so
// this table instead packs each entry into two machine words and uses the
// XOR trick (store key^data, verify by re-deriving the key on load) to
// detect torn writes without a per-slot lock, the way lock-free
// transposition tables are conventionally built.
package tt

import (
	"sync/atomic"

	"github.com/KYLChiu/sporkfish/internal/zobrist"
)

// Bound classifies how a stored score relates to the true minimax value at
// the depth it was stored, mirroring the teacher's TTEvalT.
type Bound uint8

const (
	// BoundNone marks an empty or corrupted slot; never returned as a hit.
	BoundNone Bound = iota
	// BoundExact means score is the true fail-soft value of the node.
	BoundExact
	// BoundLower means the true value is at least score (a beta cutoff
	// occurred; the search never proved an exact value).
	BoundLower
	// BoundUpper means the true value is at most score (every move failed
	// low against alpha).
	BoundUpper
)

// Entry is the caller-facing, unpacked view of a stored position.
type Entry struct {
	Move   uint16 // engine move encoding; 0 means "no move recorded"
	Score  int32  // centipawns or a mate score, ply-adjusted by Load/Store
	Depth  int8
	Bound  Bound
	Hit    bool
}

// Table is a fixed-size lock-free transposition table. The zero value is
// not usable; construct with New.
type Table struct {
	slots      []slot
	mask       uint64
	generation atomic.Uint32
}

type slot struct {
	keyXORdata atomic.Uint64
	data       atomic.Uint64
}

// New builds a Table sized to hold approximately sizeMB megabytes of
// entries, rounding down to a power of two slot count the way the teacher's
// ttIndex relies on (index = hash & (len-1)).
func New(sizeMB int) *Table {
	const bytesPerSlot = 16
	want := sizeMB * 1024 * 1024 / bytesPerSlot
	n := 1
	for n*2 <= want && n < (1<<28) {
		n *= 2
	}
	if n < 1 {
		n = 1
	}
	return &Table{slots: make([]slot, n), mask: uint64(n - 1)}
}

// NewGame bumps the generation counter, marking every entry written before
// this call as stale for replacement purposes without clearing the table
// (spec §4.3: "a new game must not pay the cost of reallocating the table").
func (t *Table) NewGame() {
	t.generation.Add(1)
}

func (t *Table) index(key zobrist.Key) uint64 {
	return key & t.mask
}

// pack/unpack encode an Entry plus generation into a single 64-bit word.
// The move field is 16 bits (dragontoothmg's from/to/promotion encoding
// fits comfortably below that), which leaves room for a full 32-bit score:
// Mate is 100_000 and a mate-in-N score can run up to Mate±MaxPly, well
// beyond int16 range, so the score cannot be shrunk to spare bits for the
// move the way a material-only evaluation could.
//
//	bits 0-15  move (uint16)
//	bits 16-47 score (int32)
//	bits 48-55 depth (int8)
//	bits 56-57 bound (2 bits)
//	bits 58-63 generation (6 bits, wraps)
func pack(move uint16, score int32, depth int8, bound Bound, generation uint32) uint64 {
	return uint64(move) |
		uint64(uint32(score))<<16 |
		uint64(uint8(depth))<<48 |
		uint64(bound&0x3)<<56 |
		uint64(generation&0x3f)<<58
}

func unpack(data uint64) (move uint16, score int32, depth int8, bound Bound, generation uint32) {
	move = uint16(data)
	score = int32(uint32(data >> 16))
	depth = int8(uint8(data >> 48))
	bound = Bound((data >> 56) & 0x3)
	generation = uint32((data >> 58) & 0x3f)
	return
}

// Store records a search result for key, ply-adjusting a mate score to a
// mate-distance-from-this-node before packing it (spec §4.3: "mate scores
// are stored relative to the node, not the root, so a hit at a different
// ply still reports the correct distance to mate"). It replaces the current
// occupant unless that occupant is from the current generation and searched
// to a strictly greater depth — the teacher's "replace if depth is greater
// or eval is more accurate" rule, generalised with a generation check so a
// long-running search doesn't get starved by shallow probes from the same
// generation once move ordering is populated.
func (t *Table) Store(key zobrist.Key, ply int, move uint16, score int32, depth int8, bound Bound) {
	idx := t.index(key)
	s := &t.slots[idx]
	gen := t.generation.Load()

	if old := s.data.Load(); old != 0 {
		_, _, oldDepth, _, oldGen := unpack(old)
		if oldGen == gen&0x3f && oldDepth > depth {
			return
		}
	}

	stored := scoreToTT(score, ply)
	data := pack(move, stored, depth, bound, gen)
	s.data.Store(data)
	s.keyXORdata.Store(uint64(key) ^ data)
}

// Load probes key and, on a hit, returns the entry with its score
// ply-adjusted back to root-relative terms.
func (t *Table) Load(key zobrist.Key, ply int) Entry {
	idx := t.index(key)
	s := &t.slots[idx]

	data := s.data.Load()
	xored := s.keyXORdata.Load()
	if data == 0 || xored^data != uint64(key) {
		return Entry{}
	}

	move, score, depth, bound, _ := unpack(data)
	return Entry{
		Move:  move,
		Score: scoreFromTT(score, ply),
		Depth: depth,
		Bound: bound,
		Hit:   true,
	}
}

// mateScoreThreshold mirrors internal/search's MateThreshold (Mate -
// MaxPly); duplicated here as a plain constant to avoid an import cycle
// (search depends on tt, not the other way around). Keep this in sync with
// search.MateThreshold if Mate or MaxPly ever change.
const mateScoreThreshold = 100_000 - 128

// scoreToTT converts a root-relative score into a node-relative one before
// storage: a mate found N plies from the root becomes "mate in N-ply", so
// that a later probe at a different ply can re-root it correctly.
func scoreToTT(score int32, ply int) int32 {
	if score >= mateScoreThreshold {
		return score + int32(ply)
	}
	if score <= -mateScoreThreshold {
		return score - int32(ply)
	}
	return score
}

// scoreFromTT is the inverse of scoreToTT, applied on load.
func scoreFromTT(score int32, ply int) int32 {
	if score >= mateScoreThreshold {
		return score - int32(ply)
	}
	if score <= -mateScoreThreshold {
		return score + int32(ply)
	}
	return score
}

// Len reports the number of slots (a power of two), exposed for tests and
// UCI "hashfull" reporting.
func (t *Table) Len() int { return len(t.slots) }
