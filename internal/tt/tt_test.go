package tt

import (
	"sync"
	"testing"
)

func TestStoreLoadRoundTrip(t *testing.T) {
	table := New(1)
	var key uint64 = 0xdeadbeefcafef00d
	table.Store(key, 3, 0x1234, 55, 6, BoundExact)

	got := table.Load(key, 3)
	if !got.Hit {
		t.Fatal("expected a hit after store")
	}
	if got.Move != 0x1234 || got.Score != 55 || got.Depth != 6 || got.Bound != BoundExact {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadMissOnEmptyTable(t *testing.T) {
	table := New(1)
	if got := table.Load(0x123, 0); got.Hit {
		t.Fatalf("expected miss on empty table, got %+v", got)
	}
}

func TestMateScoreRerootedByPly(t *testing.T) {
	table := New(1)
	const key uint64 = 42
	// A mate score found 2 ply below the point of storage.
	table.Store(key, 5, 0, 100_000-2, 4, BoundExact)

	got := table.Load(key, 5)
	if got.Score != 100_000-2 {
		t.Fatalf("re-probing at the same ply should return the same score, got %d", got.Score)
	}

	// Probing the same slot as if it were found at a shallower ply must
	// rebase the mate distance, since the stored value is node-relative.
	shallow := table.Load(key, 2)
	if shallow.Score <= got.Score {
		t.Fatalf("mate score probed 3 ply closer to root should be larger: got %d, want > %d", shallow.Score, got.Score)
	}
}

func TestDeeperEntrySameGenerationSurvivesShallowerOverwrite(t *testing.T) {
	table := New(1)
	const key uint64 = 7
	table.Store(key, 0, 1, 10, 10, BoundExact)
	table.Store(key, 0, 2, 20, 3, BoundExact) // shallower, same generation: must not replace

	got := table.Load(key, 0)
	if got.Depth != 10 || got.Move != 1 {
		t.Fatalf("shallower same-generation store overwrote a deeper entry: got %+v", got)
	}
}

func TestNewGameAllowsShallowerEntryToReplace(t *testing.T) {
	table := New(1)
	const key uint64 = 7
	table.Store(key, 0, 1, 10, 10, BoundExact)
	table.NewGame()
	table.Store(key, 0, 2, 20, 3, BoundExact)

	got := table.Load(key, 0)
	if got.Move != 2 {
		t.Fatalf("new generation should be free to overwrite a stale entry: got %+v", got)
	}
}

func TestConcurrentStoreLoadDoesNotPanicOrCorrupt(t *testing.T) {
	table := New(1)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				key := uint64(g*1000 + i)
				table.Store(key, 0, uint16(i), int32(i), 1, BoundExact)
				_ = table.Load(key, 0)
			}
		}(g)
	}
	wg.Wait()
}
