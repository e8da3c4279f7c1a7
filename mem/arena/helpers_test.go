package arena_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/mem/arena"
	"github.com/joshuapare/memkit/mem/region"
	"github.com/joshuapare/memkit/mem/verify"
)

// newTestArena creates a heap-backed arena whose region is exactly length
// bytes (length must be a multiple of arena.WordSize).
func newTestArena(t testing.TB, length int) *arena.Arena {
	t.Helper()
	a, err := arena.Open(length, arena.Options{
		Provider: region.Heap(),
		PageSize: arena.WordSize,
	})
	require.NoError(t, err)
	require.Equal(t, length, a.Len())
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// mustAlloc allocates size bytes and fails the test on error.
func mustAlloc(t testing.TB, a *arena.Arena, size int) arena.Handle {
	t.Helper()
	h, err := a.Allocate(size)
	require.NoError(t, err, "Allocate(%d)", size)
	require.NotEqual(t, arena.Nil, h)
	return h
}

// layoutFreeBlocks carves free blocks of the given payload sizes, in address
// order, each followed by a small allocated separator so they cannot merge.
// The remainder of the region stays one trailing free block. Returns the
// handles of the (now free) blocks.
func layoutFreeBlocks(t testing.TB, a *arena.Arena, sizes ...int) []arena.Handle {
	t.Helper()
	handles := make([]arena.Handle, len(sizes))
	for i, sz := range sizes {
		handles[i] = mustAlloc(t, a, sz)
		mustAlloc(t, a, arena.WordSize) // separator
	}
	for _, h := range handles {
		require.NoError(t, a.Free(h))
	}
	assertInvariants(t, a)
	return handles
}

// assertInvariants fails the test if the arena's block list is malformed.
func assertInvariants(t testing.TB, a *arena.Arena) {
	t.Helper()
	require.NoError(t, verify.Arena(a))
}

// snapshot returns the arena report, failing the test on error.
func snapshot(t testing.TB, a *arena.Arena) arena.Report {
	t.Helper()
	r, err := a.Report()
	require.NoError(t, err)
	return r
}

// blockAt returns the block whose payload starts at h.
func blockAt(t testing.TB, a *arena.Arena, h arena.Handle) arena.BlockInfo {
	t.Helper()
	for _, b := range snapshot(t, a).Blocks {
		if b.Begin == int(h) {
			return b
		}
	}
	t.Fatalf("no block with payload at 0x%x", uint32(h))
	return arena.BlockInfo{}
}
