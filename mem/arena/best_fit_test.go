package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/mem/arena"
)

// TestBestFit_SmallestAdequate verifies that with free blocks {100, 40, 60}
// a 50-byte request lands in the 60-byte block.
func TestBestFit_SmallestAdequate(t *testing.T) {
	a := newTestArena(t, 4096)
	free := layoutFreeBlocks(t, a, 100, 40, 60)

	h := mustAlloc(t, a, 50)
	assert.Equal(t, free[2], h, "50 bytes should come from the 60-byte block")

	// 60 - (8 + 52) = 0 < MinBlockSize, so the whole block is handed out.
	got, err := a.SizeOf(h)
	require.NoError(t, err)
	assert.Equal(t, 60, got)
	assertInvariants(t, a)
}

// TestBestFit_ExactMatchWins verifies an exact-size block is chosen even when
// a larger fitting block precedes it.
func TestBestFit_ExactMatchWins(t *testing.T) {
	a := newTestArena(t, 4096)
	free := layoutFreeBlocks(t, a, 64, 32)

	h := mustAlloc(t, a, 32)
	assert.Equal(t, free[1], h, "exact 32-byte block should win over the earlier 64-byte block")
	assertInvariants(t, a)
}

// TestBestFit_ExactMatchAfterBestCandidate verifies an exact match found late
// in the scan replaces an earlier, tighter-than-others candidate.
func TestBestFit_ExactMatchAfterBestCandidate(t *testing.T) {
	a := newTestArena(t, 4096)
	free := layoutFreeBlocks(t, a, 200, 36, 32)

	h := mustAlloc(t, a, 30) // rounds to 32
	assert.Equal(t, free[2], h)
}

// TestBestFit_TieGoesToLowestAddress verifies equal-size candidates resolve
// to the first one in address order.
func TestBestFit_TieGoesToLowestAddress(t *testing.T) {
	a := newTestArena(t, 4096)
	free := layoutFreeBlocks(t, a, 100, 48, 48, 48)

	h := mustAlloc(t, a, 40)
	assert.Equal(t, free[1], h, "first 48-byte block should win the tie")

	h2 := mustAlloc(t, a, 40)
	assert.Equal(t, free[2], h2, "next 48-byte block is the new first candidate")
	assertInvariants(t, a)
}

// TestBestFit_SkipsAllocated verifies allocated blocks are never candidates,
// even when their size would be an exact match.
func TestBestFit_SkipsAllocated(t *testing.T) {
	a := newTestArena(t, 512)
	first := mustAlloc(t, a, 64)

	h := mustAlloc(t, a, 64)
	assert.NotEqual(t, first, h)
	assertInvariants(t, a)
}

// TestBestFit_FallsBackToTrailingBlock verifies requests larger than every
// hole come from the trailing free block.
func TestBestFit_FallsBackToTrailingBlock(t *testing.T) {
	a := newTestArena(t, 4096)
	free := layoutFreeBlocks(t, a, 40, 60)

	h := mustAlloc(t, a, 500)
	for _, f := range free {
		assert.NotEqual(t, f, h)
	}
	b := blockAt(t, a, h)
	assert.True(t, b.Allocated)
	assert.Equal(t, 500, b.Size)
	assertInvariants(t, a)
}

// TestAllocate_RoundsToWord verifies requests are rounded up to WordSize.
func TestAllocate_RoundsToWord(t *testing.T) {
	tests := []struct {
		request int
		granted int
	}{
		{1, 4},
		{3, 4},
		{4, 4},
		{5, 8},
		{13, 16},
		{100, 100},
	}
	for _, tt := range tests {
		a := newTestArena(t, 1024)
		h := mustAlloc(t, a, tt.request)
		got, err := a.SizeOf(h)
		require.NoError(t, err)
		assert.Equal(t, tt.granted, got, "Allocate(%d)", tt.request)
		assertInvariants(t, a)
	}
}

// TestAllocate_HandleFollowsHeader verifies the first allocation's payload
// starts right after the head block's header.
func TestAllocate_HandleFollowsHeader(t *testing.T) {
	a := newTestArena(t, 256)
	h := mustAlloc(t, a, 16)
	assert.Equal(t, arena.Handle(arena.HeaderSize), h)

	h2 := mustAlloc(t, a, 16)
	assert.Equal(t, arena.Handle(2*arena.HeaderSize+16), h2)
}

func TestAllocate_InvalidSize(t *testing.T) {
	a := newTestArena(t, 256)
	before := snapshot(t, a)

	for _, size := range []int{0, -1, -100} {
		h, err := a.Allocate(size)
		require.ErrorIs(t, err, arena.ErrInvalidSize)
		require.Equal(t, arena.Nil, h)
	}
	require.Equal(t, before, snapshot(t, a))
}

// TestAllocate_OutOfMemory verifies requests larger than every free block
// fail without touching the block list.
func TestAllocate_OutOfMemory(t *testing.T) {
	a := newTestArena(t, 256)
	before := snapshot(t, a)

	_, err := a.Allocate(256 - arena.HeaderSize + 1)
	require.ErrorIs(t, err, arena.ErrOutOfMemory)
	require.Equal(t, before, snapshot(t, a))

	// The whole payload is still available as one block.
	h := mustAlloc(t, a, 256-arena.HeaderSize)
	assert.Equal(t, arena.Handle(arena.HeaderSize), h)

	_, err = a.Allocate(arena.WordSize)
	require.ErrorIs(t, err, arena.ErrOutOfMemory)
}

// TestAllocate_OutOfMemoryFragmented verifies a request fails when free space
// is plentiful in total but no single block is large enough.
func TestAllocate_OutOfMemoryFragmented(t *testing.T) {
	a := newTestArena(t, 512)
	var hs []arena.Handle
	for {
		h, err := a.Allocate(40)
		if err != nil {
			require.ErrorIs(t, err, arena.ErrOutOfMemory)
			break
		}
		hs = append(hs, h)
	}
	require.Greater(t, len(hs), 4)

	// Free every other block: plenty of free bytes, none contiguous past 40.
	for i := 0; i < len(hs); i += 2 {
		require.NoError(t, a.Free(hs[i]))
	}
	assertInvariants(t, a)

	u, err := a.Usage()
	require.NoError(t, err)
	require.Greater(t, u.Free, 100)

	before := snapshot(t, a)
	_, err = a.Allocate(u.LargestFree + arena.WordSize)
	require.ErrorIs(t, err, arena.ErrOutOfMemory)
	require.Equal(t, before, snapshot(t, a))
}

func TestAllocate_HugeRequest(t *testing.T) {
	a := newTestArena(t, 256)
	_, err := a.Allocate(int(^uint(0) >> 1))
	require.ErrorIs(t, err, arena.ErrOutOfMemory)
}

func TestAllocate_StatsCounters(t *testing.T) {
	a := newTestArena(t, 256)
	mustAlloc(t, a, 16)
	_, err := a.Allocate(0)
	require.Error(t, err)

	s := a.Stats()
	assert.Equal(t, 2, s.AllocCalls)
	assert.Equal(t, 1, s.AllocFailures)
	assert.Equal(t, 1, s.Splits)
	assert.Equal(t, int64(16), s.BytesAllocated)
}
