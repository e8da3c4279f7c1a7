package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/mem/region"
)

func newInternalArena(t *testing.T, length int) *Arena {
	t.Helper()
	a, err := Open(length, Options{Provider: region.Heap(), PageSize: WordSize})
	require.NoError(t, err)
	return a
}

// TestHeaderEncoding verifies the in-band layout: next offset, then a size
// whose sign carries the allocated flag.
func TestHeaderEncoding(t *testing.T) {
	a := newInternalArena(t, 64)

	a.writeHeader(16, header{next: 40, size: 16, allocated: true})
	assert.Equal(t, []byte{40, 0, 0, 0, 0xf0, 0xff, 0xff, 0xff}, a.data[16:24])
	assert.Equal(t, header{next: 40, size: 16, allocated: true}, a.readHeader(16))

	a.writeHeader(16, header{next: noNext, size: 24})
	assert.Equal(t, []byte{0, 0, 0, 0, 24, 0, 0, 0}, a.data[16:24])
	assert.Equal(t, header{next: noNext, size: 24}, a.readHeader(16))
}

func TestHeaderEnd(t *testing.T) {
	h := header{size: 40}
	assert.Equal(t, uint32(100+HeaderSize+40), h.end(100))
}

func TestAlignWord(t *testing.T) {
	for n, want := range map[int]int{1: 4, 4: 4, 5: 8, 8: 8, 9: 12, 1023: 1024} {
		assert.Equal(t, want, alignWord(n), "alignWord(%d)", n)
	}
}

// TestBlockIndexPrev verifies predecessor lookup through rank/select.
func TestBlockIndexPrev(t *testing.T) {
	x := newBlockIndex()
	for _, off := range []uint32{0, 24, 80, 200} {
		x.add(off)
	}

	_, ok := x.prev(0)
	assert.False(t, ok, "head has no predecessor")

	p, ok := x.prev(80)
	require.True(t, ok)
	assert.Equal(t, uint32(24), p)

	p, ok = x.prev(200)
	require.True(t, ok)
	assert.Equal(t, uint32(80), p)

	x.remove(80)
	p, ok = x.prev(200)
	require.True(t, ok)
	assert.Equal(t, uint32(24), p)
	assert.False(t, x.contains(80))
	assert.Len(t, x.offsets(), 3)
	assert.Equal(t, []uint32{0, 24, 200}, x.offsets())
}

// TestIndexTracksChain verifies the index follows splits and merges.
func TestIndexTracksChain(t *testing.T) {
	a := newInternalArena(t, 256)

	h1, err := a.Allocate(16)
	require.NoError(t, err)
	h2, err := a.Allocate(16)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 24, 48}, a.index.offsets())

	require.NoError(t, a.Free(h2))
	assert.Equal(t, []uint32{0, 24}, a.index.offsets())

	require.NoError(t, a.Free(h1))
	assert.Equal(t, []uint32{0}, a.index.offsets())
}

// TestWalk_BrokenChain verifies Walk refuses to follow a next pointer that
// goes backwards.
func TestWalk_BrokenChain(t *testing.T) {
	a := newInternalArena(t, 256)
	_, err := a.Allocate(16)
	require.NoError(t, err)

	a.writeHeader(24, header{next: 8, size: 16})
	_, err = a.Blocks()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken chain")
}
