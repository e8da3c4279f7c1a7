package arena

import (
	"math"

	"github.com/joshuapare/memkit/internal/buf"
)

const (
	// WordSize is the allocation granularity. Every payload size is a
	// multiple of it.
	WordSize = 4

	// HeaderSize is the size of the in-band block header (next + size).
	HeaderSize = 8

	// MinBlockSize is the smallest payload a split may leave behind. Smaller
	// remainders stay attached to the allocated block.
	MinBlockSize = 12

	// MaxArenaSize is the largest region an arena can manage. Offsets and
	// sizes are stored as 32-bit header fields.
	MaxArenaSize = math.MaxInt32

	// noNext marks the last block in the chain.
	noNext = 0

	// Header field offsets.
	nextOffset = 0
	sizeOffset = 4
)

// Handle denotes an allocated payload. It is the payload's byte offset from
// the start of the arena region.
type Handle uint32

// Nil is the zero Handle. It never denotes a block.
const Nil Handle = 0

// header is the decoded form of an in-band block header.
type header struct {
	next      uint32 // successor header offset, noNext for the last block
	size      int32  // payload bytes, always positive once decoded
	allocated bool
}

// end returns the offset one past this block's payload.
func (h header) end(off uint32) uint32 {
	return off + HeaderSize + uint32(h.size)
}

func (a *Arena) readHeader(off uint32) header {
	b := a.data[off : off+HeaderSize]
	raw := buf.I32LE(b[sizeOffset:])
	h := header{next: buf.U32LE(b[nextOffset:]), size: raw}
	if raw < 0 {
		h.size = -raw
		h.allocated = true
	}
	return h
}

func (a *Arena) writeHeader(off uint32, h header) {
	b := a.data[off : off+HeaderSize]
	raw := h.size
	if h.allocated {
		raw = -raw
	}
	buf.PutU32LE(b[nextOffset:], h.next)
	buf.PutI32LE(b[sizeOffset:], raw)
}

// alignWord rounds n up to the next multiple of WordSize.
func alignWord(n int) int {
	if rem := n % WordSize; rem != 0 {
		n += WordSize - rem
	}
	return n
}
