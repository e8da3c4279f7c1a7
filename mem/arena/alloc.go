package arena

import "fmt"

// Allocate reserves at least size bytes and returns a handle to the payload.
//
// The size is rounded up to a multiple of WordSize. The block is chosen by
// best fit: an exact-size free block wins outright, otherwise the smallest
// larger free block is used and the lowest address wins ties. When no free
// block is large enough, Allocate returns ErrOutOfMemory and the arena is
// unchanged.
func (a *Arena) Allocate(size int) (Handle, error) {
	a.stats.AllocCalls++

	h, err := a.allocate(size)
	if err != nil {
		a.stats.AllocFailures++
		a.log.Debug("allocate failed", "size", size, "error", err)
		return Nil, err
	}
	return h, nil
}

func (a *Arena) allocate(size int) (Handle, error) {
	if err := a.ready(); err != nil {
		return Nil, err
	}
	if size <= 0 {
		return Nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size > len(a.data)-HeaderSize {
		return Nil, fmt.Errorf("%w: %d bytes exceeds region", ErrOutOfMemory, size)
	}
	need := int32(alignWord(size))

	off, blk, ok := a.bestFit(need)
	if !ok {
		return Nil, fmt.Errorf("%w: no free block holds %d bytes", ErrOutOfMemory, need)
	}

	if blk.size-(HeaderSize+need) >= MinBlockSize {
		// Split: allocate the head, leave the tail free in the same position.
		tailOff := off + HeaderSize + uint32(need)
		a.writeHeader(tailOff, header{
			next: blk.next,
			size: blk.size - HeaderSize - need,
		})
		a.index.add(tailOff)
		a.stats.Splits++

		a.log.Debug("split block", "offset", off, "size", blk.size, "need", need, "tail", tailOff)

		blk.next = tailOff
		blk.size = need
	}

	blk.allocated = true
	a.writeHeader(off, blk)
	a.stats.BytesAllocated += int64(blk.size)

	a.log.Debug("allocate", "size", size, "granted", blk.size, "offset", off)
	return Handle(off + HeaderSize), nil
}

// bestFit scans the chain in address order for the block to satisfy need.
func (a *Arena) bestFit(need int32) (uint32, header, bool) {
	var (
		bestOff uint32
		best    header
		found   bool
	)
	off := uint32(0)
	for {
		blk := a.readHeader(off)
		if !blk.allocated {
			if blk.size == need {
				return off, blk, true
			}
			// Strictly smaller replaces: the first of equal candidates stays.
			if blk.size > need && (!found || blk.size < best.size) {
				bestOff, best, found = off, blk, true
			}
		}
		if blk.next == noNext {
			break
		}
		off = blk.next
	}
	return bestOff, best, found
}
