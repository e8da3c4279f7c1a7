package arena

import (
	"fmt"

	"github.com/joshuapare/memkit/internal/buf"
)

// Free returns the block denoted by h to the arena.
//
// The block is merged with a free successor first and then into a free
// predecessor, so a run of free neighbours always collapses into one block.
// Free fails with ErrInvalidPointer for handles this arena did not produce
// and with ErrDoubleFree for blocks that are already free; neither failure
// changes the arena.
func (a *Arena) Free(h Handle) error {
	a.stats.FreeCalls++

	if err := a.free(h); err != nil {
		a.stats.FreeFailures++
		a.log.Debug("free failed", "handle", h, "error", err)
		return err
	}
	return nil
}

func (a *Arena) free(h Handle) error {
	if err := a.ready(); err != nil {
		return err
	}
	off, err := a.headerOf(h)
	if err != nil {
		return err
	}

	blk := a.readHeader(off)
	if !blk.allocated {
		return fmt.Errorf("%w: handle 0x%x", ErrDoubleFree, uint32(h))
	}
	blk.allocated = false
	a.stats.BytesFreed += int64(blk.size)

	// Forward: absorb a free successor.
	if blk.next != noNext {
		next := a.readHeader(blk.next)
		if !next.allocated {
			a.index.remove(blk.next)
			blk.size += HeaderSize + next.size
			blk.next = next.next
			a.stats.CoalesceForward++
		}
	}
	a.writeHeader(off, blk)

	// Backward: fold the (possibly grown) block into a free predecessor.
	if prevOff, ok := a.index.prev(off); ok {
		prev := a.readHeader(prevOff)
		if !prev.allocated {
			prev.size += HeaderSize + blk.size
			prev.next = blk.next
			a.writeHeader(prevOff, prev)
			a.index.remove(off)
			a.stats.CoalesceBackward++
			off = prevOff
		}
	}

	a.log.Debug("free", "handle", h, "block", off)
	return nil
}

// headerOf maps a handle to its block's header offset.
func (a *Arena) headerOf(h Handle) (uint32, error) {
	if h == Nil {
		return 0, fmt.Errorf("%w: nil handle", ErrInvalidPointer)
	}
	if h < HeaderSize || int(h) > len(a.data) {
		return 0, fmt.Errorf("%w: handle 0x%x outside region", ErrInvalidPointer, uint32(h))
	}
	off := uint32(h) - HeaderSize
	if !a.index.contains(off) {
		return 0, fmt.Errorf("%w: handle 0x%x is not a block payload", ErrInvalidPointer, uint32(h))
	}
	return off, nil
}

// Bytes returns the payload of the allocated block denoted by h. The slice
// aliases arena memory and is valid until the block is freed.
func (a *Arena) Bytes(h Handle) ([]byte, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	off, err := a.headerOf(h)
	if err != nil {
		return nil, err
	}
	blk := a.readHeader(off)
	if !blk.allocated {
		return nil, fmt.Errorf("%w: handle 0x%x denotes a free block", ErrInvalidPointer, uint32(h))
	}
	p, ok := buf.Slice(a.data, int(off+HeaderSize), int(blk.size))
	if !ok {
		return nil, fmt.Errorf("%w: block at 0x%x overruns the region", ErrInvalidPointer, off)
	}
	return p, nil
}

// SizeOf returns the payload size granted to the allocated block denoted by
// h. It may exceed the requested size when the block was not split.
func (a *Arena) SizeOf(h Handle) (int, error) {
	b, err := a.Bytes(h)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
