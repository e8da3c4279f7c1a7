// Package arena implements a best-fit allocator over a single fixed-size
// memory region.
//
// # Overview
//
// An Arena acquires its backing region exactly once, from a region.Provider,
// and carves it into blocks. Every block is an 8-byte header immediately
// followed by its payload; headers live in-band inside the region and chain
// the blocks in address order:
//
//	offset 0          8                 8+size            16+size
//	+-----------------+-----------------+-----------------+---------
//	| next | size     | payload ...     | next | size     | payload
//	+-----------------+-----------------+-----------------+---------
//
// The size field is positive for a free block and negative for an allocated
// one. The next field holds the successor's header offset, or 0 for the last
// block (offset 0 is always the head, so it can never be a successor).
//
// # Allocation
//
// Allocate rounds the request up to a multiple of WordSize and scans the
// chain from the head. An exact-size free block wins immediately; otherwise
// the smallest larger free block is used, with the lowest address winning
// ties. The block is split when the tail could hold a header plus at least
// MinBlockSize payload bytes; otherwise the whole block is handed out.
//
// # Deallocation
//
// Free validates the handle against the block-start index, rejects double
// frees, and then coalesces with a free successor and a free predecessor, in
// that order, so no two neighbouring blocks are ever both free.
//
// # Usage Example
//
//	a, err := arena.Open(64*1024, arena.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	h, err := a.Allocate(100)
//	if err != nil {
//	    return err
//	}
//	payload, _ := a.Bytes(h)
//	copy(payload, "hello")
//
//	if err := a.Free(h); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Arena instances are not thread-safe. Callers must serialize every call on
// a given Arena; independent arenas may be used from different goroutines.
//
// # Related Packages
//
//   - github.com/joshuapare/memkit/mem/region: Backing memory providers
//   - github.com/joshuapare/memkit/mem/verify: Block list invariant checks
//   - github.com/joshuapare/memkit/mem/printer: Text and JSON block reports
package arena
