// Package verify checks the block list invariants of an arena.
// These helpers are used in tests and by memctl to ensure every operation
// leaves the arena well-formed.
package verify

import (
	"fmt"
	"slices"

	"github.com/joshuapare/memkit/mem/arena"
)

// ValidationError describes the first invariant a snapshot breaks.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Arena snapshots a and validates every invariant.
func Arena(a *arena.Arena) error {
	r, err := a.Report()
	if err != nil {
		return &ValidationError{Type: "Walk", Message: err.Error(), Offset: -1}
	}
	return AllInvariants(r)
}

// AllInvariants validates all block list invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(r arena.Report) error {
	checks := []func(arena.Report) error{
		Ordering,
		Contiguity,
		WordAligned,
		Coalesced,
		IndexConsistent,
	}
	for _, check := range checks {
		if err := check(r); err != nil {
			return err
		}
	}
	return nil
}

// Ordering validates that blocks appear in strictly increasing address order
// and are numbered from 1.
func Ordering(r arena.Report) error {
	for i, b := range r.Blocks {
		if b.Ordinal != i+1 {
			return &ValidationError{
				Type:    "Ordering",
				Message: fmt.Sprintf("block %d reports ordinal %d", i+1, b.Ordinal),
				Offset:  b.Header,
			}
		}
		if i > 0 && b.Header <= r.Blocks[i-1].Header {
			return &ValidationError{
				Type:    "Ordering",
				Message: fmt.Sprintf("block %d starts at or before block %d (0x%X)", i+1, i, r.Blocks[i-1].Header),
				Offset:  b.Header,
			}
		}
	}
	return nil
}

// Contiguity validates that blocks tile the region with no gaps or overlaps,
// starting at offset 0 and ending exactly at the region length.
func Contiguity(r arena.Report) error {
	if len(r.Blocks) == 0 {
		return &ValidationError{Type: "Contiguity", Message: "no blocks", Offset: -1}
	}
	pos := 0
	for i, b := range r.Blocks {
		if b.Header != pos {
			return &ValidationError{
				Type:    "Contiguity",
				Message: fmt.Sprintf("block %d starts at 0x%X, expected 0x%X", i+1, b.Header, pos),
				Offset:  b.Header,
			}
		}
		if b.Begin != b.Header+arena.HeaderSize || b.TotalSize != b.Size+arena.HeaderSize || b.End != b.Begin+b.Size-1 {
			return &ValidationError{
				Type:    "Contiguity",
				Message: fmt.Sprintf("block %d has inconsistent bounds (begin 0x%X end 0x%X size %d)", i+1, b.Begin, b.End, b.Size),
				Offset:  b.Header,
			}
		}
		pos += b.TotalSize
	}
	if pos != r.Length {
		return &ValidationError{
			Type:    "Contiguity",
			Message: fmt.Sprintf("blocks cover %d bytes, region is %d", pos, r.Length),
			Offset:  -1,
		}
	}
	return nil
}

// WordAligned validates that every payload size is a positive multiple of
// the word size.
func WordAligned(r arena.Report) error {
	for i, b := range r.Blocks {
		if b.Size <= 0 || b.Size%arena.WordSize != 0 {
			return &ValidationError{
				Type:    "WordAligned",
				Message: fmt.Sprintf("block %d payload size %d is not a positive multiple of %d", i+1, b.Size, arena.WordSize),
				Offset:  b.Header,
			}
		}
	}
	return nil
}

// Coalesced validates that no two neighbouring blocks are both free.
func Coalesced(r arena.Report) error {
	for i := 1; i < len(r.Blocks); i++ {
		prev, cur := r.Blocks[i-1], r.Blocks[i]
		if !prev.Allocated && !cur.Allocated {
			return &ValidationError{
				Type:    "Coalesced",
				Message: fmt.Sprintf("blocks %d and %d are both free", i, i+1),
				Offset:  cur.Header,
			}
		}
	}
	return nil
}

// IndexConsistent validates that the block-start index lists exactly the
// headers of the chain.
func IndexConsistent(r arena.Report) error {
	headers := make([]uint32, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		headers = append(headers, uint32(b.Header))
	}
	if !slices.Equal(headers, r.Index) {
		return &ValidationError{
			Type:    "IndexConsistent",
			Message: fmt.Sprintf("index %v does not match chain %v", r.Index, headers),
			Offset:  -1,
		}
	}
	return nil
}
