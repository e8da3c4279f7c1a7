// Package region acquires the backing memory an arena manages.
//
// A Provider hands out one contiguous, zero-initialized, exclusively-owned
// buffer per Acquire call. The arena asks exactly once, at initialization,
// and never grows or shrinks what it receives.
package region

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLength indicates a non-positive acquisition request.
	ErrInvalidLength = errors.New("region: length must be positive")

	// ErrLimitExceeded indicates a request above a Limit provider's cap.
	ErrLimitExceeded = errors.New("region: request exceeds provider limit")

	// ErrReleased indicates Release was called more than once.
	ErrReleased = errors.New("region: already released")
)

// Region is a block of memory obtained from a Provider.
type Region struct {
	data    []byte
	release func([]byte) error
}

// New wraps data in a Region. release may be nil when the memory is owned by
// the Go heap.
func New(data []byte, release func([]byte) error) *Region {
	return &Region{data: data, release: release}
}

// Bytes returns the region's memory. It returns nil after Release.
func (r *Region) Bytes() []byte { return r.data }

// Len returns the region length in bytes.
func (r *Region) Len() int { return len(r.data) }

// Release returns the memory to whoever provided it. The region must not be
// touched afterwards.
func (r *Region) Release() error {
	if r.data == nil {
		return ErrReleased
	}
	data := r.data
	r.data = nil
	if r.release == nil {
		return nil
	}
	return r.release(data)
}

// Provider acquires backing memory.
type Provider interface {
	// Acquire returns a zeroed region of at least n bytes.
	Acquire(n int) (*Region, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(n int) (*Region, error)

// Acquire calls f(n).
func (f ProviderFunc) Acquire(n int) (*Region, error) { return f(n) }

// Heap returns a Provider backed by ordinary Go slices.
func Heap() Provider {
	return ProviderFunc(func(n int) (*Region, error) {
		if n <= 0 {
			return nil, ErrInvalidLength
		}
		return New(make([]byte, n), nil), nil
	})
}

// Limit wraps p so that requests above max bytes fail with ErrLimitExceeded
// without reaching p.
func Limit(p Provider, max int) Provider {
	return ProviderFunc(func(n int) (*Region, error) {
		if n > max {
			return nil, fmt.Errorf("%w: requested %d, limit %d", ErrLimitExceeded, n, max)
		}
		return p.Acquire(n)
	})
}

// RoundToPage rounds n up to the next multiple of page.
func RoundToPage(n, page int) int {
	pad := (page - n%page) % page
	return n + pad
}
