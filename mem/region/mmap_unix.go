//go:build unix

package region

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// PageSize returns the host page size.
func PageSize() int {
	return unix.Getpagesize()
}

// Mmap returns a Provider that maps anonymous private memory. Pages come back
// zero-filled from the kernel.
func Mmap() Provider {
	return ProviderFunc(mmapAcquire)
}

func mmapAcquire(n int) (*Region, error) {
	if n <= 0 {
		return nil, ErrInvalidLength
	}
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("region: mmap %d bytes: %w", n, err)
	}
	return New(data, munmap), nil
}

func munmap(data []byte) error {
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
