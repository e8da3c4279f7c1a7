//go:build !unix && !windows

package region

import "os"

// PageSize returns the host page size.
func PageSize() int {
	return os.Getpagesize()
}

// Mmap falls back to heap memory when no mapping primitive is available.
func Mmap() Provider {
	return Heap()
}
