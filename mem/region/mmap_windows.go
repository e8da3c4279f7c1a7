//go:build windows

package region

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// PageSize returns the host page size.
func PageSize() int {
	return os.Getpagesize()
}

// Mmap returns a Provider that commits fresh pages with VirtualAlloc. Committed
// pages are zero-filled by the system.
func Mmap() Provider {
	return ProviderFunc(virtualAcquire)
}

func virtualAcquire(n int) (*Region, error) {
	if n <= 0 {
		return nil, ErrInvalidLength
	}
	addr, err := windows.VirtualAlloc(0, uintptr(n), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("region: VirtualAlloc %d bytes: %w", n, err)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
	return New(data, virtualFree), nil
}

func virtualFree(data []byte) error {
	return windows.VirtualFree(uintptr(unsafe.Pointer(&data[0])), 0, windows.MEM_RELEASE)
}
