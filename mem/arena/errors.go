package arena

import "errors"

var (
	// ErrInvalidSize indicates a non-positive or otherwise unusable size argument.
	ErrInvalidSize = errors.New("arena: invalid size")

	// ErrAlreadyInitialized indicates a second Initialize on the same arena.
	ErrAlreadyInitialized = errors.New("arena: already initialized")

	// ErrRegionUnavailable indicates the provider could not supply the backing region.
	ErrRegionUnavailable = errors.New("arena: region unavailable")

	// ErrOutOfMemory indicates that no free block is large enough for the request.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrInvalidPointer indicates a handle that does not denote a block of this arena.
	ErrInvalidPointer = errors.New("arena: invalid pointer")

	// ErrDoubleFree indicates an attempt to free a block that is already free.
	ErrDoubleFree = errors.New("arena: double free")

	// ErrNotInitialized indicates use of an arena before Initialize succeeded.
	ErrNotInitialized = errors.New("arena: not initialized")

	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("arena: closed")
)
