package arena

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/memkit/mem/region"
)

// Options configures an Arena.
type Options struct {
	// Provider supplies the backing region.
	// Default: region.Mmap()
	Provider region.Provider

	// PageSize is the granularity the region length is rounded up to. It must
	// be a multiple of WordSize.
	// Default: 0 (host page size)
	PageSize int

	// Logger receives debug records for every operation.
	// Default: discard, or stderr when MEMKIT_LOG_ALLOC is set
	Logger *slog.Logger
}

// DefaultOptions returns the options used by a zero Options value.
func DefaultOptions() Options {
	return Options{
		Provider: region.Mmap(),
		PageSize: 0,
		Logger:   defaultLogger(),
	}
}

// Arena is a best-fit allocator over one fixed-size region.
//
// The zero value is not usable; create arenas with New or Open. An Arena is
// not safe for concurrent use.
type Arena struct {
	provider region.Provider
	pageSize int
	log      *slog.Logger

	region *region.Region
	data   []byte
	index  blockIndex

	initialized bool
	closed      bool

	stats Stats
}

// New returns an uninitialized arena. Call Initialize before anything else.
func New(opts Options) *Arena {
	def := DefaultOptions()
	if opts.Provider == nil {
		opts.Provider = def.Provider
	}
	if opts.Logger == nil {
		opts.Logger = def.Logger
	}
	return &Arena{
		provider: opts.Provider,
		pageSize: opts.PageSize,
		log:      opts.Logger,
	}
}

// Open creates an arena and initializes it with a region of at least size bytes.
func Open(size int, opts Options) (*Arena, error) {
	a := New(opts)
	if err := a.Initialize(size); err != nil {
		return nil, err
	}
	return a, nil
}

// Initialize acquires the backing region and installs it as one free block.
//
// The requested size is rounded up to the page size. Initialize succeeds at
// most once per arena: every later call fails with ErrAlreadyInitialized and
// leaves the arena untouched. A failed acquisition leaves the arena
// uninitialized.
func (a *Arena) Initialize(size int) error {
	if a.initialized {
		return ErrAlreadyInitialized
	}
	if a.closed {
		return ErrClosed
	}
	if size <= 0 {
		return fmt.Errorf("%w: region size %d is not positive", ErrInvalidSize, size)
	}

	page := a.pageSize
	if page == 0 {
		page = region.PageSize()
	}
	if page < 0 || page%WordSize != 0 {
		return fmt.Errorf("%w: page size %d is not a positive multiple of %d", ErrInvalidSize, page, WordSize)
	}
	if size > MaxArenaSize-page {
		return fmt.Errorf("%w: region size %d exceeds %d", ErrInvalidSize, size, MaxArenaSize)
	}
	length := region.RoundToPage(size, page)
	if length < HeaderSize+WordSize {
		return fmt.Errorf("%w: region length %d cannot hold a block", ErrInvalidSize, length)
	}

	r, err := a.provider.Acquire(length)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegionUnavailable, err)
	}
	if r.Len() < length {
		_ = r.Release()
		return fmt.Errorf("%w: provider returned %d bytes, need %d", ErrRegionUnavailable, r.Len(), length)
	}

	a.region = r
	a.data = r.Bytes()[:length:length]
	a.index = newBlockIndex()
	a.initialized = true

	// To begin with, there is only one big, free block.
	a.writeHeader(0, header{next: noNext, size: int32(length - HeaderSize)})
	a.index.add(0)

	a.log.Debug("arena initialized", "requested", size, "length", length, "page", page)
	return nil
}

// Close releases the backing region. Every later call on the arena fails.
func (a *Arena) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.data = nil
	a.index = blockIndex{}
	if a.region == nil {
		return nil
	}
	err := a.region.Release()
	a.region = nil
	if errors.Is(err, region.ErrReleased) {
		return nil
	}
	return err
}

// Initialized reports whether Initialize has succeeded.
func (a *Arena) Initialized() bool { return a.initialized }

// Len returns the region length in bytes, or 0 before initialization.
func (a *Arena) Len() int { return len(a.data) }

// ready reports why the arena cannot serve requests, if it cannot.
func (a *Arena) ready() error {
	switch {
	case a.closed:
		return ErrClosed
	case !a.initialized:
		return ErrNotInitialized
	default:
		return nil
	}
}
