// Package arena provides fixed-capacity slab storage with stable
// addressing. Slots live inside fixed-size chunks that are grown on
// demand and never relocated, so a pointer obtained at allocation time
// stays valid until the slot is reclaimed. Indices that outlive a
// single call should hold a Handle rather than a pointer: handles
// carry a generation counter, so a reference into a slot that has been
// reclaimed and reused is detected instead of silently aliasing the
// new occupant.
package arena

import "errors"

const (
	// DefaultChunkSize is the number of slots added per growth step.
	DefaultChunkSize = 1024
	// DefaultMaxChunks caps the backing storage at roughly 128k slots.
	DefaultMaxChunks = 128
)

var (
	ErrExhausted       = errors.New("arena exhausted")
	ErrStaleHandle     = errors.New("stale arena handle")
	ErrInvalidCapacity = errors.New("arena capacity must be positive")
)

// Handle identifies a live slot. The zero Handle never resolves.
type Handle struct {
	index uint32
	gen   uint32
}

type slot[T any] struct {
	val  T
	gen  uint32
	live bool
}

// Arena owns values of type T by value, chunked so that issued
// pointers are never moved by growth. Reclaimed slots are reused
// before the backing storage grows. Not safe for concurrent use.
type Arena[T any] struct {
	chunks    [][]slot[T]
	free      []uint32
	next      uint32 // lowest never-used slot index
	chunkSize uint32
	maxSlots  uint32
}

// New returns an arena holding at most chunkSize*maxChunks values.
func New[T any](chunkSize, maxChunks int) (*Arena[T], error) {
	if chunkSize <= 0 || maxChunks <= 0 {
		return nil, ErrInvalidCapacity
	}
	a := &Arena[T]{
		chunkSize: uint32(chunkSize),
		maxSlots:  uint32(chunkSize) * uint32(maxChunks),
	}
	// First chunk up front, matching the steady-state layout.
	a.chunks = append(a.chunks, make([]slot[T], chunkSize))
	a.free = make([]uint32, 0, chunkSize)
	return a, nil
}

// Alloc returns a zeroed slot, preferring a previously reclaimed one
// over growing the backing storage. The returned pointer is stable
// until Reclaim is called on the handle.
func (a *Arena[T]) Alloc() (Handle, *T, error) {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		if a.next >= a.maxSlots {
			return Handle{}, nil, ErrExhausted
		}
		if c := int(a.next / a.chunkSize); c == len(a.chunks) {
			a.chunks = append(a.chunks, make([]slot[T], a.chunkSize))
		}
		idx = a.next
		a.next++
	}

	s := a.slotAt(idx)
	var zero T
	s.val = zero
	s.gen++
	s.live = true
	return Handle{index: idx, gen: s.gen}, &s.val, nil
}

// Get resolves a handle to its slot, or reports false if the handle
// is stale (slot reclaimed, possibly reused) or was never issued.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if h.index >= a.next {
		return nil, false
	}
	s := a.slotAt(h.index)
	if !s.live || s.gen != h.gen {
		return nil, false
	}
	return &s.val, true
}

// Reclaim returns a slot to the free pool. The caller must have
// already removed every index reference to the handle; the arena only
// guards against double reclaims and stale handles.
func (a *Arena[T]) Reclaim(h Handle) error {
	if h.index >= a.next {
		return ErrStaleHandle
	}
	s := a.slotAt(h.index)
	if !s.live || s.gen != h.gen {
		return ErrStaleHandle
	}
	s.live = false
	a.free = append(a.free, h.index)
	return nil
}

// Reset drops every allocation and restores the arena to empty.
// Outstanding handles are invalidated, not just orphaned: generations
// survive the reset, so a stale handle still fails Get.
func (a *Arena[T]) Reset() {
	for _, chunk := range a.chunks {
		for i := range chunk {
			chunk[i].live = false
		}
	}
	a.free = a.free[:0]
	a.next = 0
}

// Live reports the number of currently allocated slots.
func (a *Arena[T]) Live() int {
	return int(a.next) - len(a.free)
}

// Cap reports the hard slot capacity.
func (a *Arena[T]) Cap() int {
	return int(a.maxSlots)
}

func (a *Arena[T]) slotAt(idx uint32) *slot[T] {
	return &a.chunks[idx/a.chunkSize][idx%a.chunkSize]
}
