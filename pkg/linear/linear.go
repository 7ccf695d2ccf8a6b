// Package linear implements a monotonic bump allocator: allocation
// advances a single offset, and no individual block is ever reclaimed.
// Memory is only reclaimed by discarding the allocator entirely.
package linear

import (
	"unsafe"

	"github.com/flier/memalloc/internal/debug"
	"github.com/flier/memalloc/pkg/align"
	"github.com/flier/memalloc/pkg/arena"
	"github.com/flier/memalloc/pkg/spinlock"
)

type state struct {
	arena arena.Arena
	curr  uintptr // offset of the next free byte, relative to arena.Start()
}

// Allocator is a fixed-arena bump allocator. The zero value is ready to
// use.
type Allocator struct {
	lock spinlock.Lock[state]
}

// New returns a ready-to-use Allocator.
func New() *Allocator {
	return new(Allocator)
}

// Alloc allocates size bytes aligned to align, or returns nil if the
// arena has no room left. align must be a power of two.
func (a *Allocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	guard := a.lock.Acquire()
	defer guard.Release()
	s := guard.Get()

	start := align.Forward(s.arena.Start()+s.curr, alignment)

	end := start + size
	if end < start || end > s.arena.Start()+arena.Size {
		// Either the address computation overflowed, or the arena is out
		// of room; both are treated as out-of-memory.
		debug.Log(nil, "alloc", "OOM: size=%d align=%d", size, alignment)
		return nil
	}

	offset := start - s.arena.Start()
	s.curr = end - s.arena.Start()
	debug.Log(nil, "alloc", "%#x:%#x size=%d align=%d", start, end, size, alignment)

	return s.arena.At(offset)
}

// Dealloc is a no-op: the linear allocator never reclaims individual
// blocks.
func (a *Allocator) Dealloc(unsafe.Pointer, uintptr, uintptr) {}
