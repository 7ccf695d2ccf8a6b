// Package stack implements a LIFO bump allocator: each allocation is
// preceded by a small header recording the previous allocation's offset,
// so deallocations in exact reverse order unwind the stack. Deallocating
// out of order is detected and silently ignored, preserving the
// allocator's invariants at the cost of leaking that one block until the
// whole arena is discarded.
package stack

import (
	"unsafe"

	"github.com/flier/memalloc/internal/debug"
	"github.com/flier/memalloc/pkg/align"
	"github.com/flier/memalloc/pkg/arena"
	"github.com/flier/memalloc/pkg/spinlock"
)

// header precedes every payload allocated from the stack.
type header struct {
	prevOffset uintptr
	padding    uintptr
}

const headerSize = unsafe.Sizeof(header{})

type state struct {
	arena arena.Arena
	prev  uintptr // offset of the previous allocation's payload base
	curr  uintptr // offset of the top of the stack
}

// Allocator is a fixed-arena LIFO allocator. The zero value is ready to
// use.
type Allocator struct {
	lock spinlock.Lock[state]
}

// New returns a ready-to-use Allocator.
func New() *Allocator {
	return new(Allocator)
}

// Alloc pushes a new size-byte, align-aligned block onto the stack, or
// returns nil if it would not fit in the remaining arena.
func (a *Allocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	guard := a.lock.Acquire()
	defer guard.Release()
	s := guard.Get()

	cur := s.arena.Start() + s.curr
	padding := align.PaddingWithHeader(cur, alignment, headerSize)

	end := cur + padding + size
	if end > s.arena.End() {
		debug.Log(nil, "alloc", "OOM: size=%d align=%d", size, alignment)
		return nil
	}

	payloadOffset := s.curr + padding
	headerOffset := payloadOffset - headerSize
	*(*header)(s.arena.At(headerOffset)) = header{
		prevOffset: s.prev,
		padding:    padding,
	}

	s.prev = s.curr
	s.curr = end - s.arena.Start()
	debug.Log(nil, "alloc", "offset=%d padding=%d size=%d", payloadOffset, padding, size)

	return s.arena.At(payloadOffset)
}

// Dealloc pops ptr off the stack if and only if it is the block most
// recently pushed; any other pointer (out of range, not yet allocated, or
// an out-of-order free) is silently ignored.
func (a *Allocator) Dealloc(ptr unsafe.Pointer, _, _ uintptr) {
	guard := a.lock.Acquire()
	defer guard.Release()
	s := guard.Get()

	addr := uintptr(ptr)
	if !s.arena.Contains(addr) || addr >= s.arena.Start()+s.curr {
		return
	}

	h := *(*header)(unsafe.Add(ptr, -int(headerSize)))

	candidatePrev := addr - h.padding - s.arena.Start()
	if candidatePrev != s.prev {
		// Out-of-order free: ignore it, per the allocator's LIFO contract.
		debug.Log(nil, "dealloc", "ignored out-of-order free at %#x", addr)
		return
	}

	s.curr = s.prev
	s.prev = h.prevOffset
	debug.Log(nil, "dealloc", "popped to offset=%d", s.curr)
}
