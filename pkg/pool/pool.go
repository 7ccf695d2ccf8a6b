// Package pool implements a fixed-chunk allocator: the arena is divided
// into equally-sized chunks up front, and allocation/deallocation are
// O(1) pushes and pops against an intrusive singly-linked free list whose
// nodes live inside the free chunks themselves.
//
// Reuse is LIFO, not address-ordered, which is intentional: the most
// recently freed chunk is usually still warm in cache.
package pool

import (
	"fmt"
	"unsafe"

	"github.com/flier/memalloc/internal/debug"
	"github.com/flier/memalloc/pkg/arena"
	"github.com/flier/memalloc/pkg/spinlock"
)

// freeNode is written into the first bytes of every free chunk.
type freeNode struct {
	next *freeNode
}

// state is everything the spin lock protects. chunkSize is set once at
// construction and never mutated again, so it lives outside the lock.
type state struct {
	arena       arena.Arena
	head        *freeNode
	initialized bool
}

// Allocator is a fixed-chunk pool allocator over a single arena.
//
// The free list is lazily built on the first Alloc call. The zero value
// is not usable; construct with [New].
type Allocator struct {
	chunkSize uintptr
	lock      spinlock.Lock[state]
}

// New returns a pool Allocator whose chunks are chunkSize bytes each.
// chunkSize must be at least the size of a pointer, so a free node fits
// inside every chunk.
func New(chunkSize uintptr) *Allocator {
	if chunkSize < unsafe.Sizeof(freeNode{}) {
		panic(fmt.Sprintf("pool: chunk size %d is too small to hold a free-list node", chunkSize))
	}
	return &Allocator{chunkSize: chunkSize}
}

func (s *state) init(chunkSize uintptr) {
	s.initialized = true

	n := arena.Size / int(chunkSize)
	var prev *freeNode
	for i := 0; i < n; i++ {
		offset := uintptr(i) * chunkSize
		node := (*freeNode)(s.arena.At(offset))
		*node = freeNode{}

		if prev != nil {
			prev.next = node
		} else {
			s.head = node
		}
		prev = node
	}
}

// Alloc detaches and returns the chunk at the head of the free list, or
// nil if the pool is exhausted.
//
// Panics if size exceeds the allocator's chunk size: that is a
// programmer error, not a runtime condition. The pool does not honor
// alignments beyond what chunkSize and the arena's base naturally provide;
// callers that need stricter alignment should pick chunkSize accordingly.
func (a *Allocator) Alloc(size, _ uintptr) unsafe.Pointer {
	guard := a.lock.Acquire()
	defer guard.Release()
	s := guard.Get()

	if size > a.chunkSize {
		panic(fmt.Sprintf("pool: requested size %d exceeds chunk size %d", size, a.chunkSize))
	}
	if !s.initialized {
		s.init(a.chunkSize)
	}

	if s.head == nil {
		debug.Log(nil, "alloc", "OOM: chunk_size=%d", a.chunkSize)
		return nil
	}

	node := s.head
	s.head = node.next
	debug.Log(nil, "alloc", "%p", node)

	return unsafe.Pointer(node)
}

// Dealloc pushes ptr back onto the head of the free list. Pointers
// outside the arena, or any call before the pool has been initialized,
// are silently ignored.
func (a *Allocator) Dealloc(ptr unsafe.Pointer, _, _ uintptr) {
	guard := a.lock.Acquire()
	defer guard.Release()
	s := guard.Get()

	if !s.initialized || !s.arena.Contains(uintptr(ptr)) {
		return
	}

	node := (*freeNode)(ptr)
	*node = freeNode{next: s.head}
	s.head = node
	debug.Log(nil, "dealloc", "%p", node)
}
