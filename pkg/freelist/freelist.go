// Package freelist implements a general-purpose allocator over a fixed
// arena: free space is tracked as a singly-linked list of variable-sized
// blocks, searched by either a first-fit or a best-fit placement policy.
// Every live allocation is preceded by a header recording its total
// footprint and padding, so Dealloc can reconstruct a free block and
// splice it back into the list in address order, coalescing with
// immediate neighbors where possible.
package freelist

import (
	"unsafe"

	"github.com/flier/memalloc/internal/debug"
	"github.com/flier/memalloc/pkg/align"
	"github.com/flier/memalloc/pkg/arena"
	"github.com/flier/memalloc/pkg/spinlock"
)

// Policy selects how a free block is chosen to satisfy an allocation.
type Policy int

const (
	// FindFirst returns the first free block with enough room, scanning
	// from the head of the list. O(1) best case, fragments faster than
	// FindBest.
	FindFirst Policy = iota
	// FindBest scans the entire list and returns the free block that
	// wastes the least space. Always O(n), fragments slower.
	FindBest
)

// freeNode describes one run of free bytes. It is written in-band, at
// the start of the free run it describes.
type freeNode struct {
	next      *freeNode
	blockSize uintptr
}

// allocationHeader precedes every live payload, recording enough to
// reconstruct a freeNode on Dealloc.
type allocationHeader struct {
	blockSize uintptr
	padding   uintptr
}

const (
	freeNodeSize = unsafe.Sizeof(freeNode{})
	headerSize   = unsafe.Sizeof(allocationHeader{})

	// minAlignment is the floor every request is raised to, so a header
	// always fits ahead of the payload regardless of what the caller asked
	// for.
	minAlignment = 8
)

type state struct {
	arena       arena.Arena
	head        *freeNode
	initialized bool
}

// Allocator is a fixed-arena free-list allocator. The zero value is not
// usable; construct with [New].
type Allocator struct {
	policy Policy
	lock   spinlock.Lock[state]
}

// New returns a freelist Allocator using the given placement policy.
func New(policy Policy) *Allocator {
	return &Allocator{policy: policy}
}

func (s *state) init() {
	s.initialized = true

	node := (*freeNode)(s.arena.At(0))
	*node = freeNode{blockSize: arena.Size}
	s.head = node
}

func addr(n *freeNode) uintptr {
	return uintptr(unsafe.Pointer(n))
}

func (s *state) nodeAt(address uintptr) *freeNode {
	return (*freeNode)(s.arena.At(address - s.arena.Start()))
}

// findFirst returns the first node with room for size bytes aligned to
// alignment, its predecessor (nil if it is the head), and the padding
// that node would need.
func findFirst(node *freeNode, size, alignment uintptr) (free, prev *freeNode, padding uintptr) {
	var prevNode *freeNode

	for node != nil {
		padding = align.PaddingWithHeader(addr(node), alignment, freeNodeSize)
		required := size + padding

		if node.blockSize >= required {
			return node, prevNode, padding
		}

		prevNode = node
		node = node.next
	}

	return nil, nil, padding
}

// findBest scans the whole list and returns the node that wastes the
// least space, its predecessor, and the padding it would need.
func findBest(node *freeNode, size, alignment uintptr) (free, prev *freeNode, padding uintptr) {
	var prevNode *freeNode
	var prevToBest *freeNode
	var best *freeNode
	var bestPadding uintptr
	smallestDiff := ^uintptr(0)

	for node != nil {
		padding = align.PaddingWithHeader(addr(node), alignment, freeNodeSize)
		required := size + padding

		if node.blockSize >= required && node.blockSize-required < smallestDiff {
			prevToBest = prevNode
			best = node
			bestPadding = padding
			smallestDiff = node.blockSize - required
		}

		prevNode = node
		node = node.next
	}

	return best, prevToBest, bestPadding
}

// Alloc finds a free block able to hold size bytes aligned to alignment,
// under the allocator's placement policy, and carves the allocation out
// of it. Returns nil if no block fits.
func (a *Allocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	guard := a.lock.Acquire()
	defer guard.Release()
	s := guard.Get()

	if !s.initialized {
		s.init()
	}
	if s.head == nil {
		debug.Log(nil, "alloc", "OOM: empty free list")
		return nil
	}

	if size < freeNodeSize {
		size = freeNodeSize
	}
	if alignment < minAlignment {
		alignment = minAlignment
	}

	var free, prev *freeNode
	var padding uintptr
	switch a.policy {
	case FindBest:
		free, prev, padding = findBest(s.head, size, alignment)
	default:
		free, prev, padding = findFirst(s.head, size, alignment)
	}

	if free == nil {
		debug.Log(nil, "alloc", "OOM: size=%d align=%d", size, alignment)
		return nil
	}

	freeAddr := addr(free)
	freeBlockSize := free.blockSize

	switch {
	case prev != nil:
		prev.next = free.next
	case free.next != nil:
		s.head = free.next
	default:
		remaining := int64(free.blockSize) - int64(padding+size)
		if remaining > 0 {
			newAddr := freeAddr + padding + size
			newNode := s.nodeAt(newAddr)
			*newNode = freeNode{blockSize: uintptr(remaining)}
			s.head = newNode
		} else {
			s.head = nil
		}
	}

	if freeBlockSize > padding+size {
		headerAddr := freeAddr + padding - headerSize
		h := (*allocationHeader)(s.arena.At(headerAddr - s.arena.Start()))
		*h = allocationHeader{blockSize: padding + size, padding: padding}
	}

	payloadAddr := freeAddr + padding
	debug.Log(nil, "alloc", "offset=%d padding=%d size=%d", payloadAddr-s.arena.Start(), padding, size)

	return s.arena.At(payloadAddr - s.arena.Start())
}

// Dealloc returns the block at ptr to the free list, splicing it back in
// address order and coalescing with an immediately adjacent predecessor
// and/or successor.
func (a *Allocator) Dealloc(ptr unsafe.Pointer, _, _ uintptr) {
	guard := a.lock.Acquire()
	defer guard.Release()
	s := guard.Get()

	ptrAddr := uintptr(ptr)
	h := *(*allocationHeader)(unsafe.Add(ptr, -int(headerSize)))

	freed := freeNode{blockSize: h.blockSize}
	freedAddr := ptrAddr - h.padding

	if s.head == nil {
		node := s.nodeAt(freedAddr)
		*node = freed
		s.head = node
		debug.Log(nil, "dealloc", "offset=%d size=%d", freedAddr-s.arena.Start(), freed.blockSize)
		return
	}

	node := s.head
	var prevNode *freeNode
	updatePrev := true

	for node != nil {
		if addr(node) > freedAddr {
			freed.next = node

			if prevNode != nil && addr(prevNode)+prevNode.blockSize == freedAddr {
				updatePrev = false
				freed.blockSize += prevNode.blockSize
				freedAddr = addr(prevNode)
			}

			if freedAddr+freed.blockSize == addr(node) {
				freed.blockSize += node.blockSize
				freed.next = node.next
			}

			if prevNode == nil {
				s.head = s.nodeAt(freedAddr)
			}
			break
		}

		prevNode = node
		node = node.next
	}

	if updatePrev && prevNode != nil {
		prevNode.next = s.nodeAt(freedAddr)
	}

	out := s.nodeAt(freedAddr)
	*out = freed
	debug.Log(nil, "dealloc", "offset=%d size=%d", freedAddr-s.arena.Start(), freed.blockSize)
}
