// Package arena provides the fixed-size byte buffer that backs every
// allocator in this module.
//
// An [Arena] owns exactly one statically-sized, zero-initialized byte
// array. It never grows, never compacts, and never moves: its address is
// load-bearing, because allocators write in-band metadata (headers and
// free-list nodes) directly into its bytes and that metadata encodes
// pointers back into the same array.
package arena

import (
	"unsafe"

	"github.com/flier/memalloc/internal/noCopy"
)

// Size is the fixed capacity of every Arena, in bytes.
const Size = 128 * 1024

// Arena is a single statically-sized contiguous byte region.
//
// The zero value is a ready-to-use, zero-filled arena. Arena must not be
// copied after its first use: its buf array backs pointers that other
// allocator state stores internally.
type Arena struct {
	_   noCopy.NoCopy
	buf [Size]byte
}

// Start returns the address of the first byte of the arena.
func (a *Arena) Start() uintptr {
	return uintptr(unsafe.Pointer(&a.buf[0]))
}

// End returns the address one past the last byte of the arena.
func (a *Arena) End() uintptr {
	return a.Start() + Size
}

// Size returns the arena's fixed capacity.
func (a *Arena) Size() int {
	return Size
}

// Base returns a pointer to the first byte of the arena.
func (a *Arena) Base() unsafe.Pointer {
	return unsafe.Pointer(&a.buf[0])
}

// At returns a pointer to the byte at the given offset from the arena's
// base. The caller must ensure offset is within [0, Size].
func (a *Arena) At(offset uintptr) unsafe.Pointer {
	return unsafe.Add(a.Base(), offset)
}

// Contains reports whether addr lies within [a.Start(), a.End()).
func (a *Arena) Contains(addr uintptr) bool {
	return a.Start() <= addr && addr < a.End()
}
