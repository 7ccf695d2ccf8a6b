// Package memalloc collects fixed-arena allocators for freestanding or
// resource-constrained environments where the standard heap is either
// unavailable or undesirable.
//
// Four strategies are provided, each in its own subpackage, each safe to
// use concurrently and as a process-wide default allocator:
//
//   - pkg/linear   — monotonic bump allocation, no reclamation
//   - pkg/stack    — LIFO allocation with per-block headers
//   - pkg/pool     — fixed-size chunk free list
//   - pkg/freelist — variable-size first/best-fit allocation with coalescing
//
// All four are built on pkg/arena (the fixed byte buffer each one owns)
// and pkg/spinlock (the busy-waiting mutual exclusion primitive that makes
// each one's public API safe to call from multiple goroutines at once).
// pkg/align holds the alignment arithmetic shared by all of them.
package memalloc

import "github.com/flier/memalloc/pkg/arena"

// ArenaSize is the fixed capacity, in bytes, of every arena an allocator
// in this module owns.
const ArenaSize = arena.Size
