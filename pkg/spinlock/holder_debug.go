//go:build debug

package spinlock

import (
	"sync/atomic"

	"github.com/timandy/routine"

	"github.com/flier/memalloc/internal/debug"
)

// holder tracks which goroutine currently holds the lock and traces every
// acquire and release.
//
// acquire runs only after Acquire has won the lock flag, and release
// clears the recorded id before the flag is dropped, so the recursion
// check in acquire does not catch a goroutine re-entering a lock it
// already holds: such a goroutine spins in Acquire and never reaches it.
type holder struct {
	goid atomic.Int64
}

func (h *holder) acquire() {
	id := routine.Goid()
	if prev := h.goid.Load(); prev == id {
		panic("spinlock: recursive Acquire from the same goroutine")
	}
	h.goid.Store(id)
	debug.Log(nil, "acquire", "g%d", id)
}

func (h *holder) release() {
	debug.Log(nil, "release", "g%d", h.goid.Load())
	h.goid.Store(0)
}
