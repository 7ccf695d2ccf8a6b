// Package spinlock implements a busy-waiting mutual-exclusion primitive
// with a scoped-acquisition guard.
//
// It holds no awaitable state, performs no I/O, and never yields to a
// blocking scheduler primitive: contended callers spin on an atomic flag
// until it is theirs. This is the synchronization primitive the four
// allocators in this module use to be safe as process-wide defaults.
package spinlock

import (
	"runtime"
	"sync/atomic"

	"github.com/flier/memalloc/internal/noCopy"
)

// Lock protects a value of type T behind a spin-based mutual exclusion
// flag.
//
// The zero value of Lock[T] is a ready-to-use, unlocked mutex guarding the
// zero value of T.
type Lock[T any] struct {
	_      noCopy.NoCopy
	locked atomic.Bool
	value  T
	holder holder
}

// New returns a Lock already initialized with value.
func New[T any](value T) *Lock[T] {
	return &Lock[T]{value: value}
}

// Acquire spins until the lock is free, then returns a [Guard] bound to
// it. The guard must be released (directly, or via defer) on every exit
// path; failing to do so deadlocks every future caller.
func (l *Lock[T]) Acquire() *Guard[T] {
	for !l.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
	l.holder.acquire()
	return &Guard[T]{lock: l}
}

// Guard grants exclusive access to a [Lock]'s protected value for as long
// as it is held.
type Guard[T any] struct {
	lock *Lock[T]
}

// Get returns a pointer to the protected value.
//
// The pointer must not be retained past [Guard.Release].
func (g *Guard[T]) Get() *T {
	return &g.lock.value
}

// Release unlocks the mutex, making the protected value available to the
// next spinning caller. Releasing an already-released guard panics.
func (g *Guard[T]) Release() {
	if g.lock == nil {
		panic("spinlock: Release called on an already-released guard")
	}
	lock := g.lock
	g.lock = nil
	lock.holder.release()
	lock.locked.Store(false)
}
