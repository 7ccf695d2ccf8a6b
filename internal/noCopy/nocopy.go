// Package noCopy provides a marker type for go vet's copylocks check.
package noCopy

import "sync"

// NoCopy embeds into a struct to make `go vet` flag accidental copies of
// values that must stay at a fixed address, such as the arenas in this
// module, whose in-band metadata encodes pointers back into themselves.
//
// It implements [sync.Locker] as a zero-cost way of tripping the vet check;
// Lock/Unlock do nothing.
type NoCopy [0]sync.Mutex

func (*NoCopy) Lock()   {}
func (*NoCopy) Unlock() {}
