package pool

import (
	"sync/atomic"
	"weak"
)

type handleState int

const (
	stateNew handleState = iota
	stateCreating
	stateRecycling
	stateReady
)

// entry is a queue slot. A nil value is a tombstone: a previous holder
// died while recycling its resource and pushed an empty placeholder to
// keep the queue's FIFO positions in sync with the available counter.
type entry[T any] struct {
	value *T
}

// Handle is a scoped wrapper around a borrowed resource. Call Release
// (typically via defer) when done with it; this returns the resource to
// its pool or, if acquisition never completed, reconciles the pool's
// counters so the reservation is not leaked.
//
// Handle holds only a weak reference to the pool's inner state: it never
// keeps a Pool alive on its own, mirroring consumers that hold their own
// clone of the Pool elsewhere.
type Handle[T any] struct {
	resource *T
	state    handleState
	pool     weak.Pointer[poolInner[T]]
	released atomic.Bool
}

func newHandle[T any](inner *poolInner[T]) *Handle[T] {
	return &Handle[T]{
		state: stateNew,
		pool:  weak.Make(inner),
	}
}

// Resource returns the borrowed resource. It is nil until acquisition has
// completed successfully.
func (h *Handle[T]) Resource() *T {
	return h.resource
}

// Release returns the handle's resource (if any) to the pool and
// reconciles the pool's size/available counters according to the state
// the handle reached. It is safe to call Release more than once or on a
// handle whose acquisition failed; only the first call has any effect.
//
// If the pool has since been garbage collected, Release is a no-op: the
// resource is simply dropped along with the handle.
func (h *Handle[T]) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}

	inner := h.pool.Value()
	resource := h.resource
	state := h.state
	h.resource = nil
	h.state = stateNew

	if inner == nil {
		return
	}

	switch state {
	case stateNew:
		inner.available.Add(1)
	case stateCreating:
		// Get already restored available when it reserved the creation
		// slot, so only the size reservation is given back here.
		inner.size.Add(-1)
	case stateRecycling:
		inner.available.Add(1)
		if !inner.trySend(entry[T]{}) {
			// Capacity invariant guarantees this never happens: the
			// queue always has room for every resource the pool has
			// reserved. Correct the counters defensively rather than
			// assert, so a Release running during a panic never makes
			// things worse.
			inner.available.Add(-1)
			inner.size.Add(-1)
		}
	case stateReady:
		if !inner.trySend(entry[T]{value: resource}) {
			inner.size.Add(-1)
		} else {
			inner.available.Add(1)
		}
	}
}
