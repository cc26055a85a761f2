// Package pool implements a generic, asynchronous object pool for
// expensive-to-create resources such as database connections, message
// broker channels, or cache clients. It amortises resource construction,
// bounds concurrent resource usage, validates resources before reuse, and
// blocks callers when the pool is saturated.
//
// The pool is generic in the resource type T and erased over the Manager
// that creates and validates it, so it never needs to know anything about
// the concrete backend it is pooling.
package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// poolInner is the shared, reference-counted core. Pool values are cheap
// to copy because copying one just copies the pointer to this struct.
type poolInner[T any] struct {
	manager Manager[T]
	config  PoolConfig

	// queue is a bounded FIFO of capacity config.MaxSize. A slot carries
	// an optional resource: non-nil means a returned resource awaiting
	// reuse, nil is a tombstone left behind when a resource was destroyed
	// during recycling.
	queue chan entry[T]

	// recvMu guards the single consumer of queue: only one acquirer at a
	// time may block on the receive, which combined with the queue's
	// FIFO order gives overall FIFO fairness among waiters.
	recvMu sync.Mutex

	// size is the number of resources the pool has caused to exist and
	// not yet destroyed. Never exceeds config.MaxSize at quiescence.
	size atomic.Int64

	// available is non-negative when it counts resources sitting in the
	// queue, and negative when its absolute value counts waiters
	// currently blocked in acquisition. Relaxed ordering is sufficient
	// throughout: the queue itself provides the happens-before
	// relationship between producers (returning handles) and consumers
	// (waiting acquirers).
	available atomic.Int64
}

func (p *poolInner[T]) trySend(e entry[T]) bool {
	select {
	case p.queue <- e:
		return true
	default:
		return false
	}
}

// Pool is a generic, asynchronous object pool for expensive-to-create
// resources of type T. A Pool value is cheap to copy; every copy shares
// the same underlying state.
type Pool[T any] struct {
	inner *poolInner[T]
}

// Status is a read-only snapshot of a Pool's counters, sampled
// non-atomically relative to each other. It is intended for observability
// and tests; a torn read (size and available observed at slightly
// different instants) is acceptable.
type Status struct {
	// Size is the number of resources the pool has caused to exist and
	// not yet destroyed.
	Size int64
	// Available is the number of resources parked in the queue when
	// non-negative, or the (negated) number of blocked waiters when
	// negative.
	Available int64
}

// New constructs a Pool with the given manager and hard capacity and no
// configured timeouts. Construction performs no I/O and cannot fail;
// backend reachability is discovered lazily on the first Get.
func New[T any](manager Manager[T], maxSize int) Pool[T] {
	return FromConfig[T](manager, NewPoolConfig(maxSize))
}

// FromConfig constructs a Pool with an explicit configuration record.
func FromConfig[T any](manager Manager[T], config PoolConfig) Pool[T] {
	return Pool[T]{
		inner: &poolInner[T]{
			manager: manager,
			config:  config,
			queue:   make(chan entry[T], config.MaxSize),
		},
	}
}

// Status returns a snapshot of the pool's counters.
func (p Pool[T]) Status() Status {
	return Status{
		Size:      p.inner.size.Load(),
		Available: p.inner.available.Load(),
	}
}

// Get acquires one resource, minting a new one if capacity allows or
// recycling a previously returned one otherwise, blocking the caller
// while the pool is saturated. The returned Handle must have its Release
// method called (typically via defer) once the caller is done with the
// resource.
//
// Get may fail in two ways, both surfaced as a *PoolError: a phase
// (create, wait, or recycle) exceeded its configured budget
// (KindTimeout), or the manager's Create returned an error (KindBackend).
// A resource rejected by the manager's Recycle is discarded silently and
// Get goes on to the next candidate or mints a new one, so a single Get
// may pass many rejected recycle attempts; Get never returns a
// KindRecycleFailure error.
//
// Cancelling ctx (or its own deadline elapsing) aborts Get and returns
// ctx.Err() directly; this never leaks pool capacity, since whatever
// partial reservation the in-flight attempt held is reconciled exactly as
// if the handle had been released in its current state.
func (p Pool[T]) Get(ctx context.Context) (*Handle[T], error) {
	inner := p.inner
	maxSize := int64(inner.config.MaxSize)

	available := inner.available.Add(-1)
	size := inner.size.Load()
	h := newHandle(inner)

	for {
		if available <= 0 && size < maxSize {
			// Try to mint: reserve a creation slot optimistically.
			if inner.size.Add(1) <= maxSize {
				// Slot reserved. We're not consuming a queued/parked
				// resource after all, so undo the waiter-slot decrement
				// from above.
				inner.available.Add(1)
				h.state = stateCreating
				resource, err := createWithTimeout[T](ctx, inner)
				if err != nil {
					h.Release()
					return nil, err
				}
				h.resource = &resource
				h.state = stateReady
				return h, nil
			}
			// Lost the race: size would exceed maxSize. Undo and fall
			// through to waiting.
			size = inner.size.Add(-1)
		}

		slot, err := waitWithTimeout[T](ctx, inner)
		if err != nil {
			h.Release()
			return nil, err
		}

		if slot.value == nil {
			// Tombstone: a previous holder died mid-recycle. Account for
			// the destroyed resource and restart from the top.
			size = inner.size.Add(-1)
			available = inner.available.Add(-1)
			continue
		}

		h.resource = slot.value
		h.state = stateRecycling
		if recErr := recycleWithTimeout[T](ctx, inner, h.resource); recErr != nil {
			var pe *PoolError
			if errors.As(recErr, &pe) && pe.Kind == KindRecycleFailure {
				// The manager legitimately rejected the resource (no
				// timeout involved): absorb the failure, discard the
				// resource, and try again.
				h.state = stateNew
				h.resource = nil
				size = inner.size.Add(-1)
				available = inner.available.Add(-1)
				continue
			}
			// Either a phase timeout or the caller's own ctx was
			// cancelled/expired: surface it and let Release reconcile
			// the in-flight Recycling state (pushes a tombstone).
			h.Release()
			return nil, recErr
		}

		h.state = stateReady
		return h, nil
	}
}
