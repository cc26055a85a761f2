package pool

import (
	"context"
	"time"
)

// createWithTimeout invokes the manager's Create under the pool's
// configured create budget, racing it against the deadline on a separate
// goroutine exactly as the phase's Rust ancestor raced a future against a
// tokio timeout. A nil duration awaits Create to completion.
func createWithTimeout[T any](ctx context.Context, inner *poolInner[T]) (T, error) {
	phaseCtx := ctx
	var cancel context.CancelFunc
	if d := inner.config.CreateTimeout; d != nil {
		phaseCtx, cancel = context.WithTimeout(ctx, *d)
		defer cancel()
	}

	start := time.Now()
	type outcome struct {
		resource T
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		resource, err := inner.manager.Create(phaseCtx)
		done <- outcome{resource, err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return o.resource, newBackendError(o.err)
		}
		return o.resource, nil
	case <-phaseCtx.Done():
		var zero T
		return zero, classifyTimeout(ctx.Err(), PhaseCreate, start)
	}
}

// waitWithTimeout dequeues one returned slot under the pool's configured
// wait budget. Only one goroutine at a time actually blocks on the
// channel receive; the mutex that guarantees this also yields FIFO
// fairness among waiters when combined with the bounded queue.
func waitWithTimeout[T any](ctx context.Context, inner *poolInner[T]) (entry[T], error) {
	d := inner.config.WaitTimeout
	phaseCtx := ctx
	var cancel context.CancelFunc
	if d != nil {
		phaseCtx, cancel = context.WithTimeout(ctx, *d)
		defer cancel()
	}

	start := time.Now()
	inner.recvMu.Lock()
	defer inner.recvMu.Unlock()

	select {
	case e := <-inner.queue:
		return e, nil
	case <-phaseCtx.Done():
		return entry[T]{}, classifyTimeout(ctx.Err(), PhaseWait, start)
	}
}

// recycleWithTimeout invokes the manager's Recycle under the pool's
// configured recycle budget. The returned error is either nil (resource
// accepted), a *PoolError with Kind == KindTimeout, a *PoolError with
// Kind == KindRecycleFailure, or the caller's own ctx error.
func recycleWithTimeout[T any](ctx context.Context, inner *poolInner[T], resource *T) error {
	wrap := func(err error) error {
		if err == nil {
			return nil
		}
		return newRecycleFailureError(asRecycleError(err))
	}

	phaseCtx := ctx
	var cancel context.CancelFunc
	if d := inner.config.RecycleTimeout; d != nil {
		phaseCtx, cancel = context.WithTimeout(ctx, *d)
		defer cancel()
	}

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- inner.manager.Recycle(phaseCtx, resource)
	}()

	select {
	case err := <-done:
		return wrap(err)
	case <-phaseCtx.Done():
		return classifyTimeout(ctx.Err(), PhaseRecycle, start)
	}
}
