package pool

import "context"

// Manager creates and validates resources of type T on behalf of a Pool.
// A Manager must be safe for concurrent use: the pool invokes Create and
// Recycle from many goroutines at once, and never while holding an
// internal lock.
type Manager[T any] interface {
	// Create produces a new resource, potentially performing I/O.
	Create(ctx context.Context) (T, error)

	// Recycle inspects and/or mutates an existing resource, reporting
	// whether it is fit for reuse. A nil return means the resource may be
	// handed to the next acquirer unchanged. A non-nil return rejects the
	// resource: Pool.Get discards it and moves on without surfacing the
	// error. RecycleBackend and RecycleMessage build the two rejection
	// shapes; any other error is wrapped as a backend rejection
	// automatically.
	Recycle(ctx context.Context, resource *T) error
}
