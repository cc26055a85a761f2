package pool

import (
	"errors"
	"fmt"
	"time"
)

// TimeoutPhase identifies which phase of an acquisition exceeded its
// configured budget.
type TimeoutPhase int

const (
	// PhaseCreate means the manager's Create call did not finish within
	// PoolConfig.CreateTimeout.
	PhaseCreate TimeoutPhase = iota
	// PhaseWait means no returned resource arrived within PoolConfig.WaitTimeout.
	PhaseWait
	// PhaseRecycle means the manager's Recycle call did not finish within
	// PoolConfig.RecycleTimeout.
	PhaseRecycle
)

func (p TimeoutPhase) String() string {
	switch p {
	case PhaseCreate:
		return "create"
	case PhaseWait:
		return "wait"
	case PhaseRecycle:
		return "recycle"
	default:
		return "unknown"
	}
}

// PoolErrorKind classifies a PoolError. Pool.Get returns KindTimeout and
// KindBackend errors.
type PoolErrorKind int

const (
	// KindTimeout means a phase budget elapsed; see Phase and Elapsed.
	KindTimeout PoolErrorKind = iota
	// KindBackend means the manager's Create call returned an error.
	KindBackend
	// KindRecycleFailure means the manager rejected a candidate resource.
	// Pool.Get absorbs such rejections and keeps going, so it never
	// returns an error of this kind (see the doc on Pool.Get).
	KindRecycleFailure
)

func (k PoolErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindBackend:
		return "backend"
	case KindRecycleFailure:
		return "recycle failure"
	default:
		return "unknown"
	}
}

// PoolError is the error type returned by Pool.Get. Use errors.As to
// recover it and inspect Kind, Phase/Elapsed (KindTimeout) or Err
// (KindBackend, KindRecycleFailure).
type PoolError struct {
	Kind    PoolErrorKind
	Phase   TimeoutPhase
	Elapsed time.Duration
	Err     error
}

func (e *PoolError) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("pool: %s timed out after %s", e.Phase, e.Elapsed)
	case KindBackend:
		return fmt.Sprintf("pool: create failed: %v", e.Err)
	case KindRecycleFailure:
		return fmt.Sprintf("pool: recycle rejected resource: %v", e.Err)
	default:
		return "pool: error"
	}
}

// Unwrap exposes the wrapped backend or recycle error so callers can use
// errors.Is/errors.As against the manager's own error types.
func (e *PoolError) Unwrap() error {
	return e.Err
}

func newTimeoutError(phase TimeoutPhase, elapsed time.Duration) *PoolError {
	return &PoolError{Kind: KindTimeout, Phase: phase, Elapsed: elapsed}
}

func newBackendError(err error) *PoolError {
	return &PoolError{Kind: KindBackend, Err: err}
}

func newRecycleFailureError(err *RecycleError) *PoolError {
	return &PoolError{Kind: KindRecycleFailure, Err: err}
}

// classifyTimeout decides, after a phase context's Done channel fires,
// whether the caller's own ctx is responsible (propagate it verbatim) or
// whether the phase's own deadline elapsed (classify as a PoolError).
func classifyTimeout(parent error, phase TimeoutPhase, start time.Time) error {
	if parent != nil {
		return parent
	}
	return newTimeoutError(phase, time.Since(start))
}

// RecycleError is returned by Manager.Recycle to reject a candidate
// resource. It carries exactly one of two shapes: a wrapped backend error
// (Err non-nil) or a free-form rejection message (Message non-empty).
type RecycleError struct {
	Err     error
	Message string
}

func (e *RecycleError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped backend error, if any.
func (e *RecycleError) Unwrap() error {
	return e.Err
}

// RecycleBackend rejects a resource with a wrapped domain error.
func RecycleBackend(err error) *RecycleError {
	return &RecycleError{Err: err}
}

// RecycleMessage rejects a resource with a free-form reason that is not
// itself a domain error (e.g. "connection closed").
func RecycleMessage(msg string) *RecycleError {
	return &RecycleError{Message: msg}
}

// asRecycleError normalizes whatever error a Manager.Recycle call returned
// into a *RecycleError, wrapping it as a backend error if it isn't one
// already.
func asRecycleError(err error) *RecycleError {
	if err == nil {
		return nil
	}
	var re *RecycleError
	if errors.As(err, &re) {
		return re
	}
	return RecycleBackend(err)
}
