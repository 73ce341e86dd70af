package lookahead

import (
	"errors"
	"fmt"
)

// InitErrorKind classifies initialization failures.
type InitErrorKind int

const (
	// AllocationFailed means the worker context could not be allocated.
	AllocationFailed InitErrorKind = iota + 1
	// ThreadSpawnFailed means the worker could not attach its context.
	ThreadSpawnFailed
)

func (k InitErrorKind) String() string {
	switch k {
	case AllocationFailed:
		return "allocation_failed"
	case ThreadSpawnFailed:
		return "thread_spawn_failed"
	default:
		return fmt.Sprintf("init_error(%d)", int(k))
	}
}

var (
	// ErrAllocationFailed matches an *InitError of kind AllocationFailed.
	ErrAllocationFailed = errors.New("lookahead allocation failed")
	// ErrThreadSpawnFailed matches an *InitError of kind ThreadSpawnFailed.
	ErrThreadSpawnFailed = errors.New("lookahead worker failed to start")
)

// InitError reports why New could not build a State. Nothing partially
// constructed survives it.
type InitError struct {
	Kind InitErrorKind
	Err  error
}

func (e *InitError) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause to
// errors.Is and errors.As.
func (e *InitError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

func (e *InitError) sentinel() error {
	if e.Kind == ThreadSpawnFailed {
		return ErrThreadSpawnFailed
	}
	return ErrAllocationFailed
}
