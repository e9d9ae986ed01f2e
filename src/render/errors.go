package render

import (
	"errors"
	"fmt"
)

// Retry errors. The surface or swapchain cannot be used for this frame; the
// frame loop recreates its swapchain-dependent resources and carries on.
var (
	ErrOutOfDate          = errors.New("render: swapchain out of date")
	ErrSuboptimal         = errors.New("render: swapchain suboptimal")
	ErrTimeout            = errors.New("render: timed out")
	ErrSurfaceUnavailable = errors.New("render: surface has no drawable area")
)

// IsRetry reports whether err is recoverable by recreating the swapchain.
func IsRetry(err error) bool {
	return errors.Is(err, ErrOutOfDate) ||
		errors.Is(err, ErrSuboptimal) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrSurfaceUnavailable)
}

// FatalError is returned when a resource the renderer cannot work without
// fails to be created.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("render: %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatal(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return err
	}
	return &FatalError{Op: op, Err: err}
}

// InvariantError is the panic value raised when internal bookkeeping is
// inconsistent. It is never returned as an error.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "render: invariant violated: " + e.Msg
}

func invariant(ok bool, format string, args ...interface{}) {
	if !ok {
		panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
	}
}
