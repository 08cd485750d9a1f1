package loading

import (
	"errors"
	"fmt"
)

// ErrAwaitTimeout marks the dispatcher giving up on range workers after
// the configured await bound.
var ErrAwaitTimeout = errors.New("timed out awaiting range workers")

// WriterInitError means setting up a write path failed before any row of
// the affected range was committed: pool construction, store location
// resolution or handler creation/initialisation.
type WriterInitError struct {
	Op  string
	Err error
}

func (e *WriterInitError) Error() string {
	return fmt.Sprintf("error while initializing writer [%s]: %s", e.Op, e.Err.Error())
}

func (e *WriterInitError) Unwrap() error {
	return e.Err
}

// InterruptedError means the dispatcher stopped waiting for its workers,
// either because the caller cancelled, the step was closed underneath it
// or the await bound expired. It says nothing about whether any worker
// actually failed.
type InterruptedError struct {
	Err error
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("data writer await interrupted : %s", e.Err.Error())
}

func (e *InterruptedError) Unwrap() error {
	return e.Err
}

// RangeExecutionError means a range worker failed while feeding or
// finalizing its handler, after initialisation succeeded.
type RangeExecutionError struct {
	RangeID int
	Err     error
}

func (e *RangeExecutionError) Error() string {
	return fmt.Sprintf("range %d failed : %s", e.RangeID, e.Err.Error())
}

func (e *RangeExecutionError) Unwrap() error {
	return e.Err
}

// UnexpectedError wraps failures no other kind claims, panics included.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("there is an unexpected error : %s", e.Err.Error())
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// IndexFinalizeError wraps index listener finalization failures. It is
// only ever logged, closing the step must not fail on it.
type IndexFinalizeError struct {
	Err error
}

func (e *IndexFinalizeError) Error() string {
	return fmt.Sprintf("error while closing the index writers : %s", e.Err.Error())
}

func (e *IndexFinalizeError) Unwrap() error {
	return e.Err
}
