package supervisor

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions the CLI maps to specific exit behavior.
var (
	// ErrNotRunning is returned by Stop when no PID record exists at all:
	// the target was never started (or a prior stop already cleaned up).
	ErrNotRunning = errors.New("target is not running")

	// ErrAlreadyStopped is returned by Stop when a PID record existed but
	// the process was already gone. Recoverable: the desired end state
	// holds, and the stale record has been removed.
	ErrAlreadyStopped = errors.New("target already stopped")
)

// AlreadyRunningError is returned by Start when a live instance exists.
type AlreadyRunningError struct {
	PID int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("target already running (pid %d)", e.PID)
}

// LaunchError wraps a failure to create the target process, or an exit
// within the configured start window. No PID record survives it.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string { return "launch failed: " + e.Err.Error() }
func (e *LaunchError) Unwrap() error { return e.Err }

// SignalError wraps a signal delivery failure other than "no such process"
// (typically permission denied). The PID record is kept: the process is
// still there, we just could not reach it.
type SignalError struct {
	Err error
}

func (e *SignalError) Error() string { return "signal delivery failed: " + e.Err.Error() }
func (e *SignalError) Unwrap() error { return e.Err }
