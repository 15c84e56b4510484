// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-udp.

package api

import (
	"errors"
	"fmt"
	"syscall"
)

// Common errors used across the library.
var (
	// ErrWouldBlock is the normal "nothing more available" signal from a
	// non-blocking try-operation. It is not a failure.
	ErrWouldBlock = errors.New("operation would block")

	ErrReactorClosed   = errors.New("reactor is closed")
	ErrSocketClosed    = errors.New("socket is closed")
	ErrEdgeUnsupported = errors.New("edge triggering not supported by this reactor")
	ErrLoopRunning     = errors.New("loop is already running")
)

// Stage identifies where a fatal error was raised, for diagnostics.
type Stage int

const (
	StageSetup Stage = iota
	StageRegister
	StageWait
	StageSocket
)

// String returns the stage name used in fatal diagnostics.
func (s Stage) String() string {
	switch s {
	case StageSetup:
		return "setup"
	case StageRegister:
		return "register"
	case StageWait:
		return "wait"
	case StageSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// FatalError wraps an unrecoverable failure with the stage that raised it.
type FatalError struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal at stage %s: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *FatalError) Unwrap() error { return e.Err }

// NewFatal creates a stage-tagged fatal error.
func NewFatal(stage Stage, err error) *FatalError {
	return &FatalError{Stage: stage, Err: err}
}

// IsTransientSend reports whether a send failure concerns only the specific
// destination and must not abort the loop. ICMP-reported unreachability on a
// connected-less UDP socket surfaces as one of these errnos on the next
// syscall touching the peer.
func IsTransientSend(err error) bool {
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
		syscall.EMSGSIZE,
		syscall.EINTR,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
