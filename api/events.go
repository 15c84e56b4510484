// File: api/events.go
// Package api defines the shared contracts of hioload-udp.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// EventMask is a bit set of I/O conditions on a file descriptor.
type EventMask uint32

const (
	// EventRead indicates the descriptor can be read without blocking.
	EventRead EventMask = 1 << iota
	// EventWrite indicates the descriptor can be written without blocking.
	EventWrite
	// EventError indicates an error or hangup condition on the descriptor.
	EventError
)

// Interest is the subscription a caller registers with a Reactor.
// It is the same bit set as EventMask, restricted to read/write.
type Interest = EventMask

const (
	InterestNone      Interest = 0
	InterestRead      Interest = EventRead
	InterestWrite     Interest = EventWrite
	InterestReadWrite Interest = EventRead | EventWrite
)

// Readable reports whether the mask contains the read condition.
func (m EventMask) Readable() bool { return m&EventRead != 0 }

// Writable reports whether the mask contains the write condition.
func (m EventMask) Writable() bool { return m&EventWrite != 0 }

// HasError reports whether the mask contains the error condition.
func (m EventMask) HasError() bool { return m&EventError != 0 }

// Readiness is one wait result: a descriptor and the conditions it entered.
type Readiness struct {
	FD     uintptr
	Events EventMask
}
