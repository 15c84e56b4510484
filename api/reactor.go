// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness reactor contract. A Reactor owns the OS
// notification primitive (epoll, select, ...) and reports which registered
// descriptors can make progress. Cross-thread wake plumbing (eventfd,
// self-pipe) is an implementation detail hidden behind Wakeup.

package api

// Reactor is the readiness notification facility the event loop blocks on.
//
// Wait may report conditions the caller cannot actually act on (spurious
// wakeups); callers must treat a subsequent WouldBlock from the socket as
// normal, not as an error.
type Reactor interface {
	// Register adds a descriptor with the given interest set.
	Register(fd uintptr, interest Interest) error

	// Modify replaces the interest set of an already registered descriptor.
	Modify(fd uintptr, interest Interest) error

	// Deregister removes a descriptor from the watch set.
	Deregister(fd uintptr) error

	// Wait blocks until at least one registered condition holds, the timeout
	// elapses, or Wakeup is called, and fills events with the results.
	// timeoutMs < 0 blocks indefinitely. Returns the number of events filled;
	// zero with a nil error is a legal outcome (timeout, wakeup, EINTR).
	Wait(events []Readiness, timeoutMs int) (int, error)

	// Wakeup forces a concurrent Wait to return early. Safe to call from
	// any goroutine; this is the only reactor method with that property.
	Wakeup() error

	// Close releases the notification primitive and any internal plumbing.
	Close() error
}

// TriggerMode selects the notification semantics of a reactor.
type TriggerMode int

const (
	// LevelTriggered reactors keep reporting a condition for as long as it
	// holds; a consumer may take one bite per notification.
	LevelTriggered TriggerMode = iota

	// EdgeTriggered reactors report a condition only on the transition into
	// it; a consumer must drain until WouldBlock or the event is lost until
	// the next transition.
	EdgeTriggered
)

// String returns the mode name as used in logs and errors.
func (t TriggerMode) String() string {
	switch t {
	case LevelTriggered:
		return "level"
	case EdgeTriggered:
		return "edge"
	default:
		return "unknown"
	}
}
