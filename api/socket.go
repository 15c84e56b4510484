// File: api/socket.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-blocking datagram socket contract. The socket never buffers in user
// space; queueing pending echoes is the caller's job, so a slow peer can
// never silently eat kernel buffer shared with other traffic.

package api

import "net"

// PacketSocket abstracts one non-blocking UDP endpoint.
type PacketSocket interface {
	// TryRecvFrom reads one datagram into p without blocking.
	// Returns ErrWouldBlock when no datagram is queued in the kernel.
	TryRecvFrom(p []byte) (n int, addr *net.UDPAddr, err error)

	// TrySendTo writes one datagram to addr without blocking.
	// Returns ErrWouldBlock when the kernel cannot accept the datagram now;
	// the caller retains ownership of p and must retry later.
	TrySendTo(p []byte, addr *net.UDPAddr) (n int, err error)

	// FD returns the underlying descriptor for reactor registration.
	FD() uintptr

	// LocalAddr returns the bound local address.
	LocalAddr() *net.UDPAddr

	// Close releases the descriptor.
	Close() error
}

// Datagram is one pending echo: where to send it and what to send.
type Datagram struct {
	Addr    *net.UDPAddr
	Payload []byte
}
