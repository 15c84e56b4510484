//go:build linux || darwin
// +build linux darwin

// File: transport/udp_unix.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-blocking IPv4 UDP socket over raw descriptors.

package transport

import (
	"fmt"
	"net"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-udp/api"
)

// UDPSocket is one non-blocking IPv4 UDP endpoint.
type UDPSocket struct {
	fd     int
	local  *net.UDPAddr
	closed atomic.Bool
}

// ListenUDP opens a non-blocking IPv4 UDP socket bound to addr
// (e.g. "127.0.0.1:2000").
func ListenUDP(addr string) (*UDPSocket, error) {
	laddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", addr, err)
	}
	return ListenUDPAddr(laddr)
}

// ListenUDPAddr opens a non-blocking IPv4 UDP socket bound to laddr.
func ListenUDPAddr(laddr *net.UDPAddr) (*UDPSocket, error) {
	ip4 := laddr.IP.To4()
	if ip4 == nil && len(laddr.IP) != 0 {
		return nil, fmt.Errorf("bind %v: only IPv4 is supported", laddr)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set nonblock: %w", err)
	}
	unix.CloseOnExec(fd)

	sa := &unix.SockaddrInet4{Port: laddr.Port}
	copy(sa.Addr[:], ip4)
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %v: %w", laddr, err)
	}

	// Re-read the bound address so port 0 resolves to the assigned port.
	bound, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("getsockname: %w", err)
	}
	local := sockaddrToUDPAddr(bound)
	if local == nil {
		unix.Close(fd)
		return nil, fmt.Errorf("getsockname: unexpected address family")
	}

	return &UDPSocket{fd: fd, local: local}, nil
}

// TryRecvFrom reads one datagram without blocking.
func (s *UDPSocket) TryRecvFrom(p []byte) (int, *net.UDPAddr, error) {
	if s.closed.Load() {
		return 0, nil, api.ErrSocketClosed
	}
	n, from, err := unix.Recvfrom(s.fd, p, 0)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil, api.ErrWouldBlock
		}
		if err == unix.EINTR {
			return 0, nil, api.ErrWouldBlock
		}
		return 0, nil, fmt.Errorf("recvfrom: %w", err)
	}
	addr := sockaddrToUDPAddr(from)
	if addr == nil {
		return 0, nil, fmt.Errorf("recvfrom: unexpected address family")
	}
	return n, addr, nil
}

// TrySendTo writes one datagram without blocking. On api.ErrWouldBlock the
// caller retains the payload and must retry once the socket is writable.
func (s *UDPSocket) TrySendTo(p []byte, addr *net.UDPAddr) (int, error) {
	if s.closed.Load() {
		return 0, api.ErrSocketClosed
	}
	sa, err := udpAddrToSockaddr(addr)
	if err != nil {
		return 0, err
	}
	if err := unix.Sendto(s.fd, p, 0, sa); err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, api.ErrWouldBlock
		}
		return 0, fmt.Errorf("sendto %v: %w", addr, err)
	}
	return len(p), nil
}

// FD returns the raw descriptor for reactor registration.
func (s *UDPSocket) FD() uintptr { return uintptr(s.fd) }

// LocalAddr returns the bound local address.
func (s *UDPSocket) LocalAddr() *net.UDPAddr { return s.local }

// Close releases the descriptor.
func (s *UDPSocket) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return unix.Close(s.fd)
}

// sockaddrToUDPAddr converts a kernel sockaddr into a net.UDPAddr.
func sockaddrToUDPAddr(sa unix.Sockaddr) *net.UDPAddr {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		ip := make(net.IP, net.IPv4len)
		copy(ip, sa.Addr[:])
		return &net.UDPAddr{IP: ip, Port: sa.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, sa.Addr[:])
		return &net.UDPAddr{IP: ip, Port: sa.Port}
	default:
		return nil
	}
}

// udpAddrToSockaddr converts a net.UDPAddr into a kernel sockaddr.
func udpAddrToSockaddr(addr *net.UDPAddr) (unix.Sockaddr, error) {
	ip4 := addr.IP.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("send to %v: only IPv4 is supported", addr)
	}
	sa := &unix.SockaddrInet4{Port: addr.Port}
	copy(sa.Addr[:], ip4)
	return sa, nil
}
