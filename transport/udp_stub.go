//go:build !linux && !darwin
// +build !linux,!darwin

// File: transport/udp_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package transport

import (
	"errors"
	"net"
)

// UDPSocket is unavailable on this platform.
type UDPSocket struct{}

var errUnsupported = errors.New("transport: this platform is not supported")

// ListenUDP returns an error for unsupported platforms.
func ListenUDP(addr string) (*UDPSocket, error) { return nil, errUnsupported }

// ListenUDPAddr returns an error for unsupported platforms.
func ListenUDPAddr(laddr *net.UDPAddr) (*UDPSocket, error) { return nil, errUnsupported }

func (s *UDPSocket) TryRecvFrom(p []byte) (int, *net.UDPAddr, error) { return 0, nil, errUnsupported }
func (s *UDPSocket) TrySendTo(p []byte, addr *net.UDPAddr) (int, error) {
	return 0, errUnsupported
}
func (s *UDPSocket) FD() uintptr             { return 0 }
func (s *UDPSocket) LocalAddr() *net.UDPAddr { return nil }
func (s *UDPSocket) Close() error            { return nil }
