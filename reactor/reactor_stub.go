//go:build !linux && !darwin
// +build !linux,!darwin

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"errors"

	"github.com/momentics/hioload-udp/api"
)

// New returns an error for unsupported platforms.
func New(cfg Config) (api.Reactor, error) {
	return nil, errors.New("reactor: this platform is not supported")
}

// NewSelect returns an error for unsupported platforms.
func NewSelect(trigger api.TriggerMode) (api.Reactor, error) {
	return nil, errors.New("reactor: this platform is not supported")
}
