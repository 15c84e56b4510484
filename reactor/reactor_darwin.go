//go:build darwin
// +build darwin

// File: reactor/reactor_darwin.go
// Author: momentics <momentics@gmail.com>
//
// Darwin factory: select(2) is the supported backend. Edge triggering is
// refused by NewSelect.

package reactor

import "github.com/momentics/hioload-udp/api"

// New constructs the default reactor for Darwin.
func New(cfg Config) (api.Reactor, error) {
	return NewSelect(cfg.Trigger)
}
