// File: loop/options.go
// Package loop defines functional options for EchoLoop construction.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package loop

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-udp/control"
)

// Option customizes loop initialization.
type Option func(*EchoLoop)

// WithQueueDepth bounds the outgoing queue; arrivals past the bound are
// dropped, never blocked on.
func WithQueueDepth(depth int) Option {
	return func(l *EchoLoop) {
		l.queueDepth = depth
	}
}

// WithMaxReadsPerPass caps how many datagrams one pass may drain before
// yielding, bounding monopolization when several sockets share a thread.
func WithMaxReadsPerPass(n int) Option {
	return func(l *EchoLoop) {
		if n > 0 {
			l.maxReads = n
		}
	}
}

// WithMaxMessageSize sets the receive buffer size; datagrams beyond it are
// truncated by the kernel as usual for UDP.
func WithMaxMessageSize(n int) Option {
	return func(l *EchoLoop) {
		if n > 0 {
			l.maxMsg = n
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *EchoLoop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithMetrics attaches a shared metrics registry.
func WithMetrics(m *control.MetricsRegistry) Option {
	return func(l *EchoLoop) {
		if m != nil {
			l.metrics = m
		}
	}
}

// WithWaitTimeout sets the reactor wait timeout in milliseconds.
// Negative blocks indefinitely; shutdown relies on reactor Wakeup either way.
func WithWaitTimeout(ms int) Option {
	return func(l *EchoLoop) {
		l.waitTimeoutMs = ms
	}
}
