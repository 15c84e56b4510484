// File: facade/echoserver.go
// Unified facade layer for hioload-udp.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the EchoServer struct, which aggregates the core
// components of the library behind a single facade. It constructs the
// non-blocking socket, the platform reactor, and the echo event loop from
// immutable configuration, and exposes methods to start/stop the system and
// retrieve runtime metrics.

package facade

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-udp/api"
	"github.com/momentics/hioload-udp/control"
	"github.com/momentics/hioload-udp/loop"
	"github.com/momentics/hioload-udp/queue"
	"github.com/momentics/hioload-udp/reactor"
	"github.com/momentics/hioload-udp/transport"
)

// Config holds parameters immutable per run.
type Config struct {
	ListenAddr      string          // UDP address to bind, IPv4
	Trigger         api.TriggerMode // Reactor trigger semantics
	QueueDepth      int             // Outgoing queue bound
	MaxReadsPerPass int             // Per-pass receive cap
	MaxMessageSize  int             // Receive buffer size in bytes
	WaitTimeoutMs   int             // Reactor wait timeout; negative blocks
}

// DefaultConfig returns default configuration values: IPv4 loopback port
// 2000, level triggering, eight pending echoes, 1500-byte datagrams.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      "127.0.0.1:2000",
		Trigger:         api.LevelTriggered,
		QueueDepth:      queue.DefaultDepth,
		MaxReadsPerPass: loop.DefaultMaxReadsPerPass,
		MaxMessageSize:  loop.DefaultMaxMessageSize,
		WaitTimeoutMs:   -1,
	}
}

// EchoServer is the main facade type.
// It implements api.GracefulShutdown to allow unified shutdown logic.
type EchoServer struct {
	sock    api.PacketSocket
	reactor api.Reactor
	loop    *loop.EchoLoop

	config  *Config
	mu      sync.Mutex
	started bool
}

// Ensure compliance with api.GracefulShutdown.
var _ api.GracefulShutdown = (*EchoServer)(nil)

// New constructs an EchoServer: socket, reactor, and loop, wired but not yet
// running. Extra loop options (logger, metrics, ...) are applied last so they
// can override the config-derived ones.
func New(cfg *Config, opts ...loop.Option) (*EchoServer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	sock, err := transport.ListenUDP(cfg.ListenAddr)
	if err != nil {
		return nil, api.NewFatal(api.StageSetup, fmt.Errorf("socket init: %w", err))
	}

	r, err := reactor.New(reactor.Config{Trigger: cfg.Trigger})
	if err != nil {
		sock.Close()
		return nil, api.NewFatal(api.StageSetup, fmt.Errorf("reactor init: %w", err))
	}

	loopOpts := append([]loop.Option{
		loop.WithQueueDepth(cfg.QueueDepth),
		loop.WithMaxReadsPerPass(cfg.MaxReadsPerPass),
		loop.WithMaxMessageSize(cfg.MaxMessageSize),
		loop.WithWaitTimeout(cfg.WaitTimeoutMs),
	}, opts...)

	return &EchoServer{
		sock:    sock,
		reactor: r,
		loop:    loop.New(sock, r, loopOpts...),
		config:  cfg,
	}, nil
}

// Run serves echoes until Stop is called or a fatal error occurs. It blocks;
// callers wanting a background server run it in a goroutine and watch Done.
func (s *EchoServer) Run() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return api.ErrLoopRunning
	}
	s.started = true
	s.mu.Unlock()
	return s.loop.Run()
}

// Stop requests loop shutdown and closes the reactor once the loop is done.
// Calling Stop on a non-started server releases resources immediately.
func (s *EchoServer) Stop() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	s.loop.Stop()
	if started {
		<-s.loop.Done()
	} else {
		s.sock.Close()
	}
	return s.reactor.Close()
}

// Shutdown implements api.GracefulShutdown by delegating to Stop().
func (s *EchoServer) Shutdown() error {
	return s.Stop()
}

// Done is closed once the loop has exited.
func (s *EchoServer) Done() <-chan struct{} { return s.loop.Done() }

// Metrics returns the loop's metrics registry.
func (s *EchoServer) Metrics() *control.MetricsRegistry { return s.loop.Metrics() }

// LocalAddr returns the bound address, useful when ListenAddr used port 0.
func (s *EchoServer) LocalAddr() string { return s.sock.LocalAddr().String() }
