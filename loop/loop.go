// File: loop/loop.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EchoLoop core. The pass structure follows the non-flip-flop discipline:
// sticky per-direction readiness flags are cleared only by WouldBlock, any
// successful I/O re-runs the pass without polling, and the loop blocks in
// the reactor only once both directions are exhausted. Under edge triggering
// the sticky flags are what keeps a condition alive across passes until it
// is drained; under level triggering they merely save redundant wakeups.

package loop

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-udp/api"
	"github.com/momentics/hioload-udp/control"
	"github.com/momentics/hioload-udp/pool"
	"github.com/momentics/hioload-udp/queue"
)

// Conservative defaults for a single loopback echo socket.
const (
	DefaultMaxMessageSize  = 1500
	DefaultMaxReadsPerPass = 16
	defaultMaxEvents       = 16
)

// EchoLoop is a single-threaded echo multiplexer over one UDP socket.
type EchoLoop struct {
	sock    api.PacketSocket
	reactor api.Reactor
	out     *queue.Outgoing
	bufs    *pool.BytePool
	log     logrus.FieldLogger
	metrics *control.MetricsRegistry

	queueDepth    int
	maxReads      int
	maxMsg        int
	waitTimeoutMs int

	quitCh   chan struct{}
	doneCh   chan struct{}
	running  atomic.Bool
	stopOnce sync.Once
}

// New builds an EchoLoop over an already bound socket and constructed
// reactor. The loop takes exclusive ownership of the socket; Run closes it
// on exit. The reactor remains the caller's to close.
func New(sock api.PacketSocket, r api.Reactor, opts ...Option) *EchoLoop {
	l := &EchoLoop{
		sock:          sock,
		reactor:       r,
		log:           logrus.StandardLogger(),
		metrics:       control.NewMetricsRegistry(),
		queueDepth:    queue.DefaultDepth,
		maxReads:      DefaultMaxReadsPerPass,
		maxMsg:        DefaultMaxMessageSize,
		waitTimeoutMs: -1,
		quitCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.out = queue.NewOutgoing(l.queueDepth)
	l.bufs = pool.NewBytePool(l.maxMsg)
	return l
}

// Metrics returns the loop's registry for external snapshots.
func (l *EchoLoop) Metrics() *control.MetricsRegistry { return l.metrics }

// Done is closed once Run has returned and resources are released.
func (l *EchoLoop) Done() <-chan struct{} { return l.doneCh }

// Stop requests shutdown. Safe to call from any goroutine and more than
// once. Pending queue entries are discarded, not flushed.
func (l *EchoLoop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quitCh)
		if err := l.reactor.Wakeup(); err != nil && !errors.Is(err, api.ErrReactorClosed) {
			l.log.WithError(err).Warn("reactor wakeup failed")
		}
	})
}

// Run registers the socket and serves until Stop or a fatal error. It may be
// called at most once. On return the socket is closed and the reactor
// registration released.
func (l *EchoLoop) Run() error {
	if !l.running.CompareAndSwap(false, true) {
		return api.ErrLoopRunning
	}
	defer close(l.doneCh)

	fd := l.sock.FD()
	interest := api.InterestRead
	if err := l.reactor.Register(fd, interest); err != nil {
		l.sock.Close()
		return api.NewFatal(api.StageRegister, err)
	}
	defer func() {
		if err := l.reactor.Deregister(fd); err != nil && !errors.Is(err, api.ErrReactorClosed) {
			l.log.WithError(err).Warn("deregister failed")
		}
		l.sock.Close()
	}()

	recvBuf := make([]byte, l.maxMsg)
	events := make([]api.Readiness, defaultMaxEvents)

	// Optimistically attempt a first read: datagrams may already be queued
	// in the kernel from before registration.
	canRead, canWrite := true, false

	for {
		select {
		case <-l.quitCh:
			return nil
		default:
		}

		progress := false

		if canRead {
			read, fatal := l.drainReads(recvBuf, &canRead, &canWrite)
			if fatal != nil {
				return fatal
			}
			progress = progress || read
		}

		if canWrite && l.out.Len() > 0 {
			wrote, fatal := l.flushQueue(&canWrite)
			if fatal != nil {
				return fatal
			}
			progress = progress || wrote
		}

		if progress {
			// Some direction moved; re-run the pass before blocking so the
			// sticky flags can drain what remains.
			continue
		}

		want := api.InterestRead
		if l.out.Len() > 0 {
			want |= api.InterestWrite
		}
		if want != interest {
			if err := l.reactor.Modify(fd, want); err != nil {
				return api.NewFatal(api.StageRegister, err)
			}
			interest = want
		}

		n, err := l.reactor.Wait(events, l.waitTimeoutMs)
		if err != nil {
			return api.NewFatal(api.StageWait, err)
		}

		canRead, canWrite = false, false
		for i := 0; i < n; i++ {
			if events[i].FD != fd {
				continue
			}
			if events[i].Events.Readable() {
				canRead = true
			}
			if events[i].Events.Writable() {
				canWrite = true
			}
			if events[i].Events.HasError() {
				// Let the next try-op surface the condition as an error.
				canRead = true
			}
		}
	}
}

// drainReads receives until WouldBlock or the per-pass cap, echoing each
// datagram immediately when the socket accepts it and queueing it otherwise.
func (l *EchoLoop) drainReads(recvBuf []byte, canRead, canWrite *bool) (progress bool, fatal error) {
	for reads := 0; reads < l.maxReads; reads++ {
		n, addr, err := l.sock.TryRecvFrom(recvBuf)
		if errors.Is(err, api.ErrWouldBlock) {
			*canRead = false
			return progress, nil
		}
		if err != nil {
			return progress, api.NewFatal(api.StageSocket, err)
		}
		progress = true
		l.metrics.Inc(control.MetricReceived, 1)
		l.log.WithFields(logrus.Fields{"bytes": n, "peer": addr}).Debug("recv")

		// Fast path: echo straight back while the socket is writable; no
		// queue entry, no payload copy.
		_, serr := l.sock.TrySendTo(recvBuf[:n], addr)
		switch {
		case serr == nil:
			l.metrics.Inc(control.MetricEchoedFast, 1)
			l.log.WithFields(logrus.Fields{"bytes": n, "peer": addr}).Debug("sent")
		case errors.Is(serr, api.ErrWouldBlock):
			payload := l.bufs.GetBuffer()[:n]
			copy(payload, recvBuf[:n])
			if l.out.Push(api.Datagram{Addr: addr, Payload: payload}) {
				l.metrics.Inc(control.MetricEnqueued, 1)
				l.log.WithField("pending", l.out.Len()).Debug("queued echo")
			} else {
				l.bufs.PutBuffer(payload)
				l.metrics.Inc(control.MetricDroppedOverflow, 1)
				l.log.WithField("peer", addr).Warn("outgoing buffers exhausted; dropping packet")
			}
			// Having seen a send block we must try the queue and, failing
			// that, poll for writability.
			*canWrite = true
		case api.IsTransientSend(serr):
			l.metrics.Inc(control.MetricDroppedUnreachable, 1)
			l.log.WithError(serr).WithField("peer", addr).Warn("echo destination unreachable; dropping packet")
		default:
			return progress, api.NewFatal(api.StageSocket, serr)
		}
	}
	// Cap hit without WouldBlock: canRead stays set, so the next pass keeps
	// draining. Under edge triggering this is what prevents stranding the
	// rest of a burst.
	return progress, nil
}

// flushQueue sends pending echoes oldest-first until the queue empties or
// the socket pushes back.
func (l *EchoLoop) flushQueue(canWrite *bool) (progress bool, fatal error) {
	for {
		d, ok := l.out.Peek()
		if !ok {
			return progress, nil
		}
		_, serr := l.sock.TrySendTo(d.Payload, d.Addr)
		switch {
		case serr == nil:
			l.out.Pop()
			l.bufs.PutBuffer(d.Payload)
			l.metrics.Inc(control.MetricFlushed, 1)
			l.log.WithFields(logrus.Fields{"bytes": len(d.Payload), "peer": d.Addr}).Debug("sent")
			progress = true
		case errors.Is(serr, api.ErrWouldBlock):
			// Retained at the head for a later attempt.
			*canWrite = false
			return progress, nil
		case api.IsTransientSend(serr):
			l.out.Pop()
			l.bufs.PutBuffer(d.Payload)
			l.metrics.Inc(control.MetricDroppedUnreachable, 1)
			l.log.WithError(serr).WithField("peer", d.Addr).Warn("echo destination unreachable; dropping packet")
			progress = true
		default:
			return progress, api.NewFatal(api.StageSocket, serr)
		}
	}
}
