// File: loop/fakes_test.go
// Author: momentics <momentics@gmail.com>
//
// In-memory reactor and socket fakes for deterministic loop tests. The fake
// reactor delivers scripted readiness batches through a channel; the fake
// socket serves an inbox slice and flips writability on demand.

package loop_test

import (
	"net"
	"sync"
	"syscall"

	"github.com/momentics/hioload-udp/api"
)

type fakeReactor struct {
	mu         sync.Mutex
	interests  map[uintptr]api.Interest
	modHistory []api.Interest
	script     chan []api.Readiness
	wakeCh     chan struct{}
	waitErr    error
}

func newFakeReactor() *fakeReactor {
	return &fakeReactor{
		interests: make(map[uintptr]api.Interest),
		script:    make(chan []api.Readiness, 16),
		wakeCh:    make(chan struct{}, 1),
	}
}

func (r *fakeReactor) Register(fd uintptr, interest api.Interest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interests[fd] = interest
	return nil
}

func (r *fakeReactor) Modify(fd uintptr, interest api.Interest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interests[fd] = interest
	r.modHistory = append(r.modHistory, interest)
	return nil
}

func (r *fakeReactor) Deregister(fd uintptr) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.interests, fd)
	return nil
}

func (r *fakeReactor) Wait(events []api.Readiness, timeoutMs int) (int, error) {
	r.mu.Lock()
	err := r.waitErr
	r.mu.Unlock()
	if err != nil {
		return 0, err
	}
	select {
	case batch := <-r.script:
		return copy(events, batch), nil
	case <-r.wakeCh:
		return 0, nil
	}
}

func (r *fakeReactor) Wakeup() error {
	select {
	case r.wakeCh <- struct{}{}:
	default:
	}
	return nil
}

func (r *fakeReactor) Close() error { return nil }

// deliver queues one readiness batch for the next Wait.
func (r *fakeReactor) deliver(fd uintptr, mask api.EventMask) {
	r.script <- []api.Readiness{{FD: fd, Events: mask}}
}

func (r *fakeReactor) interest(fd uintptr) api.Interest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interests[fd]
}

func (r *fakeReactor) registered(fd uintptr) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.interests[fd]
	return ok
}

type sentDatagram struct {
	addr    *net.UDPAddr
	payload []byte
}

type fakeSocket struct {
	mu sync.Mutex

	inbox       []sentDatagram // pending TryRecvFrom results
	sent        []sentDatagram
	sendBudget  int  // sends accepted before WouldBlock; <0 means unlimited
	unreachable map[string]bool

	closed       bool
	opsAfterStop int // try-ops observed after Close
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{sendBudget: -1, unreachable: make(map[string]bool)}
}

func peerAddr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
}

func (s *fakeSocket) push(addr *net.UDPAddr, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = append(s.inbox, sentDatagram{addr: addr, payload: payload})
}

func (s *fakeSocket) setSendBudget(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendBudget = n
}

func (s *fakeSocket) markUnreachable(addr *net.UDPAddr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreachable[addr.String()] = true
}

func (s *fakeSocket) sentCopy() []sentDatagram {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentDatagram, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *fakeSocket) TryRecvFrom(p []byte) (int, *net.UDPAddr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.opsAfterStop++
		return 0, nil, api.ErrSocketClosed
	}
	if len(s.inbox) == 0 {
		return 0, nil, api.ErrWouldBlock
	}
	d := s.inbox[0]
	s.inbox = s.inbox[1:]
	n := copy(p, d.payload)
	return n, d.addr, nil
}

func (s *fakeSocket) TrySendTo(p []byte, addr *net.UDPAddr) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.opsAfterStop++
		return 0, api.ErrSocketClosed
	}
	if s.unreachable[addr.String()] {
		return 0, syscall.ECONNREFUSED
	}
	if s.sendBudget == 0 {
		return 0, api.ErrWouldBlock
	}
	if s.sendBudget > 0 {
		s.sendBudget--
	}
	payload := make([]byte, len(p))
	copy(payload, p)
	s.sent = append(s.sent, sentDatagram{addr: addr, payload: payload})
	return len(p), nil
}

func (s *fakeSocket) FD() uintptr { return 42 }

func (s *fakeSocket) LocalAddr() *net.UDPAddr { return peerAddr(2000) }

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
