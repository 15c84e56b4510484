//go:build linux
// +build linux

// File: reactor/epoll_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor. Supports both level- and edge-triggered
// reporting; the trigger mode is fixed at construction and applied to every
// registered descriptor. An internal eventfd carries Wakeup nudges so a
// blocked Wait can be interrupted from another goroutine.

package reactor

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-udp/api"
)

// epollReactor implements api.Reactor over an epoll instance.
type epollReactor struct {
	epfd    int
	wakefd  int // eventfd, registered level-triggered for EPOLLIN
	trigger api.TriggerMode
	closed  atomic.Bool
}

// New constructs the default reactor for Linux: epoll with the configured
// trigger mode.
func New(cfg Config) (api.Reactor, error) {
	return NewEpoll(cfg.Trigger)
}

// NewEpoll constructs an epoll reactor with explicit trigger semantics.
func NewEpoll(trigger api.TriggerMode) (api.Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	// The wake descriptor stays level-triggered regardless of cfg so a
	// pending nudge is never lost between waits.
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev); err != nil {
		unix.Close(wakefd)
		unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add wakefd: %w", err)
	}
	return &epollReactor{epfd: epfd, wakefd: wakefd, trigger: trigger}, nil
}

// epollEvents translates an interest set into epoll event bits.
func (r *epollReactor) epollEvents(interest api.Interest) uint32 {
	var events uint32
	if interest.Readable() {
		events |= unix.EPOLLIN
	}
	if interest.Writable() {
		events |= unix.EPOLLOUT
	}
	if r.trigger == api.EdgeTriggered {
		events |= unix.EPOLLET
	}
	return events
}

// Register adds a descriptor to the epoll watch list.
func (r *epollReactor) Register(fd uintptr, interest api.Interest) error {
	if r.closed.Load() {
		return api.ErrReactorClosed
	}
	ev := unix.EpollEvent{Events: r.epollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, int(fd), &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	return nil
}

// Modify replaces the interest set of a registered descriptor. Under edge
// triggering the MOD also re-arms the descriptor, so a condition that became
// true while interest was absent is reported again.
func (r *epollReactor) Modify(fd uintptr, interest api.Interest) error {
	if r.closed.Load() {
		return api.ErrReactorClosed
	}
	ev := unix.EpollEvent{Events: r.epollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, int(fd), &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	return nil
}

// Deregister removes a descriptor from the watch list.
func (r *epollReactor) Deregister(fd uintptr) error {
	if r.closed.Load() {
		return api.ErrReactorClosed
	}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

// Wait blocks for events and fills the results into events.
func (r *epollReactor) Wait(events []api.Readiness, timeoutMs int) (int, error) {
	if r.closed.Load() {
		return 0, api.ErrReactorClosed
	}
	rawEvents := make([]unix.EpollEvent, len(events)+1)
	n, err := unix.EpollWait(r.epfd, rawEvents, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	out := 0
	for i := 0; i < n; i++ {
		raw := rawEvents[i]
		if int(raw.Fd) == r.wakefd {
			r.drainWake()
			continue
		}
		if out == len(events) {
			break
		}
		var mask api.EventMask
		if raw.Events&unix.EPOLLIN != 0 {
			mask |= api.EventRead
		}
		if raw.Events&unix.EPOLLOUT != 0 {
			mask |= api.EventWrite
		}
		if raw.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			mask |= api.EventError
		}
		events[out] = api.Readiness{FD: uintptr(raw.Fd), Events: mask}
		out++
	}
	return out, nil
}

// Wakeup nudges a concurrent Wait via the eventfd.
func (r *epollReactor) Wakeup() error {
	if r.closed.Load() {
		return api.ErrReactorClosed
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	if _, err := unix.Write(r.wakefd, buf[:]); err != nil && err != unix.EAGAIN {
		return fmt.Errorf("eventfd write: %w", err)
	}
	return nil
}

// drainWake consumes the eventfd counter so the wake stops reporting.
func (r *epollReactor) drainWake() {
	var buf [8]byte
	for {
		if _, err := unix.Read(r.wakefd, buf[:]); err != nil {
			return
		}
	}
}

// Close releases the epoll instance and the wake descriptor.
func (r *epollReactor) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	unix.Close(r.wakefd)
	return unix.Close(r.epfd)
}
