//go:build linux || darwin
// +build linux darwin

// File: reactor/select_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// POSIX select(2) reactor. Functionally the predecessor of level-triggered
// epoll: the fd sets are rebuilt from the registered interests on every Wait,
// so there is no kernel-side registration to modify. Edge triggering is not
// expressible with select and is rejected at construction. A non-blocking
// self-pipe carries Wakeup nudges.

package reactor

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-udp/api"
)

// selectMaxFD is FD_SETSIZE; select cannot watch descriptors past it.
const selectMaxFD = 1024

type selectReactor struct {
	mu        sync.Mutex
	interests map[int]api.Interest
	pipeR     int // self-pipe read end, watched on every Wait
	pipeW     int
	closed    atomic.Bool
}

// NewSelect constructs a level-triggered select(2) reactor.
func NewSelect(trigger api.TriggerMode) (api.Reactor, error) {
	if trigger == api.EdgeTriggered {
		return nil, api.ErrEdgeUnsupported
	}
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return nil, fmt.Errorf("self-pipe: %w", err)
	}
	for _, fd := range p {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			return nil, fmt.Errorf("self-pipe nonblock: %w", err)
		}
		unix.CloseOnExec(fd)
	}
	return &selectReactor{
		interests: make(map[int]api.Interest),
		pipeR:     p[0],
		pipeW:     p[1],
	}, nil
}

// Register adds a descriptor to the watched set.
func (r *selectReactor) Register(fd uintptr, interest api.Interest) error {
	if r.closed.Load() {
		return api.ErrReactorClosed
	}
	if int(fd) >= selectMaxFD {
		return fmt.Errorf("fd %d exceeds FD_SETSIZE %d", fd, selectMaxFD)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.interests[int(fd)]; ok {
		return fmt.Errorf("fd %d already registered", fd)
	}
	r.interests[int(fd)] = interest
	return nil
}

// Modify replaces the interest set of a registered descriptor.
func (r *selectReactor) Modify(fd uintptr, interest api.Interest) error {
	if r.closed.Load() {
		return api.ErrReactorClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.interests[int(fd)]; !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	r.interests[int(fd)] = interest
	return nil
}

// Deregister removes a descriptor from the watched set.
func (r *selectReactor) Deregister(fd uintptr) error {
	if r.closed.Load() {
		return api.ErrReactorClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.interests[int(fd)]; !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	delete(r.interests, int(fd))
	return nil
}

// Wait rebuilds the fd sets from current interests and blocks in select.
func (r *selectReactor) Wait(events []api.Readiness, timeoutMs int) (int, error) {
	if r.closed.Load() {
		return 0, api.ErrReactorClosed
	}

	var readSet, writeSet unix.FdSet
	readSet.Zero()
	writeSet.Zero()
	nfds := r.pipeR + 1
	readSet.Set(r.pipeR)

	r.mu.Lock()
	fds := make([]int, 0, len(r.interests))
	for fd, interest := range r.interests {
		if interest.Readable() {
			readSet.Set(fd)
		}
		if interest.Writable() {
			writeSet.Set(fd)
		}
		if interest != api.InterestNone {
			fds = append(fds, fd)
			if fd+1 > nfds {
				nfds = fd + 1
			}
		}
	}
	r.mu.Unlock()

	var timeout *unix.Timeval
	if timeoutMs >= 0 {
		tv := unix.NsecToTimeval(int64(timeoutMs) * 1e6)
		timeout = &tv
	}

	n, err := unix.Select(nfds, &readSet, &writeSet, nil, timeout)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("select: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	if readSet.IsSet(r.pipeR) {
		r.drainWake()
	}

	out := 0
	for _, fd := range fds {
		if out == len(events) {
			break
		}
		var mask api.EventMask
		if readSet.IsSet(fd) {
			mask |= api.EventRead
		}
		if writeSet.IsSet(fd) {
			mask |= api.EventWrite
		}
		if mask != 0 {
			events[out] = api.Readiness{FD: uintptr(fd), Events: mask}
			out++
		}
	}
	return out, nil
}

// Wakeup nudges a concurrent Wait via the self-pipe.
func (r *selectReactor) Wakeup() error {
	if r.closed.Load() {
		return api.ErrReactorClosed
	}
	if _, err := unix.Write(r.pipeW, []byte{0}); err != nil && err != unix.EAGAIN {
		return fmt.Errorf("self-pipe write: %w", err)
	}
	return nil
}

// drainWake empties the self-pipe so it stops selecting readable.
func (r *selectReactor) drainWake() {
	var buf [64]byte
	for {
		if _, err := unix.Read(r.pipeR, buf[:]); err != nil {
			return
		}
	}
}

// Close releases the self-pipe. Registered descriptors are not closed; they
// belong to their owners.
func (r *selectReactor) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	unix.Close(r.pipeW)
	return unix.Close(r.pipeR)
}
