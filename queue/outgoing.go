// File: queue/outgoing.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package queue implements the bounded FIFO of pending echoes owned by the
// event loop. The queue never blocks: past capacity the NEWEST arrival is
// dropped, because stalling the receive path to make room is exactly the
// flip-flop starvation the loop exists to avoid.
package queue

import (
	eq "github.com/eapache/queue"

	"github.com/momentics/hioload-udp/api"
)

// DefaultDepth bounds pending echoes when no explicit depth is configured.
const DefaultDepth = 8

// Outgoing is a bounded FIFO of api.Datagram. Not safe for concurrent use;
// it is owned exclusively by one event loop.
type Outgoing struct {
	q       *eq.Queue
	depth   int
	dropped uint64
}

// NewOutgoing creates a queue bounded at depth entries. A depth below one
// falls back to DefaultDepth.
func NewOutgoing(depth int) *Outgoing {
	if depth < 1 {
		depth = DefaultDepth
	}
	return &Outgoing{q: eq.New(), depth: depth}
}

// Push appends d unless the queue is full. Returns false when d was dropped
// by the overflow policy; the queue contents are unchanged in that case.
func (o *Outgoing) Push(d api.Datagram) bool {
	if o.q.Length() >= o.depth {
		o.dropped++
		return false
	}
	o.q.Add(d)
	return true
}

// Peek returns the oldest pending datagram without removing it.
// ok is false when the queue is empty.
func (o *Outgoing) Peek() (d api.Datagram, ok bool) {
	if o.q.Length() == 0 {
		return api.Datagram{}, false
	}
	return o.q.Peek().(api.Datagram), true
}

// Pop removes and returns the oldest pending datagram.
func (o *Outgoing) Pop() (d api.Datagram, ok bool) {
	if o.q.Length() == 0 {
		return api.Datagram{}, false
	}
	return o.q.Remove().(api.Datagram), true
}

// Len returns the number of pending datagrams.
func (o *Outgoing) Len() int { return o.q.Length() }

// Depth returns the configured bound.
func (o *Outgoing) Depth() int { return o.depth }

// Dropped returns how many arrivals the overflow policy has discarded.
func (o *Outgoing) Dropped() uint64 { return o.dropped }
