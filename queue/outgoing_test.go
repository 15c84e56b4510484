package queue_test

import (
	"net"
	"testing"

	"github.com/momentics/hioload-udp/api"
	"github.com/momentics/hioload-udp/queue"
)

func dgram(port int, payload string) api.Datagram {
	return api.Datagram{
		Addr:    &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port},
		Payload: []byte(payload),
	}
}

func TestOutgoingFIFO(t *testing.T) {
	q := queue.NewOutgoing(4)
	for i, p := range []string{"a", "b", "c"} {
		if !q.Push(dgram(5000+i, p)) {
			t.Fatalf("push %q rejected below capacity", p)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("expected length 3, got %d", q.Len())
	}
	head, ok := q.Peek()
	if !ok || string(head.Payload) != "a" {
		t.Fatalf("peek returned %q, want a", head.Payload)
	}
	for _, want := range []string{"a", "b", "c"} {
		d, ok := q.Pop()
		if !ok {
			t.Fatal("pop on non-empty queue failed")
		}
		if string(d.Payload) != want {
			t.Fatalf("pop order: got %q, want %q", d.Payload, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("pop on empty queue succeeded")
	}
}

func TestOutgoingDropNewestOnOverflow(t *testing.T) {
	q := queue.NewOutgoing(2)
	if !q.Push(dgram(5000, "old")) || !q.Push(dgram(5001, "mid")) {
		t.Fatal("pushes below capacity rejected")
	}
	if q.Push(dgram(5002, "new")) {
		t.Fatal("push past capacity accepted")
	}
	if q.Len() != 2 {
		t.Fatalf("overflow changed length: %d", q.Len())
	}
	if q.Dropped() != 1 {
		t.Fatalf("expected 1 drop, got %d", q.Dropped())
	}
	// Composition unchanged: the oldest entries survive.
	d, _ := q.Pop()
	if string(d.Payload) != "old" {
		t.Fatalf("overflow disturbed queue head: %q", d.Payload)
	}
}

func TestOutgoingDefaultDepth(t *testing.T) {
	q := queue.NewOutgoing(0)
	if q.Depth() != queue.DefaultDepth {
		t.Fatalf("expected default depth %d, got %d", queue.DefaultDepth, q.Depth())
	}
}
