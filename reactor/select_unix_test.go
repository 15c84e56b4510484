//go:build linux || darwin
// +build linux darwin

package reactor_test

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-udp/api"
	"github.com/momentics/hioload-udp/reactor"
)

func TestSelectRejectsEdgeTriggering(t *testing.T) {
	if _, err := reactor.NewSelect(api.EdgeTriggered); err != api.ErrEdgeUnsupported {
		t.Fatalf("expected ErrEdgeUnsupported, got %v", err)
	}
}

func TestSelectReportsReadable(t *testing.T) {
	r, err := reactor.NewSelect(api.LevelTriggered)
	if err != nil {
		t.Fatalf("reactor setup: %v", err)
	}
	defer r.Close()

	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	if err := r.Register(uintptr(p[0]), api.InterestRead); err != nil {
		t.Fatalf("register: %v", err)
	}

	events := make([]api.Readiness, 8)
	if n, err := r.Wait(events, 50); err != nil || n != 0 {
		t.Fatalf("idle wait: n=%d err=%v", n, err)
	}

	if _, err := unix.Write(p[1], []byte{1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	n, err := r.Wait(events, 1000)
	if err != nil || n != 1 {
		t.Fatalf("wait: n=%d err=%v", n, err)
	}
	if events[0].FD != uintptr(p[0]) || !events[0].Events.Readable() {
		t.Fatalf("unexpected event: %+v", events[0])
	}

	// select is level-triggered by nature: renotifies while unread.
	if n, err := r.Wait(events, 100); err != nil || n != 1 {
		t.Fatalf("renotify: n=%d err=%v", n, err)
	}

	if err := r.Modify(uintptr(p[0]), api.InterestNone); err != nil {
		t.Fatalf("modify: %v", err)
	}
	if n, err := r.Wait(events, 50); err != nil || n != 0 {
		t.Fatalf("interest none still reported: n=%d err=%v", n, err)
	}

	if err := r.Deregister(uintptr(p[0])); err != nil {
		t.Fatalf("deregister: %v", err)
	}
}

func TestSelectWakeupInterruptsWait(t *testing.T) {
	r, err := reactor.NewSelect(api.LevelTriggered)
	if err != nil {
		t.Fatalf("reactor setup: %v", err)
	}
	defer r.Close()

	done := make(chan struct{})
	go func() {
		events := make([]api.Readiness, 8)
		n, err := r.Wait(events, -1)
		if err != nil || n != 0 {
			t.Errorf("wakeup wait: n=%d err=%v", n, err)
		}
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := r.Wakeup(); err != nil {
		t.Fatalf("wakeup: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("wait not interrupted by wakeup")
	}
}

func TestSelectRejectsOversizedFD(t *testing.T) {
	r, err := reactor.NewSelect(api.LevelTriggered)
	if err != nil {
		t.Fatalf("reactor setup: %v", err)
	}
	defer r.Close()
	if err := r.Register(uintptr(4096), api.InterestRead); err == nil {
		t.Fatal("fd beyond FD_SETSIZE accepted")
	}
}
