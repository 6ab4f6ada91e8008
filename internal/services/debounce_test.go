package services

import (
	"epsg-map-service/internal/platform/eventloop"
	"testing"
	"time"
)

func TestDebounceCollapsesBurst(t *testing.T) {
	clock := &eventloop.ManualClock{}
	d := NewDebounceScheduler(clock, 500*time.Millisecond)

	var ran []int
	for i := 1; i <= 5; i++ {
		i := i
		d.Schedule(func() { ran = append(ran, i) })
		clock.Advance(100 * time.Millisecond)
	}

	if len(ran) != 0 {
		t.Fatalf("expected nothing to run during the burst, got %v", ran)
	}
	if clock.Armed() != 1 {
		t.Fatalf("expected 1 armed timer, got %d", clock.Armed())
	}

	clock.Advance(500 * time.Millisecond)
	if len(ran) != 1 || ran[0] != 5 {
		t.Fatalf("expected only the last callback, got %v", ran)
	}
	if d.Pending() {
		t.Fatalf("expected no pending callback after firing")
	}
}

func TestDebounceCancel(t *testing.T) {
	clock := &eventloop.ManualClock{}
	d := NewDebounceScheduler(clock, time.Second)

	ran := false
	d.Schedule(func() { ran = true })
	if !d.Cancel() {
		t.Fatalf("expected Cancel to report a pending callback")
	}
	if d.Cancel() {
		t.Fatalf("expected second Cancel to report nothing pending")
	}

	clock.Advance(2 * time.Second)
	if ran {
		t.Fatalf("cancelled callback ran")
	}
}

func TestDebounceIgnoresReplacedQueuedCallback(t *testing.T) {
	// Timers fire by posting to the loop; a replaced callback may already be queued.
	loop := &eventloop.ManualLoop{}
	clock := &eventloop.ManualClock{}
	posting := postingClock{clock: clock, loop: loop}
	d := NewDebounceScheduler(posting, time.Second)

	var ran []string
	d.Schedule(func() { ran = append(ran, "first") })
	clock.Advance(time.Second)
	if loop.Len() != 1 {
		t.Fatalf("expected fired timer to be queued, got %d", loop.Len())
	}

	d.Schedule(func() { ran = append(ran, "second") })
	loop.Drain()
	if len(ran) != 0 {
		t.Fatalf("replaced callback ran: %v", ran)
	}

	clock.Advance(time.Second)
	loop.Drain()
	if len(ran) != 1 || ran[0] != "second" {
		t.Fatalf("expected [second], got %v", ran)
	}
}

type postingClock struct {
	clock *eventloop.ManualClock
	loop  *eventloop.ManualLoop
}

func (c postingClock) AfterFunc(d time.Duration, fn func()) eventloop.Timer {
	return c.clock.AfterFunc(d, func() { c.loop.Post(fn) })
}
