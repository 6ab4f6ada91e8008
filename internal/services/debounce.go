package services

import (
	"epsg-map-service/internal/platform/eventloop"
	"time"
)

// DebounceScheduler holds at most one pending callback. Scheduling again
// replaces the pending one, so a burst of requests runs only the last.
type DebounceScheduler struct {
	clock eventloop.Clock
	delay time.Duration
	slot  *debounceSlot
}

type debounceSlot struct {
	timer     eventloop.Timer
	cancelled bool
}

func NewDebounceScheduler(clock eventloop.Clock, delay time.Duration) *DebounceScheduler {
	return &DebounceScheduler{clock: clock, delay: delay}
}

// Schedule arms fn to run after the delay, cancelling any pending callback.
func (d *DebounceScheduler) Schedule(fn func()) {
	d.Cancel()

	slot := &debounceSlot{}
	d.slot = slot
	slot.timer = d.clock.AfterFunc(d.delay, func() {
		// A timer that already fired its Post cannot be stopped; the slot check
		// catches callbacks that were replaced while queued.
		if slot.cancelled || d.slot != slot {
			return
		}
		d.slot = nil
		fn()
	})
}

// Cancel drops the pending callback. It reports whether one was pending.
func (d *DebounceScheduler) Cancel() bool {
	if d.slot == nil {
		return false
	}
	d.slot.cancelled = true
	if d.slot.timer != nil {
		d.slot.timer.Stop()
	}
	d.slot = nil
	return true
}

// Pending reports whether a callback is armed.
func (d *DebounceScheduler) Pending() bool { return d.slot != nil }
