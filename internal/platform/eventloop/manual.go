package eventloop

import (
	"sort"
	"time"
)

// ManualLoop queues posted work until Drain is called.
type ManualLoop struct {
	queue []func()
}

func (m *ManualLoop) Post(fn func()) { m.queue = append(m.queue, fn) }

// Drain runs queued work, including work posted while draining.
// It returns the number of functions run.
func (m *ManualLoop) Drain() int {
	n := 0
	for len(m.queue) > 0 {
		fn := m.queue[0]
		m.queue = m.queue[1:]
		fn()
		n++
	}
	return n
}

// Len reports how much work is queued.
func (m *ManualLoop) Len() int { return len(m.queue) }

// ManualClock fires timers only when advanced.
type ManualClock struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.seq++
	t := &manualTimer{at: c.now + d, seq: c.seq, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and fires due timers in deadline order.
func (c *ManualClock) Advance(d time.Duration) {
	c.now += d
	for {
		due := c.due()
		if due == nil {
			return
		}
		due.fired = true
		due.fn()
	}
}

// Armed reports how many timers are waiting to fire.
func (c *ManualClock) Armed() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *ManualClock) due() *manualTimer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	c.timers = live

	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at != c.timers[j].at {
			return c.timers[i].at < c.timers[j].at
		}
		return c.timers[i].seq < c.timers[j].seq
	})
	if len(c.timers) == 0 || c.timers[0].at > c.now {
		return nil
	}
	return c.timers[0]
}

// Inline runs spawned tasks synchronously on the caller.
func Inline(task func()) { task() }
