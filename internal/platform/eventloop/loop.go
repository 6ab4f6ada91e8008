// Package eventloop runs a page session's work on one goroutine. Timer
// callbacks and network completions are posted back to the loop, so session
// state never has concurrent writers.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned by Do once the loop has been stopped.
var ErrStopped = errors.New("event loop stopped")

// Poster queues work for the loop goroutine.
type Poster interface {
	Post(fn func())
}

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing if it has not fired yet.
	Stop() bool
}

// Clock schedules callbacks on the loop after a delay.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Spawner runs a blocking task off the loop.
type Spawner func(task func())

// Go runs task on a new goroutine.
func Go(task func()) { go task() }

// Loop executes posted functions one at a time in posting order.
type Loop struct {
	queue chan func()
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func New(buffer int) *Loop {
	if buffer < 1 {
		buffer = 64
	}
	return &Loop{
		queue: make(chan func(), buffer),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start runs the loop until Stop is called.
func (l *Loop) Start() {
	go func() {
		defer close(l.done)
		for {
			select {
			case <-l.quit:
				return
			case fn := <-l.queue:
				fn()
			}
		}
	}()
}

// Post queues fn. Work posted after Stop is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.quit:
	case l.queue <- fn:
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case <-l.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case l.queue <- wrapped:
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop ends the loop. Queued work that has not started is discarded.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.quit) })
	<-l.done
}

// Clock returns a wall clock whose callbacks run on this loop.
func (l *Loop) Clock() Clock { return loopClock{loop: l} }

type loopClock struct {
	loop *Loop
}

func (c loopClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { c.loop.Post(fn) })
}
