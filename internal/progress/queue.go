// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import "sync"

var _ Reporter[struct{}] = (*Queue[struct{}])(nil)

// Queue is an unbounded FIFO between one or more producers and a single consumer.
//
// Report appends under a mutex and returns immediately; a pump goroutine feeds the
// unbuffered Events channel. After Close the pump drains what is pending and then
// closes Events. The consumer must drain Events, otherwise the pump goroutine stays
// parked on its send.
type Queue[E any] struct {
	mu      sync.Mutex
	pending []E
	closed  bool
	wake    chan struct{}
	out     chan E
}

// NewQueue creates a Queue and starts its pump.
func NewQueue[E any]() *Queue[E] {
	q := &Queue[E]{
		wake: make(chan struct{}, 1),
		out:  make(chan E),
	}

	go q.pump()

	return q
}

// Report implements Reporter. Events reported after Close are discarded.
func (q *Queue[E]) Report(event E) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}

	q.pending = append(q.pending, event)
	q.mu.Unlock()

	q.signal()
}

// Close implements Reporter. It is safe to call more than once.
func (q *Queue[E]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

// Events returns the consumer side. It is closed after the last event following Close.
func (q *Queue[E]) Events() <-chan E {
	return q.out
}

func (q *Queue[E]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue[E]) pump() {
	defer close(q.out)

	for {
		q.mu.Lock()

		if len(q.pending) == 0 {
			closed := q.closed
			q.mu.Unlock()

			if closed {
				return
			}

			<-q.wake

			continue
		}

		event := q.pending[0]

		var zero E

		q.pending[0] = zero
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.out <- event
	}
}

// Listen delivers every event from events to l on a single goroutine.
// The returned channel is closed once events is closed and drained.
func Listen[E any](events <-chan E, l Listener[E]) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		for event := range events {
			l.OnEvent(event)
		}
	}()

	return done
}
