// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import "sync"

// Reporter accepts events from a producer.
type Reporter[E any] interface {
	// Report hands the event over. Implementations must not block on the consumer.
	Report(event E)
	// Close signals that no more events will be reported.
	Close()
}

// Listener consumes events on the goroutine that owns its state.
type Listener[E any] interface {
	OnEvent(event E)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc[E any] func(E)

// OnEvent calls f(event).
func (f ListenerFunc[E]) OnEvent(event E) {
	f(event)
}

// NullReporter discards everything.
type NullReporter[E any] struct{}

// Report implements Reporter.
func (NullReporter[E]) Report(E) {}

// Close implements Reporter.
func (NullReporter[E]) Close() {}

// Recorder keeps the events reported before Close in memory. It is safe for concurrent use.
type Recorder[E any] struct {
	mu     sync.Mutex
	events []E
	closed bool
}

// Report implements Reporter. Events reported after Close are dropped.
func (r *Recorder[E]) Report(event E) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.events = append(r.events, event)
}

// Close implements Reporter.
func (r *Recorder[E]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
}

// OnEvent implements Listener, so a Recorder can sit at either end of a Queue.
func (r *Recorder[E]) OnEvent(event E) {
	r.Report(event)
}

// Events returns a copy of the recorded events.
func (r *Recorder[E]) Events() []E {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]E, len(r.events))
	copy(out, r.events)

	return out
}
