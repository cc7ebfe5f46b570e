// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func drain[E any](t *testing.T, ch <-chan E) []E {
	t.Helper()

	var out []E

	timeout := time.After(2 * time.Second)

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}

			out = append(out, e)
		case <-timeout:
			t.Fatal("queue was not closed in time")
		}
	}
}

func TestQueue_OrderAndClose(t *testing.T) {
	q := NewQueue[int]()

	for i := range 100 {
		q.Report(i)
	}

	q.Close()

	got := drain(t, q.Events())
	require.Len(t, got, 100)

	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestQueue_ReportNeverBlocksWithoutConsumer(t *testing.T) {
	q := NewQueue[int]()
	done := make(chan struct{})

	go func() {
		defer close(done)

		for i := range 10_000 {
			q.Report(i)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Report blocked")
	}

	q.Close()
	assert.Len(t, drain(t, q.Events()), 10_000)
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue[int]()

	var wg sync.WaitGroup

	for p := range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range 250 {
				q.Report(p*1000 + i)
			}
		}()
	}

	wg.Wait()
	q.Close()

	got := drain(t, q.Events())
	assert.Len(t, got, 1000)
}

func TestQueue_ReportAfterCloseIsDropped(t *testing.T) {
	q := NewQueue[string]()
	q.Report("kept")
	q.Close()
	q.Close()
	q.Report("dropped")

	assert.Equal(t, []string{"kept"}, drain(t, q.Events()))
}

func TestListen(t *testing.T) {
	q := NewQueue[string]()
	rec := &Recorder[string]{}
	done := Listen[string](q.Events(), rec)

	q.Report("a")
	q.Report("b")
	q.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not finish")
	}

	assert.Equal(t, []string{"a", "b"}, rec.Events())
}

func TestListenerFunc(t *testing.T) {
	var got []int

	var l Listener[int] = ListenerFunc[int](func(i int) { got = append(got, i) })
	l.OnEvent(7)
	assert.Equal(t, []int{7}, got)
}

func TestNullReporter(t *testing.T) {
	var r Reporter[int] = NullReporter[int]{}
	r.Report(1)
	r.Close()
}

func TestRecorder(t *testing.T) {
	rec := &Recorder[int]{}
	rec.Report(1)
	rec.OnEvent(2)
	rec.Close()
	rec.Report(3)

	events := rec.Events()
	events[0] = 99
	assert.Equal(t, []int{1, 2}, rec.Events(), "Events must return a copy")
}
