// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sink

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/flashboost/flashboost/internal/color"
	"github.com/flashboost/flashboost/internal/progress"
	"github.com/flashboost/flashboost/internal/runbatch"
)

// TimeFormat is the timestamp layout of every log line.
const TimeFormat = "15:04:05"

const (
	stepIndent   = "  "
	detailIndent = "     "
)

var _ progress.Listener[runbatch.Event] = (*LogSink)(nil)

// LogSink writes one line per event to an io.Writer. It tracks whether a batch is
// in progress so the caller can block overlapping submissions.
type LogSink struct {
	w       io.Writer
	now     func() time.Time
	mu      sync.Mutex
	busy    bool
	outcome *runbatch.BatchOutcome
}

// Option configures a LogSink.
type Option func(*LogSink)

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *LogSink) {
		s.now = now
	}
}

// New creates a LogSink writing to w.
func New(w io.Writer, opts ...Option) *LogSink {
	s := &LogSink{
		w:   w,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Busy reports whether a batch has started and not yet finished.
func (s *LogSink) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.busy
}

// Outcome returns the outcome of the last finished batch.
func (s *LogSink) Outcome() (runbatch.BatchOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome == nil {
		return runbatch.BatchOutcome{}, false
	}

	return *s.outcome, true
}

// Log writes a free-form line.
func (s *LogSink) Log(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.write(msg)
}

// OnEvent implements progress.Listener.
func (s *LogSink) OnEvent(ev runbatch.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range Render(ev) {
		s.write(line)
	}

	switch ev.Type {
	case runbatch.EventStarted:
		s.busy = true
	case runbatch.EventFinished:
		s.busy = false
		s.outcome = ev.Batch
	}
}

func (s *LogSink) write(msg string) {
	ts := color.Colorize("["+s.now().Format(TimeFormat)+"]", color.FgHiBlack)
	fmt.Fprintf(s.w, "%s %s\n", ts, msg) //nolint:errcheck
}

// Render turns an event into display lines without timestamps.
func Render(ev runbatch.Event) []string {
	switch ev.Type {
	case runbatch.EventStarted:
		return []string{color.Colorize("Running: "+ev.Action, color.Bold)}

	case runbatch.EventStepBegan:
		return []string{stepIndent + "‹‹ " + ev.Label}

	case runbatch.EventStepOutput:
		return indent(ev.Lines, detailIndent)

	case runbatch.EventStepFailed:
		lines := []string{
			stepIndent + color.Colorize(failureMark(ev.Outcome.Kind)+" failed: "+ev.Label, color.FgRed),
			detailIndent + ev.Detail,
		}

		if len(ev.Lines) > 1 {
			lines = append(lines, indent(ev.Lines, detailIndent+"   ")...)
		}

		if ev.Hint != "" {
			lines = append(lines, detailIndent+color.Colorize(ev.Hint, color.FgYellow))
		}

		return lines

	case runbatch.EventFinished:
		if ev.Batch == nil {
			return nil
		}

		switch {
		case ev.Batch.NothingToDo:
			return []string{color.Colorize("Nothing to do: "+ev.Action, color.FgYellow)}
		case ev.Batch.OverallSuccess:
			return []string{color.Colorize("Completed successfully: "+ev.Action, color.FgGreen, color.Bold)}
		default:
			return []string{color.Colorize("Completed with errors: "+ev.Action, color.FgRed, color.Bold)}
		}
	}

	return nil
}

// NoteLine renders a note about how an action was prepared for this host.
func NoteLine(note string) string {
	return color.Colorize("Note: "+note, color.Faint)
}

func failureMark(k runbatch.FailureKind) string {
	switch k {
	case runbatch.FailureTimeout:
		return "⌛"
	case runbatch.FailureCommandNotFound:
		return "?"
	case runbatch.FailureAuthCancelled:
		return "🔒"
	default:
		return "✗"
	}
}

func indent(lines []string, prefix string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = prefix + strings.TrimRight(l, " \t")
	}

	return out
}
