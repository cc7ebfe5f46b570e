// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sink

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/flashboost/flashboost/internal/color"
	"github.com/flashboost/flashboost/internal/excerpt"
	"github.com/flashboost/flashboost/internal/progress"
	"github.com/flashboost/flashboost/internal/runbatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 9, 30, 15, 0, time.UTC)
}

func noColour(t *testing.T) {
	t.Helper()

	prev := color.SetEnabled(false)
	t.Cleanup(func() { color.SetEnabled(prev) })
}

func TestLogSink_SuccessfulBatch(t *testing.T) {
	noColour(t)

	var buf bytes.Buffer
	s := New(&buf, WithClock(fixedClock))

	s.OnEvent(runbatch.Event{Type: runbatch.EventStarted, Action: "light-clean"})
	assert.True(t, s.Busy())

	s.OnEvent(runbatch.Event{Type: runbatch.EventStepBegan, Label: "apt-get clean"})
	s.OnEvent(runbatch.Event{Type: runbatch.EventStepOutput, Lines: []string{"one", "two  "}})
	s.OnEvent(runbatch.Event{
		Type:   runbatch.EventFinished,
		Action: "light-clean",
		Batch:  &runbatch.BatchOutcome{Action: "light-clean", OverallSuccess: true},
	})

	assert.False(t, s.Busy())
	assert.Equal(t, strings.Join([]string{
		"[09:30:15] Running: light-clean",
		"[09:30:15]   ‹‹ apt-get clean",
		"[09:30:15]      one",
		"[09:30:15]      two",
		"[09:30:15] Completed successfully: light-clean",
		"",
	}, "\n"), buf.String())

	outcome, ok := s.Outcome()
	require.True(t, ok)
	assert.True(t, outcome.OverallSuccess)
}

func TestRender_Failure(t *testing.T) {
	noColour(t)

	outcome := runbatch.Outcome{
		Kind:     runbatch.FailureAuthCancelled,
		ExitCode: 126,
		Stderr:   excerpt.FromString("Error executing command as another user\nNot authorized\n", 5),
	}

	lines := Render(runbatch.Event{
		Type:    runbatch.EventStepFailed,
		Label:   "elevated group (2 commands)",
		Lines:   outcome.Stderr.DisplayLines(),
		Detail:  outcome.Detail(),
		Hint:    outcome.Hint(),
		Outcome: outcome,
	})

	require.Len(t, lines, 5)
	assert.Equal(t, "  🔒 failed: elevated group (2 commands)", lines[0])
	assert.Equal(t, "     authentication cancelled or denied (exit code 126): "+
		"Error executing command as another user | Not authorized", lines[1])
	assert.Equal(t, "        Error executing command as another user", lines[2])
	assert.Equal(t, "     "+outcome.Hint(), lines[4])
}

func TestRender_Finished(t *testing.T) {
	noColour(t)

	assert.Equal(t, []string{"Nothing to do: x"}, Render(runbatch.Event{
		Type: runbatch.EventFinished, Action: "x", Batch: &runbatch.BatchOutcome{NothingToDo: true, OverallSuccess: true},
	}))
	assert.Equal(t, []string{"Completed with errors: x"}, Render(runbatch.Event{
		Type: runbatch.EventFinished, Action: "x", Batch: &runbatch.BatchOutcome{},
	}))
	assert.Nil(t, Render(runbatch.Event{Type: runbatch.EventFinished}))
}

func TestLogSink_ListensToEngine(t *testing.T) {
	defer goleak.VerifyNone(t)
	noColour(t)

	var buf bytes.Buffer
	s := New(&buf, WithClock(fixedClock))

	engine := runbatch.NewEngine(nil)
	done := progress.Listen(engine.RunBatch(t.Context(), "empty", nil), s)
	<-done

	assert.False(t, s.Busy())
	assert.Contains(t, buf.String(), "Nothing to do: empty")
}

func TestLogSink_Log(t *testing.T) {
	noColour(t)

	var buf bytes.Buffer
	s := New(&buf, WithClock(fixedClock))
	s.Log("hello")
	s.Log(NoteLine("iw is not installed"))

	assert.Equal(t, "[09:30:15] hello\n[09:30:15] Note: iw is not installed\n", buf.String())
}
