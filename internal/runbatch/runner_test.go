// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/flashboost/flashboost/internal/excerpt"
	"github.com/flashboost/flashboost/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeExecutor returns canned outcomes keyed by the joined text of a group.
type fakeExecutor struct {
	mu       sync.Mutex
	outcomes map[string]Outcome
	stdout   map[string]string
	executed []string
	timeouts []time.Duration
	panicOn  string
	block    chan struct{}
}

func (f *fakeExecutor) Execute(_ context.Context, g ExecutionGroup, timeout time.Duration) StepResult {
	f.mu.Lock()
	f.executed = append(f.executed, g.Joined())
	f.timeouts = append(f.timeouts, timeout)
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}

	if f.panicOn != "" && g.Joined() == f.panicOn {
		panic("executor exploded")
	}

	return StepResult{
		Group:   g,
		Outcome: f.outcomes[g.Joined()],
		Stdout:  excerpt.FromString(f.stdout[g.Joined()], excerpt.DefaultMaxLines),
	}
}

func (f *fakeExecutor) Executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.executed...)
}

func groupsOf(steps ...CommandStep) []ExecutionGroup {
	return Group(steps)
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}

	return out
}

func TestRunner_FailFast(t *testing.T) {
	defer goleak.VerifyNone(t)

	exec := &fakeExecutor{outcomes: map[string]Outcome{
		"g2": {Kind: FailureNonZeroExit, ExitCode: 2, Stderr: excerpt.FromString("bad thing", 5)},
	}}
	rec := &progress.Recorder[Event]{}

	outcome, err := NewRunner(exec).Run(t.Context(), "maintenance", groupsOf(plain("g1"), plain("g2"), plain("g3")), rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"g1", "g2"}, exec.Executed())
	assert.False(t, outcome.OverallSuccess)
	assert.False(t, outcome.NothingToDo)
	require.Len(t, outcome.StepResults, 2)

	events := rec.Events()
	assert.Equal(t, []EventType{EventStarted, EventStepBegan, EventStepBegan, EventStepFailed, EventFinished}, eventTypes(events))

	failed := events[3]
	assert.Equal(t, "g2", failed.Label)
	assert.Equal(t, "exit code 2: bad thing", failed.Detail)
	assert.Equal(t, FailureNonZeroExit, failed.Outcome.Kind)

	require.NotNil(t, events[4].Batch)
	assert.False(t, events[4].Batch.OverallSuccess)
	assert.Equal(t, "maintenance failed at g2", events[4].Batch.Summary())
}

func TestRunner_AllSucceedWithOutput(t *testing.T) {
	defer goleak.VerifyNone(t)

	exec := &fakeExecutor{stdout: map[string]string{
		"apt-get clean": "Reading package lists...\n",
		"sync":          "ignored\n",
		"df -h":         "",
	}}
	rec := &progress.Recorder[Event]{}

	outcome, err := NewRunner(exec).Run(t.Context(), "clean",
		groupsOf(plain("apt-get clean"), plain("sync"), plain("df -h")), rec)
	require.NoError(t, err)

	assert.True(t, outcome.OverallSuccess)
	assert.Len(t, outcome.StepResults, 3)

	events := rec.Events()
	assert.Equal(t, []EventType{
		EventStarted,
		EventStepBegan, EventStepOutput,
		EventStepBegan,
		EventStepBegan,
		EventFinished,
	}, eventTypes(events))
	assert.Equal(t, []string{"Reading package lists..."}, events[2].Lines)
	assert.Equal(t, "clean completed successfully (3 steps)", events[5].Batch.Summary())
}

func TestRunner_EmptyBatchIsNothingToDo(t *testing.T) {
	defer goleak.VerifyNone(t)

	exec := &fakeExecutor{}
	rec := &progress.Recorder[Event]{}

	outcome, err := NewRunner(exec).Run(t.Context(), "x", nil, rec)
	require.NoError(t, err)

	assert.Empty(t, exec.Executed())
	assert.True(t, outcome.OverallSuccess)
	assert.True(t, outcome.NothingToDo)
	assert.Empty(t, outcome.StepResults)
	assert.Equal(t, []EventType{EventStarted, EventFinished}, eventTypes(rec.Events()))
}

func TestRunner_PanicStillFinishes(t *testing.T) {
	defer goleak.VerifyNone(t)

	exec := &fakeExecutor{panicOn: "boom"}
	rec := &progress.Recorder[Event]{}
	runner := NewRunner(exec)

	outcome, err := runner.Run(t.Context(), "explode", groupsOf(plain("ok"), plain("boom"), plain("never")), rec)
	require.NoError(t, err)

	assert.False(t, outcome.OverallSuccess)
	assert.Equal(t, []string{"ok", "boom"}, exec.Executed())
	assert.Equal(t, StateCompleted, runner.State())

	events := rec.Events()
	assert.Equal(t, []EventType{
		EventStarted,
		EventStepBegan,
		EventStepBegan, EventStepFailed,
		EventFinished,
	}, eventTypes(events))

	failed := events[3]
	assert.Equal(t, "boom", failed.Label)
	assert.Equal(t, FailureInternal, failed.Outcome.Kind)
	assert.Contains(t, failed.Detail, "executor exploded")

	last := outcome.StepResults[len(outcome.StepResults)-1]
	assert.Equal(t, FailureInternal, last.Outcome.Kind)
	assert.ErrorIs(t, last.Outcome.Err, ErrExecutorPanic)
	assert.Equal(t, "boom", last.Group.Joined())

	summaryFailed, ok := outcome.Failed()
	require.True(t, ok)
	assert.Equal(t, "boom", summaryFailed.Group.DisplayLabel())
}

func TestRunner_StateMachine(t *testing.T) {
	defer goleak.VerifyNone(t)

	exec := &fakeExecutor{block: make(chan struct{})}
	runner := NewRunner(exec)

	assert.Equal(t, StateIdle, runner.State())

	events, err := runner.Start(t.Context(), "first", groupsOf(plain("a")))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(exec.Executed()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateRunning, runner.State())

	_, err = runner.Start(t.Context(), "second", nil)
	require.ErrorIs(t, err, ErrRunnerBusy)
	require.ErrorIs(t, runner.Reset(), ErrRunnerBusy)

	close(exec.block)

	_, outcome := Collect(events)
	assert.True(t, outcome.OverallSuccess)
	assert.Equal(t, StateCompleted, runner.State())

	_, err = runner.Run(t.Context(), "third", nil, nil)
	require.ErrorIs(t, err, ErrRunnerCompleted)

	require.NoError(t, runner.Reset())
	assert.Equal(t, StateIdle, runner.State())

	outcome, err = runner.Run(t.Context(), "fourth", nil, nil)
	require.NoError(t, err)
	assert.True(t, outcome.NothingToDo)
}

func TestRunner_PassesGroupTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	exec := &fakeExecutor{}
	_, err := NewRunner(exec, WithGroupTimeout(42*time.Second)).Run(t.Context(), "t", groupsOf(plain("a"), priv("b")), nil)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{42 * time.Second, 42 * time.Second}, exec.timeouts)
}

func TestRunner_StartedAlwaysFollowedByOneFinished(t *testing.T) {
	defer goleak.VerifyNone(t)

	cases := map[string]*fakeExecutor{
		"success": {},
		"failure": {outcomes: map[string]Outcome{"b": {Kind: FailureTimeout}}},
		"panic":   {panicOn: "b"},
	}

	for name, exec := range cases {
		t.Run(name, func(t *testing.T) {
			events, err := NewRunner(exec).Start(t.Context(), name, groupsOf(plain("a"), plain("b"), plain("c")))
			require.NoError(t, err)

			all, _ := Collect(events)
			require.NotEmpty(t, all)
			assert.Equal(t, EventStarted, all[0].Type)

			finished := 0
			for _, ev := range all {
				if ev.Type == EventFinished {
					finished++
				}
			}

			assert.Equal(t, 1, finished)
			assert.Equal(t, EventFinished, all[len(all)-1].Type)
		})
	}
}

func TestOutputPolicy_Quiet(t *testing.T) {
	p := DefaultOutputPolicy()

	assert.True(t, p.Quiet(ExecutionGroup{Steps: []CommandStep{plain("sync")}}))
	assert.True(t, p.Quiet(ExecutionGroup{Steps: []CommandStep{priv("sysctl -w vm.swappiness=10"), priv("sync")}}))
	assert.True(t, p.Quiet(ExecutionGroup{Steps: []CommandStep{plain("find /tmp -type f -atime +7 -delete")}}))
	assert.False(t, p.Quiet(ExecutionGroup{Steps: []CommandStep{priv("sync"), priv("apt-get clean")}}))
	assert.False(t, p.Quiet(ExecutionGroup{Steps: []CommandStep{plain("synchronize")}}))
	assert.False(t, p.Quiet(ExecutionGroup{}))
	assert.False(t, OutputPolicy{}.Quiet(ExecutionGroup{Steps: []CommandStep{plain("sync")}}))
}
