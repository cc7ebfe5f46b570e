// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"time"

	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/flashboost/flashboost/internal/progress"
)

// Engine is the submission API. Each RunBatch call plans the commands and runs them
// on a fresh Runner in the background.
type Engine struct {
	classifier Classifier
	executor   StepExecutor
	policy     OutputPolicy
	timeout    time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClassifier sets the command classifier.
func WithClassifier(c Classifier) EngineOption {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithPolicy sets the output policy of every batch.
func WithPolicy(p OutputPolicy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithDefaultStepTimeout sets the per-group timeout used when a batch does not set one.
func WithDefaultStepTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.timeout = d
	}
}

// NewEngine creates an Engine. A nil executor uses NewShellExecutor().
func NewEngine(executor StepExecutor, opts ...EngineOption) *Engine {
	if executor == nil {
		executor = NewShellExecutor()
	}

	e := &Engine{
		classifier: NewClassifier(),
		executor:   executor,
		policy:     DefaultOutputPolicy(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

type runConfig struct {
	timeout time.Duration
}

// RunOption configures a single batch.
type RunOption func(*runConfig)

// WithStepTimeout sets the per-group timeout for one batch.
func WithStepTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		c.timeout = d
	}
}

// Plan classifies and groups the commands without running them.
func (e *Engine) Plan(cmds []RawCommand) []ExecutionGroup {
	return Group(e.classifier.ClassifyAll(cmds))
}

// RunBatch starts a batch and returns its event stream. It never blocks.
// The stream always ends with exactly one EventFinished and is then closed.
// An empty submission finishes with NothingToDo set and starts no process.
func (e *Engine) RunBatch(ctx context.Context, action string, cmds []RawCommand, opts ...RunOption) <-chan Event {
	cfg := runConfig{timeout: e.timeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	groups := e.Plan(cmds)

	ctxlog.Debug(ctx, "submitting batch", "action", action, "commands", len(cmds), "groups", len(groups))

	runner := NewRunner(e.executor, WithOutputPolicy(e.policy), WithGroupTimeout(cfg.timeout))

	events, err := runner.Start(ctx, action, groups)
	if err != nil {
		// A fresh runner is always idle; keep the terminal-event contract regardless.
		queue := progress.NewQueue[Event]()
		queue.Report(startedEvent(action))
		queue.Report(finishedEvent(BatchOutcome{
			Action:      action,
			StepResults: []StepResult{{Outcome: internalOutcome(err)}},
		}))
		queue.Close()

		return queue.Events()
	}

	return events
}

// Collect drains an event stream and returns the events and the final outcome.
func Collect(events <-chan Event) ([]Event, BatchOutcome) {
	var (
		all     []Event
		outcome BatchOutcome
	)

	for ev := range events {
		all = append(all, ev)

		if ev.Type == EventFinished && ev.Batch != nil {
			outcome = *ev.Batch
		}
	}

	return all, outcome
}
