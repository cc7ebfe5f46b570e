// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/flashboost/flashboost/internal/progress"
)

var (
	// ErrRunnerBusy is returned when a runner is asked to start while a batch is running.
	ErrRunnerBusy = errors.New("runner is already running a batch")
	// ErrRunnerCompleted is returned when a completed runner is started without a reset.
	ErrRunnerCompleted = errors.New("runner has completed; reset it before starting another batch")
)

// RunState is the lifecycle state of a Runner.
type RunState int32

const (
	// StateIdle accepts a new batch.
	StateIdle RunState = iota
	// StateRunning is executing a batch.
	StateRunning
	// StateCompleted has emitted Finished and accepts nothing until Reset.
	StateCompleted
)

// String returns the name of the state.
func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// DefaultQuietPrefixes are the commands whose successful output is never surfaced.
var DefaultQuietPrefixes = []string{"sync", "find", "sysctl", "echo"}

// OutputPolicy decides which successful groups surface their output.
type OutputPolicy struct {
	QuietPrefixes []string
}

// DefaultOutputPolicy returns a policy using DefaultQuietPrefixes.
func DefaultOutputPolicy() OutputPolicy {
	return OutputPolicy{QuietPrefixes: slices.Clone(DefaultQuietPrefixes)}
}

// Quiet reports whether every step of the group starts with a quiet command.
func (p OutputPolicy) Quiet(g ExecutionGroup) bool {
	if len(g.Steps) == 0 || len(p.QuietPrefixes) == 0 {
		return false
	}

	for _, s := range g.Steps {
		fields := strings.Fields(s.Text)
		if len(fields) == 0 || !slices.Contains(p.QuietPrefixes, fields[0]) {
			return false
		}
	}

	return true
}

// Runner drives a batch of groups through a StepExecutor, stopping at the first failure.
type Runner struct {
	executor StepExecutor
	policy   OutputPolicy
	timeout  time.Duration
	state    atomic.Int32
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOutputPolicy sets the output suppression policy.
func WithOutputPolicy(p OutputPolicy) RunnerOption {
	return func(r *Runner) {
		r.policy = p
	}
}

// WithGroupTimeout sets the timeout passed to the executor for every group.
// A non-positive value leaves the choice to the executor.
func WithGroupTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates an idle Runner.
func NewRunner(executor StepExecutor, opts ...RunnerOption) *Runner {
	r := &Runner{
		executor: executor,
		policy:   DefaultOutputPolicy(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// State returns the current lifecycle state.
func (r *Runner) State() RunState {
	return RunState(r.state.Load())
}

// Reset returns a completed runner to idle.
func (r *Runner) Reset() error {
	if r.state.CompareAndSwap(int32(StateCompleted), int32(StateIdle)) {
		return nil
	}

	if r.State() == StateRunning {
		return ErrRunnerBusy
	}

	return nil
}

// Run executes the batch on the calling goroutine, reporting events to reporter.
// The reporter is not closed.
func (r *Runner) Run(
	ctx context.Context, action string, groups []ExecutionGroup, reporter progress.Reporter[Event],
) (BatchOutcome, error) {
	if err := r.acquire(); err != nil {
		return BatchOutcome{}, err
	}

	return r.execute(ctx, action, groups, reporter), nil
}

// Start executes the batch on a new goroutine. The returned channel delivers every
// event of the batch and is closed after EventFinished.
func (r *Runner) Start(ctx context.Context, action string, groups []ExecutionGroup) (<-chan Event, error) {
	if err := r.acquire(); err != nil {
		return nil, err
	}

	queue := progress.NewQueue[Event]()

	go func() {
		defer queue.Close()

		r.execute(ctx, action, groups, queue)
	}()

	return queue.Events(), nil
}

func (r *Runner) acquire() error {
	if r.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil
	}

	if r.State() == StateRunning {
		return ErrRunnerBusy
	}

	return ErrRunnerCompleted
}

func (r *Runner) execute(
	ctx context.Context, action string, groups []ExecutionGroup, reporter progress.Reporter[Event],
) (outcome BatchOutcome) {
	if reporter == nil {
		reporter = progress.NullReporter[Event]{}
	}

	logger := ctxlog.Logger(ctx).With("action", action)

	outcome = BatchOutcome{
		Action:         action,
		OverallSuccess: true,
		NothingToDo:    len(groups) == 0,
		StepResults:    make([]StepResult, 0, len(groups)),
	}

	// inFlight is the group whose StepBegan has been reported but whose result has not.
	var inFlight *ExecutionGroup

	defer func() {
		if p := recover(); p != nil {
			logger.Error("batch aborted", "panic", p)

			res := StepResult{Outcome: internalOutcome(fmt.Errorf("%w: %v", ErrExecutorPanic, p))}

			outcome.OverallSuccess = false
			outcome.NothingToDo = false

			if inFlight != nil {
				res.Group = *inFlight
				reporter.Report(stepFailedEvent(action, res))
			}

			outcome.StepResults = append(outcome.StepResults, res)
		}

		r.state.Store(int32(StateCompleted))
		reporter.Report(finishedEvent(outcome))

		logger.Debug("batch finished", "success", outcome.OverallSuccess, "steps", len(outcome.StepResults))
	}()

	logger.Debug("batch started", "groups", len(groups))
	reporter.Report(startedEvent(action))

	for _, g := range groups {
		label := g.DisplayLabel()
		reporter.Report(stepBeganEvent(action, label))

		inFlight = &g
		res := r.executor.Execute(ctx, g, r.timeout)
		inFlight = nil

		outcome.StepResults = append(outcome.StepResults, res)

		if !res.Outcome.Success() {
			logger.Info("step failed", "label", label, "kind", res.Outcome.Kind.String(), "exitCode", res.Outcome.ExitCode)
			reporter.Report(stepFailedEvent(action, res))

			outcome.OverallSuccess = false

			return outcome
		}

		if lines := res.Stdout.DisplayLines(); len(lines) > 0 && !r.policy.Quiet(g) {
			reporter.Report(stepOutputEvent(action, label, lines))
		}
	}

	return outcome
}
