// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flashboost/flashboost/internal/excerpt"
)

var (
	// ErrTimeoutExceeded is returned when a step exceeds its timeout.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrCancelled is returned when the batch context is cancelled while a step runs.
	ErrCancelled = errors.New("execution cancelled")
	// ErrCouldNotStartProcess is returned when the shell could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when an operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrExecutorPanic is returned when the executor itself panics.
	ErrExecutorPanic = errors.New("executor panic")
	// ErrQuoteCommand is returned when an elevated group cannot be quoted for the shell.
	ErrQuoteCommand = errors.New("cannot quote command for elevation")
	// ErrEmptyGroup is returned when an execution group has no steps.
	ErrEmptyGroup = errors.New("execution group has no steps")
)

// FailureKind classifies the outcome of one execution group.
type FailureKind int

const (
	// FailureNone means the group succeeded.
	FailureNone FailureKind = iota
	// FailureNonZeroExit means the process ran and exited non-zero.
	FailureNonZeroExit
	// FailureAuthCancelled means the elevation front-end reported a cancelled or denied authentication.
	FailureAuthCancelled
	// FailureTimeout means the group did not finish within its timeout.
	FailureTimeout
	// FailureCommandNotFound means the shell could not find an executable.
	FailureCommandNotFound
	// FailureInternal means the group could not be executed at all.
	FailureInternal
)

// String returns the name of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "success"
	case FailureNonZeroExit:
		return "non-zero exit"
	case FailureAuthCancelled:
		return "authentication cancelled or denied"
	case FailureTimeout:
		return "timeout"
	case FailureCommandNotFound:
		return "command not found"
	case FailureInternal:
		return "internal error"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of running one group.
type Outcome struct {
	Kind     FailureKind
	ExitCode int
	Stderr   excerpt.Excerpt
	Err      error
}

// Success reports whether the outcome is a success.
func (o Outcome) Success() bool {
	return o.Kind == FailureNone
}

// Detail renders a one-line explanation of a failure suitable for a log line.
// It returns "" for a success.
func (o Outcome) Detail() string {
	var msg string

	switch o.Kind {
	case FailureNone:
		return ""
	case FailureAuthCancelled:
		msg = fmt.Sprintf("authentication cancelled or denied (exit code %d)", o.ExitCode)
	case FailureTimeout:
		msg = "step timed out"
		if o.Err != nil {
			msg = o.Err.Error()
		}
	case FailureCommandNotFound:
		msg = fmt.Sprintf("command not found (exit code %d)", o.ExitCode)
	case FailureNonZeroExit:
		msg = fmt.Sprintf("exit code %d", o.ExitCode)
	default:
		msg = "internal error"
		if o.Err != nil {
			msg += ": " + o.Err.Error()
		}
	}

	if !o.Stderr.Empty() && o.Kind != FailureInternal {
		msg += ": " + strings.Join(o.Stderr.Lines, " | ")
	}

	return msg
}

// Hint returns an actionable suggestion for the failure, or "".
func (o Outcome) Hint() string {
	switch o.Kind {
	case FailureAuthCancelled:
		return "the administrator password prompt was closed or the password was rejected"
	case FailureCommandNotFound:
		return "a required tool or the elevation front-end is not installed"
	case FailureTimeout:
		return "the step was stopped; re-run the action when the system is less busy"
	default:
		return ""
	}
}

// StepResult is the result of executing one group.
type StepResult struct {
	Group    ExecutionGroup
	Outcome  Outcome
	Stdout   excerpt.Excerpt
	Duration time.Duration
}

// BatchOutcome is the aggregate result of a batch.
type BatchOutcome struct {
	Action         string
	OverallSuccess bool
	NothingToDo    bool
	StepResults    []StepResult
}

// Failed returns the failed step result, if any.
func (b BatchOutcome) Failed() (StepResult, bool) {
	for _, r := range b.StepResults {
		if !r.Outcome.Success() {
			return r, true
		}
	}

	return StepResult{}, false
}

// Summary returns a one-line description of the batch outcome.
func (b BatchOutcome) Summary() string {
	switch {
	case b.NothingToDo:
		return fmt.Sprintf("%s: nothing to do", b.Action)
	case b.OverallSuccess:
		return fmt.Sprintf("%s completed successfully (%d steps)", b.Action, len(b.StepResults))
	default:
		if failed, ok := b.Failed(); ok {
			return fmt.Sprintf("%s failed at %s", b.Action, failed.Group.DisplayLabel())
		}

		return fmt.Sprintf("%s failed", b.Action)
	}
}
