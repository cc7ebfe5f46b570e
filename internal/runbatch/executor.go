// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/flashboost/flashboost/internal/excerpt"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

const (
	// DefaultStepTimeout bounds a general batch step.
	DefaultStepTimeout = 180 * time.Second
	// TuningStepTimeout bounds light start-up tuning steps.
	TuningStepTimeout = 60 * time.Second
	// DefaultShell interprets every group.
	DefaultShell = "/bin/sh"
	// DefaultOutputGrace is how long output is still read after the shell exits.
	DefaultOutputGrace = 2 * time.Second

	exitCommandNotFound = 127
)

// DefaultAuthExitCodes are the exit codes pkexec uses for a dismissed or rejected authentication.
var DefaultAuthExitCodes = []int{126, 127}

var notFoundPattern = regexp.MustCompile(`(?i)(:\s*(command )?not found\b|no such file or directory)`)

// StepExecutor runs one execution group.
// Implementations never panic and never return an error: every fault is an Outcome.
type StepExecutor interface {
	Execute(ctx context.Context, group ExecutionGroup, timeout time.Duration) StepResult
}

var _ StepExecutor = (*ShellExecutor)(nil)

// ShellExecutor runs groups through a POSIX shell, each in its own process group.
type ShellExecutor struct {
	Shell          string
	Elevator       Elevator
	AuthExitCodes  []int
	ExcerptLines   int
	DefaultTimeout time.Duration
	OutputGrace    time.Duration
	Env            map[string]string
}

// ExecutorOption configures a ShellExecutor.
type ExecutorOption func(*ShellExecutor)

// WithShell sets the interpreter used for every group.
func WithShell(shell string) ExecutorOption {
	return func(e *ShellExecutor) {
		e.Shell = shell
	}
}

// WithElevator sets the elevation front-end.
func WithElevator(el Elevator) ExecutorOption {
	return func(e *ShellExecutor) {
		e.Elevator = el
	}
}

// WithAuthExitCodes sets the exit codes treated as a cancelled or denied authentication.
func WithAuthExitCodes(codes ...int) ExecutorOption {
	return func(e *ShellExecutor) {
		e.AuthExitCodes = slices.Clone(codes)
	}
}

// WithExcerptLines sets how many output lines are kept per stream.
func WithExcerptLines(n int) ExecutorOption {
	return func(e *ShellExecutor) {
		e.ExcerptLines = n
	}
}

// WithDefaultTimeout sets the timeout used when Execute is given a non-positive one.
func WithDefaultTimeout(d time.Duration) ExecutorOption {
	return func(e *ShellExecutor) {
		e.DefaultTimeout = d
	}
}

// WithOutputGrace sets how long output is read after the shell exits.
func WithOutputGrace(d time.Duration) ExecutorOption {
	return func(e *ShellExecutor) {
		e.OutputGrace = d
	}
}

// WithEnv adds environment variables to every group.
func WithEnv(env map[string]string) ExecutorOption {
	return func(e *ShellExecutor) {
		e.Env = env
	}
}

// NewShellExecutor creates a ShellExecutor with defaults applied before the options.
func NewShellExecutor(opts ...ExecutorOption) *ShellExecutor {
	e := &ShellExecutor{
		Shell:          DefaultShell,
		Elevator:       DefaultElevator(),
		AuthExitCodes:  slices.Clone(DefaultAuthExitCodes),
		ExcerptLines:   excerpt.DefaultMaxLines,
		DefaultTimeout: DefaultStepTimeout,
		OutputGrace:    DefaultOutputGrace,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute implements StepExecutor.
func (e *ShellExecutor) Execute(ctx context.Context, group ExecutionGroup, timeout time.Duration) (res StepResult) {
	start := time.Now()
	res.Group = group

	logger := ctxlog.Logger(ctx).
		With("runnableType", "ShellExecutor").
		With("label", group.DisplayLabel())

	defer func() {
		if r := recover(); r != nil {
			logger.Error("executor panic", "panic", r)
			res.Outcome = internalOutcome(fmt.Errorf("%w: %v", ErrExecutorPanic, r))
		}

		res.Duration = time.Since(start)
	}()

	text, err := e.Elevator.ShellText(group)
	if err != nil {
		res.Outcome = internalOutcome(err)
		return res
	}

	if timeout <= 0 {
		timeout = e.DefaultTimeout
	}

	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}

	shell := e.Shell
	if shell == "" {
		shell = DefaultShell
	}

	env := os.Environ()
	for k, v := range e.Env {
		env = append(env, k+"="+v)
	}

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		res.Outcome = internalOutcome(errors.Join(ErrCouldNotStartProcess, err))
		return res
	}
	defer devNull.Close() //nolint:errcheck

	rOut, wOut, err := os.Pipe()
	if err != nil {
		res.Outcome = internalOutcome(errors.Join(ErrFailedToCreatePipe, err))
		return res
	}
	defer rOut.Close() //nolint:errcheck

	rErr, wErr, err := os.Pipe()
	if err != nil {
		_ = wOut.Close()
		res.Outcome = internalOutcome(errors.Join(ErrFailedToCreatePipe, err))

		return res
	}
	defer rErr.Close() //nolint:errcheck

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Debug("starting process", "shell", shell, "timeout", timeout, "elevated", group.Elevated())

	ps, err := os.StartProcess(shell, []string{filepath.Base(shell), "-c", text}, &os.ProcAttr{
		Env:   env,
		Files: []*os.File{devNull, wOut, wErr},
		Sys:   sysProcAttr(),
	})

	// The child holds its own copies; ours must go so readers see EOF.
	_ = wOut.Close()
	_ = wErr.Close()

	if err != nil {
		res.Outcome = internalOutcome(errors.Join(ErrCouldNotStartProcess, err))
		return res
	}

	logger.Debug("process started", "pid", ps.Pid)

	stdout := excerpt.NewWriter(e.ExcerptLines)
	stderr := excerpt.NewWriter(e.ExcerptLines)
	notFound := newLineMatcher(notFoundPattern)

	readers := conc.NewWaitGroup()
	readers.Go(func() { _, _ = io.Copy(stdout, rOut) })
	readers.Go(func() { _, _ = io.Copy(io.MultiWriter(stderr, notFound), rErr) })

	done := make(chan struct{})
	watchdogDone := make(chan struct{})
	// Buffered so the watchdog never blocks once the process has been reaped.
	wasKilled := make(chan error, 1)

	go func() {
		defer close(watchdogDone)

		select {
		case <-stepCtx.Done():
			reason := ErrTimeoutExceeded
			if ctx.Err() != nil {
				reason = ErrCancelled
			}

			logger.Info("killing process group", "pid", ps.Pid, "reason", reason)

			if err := killProcessGroup(ps); err != nil {
				logger.Error("process kill error", "pid", ps.Pid, "error", err)
			}

			wasKilled <- reason

		case <-done:
		}
	}()

	state, waitErr := ps.Wait()
	close(done)
	<-watchdogDone

	var killReason error
	select {
	case killReason = <-wasKilled:
	default:
	}

	if recovered := e.drain(readers, rOut, rErr); recovered != nil {
		logger.Error("output reader panic", "panic", recovered.Value)
	}

	res.Stdout = stdout.Excerpt()
	errExcerpt := stderr.Excerpt()

	if waitErr != nil {
		res.Outcome = internalOutcome(fmt.Errorf("waiting for process: %w", waitErr))
		return res
	}

	res.Outcome = e.classify(group, state.ExitCode(), errExcerpt, notFound.Matched(), killReason, timeout)

	logger.Debug("process finished",
		"exitCode", state.ExitCode(),
		"outcome", res.Outcome.Kind.String(),
	)

	return res
}

// drain waits for the output readers. Once the grace period expires the read ends are
// closed, which unblocks readers held open by orphaned grandchildren.
func (e *ShellExecutor) drain(readers *conc.WaitGroup, pipes ...*os.File) *panics.Recovered {
	var recovered *panics.Recovered

	finished := make(chan struct{})

	go func() {
		defer close(finished)

		recovered = readers.WaitAndRecover()
	}()

	grace := e.OutputGrace
	if grace <= 0 {
		grace = DefaultOutputGrace
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-finished:
	case <-timer.C:
		for _, p := range pipes {
			_ = p.Close()
		}

		<-finished
	}

	return recovered
}

func (e *ShellExecutor) classify(
	group ExecutionGroup, exitCode int, stderr excerpt.Excerpt, notFound bool, killReason error, timeout time.Duration,
) Outcome {
	out := Outcome{ExitCode: exitCode, Stderr: stderr}

	switch {
	case errors.Is(killReason, ErrTimeoutExceeded):
		out.Kind = FailureTimeout
		out.Err = fmt.Errorf("%w after %s", ErrTimeoutExceeded, timeout)
	case killReason != nil:
		out.Kind = FailureInternal
		out.Err = killReason
	case exitCode == 0:
		out.Kind = FailureNone
		out.Stderr = excerpt.Excerpt{}
	case exitCode == exitCommandNotFound && notFound:
		out.Kind = FailureCommandNotFound
	case group.Elevated() && slices.Contains(e.AuthExitCodes, exitCode):
		out.Kind = FailureAuthCancelled
	case exitCode == exitCommandNotFound:
		out.Kind = FailureCommandNotFound
	default:
		out.Kind = FailureNonZeroExit
	}

	return out
}

func internalOutcome(err error) Outcome {
	return Outcome{Kind: FailureInternal, ExitCode: -1, Err: err}
}
