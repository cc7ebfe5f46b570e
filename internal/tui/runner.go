// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/flashboost/flashboost/internal/progress"
	"github.com/flashboost/flashboost/internal/runbatch"
	"github.com/flashboost/flashboost/internal/sysinfo"
)

// ErrNoOutcome is returned when the event stream closed without a Finished event.
var ErrNoOutcome = errors.New("event stream closed without a batch outcome")

// Runner drives a batch view for one event stream.
type Runner struct {
	model       *Model
	programOpts []tea.ProgramOption
	exited      chan struct{}
}

// NewRunner creates a Runner for action. The program uses the alternate screen
// unless other program options are given.
func NewRunner(ctx context.Context, action string, provider sysinfo.Provider, opts []Option, programOpts ...tea.ProgramOption) *Runner {
	if len(programOpts) == 0 {
		programOpts = []tea.ProgramOption{tea.WithAltScreen()}
	}

	return &Runner{
		model:       NewModel(ctx, action, provider, opts...),
		programOpts: append(programOpts, tea.WithContext(ctx)),
		exited:      make(chan struct{}),
	}
}

// Model returns the view model.
func (r *Runner) Model() *Model {
	return r.model
}

// Run shows the view until the user quits or, with WithAutoQuit, the batch finishes.
// It always waits for the event stream to close, so a batch is never abandoned
// halfway when the view is closed early. Events that arrive after the view has
// closed are still applied to the model, so LogLines holds the whole batch.
func (r *Runner) Run(ctx context.Context, events <-chan runbatch.Event) (runbatch.BatchOutcome, error) {
	program := tea.NewProgram(r.model, r.programOpts...)

	var (
		outcome *runbatch.BatchOutcome
		seen    []runbatch.Event
	)

	done := progress.Listen(events, progress.ListenerFunc[runbatch.Event](func(ev runbatch.Event) {
		if ev.Type == runbatch.EventFinished && ev.Batch != nil {
			b := *ev.Batch
			outcome = &b
		}

		seen = append(seen, ev)

		// Send returns without delivering once the program has exited.
		program.Send(EventMsg{Event: ev})
	}))

	_, runErr := program.Run()
	close(r.exited)

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		ctxlog.Error(ctx, "terminal view failed", "error", runErr)
	}

	if !r.model.completed {
		ctxlog.Info(ctx, "view closed, waiting for the running batch to finish")
	}

	<-done

	// The event loop applies events in order, so the unapplied ones are a suffix.
	for _, ev := range seen[min(r.model.applied, len(seen)):] {
		r.model.applyEvent(ev)
	}

	if outcome == nil {
		if runErr != nil {
			return runbatch.BatchOutcome{}, fmt.Errorf("%w: %w", ErrNoOutcome, runErr)
		}

		return runbatch.BatchOutcome{}, ErrNoOutcome
	}

	return *outcome, nil
}
