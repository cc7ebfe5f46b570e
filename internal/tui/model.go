// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/flashboost/flashboost/internal/runbatch"
	"github.com/flashboost/flashboost/internal/sink"
	"github.com/flashboost/flashboost/internal/sysinfo"
)

// MetricsInterval is how often the metrics header is refreshed.
const MetricsInterval = 1500 * time.Millisecond

const (
	headerLines = 4
	footerLines = 2
	maxLogLines = 2000
)

// StepStatus is the state of one execution group in the view.
type StepStatus int

const (
	StepRunning StepStatus = iota
	StepSucceeded
	StepFailed
)

// String returns the name of the status.
func (s StepStatus) String() string {
	switch s {
	case StepRunning:
		return "running"
	case StepSucceeded:
		return "succeeded"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step is one execution group as shown in the view.
type Step struct {
	Label   string
	Status  StepStatus
	Started time.Time
	Ended   time.Time
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Metrics lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		Metrics: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
	}
}

// Model is the bubbletea model of the batch view.
type Model struct {
	ctx      context.Context
	action   string
	provider sysinfo.Provider
	diskPath string
	now      func() time.Time

	spinner  spinner.Model
	viewport viewport.Model
	styles   *Styles

	metrics   sysinfo.Snapshot
	sampled   bool
	steps     []*Step
	logLines  []string
	busy      bool
	completed bool
	outcome   *runbatch.BatchOutcome
	applied   int
	notes     []string
	autoQuit  bool
	quitting  bool
	width     int
	height    int
}

// Option configures a Model.
type Option func(*Model)

// WithAutoQuit makes the program exit as soon as the batch finishes.
func WithAutoQuit() Option {
	return func(m *Model) {
		m.autoQuit = true
	}
}

// WithDiskPath sets the filesystem whose usage is shown. Defaults to "/".
func WithDiskPath(path string) Option {
	return func(m *Model) {
		m.diskPath = path
	}
}

// WithNotes starts the log with notes about how the action was prepared.
func WithNotes(notes ...string) Option {
	return func(m *Model) {
		m.notes = append(m.notes, notes...)
	}
}

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// NewModel creates the view for action. A nil provider disables the metrics header.
func NewModel(ctx context.Context, action string, provider sysinfo.Provider, opts ...Option) *Model {
	m := &Model{
		ctx:      ctx,
		action:   action,
		provider: provider,
		diskPath: "/",
		now:      time.Now,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport: viewport.New(80, 20),
		styles:   NewStyles(),
	}

	m.spinner.Style = m.styles.Running

	for _, opt := range opts {
		opt(m)
	}

	for _, note := range m.notes {
		m.appendLog(sink.NoteLine(note))
	}

	return m
}

// Busy reports whether the batch has started and not yet finished.
func (m *Model) Busy() bool {
	return m.busy
}

// Outcome returns the batch outcome once it has finished.
func (m *Model) Outcome() (runbatch.BatchOutcome, bool) {
	if m.outcome == nil {
		return runbatch.BatchOutcome{}, false
	}

	return *m.outcome, true
}

// Steps returns a copy of the steps seen so far.
func (m *Model) Steps() []Step {
	out := make([]Step, len(m.steps))
	for i, s := range m.steps {
		out[i] = *s
	}

	return out
}

// LogLines returns a copy of the log.
func (m *Model) LogLines() []string {
	return append([]string(nil), m.logLines...)
}

func (m *Model) currentStep() *Step {
	if len(m.steps) == 0 {
		return nil
	}

	return m.steps[len(m.steps)-1]
}

func (m *Model) updateViewportSize() {
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-headerLines-footerLines, 1)
}
