// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/flashboost/flashboost/internal/runbatch"
	"github.com/flashboost/flashboost/internal/sink"
	"github.com/flashboost/flashboost/internal/sysinfo"
)

const durationRounding = 100 * time.Millisecond

// EventMsg wraps a batch event for the tea framework.
type EventMsg struct {
	Event runbatch.Event
}

// MetricsMsg carries a fresh metrics sample.
type MetricsMsg struct {
	Snapshot sysinfo.Snapshot
}

type metricsTickMsg struct{}

var _ tea.Model = (*Model)(nil)

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.sampleMetrics())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()
		m.refreshLog()

		return m, nil

	case EventMsg:
		return m, m.applyEvent(msg.Event)

	case MetricsMsg:
		m.metrics = msg.Snapshot
		m.sampled = true

		return m, tea.Tick(MetricsInterval, func(time.Time) tea.Msg { return metricsTickMsg{} })

	case metricsTickMsg:
		return m, m.sampleMetrics()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *Model) sampleMetrics() tea.Cmd {
	if m.provider == nil {
		return nil
	}

	ctx, provider, path := m.ctx, m.provider, m.diskPath

	return func() tea.Msg {
		return MetricsMsg{Snapshot: sysinfo.Sample(ctx, provider, path)}
	}
}

func (m *Model) applyEvent(ev runbatch.Event) tea.Cmd {
	m.applied++

	for _, line := range sink.Render(ev) {
		m.appendLogAt(ev.Timestamp, line)
	}

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = m.now()
	}

	switch ev.Type {
	case runbatch.EventStarted:
		m.busy = true

	case runbatch.EventStepBegan:
		if cur := m.currentStep(); cur != nil && cur.Status == StepRunning {
			cur.Status = StepSucceeded
			cur.Ended = ts
		}

		m.steps = append(m.steps, &Step{Label: ev.Label, Status: StepRunning, Started: ts})

	case runbatch.EventStepFailed:
		if cur := m.currentStep(); cur != nil {
			cur.Status = StepFailed
			cur.Ended = ts
		}

	case runbatch.EventFinished:
		if cur := m.currentStep(); cur != nil && cur.Status == StepRunning {
			cur.Status = StepSucceeded
			cur.Ended = ts
		}

		m.busy = false
		m.completed = true
		m.outcome = ev.Batch

		if m.autoQuit {
			return tea.Quit
		}
	}

	return nil
}

func (m *Model) appendLog(line string) {
	m.appendLogAt(time.Time{}, line)
}

func (m *Model) appendLogAt(ts time.Time, line string) {
	if ts.IsZero() {
		ts = m.now()
	}

	m.logLines = append(m.logLines, "["+ts.Format(sink.TimeFormat)+"] "+line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}

	m.refreshLog()
}

func (m *Model) refreshLog() {
	atBottom := m.viewport.AtBottom() || m.viewport.TotalLineCount() == 0

	m.viewport.SetContent(strings.Join(m.logLines, "\n"))

	if atBottom {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render("flashboost: " + m.action))
	b.WriteByte('\n')
	b.WriteString(m.styles.Metrics.Render(m.metricsLine()))
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Help.Render(m.helpLine()))

	return b.String()
}

func (m *Model) metricsLine() string {
	switch {
	case m.provider == nil:
		return ""
	case !m.sampled:
		return "sampling metrics..."
	default:
		return m.metrics.String()
	}
}

func (m *Model) statusLine() string {
	switch {
	case m.busy:
		label := "starting"
		if cur := m.currentStep(); cur != nil {
			label = fmt.Sprintf("%s [%s]", cur.Label, m.now().Sub(cur.Started).Round(durationRounding))
		}

		return m.spinner.View() + " " + m.styles.Running.Render(label)

	case m.completed && m.outcome != nil && m.outcome.OverallSuccess:
		return m.styles.Success.Render("✔ " + m.outcome.Summary())

	case m.completed && m.outcome != nil:
		return m.styles.Failed.Render("✗ " + m.outcome.Summary())

	default:
		return "waiting"
	}
}

func (m *Model) helpLine() string {
	if m.busy {
		return "↑/↓ scroll • q quit view (the batch keeps running)"
	}

	return "↑/↓ scroll • q quit"
}
