// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import "time"

// EventType identifies the kind of a progress event.
type EventType int

const (
	// EventStarted is emitted once when a batch begins.
	EventStarted EventType = iota
	// EventStepBegan is emitted before a group is executed.
	EventStepBegan
	// EventStepOutput carries the stdout excerpt of a successful group.
	EventStepOutput
	// EventStepFailed is emitted when a group fails. No further groups run.
	EventStepFailed
	// EventFinished is emitted exactly once when a batch ends.
	EventFinished
)

// String returns the name of the event type.
func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventStepBegan:
		return "step-began"
	case EventStepOutput:
		return "step-output"
	case EventStepFailed:
		return "step-failed"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is a progress notification from a running batch.
// Which payload fields are set depends on Type.
type Event struct {
	Type      EventType
	Action    string
	Label     string
	Lines     []string
	Detail    string
	Hint      string
	Outcome   Outcome
	Batch     *BatchOutcome
	Timestamp time.Time
}

func startedEvent(action string) Event {
	return Event{Type: EventStarted, Action: action, Timestamp: time.Now()}
}

func stepBeganEvent(action, label string) Event {
	return Event{Type: EventStepBegan, Action: action, Label: label, Timestamp: time.Now()}
}

func stepOutputEvent(action, label string, lines []string) Event {
	return Event{Type: EventStepOutput, Action: action, Label: label, Lines: lines, Timestamp: time.Now()}
}

func stepFailedEvent(action string, res StepResult) Event {
	return Event{
		Type:      EventStepFailed,
		Action:    action,
		Label:     res.Group.DisplayLabel(),
		Lines:     res.Outcome.Stderr.DisplayLines(),
		Detail:    res.Outcome.Detail(),
		Hint:      res.Outcome.Hint(),
		Outcome:   res.Outcome,
		Timestamp: time.Now(),
	}
}

func finishedEvent(outcome BatchOutcome) Event {
	return Event{Type: EventFinished, Action: outcome.Action, Batch: &outcome, Timestamp: time.Now()}
}
