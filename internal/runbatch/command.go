// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"strings"
	"unicode"
)

// DefaultElevationPrefix is the command prefix that marks a command as needing elevation.
const DefaultElevationPrefix = "pkexec"

// Elevation states how a raw command declares its privilege requirement.
type Elevation int

const (
	// ElevationAuto derives the requirement from the elevation prefix in the text.
	ElevationAuto Elevation = iota
	// ElevationRequired forces elevation. A leading prefix is still stripped.
	ElevationRequired
	// ElevationNone runs the text as-is without elevation.
	ElevationNone
)

// String returns the lowercase name of the elevation mode.
func (e Elevation) String() string {
	switch e {
	case ElevationAuto:
		return "auto"
	case ElevationRequired:
		return "required"
	case ElevationNone:
		return "none"
	default:
		return "unknown"
	}
}

// RawCommand is a command as submitted by a caller.
type RawCommand struct {
	Text      string
	Elevation Elevation
}

// Shell returns a RawCommand whose elevation is derived from its text.
func Shell(text string) RawCommand {
	return RawCommand{Text: text}
}

// Elevated returns a RawCommand that always requires elevation.
func Elevated(text string) RawCommand {
	return RawCommand{Text: text, Elevation: ElevationRequired}
}

// Commands converts plain strings into RawCommands with derived elevation.
func Commands(texts ...string) []RawCommand {
	out := make([]RawCommand, len(texts))
	for i, t := range texts {
		out[i] = Shell(t)
	}

	return out
}

// CommandStep is a classified command. Text never carries the elevation prefix.
type CommandStep struct {
	Text              string
	RequiresElevation bool
}

// Classifier decides which commands need elevation.
type Classifier struct {
	Prefix string
}

// NewClassifier returns a Classifier using DefaultElevationPrefix.
func NewClassifier() Classifier {
	return Classifier{Prefix: DefaultElevationPrefix}
}

// Classify converts one raw command into a step.
// The command is elevated when its trimmed text starts with the prefix followed by
// whitespace, or when the caller asked for elevation explicitly.
func (c Classifier) Classify(raw RawCommand) CommandStep {
	text := strings.TrimSpace(raw.Text)
	rest, prefixed := c.stripPrefix(text)

	switch raw.Elevation {
	case ElevationNone:
		return CommandStep{Text: text}
	case ElevationRequired:
		return CommandStep{Text: rest, RequiresElevation: true}
	default:
		if prefixed {
			return CommandStep{Text: rest, RequiresElevation: true}
		}

		return CommandStep{Text: text}
	}
}

// ClassifyAll classifies commands preserving order.
func (c Classifier) ClassifyAll(raws []RawCommand) []CommandStep {
	steps := make([]CommandStep, len(raws))
	for i, r := range raws {
		steps[i] = c.Classify(r)
	}

	return steps
}

func (c Classifier) stripPrefix(text string) (string, bool) {
	prefix := c.Prefix
	if prefix == "" {
		prefix = DefaultElevationPrefix
	}

	if !strings.HasPrefix(text, prefix) {
		return text, false
	}

	rest := text[len(prefix):]
	if rest == "" || !unicode.IsSpace(rune(rest[0])) {
		return text, false
	}

	return strings.TrimLeftFunc(rest, unicode.IsSpace), true
}
