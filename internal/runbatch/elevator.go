// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"

	"mvdan.cc/sh/v3/syntax"
)

// DefaultElevationShell is the shell started by the elevation front-end.
const DefaultElevationShell = "sh"

// Elevator wraps a group's joined text in a single elevation request.
type Elevator struct {
	Prefix string // Elevation front-end, e.g. pkexec.
	Shell  string // Shell the front-end runs the joined text with.
}

// DefaultElevator returns an Elevator running `pkexec sh -c`.
func DefaultElevator() Elevator {
	return Elevator{Prefix: DefaultElevationPrefix, Shell: DefaultElevationShell}
}

// ShellText returns the text passed to the outer shell for the group.
func (e Elevator) ShellText(g ExecutionGroup) (string, error) {
	if len(g.Steps) == 0 {
		return "", ErrEmptyGroup
	}

	if !g.Elevated() {
		return g.Steps[0].Text, nil
	}

	quoted, err := syntax.Quote(g.Joined(), syntax.LangPOSIX)
	if err != nil {
		return "", errors.Join(ErrQuoteCommand, err)
	}

	prefix, shell := e.Prefix, e.Shell
	if prefix == "" {
		prefix = DefaultElevationPrefix
	}

	if shell == "" {
		shell = DefaultElevationShell
	}

	return prefix + " " + shell + " -c " + quoted, nil
}
