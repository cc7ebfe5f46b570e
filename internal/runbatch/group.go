// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"fmt"
	"strings"
)

// AndThen joins the steps of an elevated group so the first failure stops the group.
const AndThen = " && "

// ExecutionGroup is one shell invocation. It holds either exactly one non-privileged
// step or one or more privileged steps.
type ExecutionGroup struct {
	Steps []CommandStep
}

// Len returns the number of steps in the group.
func (g ExecutionGroup) Len() int {
	return len(g.Steps)
}

// Elevated reports whether the group runs behind the elevation front-end.
func (g ExecutionGroup) Elevated() bool {
	return len(g.Steps) > 0 && g.Steps[0].RequiresElevation
}

// Joined returns the step texts joined with AndThen.
func (g ExecutionGroup) Joined() string {
	texts := make([]string, len(g.Steps))
	for i, s := range g.Steps {
		texts[i] = s.Text
	}

	return strings.Join(texts, AndThen)
}

// DisplayLabel returns a short human-readable name for the group.
func (g ExecutionGroup) DisplayLabel() string {
	switch {
	case len(g.Steps) == 0:
		return "empty group"
	case g.Elevated() && len(g.Steps) > 1:
		return fmt.Sprintf("elevated group (%d commands)", len(g.Steps))
	case g.Elevated():
		return "elevated: " + g.Steps[0].Text
	default:
		return g.Steps[0].Text
	}
}

// Group merges runs of consecutive privileged steps into single elevated groups.
// Every non-privileged step becomes a group of its own. Order is preserved.
func Group(steps []CommandStep) []ExecutionGroup {
	groups := make([]ExecutionGroup, 0, len(steps))
	var acc []CommandStep

	flush := func() {
		if len(acc) == 0 {
			return
		}

		groups = append(groups, ExecutionGroup{Steps: acc})
		acc = nil
	}

	for _, s := range steps {
		if s.RequiresElevation {
			acc = append(acc, s)
			continue
		}

		flush()
		groups = append(groups, ExecutionGroup{Steps: []CommandStep{s}})
	}

	flush()

	return groups
}

// Flatten concatenates the steps of all groups in order.
func Flatten(groups []ExecutionGroup) []CommandStep {
	n := 0
	for _, g := range groups {
		n += len(g.Steps)
	}

	steps := make([]CommandStep, 0, n)
	for _, g := range groups {
		steps = append(steps, g.Steps...)
	}

	return steps
}

// Regroup flattens already grouped input and groups it again.
func Regroup(groups []ExecutionGroup) []ExecutionGroup {
	return Group(Flatten(groups))
}
