// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/term"
)

// Code is an ANSI SGR parameter.
type Code int

const (
	// NoColor is the environment variable that disables colour output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces colour output.
	ForceColor = "FORCE_COLOR"

	csi   = "\033["
	reset = "\033[0m"
)

// Text attributes.
const (
	Reset Code = 0
	Bold  Code = 1
	Faint Code = 2
)

// Foreground colours.
const (
	FgRed     Code = 31
	FgGreen   Code = 32
	FgYellow  Code = 33
	FgBlue    Code = 34
	FgMagenta Code = 35
	FgCyan    Code = 36
	FgWhite   Code = 37

	FgHiBlack   Code = 90
	FgHiRed     Code = 91
	FgHiMagenta Code = 95
	FgHiWhite   Code = 97
)

var enabled atomic.Bool

func init() {
	enabled.Store(detect(os.Getenv, func() bool {
		return term.IsTerminal(int(os.Stdout.Fd()))
	}))
}

// Enabled reports whether Colorize emits escape sequences.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled overrides terminal detection. It returns the previous setting.
func SetEnabled(v bool) bool {
	return enabled.Swap(v)
}

// Colorize wraps str in the given codes followed by a reset.
// It returns str unchanged when colour is disabled or no codes are given.
func Colorize(str string, codes ...Code) string {
	if !Enabled() || len(codes) == 0 {
		return str
	}

	params := make([]string, len(codes))
	for i, c := range codes {
		params[i] = strconv.Itoa(int(c))
	}

	var sb strings.Builder

	sb.Grow(len(str) + len(csi) + len(reset) + 3*len(codes) + 1)
	sb.WriteString(csi)
	sb.WriteString(strings.Join(params, ";"))
	sb.WriteByte('m')
	sb.WriteString(str)
	sb.WriteString(reset)

	return sb.String()
}

func detect(getenv func(string) string, isTerminal func() bool) bool {
	if getenv(NoColor) != "" {
		return false
	}

	if getenv(ForceColor) != "" {
		return true
	}

	return isTerminal()
}
