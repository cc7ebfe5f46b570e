// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorize(t *testing.T) {
	prev := SetEnabled(true)
	defer SetEnabled(prev)

	assert.Equal(t, "\033[31mfail\033[0m", Colorize("fail", FgRed))
	assert.Equal(t, "\033[1;32mok\033[0m", Colorize("ok", Bold, FgGreen))
	assert.Equal(t, "plain", Colorize("plain"))
}

func TestColorize_Disabled(t *testing.T) {
	prev := SetEnabled(false)
	defer SetEnabled(prev)

	assert.Equal(t, "fail", Colorize("fail", FgRed))
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		terminal bool
		want     bool
	}{
		{name: "terminal", terminal: true, want: true},
		{name: "not a terminal", terminal: false, want: false},
		{name: "NO_COLOR wins", env: map[string]string{NoColor: "1", ForceColor: "1"}, terminal: true, want: false},
		{name: "FORCE_COLOR without terminal", env: map[string]string{ForceColor: "1"}, terminal: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			got := detect(getenv, func() bool { return tt.terminal })
			assert.Equal(t, tt.want, got)
		})
	}
}
