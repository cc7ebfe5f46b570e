// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/flashboost/flashboost/internal/excerpt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineMatcher(t *testing.T) {
	testCases := []struct {
		name   string
		writes []string
		want   bool
	}{
		{name: "no output", want: false},
		{name: "plain failure", writes: []string{"E: Unable to lock\n"}, want: false},
		{name: "shell not found", writes: []string{"sh: 1: foo: not found\n"}, want: true},
		{name: "bash style", writes: []string{"bash: foo: command not found\n"}, want: true},
		{name: "missing file", writes: []string{"env: 'foo': No such file or directory\n"}, want: true},
		{name: "split across writes", writes: []string{"sh: 1: foo: no", "t fo", "und\n"}, want: true},
		{name: "unterminated last line", writes: []string{"ok\n", "sh: 1: foo: not found"}, want: true},
		{name: "not found inside a word", writes: []string{"notfound\n"}, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newLineMatcher(notFoundPattern)

			for _, w := range tc.writes {
				n, err := m.Write([]byte(w))
				require.NoError(t, err)
				assert.Equal(t, len(w), n)
			}

			assert.Equal(t, tc.want, m.Matched())
		})
	}
}

func TestLineMatcher_SeesLinesPastTheExcerpt(t *testing.T) {
	m := newLineMatcher(notFoundPattern)
	ex := excerpt.NewWriter(excerpt.DefaultMaxLines)
	w := io.MultiWriter(ex, m)

	for i := range 50 {
		_, err := fmt.Fprintf(w, "W: warning %d\n", i)
		require.NoError(t, err)
	}

	_, err := io.WriteString(w, "sh: 1: missing-tool: not found\n")
	require.NoError(t, err)

	assert.True(t, ex.Excerpt().Truncated)
	assert.True(t, m.Matched())
}

func TestLineMatcher_LongLineIsBounded(t *testing.T) {
	m := newLineMatcher(notFoundPattern)

	_, err := io.WriteString(m, strings.Repeat("x", 10*excerpt.MaxLineBytes))
	require.NoError(t, err)

	assert.LessOrEqual(t, len(m.partial), excerpt.MaxLineBytes)
	assert.False(t, m.Matched())
}
