// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package excerpt

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		max       int
		lines     []string
		truncated bool
	}{
		{
			name:  "empty",
			input: "",
			max:   5,
		},
		{
			name:  "only blank lines",
			input: "\n\n   \n\t\n",
			max:   5,
		},
		{
			name:  "single line without newline",
			input: "hello",
			max:   5,
			lines: []string{"hello"},
		},
		{
			name:  "leading and trailing blanks are trimmed",
			input: "\n\nfirst\nsecond\n\n\n",
			max:   5,
			lines: []string{"first", "second"},
		},
		{
			name:  "inner blank lines are kept",
			input: "a\n\nb\n",
			max:   5,
			lines: []string{"a", "", "b"},
		},
		{
			name:  "crlf line endings",
			input: "one\r\ntwo\r\n",
			max:   5,
			lines: []string{"one", "two"},
		},
		{
			name:  "exactly at the limit",
			input: "1\n2\n3\n",
			max:   3,
			lines: []string{"1", "2", "3"},
		},
		{
			name:  "blank lines past the limit do not truncate",
			input: "1\n2\n3\n\n\n",
			max:   3,
			lines: []string{"1", "2", "3"},
		},
		{
			name:      "unterminated line past the limit truncates",
			input:     "1\n2\n3\n4",
			max:       3,
			lines:     []string{"1", "2", "3"},
			truncated: true,
		},
		{
			name:  "non-positive limit uses the default",
			input: "a\nb\n",
			max:   0,
			lines: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromString(tt.input, tt.max)
			assert.Equal(t, tt.lines, got.Lines)
			assert.Equal(t, tt.truncated, got.Truncated)
		})
	}
}

func TestTwelveLinesKeepsFiveAndMarker(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}

	ex := FromString(sb.String(), DefaultMaxLines)

	require.True(t, ex.Truncated)
	assert.Equal(t, []string{
		"line 1",
		"line 2",
		"line 3",
		"line 4",
		"line 5",
		TruncationMarker,
	}, ex.DisplayLines())
	assert.Equal(t, "line 1\nline 2\nline 3\nline 4\nline 5\n"+TruncationMarker, ex.String())
}

func TestWriter_SplitAcrossWrites(t *testing.T) {
	w := NewWriter(3)

	for _, chunk := range []string{"hel", "lo\nwor", "ld", "\n", "again"} {
		n, err := w.Write([]byte(chunk))
		require.NoError(t, err)
		assert.Equal(t, len(chunk), n)
	}

	assert.Equal(t, []string{"hello", "world", "again"}, w.Excerpt().Lines)
}

func TestWriter_ExcerptIsSnapshot(t *testing.T) {
	w := NewWriter(2)
	_, _ = w.Write([]byte("partial"))

	first := w.Excerpt()
	assert.Equal(t, []string{"partial"}, first.Lines)

	_, _ = w.Write([]byte(" line\nnext\n"))

	assert.Equal(t, []string{"partial line", "next"}, w.Excerpt().Lines)
	assert.Equal(t, []string{"partial"}, first.Lines)
}

func TestWriter_ClipsLongLines(t *testing.T) {
	w := NewWriter(2)
	long := strings.Repeat("x", MaxLineBytes*3)

	_, _ = w.Write([]byte(long + "\nshort\n"))

	ex := w.Excerpt()
	require.Len(t, ex.Lines, 2)
	assert.Equal(t, strings.Repeat("x", MaxLineBytes)+"...", ex.Lines[0])
	assert.Equal(t, "short", ex.Lines[1])
	assert.False(t, ex.Truncated)
}

func TestWriter_LargeStreamStaysBounded(t *testing.T) {
	w := NewWriter(5)
	chunk := []byte(strings.Repeat("data data data\n", 1000))

	for range 100 {
		_, _ = w.Write(chunk)
	}

	ex := w.Excerpt()
	assert.Len(t, ex.Lines, 5)
	assert.True(t, ex.Truncated)
	assert.Zero(t, w.partial.Len())
}

func TestWriter_ConcurrentWrites(t *testing.T) {
	w := NewWriter(1000)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			for j := range 10 {
				_, _ = fmt.Fprintf(w, "writer %d line %d\n", id, j)
			}
		}(i)
	}

	wg.Wait()

	assert.Len(t, w.Excerpt().Lines, 100)
}

func TestExcerpt_EmptyHasNoDisplayLines(t *testing.T) {
	var ex Excerpt

	assert.True(t, ex.Empty())
	assert.Nil(t, ex.DisplayLines())
	assert.Empty(t, ex.String())
}
