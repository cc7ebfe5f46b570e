// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package excerpt

import (
	"bytes"
	"strings"
	"sync"
)

const (
	// DefaultMaxLines is the number of lines kept when a Writer is created with a non-positive limit.
	DefaultMaxLines = 5
	// TruncationMarker is appended to the display lines of a truncated excerpt.
	TruncationMarker = "... (output truncated)"
	// MaxLineBytes is the longest line kept. Longer lines are clipped.
	MaxLineBytes = 512
)

// Excerpt is the head of a captured output stream.
type Excerpt struct {
	Lines     []string
	Truncated bool
}

// Empty reports whether the excerpt holds no lines.
func (e Excerpt) Empty() bool {
	return len(e.Lines) == 0
}

// DisplayLines returns the lines to show a user, including the truncation marker when
// output was discarded.
func (e Excerpt) DisplayLines() []string {
	if e.Empty() {
		return nil
	}

	out := make([]string, 0, len(e.Lines)+1)
	out = append(out, e.Lines...)

	if e.Truncated {
		out = append(out, TruncationMarker)
	}

	return out
}

// String joins the display lines with newlines.
func (e Excerpt) String() string {
	return strings.Join(e.DisplayLines(), "\n")
}

// FromString builds an excerpt of s keeping at most maxLines lines.
func FromString(s string, maxLines int) Excerpt {
	w := NewWriter(maxLines)
	_, _ = w.Write([]byte(s))

	return w.Excerpt()
}

// Writer is an io.Writer that retains the first lines written to it.
// Leading blank lines are skipped and trailing blank lines are trimmed.
// It is safe for concurrent use.
type Writer struct {
	maxLines  int
	lines     []string
	partial   strings.Builder
	clipped   bool
	truncated bool
	mu        sync.Mutex
}

// NewWriter creates a Writer keeping at most maxLines lines.
func NewWriter(maxLines int) *Writer {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	return &Writer{
		maxLines: maxLines,
		lines:    make([]string, 0, maxLines),
	}
}

// Write implements io.Writer. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(p)

	for len(p) > 0 {
		if w.truncated {
			break
		}

		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			w.appendPartial(p)
			break
		}

		w.appendPartial(p[:i])
		w.flushPartial()
		p = p[i+1:]
	}

	return n, nil
}

// Excerpt returns a snapshot of what has been captured so far.
// An unterminated final line is included.
func (w *Writer) Excerpt() Excerpt {
	w.mu.Lock()
	defer w.mu.Unlock()

	lines := make([]string, len(w.lines), w.maxLines)
	copy(lines, w.lines)
	truncated := w.truncated

	if !truncated && w.partial.Len() > 0 {
		line := normalise(w.partial.String(), w.clipped)

		switch {
		case isBlank(line):
		case len(lines) < w.maxLines:
			lines = append(lines, line)
		default:
			truncated = true
		}
	}

	for len(lines) > 0 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}

	if len(lines) == 0 {
		return Excerpt{}
	}

	return Excerpt{Lines: lines, Truncated: truncated}
}

// appendPartial must be called with the lock held.
func (w *Writer) appendPartial(p []byte) {
	room := MaxLineBytes - w.partial.Len()
	if room <= 0 {
		if len(p) > 0 {
			w.clipped = true
		}

		return
	}

	if len(p) > room {
		p = p[:room]
		w.clipped = true
	}

	w.partial.Write(p)
}

// flushPartial must be called with the lock held.
func (w *Writer) flushPartial() {
	line := normalise(w.partial.String(), w.clipped)
	w.partial.Reset()
	w.clipped = false

	switch {
	case len(w.lines) == 0 && isBlank(line):
	case len(w.lines) < w.maxLines:
		w.lines = append(w.lines, line)
	case !isBlank(line):
		w.truncated = true
	}
}

func normalise(line string, clipped bool) string {
	line = strings.TrimRight(line, "\r")
	if clipped {
		line = strings.ToValidUTF8(line, "") + "..."
	}

	return line
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
