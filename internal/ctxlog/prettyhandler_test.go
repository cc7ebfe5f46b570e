// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, opts ...Option) *slog.Logger {
	opts = append(opts, WithDestinationWriter(buf))

	return slog.New(NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug}, opts...))
}

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer

	newTestLogger(&buf).Info("step finished", "step", "sync")

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "INFO:")
	assert.Contains(t, line, "step finished")
	assert.Contains(t, line, `"step"`)
	assert.Contains(t, line, `"sync"`)
	assert.NotContains(t, line, "\033[", "colour must be off unless requested")
}

func TestPrettyHandler_NoAttrs(t *testing.T) {
	var buf bytes.Buffer

	newTestLogger(&buf).Warn("bare")
	assert.NotContains(t, buf.String(), "{")

	buf.Reset()
	newTestLogger(&buf, WithOutputEmptyAttrs()).Warn("bare")
	assert.Contains(t, buf.String(), "{}")
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer

	logger := newTestLogger(&buf).With("action", "deep-clean").WithGroup("group")
	logger.Error("failed", "exitCode", 126)

	out := buf.String()
	assert.Contains(t, out, `"action"`)
	assert.Contains(t, out, `"deep-clean"`)
	assert.Contains(t, out, `"group"`)
	assert.Contains(t, out, `"exitCode"`)
	assert.Contains(t, out, "ERROR:")
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer

	h := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelWarn}, WithDestinationWriter(&buf))
	slog.New(h).Info("hidden")
	assert.Empty(t, buf.String())
}

func TestPrettyHandler_ReplaceAttrDropsTime(t *testing.T) {
	var buf bytes.Buffer

	h := NewPrettyHandler(&slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return a
		},
	}, WithDestinationWriter(&buf))
	slog.New(h).Warn("no time")

	assert.True(t, strings.HasPrefix(buf.String(), "WARN:"), buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestPrettyHandler_WriteError(t *testing.T) {
	h := NewPrettyHandler(nil, WithDestinationWriter(failingWriter{}))

	var r slog.Record

	r.Level = slog.LevelWarn
	r.Message = "x"

	err := h.Handle(t.Context(), r)
	require.ErrorIs(t, err, ErrIoWrite)
}

func TestPrettyHandler_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	logger := newTestLogger(&buf)

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			logger.Info("concurrent", "i", i)
		}()
	}

	wg.Wait()
	assert.Equal(t, 20, strings.Count(buf.String(), "concurrent"))
}
