// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_DefaultWhenMissing(t *testing.T) {
	assert.Same(t, DefaultLogger, Logger(context.Background()))
	assert.Same(t, DefaultLogger, Logger(New(context.Background(), nil)))
}

func TestLogger_RoundTrip(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := New(context.Background(), logger)

	require.Same(t, logger, Logger(ctx))

	Debug(ctx, "debug line", "k", 1)
	Info(ctx, "info line")
	Warn(ctx, "warn line")
	Error(ctx, "error line")

	out := buf.String()
	for _, want := range []string{"debug line", "info line", "warn line", "error line", "k=1"} {
		assert.Contains(t, out, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		" error ": slog.LevelError,
		"":        slog.LevelWarn,
		"verbose": slog.LevelWarn,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestLevelEnvName(t *testing.T) {
	name := LevelEnvName()
	assert.Regexp(t, `^[A-Z0-9_]+_LOG_LEVEL$`, name)
}

func TestNewJSONLogger(t *testing.T) {
	prev := LevelVar.Level()
	LevelVar.Set(slog.LevelInfo)

	defer LevelVar.Set(prev)

	var buf bytes.Buffer

	NewJSONLogger(&buf).Info("hello", "action", "light-clean")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"action":"light-clean"`)
}
