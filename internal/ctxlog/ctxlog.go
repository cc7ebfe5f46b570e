// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type loggerKey struct{}

// LevelVar holds the level shared by every logger created by this package.
var LevelVar = &slog.LevelVar{}

// DefaultLogger is used when no logger has been stored on the context.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
	Level: LevelVar,
},
	WithAutoColour(),
	WithDestinationWriter(os.Stderr),
))

func init() {
	LevelVar.Set(levelFromEnv(os.Getenv(LevelEnvName())))
}

// NewJSONLogger returns a logger that writes JSON records to w at the shared level.
func NewJSONLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: LevelVar,
	}))
}

// New returns a copy of ctx carrying logger. A nil logger stores DefaultLogger.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger stored on ctx, or DefaultLogger.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// Debug logs at debug level using the logger on ctx.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).DebugContext(ctx, msg, args...)
}

// Info logs at info level using the logger on ctx.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).InfoContext(ctx, msg, args...)
}

// Warn logs at warn level using the logger on ctx.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).WarnContext(ctx, msg, args...)
}

// Error logs at error level using the logger on ctx.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).ErrorContext(ctx, msg, args...)
}

// LevelEnvName is the environment variable consulted for the log level,
// e.g. FLASHBOOST_LOG_LEVEL for an executable named flashboost.
func LevelEnvName() string {
	exe, err := os.Executable()
	if err != nil || exe == "" {
		exe = "flashboost"
	}

	exe = filepath.Base(exe)
	exe = strings.TrimSuffix(exe, filepath.Ext(exe))
	exe = strings.NewReplacer("-", "_", ".", "_").Replace(exe)

	return strings.ToUpper(exe) + "_LOG_LEVEL"
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to WARN.
func ParseLevel(name string) slog.Level {
	return levelFromEnv(name)
}

func levelFromEnv(v string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
