// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a structured slog logger on a context.Context.
//
// The default handler writes human-readable lines to stderr, rendering record
// attributes as indented JSON. Stderr is used so that log output never interleaves
// with the terminal UI, which owns stdout.
package ctxlog
