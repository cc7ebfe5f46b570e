// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI SGR sequences.
//
// Colouring is decided once at start-up: NO_COLOR disables it, FORCE_COLOR enables it,
// otherwise it is on when stdout is a terminal (golang.org/x/term).
package color
