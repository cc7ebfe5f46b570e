// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides an interactive terminal view of a running batch.
//
// The view shows live host metrics, a spinner while the batch is busy and a
// scrollable log of every progress event. Events reach the bubbletea event loop
// through tea.Program.Send, so all view state is owned by the loop.
package tui
