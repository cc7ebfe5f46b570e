// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress moves events from a producer goroutine to a consumer that owns
// presentation state.
//
// Queue is the hand-off: producers call Report from any goroutine and never block,
// the consumer reads Events (or attaches a Listener) and sees every event in order.
// Nothing is dropped, so a terminal event is always delivered once reported.
package progress
