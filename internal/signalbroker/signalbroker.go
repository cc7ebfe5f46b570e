// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker subscribes to the signals that should end the process and
// turns a repeated signal into context cancellation.
//
// A running maintenance step is never interrupted by the first Ctrl+C: elevated
// package operations left half-done are worse than a slow exit. The second signal of
// the same kind cancels the root context, which kills the running step's process group.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flashboost/flashboost/internal/ctxlog"
)

var termSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// New subscribes to sigs, or to the termination signals when none are given.
// Call Stop with the returned channel to unsubscribe.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "subscribing", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop unsubscribes ch from signal delivery.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
