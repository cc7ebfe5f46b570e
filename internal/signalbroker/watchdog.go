// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/flashboost/flashboost/internal/ctxlog"
)

// Watch consumes sigCh until ctx is done or sigCh is closed.
// The second signal of a given kind calls cancel and returns.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, again := seen[sig]; again {
				ctxlog.Warn(ctx, "watchdog", "detail", "second signal received, cancelling", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Warn(ctx, "watchdog", "detail", "signal received, send again to abort the running step", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
