// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the flashboost command-line interface (CLI).
package main

import (
	"context"
	"os"

	"github.com/flashboost/flashboost/cmd/flashboost/cmdstate"
	"github.com/flashboost/flashboost/cmd/flashboost/eval"
	"github.com/flashboost/flashboost/cmd/flashboost/recipes"
	"github.com/flashboost/flashboost/cmd/flashboost/run"
	"github.com/flashboost/flashboost/cmd/flashboost/status"
	"github.com/flashboost/flashboost/cmd/flashboost/version"
	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/flashboost/flashboost/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// newRootCmd creates the root command for the CLI.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			run.NewCommand(),
			recipes.NewCommand(),
			status.NewCommand(),
			eval.NewCommand(),
			version.NewCommand(),
		},
		Flags:     cmdstate.GlobalFlags(),
		Before:    cmdstate.Before,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "flashboost",
		Version:   version.String(),
		Description: `flashboost runs system maintenance actions such as cache cleaning,
package repair and performance tuning. Privileged commands go through the
elevation front-end, and consecutive privileged commands share one prompt.`,
		Usage:     "flashboost run light-clean",
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	err := newRootCmd().Run(ctx, os.Args) // Err is handled by cli framework

	if ctx.Err() != nil {
		ctxlog.Error(ctx, "command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Error(ctx, "command execution failed", "error", err)
		os.Exit(1)
	}
}
