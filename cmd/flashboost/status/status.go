// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package status implements the status subcommand, which prints one metrics sample.
package status

import (
	"context"
	"fmt"
	"strings"

	"github.com/flashboost/flashboost/cmd/flashboost/cmdstate"
	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/flashboost/flashboost/internal/sysinfo"
	"github.com/urfave/cli/v3"
)

const pathFlag = "path"

// Seams for tests.
var (
	ProviderFactory = func() sysinfo.Provider { return sysinfo.Host{} }
	WirelessFunc    = sysinfo.ActiveWirelessInterface
	CommandExists   = sysinfo.CommandExists
)

// NewCommand creates the status subcommand.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show CPU, memory, disk and temperature readings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  pathFlag,
				Usage: "Filesystem whose usage is reported",
				Value: "/",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	cfg, err := cmdstate.Settings(ctx, cmd)
	if err != nil {
		ctxlog.Error(ctx, "failed to load config", "error", err)
		return cli.Exit("", 1)
	}

	snap := sysinfo.Sample(ctx, ProviderFactory(), cmd.String(pathFlag))

	wifi := WirelessFunc(ctx)
	if wifi == "" {
		wifi = sysinfo.NotAvailable
	}

	elevation := "missing"
	if CommandExists(cfg.ElevationPrefix) {
		elevation = "available"
	}

	var b strings.Builder

	fmt.Fprintln(&b, snap.String())
	fmt.Fprintf(&b, "Wireless interface: %s\n", wifi)
	fmt.Fprintf(&b, "Elevation front-end %s: %s\n", cfg.ElevationPrefix, elevation)

	_, err = fmt.Fprint(cmd.Root().Writer, b.String())

	return err
}
