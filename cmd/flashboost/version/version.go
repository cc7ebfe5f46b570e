// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package version implements the version subcommand.
package version

import (
	"context"
	"fmt"
	"runtime"

	"github.com/flashboost/flashboost"
	"github.com/urfave/cli/v3"
)

// String returns the version line shown by --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s)", flashboost.Version, flashboost.Commit)
}

// NewCommand creates the version subcommand.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "flashboost %s %s/%s\n", String(), runtime.GOOS, runtime.GOARCH)
			return err
		},
	}
}
