// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package eval implements the eval subcommand, which evaluates HCL expressions
// against the variables available to HCL recipe files.
package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/flashboost/flashboost/cmd/flashboost/cmdstate"
	"github.com/flashboost/flashboost/internal/recipe"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v3"
)

const exprArg = "expression"

// NewCommand creates the eval subcommand.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "eval",
		Usage: "Evaluate an HCL expression with the recipe variables pid, home and wifi",
		Description: `Evaluate one expression and print it as JSON, or start an interactive
prompt when no expression is given. Type quit or exit, or press Ctrl+C, to leave.`,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      exprArg,
				UsageText: "[EXPRESSION]",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	host := cmdstate.HostFactory(ctx)

	if expr := cmd.StringArg(exprArg); expr != "" {
		out, err := recipe.Evaluate(expr, host)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		_, err = fmt.Fprintln(cmd.Root().Writer, out)

		return err
	}

	return repl(cmd.Root().Writer, host)
}

func repl(w io.Writer, host recipe.Host) error {
	line := liner.NewLiner()
	defer line.Close() //nolint:errcheck

	line.SetCtrlCAborts(true)
	fmt.Fprintln(w, "Type quit or exit, or press Ctrl+C, to leave.") //nolint:errcheck

	for {
		input, err := line.Prompt("eval> ")

		switch {
		case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("reading line: %w", err)
		}

		input = strings.TrimSpace(input)

		switch input {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		line.AppendHistory(input)

		out, err := recipe.Evaluate(input, host)
		if err != nil {
			fmt.Fprintln(w, err) //nolint:errcheck
			continue
		}

		fmt.Fprintln(w, out) //nolint:errcheck
	}
}
