// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package recipes implements the recipes subcommand, which lists the available actions.
package recipes

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/flashboost/flashboost/cmd/flashboost/cmdstate"
	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/flashboost/flashboost/internal/recipe"
	"github.com/flashboost/flashboost/internal/runbatch"
	"github.com/urfave/cli/v3"
)

const (
	actionArg   = "action"
	verboseFlag = "verbose"
)

// NewCommand creates the recipes subcommand.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:    "recipes",
		Aliases: []string{"ls"},
		Usage:   "List the available actions",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      actionArg,
				UsageText: "[ACTION]",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    verboseFlag,
				Aliases: []string{"v"},
				Usage:   "Show the commands of every action",
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

	book, _, err := cmdstate.Book(ctx, cmd, cfg)
	if err != nil {
		ctxlog.Error(ctx, "failed to load recipes", "error", err)
		return cli.Exit("", 1)
	}

	if name := cmd.StringArg(actionArg); name != "" {
		r, err := book.Get(name)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		return writeDetail(cmd.Root().Writer, r, cfg.Engine().Plan(r.Commands))
	}

	if _, err := io.WriteString(cmd.Root().Writer, Table(book.All())+"\n"); err != nil {
		return err
	}

	if !cmd.Bool(verboseFlag) {
		return nil
	}

	engine := cfg.Engine()

	for _, r := range book.All() {
		if err := writeDetail(cmd.Root().Writer, r, engine.Plan(r.Commands)); err != nil {
			return err
		}
	}

	return nil
}

// Table renders one row per recipe.
func Table(recipes []recipe.Recipe) string {
	rows := make([][]string, 0, len(recipes))

	for _, r := range recipes {
		confirm := ""
		if r.Confirm != "" {
			confirm = "yes"
		}

		rows = append(rows, []string{r.Name, strconv.Itoa(len(r.Commands)), confirm, r.Description})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ACTION", "COMMANDS", "CONFIRM", "DESCRIPTION").
		Rows(rows...).
		String()
}

func writeDetail(w io.Writer, r recipe.Recipe, groups []runbatch.ExecutionGroup) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s: %s\n", r.Name, r.Description)

	if r.Confirm != "" {
		fmt.Fprintf(&b, "  asks: %s\n", r.Confirm)
	}

	if r.Timeout > 0 {
		fmt.Fprintf(&b, "  timeout: %s per group\n", r.Timeout)
	}

	for _, note := range r.Notes {
		fmt.Fprintf(&b, "  note: %s\n", note)
	}

	for i, g := range groups {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, g.DisplayLabel())

		if g.Len() > 1 {
			for _, s := range g.Steps {
				fmt.Fprintf(&b, "     - %s\n", s.Text)
			}
		}
	}

	_, err := io.WriteString(w, b.String())

	return err
}
