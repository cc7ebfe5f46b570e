// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run subcommand, which executes one recipe.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/flashboost/flashboost/cmd/flashboost/cmdstate"
	"github.com/flashboost/flashboost/internal/config"
	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/flashboost/flashboost/internal/progress"
	"github.com/flashboost/flashboost/internal/recipe"
	"github.com/flashboost/flashboost/internal/runbatch"
	"github.com/flashboost/flashboost/internal/sink"
	"github.com/flashboost/flashboost/internal/sysinfo"
	"github.com/flashboost/flashboost/internal/tui"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	actionArg   = "action"
	yesFlag     = "yes"
	noTUIFlag   = "no-tui"
	dryRunFlag  = "dry-run"
	timeoutFlag = "timeout"
	cliExitStr  = ""
)

// ErrDeclined is returned when the user does not confirm a recipe.
var ErrDeclined = errors.New("declined by user")

// Seams for tests.
var (
	// ConfirmFunc asks the user to agree to prompt.
	ConfirmFunc = promptConfirm
	// IsTerminal reports whether the interactive view can be used.
	IsTerminal = func() bool {
		return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
	}
	// ProviderFactory returns the metrics source shown in the interactive view.
	ProviderFactory = func() sysinfo.Provider { return sysinfo.Host{} }
)

// NewCommand creates the run subcommand.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a maintenance action",
		Description: `Run one action, built-in or from a recipe file.

Commands are grouped so that consecutive elevated commands share a single
authentication prompt. The batch stops at the first failing group.`,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      actionArg,
				UsageText: "ACTION",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    yesFlag,
				Aliases: []string{"y"},
				Usage:   "Do not ask for confirmation",
				Sources: cli.EnvVars(cmdstate.Env(yesFlag)),
			},
			&cli.BoolFlag{
				Name:    noTUIFlag,
				Usage:   "Print plain log lines instead of the interactive view",
				Sources: cli.EnvVars(cmdstate.Env(noTUIFlag)),
			},
			&cli.BoolFlag{
				Name:    dryRunFlag,
				Aliases: []string{"n"},
				Usage:   "Show the execution groups and shell text without running anything",
			},
			&cli.DurationFlag{
				Name:    timeoutFlag,
				Aliases: []string{"t"},
				Usage:   "Timeout for each execution group. Overrides the recipe and config values",
				Sources: cli.EnvVars(cmdstate.Env(timeoutFlag)),
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	name := cmd.StringArg(actionArg)
	if name == "" {
		return cli.Exit("Please name an action to run, see 'flashboost recipes'", 1)
	}

	cfg, err := cmdstate.Settings(ctx, cmd)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	book, _, err := cmdstate.Book(ctx, cmd, cfg)
	if err != nil {
		logger.Error("failed to load recipes", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	r, err := book.Get(name)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if err := r.Runnable(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	timeout := stepTimeout(cmd, cfg, r)
	engine := cfg.Engine()

	if cmd.Bool(dryRunFlag) {
		return writePlan(cmd.Root().Writer, cfg, r, engine.Plan(r.Commands), timeout)
	}

	if r.Confirm != "" && !cmd.Bool(yesFlag) {
		ok, err := ConfirmFunc(r.Confirm)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to read confirmation: %s", err), 1)
		}

		if !ok {
			logger.Warn("action not run", "action", r.Name, "reason", ErrDeclined)
			return cli.Exit(cliExitStr, 1)
		}
	}

	var outcome runbatch.BatchOutcome

	switch {
	case !cmd.Bool(noTUIFlag) && IsTerminal():
		outcome, err = runInteractive(ctx, cmd, engine, r, timeout)
	default:
		outcome = runPlain(ctx, cmd.Root().Writer, engine, r, timeout)
	}

	if err != nil {
		logger.Error("failed to run action", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	if !outcome.OverallSuccess {
		return cli.Exit(outcome.Summary(), 1)
	}

	logger.Info(outcome.Summary())

	return nil
}

func stepTimeout(cmd *cli.Command, cfg config.Config, r recipe.Recipe) time.Duration {
	d := cfg.StepTimeout

	if r.Timeout > 0 {
		d = r.Timeout
	}

	if cmd.IsSet(timeoutFlag) && cmd.Duration(timeoutFlag) > 0 {
		d = cmd.Duration(timeoutFlag)
	}

	return d
}

func runPlain(ctx context.Context, w io.Writer, engine *runbatch.Engine, r recipe.Recipe, timeout time.Duration) runbatch.BatchOutcome {
	logSink := sink.New(w)

	for _, note := range r.Notes {
		logSink.Log(sink.NoteLine(note))
	}

	<-progress.Listen(engine.RunBatch(ctx, r.Name, r.Commands, runbatch.WithStepTimeout(timeout)), logSink)

	outcome, _ := logSink.Outcome()

	return outcome
}

func runInteractive(ctx context.Context, cmd *cli.Command, engine *runbatch.Engine, r recipe.Recipe, timeout time.Duration) (runbatch.BatchOutcome, error) {
	// Log records would tear the alternate screen, so hold them until the view closes.
	buf := new(bytes.Buffer)
	tuiCtx := ctxlog.New(ctx, slog.New(ctxlog.NewPrettyHandler(
		&slog.HandlerOptions{Level: ctxlog.LevelVar},
		ctxlog.WithDestinationWriter(buf),
	)))

	runner := tui.NewRunner(tuiCtx, r.Name, ProviderFactory(), []tui.Option{tui.WithNotes(r.Notes...)})
	outcome, err := runner.Run(tuiCtx, engine.RunBatch(tuiCtx, r.Name, r.Commands, runbatch.WithStepTimeout(timeout)))

	for _, line := range runner.Model().LogLines() {
		fmt.Fprintln(cmd.Root().Writer, line) //nolint:errcheck
	}

	buf.WriteTo(cmd.Root().ErrWriter) //nolint:errcheck

	return outcome, err
}

func writePlan(w io.Writer, cfg config.Config, r recipe.Recipe, groups []runbatch.ExecutionGroup, timeout time.Duration) error {
	elevator := runbatch.Elevator{Prefix: cfg.ElevationPrefix, Shell: cfg.ElevationShell}

	var b strings.Builder

	fmt.Fprintf(&b, "Plan for %s (%d execution groups, %s per group):\n", r.Name, len(groups), timeout)

	for _, note := range r.Notes {
		fmt.Fprintf(&b, "  note: %s\n", note)
	}

	if len(groups) == 0 {
		b.WriteString("  nothing to do\n")
	}

	for i, g := range groups {
		text, err := elevator.ShellText(g)
		if err != nil {
			return cli.Exit(fmt.Sprintf("cannot plan %s: %s", g.DisplayLabel(), err), 1)
		}

		fmt.Fprintf(&b, "  %d. %s\n     %s\n", i+1, g.DisplayLabel(), text)
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func promptConfirm(prompt string) (bool, error) {
	line := liner.NewLiner()
	defer line.Close() //nolint:errcheck

	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(prompt + " [y/N] ")

	switch {
	case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
		return false, nil
	case err != nil:
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
