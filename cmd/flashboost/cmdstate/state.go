// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdstate holds the flags and loaders shared by every subcommand.
package cmdstate

import (
	"context"
	"errors"
	"strings"

	"github.com/flashboost/flashboost/internal/config"
	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/flashboost/flashboost/internal/recipe"
	"github.com/urfave/cli/v3"
)

const (
	// ConfigFlag names the config file flag.
	ConfigFlag = "config"
	// RecipesFlag names the extra recipe source flag.
	RecipesFlag = "recipes"
	// LogJSONFlag switches logging to JSON records.
	LogJSONFlag = "log-json"
	// LogLevelFlag overrides the log level.
	LogLevelFlag = "log-level"

	envPrefix = "FLASHBOOST_"
)

// ErrLoadRecipes is returned when an extra recipe source cannot be used.
var ErrLoadRecipes = errors.New("failed to load recipes")

// HostFactory inspects the host the built-in recipes are generated for.
var HostFactory = recipe.DetectHost

// Env returns the environment variable name for a flag, e.g. FLASHBOOST_CONFIG.
func Env(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// GlobalFlags are accepted by the root command and visible to every subcommand.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      ConfigFlag,
			Aliases:   []string{"c"},
			Usage:     "Path to the config file. Defaults to " + config.DefaultPath(),
			TakesFile: true,
			Sources:   cli.EnvVars(Env(ConfigFlag)),
		},
		&cli.StringSliceFlag{
			Name:    RecipesFlag,
			Aliases: []string{"r"},
			Usage: "Extra recipe file (.yaml or .hcl), local or any go-getter source. " +
				"Recipes with a built-in name replace the built-in. Specify multiple times for multiple files.",
			Sources: cli.EnvVars(Env(RecipesFlag)),
		},
		&cli.BoolFlag{
			Name:    LogJSONFlag,
			Usage:   "Write log records as JSON",
			Sources: cli.EnvVars(Env(LogJSONFlag)),
		},
		&cli.StringFlag{
			Name:  LogLevelFlag,
			Usage: "Log level: debug, info, warn or error. Defaults to $" + ctxlog.LevelEnvName(),
		},
	}
}

// Before configures logging from the global flags.
func Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if lvl := cmd.String(LogLevelFlag); lvl != "" {
		ctxlog.LevelVar.Set(ctxlog.ParseLevel(lvl))
	}

	if cmd.Bool(LogJSONFlag) {
		ctx = ctxlog.New(ctx, ctxlog.NewJSONLogger(cmd.Root().ErrWriter))
	}

	return ctx, nil
}

// Settings loads the config file named by --config, or the optional default file.
func Settings(ctx context.Context, cmd *cli.Command) (config.Config, error) {
	path := cmd.String(ConfigFlag)
	optional := path == ""

	if optional {
		path = config.DefaultPath()
	}

	return config.Load(ctx, path, optional)
}

// Book returns the built-in recipes for the detected host overlaid with the recipe
// files from cfg and --recipes, in that order.
func Book(ctx context.Context, cmd *cli.Command, cfg config.Config) (*recipe.Book, recipe.Host, error) {
	host := HostFactory(ctx)
	recipes := recipe.Builtins(host)

	sources := append(append([]string(nil), cfg.RecipeFiles...), cmd.StringSlice(RecipesFlag)...)

	for _, src := range sources {
		if src == "" {
			continue
		}

		extra, err := recipe.Fetch(ctx, src, host)
		if err != nil {
			return nil, host, errors.Join(ErrLoadRecipes, err)
		}

		ctxlog.Debug(ctx, "recipes loaded", "source", src, "count", len(extra))

		recipes = recipe.Merge(recipes, extra...)
	}

	book, err := recipe.NewBook(recipes...)
	if err != nil {
		return nil, host, errors.Join(ErrLoadRecipes, err)
	}

	return book, host, nil
}
