// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/flashboost/flashboost/internal/excerpt"
	"github.com/flashboost/flashboost/internal/runbatch"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

var (
	// ErrReadConfig is returned when the config file cannot be read.
	ErrReadConfig = errors.New("failed to read config file")
	// ErrParseConfig is returned when the config file cannot be decoded.
	ErrParseConfig = errors.New("failed to parse config file")
	// ErrInvalidConfig is returned when a setting is out of range.
	ErrInvalidConfig = errors.New("invalid config")
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Config holds the engine settings.
type Config struct {
	Shell           string        `yaml:"shell"`
	ElevationPrefix string        `yaml:"elevation_prefix"`
	ElevationShell  string        `yaml:"elevation_shell"`
	AuthExitCodes   []int         `yaml:"auth_exit_codes"`
	ExcerptLines    int           `yaml:"excerpt_lines"`
	StepTimeout     time.Duration `yaml:"-"`
	QuietPrefixes   []string      `yaml:"quiet_prefixes"`
	RecipeFiles     []string      `yaml:"recipe_files"`
	// Env is added to the environment of every execution group.
	Env map[string]string `yaml:"env"`
}

// fileConfig mirrors Config with a string timeout so files can say "3m".
type fileConfig struct {
	Config      `yaml:",inline"`
	StepTimeout string `yaml:"step_timeout"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Shell:           runbatch.DefaultShell,
		ElevationPrefix: runbatch.DefaultElevationPrefix,
		ElevationShell:  runbatch.DefaultElevationShell,
		AuthExitCodes:   slices.Clone(runbatch.DefaultAuthExitCodes),
		ExcerptLines:    excerpt.DefaultMaxLines,
		StepTimeout:     runbatch.DefaultStepTimeout,
		QuietPrefixes:   slices.Clone(runbatch.DefaultQuietPrefixes),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/flashboost/config.yaml or its platform
// equivalent, or "" when no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "flashboost", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error when optional is true.
func Load(ctx context.Context, path string, optional bool) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			ctxlog.Debug(ctx, "no config file", "path", path)
			return cfg, nil
		}

		return cfg, errors.Join(ErrReadConfig, err)
	}

	cfg, err = Parse(data)
	if err != nil {
		return cfg, err
	}

	ctxlog.Debug(ctx, "config loaded", "path", path)

	return cfg, cfg.Validate()
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	fc := fileConfig{Config: Default()}

	if err := yaml.UnmarshalWithOptions(data, &fc, yaml.Strict()); err != nil {
		return Default(), errors.Join(ErrParseConfig, err)
	}

	cfg := fc.Config

	if fc.StepTimeout != "" {
		d, err := time.ParseDuration(fc.StepTimeout)
		if err != nil {
			return Default(), errors.Join(ErrParseConfig, fmt.Errorf("step_timeout: %w", err))
		}

		cfg.StepTimeout = d
	}

	return cfg, nil
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var result error

	if c.Shell == "" {
		result = multierror.Append(result, fmt.Errorf("%w: shell must not be empty", ErrInvalidConfig))
	}

	if c.ElevationPrefix == "" {
		result = multierror.Append(result, fmt.Errorf("%w: elevation_prefix must not be empty", ErrInvalidConfig))
	}

	if c.ElevationShell == "" {
		result = multierror.Append(result, fmt.Errorf("%w: elevation_shell must not be empty", ErrInvalidConfig))
	}

	if c.ExcerptLines < 1 {
		result = multierror.Append(result, fmt.Errorf("%w: excerpt_lines must be at least 1", ErrInvalidConfig))
	}

	if c.StepTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("%w: step_timeout must be positive", ErrInvalidConfig))
	}

	for _, name := range slices.Sorted(maps.Keys(c.Env)) {
		if name == "" || strings.ContainsAny(name, "= ") {
			result = multierror.Append(result, fmt.Errorf("%w: env name %q is not a variable name", ErrInvalidConfig, name))
		}
	}

	for _, code := range c.AuthExitCodes {
		if code < 1 || code > 255 {
			result = multierror.Append(result, fmt.Errorf("%w: auth exit code %d out of range", ErrInvalidConfig, code))
		}
	}

	return result
}

// Executor builds the shell executor described by c.
func (c Config) Executor() *runbatch.ShellExecutor {
	return runbatch.NewShellExecutor(
		runbatch.WithShell(c.Shell),
		runbatch.WithElevator(runbatch.Elevator{Prefix: c.ElevationPrefix, Shell: c.ElevationShell}),
		runbatch.WithAuthExitCodes(c.AuthExitCodes...),
		runbatch.WithExcerptLines(c.ExcerptLines),
		runbatch.WithDefaultTimeout(c.StepTimeout),
		runbatch.WithEnv(maps.Clone(c.Env)),
	)
}

// Engine builds the batch engine described by c.
func (c Config) Engine() *runbatch.Engine {
	return runbatch.NewEngine(c.Executor(),
		runbatch.WithClassifier(runbatch.Classifier{Prefix: c.ElevationPrefix}),
		runbatch.WithPolicy(runbatch.OutputPolicy{QuietPrefixes: slices.Clone(c.QuietPrefixes)}),
		runbatch.WithDefaultStepTimeout(c.StepTimeout),
	)
}
