// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"errors"
	"fmt"
	"time"

	"github.com/flashboost/flashboost/internal/runbatch"
	"github.com/goccy/go-yaml"
)

// ErrParseRecipes is returned when a recipe file cannot be decoded.
var ErrParseRecipes = errors.New("failed to parse recipe file")

type yamlFile struct {
	Recipes []yamlRecipe `yaml:"recipes"`
}

type yamlRecipe struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Confirm     string        `yaml:"confirm"`
	Timeout     string        `yaml:"timeout"`
	AllowEmpty  bool          `yaml:"allow_empty"`
	Commands    []yamlCommand `yaml:"commands"`
}

// yamlCommand accepts either a bare string or a mapping with run and elevated keys.
type yamlCommand struct {
	Run      string `yaml:"run"`
	Elevated *bool  `yaml:"elevated"`
}

var _ yaml.BytesUnmarshaler = (*yamlCommand)(nil)

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (c *yamlCommand) UnmarshalYAML(data []byte) error {
	var s string
	if err := yaml.Unmarshal(data, &s); err == nil {
		c.Run = s
		return nil
	}

	type plain yamlCommand

	var p plain
	if err := yaml.UnmarshalWithOptions(data, &p, yaml.Strict()); err != nil {
		return err //nolint:wrapcheck
	}

	*c = yamlCommand(p)

	return nil
}

func (c yamlCommand) raw() runbatch.RawCommand {
	return rawCommand(c.Run, c.Elevated)
}

// ParseYAML decodes recipes from YAML. Unknown keys are rejected.
func ParseYAML(data []byte) ([]Recipe, error) {
	var f yamlFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return nil, errors.Join(ErrParseRecipes, err)
	}

	out := make([]Recipe, 0, len(f.Recipes))

	for _, y := range f.Recipes {
		timeout, err := parseTimeout(y.Timeout)
		if err != nil {
			return nil, errors.Join(ErrParseRecipes, fmt.Errorf("recipe %q: %w", y.Name, err))
		}

		r := Recipe{
			Name:        y.Name,
			Description: y.Description,
			Confirm:     y.Confirm,
			Timeout:     timeout,
			AllowEmpty:  y.AllowEmpty,
			Commands:    make([]runbatch.RawCommand, len(y.Commands)),
		}

		for i, c := range y.Commands {
			r.Commands[i] = c.raw()
		}

		out = append(out, r)
	}

	return out, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}

	return d, nil
}

func rawCommand(text string, elevated *bool) runbatch.RawCommand {
	switch {
	case elevated == nil:
		return runbatch.Shell(text)
	case *elevated:
		return runbatch.Elevated(text)
	default:
		return runbatch.RawCommand{Text: text, Elevation: runbatch.ElevationNone}
	}
}
