// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/flashboost/flashboost/internal/runbatch"
	"github.com/hashicorp/go-multierror"
)

var (
	// ErrInvalidRecipe is returned when a recipe fails validation.
	ErrInvalidRecipe = errors.New("invalid recipe")
	// ErrNoCommands is returned when a recipe has nothing to run.
	ErrNoCommands = errors.New("recipe has no commands")
	// ErrRecipeNotFound is returned when a recipe name is unknown.
	ErrRecipeNotFound = errors.New("recipe not found")
)

var validName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Recipe is a named batch of commands.
type Recipe struct {
	Name        string
	Description string
	// Confirm, when set, is shown to the user who must agree before the batch runs.
	Confirm string
	// Timeout bounds each group of the batch. Zero uses the engine default.
	Timeout  time.Duration
	Commands []runbatch.RawCommand
	// Notes explain how the recipe was adapted to this host.
	Notes []string
	// AllowEmpty lets a recipe with no commands finish as nothing to do.
	AllowEmpty bool
}

// Validate checks a single recipe.
func (r Recipe) Validate() error {
	var result error

	if !validName.MatchString(r.Name) {
		result = multierror.Append(result, fmt.Errorf("%w: name %q must be lowercase letters, digits and dashes", ErrInvalidRecipe, r.Name))
	}

	if r.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("%w: %s: timeout must not be negative", ErrInvalidRecipe, r.Name))
	}

	for i, c := range r.Commands {
		if strings.TrimSpace(c.Text) == "" {
			result = multierror.Append(result, fmt.Errorf("%w: %s: command %d is empty", ErrInvalidRecipe, r.Name, i+1))
		}
	}

	return result
}

// Runnable returns ErrNoCommands for an empty recipe that does not allow it.
func (r Recipe) Runnable() error {
	if len(r.Commands) == 0 && !r.AllowEmpty {
		return fmt.Errorf("%w: %s", ErrNoCommands, r.Name)
	}

	return nil
}

// Book is a validated, ordered set of recipes with unique names.
type Book struct {
	recipes []Recipe
}

// NewBook validates the recipes and returns a Book. All problems are reported together.
func NewBook(recipes ...Recipe) (*Book, error) {
	var result error

	seen := make(map[string]struct{}, len(recipes))

	for _, r := range recipes {
		if err := r.Validate(); err != nil {
			result = multierror.Append(result, err)
		}

		if _, dup := seen[r.Name]; dup {
			result = multierror.Append(result, fmt.Errorf("%w: duplicate name %q", ErrInvalidRecipe, r.Name))
		}

		seen[r.Name] = struct{}{}
	}

	if result != nil {
		return nil, result
	}

	return &Book{recipes: slices.Clone(recipes)}, nil
}

// Get returns the recipe called name.
func (b *Book) Get(name string) (Recipe, error) {
	for _, r := range b.recipes {
		if r.Name == name {
			return r, nil
		}
	}

	return Recipe{}, fmt.Errorf("%w: %s", ErrRecipeNotFound, name)
}

// All returns the recipes in order.
func (b *Book) All() []Recipe {
	return slices.Clone(b.recipes)
}

// Names returns the recipe names in order.
func (b *Book) Names() []string {
	names := make([]string, len(b.recipes))
	for i, r := range b.recipes {
		names[i] = r.Name
	}

	return names
}

// Merge returns base with every overlay recipe applied: a recipe with a known name
// replaces it in place, a new name is appended.
func Merge(base []Recipe, overlay ...Recipe) []Recipe {
	out := slices.Clone(base)

	for _, o := range overlay {
		i := slices.IndexFunc(out, func(r Recipe) bool { return r.Name == o.Name })
		if i >= 0 {
			out[i] = o
			continue
		}

		out = append(out, o)
	}

	return out
}
