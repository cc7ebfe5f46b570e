// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flashboost/flashboost/internal/runbatch"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

type hclFile struct {
	Actions []hclAction `hcl:"action,block"`
}

type hclAction struct {
	Name        string       `hcl:"name,label"`
	Description string       `hcl:"description,optional"`
	Confirm     string       `hcl:"confirm,optional"`
	Timeout     string       `hcl:"timeout,optional"`
	AllowEmpty  bool         `hcl:"allow_empty,optional"`
	Commands    []hclCommand `hcl:"command,block"`
}

type hclCommand struct {
	Run      string `hcl:"run"`
	Elevated *bool  `hcl:"elevated,optional"`
}

// EvalContext exposes host facts to HCL recipe files as the variables pid, home
// and wifi.
func EvalContext(h Host) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"pid":  cty.NumberIntVal(int64(h.PID)),
			"home": cty.StringVal(h.Home),
			"wifi": cty.StringVal(h.WirelessInterface),
		},
	}
}

// ParseHCL decodes recipes from HCL. filename is used in diagnostics and must end
// in .hcl.
func ParseHCL(filename string, data []byte, h Host) ([]Recipe, error) {
	if !strings.HasSuffix(filename, ".hcl") {
		filename += ".hcl"
	}

	var f hclFile
	if err := hclsimple.Decode(filename, data, EvalContext(h), &f); err != nil {
		return nil, errors.Join(ErrParseRecipes, err)
	}

	out := make([]Recipe, 0, len(f.Actions))

	for _, a := range f.Actions {
		timeout, err := parseTimeout(a.Timeout)
		if err != nil {
			return nil, errors.Join(ErrParseRecipes, fmt.Errorf("action %q: %w", a.Name, err))
		}

		r := Recipe{
			Name:        a.Name,
			Description: a.Description,
			Confirm:     a.Confirm,
			Timeout:     timeout,
			AllowEmpty:  a.AllowEmpty,
			Commands:    make([]runbatch.RawCommand, len(a.Commands)),
		}

		for i, c := range a.Commands {
			r.Commands[i] = rawCommand(c.Run, c.Elevated)
		}

		out = append(out, r)
	}

	return out, nil
}

// Evaluate evaluates a single HCL expression against the recipe variables of h
// and renders the value as JSON.
func Evaluate(expr string, h Host) (string, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(expr), "expression.hcl", hcl.InitialPos)
	if diags.HasErrors() {
		return "", errors.Join(ErrParseRecipes, diags)
	}

	value, diags := parsed.Value(EvalContext(h))
	if diags.HasErrors() {
		return "", errors.Join(ErrParseRecipes, diags)
	}

	out, err := ctyjson.Marshal(value, value.Type())
	if err != nil {
		return "", errors.Join(ErrParseRecipes, err)
	}

	return string(out), nil
}
