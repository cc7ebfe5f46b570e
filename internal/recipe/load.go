// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/hashicorp/go-getter/v2"
	"github.com/spf13/afero"
)

var (
	// ErrUnknownFormat is returned for a recipe file that is neither YAML nor HCL.
	ErrUnknownFormat = errors.New("unknown recipe file format, expected .yaml, .yml or .hcl")
	// ErrFetchRecipes is returned when a recipe file cannot be read or downloaded.
	ErrFetchRecipes = errors.New("failed to fetch recipe file")
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Parse decodes data according to the extension of name.
func Parse(name string, data []byte, h Host) ([]Recipe, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".hcl":
		return ParseHCL(filepath.Base(name), data, h)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

// Load reads and parses a local recipe file through FsFactory.
func Load(ctx context.Context, path string, h Host) ([]Recipe, error) {
	ctxlog.Debug(ctx, "loading recipes", "path", path)

	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return nil, errors.Join(ErrFetchRecipes, err)
	}

	return Parse(path, data, h)
}

// IsRemote reports whether src needs go-getter rather than a local read.
func IsRemote(src string) bool {
	return strings.Contains(src, "://") || strings.Contains(src, "::")
}

// Fetch loads recipes from src, which is either a local path or any go-getter source
// naming a single file, e.g. https://example.com/recipes.yaml or
// git::https://example.com/repo.git//recipes.hcl.
func Fetch(ctx context.Context, src string, h Host) ([]Recipe, error) {
	if !IsRemote(src) {
		return Load(ctx, src, h)
	}

	tmpDir, err := os.MkdirTemp("", "flashboost-getter-*")
	if err != nil {
		return nil, errors.Join(ErrFetchRecipes, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrFetchRecipes, err)
	}

	name := remoteFileName(src)
	dst := filepath.Join(tmpDir, name)

	client := getter.Client{
		DisableSymlinks: true,
	}

	ctxlog.Debug(ctx, "fetching recipes", "src", src, "dst", dst)

	if _, err := client.Get(ctx, &getter.Request{
		Src:     src,
		Dst:     dst,
		Pwd:     wd,
		GetMode: getter.ModeFile,
		Copy:    true,
	}); err != nil {
		return nil, errors.Join(ErrFetchRecipes, err)
	}

	data, err := afero.ReadFile(afero.NewOsFs(), dst)
	if err != nil {
		return nil, errors.Join(ErrFetchRecipes, err)
	}

	return Parse(name, data, h)
}

// remoteFileName derives the file name, and so the format, from a getter source.
func remoteFileName(src string) string {
	s := src
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}

	name := s[strings.LastIndex(s, "/")+1:]
	if name == "" {
		return "recipes"
	}

	return name
}
