// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config holds the engine settings: which shell and elevation front-end to
// use, how long steps may run and how much output is kept.
package config
