// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package excerpt captures a short, display-ready head of a command's output.
//
// A Writer keeps only the first few non-blank-led lines of whatever is written to
// it and remembers whether anything meaningful was discarded, so arbitrarily large
// output can be streamed through it without growing memory.
package excerpt
