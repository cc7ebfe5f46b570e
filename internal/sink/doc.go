// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sink renders batch progress events as timestamped log lines.
package sink
