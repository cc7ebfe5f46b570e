// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sysinfo samples host metrics and answers small questions about the host
// that recipes depend on, such as whether a tool is installed or which wireless
// interface is up.
//
// Every metric degrades to a neutral value (0 or NotAvailable) instead of returning
// an error.
package sysinfo
