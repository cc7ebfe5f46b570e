// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch turns an ordered list of shell command strings into execution
// groups and runs them one after another, stopping at the first failure.
//
// Commands that need elevation are merged with their elevated neighbours so a whole
// run of privileged work costs a single authentication prompt. Every batch runs on a
// background goroutine and reports its progress as a stream of Events that always
// ends with exactly one EventFinished.
package runbatch
