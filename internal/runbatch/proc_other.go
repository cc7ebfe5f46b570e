// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !unix

package runbatch

import (
	"errors"
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

func killProcessGroup(ps *os.Process) error {
	if err := ps.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err //nolint:wrapcheck
	}

	return nil
}
