// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

//go:build windows

package interp

import (
	"os"
	"os/exec"
)

// prepareCommand is a no-op on Windows.
func prepareCommand(cmd *exec.Cmd) {}

// interruptCommand kills cmd's process; prepareCommand sets up no
// process group here, so children it spawned are not signaled.
func interruptCommand(cmd *exec.Cmd) error {
	return cmd.Process.Signal(os.Kill)
}

// killCommand kills cmd's process.
func killCommand(cmd *exec.Cmd) error {
	return cmd.Process.Signal(os.Kill)
}
