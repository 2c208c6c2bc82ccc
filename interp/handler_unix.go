// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

//go:build unix

package interp

import (
	"os/exec"
	"syscall"
)

// prepareCommand puts cmd in its own process group, so that
// interruptCommand and killCommand reach the child and anything it
// spawned. The child is then outside the terminal's foreground process
// group: a Ctrl-C typed at the terminal is delivered to the shell, not
// to the child, and reaches a foreground child only through ctx
// cancellation (see watchCancel).
func prepareCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// interruptCommand interrupts cmd's whole process group.
func interruptCommand(cmd *exec.Cmd) error {
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGINT)
}

// killCommand kills cmd's whole process group.
func killCommand(cmd *exec.Cmd) error {
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
