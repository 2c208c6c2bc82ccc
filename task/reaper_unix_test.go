// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

//go:build unix

package task

import (
	"bytes"
	"os/exec"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

// TestReaperReapsBackgroundChildren covers testable property 7: after N
// background children exit, the registry's length returns to 0 and each
// produces exactly one completion notice.
func TestReaperReapsBackgroundChildren(t *testing.T) {
	c := qt.New(t)
	registry := NewRegistry()
	var stderr bytes.Buffer
	var preCalls, postCalls int
	reaper := NewReaper(registry, &stderr, Hooks{
		PreSignal:  func() { preCalls++ },
		PostSignal: func() { postCalls++ },
	})
	reaper.Start()
	defer reaper.Stop()

	const n = 3
	for i := 0; i < n; i++ {
		cmd := exec.Command("true")
		c.Assert(cmd.Start(), qt.IsNil)
		reaper.Watch(&Task{Pid: cmd.Process.Pid, Argv: []string{"true"}, Status: StatusRunning, Start: time.Now()}, cmd)
	}

	deadline := time.Now().Add(5 * time.Second)
	for registry.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	c.Assert(registry.Len(), qt.Equals, 0)
	c.Assert(preCalls, qt.Equals, n)
	c.Assert(postCalls, qt.Equals, n)
	for i := 0; i < n; i++ {
		c.Assert(stderr.String(), qt.Contains, "Exited after")
	}
}
