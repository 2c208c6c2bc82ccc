// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

package task

import (
	"bytes"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestRegistryAddRemovePreservesOrder(t *testing.T) {
	c := qt.New(t)
	r := NewRegistry()
	a := &Task{Pid: 1}
	b := &Task{Pid: 2}
	d := &Task{Pid: 3}
	r.Add(a)
	r.Add(b)
	r.Add(d)
	c.Assert(r.Len(), qt.Equals, 3)

	got, ok := r.RemoveByPid(2)
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, b)
	c.Assert(r.Len(), qt.Equals, 2)

	snap := r.Snapshot()
	c.Assert(snap[0].Pid, qt.Equals, 1)
	c.Assert(snap[1].Pid, qt.Equals, 3)
}

func TestRegistryRemoveByPidMissing(t *testing.T) {
	c := qt.New(t)
	r := NewRegistry()
	r.Add(&Task{Pid: 1})
	_, ok := r.RemoveByPid(99)
	c.Assert(ok, qt.IsFalse)
	c.Assert(r.Len(), qt.Equals, 1)
}

func TestTaskInspectFourStates(t *testing.T) {
	for _, tt := range []struct {
		status Status
		code   int
		want   string
	}{
		{StatusExited, 0, "exit   0"},
		{StatusExited, 7, "exit   7"},
		{StatusSignaled, 9, "sig    9"},
		{StatusError, 0, "error   "},
		{StatusRunning, 0, "running "},
		{StatusUnknown, 0, "running "},
	} {
		var buf bytes.Buffer
		task := &Task{Pid: 42, Argv: []string{"sleep", "1"}, Status: tt.status, Code: tt.code, Start: time.Now()}
		task.Inspect(&buf)
		got := buf.String()
		if !bytes.Contains([]byte(got), []byte(tt.want)) {
			t.Errorf("Inspect() = %q, want substring %q", got, tt.want)
		}
		if !bytes.Contains([]byte(got), []byte("sleep")) || !bytes.Contains([]byte(got), []byte("1")) {
			t.Errorf("Inspect() = %q, want argv rendered", got)
		}
	}
}

func TestTaskInspectNilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	var task *Task
	task.Inspect(&buf)
	qt.New(t).Assert(buf.Len(), qt.Equals, 0)
}
