// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

package interp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/mantle-sh/mantle/task"
)

func TestBuiltinCdChangesDir(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(t)
	sub := filepath.Join(r.Dir, "sub")
	c.Assert(os.Mkdir(sub, 0o755), qt.IsNil)

	c.Assert(builtinCd(r, []string{sub}), qt.IsNil)
	c.Assert(r.Dir, qt.Equals, sub)
}

func TestBuiltinCdRelativeResolvesAgainstRunnerDir(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(t)
	sub := filepath.Join(r.Dir, "sub")
	c.Assert(os.Mkdir(sub, 0o755), qt.IsNil)

	c.Assert(builtinCd(r, []string{"sub"}), qt.IsNil)
	c.Assert(r.Dir, qt.Equals, sub)

	nested := filepath.Join(sub, "nested")
	c.Assert(os.Mkdir(nested, 0o755), qt.IsNil)
	c.Assert(builtinCd(r, []string{"nested"}), qt.IsNil)
	c.Assert(r.Dir, qt.Equals, nested)
}

func TestBuiltinCdNoSuchDirectory(t *testing.T) {
	c := qt.New(t)
	r, _, stderr := newTestRunner(t)
	err := builtinCd(r, []string{filepath.Join(r.Dir, "missing")})
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(stderr.String(), qt.Contains, "No such directory")
}

func TestBuiltinExitReturnsSentinel(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(t)
	err := builtinExit(r, nil)
	c.Assert(errors.Is(err, ErrExit), qt.IsTrue)
}

func TestBuiltinListTasksRendersRunningState(t *testing.T) {
	c := qt.New(t)
	r, stdout, _ := newTestRunner(t)
	r.Tasks.Add(&task.Task{Pid: 123, Argv: []string{"sleep", "10"}, Status: task.StatusRunning})

	c.Assert(builtinListTasks(r, nil), qt.IsNil)
	out := stdout.String()
	c.Assert(out, qt.Contains, "running")
	c.Assert(out, qt.Contains, "sleep")
}

func TestBuiltinsTableHasExactSet(t *testing.T) {
	c := qt.New(t)
	for _, name := range []string{"cd", "exit", "list_tasks", "liste_ps"} {
		_, ok := builtins[name]
		c.Assert(ok, qt.IsTrue, qt.Commentf("missing builtin %q", name))
	}
	c.Assert(len(builtins), qt.Equals, 4)
}
