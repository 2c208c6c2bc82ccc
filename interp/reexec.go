// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

package interp

import (
	"os"
	"os/exec"

	"github.com/mantle-sh/mantle/task"
)

// ReexecEnv is set by reexecBuiltin in the child's environment; cmd/mantle
// checks for it before doing anything else, and if present runs only the
// named built-in against os.Args[2:] and exits, instead of starting the
// normal REPL. This is how a built-in used as one stage of a pipeline
// still gets its own OS process and its own pid, the way an external
// command naturally does, without Go being able to fork() an arbitrary
// closure. Grounded on the self-reexec idiom used to run a privileged
// helper as its own process by re-invoking the current binary with a
// sentinel environment variable.
const ReexecEnv = "MANTLE_BUILTIN_EXEC"

// reexecBuiltin prepares (but does not start) a command that re-invokes
// the current executable with ReexecEnv set to name, so that name's
// built-in behavior runs as a fresh process wired into argv's pipeline
// stage the same way an external command would be. The caller is
// responsible for cancellation, the same way it is for an ordinary
// external stage, via watchCancel.
func reexecBuiltin(argv []string, dir string, env []string) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(exe, argv...)
	cmd.Dir = dir
	cmd.Env = append(append([]string{}, env...), ReexecEnv+"="+argv[0])
	prepareCommand(cmd)
	return cmd, nil
}

// RunReexecedBuiltin runs the named built-in directly against argv (which
// does not include the built-in's own name) using the process's current
// environment and standard streams, and reports the exit code cmd/mantle
// should terminate with. It is the counterpart to reexecBuiltin, invoked
// from main() before anything else once ReexecEnv is observed.
//
// The re-exec'd process gets its own empty task.Registry: it is a fresh
// OS process, not a forked copy of the shell's memory, so it has no way
// to see the parent's background tasks. list_tasks run this way reports
// none running rather than the parent's real list; cd and exit are
// unaffected since they don't depend on shared state.
func RunReexecedBuiltin(name string, argv []string) int {
	fn, ok := builtins[name]
	if !ok {
		return 127
	}
	r := New(task.NewRegistry(), nil)
	if err := fn(r, argv); err != nil {
		if err == ErrExit {
			return 0
		}
		return 1
	}
	return 0
}
