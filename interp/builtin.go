// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

package interp

import (
	"fmt"
	"os"

	"github.com/mantle-sh/mantle/expand"
)

// builtins is the exact set from spec.md §4.3: cd, exit, and list_tasks
// under both of its names. Anything else falls through to exec.
var builtins = map[string]func(r *Runner, args []string) error{
	"cd":         builtinCd,
	"exit":       builtinExit,
	"list_tasks": builtinListTasks,
	"liste_ps":   builtinListTasks,
}

func builtinCd(r *Runner, args []string) error {
	var target string
	if len(args) > 0 {
		target = args[0]
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(r.Stderr, "Unable to find home directory")
			return err
		}
		target = home
	}
	if target == "~" || len(target) > 1 && target[:2] == "~/" {
		matches, err := expand.Glob(target)
		if err == nil && len(matches) > 0 {
			target = matches[0]
		}
	}
	target = resolvePath(r, target)
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		fmt.Fprintf(r.Stderr, "No such directory : %s\n", target)
		if err == nil {
			err = fmt.Errorf("not a directory: %s", target)
		}
		return err
	}
	r.Dir = target
	return nil
}

// builtinExit signals the shell to terminate: the top-level loop treats
// ErrExit as a clean stop, and a pipeline stage running this builtin
// inside a re-exec'd process turns it into a real process exit(0), the
// way exit() does for a forked child in the source.
func builtinExit(r *Runner, args []string) error {
	return ErrExit
}

// builtinListTasks renders the four-state status line for every
// currently tracked background task. Unlike the source's task_inspect,
// this performs no ad hoc non-blocking wait of its own: the registry is
// kept continuously reaped by the SIGCHLD-driven task.Reaper, so any
// task still present here is, by construction, still running.
func builtinListTasks(r *Runner, args []string) error {
	for _, t := range r.Tasks.Snapshot() {
		t.Inspect(r.Stdout)
	}
	return nil
}
