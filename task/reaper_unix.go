// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

//go:build unix

package task

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// Hooks lets the reaper coexist with an interactive line editor: PreSignal
// is called just before a completion notice is printed, to let the editor
// blank its current input line, and PostSignal just after, to let it
// redraw the prompt and buffer. Either may be nil.
type Hooks struct {
	PreSignal  func()
	PostSignal func()
}

// Reaper watches for SIGCHLD, matches terminated children against a
// Registry by pid, and prints a completion notice for each one it finds,
// mirroring the source's sigaction(SA_RESTART|SA_SIGINFO) handler.
type Reaper struct {
	registry *Registry
	stderr   io.Writer
	hooks    Hooks
	ncpu     int

	sigs chan os.Signal
	done chan struct{}
}

// NewReaper returns a Reaper that will remove terminated children from
// registry and report on them via stderr.
func NewReaper(registry *Registry, stderr io.Writer, hooks Hooks) *Reaper {
	return &Reaper{
		registry: registry,
		stderr:   stderr,
		hooks:    hooks,
		ncpu:     runtime.NumCPU(),
		sigs:     make(chan os.Signal, 16),
		done:     make(chan struct{}),
	}
}

// Start installs the SIGCHLD handler and begins reaping in a background
// goroutine. Call Stop to uninstall it.
func (r *Reaper) Start() {
	signal.Notify(r.sigs, unix.SIGCHLD)
	go r.loop()
}

// Stop uninstalls the SIGCHLD handler and terminates the reaping
// goroutine.
func (r *Reaper) Stop() {
	signal.Stop(r.sigs)
	close(r.done)
}

// Watch registers t as a background child to be reaped asynchronously.
// cmd is unused here: the SIGCHLD-driven loop reaps by pid regardless of
// which *exec.Cmd launched it. It exists so callers can treat Reaper the
// same way across build tags.
func (r *Reaper) Watch(t *Task, cmd *exec.Cmd) {
	r.registry.Add(t)
	// The child may already have exited, and its SIGCHLD been handled,
	// before t was added; queue one more reapAll pass so it is collected.
	select {
	case r.sigs <- unix.SIGCHLD:
	default:
	}
}

func (r *Reaper) loop() {
	for {
		select {
		case <-r.done:
			return
		case <-r.sigs:
			r.reapAll()
		}
	}
}

// reapAll checks every pid currently tracked in the registry with a
// WNOHANG Wait4, since one delivered SIGCHLD can coalesce several
// terminations. It never waits on -1: a global wait would also reap
// foreground children that runner.go waits on directly via ecmd.Wait,
// racing the main goroutine for the same exit status. Matching the
// source's handler (original_source/main.c), only pids this reaper was
// told to Watch are ever collected here.
func (r *Reaper) reapAll() {
	for _, t := range r.registry.Snapshot() {
		var wstatus unix.WaitStatus
		var rusage unix.Rusage
		pid, err := unix.Wait4(t.Pid, &wstatus, unix.WNOHANG, &rusage)
		if err != nil || pid <= 0 {
			continue
		}
		t, ok := r.registry.RemoveByPid(pid)
		if !ok {
			continue
		}
		var dumped bool
		switch {
		case wstatus.Exited():
			t.Status = StatusExited
			t.Code = wstatus.ExitStatus()
		case wstatus.Signaled():
			t.Status = StatusSignaled
			t.Code = int(wstatus.Signal())
			dumped = wstatus.CoreDump()
		default:
			t.Status = StatusError
		}
		r.report(t, &rusage, dumped)
	}
}

func (r *Reaper) report(t *Task, rusage *unix.Rusage, dumped bool) {
	if r.hooks.PreSignal != nil {
		r.hooks.PreSignal()
	}

	wall := time.Since(t.Start)
	wallMs := wall.Milliseconds()
	usec := float64(rusage.Utime.Sec) + float64(rusage.Utime.Usec)/1e6
	ssec := float64(rusage.Stime.Sec) + float64(rusage.Stime.Usec)/1e6

	var cpuPct float64
	if wallMs > 0 {
		cpuPct = (usec + ssec) * 100 / (wall.Seconds() * float64(r.ncpu))
	}

	fmt.Fprintf(r.stderr, "[%d] %s after %d ms [usr=%.2f, sys=%.2f, cpu=%.2f%%]\n",
		t.Pid, reasonFor(t, dumped), wallMs, usec, ssec, cpuPct)
	if f, ok := r.stderr.(*os.File); ok {
		f.Sync()
	}

	if r.hooks.PostSignal != nil {
		r.hooks.PostSignal()
	}
}

// reasonFor renders the REASON token from spec.md §4.5's six-state set.
// Wait4 as used by reapAll can only ever observe a child exiting or being
// signaled (it is never called with WUNTRACED/WCONTINUED, since job
// control is a spec.md Non-goal), so Stopped/Continued/Trapped never
// arise here; Dumped is the one extra state reachable from a signaled
// child whose core was written.
func reasonFor(t *Task, dumped bool) string {
	if t.Status == StatusSignaled {
		if dumped {
			return "Dumped"
		}
		return "Killed"
	}
	return "Exited"
}
