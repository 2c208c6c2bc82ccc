// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

// Package interp walks a parsed command tree, resolves its arguments,
// and launches the resulting programs, wiring pipes, redirections and
// background/foreground semantics, and built-in dispatch.
package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mantle-sh/mantle/expand"
	"github.com/mantle-sh/mantle/syntax"
	"github.com/mantle-sh/mantle/task"
)

// ErrExit is returned by Run when the shell has been asked, via the exit
// built-in, to terminate. The top-level loop checks for it with
// errors.Is and stops reading further input.
var ErrExit = errors.New("exit")

// Runner holds the execution environment a command tree is evaluated
// against: the variable environment, working directory, standard
// streams, and the task bookkeeping shared with the SIGCHLD coordinator.
type Runner struct {
	Env    map[string]string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Tasks  *task.Registry
	Reaper *task.Reaper
}

// New returns a Runner seeded from the current process's environment,
// working directory and standard streams.
func New(tasks *task.Registry, reaper *task.Reaper) *Runner {
	dir, _ := os.Getwd()
	return &Runner{
		Env:    envMap(os.Environ()),
		Dir:    dir,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Tasks:  tasks,
		Reaper: reaper,
	}
}

// resolvePath joins path onto r.Dir when it isn't already absolute, so
// that built-ins and redirections resolve relative paths against the
// shell's notion of its current directory rather than the OS process's
// actual cwd, which builtinCd never changes: a Runner is cloned for
// command substitution, so chdir(2)-ing the whole process would leak
// one substitution's cd into every concurrently running goroutine
// sharing the same OS process.
func resolvePath(r *Runner, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.Dir, path)
}

func envMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	return m
}

func (r *Runner) envSlice() []string {
	out := make([]string, 0, len(r.Env))
	for k, v := range r.Env {
		out = append(out, k+"="+v)
	}
	return out
}

// getenv implements expand.Getenv over r.Env: a missing variable is
// never an error, only an empty value.
func (r *Runner) getenv(name string) (string, bool) {
	v, ok := r.Env[name]
	return v, ok
}

// clone returns a shallow copy of r, for use by command substitution,
// which needs an independent Stdout without disturbing the parent
// Runner's streams.
func (r *Runner) clone() *Runner {
	r2 := *r
	return &r2
}

// Run evaluates and executes node, which must be a *syntax.SingleCommand
// or a *syntax.Pipeline (or nil, for a blank/comment-only line).
func (r *Runner) Run(ctx context.Context, node syntax.Node) error {
	switch n := node.(type) {
	case nil:
		return nil
	case *syntax.SingleCommand:
		return r.runSingle(ctx, n)
	case *syntax.Pipeline:
		return r.runPipeline(ctx, n)
	default:
		return fmt.Errorf("interp: unsupported node type %T", node)
	}
}

// evalArgv resolves args into a fully expanded argument vector, printing
// the spec's "Argument evaluation failed." / "Wildcard/tilde expansion
// failed." diagnostics to Stderr at the point of failure.
func (r *Runner) evalArgv(ctx context.Context, args []*syntax.Argument) ([]string, error) {
	var argv []string
	for _, a := range args {
		s, quoted, err := expand.Evaluate(r.getenv, a, r.substitutionRunner(ctx))
		if err != nil {
			fmt.Fprintln(r.Stderr, "Argument evaluation failed.")
			a.Inspect(r.Stderr, 0)
			return nil, err
		}
		fields, err := expand.Fields(s, quoted)
		if err != nil {
			fmt.Fprintln(r.Stderr, "Wildcard/tilde expansion failed.")
			return nil, err
		}
		argv = append(argv, fields...)
	}
	return argv, nil
}

func (r *Runner) substitutionRunner(ctx context.Context) expand.SubstitutionRunner {
	return func(cmd syntax.Node) (string, error) {
		return r.captureOutput(ctx, cmd)
	}
}

// captureOutput runs cmd to completion with its standard output bound to
// a pipe, reads the pipe to EOF, and strips a single trailing newline,
// the way the source's eval_argument does for ARGTYPE_COMMAND — except
// via an in-process goroutine plus os.Pipe rather than a literal
// fork/waitpid/read loop, since Go has no fork() to call.
func (r *Runner) captureOutput(ctx context.Context, cmd syntax.Node) (string, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return "", fmt.Errorf("unable to open pipe")
	}

	sub := r.clone()
	sub.Stdout = pw

	done := make(chan error, 1)
	go func() {
		err := sub.Run(ctx, cmd)
		pw.Close()
		done <- err
	}()

	out, readErr := io.ReadAll(pr)
	pr.Close()
	runErr := <-done
	if runErr != nil && !errors.Is(runErr, ErrExit) {
		return "", runErr
	}
	if readErr != nil {
		return "", readErr
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

// runSingle evaluates and launches a single, non-pipeline command: a
// built-in dispatch in-process, or a fork+redirect+exec of an external
// program, foreground or background.
func (r *Runner) runSingle(ctx context.Context, cmd *syntax.SingleCommand) error {
	argv, err := r.evalArgv(ctx, cmd.Args)
	if err != nil {
		return err
	}
	if len(argv) == 0 {
		return nil
	}

	if fn, ok := builtins[argv[0]]; ok {
		return fn(r, argv[1:])
	}

	ecmd := exec.Command(argv[0], argv[1:]...)
	ecmd.Dir = r.Dir
	ecmd.Env = r.envSlice()
	ecmd.Stdin = r.Stdin
	ecmd.Stdout = r.Stdout
	ecmd.Stderr = r.Stderr
	prepareCommand(ecmd)

	closers, err := applyRedirects(ctx, ecmd, r, cmd.RedirIn, cmd.RedirOut)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	return r.launch(ctx, ecmd, argv, cmd.Background)
}

// launch starts ecmd and either waits on it (foreground) or registers it
// as a background task and returns immediately, printing the "[index]
// pid" notice to Stderr the way exec_command does. A foreground wait is
// guarded by watchCancel so that ctx cancellation (Ctrl-C, SIGTERM)
// interrupts the child's process group instead of leaving it running
// past the shell's own exit.
func (r *Runner) launch(ctx context.Context, ecmd *exec.Cmd, argv []string, background bool) error {
	if err := ecmd.Start(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			fmt.Fprintf(r.Stderr, "Command not found: %s\n", argv[0])
			return err
		}
		fmt.Fprintln(r.Stderr, "Unable to fork.")
		return err
	}

	if !background {
		stop := watchCancel(ctx, ecmd)
		defer stop()
		return ecmd.Wait()
	}

	t := &task.Task{Pid: ecmd.Process.Pid, Argv: argv, Status: task.StatusRunning}
	watchBackground(r, t, ecmd)
	fmt.Fprintf(r.Stderr, "[%d] %d\n", r.Tasks.Len(), t.Pid)
	return nil
}

// runPipeline wires a pipe between each consecutive pair of stages,
// launches every stage, and waits for all non-background stages
// concurrently. A pipeline's own Background flag, set by the parser when
// its last stage ended in '&', makes the whole chain background instead.
func (r *Runner) runPipeline(ctx context.Context, pl *syntax.Pipeline) error {
	n := len(pl.Stages)
	cmds := make([]*exec.Cmd, n)
	closers := make([][]io.Closer, n)

	var stageIn io.Reader = r.Stdin
	for i, stage := range pl.Stages {
		argv, err := r.evalArgv(ctx, stage.Args)
		if err != nil {
			return err
		}
		if len(argv) == 0 {
			return fmt.Errorf("interp: empty pipeline stage")
		}

		var stageOut io.Writer = r.Stdout
		var pipeRead *os.File
		var pipeWrite *os.File
		if i < n-1 {
			pr, pw, err := os.Pipe()
			if err != nil {
				fmt.Fprintln(r.Stderr, "Unable to open pipe.")
				return err
			}
			stageOut = pw
			pipeRead, pipeWrite = pr, pw
		}

		ecmd, err := r.prepareStage(ctx, argv, stageIn, stageOut)
		if err != nil {
			return err
		}
		cmds[i] = ecmd
		cs, err := applyRedirects(ctx, ecmd, r, stage.RedirIn, stage.RedirOut)
		if err != nil {
			return err
		}
		closers[i] = cs

		if err := ecmd.Start(); err != nil {
			fmt.Fprintln(r.Stderr, "Unable to fork.")
			return err
		}

		// The parent's copies of this boundary's ends are no longer
		// needed once the child has inherited them: the write end is
		// closed immediately so the next stage sees EOF when this one
		// finishes, and the previous stage's read end (now consumed by
		// this stage) is closed too.
		if pipeWrite != nil {
			pipeWrite.Close()
		}
		if rc, ok := stageIn.(io.Closer); ok && stageIn != r.Stdin {
			rc.Close()
		}
		stageIn = pipeRead
	}

	defer func() {
		for _, cs := range closers {
			closeAll(cs)
		}
	}()

	// A stage whose own background flag is set (only possible for a
	// non-trailing stage, e.g. "A & B") contributes no wait; it is
	// tracked in the registry like any other background child rather
	// than leaked, per spec.md's "future extension: registered" note.
	// The pipeline's own Background flag — which always mirrors the
	// last stage's — makes every remaining stage background too.
	g, _ := errgroup.WithContext(ctx)
	var lastPid int
	for i, c := range cmds {
		background := pl.Stages[i].Background || pl.Background
		if background {
			watchBackground(r, &task.Task{Pid: c.Process.Pid, Status: task.StatusRunning}, c)
			lastPid = c.Process.Pid
			continue
		}
		c := c
		stop := watchCancel(ctx, c)
		g.Go(func() error {
			defer stop()
			return c.Wait()
		})
	}
	if pl.Background {
		fmt.Fprintf(r.Stderr, "[%d] %d\n", r.Tasks.Len(), lastPid)
		return nil
	}
	return g.Wait()
}

// prepareStage builds the *exec.Cmd for one pipeline stage, running a
// built-in by way of a re-exec of this same binary so that it still
// becomes its own OS process with its own pid inside the pipeline,
// matching the source's "built-ins run in the forked child" rule even
// though Go cannot fork an arbitrary closure.
func (r *Runner) prepareStage(ctx context.Context, argv []string, stdin io.Reader, stdout io.Writer) (*exec.Cmd, error) {
	var ecmd *exec.Cmd
	if _, ok := builtins[argv[0]]; ok {
		var err error
		ecmd, err = reexecBuiltin(argv, r.Dir, r.envSlice())
		if err != nil {
			return nil, err
		}
	} else {
		ecmd = exec.Command(argv[0], argv[1:]...)
		ecmd.Dir = r.Dir
		ecmd.Env = r.envSlice()
		prepareCommand(ecmd)
	}
	ecmd.Stdin = stdin
	ecmd.Stdout = stdout
	ecmd.Stderr = r.Stderr
	return ecmd, nil
}

// killTimeout is how long watchCancel waits after interrupting a
// foreground child before escalating to a kill signal, matching the
// teacher's DefaultExecHandler default.
const killTimeout = 2 * time.Second

// watchCancel arranges for ecmd's process group to be interrupted, and
// killed if it hasn't exited killTimeout later, once ctx is done. The
// returned stop func must be called after the wait on ecmd returns, to
// release the registration if ctx is never canceled.
func watchCancel(ctx context.Context, ecmd *exec.Cmd) func() bool {
	return context.AfterFunc(ctx, func() {
		if err := interruptCommand(ecmd); err != nil {
			killCommand(ecmd)
			return
		}
		time.Sleep(killTimeout)
		killCommand(ecmd)
	})
}

func watchBackground(r *Runner, t *task.Task, ecmd *exec.Cmd) {
	if t.Start.IsZero() {
		t.Start = time.Now()
	}
	r.Reaper.Watch(t, ecmd)
}

func closeAll(cs []io.Closer) {
	for _, c := range cs {
		c.Close()
	}
}
