// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

// mantle is a small interactive shell built on top of the syntax, expand,
// interp and task packages this repository also exposes as libraries.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mantle-sh/mantle/editor"
	"github.com/mantle-sh/mantle/history"
	"github.com/mantle-sh/mantle/interp"
	"github.com/mantle-sh/mantle/syntax"
	"github.com/mantle-sh/mantle/task"
)

// prompt is the fixed prompt string spec.md §6 names ("yas> " in the
// source); it also sets the left-pad width a syntax-error caret lines up
// under.
const prompt = "yas> "

var command = flag.String("c", "", "run a single command line non-interactively")

func main() {
	os.Exit(main1())
}

// main1 is split out from main so a test binary can invoke it directly
// via testscript.RunMain, the way cmd/shfmt's tests do.
func main1() int {
	// A builtin reached as one stage of a pipeline gets here by
	// re-exec'ing this same binary with ReexecEnv set; see
	// interp.RunReexecedBuiltin's doc comment for why. os.Args[1] always
	// repeats the same name ReexecEnv carries; os.Args[2:] is the
	// builtin's own argument vector, without its name.
	if name := os.Getenv(interp.ReexecEnv); name != "" {
		return interp.RunReexecedBuiltin(name, os.Args[2:])
	}

	flag.Parse()
	_ = godotenv.Load(".env") // a missing .env file seeds nothing and is not an error

	if err := run(); err != nil {
		var re reported
		if !errors.As(err, &re) {
			fmt.Fprintln(os.Stderr, err)
		}
		return exitCodeOf(err)
	}
	return 0
}

// reported wraps an error whose message has already been written to
// stderr by the package that produced it (parser, evaluator, redirection,
// exec failure), so main1 doesn't print it a second time; Unwrap keeps it
// transparent to errors.As for exit-code inspection.
type reported struct{ error }

func (r reported) Unwrap() error { return r.error }

func exitCodeOf(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tasks := task.NewRegistry()
	ed := newEditor()
	defer ed.Close()

	reaper := task.NewReaper(tasks, os.Stderr, task.Hooks{PreSignal: ed.PreSignal, PostSignal: ed.PostSignal})
	reaper.Start()
	defer reaper.Stop()

	r := interp.New(tasks, reaper)

	switch {
	case *command != "":
		return runLines(ctx, r, strings.NewReader(*command))
	case flag.NArg() > 0:
		for _, path := range flag.Args() {
			if err := runFile(ctx, r, path); err != nil {
				return err
			}
		}
		return nil
	default:
		return runInteractive(ctx, r, ed)
	}
}

func runFile(ctx context.Context, r *interp.Runner, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return runLines(ctx, r, f)
}

// runLines parses and runs one command line per input line, the way a
// non-interactive script is driven: spec.md's grammar has no
// newline-as-separator rule of its own, so each line is an independent
// command_line. A syntax or evaluation error is reported and execution
// continues with the next line, matching the interactive loop's
// no-abort-on-error behavior; exit still stops the whole run.
func runLines(ctx context.Context, r *interp.Runner, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	var last error
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		node, perr := syntax.Parse([]byte(line))
		if perr != nil {
			printParseError(os.Stderr, perr.(*syntax.ParseError))
			last = reported{perr}
			continue
		}
		if err := r.Run(ctx, node); err != nil {
			if errors.Is(err, interp.ErrExit) {
				return nil
			}
			// An *exec.ExitError from a command that ran to completion
			// and simply exited non-zero was never reported anywhere;
			// everything else (parse/evaluation/redirection/exec-launch
			// failures) was already printed at its site of failure.
			var ee *exec.ExitError
			if errors.As(err, &ee) {
				last = err
			} else {
				last = reported{err}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return last
}

// runInteractive drives the read-eval-print loop: read a line, parse it,
// run it, report completion asynchronously via the reaper's hooks into
// ed, and persist history on exit.
func runInteractive(ctx context.Context, r *interp.Runner, ed editor.LineEditor) error {
	histPath, _ := history.DefaultPath()
	lines, _ := history.Load(histPath)

	var last error
	for {
		line, eof, err := ed.ReadLine(prompt)
		if err != nil {
			last = err
			break
		}
		if eof {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)

		node, perr := syntax.Parse([]byte(line))
		if perr != nil {
			printParseError(os.Stderr, perr.(*syntax.ParseError))
			continue
		}
		if err := r.Run(ctx, node); err != nil {
			if errors.Is(err, interp.ErrExit) {
				break
			}
			// Already reported at the site of failure (builtin,
			// redirection, exec); the prompt just comes back around.
		}
	}

	if histPath != "" {
		if err := history.Save(histPath, lines); err != nil && last == nil {
			last = err
		}
	}
	return last
}

// printParseError renders the spec.md §6 syntax-error format: a caret
// under the offending byte position, left-padded to the prompt's width,
// followed by "syntax error @ POS : REASON".
func printParseError(w io.Writer, pe *syntax.ParseError) {
	fmt.Fprint(w, strings.Repeat(" ", len(prompt)+pe.Pos))
	fmt.Fprintln(w, "^")
	fmt.Fprintln(w, pe.Error())
}
