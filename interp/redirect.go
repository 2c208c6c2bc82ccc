// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/mantle-sh/mantle/expand"
	"github.com/mantle-sh/mantle/syntax"
)

// applyRedirects evaluates a command's optional input/output redirection
// arguments and points ecmd's Stdin/Stdout at the opened files, exactly
// as exec_setup_redir does in the child after fork: a redirect failure
// (bad argument, unreadable/unwritable path) is fatal to that stage. The
// returned closers must be closed by the caller once the command has
// been started (or once redirect setup itself fails before starting).
func applyRedirects(ctx context.Context, ecmd *exec.Cmd, r *Runner, redirIn, redirOut *syntax.Argument) ([]io.Closer, error) {
	var closers []io.Closer

	if redirIn != nil {
		path, err := evalRedirectPath(ctx, r, redirIn)
		if err != nil {
			return closers, err
		}
		path = resolvePath(r, path)
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(r.Stderr, "Unable to read from %s.\n", path)
			return closers, err
		}
		ecmd.Stdin = f
		closers = append(closers, f)
	}

	if redirOut != nil {
		path, err := evalRedirectPath(ctx, r, redirOut)
		if err != nil {
			return closers, err
		}
		path = resolvePath(r, path)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			fmt.Fprintf(r.Stderr, "Unable to write into %s.\n", path)
			return closers, err
		}
		ecmd.Stdout = f
		closers = append(closers, f)
	}

	return closers, nil
}

func evalRedirectPath(ctx context.Context, r *Runner, arg *syntax.Argument) (string, error) {
	s, _, err := expand.Evaluate(r.getenv, arg, r.substitutionRunner(ctx))
	if err != nil {
		fmt.Fprintln(r.Stderr, "Argument evaluation failed.")
		arg.Inspect(r.Stderr, 0)
		return "", err
	}
	return s, nil
}
