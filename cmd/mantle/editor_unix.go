// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

//go:build unix

package main

import (
	"os"

	"golang.org/x/term"

	"github.com/mantle-sh/mantle/editor"
)

// newEditor picks editor.Raw when standard input is a terminal, and the
// plain newline-driven editor.Line otherwise (piped input, redirected
// scripts), matching term.IsTerminal checks elsewhere in the reference
// pack (e.g. the teacher's cmd/gosh/main.go).
func newEditor() editor.LineEditor {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return editor.NewRaw(os.Stdin, os.Stdout)
	}
	return editor.NewLine(os.Stdin, os.Stdout)
}
