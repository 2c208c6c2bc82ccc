// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

//go:build !unix

package main

import (
	"os"

	"github.com/mantle-sh/mantle/editor"
)

// newEditor falls back to the plain newline-driven editor.Line on
// platforms without editor.Raw's raw-mode support (see editor/raw.go's
// unix build tag).
func newEditor() editor.LineEditor {
	return editor.NewLine(os.Stdin, os.Stdout)
}
