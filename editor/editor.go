// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

// Package editor defines the contract an interactive line editor must
// meet to drive the shell core, plus a minimal raw-mode implementation
// good enough to run it standalone. Richer history/keybinding/redisplay
// behavior is left to whatever editor a caller plugs in.
package editor

// LineEditor produces one raw command line per call and exposes the two
// hooks the task reaper needs to keep a background-completion notice
// from corrupting an in-flight input line.
type LineEditor interface {
	// ReadLine displays prompt and returns the line the user entered.
	// eof is true when the input stream has ended (e.g. Ctrl-D on an
	// empty line); in that case line is always empty.
	ReadLine(prompt string) (line string, eof bool, err error)

	// PreSignal is called immediately before an asynchronous completion
	// notice is printed, so the editor can blank its current line.
	PreSignal()

	// PostSignal is called immediately after, so the editor can redraw
	// its prompt and buffer.
	PostSignal()

	// Close restores any terminal state PreSignal/raw mode altered.
	Close() error
}
