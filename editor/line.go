// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

package editor

import (
	"bufio"
	"fmt"
	"io"
)

// Line is a LineEditor with no terminal smarts at all: it writes the
// prompt and reads one newline-terminated line. It is the fallback used
// when standard input is not a terminal (piped scripts, non-unix
// platforms without Raw) and its PreSignal/PostSignal hooks are no-ops,
// since there is no in-progress input line to protect.
type Line struct {
	out     io.Writer
	scanner *bufio.Scanner
}

// NewLine wraps in/out as a plain LineEditor.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{out: out, scanner: bufio.NewScanner(in)}
}

// ReadLine implements LineEditor.
func (l *Line) ReadLine(prompt string) (string, bool, error) {
	fmt.Fprint(l.out, prompt)
	if !l.scanner.Scan() {
		if err := l.scanner.Err(); err != nil {
			return "", false, err
		}
		return "", true, nil
	}
	return l.scanner.Text(), false, nil
}

// PreSignal implements LineEditor; it is a no-op for this editor.
func (l *Line) PreSignal() {}

// PostSignal implements LineEditor; it is a no-op for this editor.
func (l *Line) PostSignal() {}

// Close implements LineEditor; it is a no-op for this editor.
func (l *Line) Close() error { return nil }
