// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

//go:build unix

package editor

import (
	"bufio"
	"testing"

	"github.com/creack/pty"
	qt "github.com/frankban/quicktest"
)

// TestRawReadLineOverPty drives a Raw editor over a real pseudo-terminal,
// the way the teacher's interp/terminal_test.go exercises terminal-backed
// I/O with github.com/creack/pty rather than a plain pipe.
func TestRawReadLineOverPty(t *testing.T) {
	c := qt.New(t)
	ptmx, tty, err := pty.Open()
	c.Assert(err, qt.IsNil)
	defer ptmx.Close()
	defer tty.Close()

	ed := NewRaw(tty, tty)
	defer ed.Close()

	done := make(chan struct{})
	var line string
	var eof bool
	go func() {
		line, eof, err = ed.ReadLine("yas> ")
		close(done)
	}()

	writer := bufio.NewWriter(ptmx)
	_, werr := writer.WriteString("echo hi\r")
	c.Assert(werr, qt.IsNil)
	c.Assert(writer.Flush(), qt.IsNil)

	<-done
	c.Assert(err, qt.IsNil)
	c.Assert(eof, qt.IsFalse)
	c.Assert(line, qt.Equals, "echo hi")
}

// TestRawCtrlDOnEmptyLineSignalsEOF covers the editor contract's
// end-of-input flag: Ctrl-D on an empty input line reports eof=true with
// an empty line, the trigger the top-level loop uses to stop reading.
func TestRawCtrlDOnEmptyLineSignalsEOF(t *testing.T) {
	c := qt.New(t)
	ptmx, tty, err := pty.Open()
	c.Assert(err, qt.IsNil)
	defer ptmx.Close()
	defer tty.Close()

	ed := NewRaw(tty, tty)
	defer ed.Close()

	done := make(chan struct{})
	var line string
	var eof bool
	go func() {
		line, eof, err = ed.ReadLine("yas> ")
		close(done)
	}()

	_, werr := ptmx.Write([]byte{4}) // Ctrl-D
	c.Assert(werr, qt.IsNil)

	<-done
	c.Assert(err, qt.IsNil)
	c.Assert(eof, qt.IsTrue)
	c.Assert(line, qt.Equals, "")
}
