// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

//go:build unix

package editor

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Raw is a minimal raw-mode LineEditor: printable runes, backspace and
// Enter are enough to drive the shell core end-to-end. History,
// completion and multi-line redisplay are left to a richer editor a
// caller may plug in instead; this one exists so cmd/mantle is runnable
// standalone.
type Raw struct {
	in     *os.File
	out    io.Writer
	state  *term.State
	raw    bool
	reader *bufio.Reader

	prompt string
	buf    []rune
}

// NewRaw wraps in/out as a raw-mode LineEditor. in must be a terminal;
// callers should check term.IsTerminal first and fall back to a
// non-interactive reader otherwise.
func NewRaw(in *os.File, out io.Writer) *Raw {
	return &Raw{in: in, out: out, reader: bufio.NewReader(in)}
}

func (r *Raw) enterRaw() error {
	if r.raw {
		return nil
	}
	state, err := term.MakeRaw(int(r.in.Fd()))
	if err != nil {
		return err
	}
	r.state = state
	r.raw = true
	return nil
}

func (r *Raw) leaveRaw() {
	if !r.raw {
		return
	}
	term.Restore(int(r.in.Fd()), r.state)
	r.raw = false
}

// ReadLine implements LineEditor.
func (r *Raw) ReadLine(prompt string) (string, bool, error) {
	if err := r.enterRaw(); err != nil {
		return "", false, err
	}
	defer r.leaveRaw()

	r.prompt = prompt
	r.buf = r.buf[:0]
	fmt.Fprint(r.out, prompt)

	for {
		ru, _, err := r.reader.ReadRune()
		if err != nil {
			if err == io.EOF {
				fmt.Fprint(r.out, "\r\n")
				return "", true, nil
			}
			return "", false, err
		}
		switch ru {
		case '\r', '\n':
			fmt.Fprint(r.out, "\r\n")
			return string(r.buf), false, nil
		case 3: // Ctrl-C
			fmt.Fprint(r.out, "^C\r\n")
			r.buf = r.buf[:0]
			fmt.Fprint(r.out, r.prompt)
		case 4: // Ctrl-D on an empty line
			if len(r.buf) == 0 {
				fmt.Fprint(r.out, "\r\n")
				return "", true, nil
			}
		case 127, 8: // backspace / delete
			if len(r.buf) > 0 {
				last := r.buf[len(r.buf)-1]
				r.buf = r.buf[:len(r.buf)-1]
				eraseRune(r.out, last)
			}
		default:
			r.buf = append(r.buf, ru)
			fmt.Fprintf(r.out, "%c", ru)
		}
	}
}

// eraseRune backs the cursor up over a just-deleted rune and blanks it,
// emitting one backspace per display column so wide (e.g. CJK) runes
// erase cleanly instead of leaving a stray half-character on screen.
func eraseRune(out io.Writer, ru rune) {
	n := runewidth.RuneWidth(ru)
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		fmt.Fprint(out, "\b \b")
	}
}

// PreSignal implements LineEditor: it blanks the current input line so an
// asynchronous completion notice does not land in the middle of it.
func (r *Raw) PreSignal() {
	if len(r.prompt) == 0 && len(r.buf) == 0 {
		return
	}
	fmt.Fprint(r.out, "\r")
	for range r.prompt {
		fmt.Fprint(r.out, " ")
	}
	for _, ru := range r.buf {
		n := runewidth.RuneWidth(ru)
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			fmt.Fprint(r.out, " ")
		}
	}
	fmt.Fprint(r.out, "\r")
}

// PostSignal implements LineEditor: it redraws the prompt and whatever
// had been typed so far.
func (r *Raw) PostSignal() {
	fmt.Fprint(r.out, r.prompt, string(r.buf))
}

// Close restores the terminal to its original (non-raw) mode.
func (r *Raw) Close() error {
	r.leaveRaw()
	return nil
}
