// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

// Package history persists the interactive shell's line history across
// invocations. It is outside the core (spec.md treats history I/O as
// program-entry plumbing, not core difficulty) but is exercised by
// cmd/mantle.
package history

import (
	"bufio"
	"os"
	"strings"

	maybeio "github.com/google/renameio/v2/maybe"
)

// DefaultPath returns ~/.mantle_history, or an error if the home
// directory cannot be resolved.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return home + "/.mantle_history", nil
}

// Load reads the newline-separated history file at path. A missing file
// is not an error; it yields an empty slice.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// Save atomically rewrites the history file at path with lines, one per
// line, using a rename-into-place so a crash mid-write never leaves a
// truncated history behind.
func Save(path string, lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return maybeio.WriteFile(path, []byte(b.String()), 0o600)
}
