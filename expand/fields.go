// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

package expand

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Fields turns an evaluated argument string into the entries it
// contributes to an argument vector. A quoted result is passed through
// verbatim as a single entry; an unquoted result is split on runs of
// whitespace and each non-empty field is glob-expanded.
func Fields(s string, quoted bool) ([]string, error) {
	if quoted {
		return []string{s}, nil
	}
	var out []string
	for _, field := range Split(s) {
		matches, err := Glob(field)
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

// Split breaks s on runs of ASCII whitespace, discarding empty fields.
func Split(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return true
		}
		return false
	})
}

// Glob expands pattern against the filesystem. A leading "~" is
// resolved to the user's home directory first. A pattern with no glob
// metacharacters passes through unchanged, matching the source's
// GLOB_NOMAGIC behavior; any other failure — including an unreadable
// path component — is a hard error that aborts the argument.
func Glob(pattern string) ([]string, error) {
	expanded, err := expandTilde(pattern)
	if err != nil {
		return nil, err
	}
	if !hasMeta(expanded) {
		return []string{expanded}, nil
	}
	matches, err := doublestar.FilepathGlob(expanded, doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("wildcard/tilde expansion failed: %w", err)
	}
	if len(matches) == 0 {
		// No wildcard matched anything: behave like GLOB_NOCHECK and
		// keep the literal pattern rather than dropping the field.
		return []string{expanded}, nil
	}
	return matches, nil
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

func expandTilde(s string) (string, error) {
	if s != "~" && !strings.HasPrefix(s, "~/") {
		return s, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("wildcard/tilde expansion failed: %w", err)
	}
	if s == "~" {
		return home, nil
	}
	return home + s[1:], nil
}
