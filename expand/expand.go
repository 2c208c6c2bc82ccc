// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

// Package expand turns a parsed syntax.Argument into a string, and
// turns that string into zero or more argument-vector entries via word
// splitting and glob expansion.
package expand

import (
	"fmt"
	"strings"

	"github.com/mantle-sh/mantle/syntax"
)

// Getenv looks up an environment variable by name, reporting whether it
// is set. A missing variable evaluates to the empty string, never an
// error.
type Getenv func(name string) (string, bool)

// SubstitutionRunner executes cmd — a *syntax.SingleCommand or
// *syntax.Pipeline captured by an ArgSubstitution node — in a child
// process and returns its captured standard output with a single
// trailing newline stripped. It is supplied by the interp package,
// which is the only package that knows how to spawn processes; expand
// itself never does.
type SubstitutionRunner func(cmd syntax.Node) (string, error)

// Evaluate resolves arg to its string value and reports the top-level
// quoted flag that governs whether the result is later split and
// glob-expanded.
func Evaluate(env Getenv, arg *syntax.Argument, runSub SubstitutionRunner) (string, bool, error) {
	if arg == nil {
		return "", false, nil
	}
	switch arg.Kind {
	case syntax.ArgLiteral:
		return arg.Literal, arg.Quoted(), nil

	case syntax.ArgVariable:
		v, _ := env(arg.Literal)
		return v, arg.Quoted(), nil

	case syntax.ArgSubstitution:
		out, err := runSub(arg.Command)
		if err != nil {
			return "", arg.Quoted(), err
		}
		return out, arg.Quoted(), nil

	case syntax.ArgConcat:
		var b strings.Builder
		for _, part := range arg.Parts {
			s, _, err := Evaluate(env, part, runSub)
			if err != nil {
				return "", arg.Quoted(), err
			}
			b.WriteString(s)
		}
		return b.String(), arg.Quoted(), nil

	default:
		return "", false, fmt.Errorf("invalid argument node (kind %v)", arg.Kind)
	}
}
