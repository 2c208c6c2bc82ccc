// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Inspect writes a structural dump of n to w, one indented line per
// node. It is used for debugging and for the "Argument evaluation
// failed" diagnostic, which is followed by a dump of the offending
// argument.
func Inspect(w io.Writer, n Node) {
	inspectNode(w, n, 0)
}

func pad(w io.Writer, indent int) {
	io.WriteString(w, strings.Repeat(" ", indent))
}

func inspectNode(w io.Writer, n Node, indent int) {
	switch v := n.(type) {
	case nil:
		return
	case *SingleCommand:
		fmt.Fprintf(w, "%*sargs = {\n", indent, "")
		for _, a := range v.Args {
			a.Inspect(w, indent+1)
		}
		pad(w, indent)
		fmt.Fprintln(w, "}")
		if v.RedirIn != nil {
			pad(w, indent)
			fmt.Fprintln(w, "<")
			v.RedirIn.Inspect(w, indent+1)
		}
		if v.RedirOut != nil {
			pad(w, indent)
			fmt.Fprintln(w, ">")
			v.RedirOut.Inspect(w, indent+1)
		}
		if v.Background {
			pad(w, indent)
			fmt.Fprintln(w, "background")
		}
	case *Pipeline:
		fmt.Fprintf(w, "%*spipeline = {\n", indent, "")
		for _, s := range v.Stages {
			inspectNode(w, s, indent+1)
		}
		pad(w, indent)
		fmt.Fprintln(w, "}")
		if v.Background {
			pad(w, indent)
			fmt.Fprintln(w, "background")
		}
	}
}

// Inspect writes a structural dump of a to w, starting at the given
// indentation depth.
func (a *Argument) Inspect(w io.Writer, indent int) {
	if a == nil {
		return
	}
	mark := ' '
	if a.Quoted() {
		mark = '*'
	}
	switch a.Kind {
	case ArgLiteral:
		fmt.Fprintf(w, "%*s%cSTRING = %q\n", indent, "", mark, a.Literal)
	case ArgVariable:
		fmt.Fprintf(w, "%*s%cVARIABLE = %q\n", indent, "", mark, a.Literal)
	case ArgSubstitution:
		fmt.Fprintf(w, "%*s%cCOMMAND = {\n", indent, "", mark)
		inspectNode(w, a.Command, indent+1)
		pad(w, indent)
		fmt.Fprintln(w, "}")
	case ArgConcat:
		fmt.Fprintf(w, "%*s%cCAT = {\n", indent, "", mark)
		for _, p := range a.Parts {
			p.Inspect(w, indent+1)
		}
		pad(w, indent)
		fmt.Fprintln(w, "}")
	default:
		fmt.Fprintf(w, "%*s??? [%v]\n", indent, "", a.Kind)
	}
}
