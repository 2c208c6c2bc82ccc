// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

package syntax

// Grammar realized by this file:
//
//	command_line := command ( ('|' | '&') command )*
//	command      := argument+ ( '<' argument )? ( '>' argument )?
//	argument     := piece+
//	piece        := quoted_string | '$' identifier | '$' '(' command_line ')'
//	              | '`' command_line '`' | bareword
//
// Parsing is driven by a single mutable cursor threaded through a set of
// mutually recursive functions, rather than a module-global error slot:
// every parse function returns (result, error) and the first error
// detected anywhere aborts the whole parse immediately.

type cursor struct {
	src          []byte
	pos          int
	substitution bool // set while inside a back-tick substitution
}

func (c *cursor) atEnd() bool { return c.pos >= len(c.src) }
func (c *cursor) cur() byte   { return c.src[c.pos] }

func (c *cursor) advance(n int) {
	c.pos += n
	if c.pos < 0 {
		c.pos = 0
	}
}

func (c *cursor) consume() byte {
	b := c.src[c.pos]
	c.pos++
	return b
}

func (c *cursor) skipWS() {
	for !c.atEnd() && isSpace(c.src[c.pos]) {
		c.pos++
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isIdentByte(b byte) bool {
	return isAlnum(b) || b == '_'
}

// Parser turns a byte buffer into a command tree. It keeps the position
// and kind of its most recent parse failure, for callers that want them
// without a type assertion on the returned error.
type Parser struct {
	err *ParseError
}

// NewParser returns a ready-to-use Parser.
func NewParser() *Parser { return &Parser{} }

// Parse turns src into a command tree. On failure it returns a nil Node
// and a non-nil *ParseError, also retrievable via ErrPos/ErrKind until
// the next call to Parse.
func (p *Parser) Parse(src []byte) (Node, error) {
	p.err = nil
	c := &cursor{src: src}
	node, err := parseCommandLine(c)
	if err != nil {
		p.err = err.(*ParseError)
		return nil, p.err
	}
	if c.pos < len(c.src) {
		p.err = &ParseError{
			Pos:  c.pos,
			Kind: InputLeft,
			Text: "Input left : " + string(c.src[c.pos:]),
		}
		return nil, p.err
	}
	return node, nil
}

// ErrPos returns the byte offset of the most recent parse failure, or -1
// if the last Parse call succeeded.
func (p *Parser) ErrPos() int {
	if p.err == nil {
		return -1
	}
	return p.err.Pos
}

// ErrKind returns the ErrorKind of the most recent parse failure.
func (p *Parser) ErrKind() ErrorKind {
	if p.err == nil {
		return UnknownSyntax
	}
	return p.err.Kind
}

// Parse is a convenience one-shot wrapper around (*Parser).Parse.
func Parse(src []byte) (Node, error) {
	return NewParser().Parse(src)
}

func parseCommandLine(c *cursor) (Node, error) {
	var root Node
	for !c.atEnd() {
		cmd, err := parseCommand(c)
		if err != nil {
			return nil, err
		}
		if cmd == nil {
			break
		}
		root = addSubcommand(root, cmd)
	}
	return root, nil
}

// addSubcommand folds cmd into root, turning root into a Pipeline as
// soon as a second stage appears. The pipeline's background flag always
// tracks the most recently added stage's, so that a trailing '&' makes
// the whole chain background.
func addSubcommand(root Node, cmd *SingleCommand) Node {
	if root == nil {
		return cmd
	}
	pl, ok := root.(*Pipeline)
	if !ok {
		pl = &Pipeline{Stages: []*SingleCommand{root.(*SingleCommand)}}
	}
	pl.Stages = append(pl.Stages, cmd)
	pl.Background = cmd.Background
	return pl
}

func parseCommand(c *cursor) (*SingleCommand, error) {
	var cmd *SingleCommand
	for !c.atEnd() {
		arg, err := parseArgument(c)
		if err != nil {
			return nil, err
		}
		// A redirection may come before the command's first argument,
		// as in "> out < in cmd".
		if arg == nil && (c.atEnd() || (c.cur() != '<' && c.cur() != '>')) {
			break
		}
		if cmd == nil {
			cmd = &SingleCommand{}
		}
		if arg != nil {
			cmd.Args = append(cmd.Args, arg)
		}

		endOfCommand := true
		for !c.atEnd() {
			ch := c.cur()
			switch {
			case ch == '|' || ch == '&':
				c.advance(1)
				if ch == '&' {
					cmd.Background = true
				}
			case ch == ')' || (ch == '`' && c.substitution):
				// Leave the delimiter for the enclosing substitution to consume.
			case ch == '<':
				if cmd.RedirIn == nil {
					c.advance(1)
					in, err := parseArgument(c)
					if err != nil {
						return nil, err
					}
					if in != nil {
						cmd.RedirIn = in
						continue
					}
				}
				return nil, &ParseError{Pos: c.pos, Kind: DuplicatedInput}
			case ch == '>':
				if cmd.RedirOut == nil {
					c.advance(1)
					out, err := parseArgument(c)
					if err != nil {
						return nil, err
					}
					if out != nil {
						cmd.RedirOut = out
						continue
					}
				}
				return nil, &ParseError{Pos: c.pos, Kind: DuplicatedOutput}
			default:
				endOfCommand = false
			}
			break
		}
		if endOfCommand {
			break
		}
	}
	return cmd, nil
}

func parseArgument(c *cursor) (*Argument, error) {
	var buf []byte
	var result *Argument
	c.skipWS()
	quoted := false

argLoop:
	for !c.atEnd() {
		ch := c.cur()
		switch {
		case ch == '\\':
			c.advance(1)
			if c.atEnd() {
				return nil, &ParseError{Pos: c.pos, Kind: UnmatchingDelimiters}
			}
			buf = append(buf, c.consume())

		case ch == '"':
			result = appendLiteral(result, buf, quoted)
			buf = buf[:0]
			quoted = !quoted
			c.advance(1)

		case ch == '$' || (ch == '`' && !quoted && !c.substitution):
			result = appendLiteral(result, buf, quoted)
			buf = buf[:0]

			isSub := ch == '`'
			if !isSub {
				c.advance(1)
				if c.atEnd() {
					return nil, &ParseError{Pos: c.pos, Kind: UnknownSyntax}
				}
				ch = c.cur()
				isSub = ch == '('
			} else {
				c.substitution = true
			}

			switch {
			case isSub:
				c.advance(1)
				sub, err := parseCommandLine(c)
				if err != nil {
					return nil, err
				}
				if sub == nil {
					return nil, &ParseError{Pos: c.pos, Kind: UnmatchingDelimiters}
				}
				arg := &Argument{Kind: ArgSubstitution, Command: sub}
				if quoted {
					arg.Flags |= Quoted
				}
				result = addPiece(result, arg)

				if c.atEnd() {
					return nil, &ParseError{Pos: c.pos, Kind: UnmatchingDelimiters}
				}
				switch pc := c.cur(); {
				case ch == '(' && pc == ')':
					c.advance(1)
				case ch == '`' && pc == '`':
					c.advance(1)
					c.substitution = false
				default:
					return nil, &ParseError{Pos: c.pos, Kind: UnmatchingDelimiters}
				}

			case isIdentByte(ch):
				start := c.pos
				for !c.atEnd() && isIdentByte(c.cur()) {
					c.advance(1)
				}
				arg := &Argument{Kind: ArgVariable, Literal: string(c.src[start:c.pos])}
				if quoted {
					arg.Flags |= Quoted
				}
				result = addPiece(result, arg)

			default:
				return nil, &ParseError{Pos: c.pos, Kind: UnknownSyntax}
			}

		case !quoted && (ch <= ' ' || ch == '|' || ch == '<' || ch == '>' || ch == '&' || ch == ')' || ch == '`'):
			c.skipWS()
			break argLoop

		case !quoted && ch == '#':
			c.pos = len(c.src)
			break argLoop

		default:
			buf = append(buf, c.consume())
		}
	}

	if quoted {
		return nil, &ParseError{Pos: c.pos, Kind: UnmatchingDelimiters}
	}
	result = appendLiteral(result, buf, quoted)
	return result, nil
}

// appendLiteral flushes a pending bareword/quoted-text buffer into a
// Literal piece and folds it onto result, unless the buffer is empty.
func appendLiteral(result *Argument, buf []byte, quoted bool) *Argument {
	if len(buf) == 0 {
		return result
	}
	arg := &Argument{Kind: ArgLiteral, Literal: string(buf)}
	if quoted {
		arg.Flags |= Quoted
	}
	return addPiece(result, arg)
}

// addPiece folds child onto parent, turning parent into an ArgConcat as
// soon as a second piece appears. The concatenation's flags are taken
// from the first piece, per the data model's "quoted flag derived from
// its first piece" rule.
func addPiece(parent, child *Argument) *Argument {
	if parent == nil {
		return child
	}
	if parent.Kind != ArgConcat {
		first := parent
		parent = &Argument{Kind: ArgConcat, Flags: first.Flags, Parts: []*Argument{first}}
	}
	parent.Parts = append(parent.Parts, child)
	return parent
}
