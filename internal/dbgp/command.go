package dbgp

import (
	"fmt"
	"strings"
)

// VerbBreakpointSet is the only command whose arguments are rewritten.
const VerbBreakpointSet = "breakpoint_set"

// FlagFile carries the file URI of a breakpoint.
const FlagFile = "f"

// Arg is one `-flag value` pair of a command.
type Arg struct {
	Flag  string
	Value string
	// raw is the value as it appeared on the wire, quotes included. It is
	// cleared when Value is replaced.
	raw    string
	hasRaw bool
}

// Command is a parsed IDE command line.
type Command struct {
	Verb string
	Args []Arg
	// Data is the base64 payload following `--`, if any.
	Data string
}

// ParseCommand tokenizes a command line. Values may be double quoted, with
// backslash escaping a quote or a backslash inside the quotes.
func ParseCommand(line string) (*Command, error) {
	s := &scanner{src: line}
	s.skipSpace()
	verb := s.word()
	if verb == "" {
		return nil, fmt.Errorf("%w: missing command name", ErrMalformedCommand)
	}
	cmd := &Command{Verb: verb}

	for {
		s.skipSpace()
		if s.done() {
			return cmd, nil
		}
		tok := s.word()
		if tok == "--" {
			s.skipSpace()
			cmd.Data = strings.TrimSpace(s.rest())
			return cmd, nil
		}
		if len(tok) < 2 || tok[0] != '-' {
			return nil, fmt.Errorf("%w: unexpected token %q", ErrMalformedCommand, tok)
		}
		s.skipSpace()
		raw, value, err := s.value()
		if err != nil {
			return nil, err
		}
		cmd.Args = append(cmd.Args, Arg{Flag: tok[1:], Value: value, raw: raw, hasRaw: true})
	}
}

// Arg returns the value of flag.
func (c *Command) Arg(flag string) (string, bool) {
	for _, a := range c.Args {
		if a.Flag == flag {
			return a.Value, true
		}
	}
	return "", false
}

// SetArg replaces the value of flag, appending the flag if it is absent.
func (c *Command) SetArg(flag, value string) {
	for i := range c.Args {
		if c.Args[i].Flag == flag {
			c.Args[i] = Arg{Flag: flag, Value: value}
			return
		}
	}
	c.Args = append(c.Args, Arg{Flag: flag, Value: value})
}

// Clone returns a deep copy of c.
func (c *Command) Clone() *Command {
	out := *c
	out.Args = append([]Arg(nil), c.Args...)
	return &out
}

// String serializes the command. Untouched values keep their original
// spelling; replaced ones are quoted only when they need it.
func (c *Command) String() string {
	var b strings.Builder
	b.WriteString(c.Verb)
	for _, a := range c.Args {
		text := a.raw
		if !a.hasRaw {
			text = quote(a.Value)
		}
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace("-" + a.Flag + " " + text))
	}
	if c.Data != "" {
		b.WriteString(" -- ")
		b.WriteString(c.Data)
	}
	return b.String()
}

func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\r\n\"\\") {
		return v
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
}

// PathExpander maps one breakpoint file to every file it must be set on.
type PathExpander interface {
	Expand(path string) []string
}

// ExpandCommand returns the commands to send to the engine for one IDE
// command. Only breakpoint_set with a file argument can fan out; anything
// else, including lines that fail to parse, is returned untouched.
func ExpandCommand(line string, exp PathExpander) []string {
	if verbOf(line) != VerbBreakpointSet {
		return []string{line}
	}
	cmd, err := ParseCommand(line)
	if err != nil {
		return []string{line}
	}
	file, ok := cmd.Arg(FlagFile)
	if !ok {
		return []string{line}
	}

	paths := exp.Expand(file)
	if len(paths) == 1 && paths[0] == file {
		return []string{line}
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		c := cmd.Clone()
		c.SetArg(FlagFile, p)
		out = append(out, c.String())
	}
	return out
}

func verbOf(line string) string {
	line = strings.TrimLeft(line, " \t\r\n")
	if i := strings.IndexAny(line, " \t\r\n"); i >= 0 {
		return line[:i]
	}
	return line
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

func (s *scanner) rest() string { return s.src[s.pos:] }

func (s *scanner) skipSpace() {
	for !s.done() && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func (s *scanner) word() string {
	start := s.pos
	for !s.done() && !isSpace(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// value reads a bare or quoted value, returning its wire text and its
// unquoted form. A flag at the end of the line has an empty value.
func (s *scanner) value() (raw, value string, err error) {
	if s.done() {
		return "", "", nil
	}
	if s.src[s.pos] != '"' {
		w := s.word()
		return w, w, nil
	}

	start := s.pos
	s.pos++
	var b strings.Builder
	for !s.done() {
		ch := s.src[s.pos]
		switch {
		case ch == '\\' && s.pos+1 < len(s.src) && (s.src[s.pos+1] == '"' || s.src[s.pos+1] == '\\'):
			b.WriteByte(s.src[s.pos+1])
			s.pos += 2
		case ch == '"':
			s.pos++
			return s.src[start:s.pos], b.String(), nil
		default:
			b.WriteByte(ch)
			s.pos++
		}
	}
	return "", "", fmt.Errorf("%w: unterminated quoted value", ErrMalformedCommand)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}
