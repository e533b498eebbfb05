package turing

import (
	"fmt"
	"strconv"
	"strings"
)

var keywords = map[string]bool{
	"states":   true,
	"symbols":  true,
	"tape":     true,
	"result":   true,
	"result1":  true,
	"action":   true,
	"checkoff": true,
}

// IsKeyword reports whether the token starts a statement.  Keywords
// are case-insensitive, and a quoted token is never a keyword.
func IsKeyword(t *Token) bool {
	return !t.Quoted && keywords[strings.ToLower(t.Text)]
}

type parser struct {
	p        *Program
	diags    Diagnostics
	checksum int32
}

func (ps *parser) errorf(kind DiagnosticKind, t *Token, format string, args ...interface{}) {
	ps.diags = append(ps.diags, &Diagnostic{
		Kind:   kind,
		Offset: t.Offset,
		Line:   t.Line,
		Msg:    fmt.Sprintf(format, args...),
	})
}

// Load parses a Turing machine program.
//
// Unlike truth tables, loading continues after a problem so that
// every problem can be reported.  If there are any Diagnostics, the
// load failed and the returned Program is nil.
//
// Statements (keywords are case-insensitive; names are not):
//
//	states  NAME...
//	symbols NAME...
//	tape    NAME SYMBOL...      (one SYMBOL can be [bracketed] to mark the head)
//	result  NAME SYMBOL...
//	result1 NAME SYMBOL
//	action  STATE SYMBOL NEXT WRITE DIR   (DIR is l, r, or -)
//	checkoff SERVER ASSIGNMENT CHECKSUM
func Load(src string) (*Program, Diagnostics) {
	toks, diags := Tokenize(src)
	ps := &parser{
		p:        newProgram(),
		diags:    diags,
		checksum: ChecksumSeed,
	}

	for i := 0; i < len(toks); {
		t := toks[i]
		j := i + 1
		for j < len(toks) && !IsKeyword(toks[j]) {
			j++
		}
		if IsKeyword(t) {
			ps.statement(strings.ToLower(t.Text), t, toks[i+1:j])
		} else {
			ps.errorf(SyntaxError, t, "expected a statement but found %q", t.Text)
		}
		i = j
	}

	p := ps.p
	p.Checksum = ps.checksum
	if 0 < len(p.Tapes) {
		p.Selected = 0
		p.Solved = make([]bool, len(p.Tapes))
	}

	if 0 < len(ps.diags) {
		return nil, ps.diags
	}
	return p, nil
}

// MustLoad is Load that panics on any Diagnostics.
func MustLoad(src string) *Program {
	p, diags := Load(src)
	if err := diags.Err(); err != nil {
		panic(err)
	}
	return p
}

func (ps *parser) statement(keyword string, kw *Token, args []*Token) {
	switch keyword {
	case "states":
		ps.states(kw, args)
	case "symbols":
		ps.symbols(kw, args)
	case "tape":
		if f, ok := ps.fixture(kw, args, false); ok {
			if _, dup := ps.p.Tape(f.Name); dup {
				ps.errorf(SemanticError, args[0], "duplicate tape %q", f.Name)
				return
			}
			ps.p.Tapes = append(ps.p.Tapes, f)
			ps.checksum += ContentHash(f.Cells, f.Head)
		}
	case "result", "result1":
		if f, ok := ps.fixture(kw, args, keyword == "result1"); ok {
			if _, dup := ps.p.Results[f.Name]; dup {
				ps.errorf(SemanticError, args[0], "duplicate result %q", f.Name)
				return
			}
			ps.p.Results[f.Name] = f
			ps.checksum += 31 * ContentHash(f.Cells, f.Head)
		}
	case "action":
		ps.action(kw, args)
	case "checkoff":
		ps.checkoff(kw, args)
	}
}

func (ps *parser) states(kw *Token, args []*Token) {
	if len(args) == 0 {
		ps.errorf(SyntaxError, kw, "states needs at least one name")
		return
	}
	for _, t := range args {
		if ps.p.addState(t.Text) && ps.p.Start == "" {
			ps.p.Start = t.Text
		}
	}
}

func (ps *parser) symbols(kw *Token, args []*Token) {
	if len(args) == 0 {
		ps.errorf(SyntaxError, kw, "symbols needs at least one name")
		return
	}
	for _, t := range args {
		if !t.Quoted && strings.ContainsAny(t.Text, "[]") {
			ps.errorf(SyntaxError, t, "symbol %q can't contain brackets (quote it)", t.Text)
			continue
		}
		ps.p.addSymbol(t.Text)
	}
}

// symbol checks that the token names a declared symbol.
func (ps *parser) symbol(t *Token, name string) bool {
	if !ps.p.HasSymbol(name) {
		ps.errorf(SemanticError, t, "unknown symbol %q", name)
		return false
	}
	return true
}

func (ps *parser) state(t *Token) bool {
	if !ps.p.HasState(t.Text) {
		ps.errorf(SemanticError, t, "unknown state %q", t.Text)
		return false
	}
	return true
}

// fixture parses "NAME SYMBOL..." for tape, result, and result1.
func (ps *parser) fixture(kw *Token, args []*Token, single bool) (*Fixture, bool) {
	if len(args) == 0 {
		ps.errorf(SyntaxError, kw, "%s needs a name", strings.ToLower(kw.Text))
		return nil, false
	}
	f := &Fixture{
		Name:  args[0].Text,
		Cells: make([]string, 0, len(args)-1),
		Line:  kw.Line,
	}

	if single {
		if len(args) != 2 {
			ps.errorf(SemanticError, kw, "result1 needs a name and exactly one symbol")
			return nil, false
		}
		if !ps.symbol(args[1], args[1].Text) {
			return nil, false
		}
		f.Cells = append(f.Cells, args[1].Text)
		f.Head = SingleCell
		return f, true
	}

	ok, marked := true, false
	for i, t := range args[1:] {
		name := t.Text
		if !t.Quoted && strings.HasPrefix(name, "[") {
			if len(name) < 3 || !strings.HasSuffix(name, "]") {
				ps.errorf(SyntaxError, t, "malformed head marker %q", name)
				ok = false
				continue
			}
			if marked {
				ps.errorf(SyntaxError, t, "more than one head marker")
				ok = false
			}
			marked = true
			name = name[1 : len(name)-1]
			f.Head = i
		}
		if !ps.symbol(t, name) {
			ok = false
		}
		f.Cells = append(f.Cells, name)
	}
	return f, ok
}

func (ps *parser) action(kw *Token, args []*Token) {
	if len(args) != 5 {
		ps.errorf(SemanticError, kw, "action needs 5 arguments (state symbol next write direction) but has %d", len(args))
		return
	}
	var (
		state, symbol, next, write, dir = args[0], args[1], args[2], args[3], args[4]
		ok                              = true
	)
	if IsTerminal(state.Text) {
		ps.errorf(SemanticError, state, "%s can't have actions", state.Text)
		ok = false
	} else if !ps.state(state) {
		ok = false
	}
	if !ps.symbol(symbol, symbol.Text) {
		ok = false
	}
	if !ps.state(next) {
		ok = false
	}
	if !ps.symbol(write, write.Text) {
		ok = false
	}
	d, good := ParseDirection(dir.Text)
	if !good || dir.Quoted {
		ps.errorf(SyntaxError, dir, "malformed direction %q (expected l, r, or -)", dir.Text)
		ok = false
	}
	if !ok {
		return
	}

	k := Key{state.Text, symbol.Text}
	if prev, dup := ps.p.Actions[k]; dup {
		ps.errorf(SemanticError, kw, "duplicate action for state %q and symbol %q (first on line %d)",
			k.State, k.Symbol, prev.Line)
		return
	}
	ps.p.Actions[k] = &Action{
		Next:  next.Text,
		Write: write.Text,
		Dir:   d,
		Line:  kw.Line,
	}
}

func (ps *parser) checkoff(kw *Token, args []*Token) {
	if len(args) != 3 {
		ps.errorf(SemanticError, kw, "checkoff needs 3 arguments (server assignment checksum) but has %d", len(args))
		return
	}
	n, err := strconv.ParseInt(args[2].Text, 10, 32)
	if err != nil {
		ps.errorf(SemanticError, args[2], "checksum %q isn't an integer", args[2].Text)
		return
	}
	if ps.p.Checkoff != nil {
		ps.errorf(SemanticError, kw, "duplicate checkoff (first on line %d)", ps.p.Checkoff.Line)
		return
	}
	ps.p.Checkoff = &Checkoff{
		Server:     args[0].Text,
		Assignment: args[1].Text,
		Checksum:   int32(n),
		Line:       kw.Line,
	}
}
