package turing

import (
	"strings"
	"testing"

	. "github.com/Comcast/fsmgrader/util/testutil"
)

// unary appends a 1 to a run of 1s.
var unary = Src(
	"// Append a 1.",
	"states scan",
	"symbols 1",
	"",
	"action scan 1 scan 1 r",
	"action scan - *halt* 1 -",
	"",
	"tape  two [1] 1",
	"result two 1 1 [1]",
	"tape empty",
	"result1 empty 1",
)

func TestLoadUnary(t *testing.T) {
	p, diags := Load(unary)
	if err := diags.Err(); err != nil {
		t.Fatal(err)
	}
	if p.Start != "scan" {
		t.Fatal(p.Start)
	}
	if !SameStrings(p.States, []string{Halt, Error, "scan"}) {
		t.Fatal(JS(p.States))
	}
	if !SameStrings(p.Symbols, []string{Blank, "1"}) {
		t.Fatal(JS(p.Symbols))
	}
	a, have := p.Action("scan", Blank)
	if !have || a.Next != Halt || a.Write != "1" || a.Dir != Stay || a.Line != 6 {
		t.Fatal(JS(a))
	}
	if len(p.Tapes) != 2 || p.Tapes[0].Head != 0 || len(p.Tapes[1].Cells) != 0 {
		t.Fatal(JS(p.Tapes))
	}
	if r := p.Results["two"]; r.Head != 2 || r.String() != "1 1 [1]" {
		t.Fatal(JS(r))
	}
	if r := p.Results["empty"]; r.Head != SingleCell || !SameStrings(r.Cells, []string{"1"}) {
		t.Fatal(JS(r))
	}
	if p.Selected != 0 || len(p.Solved) != 2 || p.Solved[0] {
		t.Fatal(JS(p.Solved))
	}
}

func TestLoadStartingState(t *testing.T) {
	p := MustLoad("states *halt* A B\nSTATES C A\n")
	if p.Start != "A" {
		t.Fatal(p.Start)
	}
	if !p.HasState("C") || p.HasState("c") {
		t.Fatal("state names are case-sensitive")
	}
	if p.Solved != nil {
		t.Fatal("no tapes means no solved flags")
	}
}

func TestLoadQuotedNames(t *testing.T) {
	p := MustLoad(`states "tape" go symbols "[x]" action "tape" "[x]" go - l`)
	if p.Start != "tape" {
		t.Fatal(p.Start)
	}
	if _, have := p.Action("tape", "[x]"); !have {
		t.Fatal(JS(p.Actions))
	}
}

func TestLoadCheckoff(t *testing.T) {
	p := MustLoad("states A\ncheckoff example.edu hw3 -42\n")
	c := p.Checkoff
	if c == nil || c.Server != "example.edu" || c.Assignment != "hw3" || c.Checksum != -42 || c.Line != 2 {
		t.Fatal(JS(c))
	}
}

func TestLoadErrorsContinue(t *testing.T) {
	src := Src(
		"states A B",
		"symbols 1",
		"action A 2 B 1 r",
		"action C 1 B 1 r",
		"action A 1 B 1",
		"action A 1 B 1 x",
		"action A - B 1 r",
		"action A - B 1 l",
		"checkoff srv hw1 abc",
		"tape t 1 2",
		"bogus",
		"action *halt* 1 A 1 r",
		"tape u [1] [1]",
	)
	p, diags := Load(src)
	if p != nil {
		t.Fatal("expected no program")
	}
	want := []struct {
		line int
		kind DiagnosticKind
		msg  string
	}{
		{3, SemanticError, "unknown symbol"},
		{4, SemanticError, "unknown state"},
		{5, SemanticError, "5 arguments"},
		{6, SyntaxError, "malformed direction"},
		{8, SemanticError, "duplicate action"},
		{9, SemanticError, "isn't an integer"},
		{10, SemanticError, "unknown symbol"},
		{11, SyntaxError, "expected a statement"},
		{12, SemanticError, "can't have actions"},
		{13, SyntaxError, "more than one head marker"},
	}
	if len(diags) != len(want) {
		t.Fatalf("got %d diagnostics:\n%s", len(diags), diags.Error())
	}
	for i, w := range want {
		d := diags[i]
		if d.Line != w.line || d.Kind != w.kind || !strings.Contains(d.Msg, w.msg) {
			t.Fatalf("%d: %s", i, d)
		}
	}
	if d := diags[0]; src[d.Offset:d.Offset+1] != "2" {
		t.Fatalf("offset %d", d.Offset)
	}
}

func TestLoadDuplicateFixtures(t *testing.T) {
	_, diags := Load("symbols 1\ntape a 1\ntape a -\nresult a -\nresult1 a 1\n")
	if len(diags) != 2 {
		t.Fatal(diags)
	}
	if diags[0].Line != 3 || diags[1].Line != 5 {
		t.Fatal(diags)
	}
}

func TestLoadResult1Arity(t *testing.T) {
	_, diags := Load("symbols 1\nresult1 a 1 1\n")
	if len(diags) != 1 || !strings.Contains(diags[0].Msg, "exactly one") {
		t.Fatal(diags)
	}
}

func TestUpdatableProgram(t *testing.T) {
	u := NewUpdatableProgram(nil)
	if diags := u.Reload(unary); diags != nil {
		t.Fatal(diags)
	}
	p := u.Program()
	if diags := u.Reload("states A\naction A 1 A 1 r\n"); diags == nil {
		t.Fatal("expected diagnostics")
	}
	if u.Program() != p {
		t.Fatal("bad source replaced the program")
	}
}
