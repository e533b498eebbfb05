package turing

import (
	"testing"
)

func TestTokenize(t *testing.T) {
	src := "states A /* two\nlines */ B // rest\n\"x y\" \"q\\\"\"//c\nsym"
	toks, diags := Tokenize(src)
	if 0 < len(diags) {
		t.Fatal(diags)
	}
	want := []struct {
		text   string
		line   int
		quoted bool
	}{
		{"states", 1, false},
		{"A", 1, false},
		{"B", 2, false},
		{"x y", 3, true},
		{`q"`, 3, true},
		{"sym", 4, false},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens", len(toks))
	}
	for i, w := range want {
		tok := toks[i]
		if tok.Text != w.text || tok.Line != w.line || tok.Quoted != w.quoted {
			t.Fatalf("%d: got %q line %d quoted %v", i, tok.Text, tok.Line, tok.Quoted)
		}
	}
	if toks[1].Offset != 7 {
		t.Fatalf("offset %d", toks[1].Offset)
	}
}

func TestTokenizeUnterminated(t *testing.T) {
	for _, src := range []string{"a /* b", "a \"b"} {
		_, diags := Tokenize(src)
		if len(diags) != 1 || diags[0].Offset != 2 || diags[0].Kind != SyntaxError {
			t.Fatalf("%q: %v", src, diags)
		}
	}
}

func TestIsKeyword(t *testing.T) {
	toks, _ := Tokenize(`ACTION Result1 "tape" tapes`)
	want := []bool{true, true, false, false}
	for i, tok := range toks {
		if IsKeyword(tok) != want[i] {
			t.Fatalf("%q", tok.Text)
		}
	}
}
