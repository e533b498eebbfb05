package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/fsmgrader/core"
)

func load(t *testing.T, dialect, src string) *Source {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "src")
	if err := os.WriteFile(filename, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	in := &Input{
		Filename:   filename,
		Dialect:    dialect,
		NumInputs:  3,
		NumOutputs: 5,
	}
	s, err := in.Load()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCanon(t *testing.T) {
	s := load(t, "table", "walk 0--|walk 10100\n")
	out := &bytes.Buffer{}
	if err := (&Canonicalizer{}).F(s, out); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "walk 0 - - | walk 1 0 1 0 0\n" {
		t.Fatalf("%q", got)
	}

	s = load(t, "turing", "states A\n")
	if err := (&Canonicalizer{}).F(s, out); err != ErrTablesOnly {
		t.Fatal(err)
	}
}

func TestCheck(t *testing.T) {
	out := &bytes.Buffer{}
	s := load(t, "turing", "states A\nsymbols 1\naction A 2 A 1 r\ncheckoff srv hw1 xyz\n")
	if err := (&Checker{}).F(s, out); err == nil {
		t.Fatal("expected problems")
	}
	if n := strings.Count(out.String(), "\n"); n != 2 {
		t.Fatalf("%d lines:\n%s", n, out)
	}

	out.Reset()
	s = load(t, "table", core.WallFollower)
	if err := (&Checker{}).F(s, out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "ok: 3 rows, 1 states\n" {
		t.Fatal(out.String())
	}
}

func TestAnalyzeAndMermaid(t *testing.T) {
	s := load(t, "table", core.WallFollower)

	out := &bytes.Buffer{}
	if err := (&Analyzer{}).F(s, out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "walk") {
		t.Fatal(out.String())
	}

	out.Reset()
	m := &Mermaider{Patterns: true}
	if err := m.F(s, out); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "graph TB") {
		t.Fatal(out.String())
	}
}

func TestUnknownDialect(t *testing.T) {
	in := &Input{Filename: "nope", Dialect: "verilog"}
	if _, err := in.Load(); err == nil {
		t.Fatal("expected an error")
	}
}
