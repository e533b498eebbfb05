package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/turing"
)

// buffer is a strings.Builder that can be closed.
type buffer struct {
	strings.Builder
	closed bool
}

func (b *buffer) Close() error {
	b.closed = true
	return nil
}

func TestDot(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "g.dot")

	out, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}

	tab, err := core.ThreeFloorsTable()
	if err != nil {
		t.Fatal(err)
	}

	if err := Dot(tab, out, "F0", "F1"); err != nil {
		t.Fatal(err)
	}

	bs, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	s := string(bs)
	if !strings.Contains(s, `s0 -> s1 [ color="red" label = <01-/1000<BR ALIGN="LEFT"/>001/1000> ]`) {
		t.Fatal(s)
	}
}

func TestDotProgram(t *testing.T) {
	p := turing.MustLoad("states A\nsymbols <\naction A < *halt* - r\n")
	var b buffer
	if err := DotProgram(p, &b, "", ""); err != nil {
		t.Fatal(err)
	}
	s := b.String()
	if !b.closed || !strings.Contains(s, "&lt;/-,r") || strings.Contains(s, "*error*") {
		t.Fatal(s)
	}
}
