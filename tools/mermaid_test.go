package tools

import (
	"strings"
	"testing"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/turing"
)

func TestMermaid(t *testing.T) {
	tab := core.MustLoad("a 0 | b 1\na 1 | a 0\n", 1, 1)
	var b buffer
	if err := Mermaid(tab, &b, nil, "b"); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"graph TB",
		`  n0("a")`,
		`  n1["b"]`,
		"  style n1 fill:#bcf2db",
		"  style n1 fill:#f98b8b",
		`  n0 -- "0/1" --> n1`,
		`  n0 -- "1/0" --> n0`,
		"",
		"",
	}, "\n")
	if got := b.String(); got != want {
		t.Fatal(got)
	}
}

func TestMermaidProgram(t *testing.T) {
	var b buffer
	if err := MermaidProgram(turing.MustLoad(unaryProgram), &b, nil, ""); err != nil {
		t.Fatal(err)
	}
	s := b.String()
	if !strings.Contains(s, `n2 -- "1/1,r" --> n2`) || !strings.Contains(s, `n2 -- "-/1,-" --> n0`) {
		t.Fatal(s)
	}
}
