package tools

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/envs/maze"
	"github.com/Comcast/fsmgrader/turing"
)

var corridor = []byte(`
name: corridor
heading: e
rows:
  - "#####"
  - "#S..#"
  - "###.#"
  - "#G..#"
  - "#####"
`)

func TestRenderTableHTML(t *testing.T) {
	tab, err := core.WallFollowerTable()
	if err != nil {
		t.Fatal(err)
	}
	out := &bytes.Buffer{}
	if err = RenderTableHTML(tab, out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	for _, want := range []string{
		`<div class="tableDoc doc"><p>A left-hand wall follower.`,
		`<span id="walk" class="stateName">walk</span>`,
		`<code>1 1 -</code>`,
		`<code>0 1 0 0 0</code>`,
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %s in\n%s", want, s)
		}
	}
}

func TestRenderWalkHTML(t *testing.T) {
	w, err := maze.ParseWorld(corridor)
	if err != nil {
		t.Fatal(err)
	}
	ant, err := maze.NewAnt(w)
	if err != nil {
		t.Fatal(err)
	}
	tab, err := core.WallFollowerTable()
	if err != nil {
		t.Fatal(err)
	}
	walked, err := core.NewMachine(tab).Walk(context.Background(), ant, &core.Control{Limit: 50})
	if err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	if err = RenderWalkHTML(walked, out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.Contains(s, "GoalReached</span> after 8 steps") {
		t.Fatal(s)
	}
	if n := strings.Count(s, `<tr class="stride">`); n != 8 {
		t.Fatal(n)
	}
}

func TestRenderReportHTML(t *testing.T) {
	p := turing.MustLoad(unaryProgram + "tape bad 1\nresult bad 1\n")
	r, err := turing.Grade(context.Background(), p, 0)
	if err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	if err = RenderReportHTML(r, out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.Contains(s, `<div class="report unsolved">`) {
		t.Fatal(s)
	}
	if !strings.Contains(s, `<tr class="tape solved"><td>two</td>`) {
		t.Fatal(s)
	}
	if !strings.Contains(s, `<tr class="tape failed"><td>bad</td>`) {
		t.Fatal(s)
	}
}

func TestReadAndRenderTablePage(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "ant.tt")
	if err := os.WriteFile(filename, []byte(core.WallFollower), 0644); err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	if err := ReadAndRenderTablePage(filename, 3, 5, []string{"report.css"}, out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "<!DOCTYPE html>") || !strings.Contains(s, `href="report.css"`) {
		t.Fatal(s)
	}

	if err := ReadAndRenderTablePage(filename, 2, 5, nil, out); err == nil {
		t.Fatal("expected an error for the wrong width")
	}
}
