package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/turing"
)

// Dot makes a Graphviz dot file for the given table.
//
// Rows with the same state and next state share an edge whose label
// lists each row as "inputs/outputs".  The optional fromState and
// toState can be names of states during a transition.  If non-zero,
// then that edge and the toState will be red.
func Dot(t *core.Table, w io.WriteCloser, fromState, toState string) error {
	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	var (
		from = -1
		to   = -1
	)
	if id, have := t.StateId(fromState); have {
		from = id
	}
	if id, have := t.StateId(toState); have {
		to = id
	}

	hasRows := make(map[int]bool)
	for _, r := range t.Rows {
		hasRows[r.State] = true
	}

	for id, name := range t.States() {
		fillcolor := "#99ddc8"
		color := "black"
		style := "filled"
		if id == to {
			color = "red"
			fillcolor = "#f98b8b"
		}
		if name == t.Start() {
			style += ",bold"
		}
		if !hasRows[id] {
			style += ",dashed"
		}
		fmt.Fprintf(w, "  %s [style=\"%s\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			nodeId(id), style, color, fillcolor, html(name))
	}

	type edge struct {
		from, to int
	}
	var (
		order  []edge
		labels = make(map[edge][]string)
	)
	for _, r := range t.Rows {
		e := edge{r.State, r.Next}
		if _, have := labels[e]; !have {
			order = append(order, e)
		}
		labels[e] = append(labels[e], r.Pattern.String()+"/"+r.Outputs.String())
	}
	for _, e := range order {
		color := "black"
		if e.from == from && e.to == to {
			color = "red"
		}
		fmt.Fprintf(w, "  %s -> %s [ color=\"%s\" label = <%s> ]\n",
			nodeId(e.from), nodeId(e.to), color, strings.Join(labels[e], `<BR ALIGN="LEFT"/>`))
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// DotProgram makes a Graphviz dot file for a Turing machine program.
//
// Edges are labeled "read/write,dir".  The terminal states only
// appear if some action reaches them.
func DotProgram(p *turing.Program, w io.WriteCloser, fromState, toState string) error {
	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=LR,nodesep=0.3,ranksep=0.6]
  node [shape="circle" style="filled"]
  edge [fontsize = "12"]
`)

	ids := make(map[string]int, len(p.States))
	for i, s := range p.States {
		ids[s] = i
	}

	targets := make(map[string]bool)
	for _, a := range p.Actions {
		targets[a.Next] = true
	}

	for _, s := range p.States {
		if turing.IsTerminal(s) && !targets[s] {
			continue
		}
		fillcolor := "#99ddc8"
		color := "black"
		style := "filled"
		shape := "circle"
		switch s {
		case turing.Halt:
			shape = "doublecircle"
			fillcolor = "#52aa5e"
		case turing.Error:
			shape = "doublecircle"
			fillcolor = "#f98b8b"
		}
		if s == toState {
			color = "red"
		}
		if s == p.Start {
			style += ",bold"
		}
		fmt.Fprintf(w, "  %s [shape=\"%s\", style=\"%s\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			nodeId(ids[s]), shape, style, color, fillcolor, html(s))
	}

	for _, k := range SortedKeys(p) {
		a := p.Actions[k]
		color := "black"
		if k.State == fromState && a.Next == toState {
			color = "red"
		}
		label := fmt.Sprintf("%s/%s,%s", k.Symbol, a.Write, a.Dir)
		fmt.Fprintf(w, "  %s -> %s [ color=\"%s\" label = <%s> ]\n",
			nodeId(ids[k.State]), nodeId(ids[a.Next]), color, html(label))
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(t *core.Table, basename string, fromState, toState string) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(t, dotfile, fromState, toState); err != nil {
		return pngname, err
	}
	if err := exec.Command("dot", "-Tpng", "-Gstart=1", "-o", pngname, dotname).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func nodeId(id int) string {
	return fmt.Sprintf("s%d", id)
}

// html escapes text for a Graphviz HTML label.
func html(s string) string {
	s = strings.Replace(s, "&", "&amp;", -1)
	s = strings.Replace(s, "<", "&lt;", -1)
	s = strings.Replace(s, ">", "&gt;", -1)
	return s
}
