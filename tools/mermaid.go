/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package tools

import (
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/turing"
)

type MermaidOpts struct {
	// ShowPatterns will result in an edge label listing the rows
	// (or actions) behind the edge.
	ShowPatterns bool `json:"showPatterns"`

	// CurrentFill is the fill color for the current state (if
	// any).
	CurrentFill string `json:"currentFill,omitempty"`

	// TerminalFill is the fill color for states with no way out.
	TerminalFill string `json:"terminalFill,omitempty"`
}

var DefaultMermaidOpts = &MermaidOpts{
	ShowPatterns: true,
	CurrentFill:  "#f98b8b",
	TerminalFill: "#bcf2db",
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given table.
func Mermaid(t *core.Table, w io.WriteCloser, opts *MermaidOpts, current string) error {
	if opts == nil {
		opts = DefaultMermaidOpts
	}

	fmt.Fprintf(w, "graph TB\n")

	hasRows := make(map[int]bool)
	for _, r := range t.Rows {
		hasRows[r.State] = true
	}

	cur, haveCur := t.StateId(current)
	for id, name := range t.States() {
		nid := fmt.Sprintf("n%d", id)
		if hasRows[id] {
			fmt.Fprintf(w, "  %s(\"%s\")\n", nid, name)
		} else {
			fmt.Fprintf(w, "  %s[\"%s\"]\n", nid, name)
			if opts.TerminalFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.TerminalFill)
			}
		}
		if haveCur && id == cur && opts.CurrentFill != "" {
			fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.CurrentFill)
		}
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
		label := ""
		if opts.ShowPatterns {
			label = fmt.Sprintf(`-- "%s"`, strings.Join(labels[e], "<br/>"))
		}
		fmt.Fprintf(w, "  n%d %s --> n%d\n", e.from, label, e.to)
	}

	fmt.Fprintf(w, "\n")

	return w.Close()
}

// MermaidProgram makes a Mermaid input file for a Turing machine
// program.
func MermaidProgram(p *turing.Program, w io.WriteCloser, opts *MermaidOpts, current string) error {
	if opts == nil {
		opts = DefaultMermaidOpts
	}

	fmt.Fprintf(w, "graph LR\n")

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
		nid := fmt.Sprintf("n%d", ids[s])
		if turing.IsTerminal(s) {
			fmt.Fprintf(w, "  %s((\"%s\"))\n", nid, s)
			if opts.TerminalFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.TerminalFill)
			}
		} else {
			fmt.Fprintf(w, "  %s(\"%s\")\n", nid, s)
		}
		if s == current && opts.CurrentFill != "" {
			fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.CurrentFill)
		}
	}

	for _, k := range SortedKeys(p) {
		a := p.Actions[k]
		label := ""
		if opts.ShowPatterns {
			label = fmt.Sprintf(`-- "%s/%s,%s"`, strings.Replace(k.Symbol, `"`, "'", -1),
				strings.Replace(a.Write, `"`, "'", -1), a.Dir)
		}
		fmt.Fprintf(w, "  n%d %s --> n%d\n", ids[k.State], label, ids[a.Next])
	}

	fmt.Fprintf(w, "\n")

	return w.Close()
}
