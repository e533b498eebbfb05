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
	"sort"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/match"
	"github.com/Comcast/fsmgrader/turing"
)

// MaxUncoveredExamples limits the uncovered inputs listed per state.
var MaxUncoveredExamples = 8

// Overlap is a pair of rows that can both match.
type Overlap struct {
	State string `json:"state"`

	// A and B are row indexes with A < B.  At run time, A wins.
	A, B         int `json:"-"`
	LineA, LineB int

	// Witness is an input that matches both rows.
	Witness string `json:"witness"`
}

// Uncovered is a state with inputs that no row matches.
type Uncovered struct {
	State    string   `json:"state"`
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

// TableAnalysis reports problems that can be found without running a
// table.
type TableAnalysis struct {
	Errors []string `json:"errors,omitempty"`

	Rows   int    `json:"rows"`
	States int    `json:"states"`
	Start  string `json:"start"`

	// Terminal states have no rows, so reaching one ends the run
	// with no match.
	Terminal []string `json:"terminal,omitempty"`

	// Orphans can't be reached from the start state.
	Orphans []string `json:"orphans,omitempty"`

	Overlaps  []*Overlap   `json:"overlaps,omitempty"`
	Uncovered []*Uncovered `json:"uncovered,omitempty"`
}

// Analyze examines a table.
//
// Finding uncovered inputs enumerates every input, so that part is
// skipped (with a note in Errors) for tables wider than
// match.MaxEnumerateWidth.
func Analyze(t *core.Table) (*TableAnalysis, error) {
	a := &TableAnalysis{
		Errors: make([]string, 0, 8),
		Rows:   len(t.Rows),
		States: len(t.States()),
		Start:  t.Start(),
	}

	byState := make(map[int][]int)
	edges := make(map[int]map[int]bool)
	for i, r := range t.Rows {
		byState[r.State] = append(byState[r.State], i)
		if edges[r.State] == nil {
			edges[r.State] = make(map[int]bool)
		}
		edges[r.State][r.Next] = true
	}

	terminal := make(map[string]bool)
	for id, name := range t.States() {
		if len(byState[id]) == 0 {
			terminal[name] = true
		}
	}
	a.Terminal = keysToStringSlice(terminal)

	if 0 < len(t.Rows) {
		start := t.Rows[0].State
		reached := map[int]bool{start: true}
		queue := []int{start}
		for 0 < len(queue) {
			id := queue[0]
			queue = queue[1:]
			for next := range edges[id] {
				if !reached[next] {
					reached[next] = true
					queue = append(queue, next)
				}
			}
		}
		orphans := make(map[string]bool)
		for id, name := range t.States() {
			if !reached[id] {
				orphans[name] = true
			}
		}
		a.Orphans = keysToStringSlice(orphans)
	}

	for id, name := range t.States() {
		rows := byState[id]
		for i, x := range rows {
			for _, y := range rows[i+1:] {
				w, ok := t.Rows[x].Pattern.Witness(t.Rows[y].Pattern)
				if !ok {
					continue
				}
				a.Overlaps = append(a.Overlaps, &Overlap{
					State:   name,
					A:       x,
					B:       y,
					LineA:   t.Rows[x].Line,
					LineB:   t.Rows[y].Line,
					Witness: w.String(),
				})
			}
		}
	}

	if match.MaxEnumerateWidth < t.NumInputs {
		a.Errors = append(a.Errors, fmt.Sprintf("%d inputs is too many to check coverage", t.NumInputs))
		return a, nil
	}

	for id, name := range t.States() {
		rows := byState[id]
		if len(rows) == 0 {
			continue
		}
		u := &Uncovered{
			State: name,
		}
		err := match.Enumerate(t.NumInputs, func(bs match.Bits) bool {
			for _, i := range rows {
				if t.Rows[i].Pattern.Matches(bs) {
					return true
				}
			}
			u.Count++
			if len(u.Examples) < MaxUncoveredExamples {
				u.Examples = append(u.Examples, bs.String())
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		if 0 < u.Count {
			a.Uncovered = append(a.Uncovered, u)
		}
	}

	return a, nil
}

// ProgramAnalysis reports problems that can be found without running
// a Turing machine program.
type ProgramAnalysis struct {
	States  int `json:"states"`
	Symbols int `json:"symbols"`
	Actions int `json:"actions"`

	// Orphans are states that no action reaches (other than the
	// start state).
	Orphans []string `json:"orphans,omitempty"`

	// Missing lists the (state, symbol) pairs of reachable states
	// that have no action.  Reading one of those goes to *error*.
	Missing []turing.Key `json:"missing,omitempty"`

	// Untested lists tapes without an expected result.
	Untested []string `json:"untested,omitempty"`

	// Unused lists results without a tape.
	Unused []string `json:"unused,omitempty"`
}

// AnalyzeProgram examines a Turing machine program.
func AnalyzeProgram(p *turing.Program) *ProgramAnalysis {
	a := &ProgramAnalysis{
		States:  len(p.States),
		Symbols: len(p.Symbols),
		Actions: len(p.Actions),
	}

	edges := make(map[string][]string)
	for k, act := range p.Actions {
		edges[k.State] = append(edges[k.State], act.Next)
	}

	reached := make(map[string]bool)
	if p.Start != "" {
		reached[p.Start] = true
		queue := []string{p.Start}
		for 0 < len(queue) {
			s := queue[0]
			queue = queue[1:]
			for _, next := range edges[s] {
				if !reached[next] {
					reached[next] = true
					queue = append(queue, next)
				}
			}
		}
	}

	orphans := make(map[string]bool)
	for _, s := range p.States {
		if !reached[s] && !turing.IsTerminal(s) {
			orphans[s] = true
		}
	}
	a.Orphans = keysToStringSlice(orphans)

	for _, s := range p.States {
		if !reached[s] || turing.IsTerminal(s) {
			continue
		}
		for _, sym := range p.Symbols {
			if _, have := p.Action(s, sym); !have {
				a.Missing = append(a.Missing, turing.Key{State: s, Symbol: sym})
			}
		}
	}

	tapes := make(map[string]bool)
	untested := make(map[string]bool)
	for _, f := range p.Tapes {
		tapes[f.Name] = true
		if _, have := p.Results[f.Name]; !have {
			untested[f.Name] = true
		}
	}
	a.Untested = keysToStringSlice(untested)

	unused := make(map[string]bool)
	for name := range p.Results {
		if !tapes[name] {
			unused[name] = true
		}
	}
	a.Unused = keysToStringSlice(unused)

	return a
}

// SortedKeys returns the program's action keys in the order of the
// declarations of their states and symbols.
func SortedKeys(p *turing.Program) []turing.Key {
	states := make(map[string]int, len(p.States))
	for i, s := range p.States {
		states[s] = i
	}
	symbols := make(map[string]int, len(p.Symbols))
	for i, s := range p.Symbols {
		symbols[s] = i
	}
	acc := make([]turing.Key, 0, len(p.Actions))
	for k := range p.Actions {
		acc = append(acc, k)
	}
	sort.Slice(acc, func(i, j int) bool {
		a, b := acc[i], acc[j]
		if a.State != b.State {
			return states[a.State] < states[b.State]
		}
		return symbols[a.Symbol] < symbols[b.Symbol]
	})
	return acc
}

// keysToStringSlice returns the map's keys sorted.
func keysToStringSlice(m map[string]bool) []string {
	var list []string
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}
