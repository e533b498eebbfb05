/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

package core

import (
	"strconv"
	"strings"

	"github.com/Comcast/fsmgrader/match"
)

// Row is one line of a truth table:
//
//	state in1 in2 ... inN | next out1 ... outM
//
// A Row is immutable once loaded.
type Row struct {
	// State is the interned id of the state this row applies to.
	State int `json:"state"`

	// Pattern is matched against the inputs.  It can contain
	// don't-care cells.
	Pattern match.Pattern `json:"pattern"`

	// Next is the interned id of the next state.
	Next int `json:"next"`

	// Outputs are the output bits.  No don't-cares here.
	Outputs match.Bits `json:"outputs"`

	// Start and End give the source span (byte offsets) of the
	// row.
	Start int `json:"start"`
	End   int `json:"end"`

	// Line is the 1-based source line number.
	Line int `json:"line"`
}

// Table is a loaded truth table.
//
// Row order is match priority order.  The input and output widths
// are fixed by the table's owner (the environment).
//
// A Table is never modified after Load returns it.  To change a
// table, Load a new one.
type Table struct {
	NumInputs  int    `json:"inputs"`
	NumOutputs int    `json:"outputs"`
	Rows       []*Row `json:"rows"`

	// Doc is the text of the comment lines before the first row.
	Doc string `json:"doc,omitempty"`

	// names maps state ids to the name as first written.
	names []string

	// ids maps case-folded state names to ids.
	ids map[string]int
}

func newTable(ninputs, noutputs int) *Table {
	return &Table{
		NumInputs:  ninputs,
		NumOutputs: noutputs,
		Rows:       make([]*Row, 0, 32),
		names:      make([]string, 0, 8),
		ids:        make(map[string]int, 8),
	}
}

// MaxWidth is the most inputs or outputs a Table can have.
const MaxWidth = 64

// Load parses the source into a Table.
//
// Parsing stops at the first bad line, and the returned error is a
// *SyntaxError.  There is no partial table in that case.  Widths
// outside 0..MaxWidth give a *BadWidth.
func Load(src string, ninputs, noutputs int) (*Table, error) {
	if ninputs < 0 || MaxWidth < ninputs {
		return nil, &BadWidth{What: "inputs", Width: ninputs}
	}
	if noutputs < 0 || MaxWidth < noutputs {
		return nil, &BadWidth{What: "outputs", Width: noutputs}
	}
	t := newTable(ninputs, noutputs)
	var doc []string

	for _, l := range Lines(src) {
		if l.Skippable() {
			if len(t.Rows) == 0 {
				if s := strings.TrimLeft(l.Text, " \t\r"); s != "" {
					doc = append(doc, strings.TrimPrefix(strings.TrimRight(s[1:], "\r"), " "))
				}
			}
			continue
		}
		row, err := t.parseRow(l)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}

	t.Doc = strings.Join(doc, "\n")

	return t, nil
}

// MustLoad is Load that panics on error.
func MustLoad(src string, ninputs, noutputs int) *Table {
	t, err := Load(src, ninputs, noutputs)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) parseRow(l Line) (*Row, error) {
	c := &cursor{line: l}

	fail := func(at int, msg string) error {
		return &SyntaxError{
			Offset: at,
			Line:   l.Num,
			Msg:    msg,
		}
	}

	here := func() int {
		c.skipSpace()
		return c.offset()
	}

	at := here()
	state, ok := c.ident()
	if !ok {
		return nil, fail(at, "expected a state name")
	}

	pattern := make(match.Pattern, t.NumInputs)
	for i := range pattern {
		at = here()
		b, ok := c.peek()
		if !ok || b == '|' {
			return nil, fail(at, "expected "+strconv.Itoa(t.NumInputs)+" inputs but found "+strconv.Itoa(i))
		}
		cell, ok := match.ParseCell(b, true)
		if !ok {
			return nil, fail(at, "bad input '"+string(b)+"' (expected 0, 1, or -)")
		}
		c.char()
		pattern[i] = cell
	}

	at = here()
	if b, ok := c.peek(); !ok || b != '|' {
		return nil, fail(at, "expected '|' after "+strconv.Itoa(t.NumInputs)+" inputs")
	}
	c.char()

	at = here()
	next, ok := c.ident()
	if !ok {
		return nil, fail(at, "expected a next state name")
	}

	outputs := make(match.Bits, t.NumOutputs)
	for i := range outputs {
		at = here()
		b, ok := c.peek()
		if !ok {
			return nil, fail(at, "expected "+strconv.Itoa(t.NumOutputs)+" outputs but found "+strconv.Itoa(i))
		}
		cell, ok := match.ParseCell(b, false)
		if !ok {
			return nil, fail(at, "bad output '"+string(b)+"' (expected 0 or 1)")
		}
		c.char()
		outputs[i] = cell == match.One
	}

	at = here()
	if !c.eol() {
		return nil, fail(at, "unexpected text at end of line")
	}

	return &Row{
		State:   t.intern(state),
		Pattern: pattern,
		Next:    t.intern(next),
		Outputs: outputs,
		Start:   l.Start,
		End:     l.End,
		Line:    l.Num,
	}, nil
}

// Fold is the canonical form of a state name.
func Fold(name string) string {
	return strings.ToLower(name)
}

func (t *Table) intern(name string) int {
	k := Fold(name)
	if id, have := t.ids[k]; have {
		return id
	}
	id := len(t.names)
	t.names = append(t.names, name)
	t.ids[k] = id
	return id
}

// Table makes a Table a Tabler.
func (t *Table) Table() *Table {
	return t
}

// StateId returns the interned id for the given state name.
//
// State names are compared case-insensitively.
func (t *Table) StateId(name string) (int, bool) {
	id, have := t.ids[Fold(name)]
	return id, have
}

// StateName returns the name (as first written) for the given id.
func (t *Table) StateName(id int) string {
	if id < 0 || len(t.names) <= id {
		return ""
	}
	return t.names[id]
}

// States returns all state names in order of first appearance,
// including states that only appear as next states.
func (t *Table) States() []string {
	acc := make([]string, len(t.names))
	copy(acc, t.names)
	return acc
}

// Start returns the name of the state of the first row, which is
// the initial state for a run.
func (t *Table) Start() string {
	if len(t.Rows) == 0 {
		return ""
	}
	return t.StateName(t.Rows[0].State)
}

// Outputs returns the output bits for the given row.
func (t *Table) Outputs(row int) match.Bits {
	return t.Rows[row].Outputs
}

// NextState returns the name of the next state for the given row.
func (t *Table) NextState(row int) string {
	return t.StateName(t.Rows[row].Next)
}

// RowString renders the row in source syntax.
func (t *Table) RowString(i int) string {
	r := t.Rows[i]
	return t.StateName(r.State) + " " + r.Pattern.Spaced() + " | " +
		t.StateName(r.Next) + " " + r.Outputs.Spaced()
}

// String renders the whole table in source syntax.
//
// Loading the result gives an equivalent table.
func (t *Table) String() string {
	var b strings.Builder
	if t.Doc != "" {
		for _, line := range strings.Split(t.Doc, "\n") {
			b.WriteString("; " + line + "\n")
		}
		b.WriteString("\n")
	}
	for i := range t.Rows {
		b.WriteString(t.RowString(i))
		b.WriteByte('\n')
	}
	return b.String()
}
