package turing

import (
	"strings"
)

const (
	// Blank is the symbol of an empty tape cell.  It's always
	// declared.
	Blank = "-"

	// Halt is the state of a machine that finished.
	Halt = "*halt*"

	// Error is the state of a machine that had no action.
	Error = "*error*"
)

// Direction is a head movement.
type Direction int

const (
	Left  Direction = -1
	Stay  Direction = 0
	Right Direction = 1
)

// ParseDirection accepts "l", "r", or "-" (any case).
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "l":
		return Left, true
	case "r":
		return Right, true
	case "-":
		return Stay, true
	}
	return Stay, false
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "l"
	case Right:
		return "r"
	}
	return "-"
}

// Key identifies an Action.
type Key struct {
	State  string `json:"state"`
	Symbol string `json:"symbol"`
}

// Action is what to do when in a state reading a symbol.
type Action struct {
	Next  string    `json:"next"`
	Write string    `json:"write"`
	Dir   Direction `json:"dir"`

	// Line is where the action was declared.
	Line int `json:"line"`
}

// SingleCell is the Head of an expected result that only checks the
// cell under the head.
const SingleCell = -1

// Fixture is a named tape: a test input (from a "tape" statement) or
// an expected result (from a "result" or "result1" statement).
type Fixture struct {
	Name  string   `json:"name"`
	Cells []string `json:"cells"`

	// Head is the index of the head cell.  For a "result1"
	// fixture, Head is SingleCell and Cells has one element.
	Head int `json:"head"`

	Line int `json:"line"`
}

func (f *Fixture) String() string {
	if f.Head == SingleCell {
		return strings.Join(f.Cells, " ")
	}
	return Snapshot{Cells: f.Cells, Head: f.Head}.String()
}

// Checkoff holds the arguments of a "checkoff" statement.
type Checkoff struct {
	Server     string `json:"server"`
	Assignment string `json:"assignment"`
	Checksum   int32  `json:"checksum"`
	Line       int    `json:"line"`
}

// Program is a loaded Turing machine program.
//
// A Program is rebuilt by every Load and never partially modified,
// with the exception of Selected and Solved, which belong to the
// program's owner.
type Program struct {
	// States in order of declaration.  Halt and Error are always
	// present.
	States []string `json:"states"`

	// Symbols in order of declaration.  Blank is always present.
	Symbols []string `json:"symbols"`

	Actions map[Key]*Action `json:"-"`

	// Start is the starting state: the first state declared.
	Start string `json:"start"`

	// Tapes are the test inputs in order of declaration.
	Tapes []*Fixture `json:"tapes"`

	// Results are the expected results by name.
	Results map[string]*Fixture `json:"results"`

	// Checksum covers the tapes and results.
	Checksum int32 `json:"checksum"`

	Checkoff *Checkoff `json:"checkoff,omitempty"`

	// Selected is the index of the selected tape (0 if there are
	// any tapes).
	Selected int `json:"selected"`

	// Solved has one flag per tape.
	Solved []bool `json:"solved"`

	states  map[string]bool
	symbols map[string]bool
}

func newProgram() *Program {
	p := &Program{
		Actions: make(map[Key]*Action, 32),
		Results: make(map[string]*Fixture, 8),
		states:  make(map[string]bool, 8),
		symbols: make(map[string]bool, 8),
	}
	p.addState(Halt)
	p.addState(Error)
	p.addSymbol(Blank)
	return p
}

func (p *Program) addState(name string) bool {
	if p.states[name] {
		return false
	}
	p.states[name] = true
	p.States = append(p.States, name)
	return true
}

func (p *Program) addSymbol(name string) {
	if p.symbols[name] {
		return
	}
	p.symbols[name] = true
	p.Symbols = append(p.Symbols, name)
}

// HasState reports whether the state was declared.
func (p *Program) HasState(name string) bool {
	return p.states[name]
}

// HasSymbol reports whether the symbol was declared.
func (p *Program) HasSymbol(name string) bool {
	return p.symbols[name]
}

// Action returns the action (if any) for the state and symbol.
func (p *Program) Action(state, symbol string) (*Action, bool) {
	a, have := p.Actions[Key{state, symbol}]
	return a, have
}

// Tape returns the index of the named test tape.
func (p *Program) Tape(name string) (int, bool) {
	for i, f := range p.Tapes {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// AllSolved reports whether every tape is solved.  A program without
// tapes isn't.
func (p *Program) AllSolved() bool {
	if len(p.Solved) == 0 {
		return false
	}
	for _, s := range p.Solved {
		if !s {
			return false
		}
	}
	return true
}

// IsTerminal reports whether the state is Halt or Error.
func IsTerminal(state string) bool {
	return state == Halt || state == Error
}
