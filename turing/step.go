package turing

import (
	"context"
	"errors"
	"fmt"
)

// Outcome is the result of a Step.
type Outcome int

const (
	Continued Outcome = iota
	Halted
	ErrorNoAction
)

func (o Outcome) String() string {
	switch o {
	case Continued:
		return "continued"
	case Halted:
		return "halted"
	case ErrorNoAction:
		return "no action"
	}
	return fmt.Sprintf("outcome %d", int(o))
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

func (o *Outcome) UnmarshalJSON(bs []byte) error {
	for _, x := range []Outcome{Continued, Halted, ErrorNoAction} {
		if string(bs) == `"`+x.String()+`"` {
			*o = x
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %s", bs)
}

var (
	// ErrLimit is returned by Run when the machine used up its
	// steps without halting.
	ErrLimit = errors.New("step limit reached")

	// ErrNoTape is returned by Reset for a fixture that doesn't
	// exist.
	ErrNoTape = errors.New("no such tape")
)

// RunState is the mutable state of a Machine.
type RunState struct {
	State  string `json:"state"`
	Steps  int    `json:"steps"`
	Halted bool   `json:"halted"`

	// Stuck is the state and symbol that had no action.
	Stuck *Key `json:"stuck,omitempty"`
}

// Machine runs a Program on a Tape.
//
// A Machine is not safe for concurrent use.  Loading a new Program
// doesn't affect a Machine; make a new one (or call SetProgram and
// Reset) to use it.
type Machine struct {
	Program *Program
	State   RunState
	Tape    *Tape

	// Fixture is the index of the tape the machine was Reset to,
	// or -1.
	Fixture int
}

// NewMachine makes a machine for the program on a blank tape.
func NewMachine(p *Program) *Machine {
	m := &Machine{
		Program: p,
	}
	m.ResetTape(nil, 0)
	return m
}

// ResetTape puts the machine in its starting state with a new tape
// holding the given cells.
func (m *Machine) ResetTape(cells []string, head int) {
	m.State = RunState{
		State: m.Program.Start,
	}
	m.Tape = NewTape(cells, head)
	m.Fixture = -1
}

// Reset puts the machine in its starting state on a copy of the
// program's i-th test tape.
func (m *Machine) Reset(i int) error {
	if i < 0 || len(m.Program.Tapes) <= i {
		return fmt.Errorf("%w: %d", ErrNoTape, i)
	}
	f := m.Program.Tapes[i]
	m.ResetTape(f.Cells, f.Head)
	m.Fixture = i
	return nil
}

// SetProgram switches to a newly loaded program.  The run state
// isn't touched, so call a Reset too.
func (m *Machine) SetProgram(p *Program) {
	m.Program = p
}

// Step performs one action.
//
// In a terminal state, Step does nothing and returns Halted or
// ErrorNoAction again.  When there's no action for the current state
// and the symbol under the head, the machine moves to Error.
func (m *Machine) Step() Outcome {
	switch m.State.State {
	case Halt:
		return Halted
	case Error:
		return ErrorNoAction
	}

	sym := m.Tape.Read(0)
	a, have := m.Program.Action(m.State.State, sym)
	if !have {
		m.State.Stuck = &Key{m.State.State, sym}
		m.State.State = Error
		m.State.Halted = true
		return ErrorNoAction
	}

	m.Tape.Write(a.Write, a.Dir)
	m.State.State = a.Next
	m.State.Steps++

	switch a.Next {
	case Halt:
		m.State.Halted = true
		return Halted
	case Error:
		m.State.Halted = true
		return ErrorNoAction
	}
	return Continued
}

// checkEvery is how many steps Run takes between checks of its
// context.
const checkEvery = 1024

// Run steps until the machine halts, the context is done, or it has
// taken limit steps (if limit is positive).
func (m *Machine) Run(ctx context.Context, limit int) (Outcome, error) {
	for i := 1; ; i++ {
		if o := m.Step(); o != Continued {
			return o, nil
		}
		if 0 < limit && limit <= i {
			return Continued, ErrLimit
		}
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Continued, err
			}
		}
	}
}
