package turing

import (
	"context"
	"errors"
	"fmt"

	"github.com/Comcast/fsmgrader/util"
)

// DefaultLimit is the step limit Grade uses when given a
// non-positive one.
var DefaultLimit = 1000000

// TapeReport is what happened to one test tape.
type TapeReport struct {
	Name    string   `json:"name"`
	Outcome Outcome  `json:"outcome"`
	Steps   int      `json:"steps"`
	Final   Snapshot `json:"final"`

	// Expected reports whether the program declared a result
	// with the tape's name.
	Expected bool `json:"expected"`

	Solved bool   `json:"solved"`
	Msg    string `json:"msg"`
}

// Report is the outcome of grading a Program.
type Report struct {
	Checksum  int32         `json:"checksum"`
	Tapes     []*TapeReport `json:"tapes"`
	AllSolved bool          `json:"allSolved"`
}

// Grade runs the program on each of its test tapes and compares
// each final tape with the result of the same name.  A tape with no
// declared result is solved if the machine halted.
//
// Grade updates the program's Solved flags.  A context error stops
// grading and is returned along with the partial report.
func Grade(ctx context.Context, p *Program, limit int) (*Report, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(p.Solved) != len(p.Tapes) {
		p.Solved = make([]bool, len(p.Tapes))
	}

	r := &Report{
		Checksum: p.Checksum,
		Tapes:    make([]*TapeReport, 0, len(p.Tapes)),
	}

	m := NewMachine(p)
	for i, f := range p.Tapes {
		if err := m.Reset(i); err != nil {
			return r, err
		}
		tr := &TapeReport{
			Name: f.Name,
		}
		r.Tapes = append(r.Tapes, tr)

		o, err := m.Run(ctx, limit)
		tr.Outcome = o
		tr.Steps = m.State.Steps
		tr.Final = m.Tape.Snapshot()

		switch {
		case errors.Is(err, ErrLimit):
			tr.Msg = fmt.Sprintf("%s: no halt after %d steps", f.Name, limit)
		case err != nil:
			return r, err
		case o == ErrorNoAction:
			if k := m.State.Stuck; k != nil {
				tr.Msg = fmt.Sprintf("%s: no action in state %q for symbol %q after %d steps",
					f.Name, k.State, k.Symbol, tr.Steps)
			} else {
				tr.Msg = fmt.Sprintf("%s: went to %s after %d steps", f.Name, Error, tr.Steps)
			}
		default:
			want, have := p.Results[f.Name]
			tr.Expected = have
			if have {
				tr.Msg, tr.Solved = m.Tape.CompareToExpected(want)
			} else {
				tr.Msg, tr.Solved = f.Name+": halted", true
			}
		}

		p.Solved[i] = tr.Solved
		util.Logf("turing.Grade %s", tr.Msg)
	}

	r.AllSolved = p.AllSolved()
	return r, nil
}
