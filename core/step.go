package core

import (
	"context"
	"encoding/json"

	"github.com/Comcast/fsmgrader/match"
	"github.com/Comcast/fsmgrader/util"
)

var (
	// DefaultControl will be used by Machine.Walk if the given
	// control is nil.
	DefaultControl = &Control{
		Limit: 1000,
	}

	// StridesInitialCap is the maximum initial capacity of a
	// Walked's Strides.
	StridesInitialCap = 1024
)

// StopReason represents the possible reasons for a Walk to terminate.
type StopReason int

const (
	GoalReached       StopReason = iota // The Environment says we're done.
	Failed                              // NoMatch; the machine must be Reset.
	Limited                             // Too many steps.
	BreakpointReached                   // During a Walk.
	Canceled                            // The context was canceled.
	AlreadyHalted                       // The machine was halted before the Walk.
)

func (r StopReason) String() string {
	switch r {
	case GoalReached:
		return "GoalReached"
	case Failed:
		return "Failed"
	case Limited:
		return "Limited"
	case BreakpointReached:
		return "BreakpointReached"
	case Canceled:
		return "Canceled"
	case AlreadyHalted:
		return "AlreadyHalted"
	}
	return "StopReason(?)"
}

func (r StopReason) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// State is the run state of a Machine.
type State struct {
	// Name is the name of the current state.
	Name string `json:"state"`

	// Steps counts the steps taken since the last Reset.
	Steps int `json:"steps"`

	// Halted is set when the run can't continue (a NoMatch).
	Halted bool `json:"halted,omitempty"`

	// Error describes why the machine halted.
	Error string `json:"error,omitempty"`
}

func (s *State) String() string {
	if s == nil {
		return "nil"
	}
	js, err := json.Marshal(s)
	if err != nil {
		return s.Name
	}
	return string(js)
}

// Copy makes a copy of the State.
func (s *State) Copy() *State {
	acc := *s
	return &acc
}

// Breakpoint is a *State predicate.
//
// When a Breakpoint returns true for a *State, then processing should
// stop at that point.
type Breakpoint func(context.Context, *State) bool

// Control influences how Walk() operates.
type Control struct {
	// Limit is the maximum number of Steps that a Walk() can take.
	Limit       int
	Breakpoints map[string]Breakpoint
}

// Copy makes a shallow copy of the Control.
func (c *Control) Copy() *Control {
	bs := make(map[string]Breakpoint, len(c.Breakpoints))
	for id, b := range c.Breakpoints {
		bs[id] = b
	}
	return &Control{
		Limit:       c.Limit,
		Breakpoints: bs,
	}
}

// Stride represents a step that a Machine has taken or attempted.
type Stride struct {
	// From is the state before the step.
	From *State `json:"from"`

	// To is the state after the step.
	To *State `json:"to"`

	// Inputs are the sensor bits read for this step.
	Inputs match.Bits `json:"inputs"`

	// Row is the index of the row that was used.  -1 if none.
	Row int `json:"row"`

	// Outputs are the bits given to the Environment (if any).
	Outputs match.Bits `json:"outputs,omitempty"`

	// NoMatch is set when no row matched.  The machine is now
	// halted.
	NoMatch *MatchError `json:"noMatch,omitempty"`

	// Ambiguous is set when more than one row matched.  The step
	// still happened using the first one.
	Ambiguous *MatchError `json:"ambiguous,omitempty"`
}

// Machine steps a truth table against an Environment.
type Machine struct {
	Tabler Tabler
	State  *State
}

// NewMachine makes a Machine that's ready to run from the table's
// start state.
func NewMachine(t Tabler) *Machine {
	m := &Machine{
		Tabler: t,
	}
	m.Reset()
	return m
}

// Reset puts the machine back at the start state with a zero step
// count.
func (m *Machine) Reset() {
	var start string
	if m.Tabler != nil {
		if t := m.Tabler.Table(); t != nil {
			start = t.Start()
		}
	}
	m.State = &State{
		Name: start,
	}
}

// Step is the fundamental operation.
//
// Reads the inputs, finds the row, applies the outputs, and moves to
// the next state.  A NoMatch halts the machine and is reported in the
// Stride, not as an error.  The returned error is reserved for things
// like a missing table, a halted machine, or a sensor width mismatch.
func (m *Machine) Step(env Environment) (*Stride, error) {
	if m.Tabler == nil {
		return nil, ErrNoTable
	}
	t := m.Tabler.Table()
	if t == nil {
		return nil, ErrNoTable
	}
	if m.State.Halted {
		return nil, ErrHalted
	}

	inputs := env.ReadInputs()
	if len(inputs) != t.NumInputs {
		return nil, &WidthMismatch{
			Want: t.NumInputs,
			Got:  len(inputs),
		}
	}

	stride := &Stride{
		From:   m.State.Copy(),
		Inputs: inputs.Copy(),
		Row:    -1,
	}

	r := t.Match(m.State.Name, inputs)
	switch r.Kind {
	case NoMatch:
		stride.NoMatch = t.matchErr(r, m.State.Name, inputs)
		m.State.Halted = true
		m.State.Error = stride.NoMatch.Error()
		stride.To = m.State.Copy()
		util.Logf("Machine.Step %s", m.State.Error)
		return stride, nil
	case Ambiguous:
		stride.Ambiguous = t.matchErr(r, m.State.Name, inputs)
		util.Logf("Machine.Step warning: %s", stride.Ambiguous.Error())
	}

	stride.Row = r.Row
	stride.Outputs = t.Outputs(r.Row).Copy()
	env.ApplyOutputs(stride.Outputs)

	m.State.Name = t.NextState(r.Row)
	m.State.Steps++
	stride.To = m.State.Copy()

	return stride, nil
}

// Walked represents a sequence of strides taken by a Walk().
type Walked struct {
	// Strides contains each Stride taken.
	Strides []*Stride `json:"strides"`

	// StoppedBecause reports the reason why the Walk stopped.
	StoppedBecause StopReason `json:"stoppedBecause"`

	// Error stores an internal error that occured (if any).
	Error error `json:"-"`

	// BreakpointId is the id of the breakpoint, if any, that
	// caused this Walk to stop.
	BreakpointId string `json:"breakpoint,omitempty"`
}

// Ambiguities returns the ambiguity warnings seen during the walk.
func (w *Walked) Ambiguities() []*MatchError {
	var acc []*MatchError
	for _, s := range w.Strides {
		if s.Ambiguous != nil {
			acc = append(acc, s.Ambiguous)
		}
	}
	return acc
}

// Last returns the last stride (if any).
func (w *Walked) Last() *Stride {
	if len(w.Strides) == 0 {
		return nil
	}
	return w.Strides[len(w.Strides)-1]
}

func newWalked(siz int) *Walked {
	if StridesInitialCap < siz {
		siz = StridesInitialCap
	}
	return &Walked{
		Strides: make([]*Stride, 0, siz),
	}
}

// Walk takes as many steps as it can.
//
// The walk stops when the Environment reports its goal, when no row
// matches, at the Control's limit, at a breakpoint, or when the
// context is done.  The context is checked between steps; a step
// itself is never interrupted.
//
// The returned error is an internal error.  Run failures are reported
// via Walked.StoppedBecause.
func (m *Machine) Walk(ctx context.Context, env Environment, c *Control) (*Walked, error) {
	if c == nil {
		c = DefaultControl
	}

	walked := newWalked(c.Limit)

	if m.State.Halted {
		walked.StoppedBecause = AlreadyHalted
		return walked, nil
	}

	for i := 0; i < c.Limit; i++ {
		if err := ctx.Err(); err != nil {
			walked.StoppedBecause = Canceled
			return walked, nil
		}

		for id, breakpoint := range c.Breakpoints {
			if breakpoint(ctx, m.State) {
				walked.StoppedBecause = BreakpointReached
				walked.BreakpointId = id
				return walked, nil
			}
		}

		stride, err := m.Step(env)
		if err != nil {
			walked.Error = err
			return walked, err
		}
		walked.Strides = append(walked.Strides, stride)

		if stride.NoMatch != nil {
			walked.StoppedBecause = Failed
			return walked, nil
		}

		if env.IsGoalReached() {
			walked.StoppedBecause = GoalReached
			return walked, nil
		}
	}

	walked.StoppedBecause = Limited

	return walked, nil
}
