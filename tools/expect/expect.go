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

// Package expect is a tool for testing truth tables.
//
// You construct a Session, which has a sequence of inputs and the
// expected results of each.  Then run the session against a table to
// see if the expected results actually appeared.
//
// A Session is usually written in YAML:
//
//	doc: The ant finds its wall.
//	start: walk
//	ios:
//	  - inputs: "000"
//	    state: walk
//	    outputs: "10100"
//	  - inputs: "110"
//	    outputs: "01000"
//
// See ../../cmd/fsmexpect for command-line use.
package expect

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/match"
	"github.com/Comcast/fsmgrader/util"

	"github.com/jsccast/yaml"
)

// IO is one step: inputs and what should happen.
type IO struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Inputs are the sensor bits, like "010".
	Inputs string `json:"inputs" yaml:"inputs"`

	// State is the expected next state (if given).
	State string `json:"state,omitempty" yaml:"state,omitempty"`

	// Outputs are the expected output bits (if given).
	Outputs string `json:"outputs,omitempty" yaml:"outputs,omitempty"`

	// Match is the expected match kind (if given): "unique",
	// "ambiguous", or "none".  Without it, only a unique match
	// passes.
	Match string `json:"match,omitempty" yaml:"match,omitempty"`
}

// Session is mostly a sequence of IOs.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Start is the starting state.  Defaults to the table's start
	// state.
	Start string `json:"start,omitempty" yaml:"start,omitempty"`

	// IOs is sequence of IOs that this session will run.
	IOs []IO `json:"ios" yaml:"ios"`

	// KeepGoing continues after a failed IO.
	KeepGoing bool `json:"keepGoing,omitempty" yaml:"keepGoing,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// ParseSession parses a YAML Session.
func ParseSession(bs []byte) (*Session, error) {
	var s *Session
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("empty session")
	}
	return s, nil
}

// ReadSession reads a YAML Session from a file.
func ReadSession(filename string) (*Session, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseSession(bs)
}

// Failure describes an IO that didn't go as expected.
type Failure struct {
	// IO is the index of the IO.
	IO  int    `json:"io"`
	Doc string `json:"doc,omitempty"`
	Msg string `json:"msg"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("io %d: %s", f.IO, f.Msg)
}

// Report is the result of a Session run.
type Report struct {
	// Ran is the number of IOs attempted.
	Ran      int        `json:"ran"`
	Failures []*Failure `json:"failures,omitempty"`
}

// Passed reports whether every IO passed.
func (r *Report) Passed() bool {
	return len(r.Failures) == 0
}

// canned is an Environment that provides one input.
type canned struct {
	inputs  match.Bits
	outputs match.Bits
}

func (c *canned) ReadInputs() match.Bits {
	return c.inputs
}

func (c *canned) ApplyOutputs(bs match.Bits) {
	c.outputs = bs
}

func (c *canned) IsGoalReached() bool {
	return false
}

func expectedKind(s string) (core.MatchKind, error) {
	switch strings.ToLower(s) {
	case "", "unique":
		return core.Unique, nil
	case "ambiguous":
		return core.Ambiguous, nil
	case "none", "nomatch":
		return core.NoMatch, nil
	}
	return core.NoMatch, fmt.Errorf("unknown match kind '%s'", s)
}

// Run processes all the IOs in the Session against the table.
//
// The returned error is for a malformed session.  IOs that don't
// pass are reported in the Report.
func (s *Session) Run(ctx context.Context, t *core.Table) (*Report, error) {
	m := core.NewMachine(t)
	if s.Start != "" {
		if _, have := t.StateId(s.Start); !have {
			return nil, fmt.Errorf("unknown start state '%s'", s.Start)
		}
		m.State.Name = s.Start
	}

	r := &Report{}
	env := &canned{}

	for i, io := range s.IOs {
		if err := ctx.Err(); err != nil {
			return r, err
		}

		inputs, err := match.ParseBits(io.Inputs)
		if err != nil {
			return r, fmt.Errorf("io %d: %w", i, err)
		}
		kind, err := expectedKind(io.Match)
		if err != nil {
			return r, fmt.Errorf("io %d: %w", i, err)
		}
		r.Ran++

		env.inputs, env.outputs = inputs, nil
		stride, err := m.Step(env)
		if err != nil {
			return r, fmt.Errorf("io %d: %w", i, err)
		}

		var problems []string
		got := core.Unique
		switch {
		case stride.NoMatch != nil:
			got = core.NoMatch
		case stride.Ambiguous != nil:
			got = core.Ambiguous
		}
		if got != kind {
			problems = append(problems, fmt.Sprintf("expected %s match but got %s", kind, got))
		}
		if io.State != "" && got != core.NoMatch && core.Fold(io.State) != core.Fold(stride.To.Name) {
			problems = append(problems, fmt.Sprintf("expected state %s but got %s", io.State, stride.To.Name))
		}
		if io.Outputs != "" && got != core.NoMatch {
			want, err := match.ParseBits(io.Outputs)
			if err != nil {
				return r, fmt.Errorf("io %d: %w", i, err)
			}
			if !want.Equal(env.outputs) {
				problems = append(problems, fmt.Sprintf("expected outputs %s but got %s", want, env.outputs))
			}
		}

		if s.Verbose {
			util.Logf("expect io %d %s -> %s %s", i, io.Inputs, stride.To.Name, env.outputs)
		}

		if 0 < len(problems) {
			r.Failures = append(r.Failures, &Failure{
				IO:  i,
				Doc: io.Doc,
				Msg: strings.Join(problems, "; "),
			})
			if !s.KeepGoing {
				break
			}
		}
		if m.State.Halted {
			// A NoMatch that was expected still ends the session.
			m.Reset()
			if s.Start != "" {
				m.State.Name = s.Start
			}
		}
	}

	return r, nil
}
