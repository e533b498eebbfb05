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

// Package main is a command-line table and program debugger in the
// spirit of gdb.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/envs/elevator"
	"github.com/Comcast/fsmgrader/envs/maze"
	"github.com/Comcast/fsmgrader/match"
	"github.com/Comcast/fsmgrader/tools"
	"github.com/Comcast/fsmgrader/turing"
	"github.com/Comcast/fsmgrader/util"
)

type Opts struct {
	echo bool
}

func main() {

	opts := &Opts{}
	flag.BoolVar(&opts.echo, "e", false, "echo input")
	flag.Parse()

	h := NewHost(os.Stdout)
	h.echo = opts.echo

	// Commands given as arguments run first.
	for _, line := range flag.Args() {
		h.Do(context.Background(), line)
	}

	if err := h.Run(context.Background(), os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Host holds the debugger's state: at most one table and one
// program.
type Host struct {
	w         io.Writer
	echo      bool
	debugging bool

	table      *core.UpdatableTable
	tableFile  string
	ninputs    int
	noutputs   int
	machine    *core.Machine
	env        core.Environment
	worldKind  string
	worldFile  string
	breakpoint map[string]bool

	program     *turing.UpdatableProgram
	programFile string
	tm          *turing.Machine

	// onProgram says whether stepping commands go to the program
	// (the most recently loaded source).
	onProgram bool
}

func NewHost(w io.Writer) *Host {
	return &Host{
		w:          w,
		ninputs:    3,
		noutputs:   5,
		table:      core.NewUpdatableTable(nil),
		program:    turing.NewUpdatableProgram(nil),
		breakpoint: make(map[string]bool),
	}
}

const outputPrefix = "# "

func (h *Host) say(format string, args ...interface{}) {
	fmt.Fprintf(h.w, outputPrefix+format+"\n", args...)
}

func (h *Host) protest(format string, args ...interface{}) {
	h.say("error: "+format, args...)
}

var (
	loadTable   = regexp.MustCompile(`^table +(\S+)( +(\d+) +(\d+))?$`)
	loadProgram = regexp.MustCompile(`^program +(\S+)$`)
	reload      = regexp.MustCompile(`^reload$`)
	setWorld    = regexp.MustCompile(`^world +(maze|elevator) +(\S+)$`)
	setState    = regexp.MustCompile(`^state +(\S+)$`)
	setTape     = regexp.MustCompile(`^tape +(\S+)$`)
	inputs      = regexp.MustCompile(`^inputs +([01 ]+)$`)
	step        = regexp.MustCompile(`^(step|s)( +(\d+))?$`)
	run         = regexp.MustCompile(`^run( +(\d+))?$`)
	setBreak    = regexp.MustCompile(`^break +(\S+)$`)
	clearBreak  = regexp.MustCompile(`^clear +(\S+)$`)
	reset       = regexp.MustCompile(`^reset$`)
	print       = regexp.MustCompile(`^(print|p)$`)
	grade       = regexp.MustCompile(`^grade$`)
	analyze     = regexp.MustCompile(`^analyze$`)
	debug       = regexp.MustCompile(`^debug(ging)? +(on|off)$`)
	help        = regexp.MustCompile(`^(help|h|\?)$`)
)

// Run reads commands until EOF.
func (h *Host) Run(ctx context.Context, in io.Reader) error {
	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			h.Do(ctx, line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Do executes one command.
func (h *Host) Do(ctx context.Context, line string) {
	line = strings.TrimSpace(line)

	if h.echo {
		fmt.Fprintln(h.w, line)
	}

	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	var ss []string

	if ss = help.FindStringSubmatch(line); 0 < len(ss) {
		for _, s := range strings.Split(doc(), "\n") {
			h.say("%s", s)
		}
		return
	}

	if ss = loadTable.FindStringSubmatch(line); 0 < len(ss) {
		if ss[2] != "" {
			h.ninputs, _ = strconv.Atoi(ss[3])
			h.noutputs, _ = strconv.Atoi(ss[4])
		}
		h.tableFile = ss[1]
		if h.loadTable() {
			h.machine = core.NewMachine(h.table)
			h.onProgram = false
			h.say("table has %d rows; state %s", len(h.table.Table().Rows), h.machine.State.Name)
		}
		return
	}

	if ss = loadProgram.FindStringSubmatch(line); 0 < len(ss) {
		h.programFile = ss[1]
		if h.loadProgram() {
			p := h.program.Program()
			h.tm = turing.NewMachine(p)
			h.onProgram = true
			if 0 < len(p.Tapes) {
				h.tm.Reset(0)
			}
			h.say("program has %d states, %d tapes; checksum %d", len(p.States), len(p.Tapes), p.Checksum)
		}
		return
	}

	if ss = reload.FindStringSubmatch(line); 0 < len(ss) {
		// The machines keep their states.
		if h.tableFile != "" && h.loadTable() {
			h.say("reloaded %s", h.tableFile)
		}
		if h.programFile != "" && h.loadProgram() {
			h.tm.SetProgram(h.program.Program())
			h.say("reloaded %s", h.programFile)
		}
		return
	}

	if ss = setWorld.FindStringSubmatch(line); 0 < len(ss) {
		h.worldKind, h.worldFile = ss[1], ss[2]
		h.resetWorld()
		return
	}

	if ss = setState.FindStringSubmatch(line); 0 < len(ss) {
		switch {
		case h.onProgram:
			h.tm.State = turing.RunState{State: ss[1]}
		case h.machine != nil:
			if _, have := h.table.Table().StateId(ss[1]); !have {
				h.protest("no state '%s'", ss[1])
				return
			}
			h.machine.State = &core.State{Name: ss[1]}
		default:
			h.protest("nothing loaded")
		}
		return
	}

	if ss = setTape.FindStringSubmatch(line); 0 < len(ss) {
		if h.tm == nil {
			h.protest("no program")
			return
		}
		i, err := h.tapeIndex(ss[1])
		if err == nil {
			err = h.tm.Reset(i)
		}
		if err != nil {
			h.protest("%s", err)
			return
		}
		h.say("tape %s: %s", h.tm.Program.Tapes[i].Name, h.tm.Tape.Snapshot())
		return
	}

	if ss = inputs.FindStringSubmatch(line); 0 < len(ss) {
		if h.machine == nil {
			h.protest("no table")
			return
		}
		bs, err := match.ParseBits(ss[1])
		if err != nil {
			h.protest("%s", err)
			return
		}
		h.stepTable(&canned{inputs: bs})
		return
	}

	if ss = step.FindStringSubmatch(line); 0 < len(ss) {
		n := 1
		if ss[3] != "" {
			n, _ = strconv.Atoi(ss[3])
		}
		for i := 0; i < n; i++ {
			if !h.step() {
				break
			}
		}
		return
	}

	if ss = run.FindStringSubmatch(line); 0 < len(ss) {
		limit := 1000
		if ss[2] != "" {
			limit, _ = strconv.Atoi(ss[2])
		}
		h.run(ctx, limit)
		return
	}

	if ss = setBreak.FindStringSubmatch(line); 0 < len(ss) {
		h.breakpoint[core.Fold(ss[1])] = true
		h.say("breakpoint at %s", ss[1])
		return
	}

	if ss = clearBreak.FindStringSubmatch(line); 0 < len(ss) {
		delete(h.breakpoint, core.Fold(ss[1]))
		return
	}

	if ss = reset.FindStringSubmatch(line); 0 < len(ss) {
		if h.machine != nil {
			h.machine.Reset()
			h.resetWorld()
		}
		if h.tm != nil {
			i := h.tm.Fixture
			if i < 0 {
				h.tm.ResetTape(nil, 0)
			} else {
				h.tm.Reset(i)
			}
		}
		h.print()
		return
	}

	if ss = print.FindStringSubmatch(line); 0 < len(ss) {
		h.print()
		return
	}

	if ss = grade.FindStringSubmatch(line); 0 < len(ss) {
		p := h.program.Program()
		if p == nil {
			h.protest("no program")
			return
		}
		r, err := turing.Grade(ctx, p, 0)
		if err != nil {
			h.protest("%s", err)
			return
		}
		for _, tr := range r.Tapes {
			status := "ok"
			if !tr.Solved {
				status = tr.Msg
			}
			h.say("%-12s %-10s %6d steps  %s", tr.Name, tr.Outcome, tr.Steps, status)
		}
		h.say("all solved: %v", r.AllSolved)
		return
	}

	if ss = analyze.FindStringSubmatch(line); 0 < len(ss) {
		var (
			a   interface{}
			err error
		)
		switch {
		case h.onProgram:
			a = tools.AnalyzeProgram(h.program.Program())
		case h.machine != nil:
			a, err = tools.Analyze(h.table.Table())
		default:
			h.protest("nothing loaded")
			return
		}
		if err != nil {
			h.protest("%s", err)
			return
		}
		js, _ := json.MarshalIndent(a, outputPrefix, "  ")
		h.say("%s", js)
		return
	}

	if ss = debug.FindStringSubmatch(line); 0 < len(ss) {
		h.debugging = ss[2] == "on"
		util.Logging = h.debugging
		if h.debugging {
			h.say("debugging")
		} else {
			h.say("not debugging")
		}
		return
	}

	h.protest("unsupported command: %s", line)
}

func (h *Host) loadTable() bool {
	bs, err := tools.ReadFileWithInlines(h.tableFile)
	if err != nil {
		h.protest("%s", err)
		return false
	}
	if err = h.table.Reload(string(bs), h.ninputs, h.noutputs); err != nil {
		h.protest("%s: %s", h.tableFile, err)
		return false
	}
	return true
}

func (h *Host) loadProgram() bool {
	bs, err := tools.ReadFileWithInlines(h.programFile)
	if err != nil {
		h.protest("%s", err)
		return false
	}
	if ds := h.program.Reload(string(bs)); 0 < len(ds) {
		for _, d := range ds {
			h.protest("%s:%s", h.programFile, d.Error())
		}
		return false
	}
	return true
}

func (h *Host) resetWorld() {
	if h.worldFile == "" {
		return
	}
	var (
		env interface {
			core.Environment
			core.Widths
		}
		err error
	)
	switch h.worldKind {
	case "maze":
		var w *maze.World
		if w, err = maze.ReadWorld(h.worldFile); err == nil {
			env, err = maze.NewAnt(w)
		}
	case "elevator":
		var b *elevator.Building
		if b, err = elevator.ReadBuilding(h.worldFile); err == nil {
			env, err = elevator.NewCar(b)
		}
	}
	if err != nil {
		h.protest("%s", err)
		return
	}
	h.env = env
	h.ninputs, h.noutputs = env.Widths()
	h.say("%s %s: %d inputs, %d outputs", h.worldKind, h.worldFile, h.ninputs, h.noutputs)
}

func (h *Host) tapeIndex(s string) (int, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	for i, f := range h.tm.Program.Tapes {
		if f.Name == s {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no tape '%s'", s)
}

// step takes one step and reports whether another makes sense.
func (h *Host) step() bool {
	switch {
	case h.onProgram:
		o := h.tm.Step()
		h.say("%-10s %s", h.tm.State.State, h.tm.Tape.Snapshot())
		if o != turing.Continued {
			h.say("%s", o)
			return false
		}
		return true
	case h.machine != nil:
		if h.env == nil {
			h.protest("no world (use 'inputs BITS')")
			return false
		}
		return h.stepTable(h.env)
	}
	h.protest("nothing loaded")
	return false
}

func (h *Host) stepTable(env core.Environment) bool {
	stride, err := h.machine.Step(env)
	if err != nil {
		h.protest("%s", err)
		return false
	}
	h.render(stride)
	if stride.NoMatch != nil {
		return false
	}
	if h.env != nil && h.env.IsGoalReached() {
		h.say("goal reached")
		return false
	}
	return true
}

func (h *Host) render(s *core.Stride) {
	if s.NoMatch != nil {
		h.say("%s %s -> %s", s.From.Name, s.Inputs.Spaced(), s.NoMatch)
		return
	}
	h.say("%s %s | %s %s  (line %d)", s.From.Name, s.Inputs.Spaced(), s.To.Name, s.Outputs.Spaced(),
		h.table.Table().Rows[s.Row].Line)
	if s.Ambiguous != nil {
		h.say("  warning: %s", s.Ambiguous)
	}
	if h.debugging {
		js, _ := json.Marshal(s)
		h.say("  %s", js)
	}
}

func (h *Host) run(ctx context.Context, limit int) {
	if h.onProgram {
		o, err := h.tm.Run(ctx, limit)
		if err != nil {
			h.protest("%s", err)
		}
		h.say("%s after %d steps: %s", o, h.tm.State.Steps, h.tm.Tape.Snapshot())
		return
	}
	if h.machine == nil {
		h.protest("nothing loaded")
		return
	}
	if h.env == nil {
		h.protest("no world")
		return
	}
	c := &core.Control{
		Limit: limit,
		Breakpoints: map[string]core.Breakpoint{
			"state": func(ctx context.Context, s *core.State) bool {
				return h.breakpoint[core.Fold(s.Name)]
			},
		},
	}
	// Step off a breakpoint we're sitting on.
	if h.breakpoint[core.Fold(h.machine.State.Name)] {
		if !h.stepTable(h.env) {
			return
		}
		c.Limit--
	}
	walked, err := h.machine.Walk(ctx, h.env, c)
	if err != nil {
		h.protest("%s", err)
	}
	for _, s := range walked.Strides {
		h.render(s)
	}
	h.say("stopped: %s in %s", walked.StoppedBecause, h.machine.State.Name)
}

func (h *Host) print() {
	if h.machine != nil {
		h.say("table %s", h.tableFile)
		h.say("  state:    %s", h.machine.State)
		if s, is := h.env.(fmt.Stringer); is {
			for _, line := range strings.Split(strings.TrimRight(s.String(), "\n"), "\n") {
				h.say("  %s", line)
			}
		}
	}
	if h.tm != nil {
		h.say("program %s", h.programFile)
		h.say("  state:    %s (%d steps)", h.tm.State.State, h.tm.State.Steps)
		h.say("  tape:     %s", h.tm.Tape.Snapshot())
	}
	if h.machine == nil && h.tm == nil {
		h.say("nothing loaded")
	}
}

// canned provides one set of inputs.
type canned struct {
	inputs match.Bits
}

func (c *canned) ReadInputs() match.Bits     { return c.inputs }
func (c *canned) ApplyOutputs(bs match.Bits) {}
func (c *canned) IsGoalReached() bool        { return false }

func doc() string {
	return `
  table FILENAME [NI NO]     Load a truth table (NI inputs, NO outputs)
  program FILENAME           Load a Turing program
  reload                     Reload the sources, keeping the machines' states
  world maze|elevator FILE   Use this world for the table
  state NAME                 Set the current state
  tape N|NAME                Reset the program on this test tape
  inputs BITS                Take one table step with these inputs
  step [N]                   Take N steps (default 1)
  run [LIMIT]                Run until the goal, halt, a breakpoint, or the limit
  break STATE                Stop a run when the machine is in this state
  clear STATE                Remove that breakpoint
  reset                      Start over
  print                      Show the machines
  grade                      Run the program on all its tapes
  analyze                    Report orphans, overlaps, and gaps
  debug on/off               When debugging, show stepping details
  help                       Show this documentation
`
}
