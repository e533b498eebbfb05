package scripted

import (
	"context"
	"testing"
	"time"

	"github.com/Comcast/fsmgrader/core"
)

var stairs = &Script{
	Code: `
var pos = 0;
function inputs() { return [pos >= limit()]; }
function apply(bits, s) { if (bits[0] && s == "1") pos++; }
function goal() { return pos == limit(); }
`,
	Requires:   []string{"limits"},
	NumInputs:  1,
	NumOutputs: 1,
}

var libs = MakeMapLibraryProvider(map[string]string{
	"limits": "function limit() { return 3; }",
})

func TestWalk(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e, err := New(ctx, stairs, libs)
	if err != nil {
		t.Fatal(err)
	}
	if nin, nout := e.Widths(); nin != 1 || nout != 1 {
		t.Fatal(nin, nout)
	}
	m := core.NewMachine(core.MustLoad("up 0 | up 1\nup 1 | up 0\n", 1, 1))
	walked, err := m.Walk(ctx, e, nil)
	if err != nil {
		t.Fatal(err)
	}
	if walked.StoppedBecause != core.GoalReached || len(walked.Strides) != 3 || e.Err != nil {
		t.Fatalf("%s after %d steps (%v)", walked.StoppedBecause, len(walked.Strides), e.Err)
	}
}

func TestMissingPieces(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, stairs, nil); err == nil {
		t.Fatal("expected a library error")
	}
	if _, err := New(ctx, &Script{Code: "function inputs() {}"}, nil); err == nil {
		t.Fatal("expected a missing function error")
	}
	if _, err := New(ctx, &Script{Code: "function ("}, nil); err == nil {
		t.Fatal("expected a syntax error")
	}
}

func TestStringBitsAndHelpers(t *testing.T) {
	s := &Script{
		Code: `
function inputs() { return _.steps == 0 ? "01" : [1, 0]; }
function apply(bits) { _.log(bits.length); }
function goal() { return _.cronNext("*/5 * * * *").length > 10; }
`,
		NumInputs:  2,
		NumOutputs: 1,
	}
	e, err := New(context.Background(), s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.ReadInputs().String(); got != "01" {
		t.Fatal(got)
	}
	e.ApplyOutputs([]bool{true})
	if got := e.ReadInputs().String(); got != "10" {
		t.Fatal(got)
	}
	if !e.IsGoalReached() || e.Err != nil {
		t.Fatal(e.Err)
	}
}

func TestTimeoutStopsWalk(t *testing.T) {
	s := &Script{
		Code: `
function inputs() { for (;;) {} }
function apply(bits) {}
function goal() { return false; }
`,
		NumInputs:  1,
		NumOutputs: 1,
	}
	e, err := New(context.Background(), s, nil)
	if err != nil {
		t.Fatal(err)
	}
	e.Timeout = 10 * time.Millisecond

	c := core.DefaultControl.Copy()
	c.Breakpoints["script"] = e.Breakpoint()

	m := core.NewMachine(core.MustLoad("a - | a 0\n", 1, 1))
	walked, err := m.Walk(context.Background(), e, c)
	if err != nil {
		t.Fatal(err)
	}
	if e.Err != Interrupted {
		t.Fatal(e.Err)
	}
	if walked.StoppedBecause != core.BreakpointReached || walked.BreakpointId != "script" || len(walked.Strides) != 1 {
		t.Fatalf("%s after %d steps", walked.StoppedBecause, len(walked.Strides))
	}
}

func TestWidthCheck(t *testing.T) {
	s := &Script{
		Code:       `function inputs() { return "1"; } function apply() {} function goal() { return false; }`,
		NumInputs:  2,
		NumOutputs: 1,
	}
	e, _ := New(context.Background(), s, nil)
	if got := e.ReadInputs().String(); got != "00" || e.Err == nil {
		t.Fatal(got, e.Err)
	}
}
