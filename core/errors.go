package core

// These errors are user errors, not internal errors.

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Comcast/fsmgrader/match"
)

// SyntaxError occurs when a truth table line can't be parsed.
//
// Parsing stops at the first SyntaxError.  Offset is the byte offset
// into the source where the problem was found, which is where an
// editor should put its caret.
type SyntaxError struct {
	Offset int    `json:"offset"`
	Line   int    `json:"line"`
	Msg    string `json:"msg"`
}

func (e *SyntaxError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Msg
}

// MatchError reports a NoMatch or an Ambiguous match.
//
// A NoMatch is fatal to the current run.  An Ambiguous match is a
// warning: the first matching row is still used.
type MatchError struct {
	Kind   MatchKind
	State  string
	Inputs match.Bits

	// Rows are the indexes of all matching rows (Ambiguous only).
	Rows []int

	// Lines are the source line numbers of Rows.
	Lines []int
}

func (e *MatchError) Error() string {
	switch e.Kind {
	case Ambiguous:
		ls := make([]string, len(e.Lines))
		for i, l := range e.Lines {
			ls[i] = strconv.Itoa(l)
		}
		return `more than one match for state "` + e.State + `" with inputs ` +
			e.Inputs.String() + ` (lines ` + strings.Join(ls, ", ") + `)`
	default:
		return `no match for state "` + e.State + `" with inputs ` + e.Inputs.String()
	}
}

// WidthMismatch occurs when an Environment provides the wrong number
// of inputs.
type WidthMismatch struct {
	Want int
	Got  int
}

func (e *WidthMismatch) Error() string {
	return "expected " + strconv.Itoa(e.Want) + " inputs but got " + strconv.Itoa(e.Got)
}

// BadWidth occurs when Load is given a number of inputs or outputs
// outside 0..MaxWidth.
type BadWidth struct {
	What  string
	Width int
}

func (e *BadWidth) Error() string {
	return "bad number of " + e.What + ": " + strconv.Itoa(e.Width) +
		" (limit " + strconv.Itoa(MaxWidth) + ")"
}

var (
	// ErrHalted is returned by Step when the machine is in a
	// terminal state.  Reset the machine to continue.
	ErrHalted = errors.New("machine halted")

	// ErrNoTable occurs when a Machine has no table to step.
	ErrNoTable = errors.New("no table")
)
