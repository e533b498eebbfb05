package core

import (
	"github.com/Comcast/fsmgrader/match"
)

// MatchKind says how a Match went.
type MatchKind int

const (
	NoMatch   MatchKind = iota // No row applies.
	Unique                     // Exactly one row applies.
	Ambiguous                  // More than one row applies; the first wins.
)

func (k MatchKind) String() string {
	switch k {
	case NoMatch:
		return "NoMatch"
	case Unique:
		return "Unique"
	case Ambiguous:
		return "Ambiguous"
	}
	return "MatchKind(?)"
}

// MatchResult is the result of Table.Match.
type MatchResult struct {
	Kind MatchKind `json:"kind"`

	// Row is the index of the row to use.  -1 for NoMatch.
	//
	// For an Ambiguous match, this row is the first matching row
	// in table order.
	Row int `json:"row"`

	// Rows are all matching rows in table order.
	Rows []int `json:"rows,omitempty"`
}

// Match finds the row for the given state and inputs.
//
// The state name is compared case-insensitively.  An unknown state
// gives NoMatch.
func (t *Table) Match(state string, inputs match.Bits) MatchResult {
	id, have := t.StateId(state)
	if !have {
		return MatchResult{Kind: NoMatch, Row: -1}
	}
	return t.MatchId(id, inputs)
}

// MatchId is Match with an interned state id.
func (t *Table) MatchId(state int, inputs match.Bits) MatchResult {
	var rows []int
	for i, r := range t.Rows {
		if r.State != state {
			continue
		}
		if r.Pattern.Matches(inputs) {
			rows = append(rows, i)
		}
	}
	switch len(rows) {
	case 0:
		return MatchResult{Kind: NoMatch, Row: -1}
	case 1:
		return MatchResult{Kind: Unique, Row: rows[0], Rows: rows}
	default:
		return MatchResult{Kind: Ambiguous, Row: rows[0], Rows: rows}
	}
}

// matchErr returns a *MatchError for NoMatch and Ambiguous results and nil
// for a Unique one.
func (t *Table) matchErr(r MatchResult, state string, inputs match.Bits) *MatchError {
	if r.Kind == Unique {
		return nil
	}
	e := &MatchError{
		Kind:   r.Kind,
		State:  state,
		Inputs: inputs.Copy(),
	}
	if r.Kind == Ambiguous {
		e.Rows = r.Rows
		e.Lines = make([]int, len(r.Rows))
		for i, row := range r.Rows {
			e.Lines[i] = t.Rows[row].Line
		}
	}
	return e
}

// MatchErr is Match that also returns a *MatchError (as an error) for
// NoMatch and Ambiguous results.
func (t *Table) MatchErr(state string, inputs match.Bits) (MatchResult, error) {
	r := t.Match(state, inputs)
	if e := t.matchErr(r, state, inputs); e != nil {
		return r, e
	}
	return r, nil
}
