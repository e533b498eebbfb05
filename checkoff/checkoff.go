// Package checkoff builds the record a student submits when claiming
// an assignment is done.
//
// Submitting the record is the job of whoever owns the network.  This
// package only assembles it and checks it against the program's own
// "checkoff" statement.
package checkoff

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/storage"
	"github.com/Comcast/fsmgrader/turing"
)

// Record is what a checkoff submits.
type Record struct {
	Assignment string `json:"assignment"`
	Server     string `json:"server,omitempty"`
	Dialect    string `json:"dialect"`

	// Checksum is computed from the source.
	Checksum int32 `json:"checksum"`

	// Expected is the checksum the instructor issued (if any).
	Expected int32 `json:"expected,omitempty"`

	// Gate is the environment or fixture set that was graded.
	Gate string `json:"gate,omitempty"`

	// Tests counts the graded tapes (or walks).  Passed counts
	// those that passed.
	Tests  int `json:"tests"`
	Passed int `json:"passed"`

	// Steps is the total number of steps taken while grading.
	Steps int `json:"steps"`

	At time.Time `json:"at"`
}

var (
	// ErrNoCheckoff is returned by Verify for a program without a
	// "checkoff" statement.
	ErrNoCheckoff = errors.New("no checkoff statement")
)

// Mismatch reports a checksum that differs from the issued one.
//
// The usual cause is an edited tape or result.
type Mismatch struct {
	Want int32
	Got  int32
}

func (e *Mismatch) Error() string {
	return fmt.Sprintf("checksum %d doesn't match the expected %d (were the tapes or results changed?)", e.Got, e.Want)
}

// Verify compares a program's computed checksum with the one given
// in its "checkoff" statement.
func Verify(p *turing.Program) error {
	if p.Checkoff == nil {
		return ErrNoCheckoff
	}
	if p.Checkoff.Checksum != p.Checksum {
		return &Mismatch{
			Want: p.Checkoff.Checksum,
			Got:  p.Checksum,
		}
	}
	return nil
}

// ForProgram makes a Record from a graded program.
func ForProgram(p *turing.Program, r *turing.Report) *Record {
	rec := &Record{
		Dialect:  storage.TuringDialect,
		Checksum: p.Checksum,
		Gate:     "tapes",
		At:       time.Now().UTC(),
	}
	if c := p.Checkoff; c != nil {
		rec.Assignment = c.Assignment
		rec.Server = c.Server
		rec.Expected = c.Checksum
	}
	if r != nil {
		rec.Tests = len(r.Tapes)
		for _, tr := range r.Tapes {
			rec.Steps += tr.Steps
			if tr.Solved {
				rec.Passed++
			}
		}
	}
	return rec
}

// TableChecksum is a checksum over a table's rows.
//
// Each row contributes the hash of its canonical tokens.  The row's
// position is the hash's head, so reordering rows (which changes
// match priority) changes the checksum.  Comments and spacing don't
// matter.
func TableChecksum(t *core.Table) int32 {
	h := turing.ChecksumSeed
	for i := range t.Rows {
		h += turing.ContentHash(strings.Fields(t.RowString(i)), i)
	}
	return h
}

// ForTable makes a Record from a walk of a truth table through a
// named environment.
func ForTable(t *core.Table, assignment, gate string, walks ...*core.Walked) *Record {
	rec := &Record{
		Assignment: assignment,
		Dialect:    storage.TableDialect,
		Checksum:   TableChecksum(t),
		Gate:       gate,
		Tests:      len(walks),
		At:         time.Now().UTC(),
	}
	for _, w := range walks {
		rec.Steps += len(w.Strides)
		if w.StoppedBecause == core.GoalReached {
			rec.Passed++
		}
	}
	return rec
}

// Done reports whether every test passed.
func (r *Record) Done() bool {
	return 0 < r.Tests && r.Passed == r.Tests
}

// Form renders the record as form values for submission.
func (r *Record) Form() url.Values {
	v := url.Values{}
	v.Set("assignment", r.Assignment)
	v.Set("dialect", r.Dialect)
	v.Set("checksum", strconv.FormatInt(int64(r.Checksum), 10))
	if r.Expected != 0 {
		v.Set("expected", strconv.FormatInt(int64(r.Expected), 10))
	}
	if r.Gate != "" {
		v.Set("gate", r.Gate)
	}
	v.Set("tests", strconv.Itoa(r.Tests))
	v.Set("passed", strconv.Itoa(r.Passed))
	v.Set("steps", strconv.Itoa(r.Steps))
	v.Set("at", r.At.Format(time.RFC3339))
	return v
}

// Submission makes a storage.Submission for the record and its
// source.
func (r *Record) Submission(author, src string, solved []bool) *storage.Submission {
	outcome := fmt.Sprintf("%d/%d passed in %d steps", r.Passed, r.Tests, r.Steps)
	if r.Gate != "" {
		outcome = r.Gate + ": " + outcome
	}
	return &storage.Submission{
		Assignment: r.Assignment,
		Author:     author,
		Dialect:    r.Dialect,
		Source:     src,
		Checksum:   r.Checksum,
		Solved:     solved,
		Passed:     r.Done(),
		Outcome:    outcome,
		At:         r.At,
	}
}
