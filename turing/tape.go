package turing

import (
	"fmt"
	"strings"
)

// Tape is an unbounded tape of symbols with a head.
//
// Cells are stored as two stacks.  left holds the cells before the
// head, nearest last.  right holds the head cell and the cells after
// it, nearest (the head) last.  Both moves are O(1) amortized.
//
// The stored cells only grow, one blank cell per move off either
// end, so the head always addresses a stored cell.
type Tape struct {
	left  []string
	right []string
}

// NewTape makes a tape holding the given cells with the head at the
// given index.  Empty cells give a single blank cell.  A head
// outside the cells is clamped.
func NewTape(cells []string, head int) *Tape {
	if len(cells) == 0 {
		cells = []string{Blank}
	}
	if head < 0 {
		head = 0
	}
	if len(cells) <= head {
		head = len(cells) - 1
	}
	t := &Tape{
		left:  make([]string, head, len(cells)),
		right: make([]string, 0, len(cells)),
	}
	copy(t.left, cells[:head])
	for i := len(cells) - 1; head <= i; i-- {
		t.right = append(t.right, cells[i])
	}
	return t
}

// FixtureTape makes a tape from a Fixture.
func FixtureTape(f *Fixture) *Tape {
	return NewTape(f.Cells, f.Head)
}

// Len is the number of stored cells.
func (t *Tape) Len() int {
	return len(t.left) + len(t.right)
}

// Head is the index of the head cell.
func (t *Tape) Head() int {
	return len(t.left)
}

// Read returns the symbol at the given offset from the head, or
// Blank if that cell isn't stored.  Read doesn't allocate.
func (t *Tape) Read(offset int) string {
	i := t.Head() + offset
	switch {
	case i < 0:
		return Blank
	case i < len(t.left):
		return t.left[i]
	}
	i -= len(t.left)
	if len(t.right) <= i {
		return Blank
	}
	return t.right[len(t.right)-1-i]
}

// Write writes the symbol at the head and then moves the head.  A
// move past either end adds one blank cell.
func (t *Tape) Write(sym string, dir Direction) {
	t.right[len(t.right)-1] = sym
	switch dir {
	case Left:
		if len(t.left) == 0 {
			t.right = append(t.right, Blank)
			return
		}
		n := len(t.left) - 1
		t.right = append(t.right, t.left[n])
		t.left = t.left[:n]
	case Right:
		n := len(t.right) - 1
		t.left = append(t.left, t.right[n])
		t.right = t.right[:n]
		if len(t.right) == 0 {
			t.right = append(t.right, Blank)
		}
	}
}

// Cells returns a copy of the stored cells.
func (t *Tape) Cells() []string {
	acc := make([]string, 0, t.Len())
	acc = append(acc, t.left...)
	for i := len(t.right) - 1; 0 <= i; i-- {
		acc = append(acc, t.right[i])
	}
	return acc
}

// Snapshot returns the stored cells and the head index.
func (t *Tape) Snapshot() Snapshot {
	return Snapshot{
		Cells: t.Cells(),
		Head:  t.Head(),
	}
}

// Snapshot is a copy of a tape's contents.
type Snapshot struct {
	Cells []string `json:"cells"`
	Head  int      `json:"head"`
}

// String renders the cells separated by spaces with the head cell
// in brackets.  A head outside the cells is shown as a bracketed
// blank at the appropriate end.
func (s Snapshot) String() string {
	acc := make([]string, 0, len(s.Cells)+2)
	if s.Head < 0 {
		acc = append(acc, "["+Blank+"]")
		for i := s.Head + 1; i < 0; i++ {
			acc = append(acc, Blank)
		}
	}
	for i, c := range s.Cells {
		if i == s.Head {
			c = "[" + c + "]"
		}
		acc = append(acc, c)
	}
	if len(s.Cells) <= s.Head {
		for i := len(s.Cells); i < s.Head; i++ {
			acc = append(acc, Blank)
		}
		acc = append(acc, "["+Blank+"]")
	}
	return strings.Join(acc, " ")
}

// Equal reports whether both snapshots have the same cells and head.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Head != o.Head || len(s.Cells) != len(o.Cells) {
		return false
	}
	for i, c := range s.Cells {
		if o.Cells[i] != c {
			return false
		}
	}
	return true
}

// Canonical strips leading and trailing blank cells.  The head stays
// on the same cell, so it can end up outside the remaining cells.
// An all-blank snapshot becomes no cells with head 0.
func (s Snapshot) Canonical() Snapshot {
	lo, hi := 0, len(s.Cells)
	for lo < hi && s.Cells[lo] == Blank {
		lo++
	}
	for lo < hi && s.Cells[hi-1] == Blank {
		hi--
	}
	if lo == hi {
		return Snapshot{Cells: []string{}, Head: 0}
	}
	cells := make([]string, hi-lo)
	copy(cells, s.Cells[lo:hi])
	return Snapshot{Cells: cells, Head: s.Head - lo}
}

// Canonical returns the canonical snapshot of the tape.
func (t *Tape) Canonical() Snapshot {
	return t.Snapshot().Canonical()
}

// Canonicalize strips leading and trailing blank cells from the
// tape itself, except that the head always stays on a stored cell.
//
// When the head is left of the content, the stored cells still start
// with blanks running from the head up to the content; when it is
// right of the content, they end with blanks up to the head.  So the
// stored cells are not always trimmed.  Use Canonical for the trimmed
// form.
func (t *Tape) Canonicalize() {
	c := t.Canonical()
	cells, head := c.Cells, c.Head
	switch {
	case head < 0:
		pad := make([]string, -head, -head+len(cells))
		for i := range pad {
			pad[i] = Blank
		}
		cells, head = append(pad, cells...), 0
	case len(cells) <= head:
		for len(cells) <= head {
			cells = append(cells, Blank)
		}
	}
	*t = *NewTape(cells, head)
}

// CompareToExpected compares the tape with an expected result.
//
// If the expected Head is SingleCell, only the symbol under the head
// is checked.  Otherwise the canonical forms of both must have the
// same cells and the same head.  The returned string describes the
// outcome.
func (t *Tape) CompareToExpected(want *Fixture) (string, bool) {
	if want.Head == SingleCell {
		got := t.Read(0)
		if len(want.Cells) == 1 && got == want.Cells[0] {
			return fmt.Sprintf("%s: head is on %q as expected", want.Name, got), true
		}
		exp := ""
		if 0 < len(want.Cells) {
			exp = want.Cells[0]
		}
		return fmt.Sprintf("%s: expected the head on %q but found %q", want.Name, exp, got), false
	}

	got := t.Canonical()
	exp := Snapshot{Cells: want.Cells, Head: want.Head}.Canonical()
	if got.Equal(exp) {
		return fmt.Sprintf("%s: tape is %s as expected", want.Name, got), true
	}
	return fmt.Sprintf("%s: expected %s but found %s", want.Name, exp, got), false
}
