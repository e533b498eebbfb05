package turing

import (
	"math/rand"
	"strings"
	"testing"

	. "github.com/Comcast/fsmgrader/util/testutil"
)

func TestTapeBasics(t *testing.T) {
	tp := NewTape([]string{"a", "b", "c"}, 1)
	if tp.Len() != 3 || tp.Head() != 1 {
		t.Fatal(tp.Len(), tp.Head())
	}
	for offset, want := range map[int]string{-2: Blank, -1: "a", 0: "b", 1: "c", 2: Blank} {
		if got := tp.Read(offset); got != want {
			t.Fatalf("%d: %q", offset, got)
		}
	}
	if s := tp.Snapshot().String(); s != "a [b] c" {
		t.Fatal(s)
	}

	tp.Write("x", Left)
	tp.Write("y", Left)
	if tp.Len() != 4 || tp.Head() != 0 {
		t.Fatal(tp.Snapshot())
	}
	if !SameStrings(tp.Cells(), []string{Blank, "y", "x", "c"}) {
		t.Fatal(tp.Snapshot())
	}
}

func TestTapeReadDoesNotAllocate(t *testing.T) {
	tp := NewTape([]string{"1"}, 0)
	n := testing.AllocsPerRun(100, func() {
		tp.Read(10)
		tp.Read(-10)
	})
	if n != 0 || tp.Len() != 1 {
		t.Fatal(n, tp.Len())
	}
}

func TestTapeGrowth(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	tp := NewTape(nil, 0)
	for i := 0; i < 5000; i++ {
		var (
			before = tp.Len()
			head   = tp.Head()
			dir    = Direction(r.Intn(3) - 1)
			edge   = (dir == Left && head == 0) || (dir == Right && head == before-1)
		)
		tp.Write("1", dir)
		grew := tp.Len() - before
		if edge && grew != 1 || !edge && grew != 0 {
			t.Fatalf("step %d: %d -> %d moving %s from %d", i, before, tp.Len(), dir, head)
		}
		if tp.Head() < 0 || tp.Len() <= tp.Head() {
			t.Fatalf("step %d: head %d len %d", i, tp.Head(), tp.Len())
		}
	}
}

func TestSnapshotCanonical(t *testing.T) {
	tests := []struct {
		cells []string
		head  int
		want  string
		whead int
	}{
		{[]string{"-", "-", "a", "-"}, 0, "[-] - a", -2},
		{[]string{"-", "a", "-", "b", "-", "-"}, 5, "a - b - [-]", 4},
		{[]string{"a"}, 0, "[a]", 0},
		{[]string{"-", "-"}, 1, "[-]", 0},
		{[]string{}, 0, "[-]", 0},
	}
	for _, test := range tests {
		c := Snapshot{Cells: test.cells, Head: test.head}.Canonical()
		if c.String() != test.want || c.Head != test.whead {
			t.Fatalf("%v: %s (head %d)", test.cells, c, c.Head)
		}
		if !c.Canonical().Equal(c) {
			t.Fatalf("%v: not idempotent", test.cells)
		}
	}
}

func TestTapeCanonicalize(t *testing.T) {
	tests := [][]string{
		{"-", "-", "a", "-"},
		{"a", "-", "-", "-"},
		{"-", "-", "-"},
		{"-", "b", "-", "c", "-"},
	}
	for _, cells := range tests {
		for head := range cells {
			tp := NewTape(cells, head)
			was := tp.Canonical()
			tp.Canonicalize()
			once := tp.Snapshot()
			if tp.Head() < 0 || tp.Len() <= tp.Head() {
				t.Fatalf("%v@%d: head %d len %d", cells, head, tp.Head(), tp.Len())
			}
			if !tp.Canonical().Equal(was) {
				t.Fatalf("%v@%d: %s != %s", cells, head, tp.Canonical(), was)
			}
			tp.Canonicalize()
			if !tp.Snapshot().Equal(once) {
				t.Fatalf("%v@%d: %s then %s", cells, head, once, tp.Snapshot())
			}
		}
	}
}

func TestTapeCanonicalizeHeadOutside(t *testing.T) {
	tests := []struct {
		cells []string
		head  int
		want  string
		at    int
	}{
		// Head left of the content: leading blanks stay.
		{[]string{"-", "-", "a", "-"}, 0, "- - a", 0},
		// Head right of the content: trailing blanks stay.
		{[]string{"a", "-", "-", "-"}, 3, "a - - -", 3},
		{[]string{"-", "-", "a", "-"}, 2, "a", 0},
	}
	for _, test := range tests {
		tp := NewTape(test.cells, test.head)
		tp.Canonicalize()
		if got := strings.Join(tp.Cells(), " "); got != test.want || tp.Head() != test.at {
			t.Fatalf("%v@%d: %q@%d, wanted %q@%d", test.cells, test.head, got, tp.Head(), test.want, test.at)
		}
		if c := tp.Canonical(); len(c.Cells) != 1 || c.Cells[0] != "a" {
			t.Fatalf("%v@%d: %s", test.cells, test.head, c)
		}
	}
}

func TestCompareToExpected(t *testing.T) {
	tp := NewTape([]string{"-", "1", "1", "-"}, 2)

	if msg, ok := tp.CompareToExpected(&Fixture{Name: "r", Cells: []string{"1", "1"}, Head: 1}); !ok {
		t.Fatal(msg)
	}
	if msg, ok := tp.CompareToExpected(&Fixture{Name: "r", Cells: []string{"1", "1"}, Head: 0}); ok {
		t.Fatal(msg)
	}
	if msg, ok := tp.CompareToExpected(&Fixture{Name: "r", Cells: []string{"1"}, Head: SingleCell}); !ok {
		t.Fatal(msg)
	}
	msg, ok := tp.CompareToExpected(&Fixture{Name: "r", Cells: []string{"0"}, Head: SingleCell})
	if ok || msg != `r: expected the head on "0" but found "1"` {
		t.Fatal(msg)
	}
}
