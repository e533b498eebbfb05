// Package maze is an Environment for an ant in a grid maze.
//
// The ant senses a wall to its left (L), a wall ahead (A), and a
// breadcrumb under it (S).  It can turn left (TL), turn right (TR),
// go forward (F), drop a breadcrumb (D), and eat one (E).  Within a
// step, turns happen first, then the breadcrumb outputs, and then the
// move.  A move into a wall is a bump and leaves the ant in place.
package maze

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Comcast/fsmgrader/match"

	"gopkg.in/yaml.v2"
)

const (
	NumInputs  = 3
	NumOutputs = 5
)

// Output bit indexes.
const (
	TL = iota
	TR
	F
	D
	E
)

// Grid cells.
const (
	Wall  = '#'
	Open  = '.'
	Start = 'S'
	Goal  = 'G'
)

// Heading is a compass direction.
type Heading int

const (
	North Heading = iota
	East
	South
	West
)

var headings = "NESW"

// ParseHeading accepts N, E, S, or W (any case).  The empty string
// means East.
func ParseHeading(s string) (Heading, error) {
	if s == "" {
		return East, nil
	}
	if i := strings.Index(headings, strings.ToUpper(s)); 0 <= i && len(s) == 1 {
		return Heading(i), nil
	}
	return East, fmt.Errorf("bad heading %q", s)
}

func (h Heading) String() string {
	return headings[h : h+1]
}

func (h Heading) Left() Heading {
	return (h + 3) % 4
}

func (h Heading) Right() Heading {
	return (h + 1) % 4
}

func (h Heading) delta() (int, int) {
	switch h {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	}
	return -1, 0
}

// World is a maze as written in a YAML file:
//
//	name: tiny
//	heading: E
//	rows:
//	  - "#####"
//	  - "#S.G#"
//	  - "#####"
//
// Rows can be ragged.  Anything outside the rows is a wall.
type World struct {
	Name    string   `yaml:"name" json:"name"`
	Heading string   `yaml:"heading,omitempty" json:"heading,omitempty"`
	Rows    []string `yaml:"rows" json:"rows"`

	// Limit is a suggested step limit for a run.
	Limit int `yaml:"limit,omitempty" json:"limit,omitempty"`
}

var (
	ErrNoStart = errors.New("maze has no start")
	ErrNoGoal  = errors.New("maze has no goal")
)

// ParseWorld parses a YAML World.
func ParseWorld(bs []byte) (*World, error) {
	var w World
	if err := yaml.Unmarshal(bs, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ReadWorld reads a YAML World from a file.
func ReadWorld(filename string) (*World, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	w, err := ParseWorld(bs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return w, nil
}

type pos struct {
	X, Y int
}

// Ant is an Environment.  Not safe for concurrent use.
type Ant struct {
	World   *World
	X, Y    int
	Heading Heading

	Moves int
	Bumps int

	crumbs map[pos]bool
}

// NewAnt puts a new ant at the World's start.
func NewAnt(w *World) (*Ant, error) {
	h, err := ParseHeading(w.Heading)
	if err != nil {
		return nil, err
	}
	a := &Ant{
		World:   w,
		Heading: h,
		crumbs:  make(map[pos]bool),
	}
	start, goal := false, false
	for y, row := range w.Rows {
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case Start:
				if start {
					return nil, fmt.Errorf("second start at (%d,%d)", x, y)
				}
				a.X, a.Y, start = x, y, true
			case Goal:
				goal = true
			}
		}
	}
	if !start {
		return nil, ErrNoStart
	}
	if !goal {
		return nil, ErrNoGoal
	}
	return a, nil
}

func (a *Ant) Widths() (int, int) {
	return NumInputs, NumOutputs
}

func (a *Ant) cell(x, y int) byte {
	if y < 0 || len(a.World.Rows) <= y {
		return Wall
	}
	row := a.World.Rows[y]
	if x < 0 || len(row) <= x {
		return Wall
	}
	return row[x]
}

func (a *Ant) wall(h Heading) bool {
	dx, dy := h.delta()
	return a.cell(a.X+dx, a.Y+dy) == Wall
}

// ReadInputs returns L, A, and S.
func (a *Ant) ReadInputs() match.Bits {
	return match.Bits{
		a.wall(a.Heading.Left()),
		a.wall(a.Heading),
		a.crumbs[pos{a.X, a.Y}],
	}
}

// ApplyOutputs applies TL, TR, F, D, and E.
func (a *Ant) ApplyOutputs(bs match.Bits) {
	if len(bs) != NumOutputs {
		return
	}
	if bs[TL] {
		a.Heading = a.Heading.Left()
	}
	if bs[TR] {
		a.Heading = a.Heading.Right()
	}
	here := pos{a.X, a.Y}
	if bs[D] {
		a.crumbs[here] = true
	}
	if bs[E] {
		delete(a.crumbs, here)
	}
	if bs[F] {
		if a.wall(a.Heading) {
			a.Bumps++
			return
		}
		dx, dy := a.Heading.delta()
		a.X += dx
		a.Y += dy
		a.Moves++
	}
}

// IsGoalReached reports whether the ant is on the goal.
func (a *Ant) IsGoalReached() bool {
	return a.cell(a.X, a.Y) == Goal
}

// Crumbs is the number of breadcrumbs on the floor.
func (a *Ant) Crumbs() int {
	return len(a.crumbs)
}

var arrows = "^>v<"

// String draws the maze with the ant as an arrow and breadcrumbs as
// '*'.
func (a *Ant) String() string {
	var b strings.Builder
	for y, row := range a.World.Rows {
		for x := 0; x < len(row); x++ {
			c := row[x]
			switch {
			case x == a.X && y == a.Y:
				c = arrows[a.Heading]
			case a.crumbs[pos{x, y}]:
				c = '*'
			}
			b.WriteByte(c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
